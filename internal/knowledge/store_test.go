package knowledge

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"atendente/internal/domain"
)

// memRepository é um Repository em memória que pode falhar sob demanda.
type memRepository struct {
	kb      *domain.KnowledgeBase
	loadErr error
	saveErr error
	saves   int
}

func (m *memRepository) Load(ctx context.Context) (*domain.KnowledgeBase, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.kb.Clone(), nil
}

func (m *memRepository) Save(ctx context.Context, kb *domain.KnowledgeBase) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.kb = kb.Clone()
	return nil
}

func newTestStore(t *testing.T, kb *domain.KnowledgeBase) (*Store, *memRepository) {
	t.Helper()
	repo := &memRepository{kb: kb}
	s := NewStore(repo, zap.NewNop())
	require.NoError(t, s.Load(context.Background()))
	return s, repo
}

func TestStore_LoadAppliesDefaults(t *testing.T) {
	s, _ := newTestStore(t, &domain.KnowledgeBase{SystemPrompt: "sys"})

	kb := s.Snapshot()
	assert.NotNil(t, kb.KeywordGroups)
	assert.Empty(t, kb.KeywordGroups)
	assert.Equal(t, "sys", kb.SystemPrompt)
	assert.Equal(t, domain.DefaultDeveloperPrompt, kb.DeveloperPrompt)
}

func TestStore_LoadError(t *testing.T) {
	repo := &memRepository{loadErr: errors.New("disco ilegível")}
	s := NewStore(repo, zap.NewNop())
	require.Error(t, s.Load(context.Background()))
}

func TestStore_FindKeyword(t *testing.T) {
	s, _ := newTestStore(t, &domain.KnowledgeBase{KeywordGroups: []domain.KeywordGroup{
		{Synonyms: []string{"frete"}, Response: "Frete grátis"},
		{Synonyms: []string{"退貨", "退款"}, Response: "退貨政策..."},
	}})

	m, ok := s.FindKeyword("退款")
	require.True(t, ok)
	assert.Equal(t, 1, m.GroupIndex)
	assert.Equal(t, 1, m.SynonymIndex)
	assert.Equal(t, "退貨政策...", m.Group.Response)

	m, ok = s.FindKeyword("ＦＲＥＴＥ")
	require.True(t, ok)
	assert.Equal(t, 0, m.GroupIndex)

	_, ok = s.FindKeyword("我想退貨")
	assert.False(t, ok)

	_, ok = s.FindKeyword("")
	assert.False(t, ok)
}

func TestStore_UpdateCommitsAfterSave(t *testing.T) {
	s, repo := newTestStore(t, &domain.KnowledgeBase{})

	err := s.Update(context.Background(), func(kb *domain.KnowledgeBase) error {
		kb.KeywordGroups = append(kb.KeywordGroups, domain.KeywordGroup{Synonyms: []string{"oi"}, Response: "Olá!"})
		return nil
	})
	require.NoError(t, err)

	_, ok := s.FindKeyword("oi")
	assert.True(t, ok)
	assert.Equal(t, 1, repo.saves)
	assert.Len(t, repo.kb.KeywordGroups, 1)
}

func TestStore_UpdateKeepsLiveBaseOnSaveFailure(t *testing.T) {
	s, repo := newTestStore(t, &domain.KnowledgeBase{})
	repo.saveErr = errors.New("disco cheio")

	err := s.Update(context.Background(), func(kb *domain.KnowledgeBase) error {
		kb.KeywordGroups = append(kb.KeywordGroups, domain.KeywordGroup{Synonyms: []string{"oi"}, Response: "Olá!"})
		return nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersist)

	_, ok := s.FindKeyword("oi")
	assert.False(t, ok)
}

func TestStore_UpdateNoChangeSkipsSave(t *testing.T) {
	s, repo := newTestStore(t, &domain.KnowledgeBase{})

	err := s.Update(context.Background(), func(kb *domain.KnowledgeBase) error {
		return ErrNoChange
	})
	require.NoError(t, err)
	assert.Equal(t, 0, repo.saves)
}

func TestStore_UpdateFnErrorIsReturned(t *testing.T) {
	s, repo := newTestStore(t, &domain.KnowledgeBase{})
	boom := errors.New("boom")

	err := s.Update(context.Background(), func(kb *domain.KnowledgeBase) error {
		kb.SystemPrompt = "alterado"
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, repo.saves)
	assert.Empty(t, s.Snapshot().SystemPrompt)
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	s, _ := newTestStore(t, &domain.KnowledgeBase{KeywordGroups: []domain.KeywordGroup{
		{Synonyms: []string{"a"}, Response: "A"},
	}})

	snap := s.Snapshot()
	snap.KeywordGroups[0].Synonyms[0] = "b"

	_, ok := s.FindKeyword("a")
	assert.True(t, ok)
}

func TestStore_Replace(t *testing.T) {
	s, repo := newTestStore(t, &domain.KnowledgeBase{})

	err := s.Replace(context.Background(), &domain.KnowledgeBase{
		KeywordGroups: []domain.KeywordGroup{{Synonyms: []string{"x"}, Response: "X"}},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultDeveloperPrompt, repo.kb.DeveloperPrompt)

	_, ok := s.FindKeyword("x")
	assert.True(t, ok)
}

func TestStore_Save(t *testing.T) {
	s, repo := newTestStore(t, &domain.KnowledgeBase{SystemPrompt: "sys"})

	require.NoError(t, s.Save(context.Background()))
	assert.Equal(t, 1, repo.saves)
	assert.Equal(t, domain.DefaultDeveloperPrompt, repo.kb.DeveloperPrompt)

	repo.saveErr = errors.New("sem permissão")
	assert.ErrorIs(t, s.Save(context.Background()), ErrPersist)
}
