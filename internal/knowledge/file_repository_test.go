package knowledge

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atendente/internal/domain"
)

func sampleBase() *domain.KnowledgeBase {
	return &domain.KnowledgeBase{
		KeywordGroups: []domain.KeywordGroup{
			{Synonyms: []string{"退貨", "退費"}, Response: "退貨政策..."},
			{Synonyms: []string{"horário"}, Response: "Atendemos das 9h às 18h <seg-sex> & sáb"},
		},
		SystemPrompt:    "Você é o atendente da loja.",
		DeveloperPrompt: "Modo dev.",
	}
}

func TestFileRepository_JSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "knowledge.json")
	repo := NewFileRepository(path)

	require.NoError(t, repo.Save(context.Background(), sampleBase()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "退貨政策...")
	assert.Contains(t, string(raw), "<seg-sex> & sáb")
	assert.Contains(t, string(raw), `"keyword_groups"`)

	loaded, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sampleBase(), loaded)

	// gravar o que foi lido não altera o conteúdo
	require.NoError(t, repo.Save(context.Background(), loaded))
	again, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(raw), string(again))
}

func TestFileRepository_YAMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "knowledge.yaml")
	repo := NewFileRepository(path)

	require.NoError(t, repo.Save(context.Background(), sampleBase()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "keyword_groups:")

	loaded, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sampleBase(), loaded)
}

func TestFileRepository_MissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "knowledge.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"system_prompt": "oi"}`), 0o644))

	s := NewStore(NewFileRepository(path), nopLogger())
	require.NoError(t, s.Load(context.Background()))

	kb := s.Snapshot()
	assert.Empty(t, kb.KeywordGroups)
	assert.Equal(t, domain.DefaultDeveloperPrompt, kb.DeveloperPrompt)
}

func TestFileRepository_LoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := NewFileRepository(filepath.Join(dir, "nao-existe.json")).Load(context.Background())
	require.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"keyword_groups": [`), 0o644))
	_, err = NewFileRepository(bad).Load(context.Background())
	require.Error(t, err)
}

func TestFileRepository_SaveErrorOnMissingDir(t *testing.T) {
	repo := NewFileRepository(filepath.Join(t.TempDir(), "sem", "dir", "kb.json"))
	require.Error(t, repo.Save(context.Background(), sampleBase()))
}
