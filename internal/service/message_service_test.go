package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"atendente/internal/command"
	"atendente/internal/domain"
	"atendente/internal/knowledge"
	"atendente/internal/sessions"
	"atendente/internal/utils"
)

const (
	activation   = "Ativar Modo Desenvolvedor"
	deactivation = "desativar modo desenvolvedor"
)

type memRepository struct {
	kb    *domain.KnowledgeBase
	saves int
}

func (m *memRepository) Load(ctx context.Context) (*domain.KnowledgeBase, error) {
	return m.kb.Clone(), nil
}

func (m *memRepository) Save(ctx context.Context, kb *domain.KnowledgeBase) error {
	m.saves++
	m.kb = kb.Clone()
	return nil
}

type fakeGenerator struct {
	prompts []string
	reply   string
	err     error
	block   bool
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.reply, f.err
}

type harness struct {
	svc     *MessageService
	gen     *fakeGenerator
	repo    *memRepository
	session *sessions.Context
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := zaptest.NewLogger(t)
	repo := &memRepository{kb: &domain.KnowledgeBase{
		KeywordGroups: []domain.KeywordGroup{
			{Synonyms: []string{"退貨"}, Response: "退貨政策..."},
			{Synonyms: []string{"horário", "horario"}, Response: "Das 9h às 18h."},
		},
		SystemPrompt:    "Você é o atendente da loja.",
		DeveloperPrompt: "Você ajuda o desenvolvedor.",
	}}
	store := knowledge.NewStore(repo, logger)
	require.NoError(t, store.Load(context.Background()))

	gen := &fakeGenerator{reply: "resposta da IA"}
	session := sessions.New()
	svc := NewMessageService(store, command.NewInterpreter(store, logger), gen, session, Options{
		ActivationPhrase:   activation,
		DeactivationPhrase: deactivation,
		LLMTimeout:         time.Second,
	}, logger)
	return &harness{svc: svc, gen: gen, repo: repo, session: session}
}

func (h *harness) send(msg string) Reply {
	return h.svc.ProcessMessage(context.Background(), msg)
}

func TestProcessMessage_ExactKeywordMatch(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, Reply{Text: "退貨政策..."}, h.send("退貨"))
	assert.Equal(t, Reply{Text: "Das 9h às 18h."}, h.send("  HORÁRIO "))
	assert.Empty(t, h.gen.prompts)

	// substring não conta
	reply := h.send("我想退貨")
	assert.Equal(t, Reply{Text: "resposta da IA"}, reply)
	require.Len(t, h.gen.prompts, 1)
	assert.Equal(t, "Você é o atendente da loja.\n\n我想退貨", h.gen.prompts[0])
}

func TestProcessMessage_CommandWithoutPermission(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, Reply{Text: utils.PermissionDeniedMessage}, h.send("/anything"))
	assert.Equal(t, Reply{Text: utils.PermissionDeniedMessage}, h.send("/add x y"))
	assert.Equal(t, 0, h.repo.saves)
	assert.Empty(t, h.gen.prompts)
}

func TestProcessMessage_ModeSwitching(t *testing.T) {
	h := newHarness(t)

	reply := h.send("ＡＴＩＶＡＲ modo desenvolvedor")
	assert.Equal(t, utils.BuildGreeting(), reply.Text)
	assert.True(t, h.session.IsDeveloper())

	assert.Equal(t, utils.BuildHelp(), h.send("/help").Text)

	reply = h.send(deactivation)
	assert.Equal(t, utils.FarewellMessage, reply.Text)
	assert.False(t, h.session.IsDeveloper())

	assert.Equal(t, utils.PermissionDeniedMessage, h.send("/help").Text)
}

func TestProcessMessage_ActivationIsIdempotent(t *testing.T) {
	h := newHarness(t)
	h.send(activation)
	h.send(activation)
	assert.True(t, h.session.IsDeveloper())
}

func TestProcessMessage_DeveloperCommandsMutateKnowledgeBase(t *testing.T) {
	h := newHarness(t)
	h.send(activation)

	reply := h.send("/add 安裝 請參考安裝手冊")
	assert.Contains(t, reply.Text, "✅")
	assert.Equal(t, 1, h.repo.saves)

	h.send(deactivation)
	assert.Equal(t, Reply{Text: "請參考安裝手冊"}, h.send("安裝"))
}

func TestProcessMessage_DeveloperPromptInDeveloperMode(t *testing.T) {
	h := newHarness(t)
	h.send(activation)

	h.send("como depuro isso?")
	require.Len(t, h.gen.prompts, 1)
	assert.Equal(t, "Você ajuda o desenvolvedor.\n\ncomo depuro isso?", h.gen.prompts[0])
}

func TestProcessMessage_AIFailureIsHidden(t *testing.T) {
	h := newHarness(t)
	h.gen.err = errors.New("quota exceeded: detalhes internos")

	reply := h.send("pergunta qualquer")
	assert.Equal(t, utils.AIErrorMessage, reply.Text)
	assert.Equal(t, ActionLeaveMessage, reply.Action)
	assert.NotContains(t, reply.Text, "quota")
}

func TestProcessMessage_AITimeout(t *testing.T) {
	h := newHarness(t)
	h.gen.block = true
	h.svc.opts.LLMTimeout = 10 * time.Millisecond

	reply := h.send("pergunta lenta")
	assert.Equal(t, utils.AIErrorMessage, reply.Text)
}

func TestProcessMessage_EmptyMessageGoesToAI(t *testing.T) {
	h := newHarness(t)
	reply := h.send("   ")
	assert.Equal(t, "resposta da IA", reply.Text)
}

func TestNewMessageService_NormalizesPhrases(t *testing.T) {
	svc := NewMessageService(nil, nil, nil, sessions.New(), Options{
		ActivationPhrase:   "  ＤＥＶ ON ",
		DeactivationPhrase: "DEV OFF",
	}, zap.NewNop())
	assert.Equal(t, "dev on", svc.opts.ActivationPhrase)
	assert.Equal(t, "dev off", svc.opts.DeactivationPhrase)
}
