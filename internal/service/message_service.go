package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"atendente/internal/domain"
	"atendente/internal/sessions"
	"atendente/internal/textnorm"
	"atendente/internal/utils"
)

// ActionLeaveMessage sugere ao cliente abrir o formulário de recado.
const ActionLeaveMessage = "leave_message"

// Reply é a resposta a uma mensagem, com uma dica de ação opcional.
type Reply struct {
	Text   string `json:"reply"`
	Action string `json:"action,omitempty"`
}

// KnowledgeStore é a parte da base de conhecimento usada pelo roteador.
type KnowledgeStore interface {
	FindKeyword(phrase string) (domain.Match, bool)
	Snapshot() domain.KnowledgeBase
}

// CommandExecutor executa comandos do modo desenvolvedor.
type CommandExecutor interface {
	Execute(ctx context.Context, raw string) string
}

// Options configura o MessageService.
type Options struct {
	ActivationPhrase   string
	DeactivationPhrase string
	LLMTimeout         time.Duration
}

// MessageService decide de onde sai a resposta: troca de modo, comando,
// grupo de palavras-chave ou IA.
type MessageService struct {
	store     KnowledgeStore
	commands  CommandExecutor
	generator Generator
	session   *sessions.Context
	opts      Options
	logger    *zap.Logger
}

// NewMessageService monta o roteador. As frases de ativação e desativação são
// normalizadas aqui.
func NewMessageService(store KnowledgeStore, commands CommandExecutor, generator Generator, session *sessions.Context, opts Options, logger *zap.Logger) *MessageService {
	opts.ActivationPhrase = strings.TrimSpace(textnorm.Normalize(opts.ActivationPhrase))
	opts.DeactivationPhrase = strings.TrimSpace(textnorm.Normalize(opts.DeactivationPhrase))
	return &MessageService{
		store:     store,
		commands:  commands,
		generator: generator,
		session:   session,
		opts:      opts,
		logger:    logger.Named("router"),
	}
}

// ProcessMessage responde a uma mensagem de cliente ou operador.
func (s *MessageService) ProcessMessage(ctx context.Context, message string) Reply {
	normalized := strings.TrimSpace(textnorm.Normalize(message))

	switch {
	case normalized != "" && normalized == s.opts.ActivationPhrase:
		s.session.Set(sessions.Developer)
		s.logger.Info("modo desenvolvedor ativado")
		return Reply{Text: utils.BuildGreeting()}

	case normalized != "" && normalized == s.opts.DeactivationPhrase:
		s.session.Set(sessions.Normal)
		s.logger.Info("modo desenvolvedor desativado")
		return Reply{Text: utils.FarewellMessage}

	case strings.HasPrefix(normalized, "/"):
		if !s.session.IsDeveloper() {
			s.logger.Warn("comando recusado fora do modo desenvolvedor")
			return Reply{Text: utils.PermissionDeniedMessage}
		}
		return Reply{Text: s.commands.Execute(ctx, message)}
	}

	if m, ok := s.store.FindKeyword(normalized); ok {
		s.logger.Debug("resposta da base de conhecimento", zap.Int("group", m.GroupIndex))
		return Reply{Text: m.Group.Response}
	}

	return s.fallback(ctx, message)
}

// fallback monta o prompt do modo atual e consulta a IA.
func (s *MessageService) fallback(ctx context.Context, message string) Reply {
	kb := s.store.Snapshot()
	base := kb.SystemPrompt
	if s.session.IsDeveloper() {
		base = kb.DeveloperPrompt
	}
	prompt := base + "\n\n" + message

	if s.opts.LLMTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.LLMTimeout)
		defer cancel()
	}

	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		s.logger.Error("erro ao chamar a IA", zap.Error(err))
		return Reply{Text: utils.AIErrorMessage, Action: ActionLeaveMessage}
	}
	return Reply{Text: text}
}
