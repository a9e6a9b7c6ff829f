// Package knowledge mantém a base de conhecimento em memória e a persiste
// através de um Repository.
package knowledge

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"atendente/internal/domain"
	"atendente/internal/textnorm"
)

var (
	// ErrPersist indica que a alteração foi aplicada mas não pôde ser gravada.
	ErrPersist = errors.New("falha ao gravar base de conhecimento")
	// ErrNoChange pode ser retornado pela função de Update para pular a gravação.
	ErrNoChange = errors.New("nenhuma alteração")
	// ErrNotFound indica que o armazenamento não contém uma base.
	ErrNotFound = errors.New("base de conhecimento inexistente")
)

// Store é a base de conhecimento compartilhada pelo processo. Leituras usam
// RLock; Update serializa alteração e gravação sob o mesmo Lock.
type Store struct {
	mu     sync.RWMutex
	kb     *domain.KnowledgeBase
	repo   Repository
	logger *zap.Logger
}

// NewStore cria um Store vazio; chame Load antes de atender requisições.
func NewStore(repo Repository, logger *zap.Logger) *Store {
	kb := &domain.KnowledgeBase{}
	kb.ApplyDefaults()
	return &Store{
		kb:     kb,
		repo:   repo,
		logger: logger.Named("knowledge"),
	}
}

// Load lê a base do repositório e preenche os campos ausentes.
func (s *Store) Load(ctx context.Context) error {
	kb, err := s.repo.Load(ctx)
	if err != nil {
		return err
	}
	kb.ApplyDefaults()

	s.mu.Lock()
	s.kb = kb
	s.mu.Unlock()

	s.logger.Info("base de conhecimento carregada", zap.Int("groups", len(kb.KeywordGroups)))
	return nil
}

// Save grava a base atual por inteiro.
func (s *Store) Save(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.repo.Save(ctx, s.kb); err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

// Replace substitui a base inteira e a grava. Usado pelo comando import.
func (s *Store) Replace(ctx context.Context, kb *domain.KnowledgeBase) error {
	return s.Update(ctx, func(staged *domain.KnowledgeBase) error {
		*staged = *kb.Clone()
		staged.ApplyDefaults()
		return nil
	})
}

// FindKeyword normaliza a frase e retorna o primeiro grupo que a contém.
func (s *Store) FindKeyword(phrase string) (domain.Match, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return FindKeyword(s.kb, phrase)
}

// Snapshot retorna uma cópia da base atual.
func (s *Store) Snapshot() domain.KnowledgeBase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *s.kb.Clone()
}

// Update aplica fn sobre uma cópia da base, grava a cópia e só então a torna a
// base atual. Se a gravação falhar, o erro envolve ErrPersist e a base atual
// continua a mesma. Se fn retornar ErrNoChange, nada é gravado e Update
// retorna nil; qualquer outro erro de fn é repassado sem gravação.
func (s *Store) Update(ctx context.Context, fn func(kb *domain.KnowledgeBase) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.kb.Clone()
	if err := fn(staged); err != nil {
		if errors.Is(err, ErrNoChange) {
			return nil
		}
		return err
	}

	if err := s.repo.Save(ctx, staged); err != nil {
		s.logger.Error("erro ao gravar base de conhecimento", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}

	s.kb = staged
	return nil
}

// FindKeyword procura a frase normalizada nos grupos, em ordem.
func FindKeyword(kb *domain.KnowledgeBase, phrase string) (domain.Match, bool) {
	key := textnorm.Normalize(phrase)
	if key == "" {
		return domain.Match{}, false
	}
	for gi, g := range kb.KeywordGroups {
		for si, syn := range g.Synonyms {
			if syn == key {
				return domain.Match{Group: g, GroupIndex: gi, SynonymIndex: si}, true
			}
		}
	}
	return domain.Match{}, false
}
