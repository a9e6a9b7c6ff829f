// Package messagelog grava os recados deixados pelos clientes. É um destino
// somente de escrita: nada aqui é lido de volta pela aplicação.
package messagelog

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"atendente/internal/database"
	"atendente/internal/domain"
)

// Sink recebe recados com data e hora.
type Sink interface {
	Append(ctx context.Context, msg domain.LeftMessage) error
}

// NewLeftMessage cria um recado com ID e horário preenchidos.
func NewLeftMessage(name, contact, text string) domain.LeftMessage {
	return domain.LeftMessage{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(name),
		Contact:   strings.TrimSpace(contact),
		Text:      strings.TrimSpace(text),
		CreatedAt: time.Now(),
	}
}

// New escolhe o destino pelo endereço: banco de dados ou arquivo.
func New(ctx context.Context, url string, logger *zap.Logger) (Sink, func() error, error) {
	if !database.IsURL(url) {
		return NewFileSink(url), func() error { return nil }, nil
	}
	db, dialect, err := database.Open(ctx, url, logger)
	if err != nil {
		return nil, nil, err
	}
	return NewSQLSink(db, dialect), db.Close, nil
}

// FileSink acrescenta uma linha por recado num arquivo texto.
type FileSink struct {
	mu   sync.Mutex
	path string
}

func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

// Append grava "[data] id nome contato: texto". Quebras de linha do texto
// viram espaços para manter um recado por linha.
func (s *FileSink) Append(ctx context.Context, msg domain.LeftMessage) error {
	line := fmt.Sprintf("[%s] %s %s %s: %s\n",
		msg.CreatedAt.Format("2006-01-02 15:04:05"),
		msg.ID,
		oneLine(msg.Name),
		oneLine(msg.Contact),
		oneLine(msg.Text),
	)

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("erro ao abrir log de recados: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("erro ao gravar recado: %w", err)
	}
	return nil
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
