package messagelog

import (
	"context"
	"database/sql"
	"fmt"

	"atendente/internal/database"
	"atendente/internal/domain"
)

// SQLSink grava recados na tabela left_messages.
type SQLSink struct {
	db      *sql.DB
	dialect database.Dialect
}

func NewSQLSink(db *sql.DB, dialect database.Dialect) *SQLSink {
	return &SQLSink{db: db, dialect: dialect}
}

func (s *SQLSink) Append(ctx context.Context, msg domain.LeftMessage) error {
	p := s.dialect.Placeholder
	query := fmt.Sprintf(`
    INSERT INTO left_messages (message_id, name, contact, text, created_at)
    VALUES (%s, %s, %s, %s, %s)`, p(1), p(2), p(3), p(4), p(5))

	_, err := s.db.ExecContext(ctx, query,
		msg.ID,
		sql.NullString{String: msg.Name, Valid: msg.Name != ""},
		sql.NullString{String: msg.Contact, Valid: msg.Contact != ""},
		msg.Text,
		msg.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("erro ao salvar recado no banco de dados: %w", err)
	}
	return nil
}
