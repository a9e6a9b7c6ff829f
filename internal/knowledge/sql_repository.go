package knowledge

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"atendente/internal/database"
	"atendente/internal/domain"
)

// documentID é a única linha de knowledge_documents usada pela aplicação.
const documentID = 1

// SQLRepository guarda o documento JSON da base numa linha do PostgreSQL ou SQLite.
type SQLRepository struct {
	db      *sql.DB
	dialect database.Dialect
}

// NewSQLRepository cria uma nova instância do repositório SQL.
func NewSQLRepository(db *sql.DB, dialect database.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

// Load lê o documento. A ausência da linha é um erro: use o comando import
// para semear o banco.
func (r *SQLRepository) Load(ctx context.Context) (*domain.KnowledgeBase, error) {
	query := `SELECT document FROM knowledge_documents WHERE id = ` + r.dialect.Placeholder(1)

	var doc string
	err := r.db.QueryRowContext(ctx, query, documentID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("base de conhecimento não encontrada no banco de dados: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar base de conhecimento no banco de dados: %w", err)
	}

	var kb domain.KnowledgeBase
	if err := json.Unmarshal([]byte(doc), &kb); err != nil {
		return nil, fmt.Errorf("erro ao decodificar base de conhecimento do banco de dados: %w", err)
	}
	return &kb, nil
}

// Save grava o documento inteiro, inserindo ou substituindo a linha.
func (r *SQLRepository) Save(ctx context.Context, kb *domain.KnowledgeBase) error {
	doc, err := json.Marshal(kb)
	if err != nil {
		return fmt.Errorf("erro ao converter base para JSON: %w", err)
	}

	query := fmt.Sprintf(`
    INSERT INTO knowledge_documents (id, document, updated_at)
    VALUES (%s, %s, %s)
    ON CONFLICT (id) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at`,
		r.dialect.Placeholder(1), r.dialect.Placeholder(2), r.dialect.Placeholder(3))

	if _, err := r.db.ExecContext(ctx, query, documentID, string(doc), time.Now().UTC()); err != nil {
		return fmt.Errorf("erro ao salvar base de conhecimento no banco de dados: %w", err)
	}
	return nil
}
