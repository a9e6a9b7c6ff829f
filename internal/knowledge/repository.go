package knowledge

import (
	"context"

	"go.uber.org/zap"

	"atendente/internal/database"
	"atendente/internal/domain"
)

// Repository define como a base de conhecimento é lida e gravada por inteiro.
type Repository interface {
	Load(ctx context.Context) (*domain.KnowledgeBase, error)
	Save(ctx context.Context, kb *domain.KnowledgeBase) error
}

// NewRepository escolhe a implementação pelo esquema da URL: postgres:// e
// sqlite:// usam o banco de dados, qualquer outra coisa é um caminho de arquivo.
// A função de fechamento retornada libera a conexão, quando houver.
func NewRepository(ctx context.Context, url string, logger *zap.Logger) (Repository, func() error, error) {
	if !database.IsURL(url) {
		return NewFileRepository(url), func() error { return nil }, nil
	}

	db, dialect, err := database.Open(ctx, url, logger)
	if err != nil {
		return nil, nil, err
	}
	return NewSQLRepository(db, dialect), db.Close, nil
}
