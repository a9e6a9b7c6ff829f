package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Dialect identifica o banco por trás de uma conexão.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// Placeholder retorna o marcador de parâmetro n (1-based) do dialeto.
func (d Dialect) Placeholder(n int) string {
	if d == Postgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// IsURL indica se o endereço aponta para um banco suportado.
func IsURL(url string) bool {
	_, _, ok := parseURL(url)
	return ok
}

func parseURL(url string) (Dialect, string, bool) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return Postgres, url, true
	case strings.HasPrefix(url, "sqlite://"):
		return SQLite, strings.TrimPrefix(url, "sqlite://"), true
	}
	return "", "", false
}

// Open abre a conexão com PostgreSQL ou SQLite conforme o esquema da URL,
// verifica a conexão e garante que as tabelas existam.
func Open(ctx context.Context, url string, logger *zap.Logger) (*sql.DB, Dialect, error) {
	dialect, dsn, ok := parseURL(url)
	if !ok {
		return nil, "", fmt.Errorf("url de banco de dados não suportada: %q", url)
	}

	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, "", fmt.Errorf("erro ao abrir conexão com o banco de dados: %w", err)
	}
	if dialect == SQLite {
		// SQLite não aceita escritores concorrentes
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, "", fmt.Errorf("erro ao conectar com o banco de dados (ping): %w", err)
	}

	logger.Info("conexão com o banco de dados estabelecida", zap.String("dialect", string(dialect)))

	if err := createTablesIfNotExist(ctx, db, dialect); err != nil {
		db.Close()
		return nil, "", err
	}
	return db, dialect, nil
}

// createTablesIfNotExist cria as tabelas da base de conhecimento e dos recados.
func createTablesIfNotExist(ctx context.Context, db *sql.DB, dialect Dialect) error {
	idColumn := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if dialect == Postgres {
		idColumn = "SERIAL PRIMARY KEY"
	}

	queries := []string{
		`CREATE TABLE IF NOT EXISTS knowledge_documents (
        id INTEGER PRIMARY KEY,
        document TEXT NOT NULL,
        updated_at TIMESTAMP NOT NULL
    )`,
		`CREATE TABLE IF NOT EXISTS left_messages (
        id ` + idColumn + `,
        message_id VARCHAR(64) NOT NULL,
        name TEXT,
        contact TEXT,
        text TEXT NOT NULL,
        created_at TIMESTAMP NOT NULL
    )`,
	}

	for _, q := range queries {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("erro ao criar tabelas: %w", err)
		}
	}
	return nil
}
