// Package command interpreta os comandos do modo desenvolvedor e os executa
// sobre a base de conhecimento.
package command

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"atendente/internal/domain"
	"atendente/internal/textnorm"
	"atendente/internal/utils"
)

// Name é o nome de um comando, já normalizado.
type Name string

const (
	Help    Name = "/help"
	Add     Name = "/add"
	Delete  Name = "/delete"
	Replace Name = "/replace"
	Alias   Name = "/alias"
	List    Name = "/list"
)

// Names lista todos os comandos conhecidos.
var Names = []Name{Help, Add, Delete, Replace, Alias, List}

// Store é o que o interpretador precisa da base de conhecimento.
type Store interface {
	Update(ctx context.Context, fn func(kb *domain.KnowledgeBase) error) error
	Snapshot() domain.KnowledgeBase
}

// request é uma mensagem já dividida em comando e argumentos.
type request struct {
	name       Name
	normalized string
	args       []string // argumentos normalizados
	original   []string // todos os campos da mensagem original
}

// trailing junta os campos originais a partir da posição pos (0 é o comando),
// preservando a caixa do texto digitado.
func (r request) trailing(pos int) string {
	if pos < len(r.original) {
		return strings.Join(r.original[pos:], " ")
	}
	if pos-1 < len(r.args) {
		return strings.Join(r.args[pos-1:], " ")
	}
	return ""
}

type handler func(in *Interpreter, ctx context.Context, req request) string

var handlers = map[Name]handler{
	Help:    (*Interpreter).help,
	Add:     (*Interpreter).add,
	Delete:  (*Interpreter).delete,
	Replace: (*Interpreter).replace,
	Alias:   (*Interpreter).alias,
	List:    (*Interpreter).list,
}

// Interpreter executa comandos de operador.
type Interpreter struct {
	store  Store
	logger *zap.Logger
}

// NewInterpreter cria um interpretador sobre o store informado.
func NewInterpreter(store Store, logger *zap.Logger) *Interpreter {
	return &Interpreter{store: store, logger: logger.Named("command")}
}

// Execute interpreta uma mensagem bruta e retorna sempre um texto de resposta.
func (in *Interpreter) Execute(ctx context.Context, raw string) string {
	normalized := strings.TrimSpace(textnorm.Normalize(raw))
	fields := textnorm.Fields(normalized)
	if len(fields) == 0 {
		return utils.BuildUnknownCommand("")
	}

	name := Name(fields[0])
	h, ok := handlers[name]
	if !ok {
		in.logger.Debug("comando desconhecido", zap.String("command", fields[0]))
		return utils.BuildUnknownCommand(fields[0])
	}

	req := request{
		name:       name,
		normalized: normalized,
		args:       fields[1:],
		original:   textnorm.Fields(raw),
	}
	in.logger.Info("executando comando", zap.String("command", string(name)), zap.Int("args", len(req.args)))
	return h(in, ctx, req)
}
