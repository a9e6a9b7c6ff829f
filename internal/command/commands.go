package command

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"atendente/internal/domain"
	"atendente/internal/knowledge"
	"atendente/internal/textnorm"
	"atendente/internal/utils"
)

var (
	errDuplicate = errors.New("palavra-chave já existe")
	errNotFound  = errors.New("palavra-chave não encontrada")
)

func (in *Interpreter) help(ctx context.Context, req request) string {
	return utils.BuildHelp()
}

func (in *Interpreter) list(ctx context.Context, req request) string {
	kb := in.store.Snapshot()
	return utils.BuildList(kb.KeywordGroups)
}

func (in *Interpreter) add(ctx context.Context, req request) string {
	if len(req.args) < 2 {
		return utils.BuildUsage("/add <palavra> <resposta>")
	}
	keyword := req.args[0]
	response := req.trailing(2)

	err := in.store.Update(ctx, func(kb *domain.KnowledgeBase) error {
		if _, ok := knowledge.FindKeyword(kb, keyword); ok {
			return errDuplicate
		}
		kb.KeywordGroups = append(kb.KeywordGroups, domain.KeywordGroup{
			Synonyms: []string{keyword},
			Response: response,
		})
		return nil
	})

	switch {
	case errors.Is(err, errDuplicate):
		return fmt.Sprintf("❌ A palavra-chave '%s' já existe. Use /replace para alterar a resposta.", keyword)
	case err != nil:
		return in.saveFailed(req, err)
	}
	return fmt.Sprintf("✅ Grupo criado: '%s' → %s", keyword, response)
}

func (in *Interpreter) delete(ctx context.Context, req request) string {
	if len(req.args) != 1 {
		return utils.BuildUsage("/delete <palavra>")
	}
	keyword := req.args[0]

	groupRemoved := false
	err := in.store.Update(ctx, func(kb *domain.KnowledgeBase) error {
		m, ok := knowledge.FindKeyword(kb, keyword)
		if !ok {
			return errNotFound
		}
		g := &kb.KeywordGroups[m.GroupIndex]
		g.Synonyms = slices.Delete(g.Synonyms, m.SynonymIndex, m.SynonymIndex+1)
		if len(g.Synonyms) == 0 {
			kb.KeywordGroups = slices.Delete(kb.KeywordGroups, m.GroupIndex, m.GroupIndex+1)
			groupRemoved = true
		}
		return nil
	})

	switch {
	case errors.Is(err, errNotFound):
		return notFound(keyword)
	case err != nil:
		return in.saveFailed(req, err)
	}
	if groupRemoved {
		return fmt.Sprintf("🗑️ '%s' removida. O grupo ficou vazio e também foi removido.", keyword)
	}
	return fmt.Sprintf("🗑️ '%s' removida do grupo.", keyword)
}

func (in *Interpreter) replace(ctx context.Context, req request) string {
	if len(req.args) < 2 {
		return utils.BuildUsage("/replace <palavra> <resposta>")
	}
	keyword := req.args[0]
	response := req.trailing(2)

	err := in.store.Update(ctx, func(kb *domain.KnowledgeBase) error {
		m, ok := knowledge.FindKeyword(kb, keyword)
		if !ok {
			return errNotFound
		}
		kb.KeywordGroups[m.GroupIndex].Response = response
		return nil
	})

	switch {
	case errors.Is(err, errNotFound):
		return notFound(keyword)
	case err != nil:
		return in.saveFailed(req, err)
	}
	return fmt.Sprintf("✏️ Resposta do grupo de '%s' atualizada: %s", keyword, response)
}

func (in *Interpreter) alias(ctx context.Context, req request) string {
	const usage = "/alias <palavra> += <sinônimo1>,<sinônimo2>"

	rest := strings.TrimSpace(strings.TrimPrefix(req.normalized, string(req.name)))
	left, right, found := strings.Cut(rest, "+=")
	if !found {
		return utils.BuildUsage(usage)
	}
	target := textnorm.Fields(left)
	if len(target) != 1 {
		return utils.BuildUsage(usage)
	}
	keyword := target[0]

	candidates := splitSynonyms(right)
	if len(candidates) == 0 {
		return "❌ Nenhum sinônimo informado. " + utils.BuildUsage(usage)
	}

	var added, skipped []string
	err := in.store.Update(ctx, func(kb *domain.KnowledgeBase) error {
		m, ok := knowledge.FindKeyword(kb, keyword)
		if !ok {
			return errNotFound
		}
		g := &kb.KeywordGroups[m.GroupIndex]
		for _, syn := range candidates {
			if _, taken := knowledge.FindKeyword(kb, syn); taken {
				skipped = append(skipped, syn)
				continue
			}
			g.Synonyms = append(g.Synonyms, syn)
			added = append(added, syn)
		}
		if len(added) == 0 {
			return knowledge.ErrNoChange
		}
		return nil
	})

	switch {
	case errors.Is(err, errNotFound):
		return notFound(keyword)
	case err != nil:
		return in.saveFailed(req, err)
	}

	var b strings.Builder
	if len(added) > 0 {
		fmt.Fprintf(&b, "✅ Sinônimos adicionados ao grupo de '%s': %s", keyword, strings.Join(added, ", "))
	} else {
		fmt.Fprintf(&b, "Nenhum sinônimo novo para o grupo de '%s'.", keyword)
	}
	if len(skipped) > 0 {
		fmt.Fprintf(&b, "\n⚠️ Ignorados (já existem): %s", strings.Join(skipped, ", "))
	}
	return b.String()
}

// splitSynonyms separa a lista por vírgula (comum ou de largura total),
// normaliza cada item e descarta os vazios.
func splitSynonyms(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '，'
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if syn := strings.TrimSpace(textnorm.Normalize(p)); syn != "" {
			out = append(out, syn)
		}
	}
	return out
}

func notFound(keyword string) string {
	return fmt.Sprintf("❌ A palavra-chave '%s' não foi encontrada.", keyword)
}

func (in *Interpreter) saveFailed(req request, err error) string {
	in.logger.Error("comando não gravado", zap.String("command", string(req.name)), zap.Error(err))
	return utils.SaveFailedMessage
}
