package utils

import (
	"fmt"
	"strings"

	"atendente/internal/domain"
)

const (
	// PermissionDeniedMessage responde a comandos enviados fora do modo desenvolvedor.
	PermissionDeniedMessage = "⛔ Permissão insuficiente: comandos só estão disponíveis no modo desenvolvedor."
	// AIErrorMessage é a única resposta exposta quando a IA falha.
	AIErrorMessage = "Desculpe, não consegui falar com a inteligência artificial agora. Tente novamente mais tarde ou deixe uma mensagem."
	// FarewellMessage confirma a saída do modo desenvolvedor.
	FarewellMessage = "👋 Modo desenvolvedor desativado. Voltando ao atendimento normal."
	// SaveFailedMessage informa que a alteração não foi gravada.
	SaveFailedMessage = "❌ Não foi possível gravar a base de conhecimento. A alteração foi descartada; tente novamente."
)

// BuildHelp gera a lista de comandos do modo desenvolvedor.
func BuildHelp() string {
	return "Comandos disponíveis:\n" +
		"/help – mostra esta lista\n" +
		"/add <palavra> <resposta> – cria um grupo com uma palavra-chave\n" +
		"/delete <palavra> – remove a palavra do seu grupo\n" +
		"/replace <palavra> <resposta> – troca a resposta do grupo da palavra\n" +
		"/alias <palavra> += <sinônimo1>,<sinônimo2> – adiciona sinônimos ao grupo\n" +
		"/list – lista todos os grupos"
}

// BuildGreeting é a resposta à ativação do modo desenvolvedor.
func BuildGreeting() string {
	return "🛠️ Modo desenvolvedor ativado.\n\n" + BuildHelp()
}

// BuildUnknownCommand responde a um comando que não existe.
func BuildUnknownCommand(name string) string {
	return fmt.Sprintf("Comando desconhecido: %s. Use /help para ver os comandos.", name)
}

// BuildUsage monta a mensagem de uso incorreto de um comando.
func BuildUsage(usage string) string {
	return "Uso: " + usage
}

// BuildList renderiza os grupos com índice começando em 1.
func BuildList(groups []domain.KeywordGroup) string {
	if len(groups) == 0 {
		return "A base de conhecimento está vazia."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📚 %d grupo(s):\n", len(groups))
	for i, g := range groups {
		fmt.Fprintf(&b, "%d. [%s] → %s\n", i+1, strings.Join(g.Synonyms, ", "), g.Response)
	}
	return strings.TrimRight(b.String(), "\n")
}
