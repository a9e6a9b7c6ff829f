// Package textnorm canonicaliza textos antes de qualquer comparação.
package textnorm

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize aplica a normalização Unicode de compatibilidade (NFKC) e converte
// para minúsculas, de modo que variantes de largura total/meia largura e de
// caixa sejam comparadas como iguais.
//
// Normalize(Normalize(s)) == Normalize(s) para qualquer s.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	folded := strings.ToLower(norm.NFKC.String(s))
	// a conversão para minúsculas pode gerar sequências fora da forma NFKC
	return norm.NFKC.String(folded)
}

// Fields divide o texto em sequências de espaços Unicode, incluindo o espaço
// ideográfico (U+3000).
func Fields(s string) []string {
	return strings.Fields(s)
}
