package domain

// DefaultDeveloperPrompt é usado quando a base não define developer_prompt.
const DefaultDeveloperPrompt = "Você é um assistente prestativo. Responda de forma clara e objetiva."

// KnowledgeBase é o documento raiz persistido: grupos de palavras-chave e os
// prompts usados no fallback para a IA.
type KnowledgeBase struct {
	KeywordGroups   []KeywordGroup `json:"keyword_groups" yaml:"keyword_groups"`
	SystemPrompt    string         `json:"system_prompt" yaml:"system_prompt"`
	DeveloperPrompt string         `json:"developer_prompt" yaml:"developer_prompt"`
}

// KeywordGroup representa uma resposta com um ou mais sinônimos que a disparam.
// Os sinônimos ficam normalizados; a resposta preserva o texto original.
type KeywordGroup struct {
	Synonyms []string `json:"synonyms" yaml:"synonyms"`
	Response string   `json:"response" yaml:"response"`
}

// Match é o resultado de uma busca por palavra-chave.
type Match struct {
	Group        KeywordGroup
	GroupIndex   int
	SynonymIndex int
}

// Clone retorna uma cópia profunda da base.
func (kb *KnowledgeBase) Clone() *KnowledgeBase {
	out := &KnowledgeBase{
		SystemPrompt:    kb.SystemPrompt,
		DeveloperPrompt: kb.DeveloperPrompt,
		KeywordGroups:   make([]KeywordGroup, len(kb.KeywordGroups)),
	}
	for i, g := range kb.KeywordGroups {
		out.KeywordGroups[i] = KeywordGroup{
			Synonyms: append([]string(nil), g.Synonyms...),
			Response: g.Response,
		}
	}
	return out
}

// ApplyDefaults preenche campos ausentes depois da leitura do armazenamento.
func (kb *KnowledgeBase) ApplyDefaults() {
	if kb.KeywordGroups == nil {
		kb.KeywordGroups = []KeywordGroup{}
	}
	if kb.DeveloperPrompt == "" {
		kb.DeveloperPrompt = DefaultDeveloperPrompt
	}
}
