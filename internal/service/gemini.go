package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultGeminiModel é usado quando GEMINI_MODEL não está definido.
const DefaultGeminiModel = "gemini-2.5-flash"

// Generator é o modelo de linguagem externo: recebe um prompt e devolve texto.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiGenerator implementa Generator com a API Gemini.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator cria o cliente Gemini.
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("chave da API Gemini é obrigatória")
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("erro ao criar cliente Gemini: %w", err)
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

// Generate envia o prompt e retorna o texto da primeira candidata.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("erro ao chamar API Gemini: %w", err)
	}

	text := result.Text()
	if strings.TrimSpace(text) == "" {
		return "", errors.New("resposta da Gemini vazia ou malformada")
	}
	return text, nil
}
