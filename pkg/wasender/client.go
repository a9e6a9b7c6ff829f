package wasender

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultBaseURL é o endereço da WaSenderAPI.
const DefaultBaseURL = "https://www.wasenderapi.com"

// Client envia mensagens de WhatsApp pela WaSenderAPI.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// New cria um cliente. baseURL vazio usa DefaultBaseURL.
func New(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// SendMessage envia um texto para o número informado.
func (c *Client) SendMessage(ctx context.Context, number, message string) error {
	return c.post(ctx, "/api/send-message", map[string]any{
		"to":   number,
		"text": message,
	})
}

// SetWebhook registra a URL que receberá as mensagens.
func (c *Client) SetWebhook(ctx context.Context, url string) error {
	return c.post(ctx, "/api/set-webhook", map[string]any{"url": url})
}

func (c *Client) post(ctx context.Context, path string, payloadMap map[string]any) error {
	payload, err := json.Marshal(payloadMap)
	if err != nil {
		return fmt.Errorf("erro ao converter payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("erro ao criar requisição para WaSender: %w", err)
	}
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("erro ao enviar requisição para WaSender: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("WaSender retornou status %s: %s", resp.Status, string(body))
	}
	return nil
}
