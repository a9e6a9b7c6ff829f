// Package tunnel expõe o servidor local pelo ngrok e registra o webhook do
// WhatsApp no endereço público. Usado apenas em desenvolvimento.
package tunnel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/exec"
	"time"

	"go.uber.org/zap"
)

// DefaultAPIURL é a API local do agente ngrok.
const DefaultAPIURL = "http://127.0.0.1:4040/api/tunnels"

var errNoHTTPSTunnel = errors.New("nenhum túnel HTTPS encontrado")

// WebhookRegistrar registra a URL pública do webhook.
type WebhookRegistrar interface {
	SetWebhook(ctx context.Context, url string) error
}

type tunnelsResponse struct {
	Tunnels []struct {
		Proto     string `json:"proto"`
		PublicURL string `json:"public_url"`
	} `json:"tunnels"`
}

// StartNgrok inicia o ngrok para a porta, espera o túnel HTTPS e registra
// <url>/webhook. A função retornada encerra o processo do ngrok.
func StartNgrok(ctx context.Context, port string, registrar WebhookRegistrar, logger *zap.Logger) (string, func() error, error) {
	cmd := exec.CommandContext(ctx, "ngrok", "http", port)
	if err := cmd.Start(); err != nil {
		return "", nil, fmt.Errorf("erro ao iniciar o ngrok: %w", err)
	}
	stop := func() error {
		if cmd.Process == nil {
			return nil
		}
		return cmd.Process.Kill()
	}

	publicURL, err := WaitPublicURL(ctx, DefaultAPIURL, 10, 500*time.Millisecond)
	if err != nil {
		stop()
		return "", nil, err
	}

	webhook := publicURL + "/webhook"
	if err := registrar.SetWebhook(ctx, webhook); err != nil {
		stop()
		return "", nil, fmt.Errorf("erro ao registrar webhook: %w", err)
	}

	logger.Info("🔗 webhook registrado na WaSenderAPI", zap.String("url", webhook))
	return publicURL, stop, nil
}

// WaitPublicURL consulta a API do ngrok até encontrar um túnel HTTPS.
func WaitPublicURL(ctx context.Context, apiURL string, attempts int, interval time.Duration) (string, error) {
	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(interval):
			}
		}

		url, err := PublicURL(ctx, apiURL)
		if err == nil {
			return url, nil
		}
		lastErr = err
	}
	return "", lastErr
}

// PublicURL retorna o endereço público do primeiro túnel HTTPS.
func PublicURL(ctx context.Context, apiURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var result tunnelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("erro ao decodificar túneis do ngrok: %w", err)
	}

	for _, t := range result.Tunnels {
		if t.Proto == "https" {
			return t.PublicURL, nil
		}
	}
	return "", errNoHTTPSTunnel
}
