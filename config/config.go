package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"atendente/internal/textnorm"
)

const (
	DefaultKnowledgeBaseURL   = "knowledge.json"
	DefaultMessageLogURL      = "messages.log"
	DefaultPort               = "8080"
	DefaultGeminiModel        = "gemini-2.5-flash"
	DefaultActivationPhrase   = "ativar modo desenvolvedor"
	DefaultDeactivationPhrase = "desativar modo desenvolvedor"
	DefaultLLMTimeout         = 30 * time.Second
)

type Config struct {
	GeminiKey          string        `json:"gemini_key"`
	GeminiModel        string        `json:"gemini_model"`
	KnowledgeBaseURL   string        `json:"knowledge_base_url"`
	MessageLogURL      string        `json:"message_log_url"`
	Port               string        `json:"port"`
	ApiKey             string        `json:"apikey"`
	WaSenderBaseURL    string        `json:"wasender_base_url"`
	ActivationPhrase   string        `json:"activation_phrase"`
	DeactivationPhrase string        `json:"deactivation_phrase"`
	LLMTimeout         time.Duration `json:"llm_timeout"`
	LogLevel           string        `json:"log_level"`
	GinMode            string        `json:"gin_mode"`
}

// WhatsAppEnabled indica se o canal de WhatsApp foi configurado.
func (c Config) WhatsAppEnabled() bool {
	return c.ApiKey != ""
}

// Load carrega as variáveis do arquivo .env (se existir) e do ambiente.
// GEMINI_KEY é obrigatória.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("erro ao carregar o arquivo .env: %w", err)
	}
	return FromEnv()
}

// FromEnv monta a configuração apenas a partir do ambiente.
func FromEnv() (Config, error) {
	gemini := os.Getenv("GEMINI_KEY")
	if gemini == "" {
		return Config{}, errors.New("variável de ambiente GEMINI_KEY não encontrada")
	}

	timeout := DefaultLLMTimeout
	if v := os.Getenv("LLM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return Config{}, fmt.Errorf("LLM_TIMEOUT inválido %q", v)
		}
		timeout = d
	}

	cfg := Config{
		GeminiKey:          gemini,
		GeminiModel:        getenv("GEMINI_MODEL", DefaultGeminiModel),
		KnowledgeBaseURL:   getenv("KNOWLEDGE_BASE_URL", DefaultKnowledgeBaseURL),
		MessageLogURL:      getenv("MESSAGE_LOG_URL", DefaultMessageLogURL),
		Port:               getenv("PORT", DefaultPort),
		ApiKey:             os.Getenv("API_KEY"),
		WaSenderBaseURL:    os.Getenv("WASENDER_BASE_URL"),
		ActivationPhrase:   getenv("DEV_ACTIVATION_PHRASE", DefaultActivationPhrase),
		DeactivationPhrase: getenv("DEV_DEACTIVATION_PHRASE", DefaultDeactivationPhrase),
		LLMTimeout:         timeout,
		LogLevel:           getenv("LOG_LEVEL", "info"),
		GinMode:            getenv("GIN_MODE", "release"),
	}

	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		return Config{}, fmt.Errorf("GIN_MODE inválido %q", cfg.GinMode)
	}

	if textnorm.Normalize(cfg.ActivationPhrase) == textnorm.Normalize(cfg.DeactivationPhrase) {
		return Config{}, errors.New("as frases de ativação e desativação precisam ser diferentes")
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
