// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config carries everything the server needs at startup.
type Config struct {
	Port        string
	PromptsPath string

	OpenAIAPIKey          string
	OpenAIChatModel       string
	OpenAIUtilityModel    string
	OpenAITranscribeModel string

	// STTProvider selects the transcription backend: "openai" or "google".
	STTProvider string

	// EnableWordTally turns on the per-turn vocabulary classification.
	EnableWordTally bool

	// GoogleCredentials is the raw service-account JSON payload. Optional:
	// without it speech synthesis is disabled and responses carry no audio.
	GoogleCredentials []byte
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		Port:                  getenv("PORT", "8080"),
		PromptsPath:           getenv("PROMPTS_PATH", "prompts.yaml"),
		OpenAIAPIKey:          os.Getenv("OPENAI_API_KEY"),
		OpenAIChatModel:       getenv("OPENAI_CHAT_MODEL", "gpt-4o"),
		OpenAIUtilityModel:    getenv("OPENAI_UTILITY_MODEL", "gpt-4o-mini"),
		OpenAITranscribeModel: getenv("OPENAI_TRANSCRIBE_MODEL", "whisper-1"),
		STTProvider:           getenv("STT_PROVIDER", "openai"),
		EnableWordTally:       os.Getenv("WORD_TALLY_ENABLED") == "true",
	}

	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required")
	}

	if creds := os.Getenv("GOOGLE_CREDENTIALS"); creds != "" {
		// Service-account JSON pasted into an env var often carries literal
		// newlines inside the private key; re-escape them so the payload
		// stays valid JSON.
		cfg.GoogleCredentials = []byte(strings.ReplaceAll(creds, "\n", "\\n"))
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
