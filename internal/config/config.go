package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type JournalBackend string

const (
	JournalMemory    JournalBackend = "memory"
	JournalFirestore JournalBackend = "firestore"
	JournalSQLite    JournalBackend = "sqlite"
	JournalNone      JournalBackend = "none"
)

const DefaultModelName = "gemini-2.5-flash"

var ErrMissingAPIKey = errors.New("GOOGLE_API_KEY (or GEMINI_API_KEY) must be set")

type Config struct {
	Port string

	APIKey       string
	ModelName    string
	SystemPrompt string

	UploadDir      string
	MaxUploadBytes int64
	StaticDir      string

	JournalBackend JournalBackend
	GCPProjectID   string
	SQLitePath     string

	UseMockLLM   bool
	ListModels   bool
	OTLPEndpoint string
	LogLevel     string
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if v == "1" || v == "true" || v == "TRUE" {
		return true
	}
	return false
}

func getIntEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, v)
	}
	return n, nil
}

// LoadDotEnv loads a .env file from the working directory if there is one.
func LoadDotEnv() bool {
	return godotenv.Load() == nil
}

// Load reads all env vars and builds the config.
// A missing API key is an error: the process must not start without one.
func Load() (*Config, error) {
	apiKey := getEnv("GOOGLE_API_KEY", os.Getenv("GEMINI_API_KEY"))
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	maxMB, err := getIntEnv("RELAY_MAX_UPLOAD_MB", 20)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port: getEnv("PORT", "3000"),

		APIKey:       apiKey,
		ModelName:    getEnv("RELAY_MODEL_NAME", DefaultModelName),
		SystemPrompt: os.Getenv("RELAY_SYSTEM_PROMPT"),

		UploadDir:      getEnv("RELAY_UPLOAD_DIR", filepath.Join(os.TempDir(), "relay-uploads")),
		MaxUploadBytes: int64(maxMB) << 20,
		StaticDir:      getEnv("RELAY_STATIC_DIR", "public"),

		JournalBackend: parseJournalBackend(getEnv("RELAY_JOURNAL_BACKEND", "memory")),
		GCPProjectID:   os.Getenv("RELAY_GCP_PROJECT"),
		SQLitePath:     getEnv("RELAY_SQLITE_PATH", "relay.db"),

		UseMockLLM:   getBoolEnv("RELAY_USE_MOCK_LLM", false),
		ListModels:   getBoolEnv("RELAY_LIST_MODELS", false),
		OTLPEndpoint: os.Getenv("RELAY_OTLP_ENDPOINT"),
		LogLevel:     getEnv("RELAY_LOG_LEVEL", "info"),
	}

	if cfg.JournalBackend == JournalFirestore && cfg.GCPProjectID == "" {
		return nil, errors.New("RELAY_GCP_PROJECT must be set for the firestore journal backend")
	}

	return cfg, nil
}

func parseJournalBackend(s string) JournalBackend {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "firestore":
		return JournalFirestore
	case "sqlite":
		return JournalSQLite
	case "none", "off":
		return JournalNone
	default:
		return JournalMemory
	}
}
