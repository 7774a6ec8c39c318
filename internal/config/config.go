package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"paper-chat-be/internal/constant"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Chat     ChatConfig
	Content  ContentConfig
	Ai       AIConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	RedisURL           string
}

type DatabaseConfig struct {
	// Connection is the Postgres DSN for the analytics log. Empty disables
	// analytics entirely.
	Connection string
}

type ChatConfig struct {
	StoreBackend      string // "memory" or "redis"
	RateLimitPerHour  int
	MaxMessages       int
	MaxMessageTokens  int
	InactivityTimeout time.Duration
	CleanupInterval   time.Duration
	RateWindowStale   time.Duration
}

type ContentConfig struct {
	PapersJSONPath string
	PaperTextDir   string
}

type AIConfig struct {
	LLMProvider   string // "ollama" or "openai"
	LLMModel      string
	OllamaBaseURL string
	OpenAIBaseURL string
	OpenAIAPIKey  string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5000"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Chat: ChatConfig{
			StoreBackend:      getEnv("CHAT_STORE_BACKEND", "memory"),
			RateLimitPerHour:  getEnvAsInt("CHAT_RATE_LIMIT_PER_HOUR", constant.DefaultRateLimitPerHour),
			MaxMessages:       getEnvAsInt("CHAT_MAX_MESSAGES", constant.DefaultMaxMessages),
			MaxMessageTokens:  getEnvAsInt("CHAT_MAX_MESSAGE_TOKENS", constant.DefaultMaxMessageTokens),
			InactivityTimeout: getEnvAsMinutes("CHAT_INACTIVITY_TIMEOUT_MINUTES", constant.DefaultInactivityTimeout),
			CleanupInterval:   getEnvAsMinutes("CHAT_CLEANUP_INTERVAL_MINUTES", constant.DefaultCleanupInterval),
			RateWindowStale:   getEnvAsMinutes("CHAT_RATE_WINDOW_STALE_MINUTES", constant.DefaultRateWindowStale),
		},
		Content: ContentConfig{
			PapersJSONPath: getEnv("PAPERS_JSON_PATH", "./site/papers.json"),
			PaperTextDir:   getEnv("PAPER_TEXT_DIR", "./site/paper_texts"),
		},
		Ai: AIConfig{
			LLMProvider:   getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:      getEnv("LLM_MODEL", "llama3"),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
			OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsMinutes(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil && value > 0 {
		return time.Duration(value) * time.Minute
	}
	return fallback
}
