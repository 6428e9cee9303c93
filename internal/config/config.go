// Package config loads the academy settings from a .env file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"github.com/tvme/intro-LangGraph/store/postgres"
)

// Checkpoint backends.
const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendSqlite   = "sqlite"
	BackendMemory   = "memory"
)

// Config holds every setting the lessons read.
type Config struct {
	// LLM
	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string
	LLMProvider   string // "openai" (langchaingo) or "gopenai"

	TavilyKey string

	// Postgres checkpoints
	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	CheckpointBackend string
	RedisAddr         string
	SqlitePath        string

	// Langfuse tracing (optional)
	LangfusePublicKey string
	LangfuseSecretKey string
	LangfuseHost      string

	LogLevel string
	LogFile  string
}

// Load reads envFile, when it exists, into the process environment and
// returns the resulting configuration. Variables already set win over the
// file.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	return FromEnv(), nil
}

// FromEnv reads the configuration from environment variables with defaults.
func FromEnv() Config {
	return Config{
		OpenAIKey:         os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:       getEnv("OPENAI_MODEL", ""),
		OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", ""),
		LLMProvider:       getEnv("LLM_PROVIDER", "openai"),
		TavilyKey:         os.Getenv("TAVILY_API_KEY"),
		DBUser:            getEnv("DB_USER", "postgres"),
		DBPassword:        os.Getenv("DB_PASSWORD"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBName:            getEnv("DB_NAME", "langgraph"),
		CheckpointBackend: getEnv("CHECKPOINT_BACKEND", BackendPostgres),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		SqlitePath:        getEnv("SQLITE_PATH", "checkpoints.db"),
		LangfusePublicKey: os.Getenv("LANGFUSE_PUBLIC_KEY"),
		LangfuseSecretKey: os.Getenv("LANGFUSE_SECRET_KEY"),
		LangfuseHost:      getEnv("LANGFUSE_HOST", "https://cloud.langfuse.com"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFile:           os.Getenv("LOG_FILE"),
	}
}

// PostgresParams returns the connection parameters of the checkpoint database.
func (c Config) PostgresParams() postgres.ConnParams {
	return postgres.ConnParams{
		User:     c.DBUser,
		Password: c.DBPassword,
		Host:     c.DBHost,
		Port:     c.DBPort,
		Name:     c.DBName,
	}
}

// LangfuseEnabled reports whether both Langfuse keys are set.
func (c Config) LangfuseEnabled() bool {
	return c.LangfusePublicKey != "" && c.LangfuseSecretKey != ""
}

// Validate checks the settings a model-backed lesson needs.
func (c Config) Validate() error {
	if c.OpenAIKey == "" {
		return errors.New("OPENAI_API_KEY environment variable is required")
	}
	switch c.CheckpointBackend {
	case BackendPostgres, BackendRedis, BackendSqlite, BackendMemory:
	default:
		return fmt.Errorf("unknown CHECKPOINT_BACKEND %q", c.CheckpointBackend)
	}
	switch c.LLMProvider {
	case "openai", "gopenai":
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
