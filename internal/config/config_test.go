package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"OPENAI_API_KEY", "OPENAI_MODEL", "LLM_PROVIDER", "DB_USER", "DB_PASSWORD", "DB_HOST",
	"DB_PORT", "DB_NAME", "CHECKPOINT_BACKEND", "LANGFUSE_PUBLIC_KEY", "LANGFUSE_SECRET_KEY",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.LLMProvider)
	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, "5432", cfg.DBPort)
	assert.Equal(t, BackendPostgres, cfg.CheckpointBackend)
	assert.False(t, cfg.LangfuseEnabled())
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(
		"OPENAI_API_KEY=sk-test\nDB_USER=alex\nDB_PASSWORD=secret\nDB_NAME=academy\n"+
			"LANGFUSE_PUBLIC_KEY=pk\nLANGFUSE_SECRET_KEY=sk\n"), 0o600))
	t.Setenv("DB_HOST", "db.internal")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-test", cfg.OpenAIKey)
	assert.True(t, cfg.LangfuseEnabled())
	require.NoError(t, cfg.Validate())

	p := cfg.PostgresParams()
	assert.Equal(t, "alex", p.User)
	assert.Equal(t, "secret", p.Password)
	assert.Equal(t, "db.internal", p.Host)
	assert.Equal(t, "academy", p.Name)
}

func TestValidate(t *testing.T) {
	cfg := Config{OpenAIKey: "k", CheckpointBackend: BackendSqlite, LLMProvider: "gopenai"}
	assert.NoError(t, cfg.Validate())

	cfg.OpenAIKey = ""
	assert.ErrorContains(t, cfg.Validate(), "OPENAI_API_KEY")

	cfg.OpenAIKey = "k"
	cfg.CheckpointBackend = "mongo"
	assert.ErrorContains(t, cfg.Validate(), "mongo")

	cfg.CheckpointBackend = BackendMemory
	cfg.LLMProvider = "ernie"
	assert.ErrorContains(t, cfg.Validate(), "ernie")
}
