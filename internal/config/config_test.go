package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Full(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8080
database:
  driver: postgres
  host: db.local
  port: 5432
  user: app
  password: secret
  name: labinsight
  sslMode: require
openai:
  apiKey: sk-test
  model: gpt-4o
  temperature: 0.3
  topP: 0.8
auth:
  jwtSecret: hmac-secret
retention:
  sweepIntervalMinutes: 15
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.Model)
	assert.Equal(t, float32(0.3), cfg.OpenAI.Temperature)
	assert.Equal(t, "hmac-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, 15, cfg.Retention.SweepIntervalMinutes)
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8080
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	assert.Equal(t, float32(0.7), cfg.OpenAI.Temperature)
	assert.Equal(t, float32(0.95), cfg.OpenAI.TopP)
	assert.Equal(t, 60, cfg.Retention.SweepIntervalMinutes)
}

func TestLoad_APIKeyFromEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	path := writeConfig(t, "server:\n  port: 1\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-env", cfg.OpenAI.APIKey)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDSNHelpers(t *testing.T) {
	var cfg Config
	cfg.Database.Host = "db.local"
	cfg.Database.Port = 3306
	cfg.Database.User = "app"
	cfg.Database.Password = "secret"
	cfg.Database.Name = "labinsight"

	assert.Equal(t,
		"app:secret@tcp(db.local:3306)/labinsight?parseTime=true&charset=utf8mb4&loc=UTC",
		cfg.MySQLDSN())

	assert.Equal(t,
		"host=db.local port=3306 user=app password=secret dbname=labinsight sslmode=disable",
		cfg.PostgresDSN())

	cfg.Database.SSLMode = "require"
	assert.Contains(t, cfg.PostgresDSN(), "sslmode=require")
}
