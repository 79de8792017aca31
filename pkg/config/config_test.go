package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600), "Should write test file")
	return path
}

func TestLoadConfig(t *testing.T) {
	assert := assert.New(t)

	path := writeFile(t, "config.yaml", `
logLevel: debug
server:
  port: 9090
webhook:
  authToken: "12345"
  publicURL: https://hooks.example.com
`)

	c, err := LoadConfig(LoadOptions{Path: path})
	require.NoError(t, err, "Should load valid config")

	assert.Equal("debug", c.LogLevel)
	assert.Equal(9090, c.Server.Port)
	assert.Equal("12345", c.Webhook.AuthToken)
	assert.Equal("https://hooks.example.com", c.Webhook.PublicURL)
	assert.Equal(DEFAULT_WEBHOOK_PATH, c.Webhook.Path, "Should keep default path")
	assert.Equal(slog.LevelDebug, logLevel.Level(), "Should set log level")
}

func TestLoadConfigLogLevelOverride(t *testing.T) {
	path := writeFile(t, "config.yaml", "webhook:\n  authToken: secret\n")

	_, err := LoadConfig(LoadOptions{Path: path, LogLevel: "warn"})
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, logLevel.Level(), "Should use the override")

	_, err = LoadConfig(LoadOptions{Path: path, LogLevel: "verbose"})
	assert.Error(t, err, "Should reject unknown log level")
}

func TestLoadConfigEnv(t *testing.T) {
	assert := assert.New(t)

	t.Setenv("WEBHOOK_VALIDATOR_TEST_TOKEN", "from-env")
	path := writeFile(t, "config.yaml", "webhook:\n  authToken: ${WEBHOOK_VALIDATOR_TEST_TOKEN}\n")

	c, err := LoadConfig(LoadOptions{Path: path, Env: true})
	require.NoError(t, err)
	assert.Equal("from-env", c.Webhook.AuthToken, "Should expand environment variables")

	c, err = LoadConfig(LoadOptions{Path: path})
	require.NoError(t, err)
	assert.Equal("${WEBHOOK_VALIDATOR_TEST_TOKEN}", c.Webhook.AuthToken, "Should not expand without env option")
}

func TestLoadConfigEnvFile(t *testing.T) {
	t.Cleanup(func() {
		_ = os.Unsetenv("WEBHOOK_VALIDATOR_DOTENV_TOKEN")
	})

	envFile := writeFile(t, ".env", "WEBHOOK_VALIDATOR_DOTENV_TOKEN=from-dotenv\n")
	path := writeFile(t, "config.yaml", "webhook:\n  authToken: ${WEBHOOK_VALIDATOR_DOTENV_TOKEN}\n")

	c, err := LoadConfig(LoadOptions{Path: path, Env: true, EnvFile: envFile})
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", c.Webhook.AuthToken, "Should expand variables from the env file")

	_, err = LoadConfig(LoadOptions{Path: path, Env: true, EnvFile: filepath.Join(t.TempDir(), "missing.env")})
	assert.Error(t, err, "Should fail on missing env file")
}

func TestLoadConfigErrors(t *testing.T) {
	tMatrix := []struct {
		Name    string
		Content string
	}{
		{"MissingAuthToken", "logLevel: info\n"},
		{"IncompleteSSL", "server:\n  ssl:\n    enabled: true\n    cert: cert.pem\nwebhook:\n  authToken: secret\n"},
		{"InvalidPublicURL", "webhook:\n  authToken: secret\n  publicURL: hooks.example.com\n"},
		{"InvalidPath", "webhook:\n  authToken: secret\n  path: webhook\n"},
		{"InvalidYAML", "webhook: [\n"},
	}

	for _, tCase := range tMatrix {
		t.Run(tCase.Name, func(t *testing.T) {
			path := writeFile(t, "config.yaml", tCase.Content)
			_, err := LoadConfig(LoadOptions{Path: path})
			assert.Error(t, err)
		})
	}

	t.Run("MissingFile", func(t *testing.T) {
		_, err := LoadConfig(LoadOptions{Path: filepath.Join(t.TempDir(), "missing.yaml")})
		assert.Error(t, err, "Should fail when an explicit file does not exist")
	})
}

func TestDefaultConfig(t *testing.T) {
	assert := assert.New(t)

	c := DefaultConfig()
	assert.Equal(DEFAULT_LOG_LEVEL, c.LogLevel)
	assert.Equal(DEFAULT_SERVER_PORT, c.Server.Port)
	assert.Equal(DEFAULT_WEBHOOK_PATH, c.Webhook.Path)
	assert.Error(c.Validate(), "Default config has no auth token")
}
