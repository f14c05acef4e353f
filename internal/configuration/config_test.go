package configuration

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"waterme/internal/logger"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestGetConfig(t *testing.T) {
	path := writeConfig(t, `
server_address = "0.0.0.0:9000"
engine_url = "http://engine:5000"
bot_token = "123:abc"
notify_interval_minutes = 30
log_level = "DEBUG"
admin_password_hash = "$2a$10$hash"
auth_secret_key = "secret-key-for-tests"
`)

	conf, err := GetConfig(path)
	if err != nil {
		t.Fatalf("GetConfig failed: %v", err)
	}
	if conf.ServerAddress != "0.0.0.0:9000" {
		t.Errorf("ServerAddress = %s", conf.ServerAddress)
	}
	if conf.DatabaseURI != "mongodb://localhost:27017" {
		t.Errorf("DatabaseURI default not applied, got: %s", conf.DatabaseURI)
	}
	if conf.RedisAddress != "localhost:6379" {
		t.Errorf("RedisAddress default not applied, got: %s", conf.RedisAddress)
	}
	if conf.NotifyInterval != 30*time.Minute {
		t.Errorf("NotifyInterval = %v, want 30m", conf.NotifyInterval)
	}
	if conf.LogLevel != logger.LevelDebug {
		t.Errorf("LogLevel = %v, want DEBUG", conf.LogLevel)
	}
	if conf.AuthSecretKey == nil {
		t.Error("AuthSecretKey not built")
	}
}

func TestGetConfigMissingRequired(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "missing engine_url",
			content: `
bot_token = "123:abc"
notify_interval_minutes = 30
admin_password_hash = "$2a$10$hash"
auth_secret_key = "secret-key-for-tests"
`,
		},
		{
			name: "missing bot_token",
			content: `
engine_url = "http://engine:5000"
notify_interval_minutes = 30
admin_password_hash = "$2a$10$hash"
auth_secret_key = "secret-key-for-tests"
`,
		},
		{
			name: "interval too short",
			content: `
engine_url = "http://engine:5000"
bot_token = "123:abc"
notify_interval_minutes = 0
admin_password_hash = "$2a$10$hash"
auth_secret_key = "secret-key-for-tests"
`,
		},
		{
			name: "bad log level",
			content: `
engine_url = "http://engine:5000"
bot_token = "123:abc"
notify_interval_minutes = 30
log_level = "LOUD"
admin_password_hash = "$2a$10$hash"
auth_secret_key = "secret-key-for-tests"
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := GetConfig(writeConfig(t, tt.content)); err == nil {
				t.Error("GetConfig succeeded, want error")
			}
		})
	}
}

func TestGetConfigEnvOverrides(t *testing.T) {
	t.Setenv("BOT_API_KEY", "456:env")
	t.Setenv("ADMIN_PASSWORD_HASH", "$2a$10$envhash")
	path := writeConfig(t, `
engine_url = "http://engine:5000"
bot_token = "123:abc"
notify_interval_minutes = 30
auth_secret_key = "secret-key-for-tests"
`)

	conf, err := GetConfig(path)
	if err != nil {
		t.Fatalf("GetConfig failed: %v", err)
	}
	if conf.BotToken != "456:env" {
		t.Errorf("BotToken = %s, want env override 456:env", conf.BotToken)
	}
	if conf.AdminPasswordHash != "$2a$10$envhash" {
		t.Errorf("AdminPasswordHash = %s, want env value", conf.AdminPasswordHash)
	}
}
