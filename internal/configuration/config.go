package configuration

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/pkg/errors"
	"waterme/internal/logger"
)

type Config struct {
	ServerAddress     string
	DatabaseURI       string
	RedisAddress      string
	MQTTBrokerURI     string
	EngineURL         string
	BotToken          string
	NotifyInterval    time.Duration
	LogLevel          logger.Level
	LogToFile         bool
	AdminPasswordHash string
	AuthSecretKey     jwk.Key
}

type tomlConfig struct {
	ServerAddress         string `toml:"server_address"`
	DatabaseURI           string `toml:"database_uri"`
	RedisAddress          string `toml:"redis_address"`
	MQTTBrokerURI         string `toml:"mqtt_broker_uri"`
	EngineURL             string `toml:"engine_url"`
	BotToken              string `toml:"bot_token"`
	NotifyIntervalMinutes int    `toml:"notify_interval_minutes"`
	LogLevel              string `toml:"log_level"`
	LogToFile             bool   `toml:"log_to_file"`
	AdminPasswordHash     string `toml:"admin_password_hash"`
	AuthSecretKey         string `toml:"auth_secret_key"`
}

func GetConfig(path string) (*Config, error) {
	// Secrets can come from a .env file or the environment instead of config.toml.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "failed to load .env file")
	}

	var tc tomlConfig
	_, err := toml.DecodeFile(path, &tc)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode toml file with path: %s", path)
	}

	if v := os.Getenv("BOT_API_KEY"); v != "" {
		tc.BotToken = v
	}
	if v := os.Getenv("AUTH_SECRET_KEY"); v != "" {
		tc.AuthSecretKey = v
	}
	if v := os.Getenv("ADMIN_PASSWORD_HASH"); v != "" {
		tc.AdminPasswordHash = v
	}

	if tc.ServerAddress == "" {
		tc.ServerAddress = "localhost:8899"
	}

	if tc.DatabaseURI == "" {
		tc.DatabaseURI = "mongodb://localhost:27017"
	}

	if tc.RedisAddress == "" {
		tc.RedisAddress = "localhost:6379"
	}

	if tc.EngineURL == "" {
		return nil, errors.New("engine_url is not set")
	}

	if tc.BotToken == "" {
		return nil, errors.New("bot_token is not set (config.toml bot_token or env BOT_API_KEY)")
	}

	if tc.NotifyIntervalMinutes < 1 {
		return nil, errors.Errorf("notify_interval_minutes too short (%d), minimum: 1", tc.NotifyIntervalMinutes)
	}

	if tc.LogLevel == "" {
		tc.LogLevel = "INFO"
	}
	logLevel, err := logger.ParseLevel(tc.LogLevel)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse log_level: %s", tc.LogLevel)
	}

	if tc.AdminPasswordHash == "" {
		return nil, errors.New("admin_password_hash is not set")
	}

	if tc.AuthSecretKey == "" {
		return nil, errors.New("auth_secret_key is not set")
	}

	authSecretKey, err := jwk.FromRaw([]byte(tc.AuthSecretKey))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create key from auth_secret_key")
	}

	return &Config{
		ServerAddress:     tc.ServerAddress,
		DatabaseURI:       tc.DatabaseURI,
		RedisAddress:      tc.RedisAddress,
		MQTTBrokerURI:     tc.MQTTBrokerURI,
		EngineURL:         tc.EngineURL,
		BotToken:          tc.BotToken,
		NotifyInterval:    time.Duration(tc.NotifyIntervalMinutes) * time.Minute,
		LogLevel:          logLevel,
		LogToFile:         tc.LogToFile,
		AdminPasswordHash: tc.AdminPasswordHash,
		AuthSecretKey:     authSecretKey,
	}, nil
}
