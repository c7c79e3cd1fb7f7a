package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Leaderboard LeaderboardConfig `mapstructure:"leaderboard"`
	Log         LogConfig         `mapstructure:"log"`
}

type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // "sqlite3" or "postgres"
	DSN    string `mapstructure:"dsn"`
}

type AuthConfig struct {
	SessionSecret string        `mapstructure:"session_secret"`
	JWTSecret     string        `mapstructure:"jwt_secret"`
	TokenTTL      time.Duration `mapstructure:"token_ttl"`
}

type LeaderboardConfig struct {
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
	DefaultLimit int           `mapstructure:"default_limit"`
	MaxLimit     int           `mapstructure:"max_limit"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads config.yaml (and an optional config.local.yaml on top) from the
// working directory or ./config, then applies MEMORYMATCH_* environment
// overrides. A missing config file is not an error.
func Load() (*Config, error) {
	return load(viper.New(), ".", "./config")
}

func load(v *viper.Viper, paths ...string) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000", "http://localhost:8080"})

	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.dsn", "./memorymatch.db")

	v.SetDefault("auth.session_secret", "your-secret-key-change-this-in-production")
	v.SetDefault("auth.jwt_secret", "your-jwt-secret-change-this-in-production")
	v.SetDefault("auth.token_ttl", "24h")

	v.SetDefault("leaderboard.cache_ttl", "30s")
	v.SetDefault("leaderboard.default_limit", 50)
	v.SetDefault("leaderboard.max_limit", 100)

	v.SetDefault("log.level", "info")

	// Allow environment variables
	v.SetEnvPrefix("MEMORYMATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.BindEnv("server.port", "MEMORYMATCH_SERVER_PORT", "PORT")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// Config file not found, use defaults
	} else {
		// Read local config file for overrides (ignored by git)
		v.SetConfigName("config.local")
		if err := v.MergeInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, err
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
