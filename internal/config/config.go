// Package config loads process configuration the way the teacher does:
// spf13/viper reading a .env file overlaid with environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config aggregates every configuration group the service needs.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Oracle   OracleConfig
	Matching MatchingConfig
	Auth     AuthConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// OracleConfig configures the semantic-similarity oracle (§6 external
// interfaces): its Gemini backend, and the fallback/batching knobs from §5.
type OracleConfig struct {
	Enabled      bool
	APIKey       string
	Model        string
	BatchSize    int
	CacheTTL     time.Duration
	RequestTimeout time.Duration
}

// MatchingConfig is the run_cycle config of spec §6.
type MatchingConfig struct {
	TopK                    int
	PopularityCap           int
	ExpiryDays              int
	IntentFallbackThreshold float64
	SemanticMatchThreshold  float64
}

// AuthConfig guards the HTTP driving surface that triggers cycles.
type AuthConfig struct {
	BearerSecret string
}

type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from a .env file (if present) and the
// environment, then validates it, following the teacher's Load/Validate split.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()

	viper.SetDefault("MATCH_TOP_K", 20)
	viper.SetDefault("MATCH_POPULARITY_CAP", 5)
	viper.SetDefault("MATCH_EXPIRY_DAYS", 7)
	viper.SetDefault("MATCH_INTENT_FALLBACK_THRESHOLD", 0.30)
	viper.SetDefault("MATCH_SEMANTIC_THRESHOLD", 0.65)
	viper.SetDefault("ORACLE_BATCH_SIZE", 32)
	viper.SetDefault("ORACLE_CACHE_TTL_HOURS", 24)
	viper.SetDefault("ORACLE_TIMEOUT_SECONDS", 10)
	viper.SetDefault("ORACLE_MODEL", "gemini-1.5-pro")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")

	cfg := &Config{
		Server: ServerConfig{
			Host:         viper.GetString("SERVER_HOST"),
			Port:         viper.GetInt("SERVER_PORT"),
			Env:          viper.GetString("ENV"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetInt("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			DBName:   viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSL_MODE"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetInt("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Oracle: OracleConfig{
			Enabled:        viper.GetBool("ORACLE_ENABLED"),
			APIKey:         viper.GetString("GEMINI_API_KEY"),
			Model:          viper.GetString("ORACLE_MODEL"),
			BatchSize:      viper.GetInt("ORACLE_BATCH_SIZE"),
			CacheTTL:       time.Duration(viper.GetInt("ORACLE_CACHE_TTL_HOURS")) * time.Hour,
			RequestTimeout: time.Duration(viper.GetInt("ORACLE_TIMEOUT_SECONDS")) * time.Second,
		},
		Matching: MatchingConfig{
			TopK:                    viper.GetInt("MATCH_TOP_K"),
			PopularityCap:           viper.GetInt("MATCH_POPULARITY_CAP"),
			ExpiryDays:              viper.GetInt("MATCH_EXPIRY_DAYS"),
			IntentFallbackThreshold: viper.GetFloat64("MATCH_INTENT_FALLBACK_THRESHOLD"),
			SemanticMatchThreshold:  viper.GetFloat64("MATCH_SEMANTIC_THRESHOLD"),
		},
		Auth: AuthConfig{
			BearerSecret: viper.GetString("AUTH_BEARER_SECRET"),
		},
		Logging: LoggingConfig{
			Level:  viper.GetString("LOG_LEVEL"),
			Format: viper.GetString("LOG_FORMAT"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration values that must be present for the
// service to start, mirroring the teacher's Validate method.
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Matching.PopularityCap <= 0 {
		return fmt.Errorf("matching popularity cap must be positive")
	}
	if c.Matching.TopK <= 0 {
		return fmt.Errorf("matching top_k must be positive")
	}
	if c.Matching.SemanticMatchThreshold < 0 || c.Matching.SemanticMatchThreshold > 1 {
		return fmt.Errorf("semantic match threshold must be in [0,1]")
	}
	if c.Matching.IntentFallbackThreshold < 0 || c.Matching.IntentFallbackThreshold > 1 {
		return fmt.Errorf("intent fallback threshold must be in [0,1]")
	}
	if c.Oracle.Enabled && c.Oracle.APIKey == "" {
		return fmt.Errorf("gemini api key is required when the oracle is enabled")
	}
	return nil
}

// GetDSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// GetAddr returns the Redis address.
func (c *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
