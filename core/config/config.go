package config

import (
	"fmt"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"resource-scheduler/core/logger"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Crypto    CryptoConfig
	GoogleAPI ProviderAPIConfig
	Microsoft ProviderAPIConfig
}

type AppConfig struct {
	Port        int
	FrontendURL string
	// MigrateLegacyTokens enqueues the one-time plaintext-to-ciphertext
	// token migration job at boot.
	MigrateLegacyTokens bool
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
}

type CryptoConfig struct {
	// TokenKey is the base64-encoded 32-byte key for token encryption at
	// rest. Process-wide configuration, never stored alongside ciphertext.
	TokenKey string
}

type ProviderAPIConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

var (
	instance *Config
	mu       sync.RWMutex
)

func Init() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Info("config: no .env file found, using environment")
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", 7070)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "resource_scheduler")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("FRONTEND_URL", "http://localhost:3000")
	v.SetDefault("MIGRATE_LEGACY_TOKENS", false)

	cfg := &Config{
		App: AppConfig{
			Port:                v.GetInt("PORT"),
			FrontendURL:         v.GetString("FRONTEND_URL"),
			MigrateLegacyTokens: v.GetBool("MIGRATE_LEGACY_TOKENS"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
		},
		Crypto: CryptoConfig{
			TokenKey: v.GetString("CALENDAR_TOKEN_KEY"),
		},
		GoogleAPI: ProviderAPIConfig{
			ClientID:     v.GetString("GOOGLE_CLIENT_ID"),
			ClientSecret: v.GetString("GOOGLE_CLIENT_SECRET"),
			RedirectURI:  v.GetString("GOOGLE_REDIRECT_URI"),
		},
		Microsoft: ProviderAPIConfig{
			ClientID:     v.GetString("MICROSOFT_CLIENT_ID"),
			ClientSecret: v.GetString("MICROSOFT_CLIENT_SECRET"),
			RedirectURI:  v.GetString("MICROSOFT_REDIRECT_URI"),
		},
	}

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.Crypto.TokenKey == "" {
		return nil, fmt.Errorf("CALENDAR_TOKEN_KEY is required")
	}

	mu.Lock()
	instance = cfg
	mu.Unlock()

	return cfg, nil
}

func Get() *Config {
	cfg, ok := GetSafe()
	if !ok {
		panic("config: Get called before Init")
	}
	return cfg
}

func GetSafe() (*Config, bool) {
	mu.RLock()
	defer mu.RUnlock()
	return instance, instance != nil
}

// Set swaps the process config. Test helper.
func Set(cfg *Config) {
	mu.Lock()
	instance = cfg
	mu.Unlock()
}
