// backend-go/internal/config/config.go
package config

import (
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Forecast ForecastConfig
	Storage  StorageConfig
	Events   EventsConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type CacheConfig struct {
	Enabled              bool
	RedisURL             string
	RedisHost            string
	RedisPort            string
	RedisPassword        string
	RedisDB              int
	SuggestionTTLSeconds int
}

// ForecastConfig points at the upstream forecast provider. The service is
// opaque to us; we only consume its percentile demand estimates.
type ForecastConfig struct {
	BaseURL        string
	TokenURL       string
	ClientID       string
	ClientSecret   string
	TimeoutSeconds int
}

type StorageConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

type EventsConfig struct {
	Enabled bool
	Channel string
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 15)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 15)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "replenish")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_SUGGESTION_TTL_SECONDS", 60)
		viper.SetDefault("FORECAST_BASE_URL", "")
		viper.SetDefault("FORECAST_TOKEN_URL", "")
		viper.SetDefault("FORECAST_CLIENT_ID", "")
		viper.SetDefault("FORECAST_CLIENT_SECRET", "")
		viper.SetDefault("FORECAST_TIMEOUT_SECONDS", 5)
		viper.SetDefault("STORAGE_ENABLED", false)
		viper.SetDefault("STORAGE_ENDPOINT", "")
		viper.SetDefault("STORAGE_ACCESS_KEY", "")
		viper.SetDefault("STORAGE_SECRET_KEY", "")
		viper.SetDefault("STORAGE_BUCKET", "po-documents")
		viper.SetDefault("STORAGE_REGION", "us-east-1")
		viper.SetDefault("STORAGE_USE_SSL", true)
		viper.SetDefault("EVENTS_ENABLED", false)
		viper.SetDefault("EVENTS_CHANNEL", "replenish.events")

		// Read from environment variables
		viper.AutomaticEnv()

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			Cache: CacheConfig{
				Enabled:              viper.GetBool("CACHE_ENABLED"),
				RedisURL:             viper.GetString("REDIS_URL"),
				RedisHost:            viper.GetString("REDIS_HOST"),
				RedisPort:            viper.GetString("REDIS_PORT"),
				RedisPassword:        viper.GetString("REDIS_PASSWORD"),
				RedisDB:              viper.GetInt("REDIS_DB"),
				SuggestionTTLSeconds: viper.GetInt("CACHE_SUGGESTION_TTL_SECONDS"),
			},
			Forecast: ForecastConfig{
				BaseURL:        viper.GetString("FORECAST_BASE_URL"),
				TokenURL:       viper.GetString("FORECAST_TOKEN_URL"),
				ClientID:       viper.GetString("FORECAST_CLIENT_ID"),
				ClientSecret:   viper.GetString("FORECAST_CLIENT_SECRET"),
				TimeoutSeconds: viper.GetInt("FORECAST_TIMEOUT_SECONDS"),
			},
			Storage: StorageConfig{
				Enabled:   viper.GetBool("STORAGE_ENABLED"),
				Endpoint:  viper.GetString("STORAGE_ENDPOINT"),
				AccessKey: viper.GetString("STORAGE_ACCESS_KEY"),
				SecretKey: viper.GetString("STORAGE_SECRET_KEY"),
				Bucket:    viper.GetString("STORAGE_BUCKET"),
				Region:    viper.GetString("STORAGE_REGION"),
				UseSSL:    viper.GetBool("STORAGE_USE_SSL"),
			},
			Events: EventsConfig{
				Enabled: viper.GetBool("EVENTS_ENABLED"),
				Channel: viper.GetString("EVENTS_CHANNEL"),
			},
		}
	})

	return instance
}
