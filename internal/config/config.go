package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Backend   BackendConfig
	Pricing   PricingConfig
	Session   SessionConfig
	Store     StoreConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	AMQP      AMQPConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Name  string
	Env   string
	Port  string
	Debug bool
}

type BackendConfig struct {
	URL          string
	Timeout      time.Duration
	ClientID     string
	ClientSecret string
	TokenURL     string
	RateLimit    float64
}

type PricingConfig struct {
	Decimals              int
	InitialExchangeRate   float64
	CurrencyRefreshPeriod time.Duration
}

type SessionConfig struct {
	MaxTickets     int
	AllowZeroStock bool
	LocationID     string
	PendingTTL     time.Duration
	CatalogTTL     time.Duration
}

type StoreConfig struct {
	Driver string
	Key    string
	Codec  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	Timezone string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type AMQPConfig struct {
	URL   string
	Queue string
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables: %v", err)
	}

	// Set defaults
	viper.SetDefault("APP_NAME", "investify-pos")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8081")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("BACKEND_URL", "http://localhost:8080/api/v1/")
	viper.SetDefault("BACKEND_TIMEOUT", "10s")
	viper.SetDefault("BACKEND_RATE_LIMIT", 20)
	viper.SetDefault("PRICING_DECIMALS", 2)
	viper.SetDefault("EXCHANGE_RATE", 1)
	viper.SetDefault("CURRENCY_REFRESH_INTERVAL", "5m")
	viper.SetDefault("MAX_TICKETS", 10)
	viper.SetDefault("ALLOW_ZERO_STOCK", false)
	viper.SetDefault("PENDING_TTL", "10m")
	viper.SetDefault("CATALOG_TTL", "5m")
	viper.SetDefault("STORE_DRIVER", "postgres")
	viper.SetDefault("STORE_KEY", "pos:session")
	viper.SetDefault("SNAPSHOT_CODEC", "json")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_NAME", "investify_pos")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "Africa/Nairobi")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("AMQP_QUEUE", "sales.completed")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	viper.SetDefault("RATE_LIMIT_REQUESTS", 300)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)

	return &Config{
		App: AppConfig{
			Name:  viper.GetString("APP_NAME"),
			Env:   viper.GetString("APP_ENV"),
			Port:  viper.GetString("APP_PORT"),
			Debug: viper.GetBool("APP_DEBUG"),
		},
		Backend: BackendConfig{
			URL:          viper.GetString("BACKEND_URL"),
			Timeout:      viper.GetDuration("BACKEND_TIMEOUT"),
			ClientID:     viper.GetString("BACKEND_CLIENT_ID"),
			ClientSecret: viper.GetString("BACKEND_CLIENT_SECRET"),
			TokenURL:     viper.GetString("BACKEND_TOKEN_URL"),
			RateLimit:    viper.GetFloat64("BACKEND_RATE_LIMIT"),
		},
		Pricing: PricingConfig{
			Decimals:              viper.GetInt("PRICING_DECIMALS"),
			InitialExchangeRate:   viper.GetFloat64("EXCHANGE_RATE"),
			CurrencyRefreshPeriod: viper.GetDuration("CURRENCY_REFRESH_INTERVAL"),
		},
		Session: SessionConfig{
			MaxTickets:     viper.GetInt("MAX_TICKETS"),
			AllowZeroStock: viper.GetBool("ALLOW_ZERO_STOCK"),
			LocationID:     viper.GetString("LOCATION_ID"),
			PendingTTL:     viper.GetDuration("PENDING_TTL"),
			CatalogTTL:     viper.GetDuration("CATALOG_TTL"),
		},
		Store: StoreConfig{
			Driver: viper.GetString("STORE_DRIVER"),
			Key:    viper.GetString("STORE_KEY"),
			Codec:  viper.GetString("SNAPSHOT_CODEC"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			SSLMode:  viper.GetString("DB_SSL_MODE"),
			Timezone: viper.GetString("DB_TIMEZONE"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		AMQP: AMQPConfig{
			URL:   viper.GetString("AMQP_URL"),
			Queue: viper.GetString("AMQP_QUEUE"),
		},
		CORS: CORSConfig{
			AllowedOrigins: viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods: viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders: viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: viper.GetInt("RATE_LIMIT_DURATION"),
		},
	}
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}

func (c *RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}
