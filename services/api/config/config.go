package config

import "github.com/spf13/viper"

// Config holds typed configuration for the api service.
type Config struct {
	LogLevel    string
	Environment string
	HTTPPort    string
	MetricsAddr string

	PostgresDSN  string
	RedisAddr    string
	KafkaBrokers string

	JWTSecret    string
	CookieSecure bool
	CORSOrigins  []string

	EventsEnabled bool

	ChatBaseURL   string
	ChatAPIKey    string
	ChatModel     string
	ChatRateLimit int

	OTelEndpoint string
}

// Load reads all values from the given viper instance.
func Load(v *viper.Viper) Config {
	return Config{
		LogLevel:    v.GetString("log_level"),
		Environment: v.GetString("environment"),
		HTTPPort:    v.GetString("http_port"),
		MetricsAddr: v.GetString("metrics_addr"),

		PostgresDSN:  v.GetString("postgres_dsn"),
		RedisAddr:    v.GetString("redis_addr"),
		KafkaBrokers: v.GetString("kafka_brokers"),

		JWTSecret:    v.GetString("jwt_secret"),
		CookieSecure: v.GetBool("cookie_secure"),
		CORSOrigins:  v.GetStringSlice("cors_origins"),

		EventsEnabled: v.GetBool("events_enabled"),

		ChatBaseURL:   v.GetString("chat_base_url"),
		ChatAPIKey:    v.GetString("chat_api_key"),
		ChatModel:     v.GetString("chat_model"),
		ChatRateLimit: v.GetInt("chat_rate_limit"),

		OTelEndpoint: v.GetString("otel_endpoint"),
	}
}
