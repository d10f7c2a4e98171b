package config

import "github.com/spf13/viper"

// Config holds typed configuration for the reminder worker.
type Config struct {
	LogLevel    string
	MetricsAddr string

	PostgresDSN   string
	RedisAddr     string
	KafkaBrokers  string
	ConsumerGroup string

	SMTPHost     string
	SMTPPort     int
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	PushGatewayURL string
	SMSGatewayURL  string

	OTelEndpoint string
}

// Load reads all values from the given viper instance.
func Load(v *viper.Viper) Config {
	return Config{
		LogLevel:    v.GetString("log_level"),
		MetricsAddr: v.GetString("metrics_addr"),

		PostgresDSN:   v.GetString("postgres_dsn"),
		RedisAddr:     v.GetString("redis_addr"),
		KafkaBrokers:  v.GetString("kafka_brokers"),
		ConsumerGroup: v.GetString("consumer_group"),

		SMTPHost:     v.GetString("smtp_host"),
		SMTPPort:     v.GetInt("smtp_port"),
		SMTPFrom:     v.GetString("smtp_from"),
		SMTPUsername: v.GetString("smtp_username"),
		SMTPPassword: v.GetString("smtp_password"),

		PushGatewayURL: v.GetString("push_gateway_url"),
		SMSGatewayURL:  v.GetString("sms_gateway_url"),

		OTelEndpoint: v.GetString("otel_endpoint"),
	}
}
