package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime settings. Every field can be overridden via
// environment variables (SERVER_PORT, MONGO_URL, ...).
type Config struct {
	ServerPort    string        `mapstructure:"SERVER_PORT"`
	MongoURL      string        `mapstructure:"MONGO_URL"`
	DBName        string        `mapstructure:"DB_NAME"`
	JWTSecret     string        `mapstructure:"JWT_SECRET"`
	TokenDuration time.Duration `mapstructure:"TOKEN_DURATION"`
	KafkaBrokers  []string      `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic    string        `mapstructure:"KAFKA_TOPIC"`
	LogLevel      string        `mapstructure:"LOG_LEVEL"`
}

func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("MONGO_URL", "")
	v.SetDefault("DB_NAME", "kasir")
	v.SetDefault("JWT_SECRET", "dev-secret-change-me")
	v.SetDefault("TOKEN_DURATION", "24h")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_TOPIC", "kasir.sales")
	v.SetDefault("LOG_LEVEL", "info")

	v.AutomaticEnv()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	// brokers come in as a comma-separated list
	if raw := v.GetString("KAFKA_BROKERS"); raw != "" {
		c.KafkaBrokers = strings.Split(raw, ",")
		for i := range c.KafkaBrokers {
			c.KafkaBrokers[i] = strings.TrimSpace(c.KafkaBrokers[i])
		}
	} else {
		c.KafkaBrokers = nil
	}
	return c, nil
}
