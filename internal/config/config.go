package config

import (
	"github.com/spf13/viper"
)

// Config stores all configuration for the application.
type Config struct {
	PostgresURL       string `mapstructure:"POSTGRES_URL"`
	RedisAddr         string `mapstructure:"REDIS_ADDR"`
	ServerPort        string `mapstructure:"SERVER_PORT"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	RenderTimeout     int    `mapstructure:"RENDER_TIMEOUT"`
	SettleDelayMS     int    `mapstructure:"SETTLE_DELAY_MS"`
	MaxItemsPerSource int    `mapstructure:"MAX_ITEMS_PER_SOURCE"`
	LookbackDays      int    `mapstructure:"LOOKBACK_DAYS"`
	CacheTTLMinutes   int    `mapstructure:"CACHE_TTL_MINUTES"`
}

// Load reads configuration from file or environment variables.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	// Attempt to read the .env file, but don't fail if it's not present.
	// This allows configuration purely through environment variables in production.
	_ = viper.ReadInConfig()

	// Set default values
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("RENDER_TIMEOUT", 30) // in seconds
	viper.SetDefault("SETTLE_DELAY_MS", 1500)
	viper.SetDefault("MAX_ITEMS_PER_SOURCE", 20)
	viper.SetDefault("LOOKBACK_DAYS", 30)
	viper.SetDefault("CACHE_TTL_MINUTES", 60)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
