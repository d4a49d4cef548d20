package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Provider Provider `mapstructure:"provider"`
	Backtest Backtest `mapstructure:"backtest"`
	Logger   Logger   `mapstructure:"logger"`
	Server   Server   `mapstructure:"server"`
	Database Database `mapstructure:"database"`
}

// Provider holds the configuration for the market data provider.
type Provider struct {
	BaseURL        string  `mapstructure:"base_url"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// Server holds the configuration for the web server.
type Server struct {
	Port int `mapstructure:"port"`
}

// Database holds the configuration for the journal database.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Backtest holds the simulation defaults.
type Backtest struct {
	InitialCapital float64 `mapstructure:"initial_capital"`
	FeeBuy         float64 `mapstructure:"fee_buy"`
	FeeSell        float64 `mapstructure:"fee_sell"`
	Strategy       string  `mapstructure:"strategy"`
	FastPeriod     int     `mapstructure:"fast_period"`
	SlowPeriod     int     `mapstructure:"slow_period"`
	Period         int     `mapstructure:"period"`
	Oversold       float64 `mapstructure:"oversold"`
	Overbought     float64 `mapstructure:"overbought"`
	Lookback       int     `mapstructure:"lookback"`
	LookbackMonths int     `mapstructure:"lookback_months"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")    // or yaml, json

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("provider.rate_limit", 5) // requests per second
	viper.SetDefault("provider.rate_limit_burst", 2)
	viper.SetDefault("backtest.initial_capital", 10_000_000)
	viper.SetDefault("backtest.fee_buy", 0.0015)
	viper.SetDefault("backtest.fee_sell", 0.0025)
	viper.SetDefault("backtest.strategy", "MA Cross")
	viper.SetDefault("backtest.fast_period", 20)
	viper.SetDefault("backtest.slow_period", 50)
	viper.SetDefault("backtest.period", 14)
	viper.SetDefault("backtest.oversold", 30)
	viper.SetDefault("backtest.overbought", 70)
	viper.SetDefault("backtest.lookback", 20)
	viper.SetDefault("backtest.lookback_months", 6)

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
