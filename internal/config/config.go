package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server   Server   `mapstructure:"server"`
	Database Database `mapstructure:"database"`
	Logger   Logger   `mapstructure:"logger"`
	Journal  Journal  `mapstructure:"journal"`
	Mirror   Mirror   `mapstructure:"mirror"`
	Catalog  []Seed   `mapstructure:"catalog"`
}

// Server holds the configuration for the web server.
type Server struct {
	Port        int    `mapstructure:"port"`
	StaticDir   string `mapstructure:"static_dir"`
	DefaultUser string `mapstructure:"default_user"`
}

// Database holds the configuration for the database.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Journal holds journaling defaults.
type Journal struct {
	// Currency code reported alongside monetary values. Formatting itself
	// is left to the client.
	Currency string `mapstructure:"currency"`
}

// Mirror holds the configuration for the optional remote mirror.
type Mirror struct {
	Enabled        bool    `mapstructure:"enabled"`
	BaseURL        string  `mapstructure:"base_url"`
	ApiKey         string  `mapstructure:"api_key"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// Seed describes one instrument seeded into the catalog at migration time.
type Seed struct {
	Symbol       string  `mapstructure:"symbol"`
	Name         string  `mapstructure:"name"`
	AssetClass   string  `mapstructure:"asset_class"`
	Market       string  `mapstructure:"market"`
	TickSize     float64 `mapstructure:"tick_size"`
	ValuePerTick float64 `mapstructure:"value_per_tick"`
	ContractSize float64 `mapstructure:"contract_size"`
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
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.default_user", "local")
	viper.SetDefault("database.dsn", "journal.db")
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("journal.currency", "USD")
	viper.SetDefault("mirror.rate_limit", 5)       // requests per second
	viper.SetDefault("mirror.rate_limit_burst", 2) // burst size

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
