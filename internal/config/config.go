package config

import (
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application.
type Config struct {
	Server ServerConfig
	Auth   AuthConfig
	Coupon CouponConfig
	Sheet  SheetConfig
	Log    LogConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port            string `envconfig:"SERVER_PORT" default:"3000"`
	ShutdownTimeout int    `envconfig:"SHUTDOWN_TIMEOUT" default:"30"` // seconds
}

// AuthConfig holds the shared app password. Leaving it empty disables the
// gate; set it in any deployment reachable outside the office network.
type AuthConfig struct {
	Password string `envconfig:"APP_PASSWORD" default:""`
}

// CouponConfig holds coupon presentation and page geometry settings.
// Row height was tuned against real printers; override it when a different
// renderer overflows the 13-row page.
type CouponConfig struct {
	ValueLabel           string  `envconfig:"COUPON_VALUE_LABEL" default:"₹10"`
	GridRows             int     `envconfig:"COUPON_GRID_ROWS" default:"13"`
	GridCols             int     `envconfig:"COUPON_GRID_COLS" default:"5"`
	RowHeightCm          float64 `envconfig:"COUPON_ROW_HEIGHT_CM" default:"1.9"`
	HeaderIncludesPrefix bool    `envconfig:"COUPON_HEADER_INCLUDES_PREFIX" default:"true"`
}

// SheetConfig holds roster download configuration.
type SheetConfig struct {
	FetchTimeout int `envconfig:"SHEET_FETCH_TIMEOUT" default:"30"` // seconds
	FetchRetries int `envconfig:"SHEET_FETCH_RETRIES" default:"3"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Pretty bool   `envconfig:"LOG_PRETTY" default:"false"`
}

// Load parses environment variables into the Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
