package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"stockcard/internal/card"
)

// EnvPrefix prefixes every environment override, e.g. STOCKCARD_SERVER_PORT.
const EnvPrefix = "STOCKCARD"

type Server struct {
	Port              string `mapstructure:"port" validate:"required,numeric"`
	RequestTimeoutSec int    `mapstructure:"request_timeout_sec" validate:"gt=0"`
}

type AlphaVantage struct {
	Endpoint              string `mapstructure:"endpoint" validate:"required,url"`
	APIKey                string `mapstructure:"api_key" validate:"required"`
	MaxRequestsPerMinute  int    `mapstructure:"max_requests_per_minute" validate:"gte=0"`
	Burst                 int    `mapstructure:"burst" validate:"gte=0"`
	MinRequestIntervalSec int    `mapstructure:"min_request_interval_sec" validate:"gte=0"`
}

type Config struct {
	Server        Server       `mapstructure:"server"`
	AlphaVantage  AlphaVantage `mapstructure:"alphavantage"`
	Card          card.Style   `mapstructure:"card"`
	DefaultSymbol string       `mapstructure:"default_symbol" validate:"required"`
	LogLevel      string       `mapstructure:"log_level" validate:"omitempty,oneof=debug info warn warning error"`
}

func Default() Config {
	return Config{
		Server: Server{Port: "8080", RequestTimeoutSec: 10},
		AlphaVantage: AlphaVantage{
			Endpoint:             "https://www.alphavantage.co/query",
			APIKey:               "demo",
			MaxRequestsPerMinute: 5,
			Burst:                1,
		},
		Card:          card.DefaultStyle(),
		DefaultSymbol: "MSFT",
		LogLevel:      "info",
	}
}

// RequestTimeout is the per-request budget covering fetch, normalize and compile.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSec) * time.Second
}

// MinRequestInterval is the spacing used when no per-minute budget is set.
func (c Config) MinRequestInterval() time.Duration {
	return time.Duration(c.AlphaVantage.MinRequestIntervalSec) * time.Second
}

// legacyEnv maps keys to the unprefixed variable names that are also honored.
var legacyEnv = map[string]string{
	"server.port":                "PORT",
	"server.request_timeout_sec": "REQUEST_TIMEOUT_SEC",
	"alphavantage.api_key":       "ALPHAVANTAGE_API_KEY",
	"alphavantage.endpoint":      "ALPHAVANTAGE_ENDPOINT",
	"log_level":                  "LOG_LEVEL",
}

// Load reads JSON config from path. If path is empty, config.json in the working
// directory is used when present; a missing file yields defaults. Environment
// variables override file values.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return Config{}, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if path == "" {
		if _, err := os.Stat("config.json"); err == nil {
			path = "config.json"
		}
	}
	if path != "" {
		if _, err := os.Stat(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("read config: %w", err)
		} else if err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("json")
			if err := v.ReadInConfig(); err != nil {
				return Config{}, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.DefaultSymbol = strings.ToUpper(strings.TrimSpace(cfg.DefaultSymbol))
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.request_timeout_sec", d.Server.RequestTimeoutSec)

	v.SetDefault("alphavantage.endpoint", d.AlphaVantage.Endpoint)
	v.SetDefault("alphavantage.api_key", d.AlphaVantage.APIKey)
	v.SetDefault("alphavantage.max_requests_per_minute", d.AlphaVantage.MaxRequestsPerMinute)
	v.SetDefault("alphavantage.burst", d.AlphaVantage.Burst)
	v.SetDefault("alphavantage.min_request_interval_sec", d.AlphaVantage.MinRequestIntervalSec)

	v.SetDefault("card.font_family", d.Card.FontFamily)
	v.SetDefault("card.positive_color", d.Card.PositiveColor)
	v.SetDefault("card.negative_color", d.Card.NegativeColor)
	v.SetDefault("card.up_glyph", d.Card.UpGlyph)
	v.SetDefault("card.down_glyph", d.Card.DownGlyph)

	v.SetDefault("default_symbol", d.DefaultSymbol)
	v.SetDefault("log_level", d.LogLevel)
}
