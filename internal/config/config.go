package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name     string `envconfig:"APP_NAME" default:"Ilara"`
		Port     int    `envconfig:"PORT" default:"8080"`
		Timezone string `envconfig:"APP_TIMEZONE" default:"UTC"`
	}

	Log struct {
		Format string `envconfig:"LOG_FORMAT" default:"text"`
		Level  string `envconfig:"LOG_LEVEL" default:"info"`
		// File receives the TUI's logs; the terminal is busy drawing.
		File string `envconfig:"LOG_FILE"`
	}

	DB struct {
		// URL overrides the individual fields when set.
		URL      string `envconfig:"DATABASE_URL"`
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"ilara"`
		SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	}

	Cache struct {
		RedisAddr     string        `envconfig:"REDIS_ADDR"`
		RedisPassword string        `envconfig:"REDIS_PASSWORD"`
		RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
		TTL           time.Duration `envconfig:"CACHE_TTL" default:"30s"`
	}

	Catalog struct {
		Categories        []string `envconfig:"CATALOG_CATEGORIES" default:"Lips,Eyes,Face,Skincare,Accessories"`
		LowStockThreshold int      `envconfig:"LOW_STOCK_THRESHOLD" default:"3"`
	}

	Server struct {
		Timeout       time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		AllowedOrigin string        `envconfig:"ALLOWED_ORIGIN" default:"http://localhost:3000"`
		RateLimit     int           `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`
	}
}

func (c *Config) ConnectionString() string {
	if c.DB.URL != "" {
		return c.DB.URL
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name, c.DB.SSLMode)
}

// Location resolves App.Timezone, used to bucket ledger entries by month.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.App.Timezone, err)
	}

	return loc, nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	categories := cfg.Catalog.Categories[:0]

	for _, c := range cfg.Catalog.Categories {
		if c = strings.TrimSpace(c); c != "" {
			categories = append(categories, c)
		}
	}

	cfg.Catalog.Categories = categories

	if cfg.Catalog.LowStockThreshold < 0 {
		return nil, fmt.Errorf("LOW_STOCK_THRESHOLD must be >= 0, got %d", cfg.Catalog.LowStockThreshold)
	}

	switch cfg.Log.Format {
	case "text", "json":
	default:
		return nil, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.Log.Format)
	}

	return &cfg, nil
}
