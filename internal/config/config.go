package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/MrJamesThe3rd/ecolefin/internal/database"
)

type Config struct {
	App struct {
		Name        string `envconfig:"APP_NAME" default:"Ecolefin"`
		Port        int    `envconfig:"PORT" default:"8080"`
		Timezone    string `envconfig:"TIMEZONE" default:"Europe/Paris"`
		RecentLimit int    `envconfig:"RECENT_LIMIT" default:"20"`
	}

	Log struct {
		Level  string `envconfig:"LOG_LEVEL" default:"info"`
		Format string `envconfig:"LOG_FORMAT" default:"text"`
	}

	DB struct {
		Driver     string `envconfig:"DB_DRIVER" default:"sqlite"`
		SQLitePath string `envconfig:"SQLITE_PATH" default:"data/ecolefin.db"`
		Host       string `envconfig:"DB_HOST" default:"localhost"`
		Port       int    `envconfig:"DB_PORT" default:"5432"`
		User       string `envconfig:"DB_USER" default:"postgres"`
		Password   string `envconfig:"DB_PASSWORD" default:""`
		Name       string `envconfig:"DB_NAME" default:"ecolefin"`
	}

	Server struct {
		Timeout     time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		CORSOrigins []string      `envconfig:"CORS_ORIGINS" default:"http://localhost:5173"`
	}
}

func (c *Config) Dialect() (database.Dialect, error) {
	switch d := database.Dialect(c.DB.Driver); d {
	case database.DialectSQLite, database.DialectPostgres:
		return d, nil
	default:
		return "", fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}
}

// ConnectionString returns the DSN for the configured driver.
func (c *Config) ConnectionString() string {
	if c.DB.Driver == string(database.DialectPostgres) {
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(c.DB.User, c.DB.Password),
			Host:     fmt.Sprintf("%s:%d", c.DB.Host, c.DB.Port),
			Path:     c.DB.Name,
			RawQuery: "sslmode=disable",
		}

		return u.String()
	}

	return c.DB.SQLitePath
}

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

	if _, err := cfg.Dialect(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
