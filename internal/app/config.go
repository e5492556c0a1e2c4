package app

import (
	"os"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Storage drivers accepted by Config.Driver.
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds the complete application configuration, loadable from
// environment variables (MARKET_ prefix), flags, or YAML config files.
type Config struct {
	DataFile    string `default:"market.json" usage:"Market data file; a .gz suffix enables compression" flag:"data-file"`
	SQLitePath  string `default:"market.db" usage:"SQLite database file" flag:"sqlite-path"`
	Driver      string `default:"file" usage:"Storage driver: file, sqlite or postgres"`
	DatabaseURL string `usage:"PostgreSQL connection URL (MARKET_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files and flags, and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	return loadConfig(aconfig.Config{
		Files: []string{"market.yaml", "/etc/market/config.yaml"},
	})
}

func loadConfig(ac aconfig.Config) (*Config, error) {
	ac.EnvPrefix = "MARKET"
	ac.FileDecoders = map[string]aconfig.FileDecoder{
		".yaml": aconfigyaml.New(),
	}

	var cfg Config
	if err := aconfig.LoaderFor(&cfg, ac).Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the selected driver has what it needs.
func (c *Config) Validate() error {
	switch c.Driver {
	case DriverFile:
		if c.DataFile == "" {
			return errors.New("data file is required for the file driver")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("sqlite path is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("database URL is required: set MARKET_DATABASE_URL or DATABASE_URL")
		}
	default:
		return errors.Errorf("unknown storage driver %q", c.Driver)
	}
	return nil
}

// applyPlatformDefaults maps the conventional DATABASE_URL variable to the
// MARKET_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
}
