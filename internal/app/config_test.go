package app

import (
	"testing"

	"github.com/cristalhq/aconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLoad(t *testing.T) (*Config, error) {
	t.Helper()
	return loadConfig(aconfig.Config{SkipFlags: true, SkipFiles: true})
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	cfg, err := testLoad(t)
	require.NoError(t, err)
	assert.Equal(t, "market.json", cfg.DataFile)
	assert.Equal(t, "market.db", cfg.SQLitePath)
	assert.Equal(t, DriverFile, cfg.Driver)
	assert.Empty(t, cfg.DatabaseURL)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("MARKET_DATA_FILE", "/var/lib/market/data.json.gz")
	t.Setenv("MARKET_DRIVER", "postgres")
	t.Setenv("MARKET_DATABASE_URL", "postgres://market@db/market")

	cfg, err := testLoad(t)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/market/data.json.gz", cfg.DataFile)
	assert.Equal(t, DriverPostgres, cfg.Driver)
	assert.Equal(t, "postgres://market@db/market", cfg.DatabaseURL)
}

func TestLoadConfig_DatabaseURLFallback(t *testing.T) {
	t.Setenv("MARKET_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://platform/db")

	cfg, err := testLoad(t)
	require.NoError(t, err)
	assert.Equal(t, "postgres://platform/db", cfg.DatabaseURL)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "file", cfg: Config{Driver: DriverFile, DataFile: "m.json"}},
		{name: "sqlite", cfg: Config{Driver: DriverSQLite, SQLitePath: "m.db"}},
		{name: "postgres", cfg: Config{Driver: DriverPostgres, DatabaseURL: "postgres://x"}},
		{name: "sqlite without path", cfg: Config{Driver: DriverSQLite}, wantErr: "sqlite path is required"},
		{name: "file without path", cfg: Config{Driver: DriverFile}, wantErr: "data file is required"},
		{name: "postgres without url", cfg: Config{Driver: DriverPostgres}, wantErr: "database URL is required"},
		{name: "unknown driver", cfg: Config{Driver: "bolt"}, wantErr: `unknown storage driver "bolt"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}
