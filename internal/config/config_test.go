package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blackjack.hcl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.hcl"))
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.Table.Players)
	assert.Equal(t, 500, cfg.Table.StartingBankroll)
	assert.Equal(t, []int{5, 10, 25, 50, 100}, cfg.Table.Chips)
	assert.Equal(t, DriverFile, cfg.Storage.Driver)
	assert.Equal(t, "blackjack_state_v1", cfg.Storage.Key)
	assert.Equal(t, "blackjack_state_v1.json", cfg.Storage.Path)
	assert.Equal(t, "localhost:8080", cfg.ServerAddress())

	delay, err := cfg.SettleDelay()
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, delay)
}

func TestLoadFile(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `
table {
  players           = 2
  starting_bankroll = 1000
  chips             = [1, 5, 25]
  settle_delay      = "0s"
  seed              = 42
}

storage {
  driver = "sqlite"
  dsn    = "blackjack.db"
}

server {
  address   = "0.0.0.0"
  port      = 9090
  log_level = "debug"
}
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Table.Players)
	assert.Equal(t, 1000, cfg.Table.StartingBankroll)
	assert.Equal(t, []int{1, 5, 25}, cfg.Table.Chips)
	assert.Equal(t, int64(42), cfg.Table.Seed)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "blackjack.db", cfg.Storage.DSN)
	assert.Equal(t, "0.0.0.0:9090", cfg.ServerAddress())
	assert.Equal(t, "debug", cfg.Server.LogLevel)

	delay, err := cfg.SettleDelay()
	require.NoError(t, err)
	assert.Zero(t, delay)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := Load(writeConfig(t, `server { port = 7000 }`))
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, 1, cfg.Table.Players)
	assert.Equal(t, DriverFile, cfg.Storage.Driver)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		body string
		want string
	}{
		{"syntax", `table {`, "failed to parse HCL file"},
		{"unknown attribute", `table { dealers = 2 }`, "failed to decode HCL"},
		{"players", `table { players = 3 }`, "players must be 1 or 2"},
		{"chips", `table { chips = [5, -1] }`, "chip denomination -1"},
		{"delay", `table { settle_delay = "soon" }`, "invalid settle_delay"},
		{"negative delay", `table { settle_delay = "-1s" }`, "must not be negative"},
		{"driver", `storage { driver = "mongo" }`, `unknown driver "mongo"`},
		{"postgres dsn", `storage { driver = "postgres" }`, "requires dsn"},
		{"port", `server { port = 70000 }`, "invalid port"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
