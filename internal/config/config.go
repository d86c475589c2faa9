// Package config loads the blackjack.hcl configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// DefaultFile is read when no --config flag is given
const DefaultFile = "blackjack.hcl"

// Storage drivers accepted in the storage block
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

// Config represents the complete configuration file. Every block is optional.
type Config struct {
	Table   *Table   `hcl:"table,block"`
	Storage *Storage `hcl:"storage,block"`
	Server  *Server  `hcl:"server,block"`
}

// Table holds the round settings
type Table struct {
	Players          int    `hcl:"players,optional"`
	StartingBankroll int    `hcl:"starting_bankroll,optional"`
	Chips            []int  `hcl:"chips,optional"`
	SettleDelay      string `hcl:"settle_delay,optional"`
	Seed             int64  `hcl:"seed,optional"`
}

// Storage selects where bankrolls and stats are persisted
type Storage struct {
	Driver    string `hcl:"driver,optional"`
	Path      string `hcl:"path,optional"`
	DSN       string `hcl:"dsn,optional"`
	RedisAddr string `hcl:"redis_addr,optional"`
	Key       string `hcl:"key,optional"`
}

// Server contains the websocket server settings
type Server struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
	LogFile  string `hcl:"log_file,optional"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads filename. A missing file yields the defaults.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", filename, err)
	}
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Table == nil {
		c.Table = &Table{}
	}
	if c.Storage == nil {
		c.Storage = &Storage{}
	}
	if c.Server == nil {
		c.Server = &Server{}
	}

	if c.Table.Players == 0 {
		c.Table.Players = 1
	}
	if c.Table.StartingBankroll == 0 {
		c.Table.StartingBankroll = 500
	}
	if len(c.Table.Chips) == 0 {
		c.Table.Chips = []int{5, 10, 25, 50, 100}
	}
	if c.Table.SettleDelay == "" {
		c.Table.SettleDelay = "3s"
	}

	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverFile
	}
	if c.Storage.Key == "" {
		c.Storage.Key = "blackjack_state_v1"
	}
	if c.Storage.Path == "" {
		c.Storage.Path = c.Storage.Key + ".json"
	}
	if c.Storage.RedisAddr == "" {
		c.Storage.RedisAddr = "localhost:6379"
	}

	if c.Server.Address == "" {
		c.Server.Address = "localhost"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Table.Players < 1 || c.Table.Players > 2 {
		return fmt.Errorf("table: players must be 1 or 2, got %d", c.Table.Players)
	}
	if c.Table.StartingBankroll <= 0 {
		return fmt.Errorf("table: starting bankroll must be positive")
	}
	for _, chip := range c.Table.Chips {
		if chip <= 0 {
			return fmt.Errorf("table: chip denomination %d must be positive", chip)
		}
	}
	if _, err := c.SettleDelay(); err != nil {
		return err
	}

	drivers := []string{DriverFile, DriverSQLite, DriverPostgres, DriverRedis, DriverMemory}
	if !slices.Contains(drivers, c.Storage.Driver) {
		return fmt.Errorf("storage: unknown driver %q", c.Storage.Driver)
	}
	if c.Storage.Driver == DriverPostgres && c.Storage.DSN == "" {
		return fmt.Errorf("storage: postgres driver requires dsn")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	return nil
}

// SettleDelay is how long a settled round stays on the table before it is
// reset. Zero disables the automatic reset.
func (c *Config) SettleDelay() (time.Duration, error) {
	d, err := time.ParseDuration(c.Table.SettleDelay)
	if err != nil {
		return 0, fmt.Errorf("table: invalid settle_delay %q: %w", c.Table.SettleDelay, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("table: settle_delay must not be negative")
	}
	return d, nil
}

// ServerAddress returns the full listen address
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}
