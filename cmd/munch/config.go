package main

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dshills/automata-go/automata/lex"
)

// dsnEnv overrides the file DSN when the store is mysql and --dsn is unset.
const dsnEnv = "MUNCH_MYSQL_DSN"

// Config is the on-disk configuration of munch.
type Config struct {
	// Store selects the token journal: memory, sqlite or mysql.
	Store string `yaml:"store"`
	// DSN is the sqlite file path or the MySQL data source name.
	DSN string `yaml:"dsn"`

	Log LogConfig `yaml:"log"`

	// Pushback is full or narrow.
	Pushback  string   `yaml:"pushback"`
	MaxTokens int      `yaml:"max_tokens"`
	Skip      []string `yaml:"skip"`

	// Metrics prints the Prometheus metrics of the run to stderr.
	Metrics bool `yaml:"metrics"`
}

// LogConfig controls event logging to stderr.
type LogConfig struct {
	Enabled bool `yaml:"enabled"`
	JSON    bool `yaml:"json"`
}

// DefaultConfig tokenizes into memory, skipping whitespace and comments.
func DefaultConfig() Config {
	return Config{
		Store:    "memory",
		Pushback: "full",
		Skip:     []string{"space", "comment"},
	}
}

// LoadConfig reads path over DefaultConfig. An empty path returns the
// defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	return cfg, nil
}

// Validate checks field values and fills the sqlite default path.
func (c *Config) Validate() error {
	switch c.Store {
	case "memory":
	case "sqlite":
		if c.DSN == "" {
			c.DSN = "munch.db"
		}
	case "mysql":
		if c.DSN == "" {
			return fmt.Errorf("mysql store requires a DSN (set dsn or %s)", dsnEnv)
		}
	default:
		return fmt.Errorf("unknown store %q: want memory, sqlite or mysql", c.Store)
	}
	if _, err := lex.ParsePushbackPolicy(c.Pushback); err != nil {
		return err
	}
	if c.MaxTokens < 0 {
		return errors.New("max_tokens must be >= 0")
	}
	return nil
}
