package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/Epistemic-Technology/pdfsplit/internal/logger"
)

// Config holds runtime settings shared by the CLI and the MCP server
type Config struct {
	Log     LogConfig     `yaml:"log"`
	History HistoryConfig `yaml:"history"`
	Split   SplitConfig   `yaml:"split"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	// Output is "file", "stderr" or "discard"; empty lets the logger
	// pick stderr inside containers and a file otherwise
	Output string `yaml:"output"`
	File   string `yaml:"file"`
}

type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	DBPath  string `yaml:"db_path"`
}

type SplitConfig struct {
	// DefaultOutputDir is used when a request names no output directory.
	// Empty means the input file's directory.
	DefaultOutputDir string `yaml:"default_output_dir"`
}

// Dir returns ~/.pdfsplit
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".pdfsplit"), nil
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Log:     LogConfig{},
		History: HistoryConfig{Enabled: true},
	}
}

// Load reads the YAML file at path (or PDFSPLIT_CONFIG, or
// ~/.pdfsplit/config.yaml) over the defaults, then applies environment
// overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if path == "" {
		path = os.Getenv("PDFSPLIT_CONFIG")
		explicit = path != ""
	}
	if path == "" {
		if dir, err := Dir(); err == nil {
			path = filepath.Join(dir, "config.yaml")
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		case err != nil:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_OUTPUT"); v != "" {
		c.Log.Output = v
	}
	if v := os.Getenv("LOG_FILE_PATH"); v != "" {
		c.Log.File = v
	}
	if v := os.Getenv("PDFSPLIT_DB_PATH"); v != "" {
		c.History.DBPath = v
	}
	if v := os.Getenv("PDFSPLIT_HISTORY"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid PDFSPLIT_HISTORY value %q: %w", v, err)
		}
		c.History.Enabled = enabled
	}
	return nil
}

// Logger builds the logger described by the configuration
func (c *Config) Logger() (logger.Logger, error) {
	return logger.NewLogger(logger.LogConfig{
		Output:   c.Log.Output,
		Level:    c.Log.Level,
		FilePath: c.Log.File,
	})
}

// HistoryDBPath resolves the SQLite path, creating its directory
func (c *Config) HistoryDBPath() (string, error) {
	dbPath := c.History.DBPath
	if dbPath == "" {
		dir, err := Dir()
		if err != nil {
			return "", err
		}
		dbPath = filepath.Join(dir, "history.db")
	}
	if dbPath == ":memory:" {
		return dbPath, nil
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create database directory: %w", err)
	}
	return dbPath, nil
}
