// Package config loads daylist settings from ~/.daylist/config.yaml with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the full application configuration
type Config struct {
	Home     string         `yaml:"-"`
	Database DatabaseConfig `yaml:"database"`
	KeyStore KeyStoreConfig `yaml:"keystore"`
	Tasks    TasksConfig    `yaml:"tasks"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
}

// DatabaseConfig locates the SQLite file
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// KeyStoreConfig selects the secure storage backend
type KeyStoreConfig struct {
	Backend string      `yaml:"backend"` // file, redis or memory
	Path    string      `yaml:"path"`
	Redis   RedisConfig `yaml:"redis"`
}

// RedisConfig points the redis key store at a server
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// TasksConfig holds task repository policy
type TasksConfig struct {
	AllowOrphans bool `yaml:"allow_orphans"`
}

// AuthConfig holds password hashing parameters
type AuthConfig struct {
	BcryptCost int `yaml:"bcrypt_cost"`
}

// LogConfig controls the zap logger
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// DefaultHome returns ~/.daylist, or $DAYLIST_HOME when set
func DefaultHome() (string, error) {
	if home := os.Getenv("DAYLIST_HOME"); home != "" {
		return home, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(userHome, ".daylist"), nil
}

// Default returns the configuration used when no file is present
func Default(home string) *Config {
	return &Config{
		Home:     home,
		Database: DatabaseConfig{Path: filepath.Join(home, "daylist.db")},
		KeyStore: KeyStoreConfig{
			Backend: "file",
			Path:    filepath.Join(home, "keychain.json"),
			Redis:   RedisConfig{Addr: "localhost:6379", Prefix: "daylist:keystore:"},
		},
		Tasks: TasksConfig{AllowOrphans: true},
		Auth:  AuthConfig{BcryptCost: 10},
		Log:   LogConfig{Level: "warn"},
	}
}

// Load reads the config file at path (default <home>/config.yaml, or
// $DAYLIST_CONFIG) on top of the defaults, then applies environment
// overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	home, err := DefaultHome()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve home directory: %w", err)
	}
	cfg := Default(home)

	if path == "" {
		path = os.Getenv("DAYLIST_CONFIG")
	}
	if path == "" {
		path = filepath.Join(home, "config.yaml")
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	overrideFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.expand()
	return cfg, nil
}

// Validate checks values that would otherwise fail later and less clearly
func (c *Config) Validate() error {
	switch c.KeyStore.Backend {
	case "file", "redis", "memory":
	default:
		return fmt.Errorf("keystore.backend must be file, redis or memory, got %q", c.KeyStore.Backend)
	}
	if c.Database.Path == "" {
		return errors.New("database.path must not be empty")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("auth.bcrypt_cost must be between 4 and 31, got %d", c.Auth.BcryptCost)
	}
	return nil
}

// expand resolves a leading ~ in paths
func (c *Config) expand() {
	c.Database.Path = expandHome(c.Database.Path)
	c.KeyStore.Path = expandHome(c.KeyStore.Path)
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(userHome, strings.TrimPrefix(p, "~"))
}

// overrideFromEnv applies DAYLIST_* environment variables
func overrideFromEnv(cfg *Config) {
	if path := os.Getenv("DAYLIST_DB_PATH"); path != "" {
		cfg.Database.Path = path
	}
	if backend := os.Getenv("DAYLIST_KEYSTORE_BACKEND"); backend != "" {
		cfg.KeyStore.Backend = backend
	}
	if path := os.Getenv("DAYLIST_KEYSTORE_PATH"); path != "" {
		cfg.KeyStore.Path = path
	}
	if addr := os.Getenv("DAYLIST_REDIS_ADDR"); addr != "" {
		cfg.KeyStore.Redis.Addr = addr
	}
	if password := os.Getenv("DAYLIST_REDIS_PASSWORD"); password != "" {
		cfg.KeyStore.Redis.Password = password
	}
	if db := os.Getenv("DAYLIST_REDIS_DB"); db != "" {
		if n, err := strconv.Atoi(db); err == nil {
			cfg.KeyStore.Redis.DB = n
		}
	}
	if orphans := os.Getenv("DAYLIST_ALLOW_ORPHANS"); orphans != "" {
		if b, err := strconv.ParseBool(orphans); err == nil {
			cfg.Tasks.AllowOrphans = b
		}
	}
	if level := os.Getenv("DAYLIST_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
}
