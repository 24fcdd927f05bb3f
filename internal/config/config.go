package config

import (
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"variate-server/internal/util"
)

// Store names
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config provides configuration for the variate server and tools
type Config struct {
	loaded         bool
	PGDSN          string `yaml:"pgDsn" envconfig:"pg_dsn"`
	MigrationsPath string `yaml:"migrationsPath" envconfig:"migrations_path"`
	Store          string `yaml:"store"`
	MaxBatch       int    `yaml:"maxBatch" envconfig:"max_batch"`
	Source         struct {
		Name string `yaml:"name"`
		// Seed makes new generators repeatable, nil leaves them to seed themselves
		Seed *int64 `yaml:"seed"`
		Tape string `yaml:"tape"`
	}
	Session struct {
		// MaxSessions caps the live sessions, 0 means no cap
		MaxSessions int `yaml:"maxSessions" envconfig:"max_sessions"`
		// IdleMinutes drops sessions unused for that long, 0 keeps them forever
		IdleMinutes int `yaml:"idleMinutes" envconfig:"idle_minutes"`
	}
	JWT struct {
		Secret string `yaml:"secret"`
	}
	Log struct {
		Level             string `yaml:"level"`
		DisableAccessLogs bool   `yaml:"disableAccessLogs" envconfig:"disable_access_logs"`
	}
}

var config Config

// DefaultConfig returns the configuration used when no file overrides it
func DefaultConfig() Config {
	var cfg Config
	cfg.PGDSN = "postgres://postgres@localhost:5432/postgres?sslmode=disable"
	cfg.MigrationsPath = "./sql"
	cfg.Store = StoreMemory
	cfg.MaxBatch = 10000
	cfg.Source.Name = "mt19937"
	cfg.Session.MaxSessions = 10000
	cfg.Session.IdleMinutes = 60
	cfg.Log.Level = "info"
	return cfg
}

// Instance returns a singleton instance
// If the config hasn't been loaded, it will be loaded
func Instance() Config {
	if !config.loaded {
		if err := Load(); err != nil {
			panic(err)
		}
	}

	return config
}

// Load will load the configuration
// A missing config file is not an error, the defaults are used instead.
func Load() error {
	cfg := DefaultConfig()

	configFile := util.Getenv("VARIATE_CONFIG_FILE", "config.yaml")
	file, err := os.Open(configFile)
	if err == nil {
		defer file.Close()

		if err := yaml.NewDecoder(file).Decode(&cfg); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	}

	if err := envconfig.Process("variate", &cfg); err != nil {
		return err
	}

	cfg.loaded = true
	config = cfg
	return nil
}
