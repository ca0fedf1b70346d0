// Package config handles loading and parsing application configuration.
// It supports two sources for the file path (in priority order):
//  1. An environment variable:  CONFIG_PATH=/path/to/config.yaml
//  2. A command-line flag:      --config=/path/to/config.yaml
//
// Every value in the file can be overridden by the environment variable
// named in its env:"..." tag, which is how the admin credentials are
// normally supplied in production.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Default admin credentials. The server starts with them but logs a
// warning; set ADMIN_USERNAME / ADMIN_PASSWORD to replace them.
const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "changeme123"
)

// Config is the root configuration structure.
//
// env-required:"true" means the app refuses to start if that value is
// missing from both the file and the environment.
type Config struct {
	// Env controls log format and verbosity.
	// Valid values: "dev", "staging", "prod"
	Env string `yaml:"env" env:"ENV" env-required:"true"`

	// CatalogPath points at the YAML track catalogue. Empty means the
	// built-in catalogue is served.
	CatalogPath string `yaml:"catalog_path" env:"CATALOG_PATH"`

	HTTPServer `yaml:"http_server"`
	Storage    Storage `yaml:"storage"`
	Admin      Admin   `yaml:"admin"`
	CORS       CORS    `yaml:"cors"`
	Log        Log     `yaml:"log"`
}

// HTTPServer holds settings specific to the HTTP server.
// Nested under http_server: in the YAML file.
type HTTPServer struct {
	// Addr is the TCP address the server listens on, e.g. "localhost:5000".
	Addr            string        `yaml:"address"          env:"HTTP_SERVER_ADDR" env-required:"true"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"HTTP_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"HTTP_WRITE_TIMEOUT"    env-default:"10s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"HTTP_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

// Storage selects and configures the subscriber backend.
type Storage struct {
	// Driver is one of memory, sqlite, postgres, redis.
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"sqlite"`

	// Path is the SQLite .db file (driver=sqlite).
	Path string `yaml:"path" env:"STORAGE_PATH" env-default:"storage/subscribers.db"`

	// DSN is the PostgreSQL connection string (driver=postgres).
	DSN string `yaml:"dsn" env:"DATABASE_URL"`

	RedisAddr     string `yaml:"redis_addr"     env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisPassword string `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db"       env:"REDIS_DB"`
}

// Admin is the single credential pair that unlocks the admin endpoints.
type Admin struct {
	Username string `yaml:"username" env:"ADMIN_USERNAME" env-default:"admin"`
	Password string `yaml:"password" env:"ADMIN_PASSWORD" env-default:"changeme123"`
}

// UsesDefaults reports whether either credential is still the shipped default.
func (a Admin) UsesDefaults() bool {
	return a.Username == DefaultAdminUsername || a.Password == DefaultAdminPassword
}

type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:","`
}

// Log configures the optional rotating log file. With File empty, logs go
// to stdout only.
type Log struct {
	File       string `yaml:"file"         env:"LOG_FILE"`
	MaxSizeMB  int    `yaml:"max_size_mb"  env:"LOG_MAX_SIZE_MB"  env-default:"10"`
	MaxBackups int    `yaml:"max_backups"  env:"LOG_MAX_BACKUPS"  env-default:"5"`
	MaxAgeDays int    `yaml:"max_age_days" env:"LOG_MAX_AGE_DAYS" env-default:"30"`
}

// Load reads the YAML file at path, overlays environment variables and
// validates the result.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is not set: use --config flag or CONFIG_PATH env var")
	}

	// Verify the file exists before trying to read it, for a clearer
	// message than a cryptic "open: no such file" later.
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", path)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case "memory", "sqlite", "redis":
	case "postgres":
		if c.Storage.DSN == "" {
			return errors.New("storage.dsn (DATABASE_URL) is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	if c.Admin.Username == "" || c.Admin.Password == "" {
		return errors.New("admin username and password must not be empty")
	}

	return nil
}

// MustLoad reads, validates, and returns the application config.
//
// Functions prefixed with "Must" are allowed to fatal on failure. If this
// function returns, the config is valid.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")

	if configPath == "" {
		flags := flag.String("config", "", "Path to the configuration YAML file")
		flag.Parse()
		configPath = *flags
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	return cfg
}
