package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Storage selects and locates the persistence backend
type Storage struct {
	Driver string `yaml:"driver" json:"driver"` // sqlite, postgres or memory
	Path   string `yaml:"path" json:"path"`     // SQLite file path
	DSN    string `yaml:"dsn" json:"dsn"`       // Postgres connection string
}

// Server holds HTTP API settings
type Server struct {
	Addr       string        `yaml:"addr" json:"addr"`
	RedisURL   string        `yaml:"redis_url" json:"redis_url"` // Empty keeps sessions in process
	SessionTTL time.Duration `yaml:"session_ttl" json:"session_ttl"`
}

// Config holds user preferences
type Config struct {
	Storage Storage `yaml:"storage" json:"storage"`
	Server  Server  `yaml:"server" json:"server"`

	ConfirmDelete bool `yaml:"confirm_delete" json:"confirm_delete"` // Require confirmation for delete
	BcryptCost    int  `yaml:"bcrypt_cost" json:"bcrypt_cost"`

	// Logging configuration
	LogLevel   string `yaml:"log_level" json:"log_level"`     // Log level: DEBUG, INFO, WARN, ERROR
	LogFile    string `yaml:"log_file" json:"log_file"`       // Path to log file
	LogConsole bool   `yaml:"log_console" json:"log_console"` // Enable console logging
}

// HomeDir returns the application directory (~/.projtrack unless PROJTRACK_HOME is set)
func HomeDir() (string, error) {
	if dir := os.Getenv("PROJTRACK_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".projtrack"), nil
}

// DefaultConfig returns default settings
func DefaultConfig() *Config {
	dir, _ := HomeDir()
	dbPath, logPath := "", ""
	if dir != "" {
		dbPath = filepath.Join(dir, "projects.db")
		logPath = filepath.Join(dir, "logs", "projtrack.log")
	}

	return &Config{
		Storage: Storage{
			Driver: getEnv("PROJTRACK_STORAGE", DriverSQLite),
			Path:   getEnv("PROJTRACK_DB_PATH", dbPath),
			DSN:    getEnv("DATABASE_URL", ""),
		},
		Server: Server{
			Addr:       getEnv("PROJTRACK_ADDR", ":8080"),
			RedisURL:   getEnv("REDIS_URL", ""),
			SessionTTL: getEnvDuration("PROJTRACK_SESSION_TTL", 30*24*time.Hour),
		},
		ConfirmDelete: true,
		BcryptCost:    getEnvInt("PROJTRACK_BCRYPT_COST", 10),
		LogLevel:      getEnv("PROJTRACK_LOG_LEVEL", "INFO"),
		LogFile:       getEnv("PROJTRACK_LOG_FILE", logPath),
		LogConsole:    getEnv("PROJTRACK_LOG_CONSOLE", "false") == "true",
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return defaultValue
}

// Path returns the config file location
func Path() (string, error) {
	dir, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load loads config from <home>/config.yaml, after applying a .env file in
// the working directory if one exists
func Load() (*Config, error) {
	_ = godotenv.Load()

	configPath, err := Path()
	if err != nil {
		return nil, err
	}

	// Return defaults if no config
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings no backend can run with
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for the postgres driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("bcrypt_cost must be between 4 and 31")
	}
	return nil
}

// Save saves config to <home>/config.yaml
func (c *Config) Save() error {
	configPath, err := Path()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
