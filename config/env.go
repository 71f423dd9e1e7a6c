package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// AudiosDirName is the directory under the root that holds one folder per collection
const AudiosDirName = "audios"

// Config holds the server configuration
type Config struct {
	Root        string   `yaml:"root"` // directory containing audios/
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"corsOrigins"`
	GinMode     string   `yaml:"ginMode"`
	LogLevel    string   `yaml:"logLevel"`
	LogFile     string   `yaml:"logFile"`
	Watch       bool     `yaml:"watch"`   // push library changes to open pages
	Workers     int      `yaml:"workers"` // metadata indexer workers
}

// Default returns the configuration used when nothing else is set
func Default() *Config {
	return &Config{
		Root:        "public",
		Port:        8080,
		CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		GinMode:     "release",
		LogLevel:    "info",
		Watch:       true,
		Workers:     4,
	}
}

// AudiosPath returns {root}/audios
func (c *Config) AudiosPath() string {
	return filepath.Join(c.Root, AudiosDirName)
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in that order. A .env file in the working directory is loaded
// first without overriding variables that are already set.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.Root = getEnv("SOUNDBOX_ROOT", cfg.Root)
	cfg.Port = getEnvInt("SERVER_PORT", cfg.Port)
	cfg.GinMode = getEnv("GIN_MODE", cfg.GinMode)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFile = getEnv("LOG_FILE", cfg.LogFile)
	cfg.Watch = getEnvBool("SOUNDBOX_WATCH", cfg.Watch)
	cfg.Workers = getEnvInt("SOUNDBOX_WORKERS", cfg.Workers)

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.CORSOrigins = splitList(origins)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects settings the server cannot start with
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Root) == "" {
		return fmt.Errorf("root directory must not be empty")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
