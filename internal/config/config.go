// Package config provides configuration management for the Storyreel Agent.
// Configuration is loaded from environment variables with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

const (
	// Default values
	DefaultPort     = 8787
	DefaultLogLevel = "info"
	DefaultDataDir  = ".storyreel"
	DefaultGenModel    = "frame-gen-1"
	DefaultGenModelPro = "frame-gen-1-pro"

	// Environment variable names
	EnvPort     = "STORYREEL_PORT"
	EnvLogLevel = "STORYREEL_LOG_LEVEL"
	EnvDataDir  = "STORYREEL_DATA_DIR"
	EnvHeadless = "STORYREEL_HEADLESS"

	// Generation backend environment variable names
	EnvGenBaseURL = "STORYREEL_GEN_BASE_URL"
	EnvGenAPIKey  = "STORYREEL_GEN_API_KEY"
	EnvGenModel    = "STORYREEL_GEN_MODEL"
	EnvGenModelPro = "STORYREEL_GEN_MODEL_PRO"

	// Database filename
	DBFilename = "storyreel.db"
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	Headless() bool
	GenBaseURL() string
	GenAPIKey() string
	GenModel() string
	GenModelPro() string
}

// EnvConfig reads configuration from environment variables
type EnvConfig struct {
	port     int
	logLevel string
	dataDir  string
	headless bool

	genBaseURL  string
	genAPIKey   string
	genModel    string
	genModelPro string
}

// New creates a new EnvConfig with defaults and environment variable overrides
func New() (*EnvConfig, error) {
	cfg := &EnvConfig{
		port:     DefaultPort,
		logLevel: DefaultLogLevel,
		dataDir:     defaultDataDir(),
		genModel:    DefaultGenModel,
		genModelPro: DefaultGenModelPro,
	}

	// Override port from environment
	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid %s: port must be between 1 and 65535", EnvPort)
		}
		cfg.port = port
	}

	// Override log level from environment
	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}

	// Override data directory from environment
	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}

	if h := os.Getenv(EnvHeadless); h != "" {
		headless, err := strconv.ParseBool(h)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvHeadless, err)
		}
		cfg.headless = headless
	}

	cfg.genBaseURL = os.Getenv(EnvGenBaseURL)
	cfg.genAPIKey = os.Getenv(EnvGenAPIKey)
	if gm := os.Getenv(EnvGenModel); gm != "" {
		cfg.genModel = gm
	}
	if gm := os.Getenv(EnvGenModelPro); gm != "" {
		cfg.genModelPro = gm
	}

	return cfg, nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// Headless reports whether the system tray should be skipped
func (c *EnvConfig) Headless() bool {
	return c.headless
}

// GenBaseURL returns the image generation API base URL. Empty means
// generation runs against the built-in stub.
func (c *EnvConfig) GenBaseURL() string {
	return c.genBaseURL
}

// GenAPIKey returns the image generation API key
func (c *EnvConfig) GenAPIKey() string {
	return c.genAPIKey
}

// GenModel returns the default image generation model
func (c *EnvConfig) GenModel() string {
	return c.genModel
}

// GenModelPro returns the model used for scenes marked high quality
func (c *EnvConfig) GenModelPro() string {
	return c.genModelPro
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
