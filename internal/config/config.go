package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Workbook WorkbookConfig `yaml:"workbook" envconfig:"WORKBOOK"`
	Security SecurityConfig `yaml:"security" envconfig:"SECURITY"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/simulcheck.log"`
}

// WorkbookConfig describes the metering workbook and its sheet layout.
type WorkbookConfig struct {
	Path            string `yaml:"path" envconfig:"PATH" default:"data.xlsm"`
	CHWSheet        string `yaml:"chw_sheet" envconfig:"CHW_SHEET" default:"CHW hourly"`
	MTHWSheet       string `yaml:"mthw_sheet" envconfig:"MTHW_SHEET" default:"MTHW hourly"`
	TimestampColumn string `yaml:"timestamp_column" envconfig:"TIMESTAMP_COLUMN" default:"Timestamp"`
}

// SecurityConfig contains request-level protections
type SecurityConfig struct {
	RateLimit RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"50"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"25"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	WebDir  string `yaml:"web_dir" envconfig:"WEB_DIR" default:"web"`
	LogsDir string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
}

// Load loads configuration from environment variables and an optional
// config.yaml next to the working directory. Environment takes precedence.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("SIMULCHECK", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	configFile := configFilePath()
	if _, err := os.Stat(configFile); err == nil {
		fileCfg, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = merge(*fileCfg, cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func configFilePath() string {
	if p := os.Getenv("SIMULCHECK_CONFIG"); p != "" {
		return p
	}
	return "config.yaml"
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// merge overlays file config onto env config. A file value applies unless
// the corresponding environment variable was set explicitly; envconfig has
// already filled unset fields with struct-tag defaults, so presence of the
// variable is the only reliable precedence signal.
func merge(fileCfg, envCfg Config) Config {
	envSet := func(name string) bool {
		_, ok := os.LookupEnv("SIMULCHECK_" + name)
		return ok
	}

	if fileCfg.Server.Port != 0 && !envSet("SERVER_PORT") {
		envCfg.Server.Port = fileCfg.Server.Port
	}
	if fileCfg.Server.ReadTimeout != 0 && !envSet("SERVER_READ_TIMEOUT") {
		envCfg.Server.ReadTimeout = fileCfg.Server.ReadTimeout
	}
	if fileCfg.Server.WriteTimeout != 0 && !envSet("SERVER_WRITE_TIMEOUT") {
		envCfg.Server.WriteTimeout = fileCfg.Server.WriteTimeout
	}
	if fileCfg.Logging.Level != "" && !envSet("LOGGING_LEVEL") {
		envCfg.Logging.Level = fileCfg.Logging.Level
	}
	if fileCfg.Workbook.Path != "" && !envSet("WORKBOOK_PATH") {
		envCfg.Workbook.Path = fileCfg.Workbook.Path
	}
	if fileCfg.Workbook.CHWSheet != "" && !envSet("WORKBOOK_CHW_SHEET") {
		envCfg.Workbook.CHWSheet = fileCfg.Workbook.CHWSheet
	}
	if fileCfg.Workbook.MTHWSheet != "" && !envSet("WORKBOOK_MTHW_SHEET") {
		envCfg.Workbook.MTHWSheet = fileCfg.Workbook.MTHWSheet
	}
	if fileCfg.Workbook.TimestampColumn != "" && !envSet("WORKBOOK_TIMESTAMP_COLUMN") {
		envCfg.Workbook.TimestampColumn = fileCfg.Workbook.TimestampColumn
	}
	return envCfg
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Workbook.Path == "" {
		return fmt.Errorf("workbook path must not be empty")
	}
	if c.Workbook.CHWSheet == "" || c.Workbook.MTHWSheet == "" {
		return fmt.Errorf("workbook sheet names must not be empty")
	}
	return nil
}

// WorkbookAbsPath returns the workbook path resolved to an absolute path.
func (c *Config) WorkbookAbsPath() (string, error) {
	if filepath.IsAbs(c.Workbook.Path) {
		return c.Workbook.Path, nil
	}
	return filepath.Abs(c.Workbook.Path)
}
