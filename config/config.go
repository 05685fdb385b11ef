package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port         int    `yaml:"port"`
	DBPath       string `yaml:"db_path"`
	ReadTimeout  int    `yaml:"read_timeout"`  // seconds
	WriteTimeout int    `yaml:"write_timeout"` // seconds
	AuditLogPath string `yaml:"audit_log_path"`
}

// DefaultConfigPath is used when no explicit path is given.
const DefaultConfigPath = "config.yaml"

// Load builds the configuration from defaults, an optional YAML file and
// TALKD_* environment variable overrides, in that order. A missing file is
// not an error; a file that fails to parse is.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	cfg := &Config{
		Port:         3000,
		DBPath:       "talkd.db",
		ReadTimeout:  120,
		WriteTimeout: 30,
		AuditLogPath: "talkd_audit.log",
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if portStr := os.Getenv("TALKD_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			cfg.Port = port
		}
	}

	if dbPath := os.Getenv("TALKD_DB_PATH"); dbPath != "" {
		cfg.DBPath = dbPath
	}

	if timeoutStr := os.Getenv("TALKD_READ_TIMEOUT"); timeoutStr != "" {
		if timeout, err := strconv.Atoi(timeoutStr); err == nil {
			cfg.ReadTimeout = timeout
		}
	}

	if timeoutStr := os.Getenv("TALKD_WRITE_TIMEOUT"); timeoutStr != "" {
		if timeout, err := strconv.Atoi(timeoutStr); err == nil {
			cfg.WriteTimeout = timeout
		}
	}

	if logPath := os.Getenv("TALKD_AUDIT_LOG"); logPath != "" {
		cfg.AuditLogPath = logPath
	}

	return cfg, nil
}
