package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
)

const (
	defaultShutdownTimeout = 5 * time.Second
	defaultLogMaxSizeMB    = 10
	defaultLogMaxBackups   = 3
	envPrefsPath           = "REFREMOTE_PREFS"
	envLogFile             = "REFREMOTE_LOG_FILE"
	envShutdownTimeout     = "REFREMOTE_SHUTDOWN_TIMEOUT"
	envLogMaxSizeMB        = "REFREMOTE_LOG_MAX_SIZE_MB"
)

// Config aggregates daemon tunables.
type Config struct {
	// PrefsPath overrides the preferences snapshot location.
	PrefsPath string
	// LogFile, when set, receives the daemon log with size based rotation.
	LogFile         string
	LogMaxSizeMB    int
	LogMaxBackups   int
	ShutdownTimeout time.Duration
}

// Load builds a Config from an optional JSON file path plus environment overrides.
func Load(path string) (Config, error) {
	cfg := Config{
		LogMaxSizeMB:    defaultLogMaxSizeMB,
		LogMaxBackups:   defaultLogMaxBackups,
		ShutdownTimeout: defaultShutdownTimeout,
	}

	if path != "" {
		fileCfg, err := loadFromFile(path)
		if err != nil {
			return cfg, fmt.Errorf("load config %s: %w", path, err)
		}
		if fileCfg.PrefsPath != "" {
			cfg.PrefsPath = fileCfg.PrefsPath
		}
		if fileCfg.LogFile != "" {
			cfg.LogFile = fileCfg.LogFile
		}
		if fileCfg.LogMaxSizeMB != 0 {
			cfg.LogMaxSizeMB = fileCfg.LogMaxSizeMB
		}
		if fileCfg.LogMaxBackups != 0 {
			cfg.LogMaxBackups = fileCfg.LogMaxBackups
		}
		if fileCfg.ShutdownTimeout != 0 {
			cfg.ShutdownTimeout = fileCfg.ShutdownTimeout
		}
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(envPrefsPath); v != "" {
		cfg.PrefsPath = v
	}
	if v := os.Getenv(envLogFile); v != "" {
		cfg.LogFile = v
	}

	if v := os.Getenv(envShutdownTimeout); v != "" {
		if dur, err := time.ParseDuration(v); err == nil && dur > 0 {
			cfg.ShutdownTimeout = dur
		} else if err != nil {
			log.Printf("invalid %s value %q: %v", envShutdownTimeout, v, err)
		}
	}

	if v := os.Getenv(envLogMaxSizeMB); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.LogMaxSizeMB = n
		} else {
			log.Printf("invalid %s value %q", envLogMaxSizeMB, v)
		}
	}
}

type fileConfig struct {
	PrefsPath       string `json:"prefs_path"`
	LogFile         string `json:"log_file"`
	LogMaxSizeMB    int    `json:"log_max_size_mb"`
	LogMaxBackups   int    `json:"log_max_backups"`
	ShutdownTimeout string `json:"shutdown_timeout"`
}

func loadFromFile(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	var raw fileConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return cfg, err
	}

	cfg.PrefsPath = raw.PrefsPath
	cfg.LogFile = raw.LogFile
	if raw.LogMaxSizeMB < 0 {
		return cfg, errors.New("log_max_size_mb must be >= 0")
	}
	cfg.LogMaxSizeMB = raw.LogMaxSizeMB
	if raw.LogMaxBackups < 0 {
		return cfg, errors.New("log_max_backups must be >= 0")
	}
	cfg.LogMaxBackups = raw.LogMaxBackups
	if raw.ShutdownTimeout != "" {
		dur, err := time.ParseDuration(raw.ShutdownTimeout)
		if err != nil {
			return cfg, fmt.Errorf("parse shutdown_timeout: %w", err)
		}
		if dur <= 0 {
			return cfg, errors.New("shutdown_timeout must be > 0")
		}
		cfg.ShutdownTimeout = dur
	}

	return cfg, nil
}
