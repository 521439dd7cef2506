package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v10"
	toml "github.com/pelletier/go-toml/v2"
)

// Config captures the tunables of the log console. Values come from
// ~/.config/logdeck/config.toml with LOGDECK_* environment overrides
// applied on top.
type Config struct {
	// Storage.
	Capacity        int    `toml:"capacity" env:"LOGDECK_CAPACITY"`
	LogFile         string `toml:"log_file" env:"LOGDECK_LOG_FILE"`
	FileCacheSize   int    `toml:"file_cache_size" env:"LOGDECK_FILE_CACHE_SIZE"`
	FlushEvery      int    `toml:"flush_every" env:"LOGDECK_FLUSH_EVERY"`
	FlushIntervalMS int    `toml:"flush_interval_ms" env:"LOGDECK_FLUSH_INTERVAL_MS"`
	CheckpointEvery int    `toml:"checkpoint_every" env:"LOGDECK_CHECKPOINT_EVERY"`

	// Filtering engine.
	MaxDisplay       int `toml:"max_display" env:"LOGDECK_MAX_DISPLAY"`
	LargeThreshold   int `toml:"large_threshold" env:"LOGDECK_LARGE_THRESHOLD"`
	SearchThreshold  int `toml:"search_threshold" env:"LOGDECK_SEARCH_THRESHOLD"`
	ChunkSize        int `toml:"chunk_size" env:"LOGDECK_CHUNK_SIZE"`
	ChunkBudgetMS    int `toml:"chunk_budget_ms" env:"LOGDECK_CHUNK_BUDGET_MS"`
	MinSearchResults int `toml:"min_search_results" env:"LOGDECK_MIN_SEARCH_RESULTS"`

	// Anti-spam.
	SpamThreshold      int `toml:"spam_threshold" env:"LOGDECK_SPAM_THRESHOLD"`
	SpamWindowMS       int `toml:"spam_window_ms" env:"LOGDECK_SPAM_WINDOW_MS"`
	BlockExpireMS      int `toml:"block_expire_ms" env:"LOGDECK_BLOCK_EXPIRE_MS"`
	MaxTrackedPatterns int `toml:"max_tracked_patterns" env:"LOGDECK_MAX_TRACKED_PATTERNS"`
}

const defaultConfigPath = "~/.config/logdeck/config.toml"

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Capacity:        5000,
		FileCacheSize:   2000,
		FlushEvery:      32,
		FlushIntervalMS: 2000,
		CheckpointEvery: 100,

		MaxDisplay:       2000,
		LargeThreshold:   1000,
		SearchThreshold:  250,
		ChunkSize:        500,
		ChunkBudgetMS:    5,
		MinSearchResults: 200,

		SpamThreshold:      8,
		SpamWindowMS:       2000,
		BlockExpireMS:      30000,
		MaxTrackedPatterns: 1000,
	}
}

// Load parses the config file at path (the default location when path
// is empty), falling back to defaults when missing, then applies
// environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	file, err := os.Open(resolved)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("open config: %w", err)
		}
	} else {
		defer file.Close()
		raw, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env overrides: %w", err)
	}

	if cfg.LogFile != "" {
		expanded, err := expandPath(cfg.LogFile)
		if err != nil {
			return Config{}, fmt.Errorf("resolve log file: %w", err)
		}
		cfg.LogFile = expanded
	}
	return cfg, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
