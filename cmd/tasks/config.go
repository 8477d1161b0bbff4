package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/nick-dorsch/tasks/internal/store"
)

const defaultConfigPath = ".tasks/config.json"

type fileConfig struct {
	File string `json:"file"`
	TUI  bool   `json:"tui"`
}

type runDefaults struct {
	File string
	TUI  bool
}

// loadRunDefaults reads the optional config file. A missing file yields the
// built-in defaults.
func loadRunDefaults(path string) (runDefaults, error) {
	defaults := runDefaults{File: store.DefaultPath}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaults, nil
		}
		return defaults, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg fileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return defaults, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	if cfg.File != "" {
		defaults.File = cfg.File
	}
	defaults.TUI = cfg.TUI
	return defaults, nil
}
