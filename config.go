package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Skip         []string `json:"skip" yaml:"skip"`
	Ignore       []string `json:"ignore" yaml:"ignore"`
	IgnoreCommon bool     `json:"ignore_common" yaml:"ignore_common"`
	Depth        int      `json:"depth" yaml:"depth"`
	Workers      int      `json:"workers" yaml:"workers"`
	Confirm      *bool    `json:"confirm" yaml:"confirm"`
	IgnoreCase   *bool    `json:"ignore_case" yaml:"ignore_case"`
	LogFile      string   `json:"log_file" yaml:"log_file"`
}

func resolveConfigPath(root, explicit string) (string, bool, error) {
	if explicit != "" {
		if !fileExists(explicit) {
			return "", false, fmt.Errorf("config %s: %w", explicit, os.ErrNotExist)
		}
		return explicit, true, nil
	}
	for _, candidate := range defaultConfigPaths(root) {
		if fileExists(candidate) {
			return candidate, true, nil
		}
	}
	return "", false, nil
}

func loadConfig(path string) (Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(content, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(content, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	return cfg, nil
}

func defaultConfigPaths(root string) []string {
	paths := []string{}
	if root != "" {
		paths = append(paths,
			filepath.Join(root, ".dupekill.json"),
			filepath.Join(root, ".dupekill.yaml"),
		)
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths,
			filepath.Join(xdg, "dupekill", "config.json"),
			filepath.Join(xdg, "dupekill", "config.yaml"),
		)
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "dupekill", "config.json"),
			filepath.Join(home, ".config", "dupekill", "config.yaml"),
		)
	}
	return paths
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

func mergeSkipDirs(base map[string]struct{}, extra []string) map[string]struct{} {
	if len(extra) == 0 {
		return base
	}
	if base == nil {
		base = map[string]struct{}{}
	}
	for _, item := range extra {
		if item == "" {
			continue
		}
		base[item] = struct{}{}
	}
	return base
}

func normalizeConfig(cfg Config) (Config, error) {
	if cfg.Depth < 0 {
		return Config{}, errors.New("config: depth must be >= 0")
	}
	if cfg.Workers < 0 {
		return Config{}, errors.New("config: workers must be >= 0")
	}
	return cfg, nil
}
