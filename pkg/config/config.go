// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config holds experiment configuration for collection runs.
//
// Configuration merges three layers with increasing priority: built-in
// defaults, an optional YAML file, and LAGOM_* environment variables. The
// merged result is validated before use.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/mikepsn/lagom/pkg/logging"
)

// validate is the shared validator instance for config structs.
var validate = validator.New()

// Config describes one collection run.
//
// Thread Safety: Safe to read concurrently. Not safe to modify after
// creation.
type Config struct {
	// Env names the environment to collect from.
	Env string `json:"env" yaml:"env" validate:"required,oneof=cartpole"`

	// NumEnvs is the number of parallel environment copies.
	NumEnvs int `json:"num_envs" yaml:"num_envs" validate:"min=1"`

	// Horizon is the fixed window length for segment and batched
	// collection.
	Horizon int `json:"horizon" yaml:"horizon" validate:"min=1"`

	// MaxEpisodeSteps caps a single-episode collection.
	MaxEpisodeSteps int `json:"max_episode_steps" yaml:"max_episode_steps" validate:"min=1"`

	// Gamma is the discount factor for returns and TD targets.
	Gamma float64 `json:"gamma" yaml:"gamma" validate:"gte=0,lte=1"`

	// Lambda is the GAE trace-decay coefficient.
	Lambda float64 `json:"lambda" yaml:"lambda" validate:"gte=0,lte=1"`

	// Seed feeds the environment and agent random sources. Zero means
	// unseeded.
	Seed int64 `json:"seed" yaml:"seed"`

	// MetricsAddr, when non-empty, is the listen address for the
	// prometheus scrape endpoint (e.g. ":9090").
	MetricsAddr string `json:"metrics_addr" yaml:"metrics_addr"`

	// Log configures the structured logger.
	Log LogConfig `json:"log" yaml:"log"`
}

// LogConfig configures the structured logger for a run.
type LogConfig struct {
	Level string `json:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Dir   string `json:"dir" yaml:"dir"`
	JSON  bool   `json:"json" yaml:"json"`
	Quiet bool   `json:"quiet" yaml:"quiet"`
}

// Default returns the default configuration: four cartpole copies, a
// 64-step horizon, and the usual gamma/lambda pairing.
func Default() Config {
	return Config{
		Env:             "cartpole",
		NumEnvs:         4,
		Horizon:         64,
		MaxEpisodeSteps: 500,
		Gamma:           0.99,
		Lambda:          0.95,
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load merges configuration with priority: env > file > defaults.
// A missing file falls back to defaults silently; an unreadable or invalid
// one is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}
	loadEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks the merged configuration against its struct tags.
func (c *Config) Validate() error {
	return validate.Struct(c)
}

// Logging translates the log section into a logger configuration.
func (c *Config) Logging(service string) logging.Config {
	level := logging.LevelInfo
	switch c.Log.Level {
	case "debug":
		level = logging.LevelDebug
	case "warn":
		level = logging.LevelWarn
	case "error":
		level = logging.LevelError
	}
	return logging.Config{
		Level:   level,
		LogDir:  c.Log.Dir,
		Service: service,
		JSON:    c.Log.JSON,
		Quiet:   c.Log.Quiet,
	}
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // Use defaults
		}
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func loadEnv(cfg *Config) {
	if v := os.Getenv("LAGOM_ENV"); v != "" {
		cfg.Env = v
	}
	if v := os.Getenv("LAGOM_NUM_ENVS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.NumEnvs = i
		}
	}
	if v := os.Getenv("LAGOM_HORIZON"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Horizon = i
		}
	}
	if v := os.Getenv("LAGOM_MAX_EPISODE_STEPS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.MaxEpisodeSteps = i
		}
	}
	if v := os.Getenv("LAGOM_GAMMA"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Gamma = f
		}
	}
	if v := os.Getenv("LAGOM_LAMBDA"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Lambda = f
		}
	}
	if v := os.Getenv("LAGOM_SEED"); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Seed = i
		}
	}
	if v := os.Getenv("LAGOM_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := os.Getenv("LAGOM_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}
