// Copyright (c) 2026, The Framepipe Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config holds the TOML configuration for a renderer
// process: host endpoint, transport-buffer limits, paint debugging,
// and log verbosity.
package config

import (
	"log/slog"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/dongbu/framepipe/base/errors"
)

// Config is the root of the framepipe.toml configuration file.
type Config struct {
	Host  HostConfig  `toml:"host"`
	Pool  PoolConfig  `toml:"pool"`
	Paint PaintConfig `toml:"paint"`
	Log   LogConfig   `toml:"log"`
}

// HostConfig locates the host process.
type HostConfig struct {
	// Dial is the ws:// endpoint of the host; empty means an
	// in-process host.
	Dial string `toml:"dial"`
}

// PoolConfig bounds the transport-buffer pool.
type PoolConfig struct {
	// MaxBuffers caps concurrently checked-out buffers per
	// process; 0 means unlimited.
	MaxBuffers int `toml:"max_buffers"`
}

// PaintConfig holds paint debugging switches.
type PaintConfig struct {
	// ShowPaintRects draws cycling debug borders around painted
	// rects.
	ShowPaintRects bool `toml:"show_paint_rects"`

	// TraceFrames logs every frame update sent to the host.
	TraceFrames bool `toml:"trace_frames"`
}

// LogConfig controls slog verbosity.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`
}

// Defaults returns the configuration used when no file is present.
func Defaults() *Config {
	return &Config{
		Pool: PoolConfig{MaxBuffers: 2},
		Log:  LogConfig{Level: "info"},
	}
}

// Open reads a TOML config file, layered over [Defaults].
func Open(filename string) (*Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Errorf("config: reading %s: %w", filename, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Errorf("config: parsing %s: %w", filename, err)
	}
	return cfg, nil
}

// Save writes the config as TOML.
func (c *Config) Save(filename string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return errors.Errorf("config: encoding: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o666); err != nil {
		return errors.Errorf("config: writing %s: %w", filename, err)
	}
	return nil
}

// Level maps the configured log level onto slog, defaulting to
// info for unknown values.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
