// Copyright (c) 2026, The Framepipe Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, 2, cfg.Pool.MaxBuffers)
	assert.Equal(t, slog.LevelInfo, cfg.Level())
	assert.Empty(t, cfg.Host.Dial)
	assert.False(t, cfg.Paint.ShowPaintRects)
}

// A partial file overrides only what it mentions.
func TestOpenLayersOverDefaults(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "framepipe.toml")
	require.NoError(t, os.WriteFile(fn, []byte(`
[host]
dial = "ws://localhost:8017/frame"

[paint]
trace_frames = true
`), 0o666))

	cfg, err := Open(fn)
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8017/frame", cfg.Host.Dial)
	assert.True(t, cfg.Paint.TraceFrames)
	assert.Equal(t, 2, cfg.Pool.MaxBuffers, "unmentioned keys keep their defaults")
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestSaveOpenRoundTrip(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "framepipe.toml")
	cfg := Defaults()
	cfg.Host.Dial = "ws://host:9"
	cfg.Pool.MaxBuffers = 4
	cfg.Log.Level = "debug"
	require.NoError(t, cfg.Save(fn))

	got, err := Open(fn)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLevelMapping(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"Warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	} {
		cfg := Defaults()
		cfg.Log.Level = in
		assert.Equal(t, want, cfg.Level(), "level %q", in)
	}
}
