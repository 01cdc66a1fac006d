// Copyright 2026 The Minidis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "minidis.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Port != 6379 || cfg.Databases != 16 {
		t.Errorf("unexpected defaults: port=%d databases=%d", cfg.Port, cfg.Databases)
	}
	if cfg.Addr() != "0.0.0.0:6379" {
		t.Errorf("Addr = %q", cfg.Addr())
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
bind = "127.0.0.1"
port = 7000
maxclients = 50
loglevel = "debug"
accept-rate = 10.0
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Bind != "127.0.0.1" || cfg.Port != 7000 || cfg.MaxClients != 50 {
		t.Errorf("loaded config = %+v", cfg)
	}
	if cfg.LogLevel != "debug" || cfg.AcceptRate != 10.0 {
		t.Errorf("loaded config = %+v", cfg)
	}
	// Untouched fields keep their defaults.
	if cfg.Databases != 16 {
		t.Errorf("databases = %d, want default 16", cfg.Databases)
	}
}

func TestLoadInvalid(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("Load of missing file should fail")
	}

	path := writeConfig(t, `port = 99999`)
	if _, err := Load(path); err == nil {
		t.Error("Load of out-of-range port should fail")
	}
}

func TestParseFlagsOverride(t *testing.T) {
	path := writeConfig(t, `
port = 7000
loglevel = "warning"
`)

	cfg, err := ParseFlags([]string{"-c", path, "-port", "7001", "-bind", "10.0.0.1"})
	if err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	if cfg.Port != 7001 {
		t.Errorf("flag should override file: port = %d", cfg.Port)
	}
	if cfg.Bind != "10.0.0.1" {
		t.Errorf("bind = %q", cfg.Bind)
	}
	if cfg.LogLevel != "warning" {
		t.Errorf("file value should survive: loglevel = %q", cfg.LogLevel)
	}
}

func TestParseFlagsNoFile(t *testing.T) {
	cfg, err := ParseFlags([]string{"-maxclients", "5"})
	if err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	if cfg.MaxClients != 5 {
		t.Errorf("maxclients = %d", cfg.MaxClients)
	}
}
