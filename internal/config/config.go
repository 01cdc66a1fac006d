// Copyright 2026 The Minidis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"flag"
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config holds the server configuration
type Config struct {
	// Network
	Bind         string `toml:"bind"`
	Port         int    `toml:"port"`
	TCPKeepalive int    `toml:"tcp-keepalive"` // seconds, 0 disables
	Timeout      int    `toml:"timeout"`       // idle timeout seconds, 0 = none

	// Limits
	MaxClients  int     `toml:"maxclients"`
	AcceptRate  float64 `toml:"accept-rate"` // accepted conns/sec, 0 = unlimited
	AcceptBurst int     `toml:"accept-burst"`

	// General
	Databases int    `toml:"databases"`
	LogLevel  string `toml:"loglevel"`
	LogFile   string `toml:"logfile"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Bind:         "0.0.0.0",
		Port:         6379,
		TCPKeepalive: 300,
		Timeout:      0,
		MaxClients:   10000,
		AcceptRate:   0,
		AcceptBurst:  64,
		Databases:    16,
		LogLevel:     "notice",
		LogFile:      "",
	}
}

// Load reads a TOML config file over the defaults
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks config invariants
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.Databases <= 0 {
		return fmt.Errorf("databases must be positive, got %d", c.Databases)
	}
	if c.MaxClients < 0 {
		return fmt.Errorf("maxclients must not be negative, got %d", c.MaxClients)
	}
	if c.AcceptRate < 0 {
		return fmt.Errorf("accept-rate must not be negative, got %f", c.AcceptRate)
	}
	return nil
}

// ParseFlags builds the configuration from the command line: an
// optional -c config file with individual flags overriding it.
func ParseFlags(args []string) (*Config, error) {
	fs := flag.NewFlagSet("minidis", flag.ContinueOnError)

	path := fs.String("c", "", "path to TOML config file")
	bind := fs.String("bind", "", "listen address")
	port := fs.Int("port", 0, "listen port")
	maxClients := fs.Int("maxclients", -1, "max simultaneous clients")
	logLevel := fs.String("loglevel", "", "log level (debug|notice|warning|error)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := Default()
	if *path != "" {
		loaded, err := Load(*path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "bind":
			cfg.Bind = *bind
		case "port":
			cfg.Port = *port
		case "maxclients":
			cfg.MaxClients = *maxClients
		case "loglevel":
			cfg.LogLevel = *logLevel
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Addr returns the listen address in host:port form
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Bind, c.Port)
}
