// RetroDex Core
// Copyright (c) 2026 The RetroDex Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of RetroDex Core.
//
// RetroDex Core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// RetroDex Core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with RetroDex Core.  If not, see <http://www.gnu.org/licenses/>.

// Package config loads and persists the application's TOML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/adrg/xdg"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
)

const (
	SchemaVersion = 1
	AppName       = "retrodex"
	CfgFile       = "config.toml"
	AuthFile      = "auth.toml"
	LogFile       = "core.log"
	QuotaFile     = "quota.json"
)

type Values struct {
	Scraper      Scraper `toml:"scraper"`
	ConfigSchema int     `toml:"config_schema"`
	DebugLogging bool    `toml:"debug_logging"`
}

// Scraper holds the user's scrape preferences. MediaTypes is empty for
// "all types"; MaxThreads 0 means "use the session's reported limit".
type Scraper struct {
	Region     string   `toml:"region"`
	Language   string   `toml:"language"`
	MediaTypes []string `toml:"media_types,omitempty,multiline"`
	MaxThreads int      `toml:"max_threads"`
}

var BaseDefaults = Values{
	ConfigSchema: SchemaVersion,
	Scraper: Scraper{
		Region:   "eu",
		Language: "en",
	},
}

// Instance is a live configuration bound to a config file on disk.
type Instance struct {
	cfgPath  string
	authPath string
	vals     Values
	defaults Values
	mu       sync.RWMutex
}

// DefaultConfigDir returns the per-user configuration directory.
func DefaultConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DefaultDataDir returns the per-user state directory (logs, quota file).
func DefaultDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// NewConfig creates an instance bound to configDir and loads it, writing
// the defaults out when no config file exists yet.
func NewConfig(configDir string, defaults Values) (*Instance, error) {
	cfg := Instance{
		cfgPath:  filepath.Join(configDir, CfgFile),
		authPath: filepath.Join(configDir, AuthFile),
		defaults: defaults,
		vals:     defaults,
	}

	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(cfg.cfgPath); errors.Is(err, os.ErrNotExist) {
		log.Info().Str("path", cfg.cfgPath).Msg("no config file, writing defaults")
		if err := cfg.Save(); err != nil {
			return nil, err
		}
	}

	if err := cfg.Load(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads the config file and the optional auth.toml sibling.
func (c *Instance) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	data, err := os.ReadFile(c.cfgPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	vals := c.defaults
	if err := toml.Unmarshal(data, &vals); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	c.vals = vals

	if authData, err := os.ReadFile(c.authPath); err == nil {
		loadAuthFromData(authData)
	}

	return nil
}

// Save writes the current values back to the config file.
func (c *Instance) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	c.vals.ConfigSchema = SchemaVersion
	data, err := toml.Marshal(&c.vals)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(c.cfgPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *Instance) Region() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Scraper.Region == "" {
		return c.defaults.Scraper.Region
	}
	return c.vals.Scraper.Region
}

func (c *Instance) Language() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Scraper.Language == "" {
		return c.defaults.Scraper.Language
	}
	return c.vals.Scraper.Language
}

// EnabledMediaTypes returns the configured media-type filter, or nil when
// every type is enabled.
func (c *Instance) EnabledMediaTypes() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.vals.Scraper.MediaTypes) == 0 {
		return nil
	}
	out := make([]string, len(c.vals.Scraper.MediaTypes))
	copy(out, c.vals.Scraper.MediaTypes)
	return out
}

// MaxThreads returns the user's download concurrency override, 0 when the
// session's reported limit should be used as-is.
func (c *Instance) MaxThreads() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Scraper.MaxThreads
}

func (c *Instance) DebugLogging() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.DebugLogging
}

func (c *Instance) SetDebugLogging(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.DebugLogging = enabled
}
