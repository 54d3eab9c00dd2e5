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

package main

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/RetroDexProject/retrodex-core/pkg/config"
	"github.com/RetroDexProject/retrodex-core/pkg/gamelist"
	"github.com/RetroDexProject/retrodex-core/pkg/helpers"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// commandContext carries the lazily initialized pieces every subcommand
// needs: the loaded configuration, logging, and the catalog service.
type commandContext struct {
	configDirFlag *string
	dataDirFlag   *string
	debugFlag     *bool

	once sync.Once
	cfg  *config.Instance
	err  error
}

func newCommandContext(configDirFlag, dataDirFlag *string, debugFlag *bool) *commandContext {
	return &commandContext{
		configDirFlag: configDirFlag,
		dataDirFlag:   dataDirFlag,
		debugFlag:     debugFlag,
	}
}

func (c *commandContext) configDir() string {
	if c.configDirFlag != nil && strings.TrimSpace(*c.configDirFlag) != "" {
		return strings.TrimSpace(*c.configDirFlag)
	}
	return config.DefaultConfigDir()
}

func (c *commandContext) dataDir() string {
	if c.dataDirFlag != nil && strings.TrimSpace(*c.dataDirFlag) != "" {
		return strings.TrimSpace(*c.dataDirFlag)
	}
	return config.DefaultDataDir()
}

func (c *commandContext) debug() bool {
	return c.debugFlag != nil && *c.debugFlag
}

// ensureConfig loads the configuration and sets up logging exactly once,
// no matter how many commands share the context.
func (c *commandContext) ensureConfig() (*config.Instance, error) {
	c.once.Do(func() {
		cfg, err := config.NewConfig(c.configDir(), config.BaseDefaults)
		if err != nil {
			c.err = err
			return
		}
		writers := []io.Writer{zerolog.ConsoleWriter{Out: os.Stderr}}
		if err := helpers.InitLogging(c.dataDir(), c.debug() || cfg.DebugLogging(), writers); err != nil {
			c.err = err
			return
		}
		c.cfg = cfg
	})
	return c.cfg, c.err
}

func (c *commandContext) catalogService() *gamelist.Service {
	return gamelist.NewService(afero.NewOsFs())
}
