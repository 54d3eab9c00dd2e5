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

package config

import (
	"maps"
	"net/url"
	"strings"
	"sync/atomic"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
)

// CredentialEntry holds authentication credentials for one service URL.
type CredentialEntry struct {
	Username string `toml:"username"`
	Password string `toml:"password"`
	Bearer   string `toml:"bearer"`
}

// Auth is the parsed contents of auth.toml.
type Auth struct {
	Creds map[string]CredentialEntry `toml:"creds,omitempty"`
}

var authCfg atomic.Value

// GetAuthCfg returns the process-wide auth configuration.
func GetAuthCfg() Auth {
	val := authCfg.Load()
	if val == nil {
		return Auth{}
	}
	auth, ok := val.(Auth)
	if !ok {
		return Auth{}
	}
	return auth
}

// authRootFormat is the plain format: ["url"] tables at root level.
type authRootFormat map[string]CredentialEntry

// authCredsFormat is the wrapped format: [creds."url"].
type authCredsFormat struct {
	Creds map[string]CredentialEntry `toml:"creds"`
}

// loadAuthFromData parses auth.toml supporting both formats; mixed files
// merge, with [creds."url"] entries winning on key collision.
func loadAuthFromData(data []byte) {
	result := make(map[string]CredentialEntry)

	var root authRootFormat
	if err := toml.Unmarshal(data, &root); err == nil {
		for k, v := range root {
			if k != "creds" {
				result[k] = v
			}
		}
	}

	var wrapped authCredsFormat
	if err := toml.Unmarshal(data, &wrapped); err == nil {
		maps.Copy(result, wrapped.Creds)
	}

	authCfg.Store(Auth{Creds: result})
}

// LookupAuth finds credentials for a request URL. An entry matches when
// its scheme and host equal the request's (case-insensitive) and its path
// is a prefix of the request path.
func LookupAuth(auth Auth, reqURL string) *CredentialEntry {
	if len(auth.Creds) == 0 {
		return nil
	}

	u, err := url.Parse(reqURL)
	if err != nil {
		log.Warn().Msgf("invalid auth request url: %s", reqURL)
		return nil
	}

	for k, v := range auth.Creds {
		defURL, err := url.Parse(k)
		if err != nil {
			log.Error().Msgf("invalid auth config url: %s", k)
			continue
		}
		if strings.EqualFold(defURL.Scheme, u.Scheme) &&
			strings.EqualFold(defURL.Host, u.Host) &&
			strings.HasPrefix(u.Path, defURL.Path) {
			return &v
		}
	}
	return nil
}

// SetAuthCfgForTesting overrides the process-wide auth configuration.
func SetAuthCfgForTesting(auth Auth) {
	authCfg.Store(auth)
}

// ClearAuthCfgForTesting resets the process-wide auth configuration.
func ClearAuthCfgForTesting() {
	authCfg.Store(Auth{})
}
