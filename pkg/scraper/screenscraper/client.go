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

// Package screenscraper is a client for the ScreenScraper.fr v2 API:
// metadata lookups by ROM hash or name and media downloads with
// server-side change detection.
package screenscraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/RetroDexProject/retrodex-core/pkg/config"
	"github.com/RetroDexProject/retrodex-core/pkg/scraper/hasher"
	"github.com/rs/zerolog/log"
)

const (
	defaultBaseURL = "https://api.screenscraper.fr/api2"
	authURL        = "https://www.screenscraper.fr"
	softName       = "RetroDex Core/1.0"

	requestTimeout = 30 * time.Second
)

// ErrNoMedia reports that the requested asset does not exist remotely.
var ErrNoMedia = errors.New("screenscraper: no media available")

// ErrNotFound reports that no game matched the lookup.
var ErrNotFound = errors.New("screenscraper: game not found")

// Sentinels a media endpoint may return instead of binary content.
var unchangedSentinels = []string{"CRCOK", "MD5OK", "SHA1OK"}

const noMediaSentinel = "NOMEDIA"

// Client talks to the ScreenScraper API with developer plus optional
// end-user credentials.
type Client struct {
	httpClient *http.Client

	// OnUserInfo is invoked whenever a metadata response carries a fresh
	// account snapshot, which most endpoints do. The orchestrator uses it
	// to keep quota accounting current.
	OnUserInfo func(*UserInfo)

	baseURL string
}

// NewClient creates a client against the production API.
func NewClient() *Client {
	return NewClientWithBaseURL(defaultBaseURL)
}

// NewClientWithBaseURL creates a client against a custom endpoint. Used
// by tests to point at a local server.
func NewClientWithBaseURL(base string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    strings.TrimRight(base, "/"),
	}
}

// baseParams returns the parameters every metadata call carries:
// output format, software identity, developer credentials and the
// end-user credentials from auth.toml when present.
func baseParams() url.Values {
	params := url.Values{}
	params.Set("output", "json")
	params.Set("softname", softName)

	// Public dev credentials, same model as other open-source scrapers.
	params.Set("devid", "retrodex")
	params.Set("devpassword", "retrodex")

	creds := config.LookupAuth(config.GetAuthCfg(), authURL)
	if creds != nil && creds.Username != "" {
		params.Set("ssuser", creds.Username)
		params.Set("sspassword", creds.Password)
	}
	return params
}

func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values) (*APIResponse, error) {
	u, err := url.Parse(c.baseURL + "/" + endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to parse API URL: %w", err)
	}
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	log.Debug().Str("endpoint", endpoint).Msg("screenscraper request")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to perform request: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close response body")
		}
	}()

	// A non-2xx status always wins over whatever is in the body.
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		}
	}

	var apiResp APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if apiResp.Header.Error != "" {
		return nil, &APIError{Message: apiResp.Header.Error}
	}
	if apiResp.Response.User != nil && c.OnUserInfo != nil {
		c.OnUserInfo(apiResp.Response.User)
	}
	return &apiResp, nil
}

// UserInfo fetches the account snapshot, including the session limits the
// orchestrator throttles by.
func (c *Client) UserInfo(ctx context.Context) (*UserInfo, error) {
	resp, err := c.getJSON(ctx, "ssuserInfos.php", baseParams())
	if err != nil {
		return nil, err
	}
	if resp.Response.User == nil {
		return nil, &APIError{Message: "missing ssuser in response"}
	}
	return resp.Response.User, nil
}

// Systems fetches the remote platform list.
func (c *Client) Systems(ctx context.Context) ([]System, error) {
	resp, err := c.getJSON(ctx, "systemesListe.php", baseParams())
	if err != nil {
		return nil, err
	}
	return resp.Response.Systems, nil
}

// GameByHash looks up a game by ROM checksums, the most precise match the
// API offers. Returns ErrNotFound when nothing matches.
func (c *Client) GameByHash(ctx context.Context, systemID int, romName string, h *hasher.FileHash) (*Game, error) {
	params := baseParams()
	params.Set("systemeid", strconv.Itoa(systemID))
	params.Set("romtype", "rom")
	params.Set("romnom", romName)
	if h != nil {
		if h.CRC32 != "" {
			params.Set("crc", strings.ToUpper(h.CRC32))
		}
		if h.MD5 != "" {
			params.Set("md5", strings.ToUpper(h.MD5))
		}
		if h.SHA1 != "" {
			params.Set("sha1", strings.ToUpper(h.SHA1))
		}
		if h.FileSize > 0 {
			params.Set("romtaille", strconv.FormatInt(h.FileSize, 10))
		}
	}

	resp, err := c.getJSON(ctx, "jeuInfos.php", params)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if resp.Response.Game == nil {
		return nil, ErrNotFound
	}
	return resp.Response.Game, nil
}

// GameByID fetches one game by its database identity.
func (c *Client) GameByID(ctx context.Context, gameID int) (*Game, error) {
	params := baseParams()
	params.Set("gameid", strconv.Itoa(gameID))

	resp, err := c.getJSON(ctx, "jeuInfos.php", params)
	if err != nil {
		return nil, err
	}
	if resp.Response.Game == nil {
		return nil, ErrNotFound
	}
	return resp.Response.Game, nil
}

// SearchGames searches by name within one system. The API returns
// results ordered by its own relevance score.
func (c *Client) SearchGames(ctx context.Context, systemID int, name string) ([]Game, error) {
	params := baseParams()
	params.Set("systemeid", strconv.Itoa(systemID))
	params.Set("recherche", name)

	resp, err := c.getJSON(ctx, "jeuRecherche.php", params)
	if err != nil {
		return nil, err
	}
	return resp.Response.Games, nil
}

// MediaPayload is the outcome of one media fetch: fresh bytes, or the
// server's confirmation that the local copy is current.
type MediaPayload struct {
	Data      []byte
	Unchanged bool
}

// FetchMedia downloads an asset. When existing checksums are given they
// are sent along so the server can answer with an "unchanged" sentinel
// instead of re-transferring the payload. Returns ErrNoMedia when the
// asset does not exist remotely.
func (c *Client) FetchMedia(ctx context.Context, mediaURL string, existing *hasher.FileHash) (*MediaPayload, error) {
	u, err := url.Parse(mediaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse media URL: %w", err)
	}
	q := u.Query()
	if existing != nil {
		if existing.CRC32 != "" {
			q.Set("crc", strings.ToUpper(existing.CRC32))
		}
		if existing.MD5 != "" {
			q.Set("md5", strings.ToUpper(existing.MD5))
		}
		if existing.SHA1 != "" {
			q.Set("sha1", strings.ToUpper(existing.SHA1))
		}
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to perform request: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close response body")
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read media body: %w", err)
	}

	// Sentinels arrive as short plain-text bodies.
	if len(data) < 64 {
		text := strings.TrimSpace(string(data))
		if text == noMediaSentinel {
			return nil, ErrNoMedia
		}
		for _, sentinel := range unchangedSentinels {
			if text == sentinel {
				return &MediaPayload{Unchanged: true}, nil
			}
		}
	}
	if len(data) == 0 {
		return nil, &APIError{Message: "empty media response"}
	}
	return &MediaPayload{Data: data}, nil
}
