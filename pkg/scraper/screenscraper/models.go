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

package screenscraper

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// The API serves numbers sometimes bare and sometimes quoted, varying
// between endpoints and even between records. Number accepts both.
type Number int

func (n *Number) UnmarshalJSON(data []byte) error {
	s := string(bytes.Trim(data, `"`))
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return fmt.Errorf("invalid numeric value %q: %w", s, err)
		}
		v = int(f)
	}
	*n = Number(v)
	return nil
}

// APIResponse is the top-level envelope of every metadata call.
type APIResponse struct {
	Response Response `json:"response"`
	Header   Header   `json:"header"`
}

// Header carries API status metadata.
type Header struct {
	APIVersion   string `json:"APIversion"` //nolint:tagliatelle // external API format
	Success      string `json:"success"`
	Error        string `json:"error"`
	CommandAsked string `json:"commandAsked"`
}

// Response holds the payload of whichever endpoint was called.
type Response struct {
	User    *UserInfo `json:"ssuser,omitempty"`
	Game    *Game     `json:"jeu,omitempty"`
	Games   []Game    `json:"jeux,omitempty"`
	Systems []System  `json:"systemes,omitempty"`
}

// UserInfo is the account snapshot carrying the session limits.
type UserInfo struct {
	ID                string `json:"id"`
	Level             Number `json:"niveau,omitempty"`
	MaxThreads        Number `json:"maxthreads"`
	MaxRequestsPerMin Number `json:"maxrequestspermin"`
	MaxRequestsPerDay Number `json:"maxrequestsperday"`
	RequestsToday     Number `json:"requeststoday"`
}

// RegionalText is a value localized by region.
type RegionalText struct {
	Region string `json:"region"`
	Text   string `json:"text"`
}

// LingualText is a value localized by language.
type LingualText struct {
	Language string `json:"langue"`
	Text     string `json:"text"`
}

// Genre is one genre assignment with per-language names.
type Genre struct {
	Names []LingualText `json:"noms"`
	ID    Number        `json:"id"`
}

// Company is a developer or publisher record.
type Company struct {
	ID   Number `json:"id,omitempty"`
	Text string `json:"text"`
}

// TextValue wraps the single-field objects the API uses for players and
// rating.
type TextValue struct {
	Text string `json:"text"`
}

// Media is one downloadable asset attached to a game.
type Media struct {
	Type   string `json:"type"`
	Parent string `json:"parent,omitempty"`
	URL    string `json:"url"`
	Region string `json:"region,omitempty"`
	Format string `json:"format,omitempty"`
	CRC32  string `json:"crc32,omitempty"`
	MD5    string `json:"md5,omitempty"`
	SHA1   string `json:"sha1,omitempty"`
}

// ROM is the matched ROM file record of a hash lookup.
type ROM struct {
	ID      Number `json:"id"`
	RomName string `json:"romnom"`
	RomSize Number `json:"romsize,omitempty"`
	RomCRC  string `json:"romcrc,omitempty"`
	RomMD5  string `json:"rommd5,omitempty"`
	RomSHA1 string `json:"romsha1,omitempty"`
}

// Game is one game record in the remote database.
type Game struct {
	Publisher    Company        `json:"editeur,omitempty"`
	Developer    Company        `json:"developpeur,omitempty"`
	Players      TextValue      `json:"joueurs,omitempty"`
	Rating       TextValue      `json:"note,omitempty"`
	Names        []RegionalText `json:"noms,omitempty"`
	Descriptions []LingualText  `json:"synopsis,omitempty"`
	Genres       []Genre        `json:"genres,omitempty"`
	Dates        []RegionalText `json:"dates,omitempty"`
	Medias       []Media        `json:"medias,omitempty"`
	ROM          *ROM           `json:"rom,omitempty"`
	ID           Number         `json:"id"`
	NotGame      Number         `json:"notgame,omitempty"`
}

// System is one platform in the remote database.
type System struct {
	Names      map[string]string `json:"noms,omitempty"`
	Extensions string            `json:"extensions,omitempty"`
	Company    string            `json:"compagnie,omitempty"`
	Type       string            `json:"type,omitempty"`
	ID         Number            `json:"id"`
	ParentID   Number            `json:"parentid,omitempty"`
}

// APIError is a failure reported by the remote service, either as an HTTP
// status or inside the response header.
type APIError struct {
	Message    string
	StatusCode int
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("screenscraper: HTTP %d: %s", e.StatusCode, e.Message)
	}
	return "screenscraper: " + e.Message
}

// pickRegional returns the value for the preferred region, falling back
// to Europe, then worldwide, then the first value present.
func pickRegional(texts []RegionalText, region string) string {
	for _, fallback := range []string{region, "eu", "wor"} {
		if fallback == "" {
			continue
		}
		for _, t := range texts {
			if strings.EqualFold(t.Region, fallback) && t.Text != "" {
				return t.Text
			}
		}
	}
	for _, t := range texts {
		if t.Text != "" {
			return t.Text
		}
	}
	return ""
}

// pickLingual returns the value for the preferred language, falling back
// to English, then the first value present.
func pickLingual(texts []LingualText, language string) string {
	for _, fallback := range []string{language, "en"} {
		if fallback == "" {
			continue
		}
		for _, t := range texts {
			if strings.EqualFold(t.Language, fallback) && t.Text != "" {
				return t.Text
			}
		}
	}
	for _, t := range texts {
		if t.Text != "" {
			return t.Text
		}
	}
	return ""
}

// PreferredName returns the game's display name for a region preference.
func (g *Game) PreferredName(region string) string {
	return pickRegional(g.Names, region)
}

// PreferredDescription returns the synopsis for a language preference.
func (g *Game) PreferredDescription(language string) string {
	return pickLingual(g.Descriptions, language)
}

// PreferredGenre joins all genre names for a language preference.
func (g *Game) PreferredGenre(language string) string {
	var names []string
	for i := range g.Genres {
		if name := pickLingual(g.Genres[i].Names, language); name != "" {
			names = append(names, name)
		}
	}
	return strings.Join(names, ", ")
}

// PreferredReleaseDate returns the raw release date for a region
// preference.
func (g *Game) PreferredReleaseDate(region string) string {
	return pickRegional(g.Dates, region)
}

// NormalizedRating converts the 0..20 textual rating to the 0..1 scale,
// returning 0 for absent or malformed values.
func (g *Game) NormalizedRating() float64 {
	if g.Rating.Text == "" {
		return 0
	}
	v, err := strconv.ParseFloat(g.Rating.Text, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v / 20
}

// MediaByType returns the asset of the given remote type for a region
// preference, or nil when the game has none.
func (g *Game) MediaByType(mediaType, region string) *Media {
	var candidates []*Media
	for i := range g.Medias {
		if g.Medias[i].Type == mediaType {
			candidates = append(candidates, &g.Medias[i])
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	for _, fallback := range []string{region, "eu", "wor"} {
		if fallback == "" {
			continue
		}
		for _, m := range candidates {
			if strings.EqualFold(m.Region, fallback) {
				return m
			}
		}
	}
	return candidates[0]
}
