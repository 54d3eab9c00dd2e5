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

// Package gamelist manages EmulationStation-style gamelist.xml catalogs:
// reconciling them against the filesystem, grouping multi-disc titles via
// m3u playlists and persisting changes without corrupting the document.
package gamelist

import (
	"path"
	"sort"
	"strconv"
	"time"
)

// State is the scrape lifecycle of a catalog entry. It is never persisted;
// it only drives which entries a save operation writes back.
type State byte

const (
	StateNone State = iota
	StateNoData
	StateScraped
	StateAmbiguous
	StateError
)

func (s State) String() string {
	switch s {
	case StateNone:
		return "none"
	case StateNoData:
		return "nodata"
	case StateScraped:
		return "scraped"
	case StateAmbiguous:
		return "ambiguous"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// MediaType identifies one kind of per-game media asset. The values double
// as the media folder names under ./media/ in the ROM directory.
type MediaType string

const (
	MediaBoxFront   MediaType = "box2d"
	MediaBoxBack    MediaType = "boxback"
	MediaBoxSide    MediaType = "boxside"
	MediaBoxTexture MediaType = "boxtexture"
	MediaVideo      MediaType = "video"
	MediaMarquee    MediaType = "marquee"
	MediaFanArt     MediaType = "fanart"
	MediaScreenshot MediaType = "screenshot"
	MediaTitleShot  MediaType = "titleshot"
	MediaWheel      MediaType = "wheel"
	MediaManual     MediaType = "manual"
	MediaMap        MediaType = "map"
)

// AllMediaTypes lists every media type in the order their elements appear
// inside a <game> node.
var AllMediaTypes = []MediaType{
	MediaBoxFront,
	MediaBoxBack,
	MediaBoxSide,
	MediaBoxTexture,
	MediaVideo,
	MediaMarquee,
	MediaFanArt,
	MediaScreenshot,
	MediaTitleShot,
	MediaWheel,
	MediaManual,
	MediaMap,
}

// XMLElement returns the fixed child element name for this media type in
// gamelist.xml. The names are wire contract with the wider EmulationStation
// ecosystem and must not change.
func (m MediaType) XMLElement() string {
	switch m {
	case MediaBoxFront:
		return "image"
	case MediaBoxBack:
		return "back"
	case MediaBoxSide:
		return "side"
	case MediaBoxTexture:
		return "texture"
	case MediaVideo:
		return "video"
	case MediaMarquee:
		return "marquee"
	case MediaFanArt:
		return "fanart"
	case MediaScreenshot:
		return "screenshot"
	case MediaTitleShot:
		return "title"
	case MediaWheel:
		return "wheel"
	case MediaManual:
		return "manual"
	case MediaMap:
		return "map"
	default:
		return string(m)
	}
}

// KnownExtensions returns the file extensions a locally stored asset of
// this media type may carry, in probe order.
func (m MediaType) KnownExtensions() []string {
	switch m {
	case MediaVideo:
		return []string{".mp4", ".avi", ".mkv"}
	case MediaManual:
		return []string{".pdf"}
	default:
		return []string{".png", ".jpg", ".jpeg"}
	}
}

// Entry is one title's metadata and media-path record. Path is the primary
// key: a normalized relative path, compared case-insensitively.
type Entry struct {
	Media       map[MediaType]string
	Path        string
	Name        string
	Description string
	Genre       string
	Players     string
	Developer   string
	Publisher   string
	ReleaseDate string
	Source      string
	Rating      float64
	ID          int
	Favorite    bool
	State       State
}

// FileName returns the final path component, or "" for an empty path.
func (e *Entry) FileName() string {
	if e.Path == "" {
		return ""
	}
	return path.Base(NormalizeRelPath(e.Path))
}

// MediaPath returns the stored relative asset path for a media type.
func (e *Entry) MediaPath(t MediaType) string {
	if e.Media == nil {
		return ""
	}
	return e.Media[t]
}

// SetMediaPath stores an asset path, removing the key for empty values so
// empty references are never written out.
func (e *Entry) SetMediaPath(t MediaType, p string) {
	if p == "" {
		if e.Media != nil {
			delete(e.Media, t)
		}
		return
	}
	if e.Media == nil {
		e.Media = make(map[MediaType]string)
	}
	e.Media[t] = p
}

// ReleaseTime parses the raw release-date string. The primary format is
// EmulationStation's yyyyMMddTHHmmss; a bare plausible year is accepted as
// January 1st of that year.
func (e *Entry) ReleaseTime() (time.Time, bool) {
	if e.ReleaseDate == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse("20060102T150405", e.ReleaseDate); err == nil {
		return t, true
	}
	if year, err := strconv.Atoi(e.ReleaseDate); err == nil && year > 1900 && year < 3000 {
		return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// SetReleaseTime stores a parsed time back into the raw wire format.
func (e *Entry) SetReleaseTime(t time.Time) {
	e.ReleaseDate = t.Format("20060102T150405")
}

func (e *Entry) String() string {
	if e.Name != "" {
		return e.Name
	}
	if fn := e.FileName(); fn != "" {
		return fn
	}
	return "[empty entry]"
}

// Catalog is the full set of known entries for one system folder, backed
// by a persisted gamelist.xml.
type Catalog struct {
	Entries []*Entry
}

// SortByName orders entries by display name using ordinal (byte-wise)
// comparison, matching how the rest of the ecosystem sorts the file.
func (c *Catalog) SortByName() {
	sort.SliceStable(c.Entries, func(i, j int) bool {
		return c.Entries[i].Name < c.Entries[j].Name
	})
}

// FindByPath returns the first entry whose normalized path matches
// case-insensitively, or nil.
func (c *Catalog) FindByPath(relPath string) *Entry {
	key := foldPath(relPath)
	for _, e := range c.Entries {
		if foldPath(e.Path) == key {
			return e
		}
	}
	return nil
}

// PathSet returns the case-folded set of all entry paths.
func (c *Catalog) PathSet() map[string]struct{} {
	set := make(map[string]struct{}, len(c.Entries))
	for _, e := range c.Entries {
		if e.Path == "" {
			continue
		}
		set[foldPath(e.Path)] = struct{}{}
	}
	return set
}
