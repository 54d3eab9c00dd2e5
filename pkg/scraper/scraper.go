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

// Package scraper orchestrates rate-limited, quota-tracked metadata and
// media enrichment of catalog entries against a remote scrape service.
package scraper

import (
	"errors"

	"github.com/RetroDexProject/retrodex-core/pkg/gamelist"
)

// ErrQuotaExceeded reports that the account's daily request budget is
// spent. Fatal to the current run; a new run may start after rollover.
var ErrQuotaExceeded = errors.New("scraper: daily request quota exceeded")

// SessionLimits is the remote service's latest word on what this account
// may do.
type SessionLimits struct {
	MaxRequestsPerMin int
	MaxRequestsPerDay int
	MaxThreads        int
	RequestsToday     int
}

// remoteMediaTypes maps catalog media types to the remote service's type
// identifiers.
var remoteMediaTypes = map[gamelist.MediaType]string{
	gamelist.MediaBoxFront:   "box-2D",
	gamelist.MediaBoxBack:    "box-back",
	gamelist.MediaBoxSide:    "box-2D-side",
	gamelist.MediaBoxTexture: "box-texture",
	gamelist.MediaVideo:      "video",
	gamelist.MediaMarquee:    "marquee",
	gamelist.MediaFanArt:     "fanart",
	gamelist.MediaScreenshot: "ss",
	gamelist.MediaTitleShot:  "sstitle",
	gamelist.MediaWheel:      "wheel",
	gamelist.MediaManual:     "manual",
	gamelist.MediaMap:        "map",
}

// RemoteMediaType returns the remote identifier for a catalog media type.
func RemoteMediaType(t gamelist.MediaType) (string, bool) {
	remote, ok := remoteMediaTypes[t]
	return remote, ok
}
