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

package gamelist

import (
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// Index caches the last parsed gamelist document together with a
// path -> occurrence-count map for fast duplicate checks. It holds a single
// (document, index) slot: loading a different file evicts the previous one.
// Every write to the underlying file must be followed by Invalidate (or,
// for single-entry deletes, Decrement) or reads will serve stale data.
type Index struct {
	fsys   afero.Fs
	doc    *xmlDocument
	counts map[string]int
	path   string
	mu     sync.Mutex
}

// NewIndex creates an empty index reading through the given filesystem.
func NewIndex(fsys afero.Fs) *Index {
	return &Index{fsys: fsys}
}

// Count reports how many entries in the document at xmlPath carry romPath
// (after normalization). Returns 0 when the document cannot be loaded or
// the path is absent.
func (ix *Index) Count(xmlPath, romPath string) int {
	if romPath == "" {
		return 0
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if err := ix.ensureLoaded(xmlPath); err != nil {
		return 0
	}
	return ix.counts[NormalizeRelPath(romPath)]
}

// Decrement removes one occurrence of romPath from the index without
// re-parsing the document. When the cached document belongs to a different
// file the whole cache is invalidated instead.
func (ix *Index) Decrement(xmlPath, romPath string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if !strings.EqualFold(ix.path, xmlPath) {
		ix.reset()
		return
	}
	if ix.counts == nil || romPath == "" {
		return
	}
	key := NormalizeRelPath(romPath)
	switch n := ix.counts[key]; {
	case n > 1:
		ix.counts[key] = n - 1
	case n == 1:
		delete(ix.counts, key)
	}
}

// Invalidate unconditionally drops the cached document, path and counts.
func (ix *Index) Invalidate() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.reset()
}

// ensureLoaded serves the cached document when xmlPath matches the cached
// path, otherwise parses from disk and rebuilds the counts. The cache is
// cleared on a missing or malformed file. Caller holds the lock.
func (ix *Index) ensureLoaded(xmlPath string) error {
	if ix.doc != nil && strings.EqualFold(ix.path, xmlPath) {
		return nil
	}
	doc, err := readDocument(ix.fsys, xmlPath)
	if err != nil {
		log.Debug().Err(err).Str("path", xmlPath).Msg("gamelist index load failed")
		ix.reset()
		return err
	}
	ix.doc = doc
	ix.path = xmlPath
	ix.counts = buildPathCounts(doc)
	return nil
}

func (ix *Index) reset() {
	ix.doc = nil
	ix.path = ""
	ix.counts = nil
}

// buildPathCounts groups all normalized entry paths and counts occurrences.
// Counting is ordinal (case-sensitive), mirroring how duplicates appear in
// the file itself.
func buildPathCounts(doc *xmlDocument) map[string]int {
	counts := make(map[string]int, len(doc.Games))
	for i := range doc.Games {
		p := NormalizeRelPath(doc.Games[i].Path)
		if p == "" {
			continue
		}
		counts[p]++
	}
	return counts
}
