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
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const (
	backupSuffix = ".bak"
	tempSuffix   = ".tmp"
)

// Persister owns every mutation of a gamelist.xml: merge-by-key saves,
// entry deletion and the existence-cleanup pass. All mutations share one
// process-local lock; concurrent writers from other processes are out of
// scope.
type Persister struct {
	fsys afero.Fs
	mu   sync.Mutex
}

// NewPersister creates a persister writing through the given filesystem.
func NewPersister(fsys afero.Fs) *Persister {
	return &Persister{fsys: fsys}
}

// Save merges every entry with State == StateScraped into the document at
// xmlPath and writes the result via an atomic temp-file swap. The prior
// file survives as a .bak sibling. On any failure the original file is
// untouched. The caller must invalidate any Index over this file after a
// successful save.
func (p *Persister) Save(xmlPath string, entries []*Entry) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	doc, err := p.loadForUpdate(xmlPath)
	if err != nil {
		return err
	}

	for _, e := range entries {
		if e.State != StateScraped {
			continue
		}
		mergeEntry(doc, e)
	}

	return p.writeAtomic(xmlPath, doc)
}

// mergeEntry finds the game node matching the entry's path
// (case-insensitive) and replaces its managed fields, or appends a new
// node. Empty fields are dropped from the node entirely.
func mergeEntry(doc *xmlDocument, e *Entry) {
	rendered := renderGame(e)
	key := foldPath(e.Path)
	for i := range doc.Games {
		if foldPath(doc.Games[i].Path) == key {
			rendered.GenreID = doc.Games[i].GenreID
			doc.Games[i] = rendered
			return
		}
	}
	doc.Games = append(doc.Games, rendered)
}

// loadForUpdate reads the document that a mutation will be applied to:
// the live file first, the .bak sibling if the live file is corrupt, and
// a fresh empty document only when neither exists.
func (p *Persister) loadForUpdate(xmlPath string) (*xmlDocument, error) {
	exists, err := afero.Exists(p.fsys, xmlPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", xmlPath, err)
	}
	if !exists {
		return &xmlDocument{}, nil
	}

	doc, err := readDocument(p.fsys, xmlPath)
	if err == nil {
		return doc, nil
	}

	backupPath := xmlPath + backupSuffix
	if ok, _ := afero.Exists(p.fsys, backupPath); ok {
		log.Warn().Str("path", xmlPath).
			Msg("catalog file unreadable, falling back to backup")
		if doc, bakErr := readDocument(p.fsys, backupPath); bakErr == nil {
			return doc, nil
		}
	}
	return nil, fmt.Errorf("failed to load %s and no usable backup: %w", xmlPath, err)
}

// writeAtomic writes doc to a temp sibling first and then swaps it into
// place, keeping the previous file as .bak. The temp file is always
// cleaned up, success or not.
func (p *Persister) writeAtomic(xmlPath string, doc *xmlDocument) (err error) {
	data, err := encodeDocument(doc)
	if err != nil {
		return err
	}

	tempPath := xmlPath + tempSuffix
	backupPath := xmlPath + backupSuffix
	defer func() {
		if ok, _ := afero.Exists(p.fsys, tempPath); ok {
			_ = p.fsys.Remove(tempPath)
		}
	}()

	if err := afero.WriteFile(p.fsys, tempPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp catalog %s: %w", tempPath, err)
	}

	exists, err := afero.Exists(p.fsys, xmlPath)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", xmlPath, err)
	}
	if !exists {
		if err := p.fsys.Rename(tempPath, xmlPath); err != nil {
			return fmt.Errorf("failed to move catalog into place: %w", err)
		}
		return nil
	}

	// Replace: current file becomes the backup, temp becomes current. If
	// the second rename fails the backup is rolled straight back.
	_ = p.fsys.Remove(backupPath)
	if err := p.fsys.Rename(xmlPath, backupPath); err != nil {
		return fmt.Errorf("failed to back up %s: %w", xmlPath, err)
	}
	if err := p.fsys.Rename(tempPath, xmlPath); err != nil {
		if rbErr := p.fsys.Rename(backupPath, xmlPath); rbErr != nil {
			return fmt.Errorf("failed to replace catalog and to roll back (%v): %w", rbErr, err)
		}
		return fmt.Errorf("failed to replace catalog: %w", err)
	}
	return nil
}

// DeleteEntry removes the entry matching e's path from the document at
// xmlPath. With deleteAllReferences set and several nodes carrying that
// path, every one is removed in one pass and the index is decremented per
// removal. A single match always takes the criteria check instead: the
// node is removed only when name, developer, publisher, genre and release
// date also match, so a lone stale duplicate whose metadata has since
// changed is left in place even under delete-all. Returns whether the
// file changed.
func (p *Persister) DeleteEntry(xmlPath string, e *Entry, deleteAllReferences bool, ix *Index) (bool, error) {
	if e == nil || e.Path == "" {
		return false, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	exists, err := afero.Exists(p.fsys, xmlPath)
	if err != nil || !exists {
		return false, err
	}

	doc, err := readDocument(p.fsys, xmlPath)
	if err != nil {
		return false, err
	}

	key := foldPath(e.Path)
	var matches []int
	for i := range doc.Games {
		if foldPath(doc.Games[i].Path) == key {
			matches = append(matches, i)
		}
	}

	if deleteAllReferences && len(matches) > 1 {
		log.Warn().Str("path", e.Path).Int("count", len(matches)).
			Msg("deleting duplicate catalog entries for path")
		kept := doc.Games[:0]
		for i := range doc.Games {
			if foldPath(doc.Games[i].Path) != key {
				kept = append(kept, doc.Games[i])
			}
		}
		removed := len(doc.Games) - len(kept)
		doc.Games = kept
		if err := p.writeAtomic(xmlPath, doc); err != nil {
			return false, err
		}
		if ix != nil {
			// Count keys are ordinal while the match above is case-folded;
			// a case-variant duplicate keeps its count until the next
			// Invalidate.
			for i := 0; i < removed; i++ {
				ix.Decrement(xmlPath, e.Path)
			}
		}
		return true, nil
	}

	for _, i := range matches {
		g := &doc.Games[i]
		if g.Name == e.Name &&
			g.Developer == e.Developer &&
			g.Publisher == e.Publisher &&
			g.Genre == e.Genre &&
			g.ReleaseDate == e.ReleaseDate {
			doc.Games = append(doc.Games[:i], doc.Games[i+1:]...)
			if err := p.writeAtomic(xmlPath, doc); err != nil {
				return false, err
			}
			if ix != nil {
				ix.Invalidate()
			}
			return true, nil
		}
	}

	// Not found is not an error; the entry may already be gone.
	return false, nil
}

// CleanByExistence removes entries whose ROM file no longer exists and
// strips media references whose asset is missing, resolving all paths
// case-insensitively against the document's directory. The file is only
// rewritten when something was removed, so a second run over an unchanged
// filesystem is a no-op.
func (p *Persister) CleanByExistence(xmlPath, romDir string, ix *Index) (romsRemoved, mediaRefsRemoved int, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	exists, err := afero.Exists(p.fsys, xmlPath)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to stat %s: %w", xmlPath, err)
	}
	if !exists {
		return 0, 0, nil
	}

	doc, err := readDocument(p.fsys, xmlPath)
	if err != nil {
		return 0, 0, err
	}

	kept := make([]xmlGame, 0, len(doc.Games))
	for i := range doc.Games {
		g := doc.Games[i]
		if g.Path != "" {
			if _, ok := ResolvePath(p.fsys, romDir, g.Path); !ok {
				log.Info().Str("path", g.Path).Msg("removing entry, rom file missing")
				romsRemoved++
				continue
			}
		}
		for _, t := range AllMediaTypes {
			field := g.mediaField(t)
			if *field == "" {
				continue
			}
			if _, ok := ResolvePath(p.fsys, romDir, *field); !ok {
				log.Info().Str("game", g.Name).Str("media", string(t)).
					Str("ref", *field).Msg("removing media reference, asset missing")
				*field = ""
				mediaRefsRemoved++
			}
		}
		kept = append(kept, g)
	}

	if romsRemoved == 0 && mediaRefsRemoved == 0 {
		return 0, 0, nil
	}

	doc.Games = kept
	if err := p.writeAtomic(xmlPath, doc); err != nil {
		return 0, 0, err
	}
	if ix != nil {
		ix.Invalidate()
	}
	return romsRemoved, mediaRefsRemoved, nil
}
