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
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// CatalogFileName is the persisted document inside every system folder.
const CatalogFileName = "gamelist.xml"

// Extensions that never identify a ROM: configuration, saves, images,
// videos, logs and other sidecar files living next to the ROMs.
var excludedExtensions = []string{
	".db", ".xml", ".bak", ".sav", ".cfg", ".p2k", ".tmp", ".temp", ".txt",
	".nfo", ".jpg", ".png", ".bmp", ".jpeg", ".avi", ".mp4", ".mkv", ".cue",
	".doc", ".pdf", ".keep", ".desktop", ".sh", ".log", ".ds_store",
	".localized", ".plist", ".zip.tmp", ".git", ".py",
}

func isExcludedFile(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range excludedExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// Loader reconciles a system folder's filesystem state against its
// persisted gamelist.xml.
type Loader struct {
	fsys afero.Fs
}

// NewLoader creates a loader reading through the given filesystem.
func NewLoader(fsys afero.Fs) *Loader {
	return &Loader{fsys: fsys}
}

// Reconcile merges the persisted catalog of dir with what is actually on
// disk: playlists not yet represented get a synthesized entry, unindexed
// ROM files are appended as new entries and the result is sorted by name.
// The second return value lists only the entries created by this call.
// A missing or malformed document degrades to an empty catalog, never an
// error; only a failure to scan the folder itself is fatal.
func (l *Loader) Reconcile(dir string) (*Catalog, []*Entry, error) {
	if ok, err := afero.DirExists(l.fsys, dir); err != nil || !ok {
		return nil, nil, fmt.Errorf("rom folder %s does not exist", dir)
	}

	xmlPath := filepath.Join(dir, CatalogFileName)
	catalog, err := ParseCatalog(l.fsys, xmlPath)
	if err != nil {
		log.Warn().Err(err).Str("path", xmlPath).
			Msg("could not load catalog, starting from an empty one")
		catalog = &Catalog{}
	} else {
		log.Info().Str("dir", dir).Int("entries", len(catalog.Entries)).
			Msg("catalog loaded")
	}

	known := catalog.PathSet()
	var added []*Entry
	appendEntry := func(e *Entry) {
		catalog.Entries = append(catalog.Entries, e)
		added = append(added, e)
		known[foldPath(e.Path)] = struct{}{}
	}

	playlists, claims, err := ResolvePlaylists(l.fsys, dir)
	if err != nil {
		return nil, nil, err
	}
	for _, pl := range playlists {
		if _, ok := known[foldPath(pl.Path)]; ok {
			continue
		}
		if pl.Name == "" {
			continue
		}
		e := &Entry{Path: pl.Path, Name: pl.Name, State: StateNone}
		copyDiscMetadata(e, pl, catalog)
		appendEntry(e)
		log.Info().Str("playlist", pl.Path).Msg("new multi-disc entry added")
	}

	files, err := afero.ReadDir(l.fsys, dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to scan rom folder %s: %w", dir, err)
	}
	for _, fi := range files {
		name := fi.Name()
		if fi.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if strings.EqualFold(filepath.Ext(name), playlistExt) || isExcludedFile(name) {
			continue
		}
		relPath := NormalizeRelPath("./" + name)
		if claims.Contains(relPath) {
			log.Debug().Str("file", name).Msg("skipping disc referenced by playlist")
			continue
		}
		if _, ok := known[foldPath(relPath)]; ok {
			continue
		}
		display := BaseName(name)
		if display == "" {
			continue
		}
		appendEntry(&Entry{Path: relPath, Name: display, State: StateNone})
		log.Info().Str("file", name).Msg("new rom entry added")
	}

	catalog.SortByName()
	log.Info().Str("dir", dir).Int("total", len(catalog.Entries)).
		Int("new", len(added)).Msg("reconcile finished")
	return catalog, added, nil
}

// copyDiscMetadata fills a synthesized playlist entry from the first
// referenced disc (in file order) that already carries both a name and a
// description. Ties always resolve to the earliest disc.
func copyDiscMetadata(e *Entry, pl Playlist, catalog *Catalog) {
	for _, disc := range pl.Discs {
		src := catalog.FindByPath(disc)
		if src == nil || src.Name == "" || src.Description == "" {
			continue
		}
		e.Name = src.Name
		e.Description = src.Description
		return
	}
}
