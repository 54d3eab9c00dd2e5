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
	"bufio"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const playlistExt = ".m3u"

// Playlist is one multi-disc grouping: an m3u file and the ordered disc
// paths it references, all normalized relative to the scan root.
type Playlist struct {
	Path  string
	Name  string
	Discs []string
}

// PlaylistClaims is the case-insensitive set of disc paths referenced by
// any playlist in a folder. Claimed discs must never become standalone
// catalog entries.
type PlaylistClaims map[string]struct{}

// Contains reports whether relPath is claimed by a playlist.
func (c PlaylistClaims) Contains(relPath string) bool {
	_, ok := c[foldPath(relPath)]
	return ok
}

func (c PlaylistClaims) add(relPath string) {
	c[foldPath(relPath)] = struct{}{}
}

// ResolvePlaylists scans the top level of dir for m3u files and parses
// each one: blank lines and #-comments are skipped, every other line is a
// disc reference resolved against the playlist's own directory and then
// normalized relative to dir.
func ResolvePlaylists(fsys afero.Fs, dir string) ([]Playlist, PlaylistClaims, error) {
	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to scan %s for playlists: %w", dir, err)
	}

	claims := make(PlaylistClaims)
	var playlists []Playlist
	for _, fi := range entries {
		if fi.IsDir() || !strings.EqualFold(filepath.Ext(fi.Name()), playlistExt) {
			continue
		}
		pl, err := parsePlaylist(fsys, dir, fi.Name())
		if err != nil {
			return nil, nil, err
		}
		for _, disc := range pl.Discs {
			claims.add(disc)
		}
		playlists = append(playlists, pl)
	}
	return playlists, claims, nil
}

func parsePlaylist(fsys afero.Fs, dir, name string) (Playlist, error) {
	pl := Playlist{
		Path: NormalizeRelPath(name),
		Name: BaseName(name),
	}

	f, err := fsys.Open(filepath.Join(dir, name))
	if err != nil {
		return pl, fmt.Errorf("failed to open playlist %s: %w", name, err)
	}
	defer func() { _ = f.Close() }()

	// Disc lines are relative to the playlist's directory, which for a
	// top-level playlist is the scan root itself.
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		disc := NormalizeRelPath(path.Join(path.Dir(NormalizeRelPath(name)), NormalizeRelPath(line)))
		pl.Discs = append(pl.Discs, disc)
	}
	if err := scanner.Err(); err != nil {
		return pl, fmt.Errorf("failed to read playlist %s: %w", name, err)
	}
	return pl, nil
}
