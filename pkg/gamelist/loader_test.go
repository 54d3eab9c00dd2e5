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
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, fsys afero.Fs, path string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fsys, path, []byte("data"), 0o644))
}

func TestReconcile_MissingFolder(t *testing.T) {
	t.Parallel()

	_, _, err := NewLoader(afero.NewMemMapFs()).Reconcile("/nope")
	require.Error(t, err)
}

func TestReconcile_NewRomsDiscovered(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/roms", 0o755))
	touch(t, fsys, "/roms/Dr. Mario.zip")
	touch(t, fsys, "/roms/zelda.zip")
	touch(t, fsys, "/roms/notes.txt")
	touch(t, fsys, "/roms/save.sav")
	touch(t, fsys, "/roms/.gitignore")
	require.NoError(t, fsys.MkdirAll("/roms/media", 0o755))

	cat, added, err := NewLoader(fsys).Reconcile("/roms")
	require.NoError(t, err)
	require.Len(t, added, 2)
	require.Len(t, cat.Entries, 2)

	// Sorted by display name, ordinal.
	assert.Equal(t, "Dr. Mario", cat.Entries[0].Name)
	assert.Equal(t, "Dr. Mario.zip", cat.Entries[0].Path)
	assert.Equal(t, StateNone, cat.Entries[0].State)
	assert.Equal(t, "zelda", cat.Entries[1].Name)
}

func TestReconcile_KeepsExistingEntries(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/roms", 0o755))
	touch(t, fsys, "/roms/Mario.zip")
	touch(t, fsys, "/roms/zelda.zip")
	writeDoc(t, fsys, "/roms/gamelist.xml",
		xmlGame{Path: "./mario.zip", Name: "Super Mario", Description: "scraped"})

	cat, added, err := NewLoader(fsys).Reconcile("/roms")
	require.NoError(t, err)

	// mario.zip matched case-insensitively against the existing entry, only
	// zelda is new.
	require.Len(t, added, 1)
	assert.Equal(t, "zelda", added[0].Name)
	require.Len(t, cat.Entries, 2)
	existing := cat.Entries[0]
	assert.Equal(t, "Super Mario", existing.Name)
	assert.Equal(t, "scraped", existing.Description)
}

func TestReconcile_MalformedCatalogDegrades(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/roms", 0o755))
	touch(t, fsys, "/roms/mario.zip")
	require.NoError(t, afero.WriteFile(fsys, "/roms/gamelist.xml", []byte("garbage"), 0o644))

	cat, added, err := NewLoader(fsys).Reconcile("/roms")
	require.NoError(t, err)
	assert.Len(t, added, 1)
	assert.Len(t, cat.Entries, 1)
}

func TestReconcile_MultiDiscPlaylist(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/roms", 0o755))
	touch(t, fsys, "/roms/Game (Disc 1).chd")
	touch(t, fsys, "/roms/Game (Disc 2).chd")
	require.NoError(t, afero.WriteFile(fsys, "/roms/game.m3u",
		[]byte("# two discs\nGame (Disc 1).chd\n\nGame (Disc 2).chd\n"), 0o644))

	cat, added, err := NewLoader(fsys).Reconcile("/roms")
	require.NoError(t, err)

	// Exactly one entry: the playlist. Neither disc is standalone.
	require.Len(t, cat.Entries, 1)
	require.Len(t, added, 1)
	assert.Equal(t, "game.m3u", cat.Entries[0].Path)
	assert.Equal(t, "game", cat.Entries[0].Name)
	assert.Nil(t, cat.FindByPath("Game (Disc 1).chd"))
	assert.Nil(t, cat.FindByPath("Game (Disc 2).chd"))
}

func TestReconcile_PlaylistInheritsDiscMetadata(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/roms", 0o755))
	touch(t, fsys, "/roms/Game (Disc 1).chd")
	touch(t, fsys, "/roms/Game (Disc 2).chd")
	require.NoError(t, afero.WriteFile(fsys, "/roms/game.m3u",
		[]byte("Game (Disc 1).chd\nGame (Disc 2).chd\n"), 0o644))
	writeDoc(t, fsys, "/roms/gamelist.xml",
		xmlGame{Path: "./Game (Disc 1).chd", Name: "The Game", Description: "Long quest."})

	cat, _, err := NewLoader(fsys).Reconcile("/roms")
	require.NoError(t, err)

	pl := cat.FindByPath("game.m3u")
	require.NotNil(t, pl)
	assert.Equal(t, "The Game", pl.Name)
	assert.Equal(t, "Long quest.", pl.Description)
}

func TestReconcile_SecondRunIsStable(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/roms", 0o755))
	touch(t, fsys, "/roms/mario.zip")
	require.NoError(t, afero.WriteFile(fsys, "/roms/game.m3u", []byte("mario.zip\n"), 0o644))

	loader := NewLoader(fsys)
	first, added, err := loader.Reconcile("/roms")
	require.NoError(t, err)
	require.NotEmpty(t, added)

	// Persist the result and reconcile again: nothing new.
	require.NoError(t, NewPersister(fsys).Save("/roms/gamelist.xml", markScraped(first.Entries)))
	_, added, err = loader.Reconcile("/roms")
	require.NoError(t, err)
	assert.Empty(t, added)
}

func markScraped(entries []*Entry) []*Entry {
	for _, e := range entries {
		e.State = StateScraped
	}
	return entries
}
