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

func writeDoc(t *testing.T, fsys afero.Fs, path string, games ...xmlGame) {
	t.Helper()
	data, err := encodeDocument(&xmlDocument{Games: games})
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fsys, path, data, 0o644))
}

func TestIndexCountAndDecrement(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	writeDoc(t, fsys, "/roms/gamelist.xml",
		xmlGame{Path: "./mario.zip", Name: "Mario"},
		xmlGame{Path: "mario.zip", Name: "Mario (older scrape)"},
		xmlGame{Path: "./zelda.zip", Name: "Zelda"},
	)

	ix := NewIndex(fsys)
	assert.Equal(t, 2, ix.Count("/roms/gamelist.xml", "mario.zip"))
	assert.Equal(t, 1, ix.Count("/roms/gamelist.xml", "./zelda.zip"))
	assert.Equal(t, 0, ix.Count("/roms/gamelist.xml", "missing.zip"))
	assert.Equal(t, 0, ix.Count("/roms/gamelist.xml", ""))

	ix.Decrement("/roms/gamelist.xml", "mario.zip")
	assert.Equal(t, 1, ix.Count("/roms/gamelist.xml", "mario.zip"))

	ix.Decrement("/roms/gamelist.xml", "mario.zip")
	assert.Equal(t, 0, ix.Count("/roms/gamelist.xml", "mario.zip"))
}

func TestIndexSingleSlot(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	writeDoc(t, fsys, "/a/gamelist.xml", xmlGame{Path: "one.zip"})
	writeDoc(t, fsys, "/b/gamelist.xml", xmlGame{Path: "two.zip"})

	ix := NewIndex(fsys)
	assert.Equal(t, 1, ix.Count("/a/gamelist.xml", "one.zip"))

	// Loading another document evicts the first.
	assert.Equal(t, 1, ix.Count("/b/gamelist.xml", "two.zip"))
	assert.Equal(t, 0, ix.Count("/b/gamelist.xml", "one.zip"))
}

func TestIndexStaleUntilInvalidate(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	writeDoc(t, fsys, "/roms/gamelist.xml", xmlGame{Path: "mario.zip"})

	ix := NewIndex(fsys)
	require.Equal(t, 1, ix.Count("/roms/gamelist.xml", "mario.zip"))

	// An external rewrite is invisible until Invalidate.
	writeDoc(t, fsys, "/roms/gamelist.xml",
		xmlGame{Path: "mario.zip"}, xmlGame{Path: "mario.zip"})
	assert.Equal(t, 1, ix.Count("/roms/gamelist.xml", "mario.zip"))

	ix.Invalidate()
	assert.Equal(t, 2, ix.Count("/roms/gamelist.xml", "mario.zip"))
}

func TestIndexDecrementOtherFileResets(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	writeDoc(t, fsys, "/a/gamelist.xml", xmlGame{Path: "one.zip"})
	writeDoc(t, fsys, "/b/gamelist.xml", xmlGame{Path: "one.zip"})

	ix := NewIndex(fsys)
	require.Equal(t, 1, ix.Count("/a/gamelist.xml", "one.zip"))

	// Decrementing against a different document drops the cache instead of
	// corrupting the counts.
	ix.Decrement("/b/gamelist.xml", "one.zip")
	assert.Equal(t, 1, ix.Count("/a/gamelist.xml", "one.zip"))
}

func TestIndexMissingFile(t *testing.T) {
	t.Parallel()

	ix := NewIndex(afero.NewMemMapFs())
	assert.Equal(t, 0, ix.Count("/nope/gamelist.xml", "mario.zip"))
}
