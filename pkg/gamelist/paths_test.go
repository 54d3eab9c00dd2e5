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

func TestNormalizeRelPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"backslashes become slashes", `.\a\b.rom`, "a/b.rom"},
		{"mixed separators", `./a\b.rom`, "a/b.rom"},
		{"leading dot-slash stripped", "./mario.zip", "mario.zip"},
		{"repeated dot-slash stripped", "././mario.zip", "mario.zip"},
		{"plain path unchanged", "mario.zip", "mario.zip"},
		{"subdirectory kept", "discs/game.chd", "discs/game.chd"},
		{"bare dot is empty", ".", ""},
		{"empty stays empty", "", ""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := NormalizeRelPath(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, NormalizeRelPath(got), "normalization must be idempotent")
		})
	}
}

func TestBaseName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"last dot wins", "Dr. Mario.zip", "Dr. Mario"},
		{"dotfile yields empty", ".gitignore", ""},
		{"no extension", "README", "README"},
		{"double extension", "game.tar.gz", "game.tar"},
		{"empty input", "", ""},
		{"whitespace only", "   ", ""},
		{"path is stripped", "subdir/Game (Disc 1).chd", "Game (Disc 1)"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, BaseName(tt.input))
		})
	}
}

func TestResolvePath_CaseInsensitive(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/roms/Media/Box2D", 0o755))
	require.NoError(t, afero.WriteFile(fsys, "/roms/Media/Box2D/Mario.png", []byte("png"), 0o644))

	got, ok := ResolvePath(fsys, "/roms", "media/box2d/mario.png")
	require.True(t, ok)
	assert.Equal(t, "/roms/Media/Box2D/Mario.png", got)

	_, ok = ResolvePath(fsys, "/roms", "media/box2d/luigi.png")
	assert.False(t, ok)

	_, ok = ResolvePath(fsys, "/roms", "")
	assert.False(t, ok)
}
