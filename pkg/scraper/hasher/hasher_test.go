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

package hasher

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeFileHashes(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/roms/test.bin", []byte("hello world"), 0o644))

	hash, err := ComputeFileHashes(fsys, "/roms/test.bin")
	require.NoError(t, err)

	// Known digests of "hello world".
	assert.Equal(t, "0d4a1185", hash.CRC32)
	assert.Equal(t, "5eb63bbbe01eeed093cb22bb8f5acdc3", hash.MD5)
	assert.Equal(t, "2aae6c35c94fcfb415dbe95f408b9ce91ee846ed", hash.SHA1)
	assert.Equal(t, int64(11), hash.FileSize)
}

func TestComputeFileHashes_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := ComputeFileHashes(afero.NewMemMapFs(), "/roms/missing.bin")
	require.Error(t, err)
}

func TestHashBytes_MatchesFileHashes(t *testing.T) {
	t.Parallel()

	data := []byte("payload bytes")
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/f", data, 0o644))

	fromFile, err := ComputeFileHashes(fsys, "/f")
	require.NoError(t, err)
	fromBytes := HashBytes(data)
	assert.Equal(t, fromFile, fromBytes)
}

func TestComputeFileHashes_EmptyFile(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/empty", nil, 0o644))

	hash, err := ComputeFileHashes(fsys, "/empty")
	require.NoError(t, err)
	assert.Equal(t, "00000000", hash.CRC32)
	assert.Zero(t, hash.FileSize)
}
