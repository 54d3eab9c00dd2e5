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

// Package hasher computes the ROM checksums used for remote lookup and
// media change detection.
package hasher

import (
	"crypto/md5"  //nolint:gosec // checksums for lookup, not security
	"crypto/sha1" //nolint:gosec // checksums for lookup, not security
	"fmt"
	"hash/crc32"
	"io"

	"github.com/spf13/afero"
)

// FileHash contains every checksum the remote service matches on.
type FileHash struct {
	CRC32    string
	MD5      string
	SHA1     string
	FileSize int64
}

// ComputeFileHashes calculates CRC32, MD5 and SHA1 for a file in one
// read pass.
func ComputeFileHashes(fsys afero.Fs, filePath string) (*FileHash, error) {
	file, err := fsys.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to get file stats: %w", err)
	}

	return hashReader(file, stat.Size())
}

func hashReader(r io.Reader, size int64) (*FileHash, error) {
	crc32Hash := crc32.NewIEEE()
	md5Hash := md5.New()  //nolint:gosec // checksums for lookup, not security
	sha1Hash := sha1.New() //nolint:gosec // checksums for lookup, not security

	w := io.MultiWriter(crc32Hash, md5Hash, sha1Hash)
	if _, err := io.Copy(w, r); err != nil {
		return nil, fmt.Errorf("failed to read file for hashing: %w", err)
	}

	return &FileHash{
		CRC32:    fmt.Sprintf("%08x", crc32Hash.Sum32()),
		MD5:      fmt.Sprintf("%x", md5Hash.Sum(nil)),
		SHA1:     fmt.Sprintf("%x", sha1Hash.Sum(nil)),
		FileSize: size,
	}, nil
}

// HashBytes computes the same checksum set over an in-memory payload.
func HashBytes(data []byte) *FileHash {
	crc := crc32.ChecksumIEEE(data)
	return &FileHash{
		CRC32:    fmt.Sprintf("%08x", crc),
		MD5:      fmt.Sprintf("%x", md5.Sum(data)),  //nolint:gosec
		SHA1:     fmt.Sprintf("%x", sha1.Sum(data)), //nolint:gosec
		FileSize: int64(len(data)),
	}
}
