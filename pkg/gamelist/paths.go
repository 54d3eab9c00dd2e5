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
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// NormalizeRelPath canonicalizes a relative catalog path for comparison and
// storage: backslashes become forward slashes and any leading "./" segments
// are stripped. The result is stable under repeated application.
func NormalizeRelPath(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	for strings.HasPrefix(p, "./") {
		p = p[2:]
	}
	if p == "." {
		return ""
	}
	return p
}

// foldPath is the key used for case-insensitive path sets. Catalog paths are
// written by a mix of tools on case-insensitive filesystems, so lookups
// always fold case while the stored value keeps its original casing.
func foldPath(p string) string {
	return strings.ToLower(NormalizeRelPath(p))
}

// BaseName returns the display name derived from a filename: everything
// before the last dot. A pure-extension name like ".gitignore" yields the
// empty string, which discovery treats as "skip". filepath.Ext-style
// helpers would truncate names like "Dr. Mario.zip" at the first dot.
func BaseName(file string) string {
	if strings.TrimSpace(file) == "" {
		return ""
	}
	name := path.Base(strings.ReplaceAll(file, `\`, "/"))
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return strings.TrimSpace(name)
	}
	if idx == 0 {
		return ""
	}
	return strings.TrimSpace(name[:idx])
}

// ResolvePath resolves a relative catalog path against a base directory,
// matching path components case-insensitively so catalogs written on
// case-insensitive filesystems resolve on case-sensitive ones. Returns the
// on-disk path and whether the file exists.
func ResolvePath(fsys afero.Fs, baseDir, relPath string) (string, bool) {
	rel := NormalizeRelPath(relPath)
	if rel == "" {
		return "", false
	}

	direct := filepath.Join(baseDir, filepath.FromSlash(rel))
	if ok, err := afero.Exists(fsys, direct); err == nil && ok {
		return direct, true
	}

	cur := baseDir
	parts := strings.Split(rel, "/")
	for i, part := range parts {
		if part == "" {
			continue
		}
		entries, err := afero.ReadDir(fsys, cur)
		if err != nil {
			return direct, false
		}
		var match os.FileInfo
		for _, entry := range entries {
			if strings.EqualFold(entry.Name(), part) {
				match = entry
				break
			}
		}
		if match == nil {
			return direct, false
		}
		cur = filepath.Join(cur, match.Name())
		if i == len(parts)-1 && match.IsDir() {
			return cur, false
		}
	}
	return cur, true
}
