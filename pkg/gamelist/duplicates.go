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
	"sort"

	"github.com/spf13/afero"
)

// DuplicateGroup is a scrape ID shared by more than one catalog entry,
// with the entries in document order.
type DuplicateGroup struct {
	ID      int
	Entries []*Entry
}

// FindDuplicateIDs parses the document at path and groups entries by
// their scrape ID, returning only the groups with more than one member.
// Entries without an ID are ignored. Read-only; never mutates the file.
func FindDuplicateIDs(fsys afero.Fs, path string) ([]DuplicateGroup, error) {
	doc, err := readDocument(fsys, path)
	if err != nil {
		return nil, err
	}

	byID := make(map[int][]*Entry)
	for i := range doc.Games {
		e := doc.Games[i].toEntry()
		if e.ID == 0 {
			continue
		}
		byID[e.ID] = append(byID[e.ID], e)
	}

	var groups []DuplicateGroup
	for id, entries := range byID {
		if len(entries) > 1 {
			groups = append(groups, DuplicateGroup{ID: id, Entries: entries})
		}
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].ID < groups[j].ID })
	return groups, nil
}
