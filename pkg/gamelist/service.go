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
	"path/filepath"

	"github.com/spf13/afero"
)

// Service is the catalog facade: one object owning the loader, persister
// and index cache so that every write path also invalidates the cache.
type Service struct {
	fsys      afero.Fs
	loader    *Loader
	persister *Persister
	index     *Index
}

// NewService creates a catalog service over the given filesystem.
func NewService(fsys afero.Fs) *Service {
	return &Service{
		fsys:      fsys,
		loader:    NewLoader(fsys),
		persister: NewPersister(fsys),
		index:     NewIndex(fsys),
	}
}

// CatalogPath returns the document path for a system folder.
func (s *Service) CatalogPath(dir string) string {
	return filepath.Join(dir, CatalogFileName)
}

// Reconcile merges the folder's persisted catalog with its filesystem
// state. See Loader.Reconcile.
func (s *Service) Reconcile(dir string) (*Catalog, []*Entry, error) {
	return s.loader.Reconcile(dir)
}

// Save persists the scraped entries into the folder's document and drops
// the index cache so the next duplicate check re-reads the file.
func (s *Service) Save(dir string, entries []*Entry) error {
	if err := s.persister.Save(s.CatalogPath(dir), entries); err != nil {
		return err
	}
	s.index.Invalidate()
	return nil
}

// DeleteGame removes e from the folder's document. With
// deleteAllReferences set, every node sharing e's path goes at once.
func (s *Service) DeleteGame(dir string, e *Entry, deleteAllReferences bool) (bool, error) {
	return s.persister.DeleteEntry(s.CatalogPath(dir), e, deleteAllReferences, s.index)
}

// Clean drops entries whose ROM is gone and media references whose asset
// is gone. Returns the removal counts.
func (s *Service) Clean(dir string) (romsRemoved, mediaRefsRemoved int, err error) {
	return s.persister.CleanByExistence(s.CatalogPath(dir), dir, s.index)
}

// ReferenceCount reports how many document entries carry romPath.
func (s *Service) ReferenceCount(dir, romPath string) int {
	return s.index.Count(s.CatalogPath(dir), romPath)
}

// DuplicateIDs lists the scrape IDs shared by more than one entry.
func (s *Service) DuplicateIDs(dir string) ([]DuplicateGroup, error) {
	return FindDuplicateIDs(s.fsys, s.CatalogPath(dir))
}
