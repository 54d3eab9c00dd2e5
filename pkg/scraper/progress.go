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

package scraper

import "github.com/RetroDexProject/retrodex-core/pkg/gamelist"

// Progress receives per-entry notifications from a batch run. Callbacks
// are invoked synchronously from the batch loop: OnStart always precedes
// OnEnd for the same entry, and entries never overlap.
type Progress struct {
	OnStart func(e *gamelist.Entry, index, total int)
	OnEnd   func(e *gamelist.Entry, index, total int, err error)
}

func (p *Progress) start(e *gamelist.Entry, index, total int) {
	if p != nil && p.OnStart != nil {
		p.OnStart(e, index, total)
	}
}

func (p *Progress) end(e *gamelist.Entry, index, total int, err error) {
	if p != nil && p.OnEnd != nil {
		p.OnEnd(e, index, total, err)
	}
}
