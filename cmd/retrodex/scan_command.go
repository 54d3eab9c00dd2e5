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

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scan <rom-dir>",
		Short: "Reconcile a system folder's catalog with the ROM files on disk",
		Long: `Scan reads the folder's gamelist.xml, resolves .m3u playlists, and
reports files that have no catalog entry yet. Nothing is written; new
entries are persisted once they have been scraped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			svc := ctx.catalogService()
			catalog, added, err := svc.Reconcile(args[0])
			if err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}

			for _, e := range added {
				fmt.Printf("new: %s\n", e.Path)
			}
			fmt.Printf("%d entries, %d new\n", len(catalog.Entries), len(added))
			return nil
		},
	}
}
