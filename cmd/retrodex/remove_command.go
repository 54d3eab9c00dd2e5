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

	"github.com/RetroDexProject/retrodex-core/pkg/gamelist"
	"github.com/spf13/cobra"
)

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "rm <rom-dir> <rom-path>",
		Short: "Remove a catalog entry by its ROM path",
		Long: `Remove deletes the catalog entry whose path matches the given ROM
path. With --all every entry referencing that path is deleted at once,
which is useful when duplicates share one file.`,
		Args: cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			svc := ctx.catalogService()
			catalog, _, err := svc.Reconcile(args[0])
			if err != nil {
				return fmt.Errorf("remove failed: %w", err)
			}
			entry := catalog.FindByPath(gamelist.NormalizeRelPath(args[1]))
			if entry == nil {
				fmt.Println("no matching entry")
				return nil
			}
			removed, err := svc.DeleteGame(args[0], entry, all)
			if err != nil {
				return fmt.Errorf("remove failed: %w", err)
			}
			if !removed {
				fmt.Println("no matching entry")
				return nil
			}
			fmt.Println("removed")
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Delete every entry referencing the path")
	return cmd
}
