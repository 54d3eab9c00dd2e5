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

func newDupesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "dupes <rom-dir>",
		Short: "List catalog entries sharing the same scrape id",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			svc := ctx.catalogService()
			groups, err := svc.DuplicateIDs(args[0])
			if err != nil {
				return fmt.Errorf("duplicate check failed: %w", err)
			}
			if len(groups) == 0 {
				fmt.Println("no duplicates")
				return nil
			}
			for _, g := range groups {
				fmt.Printf("id %d:\n", g.ID)
				for _, e := range g.Entries {
					fmt.Printf("  %s\n", e.Path)
				}
			}
			return nil
		},
	}
}
