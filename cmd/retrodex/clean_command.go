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

func newCleanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clean <rom-dir>",
		Short: "Drop catalog entries and media references whose files are gone",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			svc := ctx.catalogService()
			roms, mediaRefs, err := svc.Clean(args[0])
			if err != nil {
				return fmt.Errorf("clean failed: %w", err)
			}
			fmt.Printf("removed %d entries, %d media references\n", roms, mediaRefs)
			return nil
		},
	}
}
