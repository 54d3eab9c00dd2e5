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
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/RetroDexProject/retrodex-core/pkg/config"
	"github.com/RetroDexProject/retrodex-core/pkg/gamelist"
	"github.com/RetroDexProject/retrodex-core/pkg/scraper"
	"github.com/RetroDexProject/retrodex-core/pkg/scraper/screenscraper"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func newScrapeCommand(ctx *commandContext) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "scrape <system-id> <rom-dir>",
		Short: "Fetch metadata and media for a system folder's catalog",
		Long: `Scrape reconciles the folder's catalog with the files on disk, then
enriches entries from ScreenScraper: checksum lookup first, name search
as a fallback, media downloads in parallel within the account's thread
entitlement. Results are merged back into gamelist.xml atomically.

The system id is ScreenScraper's numeric platform id.

Examples:
  retrodex scrape 75 ~/roms/megadrive
  retrodex scrape --refresh 75 ~/roms/megadrive`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			systemID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid system id %q", args[0])
			}
			dir := args[1]

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			fsys := afero.NewOsFs()
			svc := gamelist.NewService(fsys)
			catalog, _, err := svc.Reconcile(dir)
			if err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}

			targets := selectTargets(catalog, refresh)
			if len(targets) == 0 {
				fmt.Println("nothing to scrape")
				return nil
			}

			quota := scraper.NewQuotaStore(fsys,
				filepath.Join(ctx.dataDir(), config.QuotaFile), clockwork.NewRealClock())
			orch := scraper.NewOrchestrator(fsys, screenscraper.NewClient(), cfg,
				quota, clockwork.NewRealClock())
			if err := orch.StartSession(runCtx); err != nil {
				return err
			}

			progress := &scraper.Progress{
				OnStart: func(e *gamelist.Entry, index, total int) {
					fmt.Printf("[%d/%d] %s\n", index+1, total, e.String())
				},
				OnEnd: func(e *gamelist.Entry, _, _ int, err error) {
					if err != nil {
						fmt.Printf("        failed: %v\n", err)
					}
				},
			}

			batchErr := orch.ScrapeBatch(runCtx, dir, systemID, targets, progress)
			if batchErr != nil && !errors.Is(batchErr, scraper.ErrQuotaExceeded) {
				return batchErr
			}

			if err := svc.Save(dir, targets); err != nil {
				return fmt.Errorf("failed to save catalog: %w", err)
			}
			printSummary(targets, quota)
			return batchErr
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false,
		"Also rescrape entries that already have metadata")
	return cmd
}

// selectTargets picks the entries to enrich. Without refresh only entries
// that never matched a remote record are scraped.
func selectTargets(catalog *gamelist.Catalog, refresh bool) []*gamelist.Entry {
	var targets []*gamelist.Entry
	for _, e := range catalog.Entries {
		if refresh || e.ID == 0 {
			targets = append(targets, e)
		}
	}
	return targets
}

func printSummary(targets []*gamelist.Entry, quota *scraper.QuotaStore) {
	counts := map[gamelist.State]int{}
	for _, e := range targets {
		counts[e.State]++
	}
	fmt.Printf("scraped %d, no match %d, ambiguous %d, failed %d\n",
		counts[gamelist.StateScraped], counts[gamelist.StateNoData],
		counts[gamelist.StateAmbiguous], counts[gamelist.StateError])

	state := quota.State()
	if state.MaxRequestsPerDay > 0 {
		fmt.Printf("requests today: %d of %d\n",
			state.LastReportedRequestsToday, state.MaxRequestsPerDay)
	}
}
