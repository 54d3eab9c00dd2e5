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

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/RetroDexProject/retrodex-core/pkg/config"
	"github.com/RetroDexProject/retrodex-core/pkg/gamelist"
	"github.com/RetroDexProject/retrodex-core/pkg/scraper/hasher"
	"github.com/RetroDexProject/retrodex-core/pkg/scraper/screenscraper"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const sourceName = "ScreenScraper.fr"

// Orchestrator drives a rate-limited scrape session: one entry at a time
// for metadata, media jobs in parallel per entry, all remote calls
// sharing the same throttle and quota accounting.
type Orchestrator struct {
	fsys   afero.Fs
	client *screenscraper.Client
	cfg    *config.Instance
	quota  *QuotaStore
	clock  clockwork.Clock

	limits     SessionLimits
	limitsMu   sync.RWMutex
	throttleMu sync.Mutex
}

// NewOrchestrator wires an orchestrator to its client. The client's
// account snapshots flow back into the session limits and the persisted
// quota state.
func NewOrchestrator(fsys afero.Fs, client *screenscraper.Client, cfg *config.Instance,
	quota *QuotaStore, clock clockwork.Clock,
) *Orchestrator {
	o := &Orchestrator{
		fsys:   fsys,
		client: client,
		cfg:    cfg,
		quota:  quota,
		clock:  clock,
	}
	client.OnUserInfo = o.updateSession
	return o
}

func (o *Orchestrator) updateSession(u *screenscraper.UserInfo) {
	o.limitsMu.Lock()
	o.limits = SessionLimits{
		MaxRequestsPerMin: int(u.MaxRequestsPerMin),
		MaxRequestsPerDay: int(u.MaxRequestsPerDay),
		MaxThreads:        int(u.MaxThreads),
		RequestsToday:     int(u.RequestsToday),
	}
	o.limitsMu.Unlock()

	if err := o.quota.RecordUsage(int(u.RequestsToday), int(u.MaxRequestsPerDay)); err != nil {
		log.Warn().Err(err).Msg("failed to persist quota state")
	}
}

// Limits returns the latest session limits reported by the service.
func (o *Orchestrator) Limits() SessionLimits {
	o.limitsMu.RLock()
	defer o.limitsMu.RUnlock()
	return o.limits
}

// StartSession loads the persisted quota state and fetches the account
// snapshot that seeds the session limits.
func (o *Orchestrator) StartSession(ctx context.Context) error {
	if err := o.quota.Load(); err != nil {
		return err
	}
	if err := o.throttle(ctx); err != nil {
		return err
	}
	if _, err := o.client.UserInfo(ctx); err != nil {
		return fmt.Errorf("failed to start scrape session: %w", err)
	}
	return nil
}

// Delay is the pause before each remote call: the per-minute entitlement
// spread evenly with a 10% safety margin, or one second when no session
// limits are known yet.
func (o *Orchestrator) Delay() time.Duration {
	o.limitsMu.RLock()
	rpm := o.limits.MaxRequestsPerMin
	o.limitsMu.RUnlock()
	if rpm <= 0 {
		return time.Second
	}
	ms := math.Ceil(60000 / float64(rpm) * 1.1)
	return time.Duration(ms) * time.Millisecond
}

// throttle gates one remote call: fail fast on a spent daily budget,
// sleep the per-call delay, count the request. Shared by metadata and
// media calls so parallel media jobs cannot burst past the limit.
func (o *Orchestrator) throttle(ctx context.Context) error {
	if err := o.quota.CheckBudget(); err != nil {
		return err
	}

	o.throttleMu.Lock()
	select {
	case <-o.clock.After(o.Delay()):
	case <-ctx.Done():
		o.throttleMu.Unlock()
		return ctx.Err()
	}
	o.throttleMu.Unlock()

	return o.quota.Increment()
}

// maxThreads is the media concurrency cap: the session's entitlement,
// reduced by the user's configured override, never below one.
func (o *Orchestrator) maxThreads() int {
	o.limitsMu.RLock()
	threads := o.limits.MaxThreads
	o.limitsMu.RUnlock()
	if cfgMax := o.cfg.MaxThreads(); cfgMax > 0 && (threads <= 0 || cfgMax < threads) {
		threads = cfgMax
	}
	if threads < 1 {
		threads = 1
	}
	return threads
}

// ScrapeBatch enriches entries sequentially. A single entry's failure
// marks that entry and the loop continues; only a spent quota aborts the
// run. Cancellation stops further work without being treated as a
// failure. For every entry OnStart is reported before OnEnd.
func (o *Orchestrator) ScrapeBatch(ctx context.Context, dir string, systemID int,
	entries []*gamelist.Entry, progress *Progress,
) error {
	total := len(entries)
	for i, e := range entries {
		if ctx.Err() != nil {
			log.Info().Int("done", i).Int("total", total).Msg("scrape batch canceled")
			return nil
		}
		progress.start(e, i, total)
		err := o.ScrapeGame(ctx, dir, systemID, e)
		progress.end(e, i, total, err)
		if errors.Is(err, ErrQuotaExceeded) {
			return err
		}
		if err != nil {
			log.Warn().Err(err).Str("entry", e.String()).Msg("entry scrape failed, continuing")
		}
	}
	return nil
}

// ScrapeGame enriches one entry: metadata lookup by hash with a name
// search fallback, then the entry's media assets. The entry's State
// reflects the outcome.
func (o *Orchestrator) ScrapeGame(ctx context.Context, dir string, systemID int, e *gamelist.Entry) error {
	game, err := o.lookup(ctx, dir, systemID, e)
	switch {
	case errors.Is(err, ErrQuotaExceeded):
		return err
	case errors.Is(err, screenscraper.ErrNotFound):
		e.State = gamelist.StateNoData
		log.Info().Str("entry", e.String()).Msg("no remote match")
		return nil
	case errors.Is(err, errAmbiguous):
		e.State = gamelist.StateAmbiguous
		log.Info().Str("entry", e.String()).Msg("multiple remote matches")
		return nil
	case err != nil:
		e.State = gamelist.StateError
		return err
	}

	o.applyMetadata(e, game)

	if err := o.scrapeMedia(ctx, dir, e, game); err != nil {
		if errors.Is(err, ErrQuotaExceeded) {
			return err
		}
		e.State = gamelist.StateError
		return err
	}

	e.State = gamelist.StateScraped
	return nil
}

// errAmbiguous is the internal signal that a name search matched several
// games with no clear winner.
var errAmbiguous = errors.New("scraper: ambiguous search result")

// lookup finds the remote record for an entry: checksum match first, then
// a name search constrained to a single unambiguous hit.
func (o *Orchestrator) lookup(ctx context.Context, dir string, systemID int,
	e *gamelist.Entry,
) (*screenscraper.Game, error) {
	if romPath, ok := gamelist.ResolvePath(o.fsys, dir, e.Path); ok {
		h, err := hasher.ComputeFileHashes(o.fsys, romPath)
		if err != nil {
			log.Warn().Err(err).Str("path", romPath).Msg("hashing failed, falling back to name search")
		} else {
			if err := o.throttle(ctx); err != nil {
				return nil, err
			}
			game, err := o.client.GameByHash(ctx, systemID, e.FileName(), h)
			if err == nil {
				return game, nil
			}
			if !errors.Is(err, screenscraper.ErrNotFound) {
				return nil, err
			}
		}
	}

	if e.Name == "" {
		return nil, screenscraper.ErrNotFound
	}
	if err := o.throttle(ctx); err != nil {
		return nil, err
	}
	games, err := o.client.SearchGames(ctx, systemID, e.Name)
	if err != nil {
		return nil, err
	}
	switch len(games) {
	case 0:
		return nil, screenscraper.ErrNotFound
	case 1:
		return &games[0], nil
	}

	// Several hits: accept only a single exact name match.
	var exact *screenscraper.Game
	for i := range games {
		if hasExactName(&games[i], e.Name) {
			if exact != nil {
				return nil, errAmbiguous
			}
			exact = &games[i]
		}
	}
	if exact == nil {
		return nil, errAmbiguous
	}
	return exact, nil
}

func hasExactName(g *screenscraper.Game, name string) bool {
	for _, n := range g.Names {
		if strings.EqualFold(n.Text, name) {
			return true
		}
	}
	return false
}

// applyMetadata fills the entry's fields from the remote record using the
// configured region and language preferences.
func (o *Orchestrator) applyMetadata(e *gamelist.Entry, game *screenscraper.Game) {
	region := o.cfg.Region()
	language := o.cfg.Language()

	e.ID = int(game.ID)
	e.Source = sourceName
	if name := game.PreferredName(region); name != "" {
		e.Name = name
	}
	e.Description = game.PreferredDescription(language)
	e.Genre = game.PreferredGenre(language)
	e.Players = game.Players.Text
	e.Developer = game.Developer.Text
	e.Publisher = game.Publisher.Text
	e.Rating = game.NormalizedRating()

	e.ReleaseDate = ""
	if raw := game.PreferredReleaseDate(region); raw != "" {
		if t, ok := parseRemoteDate(raw); ok {
			e.SetReleaseTime(t)
		} else {
			// Bare years and free-text dates are kept raw; the entry's
			// accessor understands bare years when reading.
			e.ReleaseDate = raw
		}
	}
}

// parseRemoteDate converts the service's date strings.
func parseRemoteDate(raw string) (time.Time, bool) {
	for _, layout := range []string{"2006-01-02", "2006-01"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// scrapeMedia fetches every enabled media asset the remote record offers,
// skipping unchanged local copies, and records the relative paths on the
// entry.
func (o *Orchestrator) scrapeMedia(ctx context.Context, dir string, e *gamelist.Entry,
	game *screenscraper.Game,
) error {
	region := o.cfg.Region()
	baseName := gamelist.BaseName(e.FileName())
	if baseName == "" {
		return nil
	}

	var jobs []MediaJob
	for _, t := range o.enabledMediaTypes() {
		remote, ok := RemoteMediaType(t)
		if !ok {
			continue
		}
		m := game.MediaByType(remote, region)
		if m == nil || m.URL == "" {
			continue
		}
		ext := t.KnownExtensions()[0]
		if m.Format != "" {
			ext = "." + strings.TrimPrefix(m.Format, ".")
		}
		fileName := baseName + ext
		jobs = append(jobs, MediaJob{
			Type:      t,
			URL:       m.URL,
			LocalPath: filepath.Join(dir, "media", string(t), fileName),
		})
	}
	if len(jobs) == 0 {
		return nil
	}

	outcomes := RunMediaJobs(ctx, jobs, o.maxThreads(), o.runMediaJob)

	for i := range outcomes {
		out := &outcomes[i]
		relPath := "./" + path.Join("media", string(out.Job.Type), filepath.Base(out.Job.LocalPath))
		switch {
		case errors.Is(out.Err, ErrQuotaExceeded):
			return ErrQuotaExceeded
		case errors.Is(out.Err, screenscraper.ErrNoMedia):
			continue
		case out.Err != nil:
			log.Warn().Err(out.Err).Str("type", string(out.Job.Type)).
				Str("entry", e.String()).Msg("media fetch failed")
			continue
		case out.Unchanged:
			e.SetMediaPath(out.Job.Type, relPath)
		default:
			if err := o.writeMediaFile(out.Job.LocalPath, out.Payload); err != nil {
				log.Warn().Err(err).Str("path", out.Job.LocalPath).Msg("media write failed")
				continue
			}
			e.SetMediaPath(out.Job.Type, relPath)
		}
	}
	return nil
}

// runMediaJob performs one throttled media fetch, sending the local
// candidate's checksums so the server can answer "unchanged".
func (o *Orchestrator) runMediaJob(ctx context.Context, job MediaJob) ([]byte, bool, error) {
	var existing *hasher.FileHash
	if ok, _ := afero.Exists(o.fsys, job.LocalPath); ok {
		if h, err := hasher.ComputeFileHashes(o.fsys, job.LocalPath); err == nil {
			existing = h
		}
	}

	if err := o.throttle(ctx); err != nil {
		return nil, false, err
	}
	payload, err := o.client.FetchMedia(ctx, job.URL, existing)
	if err != nil {
		return nil, false, err
	}
	return payload.Data, payload.Unchanged, nil
}

func (o *Orchestrator) writeMediaFile(localPath string, data []byte) error {
	if err := o.fsys.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return fmt.Errorf("failed to create media directory: %w", err)
	}
	if err := afero.WriteFile(o.fsys, localPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write media file: %w", err)
	}
	return nil
}

func (o *Orchestrator) enabledMediaTypes() []gamelist.MediaType {
	enabled := o.cfg.EnabledMediaTypes()
	if len(enabled) == 0 {
		return gamelist.AllMediaTypes
	}
	var types []gamelist.MediaType
	for _, name := range enabled {
		for _, t := range gamelist.AllMediaTypes {
			if strings.EqualFold(name, string(t)) {
				types = append(types, t)
				break
			}
		}
	}
	return types
}
