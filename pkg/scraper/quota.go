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
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const quotaDateFormat = "2006-01-02"

// QuotaState is the persisted daily request accounting, written after
// every response that carries fresh quota numbers so a restart resumes
// where the last run stopped.
type QuotaState struct {
	LastUsageDate             string `json:"lastUsageDate"`
	LastReportedRequestsToday int    `json:"lastReportedRequestsToday"`
	MaxRequestsPerDay         int    `json:"maxRequestsPerDay"`
}

// QuotaStore persists QuotaState to a JSON file and applies the
// day-rollover reset on load.
type QuotaStore struct {
	fsys  afero.Fs
	clock clockwork.Clock
	path  string
	state QuotaState
	mu    sync.Mutex
}

// NewQuotaStore creates a store backed by the given file path.
func NewQuotaStore(fsys afero.Fs, path string, clock clockwork.Clock) *QuotaStore {
	return &QuotaStore{fsys: fsys, path: path, clock: clock}
}

// Load reads the persisted state. A missing or malformed file yields a
// zero state. A stored date before today resets the daily counter.
func (s *QuotaStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = QuotaState{}
	data, err := afero.ReadFile(s.fsys, s.path)
	if err != nil {
		return nil //nolint:nilerr // first run, nothing persisted yet
	}
	if err := json.Unmarshal(data, &s.state); err != nil {
		log.Warn().Err(err).Str("path", s.path).Msg("quota state unreadable, resetting")
		s.state = QuotaState{}
		return nil
	}

	today := s.clock.Now().Format(quotaDateFormat)
	if s.state.LastUsageDate != "" && s.state.LastUsageDate < today {
		log.Info().Str("lastUsage", s.state.LastUsageDate).
			Msg("quota day rollover, daily counter reset")
		s.state.LastReportedRequestsToday = 0
	}
	return nil
}

// State returns a copy of the current accounting.
func (s *QuotaStore) State() QuotaState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CheckBudget fails fast with ErrQuotaExceeded once the daily counter has
// reached the server-reported maximum.
func (s *QuotaStore) CheckBudget() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.MaxRequestsPerDay > 0 &&
		s.state.LastReportedRequestsToday >= s.state.MaxRequestsPerDay {
		return ErrQuotaExceeded
	}
	return nil
}

// Increment counts one outgoing request against today's budget.
func (s *QuotaStore) Increment() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.LastReportedRequestsToday++
	s.state.LastUsageDate = s.clock.Now().Format(quotaDateFormat)
	return s.persistLocked()
}

// RecordUsage replaces the counters with fresh server-reported numbers
// and persists immediately.
func (s *QuotaStore) RecordUsage(requestsToday, maxPerDay int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.LastReportedRequestsToday = requestsToday
	if maxPerDay > 0 {
		s.state.MaxRequestsPerDay = maxPerDay
	}
	s.state.LastUsageDate = s.clock.Now().Format(quotaDateFormat)
	return s.persistLocked()
}

func (s *QuotaStore) persistLocked() error {
	data, err := json.MarshalIndent(&s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode quota state: %w", err)
	}
	if err := afero.WriteFile(s.fsys, s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write quota state: %w", err)
	}
	return nil
}
