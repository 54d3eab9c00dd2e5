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
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeClockAt(t *testing.T, value string) *clockwork.FakeClock {
	t.Helper()
	at, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return clockwork.NewFakeClockAt(at)
}

func TestQuotaStore_LoadMissingFile(t *testing.T) {
	t.Parallel()

	store := NewQuotaStore(afero.NewMemMapFs(), "/data/quota.json",
		fakeClockAt(t, "2026-09-01T10:00:00Z"))
	require.NoError(t, store.Load())
	assert.Zero(t, store.State().LastReportedRequestsToday)
	assert.NoError(t, store.CheckBudget())
}

func TestQuotaStore_DayRolloverResetsCounter(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	state := QuotaState{
		LastUsageDate:             "2026-08-31",
		LastReportedRequestsToday: 42,
		MaxRequestsPerDay:         100,
	}
	data, err := json.Marshal(&state)
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fsys, "/data/quota.json", data, 0o644))

	store := NewQuotaStore(fsys, "/data/quota.json", fakeClockAt(t, "2026-09-01T00:05:00Z"))
	require.NoError(t, store.Load())

	got := store.State()
	assert.Zero(t, got.LastReportedRequestsToday, "counter resets on day rollover")
	assert.Equal(t, 100, got.MaxRequestsPerDay, "daily maximum survives the rollover")
}

func TestQuotaStore_SameDayKeepsCounter(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	data, err := json.Marshal(&QuotaState{
		LastUsageDate:             "2026-09-01",
		LastReportedRequestsToday: 42,
		MaxRequestsPerDay:         100,
	})
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fsys, "/data/quota.json", data, 0o644))

	store := NewQuotaStore(fsys, "/data/quota.json", fakeClockAt(t, "2026-09-01T18:00:00Z"))
	require.NoError(t, store.Load())
	assert.Equal(t, 42, store.State().LastReportedRequestsToday)
}

func TestQuotaStore_CheckBudget(t *testing.T) {
	t.Parallel()

	store := NewQuotaStore(afero.NewMemMapFs(), "/data/quota.json",
		fakeClockAt(t, "2026-09-01T10:00:00Z"))
	require.NoError(t, store.Load())

	require.NoError(t, store.RecordUsage(99, 100))
	assert.NoError(t, store.CheckBudget())

	require.NoError(t, store.RecordUsage(100, 100))
	assert.ErrorIs(t, store.CheckBudget(), ErrQuotaExceeded)

	// Without a known maximum the budget never trips.
	require.NoError(t, store.RecordUsage(5000, 0))
	store2 := NewQuotaStore(afero.NewMemMapFs(), "/q.json", fakeClockAt(t, "2026-09-01T10:00:00Z"))
	require.NoError(t, store2.Load())
	require.NoError(t, store2.Increment())
	assert.NoError(t, store2.CheckBudget())
}

func TestQuotaStore_PersistsAcrossInstances(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	clock := fakeClockAt(t, "2026-09-01T10:00:00Z")

	store := NewQuotaStore(fsys, "/data/quota.json", clock)
	require.NoError(t, store.Load())
	require.NoError(t, store.RecordUsage(7, 200))
	require.NoError(t, store.Increment())

	again := NewQuotaStore(fsys, "/data/quota.json", clock)
	require.NoError(t, again.Load())
	got := again.State()
	assert.Equal(t, 8, got.LastReportedRequestsToday)
	assert.Equal(t, 200, got.MaxRequestsPerDay)
	assert.Equal(t, "2026-09-01", got.LastUsageDate)
}

func TestQuotaStore_MalformedFileResets(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/data/quota.json", []byte("{broken"), 0o644))

	store := NewQuotaStore(fsys, "/data/quota.json", fakeClockAt(t, "2026-09-01T10:00:00Z"))
	require.NoError(t, store.Load())
	assert.Zero(t, store.State().LastReportedRequestsToday)
}
