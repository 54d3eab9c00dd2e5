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
	"sync"
	"sync/atomic"
	"testing"

	"github.com/RetroDexProject/retrodex-core/pkg/gamelist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

func mediaJobs(n int) []MediaJob {
	jobs := make([]MediaJob, n)
	for i := range jobs {
		jobs[i] = MediaJob{Type: gamelist.MediaBoxFront, URL: "http://m/asset.png"}
	}
	return jobs
}

func TestRunMediaJobs_AllComplete(t *testing.T) {
	t.Parallel()

	outcomes := RunMediaJobs(context.Background(), mediaJobs(5), 2,
		func(_ context.Context, _ MediaJob) ([]byte, bool, error) {
			return []byte("data"), false, nil
		})

	require.Len(t, outcomes, 5)
	for _, out := range outcomes {
		require.NoError(t, out.Err)
		assert.Equal(t, []byte("data"), out.Payload)
	}
}

func TestRunMediaJobs_ConcurrencyCap(t *testing.T) {
	t.Parallel()

	var current, peak atomic.Int32
	var mu sync.Mutex

	RunMediaJobs(context.Background(), mediaJobs(8), 2,
		func(_ context.Context, _ MediaJob) ([]byte, bool, error) {
			n := current.Add(1)
			mu.Lock()
			if n > peak.Load() {
				peak.Store(n)
			}
			mu.Unlock()
			defer current.Add(-1)
			return nil, true, nil
		})

	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestRunMediaJobs_ZeroThreadsMeansOne(t *testing.T) {
	t.Parallel()

	var current, peak atomic.Int32
	outcomes := RunMediaJobs(context.Background(), mediaJobs(4), 0,
		func(_ context.Context, _ MediaJob) ([]byte, bool, error) {
			n := current.Add(1)
			if n > peak.Load() {
				peak.Store(n)
			}
			defer current.Add(-1)
			return nil, true, nil
		})

	require.Len(t, outcomes, 4)
	assert.Equal(t, int32(1), peak.Load())
}

func TestRunMediaJobs_CancellationStopsDispatch(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	firstStarted := make(chan struct{})
	var once sync.Once
	release := make(chan struct{})

	done := make(chan []MediaOutcome, 1)
	go func() {
		done <- RunMediaJobs(ctx, mediaJobs(6), 1,
			func(_ context.Context, _ MediaJob) ([]byte, bool, error) {
				once.Do(func() { close(firstStarted) })
				<-release
				// In-flight work finishes naturally even after cancel.
				return []byte("done"), false, nil
			})
	}()

	// Wait for the first job to start, cancel, then let it finish.
	<-firstStarted
	cancel()
	close(release)

	outcomes := <-done
	require.Len(t, outcomes, 6)
	assert.NoError(t, outcomes[0].Err, "in-flight job completed")
	assert.Equal(t, []byte("done"), outcomes[0].Payload)

	var canceled int
	for _, out := range outcomes[1:] {
		if errors.Is(out.Err, context.Canceled) {
			canceled++
		}
	}
	assert.Positive(t, canceled, "jobs after cancellation are not dispatched")
}

func TestRunMediaJobs_Empty(t *testing.T) {
	t.Parallel()

	outcomes := RunMediaJobs(context.Background(), nil, 4,
		func(_ context.Context, _ MediaJob) ([]byte, bool, error) {
			t.Error("must not be called")
			return nil, false, nil
		})
	assert.Empty(t, outcomes)
}
