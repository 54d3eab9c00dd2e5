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
	"sync"

	"github.com/RetroDexProject/retrodex-core/pkg/gamelist"
	"golang.org/x/sync/semaphore"
)

// MediaJob is one asset to fetch for a catalog entry.
type MediaJob struct {
	Type      gamelist.MediaType
	URL       string
	LocalPath string
}

// MediaOutcome is the result of one job: fresh bytes, an up-to-date
// confirmation, or a failure.
type MediaOutcome struct {
	Err       error
	Payload   []byte
	Job       MediaJob
	Unchanged bool
}

// RunMediaJobs executes one entry's media jobs with bounded concurrency.
// Cancellation is checked before each dispatch and inside run via ctx;
// already-dispatched jobs finish naturally. The call returns only after
// every dispatched job has completed, so batches never pipeline across
// entries.
func RunMediaJobs(ctx context.Context, jobs []MediaJob, maxThreads int,
	run func(context.Context, MediaJob) ([]byte, bool, error),
) []MediaOutcome {
	if maxThreads < 1 {
		maxThreads = 1
	}

	sem := semaphore.NewWeighted(int64(maxThreads))
	outcomes := make([]MediaOutcome, len(jobs))
	var wg sync.WaitGroup

	for i, job := range jobs {
		outcomes[i].Job = job
		if err := sem.Acquire(ctx, 1); err != nil {
			outcomes[i].Err = err
			continue
		}
		wg.Add(1)
		go func(i int, job MediaJob) {
			defer wg.Done()
			defer sem.Release(1)
			if err := ctx.Err(); err != nil {
				outcomes[i].Err = err
				return
			}
			payload, unchanged, err := run(ctx, job)
			outcomes[i].Payload = payload
			outcomes[i].Unchanged = unchanged
			outcomes[i].Err = err
		}(i, job)
	}

	wg.Wait()
	return outcomes
}
