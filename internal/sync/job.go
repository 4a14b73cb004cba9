// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package sync

import (
	"context"
	stdsync "sync"
	"time"

	"github.com/hostlog/hostlog/internal/logger"
)

// Job wraps an [Engine] in a ticker-driven background loop. The job is idle
// until Start is called; each tick runs one full sync pass. Records
// appended locally between ticks are picked up by the next run.
type Job struct {
	engine *Engine
	logger *logger.Logger

	mu     stdsync.Mutex
	cancel context.CancelFunc
	wg     stdsync.WaitGroup
}

// NewJob creates a Job that calls engine.Sync on a ticker.
func NewJob(engine *Engine, logger *logger.Logger) *Job {
	return &Job{engine: engine, logger: logger}
}

// Start stops any previously running job, then launches a background
// goroutine that runs one sync pass every interval. If interval is zero or
// negative it defaults to 5 minutes. The goroutine exits when ctx is
// cancelled or Stop is called.
func (j *Job) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	go func() {
		defer j.wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				summary, err := j.engine.Sync(jobCtx)
				if err != nil {
					j.logger.Err(err).Str("func", "Job").Msg("background sync run failed")
					continue
				}
				if failErr := summary.Err(); failErr != nil {
					j.logger.Err(failErr).
						Str("func", "Job").
						Int("failed_streams", len(summary.Failed)).
						Msg("background sync finished with failed streams")
				}
			}
		}
	}()
}

// Stop cancels the background goroutine's context and blocks until the
// goroutine has fully exited. Safe to call when the job is not running
// (no-op in that case).
func (j *Job) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}
