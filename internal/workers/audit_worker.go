// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"time"

	"github.com/hostlog/hostlog/internal/logger"
	"github.com/hostlog/hostlog/internal/store"
)

// defaultAuditInterval is how often the index-cache audit walks the tenant
// set when no interval is configured.
const defaultAuditInterval = 10 * time.Minute

// AuditWorker periodically compares the index cache against a full scan of
// the record table for every known user, logging and counting divergences.
// It never repairs the cache: a mismatch is a signal for the operator to
// investigate and, if warranted, run Rebuild.
type AuditWorker struct {
	cache    store.IndexCache
	interval time.Duration
	logger   *logger.Logger
}

// NewAuditWorker constructs an [AuditWorker]. A non-positive interval falls
// back to [defaultAuditInterval].
func NewAuditWorker(cache store.IndexCache, interval time.Duration, logger *logger.Logger) *AuditWorker {
	if interval <= 0 {
		interval = defaultAuditInterval
	}
	return &AuditWorker{
		cache:    cache,
		interval: interval,
		logger:   logger,
	}
}

// Run implements [Worker]. It spawns the audit loop and returns
// immediately; the loop runs for the lifetime of the process.
func (w *AuditWorker) Run() {
	go func() {
		t := time.NewTicker(w.interval)
		defer t.Stop()

		for range t.C {
			w.auditAll(context.Background())
		}
	}()
}

// auditAll runs one audit pass over every user present in the cache.
func (w *AuditWorker) auditAll(ctx context.Context) {
	users, err := w.cache.Users(ctx)
	if err != nil {
		w.logger.Err(err).Str("func", "AuditWorker.auditAll").Msg("failed to list users for audit")
		return
	}

	for _, userID := range users {
		mismatches, auditErr := w.cache.AuditStatus(ctx, userID)
		if auditErr != nil {
			w.logger.Err(auditErr).
				Str("func", "AuditWorker.auditAll").
				Int64("user_id", userID).
				Msg("index-cache audit failed for user")
			continue
		}
		if len(mismatches) > 0 {
			w.logger.Error().
				Str("func", "AuditWorker.auditAll").
				Int64("user_id", userID).
				Int("mismatched_streams", len(mismatches)).
				Msg("index cache diverges from record table")
		}
	}
}
