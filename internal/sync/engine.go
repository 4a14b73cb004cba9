// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package sync

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/hostlog/hostlog/internal/logger"
	"github.com/hostlog/hostlog/internal/store"
	"github.com/hostlog/hostlog/models"
)

// DefaultPageSize is the number of records fetched or pushed per batch when
// the configuration does not override it. Large enough to amortize
// round-trips, small enough that one batch fits in a single server
// transaction.
const DefaultPageSize = 1000

// Transfer directions recorded in StreamError.Op.
const (
	OpPull = "pull"
	OpPush = "push"
)

// StreamError records the failure of a single (host, tag) stream during a
// sync run. Other streams are unaffected.
type StreamError struct {
	// Key identifies the failed stream.
	Key models.Key
	// Op is the direction that failed, OpPull or OpPush.
	Op string
	// Err is the underlying cause.
	Err error
}

func (e StreamError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Key, e.Err)
}

func (e StreamError) Unwrap() error {
	return e.Err
}

// Summary is the structured result of one sync run: which streams
// reconciled, which failed and why, and how many records moved in each
// direction. A run with failures still reports the streams that succeeded.
type Summary struct {
	// Pulled is the number of records inserted locally during the pull
	// phase, duplicates excluded.
	Pulled int
	// Pushed is the number of records uploaded during the push phase.
	Pushed int
	// OK lists the streams that transferred completely.
	OK []models.Key
	// Failed lists the streams that aborted, with their causes.
	Failed []StreamError
}

// Err flattens the per-stream failures into a single error, or nil when
// every stream reconciled. Callers that only care whether a retry is needed
// can use this instead of walking Failed.
func (s Summary) Err() error {
	if len(s.Failed) == 0 {
		return nil
	}
	errs := make([]error, 0, len(s.Failed))
	for _, f := range s.Failed {
		errs = append(errs, f)
	}
	return errors.Join(errs...)
}

// Engine reconciles a local record store with a remote one so that
// eventually every record present in either is present in both.
//
// A single Sync call performs three phases in order: status exchange, pull,
// push. Within one (host, tag) stream transfer is strictly ascending by
// idx, so an interrupted run leaves a dense prefix and retrying is always
// safe; across streams order is unspecified. The engine performs no
// internal retries: transient failures are reported in the summary and the
// caller decides, relying on end-to-end idempotency.
type Engine struct {
	local  LocalStore
	remote Remote
	page   int
	logger *logger.Logger
}

// NewEngine constructs an Engine transferring pageSize records per batch.
// A non-positive pageSize falls back to [DefaultPageSize].
func NewEngine(local LocalStore, remote Remote, pageSize int, logger *logger.Logger) *Engine {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Engine{
		local:  local,
		remote: remote,
		page:   pageSize,
		logger: logger,
	}
}

// Sync runs one full reconciliation pass.
//
// A failed stream aborts only that stream; the engine continues with the
// next key and aggregates failures into the summary. Only a failed status
// exchange aborts the whole run, because without both snapshots there is
// no diff to drive. ctx cancellation is honoured between batches.
func (e *Engine) Sync(ctx context.Context) (Summary, error) {
	log := logger.FromContext(ctx)

	local, err := e.local.Status(ctx)
	if err != nil {
		log.Err(err).Str("func", "Engine.Sync").Msg("failed to obtain local status")
		return Summary{}, fmt.Errorf("%w: local: %w", ErrStatusExchange, err)
	}

	remote, err := e.remote.Status(ctx)
	if err != nil {
		log.Err(err).Str("func", "Engine.Sync").Msg("failed to obtain remote status")
		return Summary{}, fmt.Errorf("%w: remote: %w", ErrStatusExchange, err)
	}

	needPull, needPush := diffStatus(local, remote)

	log.Debug().
		Str("func", "Engine.Sync").
		Int("local_streams", len(local)).
		Int("remote_streams", len(remote)).
		Int("need_pull", len(needPull)).
		Int("need_push", len(needPush)).
		Msg("status exchange complete")

	var summary Summary

	for _, k := range needPull {
		n, pullErr := e.pullStream(ctx, k, local, remote[k])
		summary.Pulled += n
		if pullErr != nil {
			log.Err(pullErr).
				Str("func", "Engine.Sync").
				Str("stream", k.String()).
				Msg("pull aborted for stream")
			summary.Failed = append(summary.Failed, StreamError{Key: k, Op: OpPull, Err: pullErr})
			continue
		}
		summary.OK = append(summary.OK, k)
	}

	for _, k := range needPush {
		n, pushErr := e.pushStream(ctx, k, remote, local[k])
		summary.Pushed += n
		if pushErr != nil {
			log.Err(pushErr).
				Str("func", "Engine.Sync").
				Str("stream", k.String()).
				Msg("push aborted for stream")
			summary.Failed = append(summary.Failed, StreamError{Key: k, Op: OpPush, Err: pushErr})
			continue
		}
		summary.OK = append(summary.OK, k)
	}

	log.Info().
		Str("func", "Engine.Sync").
		Int("pulled", summary.Pulled).
		Int("pushed", summary.Pushed).
		Int("ok_streams", len(summary.OK)).
		Int("failed_streams", len(summary.Failed)).
		Msg("sync run finished")

	return summary, nil
}

// pullStream transfers the missing suffix of one stream from the remote
// store into the local one, batch by batch, and returns the number of
// records actually inserted.
func (e *Engine) pullStream(ctx context.Context, k models.Key, local models.RecordStatus, target uint64) (int, error) {
	start := uint64(0)
	if head, ok := local.Head(k); ok {
		start = head + 1
	}

	inserted := 0

	for start <= target {
		if err := ctx.Err(); err != nil {
			return inserted, err
		}

		batch, err := e.remote.NextRecords(ctx, k.Host, k.Tag, start, e.page)
		if err != nil {
			return inserted, fmt.Errorf("fetch batch at %d: %w", start, err)
		}
		if len(batch) == 0 {
			// The remote advertised a head it can no longer serve (e.g. a
			// wipe raced the sync). Nothing more to do for this stream.
			return inserted, nil
		}

		if err = checkContiguous(k, batch, start); err != nil {
			return inserted, err
		}

		for _, rec := range batch {
			ok, insErr := e.local.InsertRemote(ctx, rec)
			if insErr != nil {
				// store.ErrIndexConflict lands here: fatal for the stream,
				// surfaced unchanged.
				return inserted, fmt.Errorf("insert idx %d: %w", rec.Idx, insErr)
			}
			if ok {
				inserted++
			}
		}

		start += uint64(len(batch))
	}

	return inserted, nil
}

// pushStream transfers the suffix of one stream the remote lacks, batch by
// batch, and returns the number of records uploaded.
func (e *Engine) pushStream(ctx context.Context, k models.Key, remote models.RecordStatus, target uint64) (int, error) {
	start := uint64(0)
	if head, ok := remote.Head(k); ok {
		start = head + 1
	}

	pushed := 0

	for start <= target {
		if err := ctx.Err(); err != nil {
			return pushed, err
		}

		batch, err := e.local.Next(ctx, k.Host, k.Tag, start, e.page)
		if err != nil {
			return pushed, fmt.Errorf("read batch at %d: %w", start, err)
		}
		if len(batch) == 0 {
			return pushed, nil
		}

		if err = checkContiguous(k, batch, start); err != nil {
			return pushed, err
		}

		if err = e.remote.AddRecords(ctx, batch); err != nil {
			return pushed, fmt.Errorf("upload batch at %d: %w", start, err)
		}

		pushed += len(batch)
		start += uint64(len(batch))
	}

	return pushed, nil
}

// diffStatus computes the pull and push key sets of the status exchange.
// Keys present on both sides with equal heads are in sync and ignored.
// Results are sorted for deterministic transfer order; the protocol itself
// does not care.
func diffStatus(local, remote models.RecordStatus) (needPull, needPush []models.Key) {
	for k, remoteHead := range remote {
		localHead, ok := local.Head(k)
		if !ok || remoteHead > localHead {
			needPull = append(needPull, k)
		}
	}

	for k, localHead := range local {
		remoteHead, ok := remote.Head(k)
		if !ok || localHead > remoteHead {
			needPush = append(needPush, k)
		}
	}

	sortKeys(needPull)
	sortKeys(needPush)
	return needPull, needPush
}

func sortKeys(keys []models.Key) {
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
}

// checkContiguous verifies that batch is a dense ascending run of the
// stream k starting exactly at start. Anything else means the source
// violated the transfer contract and the stream must not proceed: applying
// a gapped batch would break the density invariant on the sink.
func checkContiguous(k models.Key, batch []models.Record, start uint64) error {
	for i, rec := range batch {
		if rec.Host != k.Host || rec.Tag != k.Tag {
			return fmt.Errorf("%w: record %s/%s in batch for %s", ErrProtocolFailure, rec.Host, rec.Tag, k)
		}
		if want := start + uint64(i); rec.Idx != want {
			return fmt.Errorf("%w: got idx %d at position %d, want %d", ErrProtocolFailure, rec.Idx, i, want)
		}
	}
	return nil
}

// IsFatal reports whether a stream failure is a data-integrity error
// (index conflict or protocol failure) rather than a transient one. Fatal
// failures will not resolve on retry and need operator attention.
func IsFatal(err error) bool {
	return errors.Is(err, store.ErrIndexConflict) || errors.Is(err, ErrProtocolFailure)
}
