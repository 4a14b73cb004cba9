// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package sync implements the client-side reconciliation loop between the
// local record store and a remote relay: a status exchange followed by a
// per-stream pull phase and a per-stream push phase, each transferring
// contiguous, ascending-idx batches.
//
// Transfer is idempotent end to end — both sinks deduplicate by record id —
// so any batch may be retried after a transport failure without producing
// duplicates, and an interrupted run leaves every stream a dense prefix
// that the next run extends.
package sync

import (
	"context"

	"github.com/hostlog/hostlog/models"
)

// LocalStore is the subset of the local record repository the engine
// needs: heads, range reads for push, and idempotent inserts for pull.
type LocalStore interface {
	// Status returns the local head idx for every known (host, tag) stream.
	Status(ctx context.Context) (models.RecordStatus, error)

	// Next returns up to limit records for (host, tag) with Idx >= start,
	// ascending, contiguous.
	Next(ctx context.Context, host models.HostId, tag models.Tag, start uint64, limit int) ([]models.Record, error)

	// InsertRemote idempotently stores a pulled record. inserted=false
	// means the id was already present.
	InsertRemote(ctx context.Context, r models.Record) (inserted bool, err error)
}

// Remote is the relay-side store the engine reconciles against, usually an
// HTTP adapter but an in-process repository in tests.
type Remote interface {
	// Status returns the remote head idx for every (host, tag) stream the
	// relay holds for this user.
	Status(ctx context.Context) (models.RecordStatus, error)

	// NextRecords returns up to count records for (host, tag) with
	// Idx >= start, ascending, contiguous.
	NextRecords(ctx context.Context, host models.HostId, tag models.Tag, start uint64, count int) ([]models.Record, error)

	// AddRecords atomically and idempotently uploads a batch.
	AddRecords(ctx context.Context, records []models.Record) error
}
