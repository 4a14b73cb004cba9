// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/hostlog/hostlog/internal/logger"
	"github.com/hostlog/hostlog/models"
	"github.com/mattn/go-sqlite3"
)

// localRecordRepository is the SQLite-backed implementation of
// [LocalRecordRepository]. It owns the device's append-only log and the
// local copies of every stream pulled from other hosts.
//
// Appends to the same tag are serialized by a per-tag mutex so that the
// head read-modify-write cannot race; the unique (host, tag, idx) index is
// the transactional backstop. Appends to different tags proceed in
// parallel.
type localRecordRepository struct {
	*DB
	host   models.HostId
	logger *logger.Logger

	mu       sync.Mutex
	tagLocks map[models.Tag]*sync.Mutex
}

// NewLocalRecordRepository constructs a [LocalRecordRepository] backed by
// the provided SQLite connection, authoring records as host.
func NewLocalRecordRepository(db *DB, host models.HostId, logger *logger.Logger) LocalRecordRepository {
	logger.Debug().Str("host", host.String()).Msg("creating local record repository")
	return &localRecordRepository{
		DB:       db,
		host:     host,
		logger:   logger,
		tagLocks: make(map[models.Tag]*sync.Mutex),
	}
}

// lockTag returns the mutex guarding appends for one tag, creating it on
// first use.
func (l *localRecordRepository) lockTag(tag models.Tag) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.tagLocks[tag]
	if !ok {
		lock = &sync.Mutex{}
		l.tagLocks[tag] = lock
	}
	return lock
}

// Append implements [LocalRecordRepository]. The head lookup, the insert at
// head+1, and the head-cache upsert run in one transaction, under the
// per-tag mutex.
func (l *localRecordRepository) Append(ctx context.Context, tag models.Tag, version string, data models.EncryptedData) (models.Record, error) {
	log := logger.FromContext(ctx)

	lock := l.lockTag(tag)
	lock.Lock()
	defer lock.Unlock()

	tx, err := l.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).
			Str("func", "localRecordRepository.Append").
			Str("tag", string(tag)).
			Msg("failed to begin transaction")
		return models.Record{}, fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	var idx uint64
	var head uint64
	headErr := tx.QueryRowContext(ctx, localHead, l.host.String(), string(tag)).Scan(&head)
	switch {
	case headErr == nil:
		idx = head + 1
	case errors.Is(headErr, sql.ErrNoRows):
		idx = 0
	default:
		log.Err(headErr).
			Str("func", "localRecordRepository.Append").
			Str("tag", string(tag)).
			Msg("failed to read stream head")
		return models.Record{}, fmt.Errorf("%w: %w", ErrExecutingQuery, headErr)
	}

	rec := models.Record{
		Id:        models.NewRecordId(),
		Host:      l.host,
		Tag:       tag,
		Idx:       idx,
		Timestamp: models.NewRecordTimestamp(),
		Version:   version,
		Data:      data,
	}

	if _, err = tx.ExecContext(ctx, localInsertRecord,
		rec.Id.String(),
		rec.Host.String(),
		string(rec.Tag),
		rec.Idx,
		rec.Timestamp,
		rec.Version,
		rec.Data.Ciphertext,
		rec.Data.WrappedCEK,
	); err != nil {
		log.Err(err).
			Str("func", "localRecordRepository.Append").
			Str("tag", string(tag)).
			Uint64("idx", idx).
			Msg("failed to insert appended record")
		return models.Record{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if _, err = tx.ExecContext(ctx, localUpsertHead, rec.Host.String(), string(rec.Tag), rec.Idx); err != nil {
		log.Err(err).
			Str("func", "localRecordRepository.Append").
			Str("tag", string(tag)).
			Msg("failed to upsert stream head")
		return models.Record{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if commitErr := tx.Commit(); commitErr != nil {
		log.Err(commitErr).
			Str("func", "localRecordRepository.Append").
			Str("tag", string(tag)).
			Msg("failed to commit transaction")
		return models.Record{}, fmt.Errorf("%w: %w", ErrCommitingTransaction, commitErr)
	}

	log.Debug().
		Str("func", "localRecordRepository.Append").
		Str("tag", string(tag)).
		Uint64("idx", rec.Idx).
		Str("client_id", rec.Id.String()).
		Msg("record appended")

	return rec, nil
}

// InsertRemote implements [LocalRecordRepository].
func (l *localRecordRepository) InsertRemote(ctx context.Context, r models.Record) (bool, error) {
	log := logger.FromContext(ctx)

	tx, err := l.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).
			Str("func", "localRecordRepository.InsertRemote").
			Str("client_id", r.Id.String()).
			Msg("failed to begin transaction")
		return false, fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	var one int
	existsErr := tx.QueryRowContext(ctx, localRecordExists, r.Id.String()).Scan(&one)
	switch {
	case existsErr == nil:
		// Same id already present: idempotent no-op.
		return false, nil
	case !errors.Is(existsErr, sql.ErrNoRows):
		log.Err(existsErr).
			Str("func", "localRecordRepository.InsertRemote").
			Str("client_id", r.Id.String()).
			Msg("failed to check for existing record")
		return false, fmt.Errorf("%w: %w", ErrExecutingQuery, existsErr)
	}

	if _, err = tx.ExecContext(ctx, localInsertRecord,
		r.Id.String(),
		r.Host.String(),
		string(r.Tag),
		r.Idx,
		r.Timestamp,
		r.Version,
		r.Data.Ciphertext,
		r.Data.WrappedCEK,
	); err != nil {
		if isSQLiteUniqueViolation(err) {
			log.Error().
				Str("func", "localRecordRepository.InsertRemote").
				Str("host", r.Host.String()).
				Str("tag", string(r.Tag)).
				Uint64("idx", r.Idx).
				Str("client_id", r.Id.String()).
				Msg("different record already occupies (host, tag, idx) slot")
			return false, ErrIndexConflict
		}

		log.Err(err).
			Str("func", "localRecordRepository.InsertRemote").
			Str("client_id", r.Id.String()).
			Msg("failed to insert remote record")
		return false, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if _, err = tx.ExecContext(ctx, localUpsertHead, r.Host.String(), string(r.Tag), r.Idx); err != nil {
		log.Err(err).
			Str("func", "localRecordRepository.InsertRemote").
			Str("client_id", r.Id.String()).
			Msg("failed to upsert stream head")
		return false, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if commitErr := tx.Commit(); commitErr != nil {
		log.Err(commitErr).
			Str("func", "localRecordRepository.InsertRemote").
			Str("client_id", r.Id.String()).
			Msg("failed to commit transaction")
		return false, fmt.Errorf("%w: %w", ErrCommitingTransaction, commitErr)
	}

	return true, nil
}

// Next implements [LocalRecordRepository].
func (l *localRecordRepository) Next(ctx context.Context, host models.HostId, tag models.Tag, start uint64, limit int) ([]models.Record, error) {
	log := logger.FromContext(ctx)

	rows, err := l.DB.QueryContext(ctx, localNextRecords, host.String(), string(tag), start, limit)
	if err != nil {
		log.Err(err).
			Str("func", "localRecordRepository.Next").
			Str("host", host.String()).
			Str("tag", string(tag)).
			Uint64("start", start).
			Msg("failed to execute next query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	records := make([]models.Record, 0, limit)

	for rows.Next() {
		rec, scanErr := scanRecord(rows.Scan)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "localRecordRepository.Next").
				Msg("failed to scan record row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}
		records = append(records, rec)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "localRecordRepository.Next").
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return records, nil
}

// Status implements [LocalRecordRepository].
func (l *localRecordRepository) Status(ctx context.Context) (models.RecordStatus, error) {
	log := logger.FromContext(ctx)

	rows, err := l.DB.QueryContext(ctx, localStatus)
	if err != nil {
		log.Err(err).
			Str("func", "localRecordRepository.Status").
			Msg("failed to execute status query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	status := make(models.RecordStatus)

	for rows.Next() {
		var hostRaw, tagRaw string
		var idx uint64

		if scanErr := rows.Scan(&hostRaw, &tagRaw, &idx); scanErr != nil {
			log.Err(scanErr).
				Str("func", "localRecordRepository.Status").
				Msg("failed to scan status row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}

		host, parseErr := models.ParseHostId(hostRaw)
		if parseErr != nil {
			log.Err(parseErr).
				Str("func", "localRecordRepository.Status").
				Str("host", hostRaw).
				Msg("malformed host id in status row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, parseErr)
		}

		status[models.Key{Host: host, Tag: models.Tag(tagRaw)}] = idx
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "localRecordRepository.Status").
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return status, nil
}

// Tail implements [LocalRecordRepository]. Only records authored by this
// device are considered.
func (l *localRecordRepository) Tail(ctx context.Context, tag models.Tag) (*models.Record, error) {
	log := logger.FromContext(ctx)

	row := l.DB.QueryRowContext(ctx, localTailRecord, l.host.String(), string(tag))

	rec, err := scanRecord(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		log.Err(err).
			Str("func", "localRecordRepository.Tail").
			Str("tag", string(tag)).
			Msg("failed to scan tail record")
		return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return &rec, nil
}

// Wipe implements [LocalRecordRepository]. The device identity row is left
// intact; only records and stream heads are dropped.
func (l *localRecordRepository) Wipe(ctx context.Context) error {
	log := logger.FromContext(ctx)

	tx, err := l.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).
			Str("func", "localRecordRepository.Wipe").
			Msg("failed to begin transaction")
		return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, localWipeHeads); err != nil {
		log.Err(err).
			Str("func", "localRecordRepository.Wipe").
			Msg("failed to delete stream heads")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if _, err = tx.ExecContext(ctx, localWipeRecords); err != nil {
		log.Err(err).
			Str("func", "localRecordRepository.Wipe").
			Msg("failed to delete records")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if commitErr := tx.Commit(); commitErr != nil {
		log.Err(commitErr).
			Str("func", "localRecordRepository.Wipe").
			Msg("failed to commit transaction")
		return fmt.Errorf("%w: %w", ErrCommitingTransaction, commitErr)
	}

	log.Info().
		Str("func", "localRecordRepository.Wipe").
		Msg("wiped local record store")

	return nil
}

// isSQLiteUniqueViolation reports whether err is a unique-constraint
// violation raised by the sqlite3 driver on the (host, tag, idx) index.
// The client_id uniqueness path never reaches here: InsertRemote checks for
// an existing id before inserting.
func isSQLiteUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
		strings.Contains(err.Error(), "UNIQUE constraint failed")
}
