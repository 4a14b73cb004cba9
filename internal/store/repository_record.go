package store

import (
	"context"
	"fmt"

	"github.com/hostlog/hostlog/internal/logger"
	"github.com/hostlog/hostlog/models"
	"github.com/jackc/pgerrcode"
)

// recordRepository is the PostgreSQL-backed implementation of
// [RecordRepository]. It persists user-scoped, append-only records in the
// "store" table and keeps the "store_idx_cache" head cache current inside
// the same transaction as every insert.
//
// The repository never inspects record payloads: data and cek are opaque
// byte strings sealed on the client.
type recordRepository struct {
	*DB
	cache  IndexCache
	logger *logger.Logger
}

// NewRecordRepository constructs a [RecordRepository] backed by the provided
// database connection and logger. The index cache shares the same
// connection so its upserts can join the insert transaction.
func NewRecordRepository(db *DB, cache IndexCache, logger *logger.Logger) RecordRepository {
	logger.Debug().Msg("creating record repository")
	return &recordRepository{
		DB:     db,
		cache:  cache,
		logger: logger,
	}
}

// AddRecords implements [RecordRepository]. The whole batch commits
// atomically: every record is inserted with ON CONFLICT (user_id,
// client_id) DO NOTHING, so re-sent records are dropped silently, and the
// per-batch index cache upsert runs in the same transaction.
//
// A unique violation on (user_id, host, tag, idx) means a *different*
// record already occupies the slot; the batch is rolled back and
// [ErrIndexConflict] is returned. This condition is never recovered here.
func (r *recordRepository) AddRecords(ctx context.Context, userID int64, records []models.Record) error {
	log := logger.FromContext(ctx)

	if len(records) == 0 {
		log.Warn().
			Str("func", "recordRepository.AddRecords").
			Int64("user_id", userID).
			Msg("empty batch, nothing to insert")
		return nil
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.AddRecords").
			Int64("user_id", userID).
			Int("count", len(records)).
			Msg("failed to begin transaction")
		return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, addRecord)
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.AddRecords").
			Int64("user_id", userID).
			Msg("failed to prepare insert statement")
		return fmt.Errorf("%w: %w", ErrPreparingStatement, err)
	}
	defer stmt.Close()

	for i, rec := range records {
		_, execErr := stmt.ExecContext(ctx,
			rec.Id.String(),
			userID,
			rec.Host.String(),
			string(rec.Tag),
			rec.Idx,
			rec.Timestamp,
			rec.Version,
			rec.Data.Ciphertext,
			rec.Data.WrappedCEK,
		)
		if execErr != nil {
			if postgresError(execErr) == pgerrcode.UniqueViolation {
				log.Error().
					Str("func", "recordRepository.AddRecords").
					Int64("user_id", userID).
					Str("host", rec.Host.String()).
					Str("tag", string(rec.Tag)).
					Uint64("idx", rec.Idx).
					Str("client_id", rec.Id.String()).
					Msg("different record already occupies (host, tag, idx) slot")
				return fmt.Errorf("record %d of %d: %w", i+1, len(records), ErrIndexConflict)
			}

			log.Err(execErr).
				Str("func", "recordRepository.AddRecords").
				Int64("user_id", userID).
				Int("iteration", i+1).
				Str("client_id", rec.Id.String()).
				Msg("failed to execute insert statement")
			return fmt.Errorf("%w: %w", ErrExecutingStatement, execErr)
		}
	}

	// One cache upsert per (host, tag), not per record: the batch is folded
	// into its per-stream maxima first.
	heads := foldHeads(records)
	if err = r.cache.Upsert(ctx, tx, userID, heads); err != nil {
		log.Err(err).
			Str("func", "recordRepository.AddRecords").
			Int64("user_id", userID).
			Msg("failed to upsert index cache")
		return err
	}

	if commitErr := tx.Commit(); commitErr != nil {
		log.Err(commitErr).
			Str("func", "recordRepository.AddRecords").
			Int64("user_id", userID).
			Int("count", len(records)).
			Msg("failed to commit transaction")
		return fmt.Errorf("%w: %w", ErrCommitingTransaction, commitErr)
	}

	log.Debug().
		Str("func", "recordRepository.AddRecords").
		Int64("user_id", userID).
		Int("count", len(records)).
		Int("streams", len(heads)).
		Msg("record batch committed")

	return nil
}

// NextRecords implements [RecordRepository]. It returns up to limit records
// for (host, tag) owned by userID with Idx >= start, ascending by idx.
func (r *recordRepository) NextRecords(ctx context.Context, userID int64, host models.HostId, tag models.Tag, start uint64, limit int) ([]models.Record, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildNextRecordsQuery(ctx, userID, host, tag, start, limit)
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.NextRecords").
			Int64("user_id", userID).
			Msg("failed to build query")
		return nil, err
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.NextRecords").
			Int64("user_id", userID).
			Str("host", host.String()).
			Str("tag", string(tag)).
			Uint64("start", start).
			Msg("failed to execute next records query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	records := make([]models.Record, 0, limit)

	for rows.Next() {
		rec, scanErr := scanRecord(rows.Scan)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "recordRepository.NextRecords").
				Int64("user_id", userID).
				Msg("failed to scan record row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}
		records = append(records, rec)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "recordRepository.NextRecords").
			Int64("user_id", userID).
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return records, nil
}

// Status implements [RecordRepository]. It reads the head map from the
// index cache; O(streams), independent of the record count.
func (r *recordRepository) Status(ctx context.Context, userID int64) (models.RecordStatus, error) {
	return r.statusQuery(ctx, userID, statusFromCache, "recordRepository.Status")
}

// StatusScan implements [RecordRepository]. It recomputes the head map by a
// GROUP BY scan of the record table, bypassing the cache. Used by the
// index-cache audit.
func (r *recordRepository) StatusScan(ctx context.Context, userID int64) (models.RecordStatus, error) {
	return r.statusQuery(ctx, userID, statusFromScan, "recordRepository.StatusScan")
}

func (r *recordRepository) statusQuery(ctx context.Context, userID int64, query, funcName string) (models.RecordStatus, error) {
	log := logger.FromContext(ctx)

	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		log.Err(err).
			Str("func", funcName).
			Int64("user_id", userID).
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
				Str("func", funcName).
				Int64("user_id", userID).
				Msg("failed to scan status row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}

		host, parseErr := models.ParseHostId(hostRaw)
		if parseErr != nil {
			log.Err(parseErr).
				Str("func", funcName).
				Int64("user_id", userID).
				Str("host", hostRaw).
				Msg("malformed host id in status row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, parseErr)
		}

		status[models.Key{Host: host, Tag: models.Tag(tagRaw)}] = idx
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", funcName).
			Int64("user_id", userID).
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return status, nil
}

// Wipe implements [RecordRepository]. Records and cache entries for the
// user are removed in one transaction, so a concurrent Status never
// observes records without cache or vice versa.
func (r *recordRepository) Wipe(ctx context.Context, userID int64) error {
	log := logger.FromContext(ctx)

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.Wipe").
			Int64("user_id", userID).
			Msg("failed to begin transaction")
		return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, deleteIdxCache, userID); err != nil {
		log.Err(err).
			Str("func", "recordRepository.Wipe").
			Int64("user_id", userID).
			Msg("failed to delete index cache entries")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if _, err = tx.ExecContext(ctx, deleteUserRecords, userID); err != nil {
		log.Err(err).
			Str("func", "recordRepository.Wipe").
			Int64("user_id", userID).
			Msg("failed to delete records")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if commitErr := tx.Commit(); commitErr != nil {
		log.Err(commitErr).
			Str("func", "recordRepository.Wipe").
			Int64("user_id", userID).
			Msg("failed to commit transaction")
		return fmt.Errorf("%w: %w", ErrCommitingTransaction, commitErr)
	}

	log.Info().
		Str("func", "recordRepository.Wipe").
		Int64("user_id", userID).
		Msg("wiped all records and cache entries for user")

	return nil
}

// foldHeads reduces a batch to its per-(host, tag) maxima, so the index
// cache is touched once per stream instead of once per record.
func foldHeads(records []models.Record) models.RecordStatus {
	heads := make(models.RecordStatus)
	for _, rec := range records {
		k := models.Key{Host: rec.Host, Tag: rec.Tag}
		if cur, ok := heads[k]; !ok || rec.Idx > cur {
			heads[k] = rec.Idx
		}
	}
	return heads
}

// scanRecord scans one record row in wire column order (client_id, host,
// tag, idx, timestamp, version, data, cek) using the provided scan
// function, shared between *sql.Row and *sql.Rows call sites.
func scanRecord(scan func(dest ...any) error) (models.Record, error) {
	var rec models.Record
	var idRaw, hostRaw, tagRaw string

	if err := scan(
		&idRaw,
		&hostRaw,
		&tagRaw,
		&rec.Idx,
		&rec.Timestamp,
		&rec.Version,
		&rec.Data.Ciphertext,
		&rec.Data.WrappedCEK,
	); err != nil {
		return models.Record{}, err
	}

	id, err := models.ParseRecordId(idRaw)
	if err != nil {
		return models.Record{}, fmt.Errorf("malformed record id: %w", err)
	}
	host, err := models.ParseHostId(hostRaw)
	if err != nil {
		return models.Record{}, fmt.Errorf("malformed host id: %w", err)
	}

	rec.Id = id
	rec.Host = host
	rec.Tag = models.Tag(tagRaw)

	return rec, nil
}
