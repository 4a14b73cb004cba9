package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hostlog/hostlog/internal/logger"
	"github.com/hostlog/hostlog/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Audit outcomes recorded by the statusAuditTotal counter.
const (
	auditResultMatch    = "match"
	auditResultMismatch = "mismatch"
)

// statusAuditTotal counts index-cache audit runs by outcome. A rising
// "mismatch" series means the cache upsert discipline is broken somewhere
// and the cache needs an operator-invoked Rebuild.
var statusAuditTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "hostlog",
	Subsystem: "store",
	Name:      "index_cache_audit_total",
	Help:      "Index-cache audits by outcome (cache vs. full-scan status agreement).",
}, []string{"result"})

// indexCache is the PostgreSQL-backed implementation of [IndexCache]: the
// materialized (user, host, tag) -> max(idx) table that answers Status in
// time independent of the record count.
type indexCache struct {
	*DB
	logger *logger.Logger
}

// NewIndexCache constructs an [IndexCache] over the provided database
// connection.
func NewIndexCache(db *DB, logger *logger.Logger) IndexCache {
	logger.Debug().Msg("creating index cache")
	return &indexCache{
		DB:     db,
		logger: logger,
	}
}

// Upsert implements [IndexCache]. The GREATEST() in the upsert guarantees
// the cached value never moves backwards, even under concurrent insert
// transactions from different sessions racing on the same stream.
func (c *indexCache) Upsert(ctx context.Context, tx *sql.Tx, userID int64, heads models.RecordStatus) error {
	log := logger.FromContext(ctx)

	stmt, err := tx.PrepareContext(ctx, upsertIdxCache)
	if err != nil {
		log.Err(err).
			Str("func", "indexCache.Upsert").
			Int64("user_id", userID).
			Msg("failed to prepare cache upsert")
		return fmt.Errorf("%w: %w", ErrPreparingStatement, err)
	}
	defer stmt.Close()

	for k, idx := range heads {
		if _, err = stmt.ExecContext(ctx, userID, k.Host.String(), string(k.Tag), idx); err != nil {
			log.Err(err).
				Str("func", "indexCache.Upsert").
				Int64("user_id", userID).
				Str("host", k.Host.String()).
				Str("tag", string(k.Tag)).
				Uint64("idx", idx).
				Msg("failed to upsert cache entry")
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
	}

	return nil
}

// Rebuild implements [IndexCache]. It recomputes the cache for one user
// from the record table. Safe to run online: the INSERT ... SELECT only
// writes values that are <= the truth at the moment of the scan, and any
// insert racing with it will re-raise the head via its own upsert.
func (c *indexCache) Rebuild(ctx context.Context, userID int64) error {
	log := logger.FromContext(ctx)

	query, args, err := buildRebuildIdxCacheQuery(ctx, userID)
	if err != nil {
		log.Err(err).
			Str("func", "indexCache.Rebuild").
			Int64("user_id", userID).
			Msg("failed to build rebuild query")
		return err
	}

	if _, err = c.DB.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "indexCache.Rebuild").
			Int64("user_id", userID).
			Msg("failed to execute rebuild")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	log.Info().
		Str("func", "indexCache.Rebuild").
		Int64("user_id", userID).
		Msg("index cache rebuilt from record table")

	return nil
}

// AuditStatus implements [IndexCache]. It computes the status both ways —
// from the cache and from a full scan — compares them, increments the
// audit counter, and logs every diverging key. The mismatch set is
// returned to the caller; no automatic repair is attempted.
func (c *indexCache) AuditStatus(ctx context.Context, userID int64) (map[models.Key]struct{}, error) {
	log := logger.FromContext(ctx)

	repo := &recordRepository{DB: c.DB, cache: c, logger: c.logger}

	cached, err := repo.Status(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("audit: status from cache: %w", err)
	}

	scanned, err := repo.StatusScan(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("audit: status from scan: %w", err)
	}

	mismatches := make(map[models.Key]struct{})

	for k, scannedIdx := range scanned {
		if cachedIdx, ok := cached[k]; !ok || cachedIdx != scannedIdx {
			mismatches[k] = struct{}{}
			log.Error().
				Str("func", "indexCache.AuditStatus").
				Int64("user_id", userID).
				Str("host", k.Host.String()).
				Str("tag", string(k.Tag)).
				Uint64("scanned_idx", scannedIdx).
				Uint64("cached_idx", cachedIdx).
				Bool("cache_entry_present", ok).
				Msg("index cache disagrees with record table")
		}
	}
	// A cache entry without backing records is also a divergence: it makes
	// Status advertise a stream that does not exist.
	for k := range cached {
		if _, ok := scanned[k]; !ok {
			mismatches[k] = struct{}{}
			log.Error().
				Str("func", "indexCache.AuditStatus").
				Int64("user_id", userID).
				Str("host", k.Host.String()).
				Str("tag", string(k.Tag)).
				Msg("index cache entry has no backing records")
		}
	}

	if len(mismatches) == 0 {
		statusAuditTotal.WithLabelValues(auditResultMatch).Inc()
	} else {
		statusAuditTotal.WithLabelValues(auditResultMismatch).Inc()
	}

	return mismatches, nil
}

// Users implements [IndexCache].
func (c *indexCache) Users(ctx context.Context) ([]int64, error) {
	log := logger.FromContext(ctx)

	rows, err := c.DB.QueryContext(ctx, cacheUsers)
	if err != nil {
		log.Err(err).
			Str("func", "indexCache.Users").
			Msg("failed to list cache users")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var users []int64
	for rows.Next() {
		var id int64
		if scanErr := rows.Scan(&id); scanErr != nil {
			log.Err(scanErr).
				Str("func", "indexCache.Users").
				Msg("failed to scan user id")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}
		users = append(users, id)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "indexCache.Users").
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return users, nil
}
