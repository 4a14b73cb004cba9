package store

import (
	"context"
	"fmt"

	"github.com/hostlog/hostlog/internal/logger"
	"github.com/hostlog/hostlog/models"
	sq "github.com/Masterminds/squirrel"
)

const (
	addRecord = `
		INSERT INTO store (
			client_id,
			user_id,
			host,
			tag,
			idx,
			timestamp,
			version,
			data,
			cek
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id, client_id) DO NOTHING;`

	upsertIdxCache = `
		INSERT INTO store_idx_cache (user_id, host, tag, idx)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, host, tag)
		DO UPDATE SET idx = GREATEST(store_idx_cache.idx, EXCLUDED.idx);`

	statusFromCache = `
		SELECT host, tag, idx
		FROM store_idx_cache
		WHERE user_id = $1;`

	statusFromScan = `
		SELECT host, tag, MAX(idx)
		FROM store
		WHERE user_id = $1
		GROUP BY host, tag;`

	cacheUsers = `
		SELECT DISTINCT user_id
		FROM store_idx_cache;`

	deleteIdxCache = `
		DELETE FROM store_idx_cache
		WHERE user_id = $1;`

	deleteUserRecords = `
		DELETE FROM store
		WHERE user_id = $1;`
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// buildNextRecordsQuery builds the SELECT for a contiguous run of records
// from a single (host, tag) stream, ascending by idx, starting at start.
func buildNextRecordsQuery(ctx context.Context, userID int64, host models.HostId, tag models.Tag, start uint64, limit int) (string, []any, error) {
	qb := psql.Select(
		"client_id",
		"host",
		"tag",
		"idx",
		"timestamp",
		"version",
		"data",
		"cek",
	).
		From("store").
		Where(sq.Eq{"user_id": userID, "host": host.String(), "tag": string(tag)}).
		Where(sq.GtOrEq{"idx": start}).
		OrderBy("idx ASC").
		Limit(uint64(limit))

	query, args, err := qb.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: next records: %w", ErrBuildingSQLQuery, err)
	}

	logger.FromContext(ctx).Debug().Str("query", query).Any("args", args).Msg("built next records query")
	return query, args, nil
}

// buildRebuildIdxCacheQuery builds the INSERT ... SELECT that recomputes the
// index cache for one user from the record table. Only writes values that
// are <= the truth, so it is safe to run online.
func buildRebuildIdxCacheQuery(ctx context.Context, userID int64) (string, []any, error) {
	qb := psql.Insert("store_idx_cache").
		Columns("user_id", "host", "tag", "idx").
		Select(
			psql.Select("user_id", "host", "tag", "MAX(idx)").
				From("store").
				Where(sq.Eq{"user_id": userID}).
				GroupBy("user_id", "host", "tag"),
		).
		Suffix("ON CONFLICT (user_id, host, tag) DO UPDATE SET idx = EXCLUDED.idx")

	query, args, err := qb.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: rebuild idx cache: %w", ErrBuildingSQLQuery, err)
	}

	logger.FromContext(ctx).Debug().Str("query", query).Any("args", args).Msg("built rebuild idx cache query")
	return query, args, nil
}
