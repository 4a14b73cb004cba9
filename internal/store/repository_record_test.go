package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/hostlog/hostlog/internal/logger"
	"github.com/hostlog/hostlog/models"
	"github.com/jackc/pgerrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRecordRepo(t *testing.T) (*recordRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	l := logger.Nop()
	wrapped := &DB{DB: db, logger: l}
	cache := &indexCache{DB: wrapped, logger: l}
	repo := &recordRepository{
		DB:     wrapped,
		cache:  cache,
		logger: l,
	}
	return repo, mock, db
}

func testRecord(t *testing.T, tag models.Tag, idx uint64) models.Record {
	t.Helper()

	return models.Record{
		Id:        models.NewRecordId(),
		Host:      models.NewHostId(),
		Tag:       tag,
		Idx:       idx,
		Timestamp: models.NewRecordTimestamp(),
		Version:   "v0",
		Data: models.EncryptedData{
			Ciphertext: []byte("ciphertext"),
			WrappedCEK: []byte("wrapped-cek"),
		},
	}
}

func TestRecordRepository_AddRecords_Success(t *testing.T) {
	repo, mock, db := newTestRecordRepo(t)
	defer db.Close()

	rec := testRecord(t, "h", 0)

	mock.ExpectBegin()
	insert := mock.ExpectPrepare("INSERT INTO store")
	insert.ExpectExec().
		WithArgs(rec.Id.String(), int64(7), rec.Host.String(), "h", rec.Idx,
			rec.Timestamp, rec.Version, rec.Data.Ciphertext, rec.Data.WrappedCEK).
		WillReturnResult(sqlmock.NewResult(1, 1))
	upsert := mock.ExpectPrepare("INSERT INTO store_idx_cache")
	upsert.ExpectExec().
		WithArgs(int64(7), rec.Host.String(), "h", rec.Idx).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.AddRecords(context.Background(), 7, []models.Record{rec})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_AddRecords_EmptyBatchIsNoOp(t *testing.T) {
	repo, mock, db := newTestRecordRepo(t)
	defer db.Close()

	err := repo.AddRecords(context.Background(), 7, nil)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_AddRecords_FoldsCacheUpsertPerStream(t *testing.T) {
	repo, mock, db := newTestRecordRepo(t)
	defer db.Close()

	host := models.NewHostId()
	recs := make([]models.Record, 3)
	for i := range recs {
		recs[i] = testRecord(t, "h", uint64(i))
		recs[i].Host = host
	}

	mock.ExpectBegin()
	insert := mock.ExpectPrepare("INSERT INTO store")
	for _, rec := range recs {
		insert.ExpectExec().
			WithArgs(rec.Id.String(), int64(7), rec.Host.String(), "h", rec.Idx,
				rec.Timestamp, rec.Version, rec.Data.Ciphertext, rec.Data.WrappedCEK).
			WillReturnResult(sqlmock.NewResult(1, 1))
	}
	// Three records, one stream: exactly one cache upsert, at the max idx.
	upsert := mock.ExpectPrepare("INSERT INTO store_idx_cache")
	upsert.ExpectExec().
		WithArgs(int64(7), host.String(), "h", uint64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.AddRecords(context.Background(), 7, recs)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_AddRecords_IndexConflict(t *testing.T) {
	repo, mock, db := newTestRecordRepo(t)
	defer db.Close()

	rec := testRecord(t, "h", 4)

	mock.ExpectBegin()
	insert := mock.ExpectPrepare("INSERT INTO store")
	insert.ExpectExec().
		WithArgs(rec.Id.String(), int64(7), rec.Host.String(), "h", rec.Idx,
			rec.Timestamp, rec.Version, rec.Data.Ciphertext, rec.Data.WrappedCEK).
		WillReturnError(pgError(pgerrcode.UniqueViolation))
	mock.ExpectRollback()

	err := repo.AddRecords(context.Background(), 7, []models.Record{rec})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIndexConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_NextRecords(t *testing.T) {
	repo, mock, db := newTestRecordRepo(t)
	defer db.Close()

	host := models.NewHostId()
	id0, id1 := models.NewRecordId(), models.NewRecordId()

	rows := sqlmock.NewRows([]string{"client_id", "host", "tag", "idx", "timestamp", "version", "data", "cek"}).
		AddRow(id0.String(), host.String(), "h", uint64(3), int64(100), "v0", []byte("c0"), []byte("k0")).
		AddRow(id1.String(), host.String(), "h", uint64(4), int64(101), "v0", []byte("c1"), []byte("k1"))

	mock.ExpectQuery("SELECT client_id, host, tag, idx, timestamp, version, data, cek FROM store").
		WillReturnRows(rows)

	records, err := repo.NextRecords(context.Background(), 7, host, "h", 3, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, id0, records[0].Id)
	assert.Equal(t, uint64(3), records[0].Idx)
	assert.Equal(t, uint64(4), records[1].Idx)
	assert.Equal(t, []byte("c1"), records[1].Data.Ciphertext)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_Status_FromCache(t *testing.T) {
	repo, mock, db := newTestRecordRepo(t)
	defer db.Close()

	h1, h2 := models.NewHostId(), models.NewHostId()

	rows := sqlmock.NewRows([]string{"host", "tag", "idx"}).
		AddRow(h1.String(), "h", uint64(4)).
		AddRow(h2.String(), "h", uint64(2))

	mock.ExpectQuery("SELECT host, tag, idx FROM store_idx_cache").
		WithArgs(int64(7)).
		WillReturnRows(rows)

	status, err := repo.Status(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, models.RecordStatus{
		{Host: h1, Tag: "h"}: 4,
		{Host: h2, Tag: "h"}: 2,
	}, status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_Wipe(t *testing.T) {
	repo, mock, db := newTestRecordRepo(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM store_idx_cache").
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM store").
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 9))
	mock.ExpectCommit()

	err := repo.Wipe(context.Background(), 7)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIndexCache_AuditStatus_Mismatch(t *testing.T) {
	repo, mock, db := newTestRecordRepo(t)
	defer db.Close()

	host := models.NewHostId()

	cacheRows := sqlmock.NewRows([]string{"host", "tag", "idx"}).
		AddRow(host.String(), "h", uint64(3))
	scanRows := sqlmock.NewRows([]string{"host", "tag", "max"}).
		AddRow(host.String(), "h", uint64(4))

	mock.ExpectQuery("SELECT host, tag, idx FROM store_idx_cache").
		WithArgs(int64(7)).
		WillReturnRows(cacheRows)
	mock.ExpectQuery("SELECT host, tag, MAX").
		WithArgs(int64(7)).
		WillReturnRows(scanRows)

	cache := repo.cache.(*indexCache)
	mismatches, err := cache.AuditStatus(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, mismatches, 1)
	_, ok := mismatches[models.Key{Host: host, Tag: "h"}]
	assert.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIndexCache_AuditStatus_Agreement(t *testing.T) {
	repo, mock, db := newTestRecordRepo(t)
	defer db.Close()

	host := models.NewHostId()

	cacheRows := sqlmock.NewRows([]string{"host", "tag", "idx"}).
		AddRow(host.String(), "h", uint64(4))
	scanRows := sqlmock.NewRows([]string{"host", "tag", "max"}).
		AddRow(host.String(), "h", uint64(4))

	mock.ExpectQuery("SELECT host, tag, idx FROM store_idx_cache").
		WithArgs(int64(7)).
		WillReturnRows(cacheRows)
	mock.ExpectQuery("SELECT host, tag, MAX").
		WithArgs(int64(7)).
		WillReturnRows(scanRows)

	cache := repo.cache.(*indexCache)
	mismatches, err := cache.AuditStatus(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, mismatches)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFoldHeads(t *testing.T) {
	host := models.NewHostId()
	other := models.NewHostId()

	records := []models.Record{
		{Host: host, Tag: "h", Idx: 0},
		{Host: host, Tag: "h", Idx: 2},
		{Host: host, Tag: "h", Idx: 1},
		{Host: host, Tag: "k", Idx: 5},
		{Host: other, Tag: "h", Idx: 9},
	}

	heads := foldHeads(records)
	assert.Equal(t, models.RecordStatus{
		{Host: host, Tag: "h"}:  2,
		{Host: host, Tag: "k"}:  5,
		{Host: other, Tag: "h"}: 9,
	}, heads)
}

func TestScanRecord_MalformedIDs(t *testing.T) {
	scan := func(dest ...any) error {
		*dest[0].(*string) = "not-a-uuid"
		*dest[1].(*string) = "also-not-a-uuid"
		*dest[2].(*string) = "h"
		return nil
	}

	_, err := scanRecord(scan)
	require.Error(t, err)
	assert.False(t, errors.Is(err, sql.ErrNoRows))
}
