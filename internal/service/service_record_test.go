package service

import (
	"context"
	"errors"
	"testing"

	"github.com/hostlog/hostlog/internal/logger"
	"github.com/hostlog/hostlog/internal/validators"
	"github.com/hostlog/hostlog/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRecordRepository records calls so tests can assert what reached the
// storage layer.
type fakeRecordRepository struct {
	added     []models.Record
	addErr    error
	nextArgs  struct{ start uint64; count int }
	next      []models.Record
	status    models.RecordStatus
	wipedUser int64
}

func (f *fakeRecordRepository) AddRecords(ctx context.Context, userID int64, records []models.Record) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.added = append(f.added, records...)
	return nil
}

func (f *fakeRecordRepository) NextRecords(ctx context.Context, userID int64, host models.HostId, tag models.Tag, start uint64, limit int) ([]models.Record, error) {
	f.nextArgs.start = start
	f.nextArgs.count = limit
	return f.next, nil
}

func (f *fakeRecordRepository) Status(ctx context.Context, userID int64) (models.RecordStatus, error) {
	return f.status, nil
}

func (f *fakeRecordRepository) StatusScan(ctx context.Context, userID int64) (models.RecordStatus, error) {
	return f.status, nil
}

func (f *fakeRecordRepository) Wipe(ctx context.Context, userID int64) error {
	f.wipedUser = userID
	return nil
}

func newTestRecordService(repo *fakeRecordRepository) RecordService {
	return NewRecordService(repo, validators.NewRecordValidator(), logger.Nop())
}

func serviceTestRecord() models.Record {
	return models.Record{
		Id:        models.NewRecordId(),
		Host:      models.NewHostId(),
		Tag:       "h",
		Idx:       0,
		Timestamp: models.NewRecordTimestamp(),
		Version:   "v0",
		Data:      models.EncryptedData{Ciphertext: []byte("c"), WrappedCEK: []byte("k")},
	}
}

func TestRecordService_AddRecords_PassesValidBatch(t *testing.T) {
	repo := &fakeRecordRepository{}
	svc := newTestRecordService(repo)

	err := svc.AddRecords(context.Background(), 7, []models.Record{serviceTestRecord()})
	require.NoError(t, err)
	assert.Len(t, repo.added, 1)
}

func TestRecordService_AddRecords_RejectsInvalidBatch(t *testing.T) {
	repo := &fakeRecordRepository{}
	svc := newTestRecordService(repo)

	bad := serviceTestRecord()
	bad.Tag = ""

	err := svc.AddRecords(context.Background(), 7, []models.Record{bad})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidDataProvided)
	assert.Empty(t, repo.added)
}

func TestRecordService_AddRecords_RejectsMissingUser(t *testing.T) {
	repo := &fakeRecordRepository{}
	svc := newTestRecordService(repo)

	err := svc.AddRecords(context.Background(), 0, []models.Record{serviceTestRecord()})
	assert.ErrorIs(t, err, ErrInvalidDataProvided)
}

func TestRecordService_AddRecords_PropagatesStoreError(t *testing.T) {
	storeErr := errors.New("disk on fire")
	repo := &fakeRecordRepository{addErr: storeErr}
	svc := newTestRecordService(repo)

	err := svc.AddRecords(context.Background(), 7, []models.Record{serviceTestRecord()})
	assert.ErrorIs(t, err, storeErr)
}

func TestRecordService_NextRecords_ClampsCount(t *testing.T) {
	repo := &fakeRecordRepository{}
	svc := newTestRecordService(repo)
	host := models.NewHostId()

	_, err := svc.NextRecords(context.Background(), 7, host, "h", 0, 10_000)
	require.NoError(t, err)
	assert.Equal(t, maxRecordsPerPage, repo.nextArgs.count)

	_, err = svc.NextRecords(context.Background(), 7, host, "h", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, maxRecordsPerPage, repo.nextArgs.count)

	_, err = svc.NextRecords(context.Background(), 7, host, "h", 5, 50)
	require.NoError(t, err)
	assert.Equal(t, 50, repo.nextArgs.count)
	assert.Equal(t, uint64(5), repo.nextArgs.start)
}

func TestRecordService_NextRecords_RejectsBadCoordinates(t *testing.T) {
	repo := &fakeRecordRepository{}
	svc := newTestRecordService(repo)

	_, err := svc.NextRecords(context.Background(), 7, models.HostId{}, "h", 0, 10)
	assert.ErrorIs(t, err, ErrInvalidDataProvided)

	_, err = svc.NextRecords(context.Background(), 7, models.NewHostId(), "", 0, 10)
	assert.ErrorIs(t, err, ErrInvalidDataProvided)
}

func TestRecordService_StatusAndWipe(t *testing.T) {
	host := models.NewHostId()
	repo := &fakeRecordRepository{status: models.RecordStatus{{Host: host, Tag: "h"}: 3}}
	svc := newTestRecordService(repo)

	status, err := svc.Status(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), status[models.Key{Host: host, Tag: "h"}])

	require.NoError(t, svc.Wipe(context.Background(), 7))
	assert.Equal(t, int64(7), repo.wipedUser)

	_, err = svc.Status(context.Background(), 0)
	assert.ErrorIs(t, err, ErrInvalidDataProvided)
	assert.ErrorIs(t, svc.Wipe(context.Background(), -1), ErrInvalidDataProvided)
}
