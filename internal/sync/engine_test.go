// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package sync

import (
	"context"
	"errors"
	"fmt"
	stdsync "sync"
	"testing"

	"github.com/hostlog/hostlog/internal/logger"
	"github.com/hostlog/hostlog/internal/store"
	"github.com/hostlog/hostlog/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory record store used as both LocalStore and Remote
// in engine tests. Streams are dense slices indexed by idx, so the density
// invariant is enforced structurally.
type memStore struct {
	mu      stdsync.Mutex
	streams map[models.Key][]models.Record
	byID    map[models.RecordId]struct{}

	// failure injection
	statusErr    error
	nextErr      error
	nextErrAfter int // number of successful NextRecords calls before nextErr fires
	addErr       error
	nextCalls    int
}

func newMemStore() *memStore {
	return &memStore{
		streams: make(map[models.Key][]models.Record),
		byID:    make(map[models.RecordId]struct{}),
	}
}

func (m *memStore) Status(ctx context.Context) (models.RecordStatus, error) {
	if m.statusErr != nil {
		return nil, m.statusErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	status := make(models.RecordStatus)
	for k, recs := range m.streams {
		if len(recs) > 0 {
			status[k] = uint64(len(recs) - 1)
		}
	}
	return status, nil
}

func (m *memStore) next(k models.Key, start uint64, limit int) []models.Record {
	m.mu.Lock()
	defer m.mu.Unlock()

	recs := m.streams[k]
	if start >= uint64(len(recs)) {
		return nil
	}
	end := start + uint64(limit)
	if end > uint64(len(recs)) {
		end = uint64(len(recs))
	}
	out := make([]models.Record, end-start)
	copy(out, recs[start:end])
	return out
}

func (m *memStore) Next(ctx context.Context, host models.HostId, tag models.Tag, start uint64, limit int) ([]models.Record, error) {
	return m.next(models.Key{Host: host, Tag: tag}, start, limit), nil
}

func (m *memStore) NextRecords(ctx context.Context, host models.HostId, tag models.Tag, start uint64, count int) ([]models.Record, error) {
	if m.nextErr != nil {
		if m.nextCalls >= m.nextErrAfter {
			return nil, m.nextErr
		}
		m.nextCalls++
	}
	return m.next(models.Key{Host: host, Tag: tag}, start, count), nil
}

func (m *memStore) InsertRemote(ctx context.Context, r models.Record) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertLocked(r)
}

func (m *memStore) insertLocked(r models.Record) (bool, error) {
	if _, ok := m.byID[r.Id]; ok {
		return false, nil
	}

	k := models.Key{Host: r.Host, Tag: r.Tag}
	recs := m.streams[k]

	switch {
	case r.Idx < uint64(len(recs)):
		if recs[r.Idx].Id != r.Id {
			return false, store.ErrIndexConflict
		}
		return false, nil
	case r.Idx == uint64(len(recs)):
		m.streams[k] = append(recs, r)
		m.byID[r.Id] = struct{}{}
		return true, nil
	default:
		return false, fmt.Errorf("gap insert at idx %d, stream length %d", r.Idx, len(recs))
	}
}

func (m *memStore) AddRecords(ctx context.Context, records []models.Record) error {
	if m.addErr != nil {
		return m.addErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range records {
		if _, err := m.insertLocked(r); err != nil {
			return err
		}
	}
	return nil
}

// append authors count fresh records on host under tag, simulating
// LocalRecordRepository.Append.
func (m *memStore) append(host models.HostId, tag models.Tag, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := models.Key{Host: host, Tag: tag}
	for i := 0; i < count; i++ {
		r := models.Record{
			Id:        models.NewRecordId(),
			Host:      host,
			Tag:       tag,
			Idx:       uint64(len(m.streams[k])),
			Timestamp: models.NewRecordTimestamp(),
			Version:   "v0",
			Data:      models.EncryptedData{Ciphertext: []byte{byte(i)}, WrappedCEK: []byte("k")},
		}
		m.streams[k] = append(m.streams[k], r)
		m.byID[r.Id] = struct{}{}
	}
}

// tuples flattens a store to its comparable identity set.
func (m *memStore) tuples() map[string]struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]struct{})
	for k, recs := range m.streams {
		for _, r := range recs {
			out[fmt.Sprintf("%s/%d/%s", k, r.Idx, r.Id)] = struct{}{}
		}
	}
	return out
}

func newTestEngine(local LocalStore, remote Remote, page int) *Engine {
	return NewEngine(local, remote, page, logger.Nop())
}

func TestEngine_Sync_PullsMissingRecords(t *testing.T) {
	local, remote := newMemStore(), newMemStore()
	h1 := models.NewHostId()
	remote.append(h1, "h", 5)

	summary, err := newTestEngine(local, remote, 2).Sync(context.Background())
	require.NoError(t, err)
	require.NoError(t, summary.Err())
	assert.Equal(t, 5, summary.Pulled)
	assert.Equal(t, 0, summary.Pushed)
	assert.Equal(t, remote.tuples(), local.tuples())
}

func TestEngine_Sync_PushesLocalRecords(t *testing.T) {
	local, remote := newMemStore(), newMemStore()
	h1 := models.NewHostId()
	local.append(h1, "h", 3)

	summary, err := newTestEngine(local, remote, 10).Sync(context.Background())
	require.NoError(t, err)
	require.NoError(t, summary.Err())
	assert.Equal(t, 3, summary.Pushed)
	assert.Equal(t, local.tuples(), remote.tuples())
}

func TestEngine_Sync_TwoHostConvergence(t *testing.T) {
	server := newMemStore()
	clientA, clientB := newMemStore(), newMemStore()
	hA, hB := models.NewHostId(), models.NewHostId()

	clientA.append(hA, "h", 5)
	clientB.append(hB, "h", 3)

	engineA := newTestEngine(clientA, server, 2)
	engineB := newTestEngine(clientB, server, 2)

	// First round: each host uploads its own records. B syncs after A has
	// pushed, so B also pulls A's stream in this round.
	for _, e := range []*Engine{engineA, engineB} {
		summary, err := e.Sync(context.Background())
		require.NoError(t, err)
		require.NoError(t, summary.Err())
	}

	serverStatus, err := server.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.RecordStatus{
		{Host: hA, Tag: "h"}: 4,
		{Host: hB, Tag: "h"}: 2,
	}, serverStatus)

	// Second round: A pulls B's records; B is already in sync.
	for _, e := range []*Engine{engineA, engineB} {
		summary, err := e.Sync(context.Background())
		require.NoError(t, err)
		require.NoError(t, summary.Err())
	}

	assert.Equal(t, server.tuples(), clientA.tuples())
	assert.Equal(t, server.tuples(), clientB.tuples())
}

func TestEngine_Sync_ResumedPullAfterTransportFailure(t *testing.T) {
	local, remote := newMemStore(), newMemStore()
	h1 := models.NewHostId()
	remote.append(h1, "h", 1000)

	// First run: transport dies after 4 batches (423 records would need a
	// page of ~100; use page 100 and fail after 4 fetches = 400 committed).
	remote.nextErr = errors.New("connection reset")
	remote.nextErrAfter = 4

	engine := newTestEngine(local, remote, 100)
	summary, err := engine.Sync(context.Background())
	require.NoError(t, err)
	require.Error(t, summary.Err())
	assert.Equal(t, 400, summary.Pulled)
	assert.False(t, IsFatal(summary.Failed[0].Err))

	// Retry: transport healed.
	remote.nextErr = nil
	summary, err = engine.Sync(context.Background())
	require.NoError(t, err)
	require.NoError(t, summary.Err())
	assert.Equal(t, 600, summary.Pulled)
	assert.Equal(t, remote.tuples(), local.tuples())

	// No record appears twice: the identity sets are equal and the local
	// stream is exactly 1000 long.
	localStatus, err := local.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(999), localStatus[models.Key{Host: h1, Tag: "h"}])
}

func TestEngine_Sync_IdempotentRepush(t *testing.T) {
	local, remote := newMemStore(), newMemStore()
	h1 := models.NewHostId()
	local.append(h1, "h", 50)

	engine := newTestEngine(local, remote, 50)

	summary, err := engine.Sync(context.Background())
	require.NoError(t, err)
	require.NoError(t, summary.Err())
	assert.Equal(t, 50, summary.Pushed)

	// Nothing changed; a second run finds both sides in sync.
	summary, err = engine.Sync(context.Background())
	require.NoError(t, err)
	require.NoError(t, summary.Err())
	assert.Equal(t, 0, summary.Pushed)
	assert.Len(t, remote.tuples(), 50)
}

// conflictingLocal refuses every insert for one stream with an index
// conflict, simulating a local slot already held by a different record
// (e.g. a concurrent append racing the pull).
type conflictingLocal struct {
	*memStore
	poisoned models.Key
}

func (c *conflictingLocal) InsertRemote(ctx context.Context, r models.Record) (bool, error) {
	if (models.Key{Host: r.Host, Tag: r.Tag}) == c.poisoned {
		return false, store.ErrIndexConflict
	}
	return c.memStore.InsertRemote(ctx, r)
}

func TestEngine_Sync_IndexConflictIsFatalForStream(t *testing.T) {
	remote := newMemStore()
	h1, h2 := models.NewHostId(), models.NewHostId()
	remote.append(h1, "h", 2)
	remote.append(h2, "h", 1)

	local := &conflictingLocal{
		memStore: newMemStore(),
		poisoned: models.Key{Host: h1, Tag: "h"},
	}

	summary, err := newTestEngine(local, remote, 10).Sync(context.Background())
	require.NoError(t, err)
	require.Error(t, summary.Err())

	require.Len(t, summary.Failed, 1)
	assert.Equal(t, models.Key{Host: h1, Tag: "h"}, summary.Failed[0].Key)
	assert.Equal(t, OpPull, summary.Failed[0].Op)
	assert.ErrorIs(t, summary.Failed[0].Err, store.ErrIndexConflict)
	assert.True(t, IsFatal(summary.Failed[0].Err))

	// The healthy stream still made it through.
	assert.Contains(t, summary.OK, models.Key{Host: h2, Tag: "h"})
}

func TestEngine_Sync_ProtocolFailureOnGappedBatch(t *testing.T) {
	local := newMemStore()
	remote := &gappedRemote{memStore: newMemStore()}
	h1 := models.NewHostId()
	remote.append(h1, "h", 4)

	summary, err := newTestEngine(local, remote, 10).Sync(context.Background())
	require.NoError(t, err)
	require.Error(t, summary.Err())
	require.Len(t, summary.Failed, 1)
	assert.ErrorIs(t, summary.Failed[0].Err, ErrProtocolFailure)
	assert.True(t, IsFatal(summary.Failed[0].Err))
	assert.Equal(t, 0, summary.Pulled)
}

// gappedRemote serves batches with the second record missing, simulating a
// relay that violates the contiguity contract.
type gappedRemote struct {
	*memStore
}

func (g *gappedRemote) NextRecords(ctx context.Context, host models.HostId, tag models.Tag, start uint64, count int) ([]models.Record, error) {
	batch, err := g.memStore.NextRecords(ctx, host, tag, start, count)
	if err != nil || len(batch) < 3 {
		return batch, err
	}
	return append(batch[:1], batch[2:]...), nil
}

func TestEngine_Sync_StatusExchangeFailureAbortsRun(t *testing.T) {
	local, remote := newMemStore(), newMemStore()
	remote.statusErr = errors.New("boom")

	_, err := newTestEngine(local, remote, 10).Sync(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStatusExchange)
}

func TestEngine_Sync_CancelledBetweenBatches(t *testing.T) {
	local, remote := newMemStore(), newMemStore()
	h1 := models.NewHostId()
	remote.append(h1, "h", 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := newTestEngine(local, remote, 3).Sync(ctx)
	require.NoError(t, err)
	require.Error(t, summary.Err())
	assert.ErrorIs(t, summary.Failed[0].Err, context.Canceled)
	assert.Equal(t, 0, summary.Pulled)
}

func TestDiffStatus(t *testing.T) {
	h1, h2, h3 := models.NewHostId(), models.NewHostId(), models.NewHostId()

	local := models.RecordStatus{
		{Host: h1, Tag: "h"}: 4, // ahead of remote -> push
		{Host: h2, Tag: "h"}: 2, // equal -> in sync
	}
	remote := models.RecordStatus{
		{Host: h1, Tag: "h"}: 1,
		{Host: h2, Tag: "h"}: 2,
		{Host: h3, Tag: "h"}: 0, // unknown locally -> pull
	}

	needPull, needPush := diffStatus(local, remote)
	assert.Equal(t, []models.Key{{Host: h3, Tag: "h"}}, needPull)
	assert.Equal(t, []models.Key{{Host: h1, Tag: "h"}}, needPush)
}

func TestCheckContiguous(t *testing.T) {
	h := models.NewHostId()
	k := models.Key{Host: h, Tag: "h"}

	dense := []models.Record{
		{Host: h, Tag: "h", Idx: 5},
		{Host: h, Tag: "h", Idx: 6},
	}
	require.NoError(t, checkContiguous(k, dense, 5))

	offset := []models.Record{{Host: h, Tag: "h", Idx: 6}}
	assert.ErrorIs(t, checkContiguous(k, offset, 5), ErrProtocolFailure)

	foreign := []models.Record{{Host: models.NewHostId(), Tag: "h", Idx: 5}}
	assert.ErrorIs(t, checkContiguous(k, foreign, 5), ErrProtocolFailure)
}
