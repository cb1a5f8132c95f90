package sync

import (
	"context"
	"encoding/json"
	stdsync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/agrisync/agrisync/domain/entity"
	"github.com/agrisync/agrisync/infrastructure/service/logger"
)

type MockPendingWriteRepository struct {
	mock.Mock
}

func (m *MockPendingWriteRepository) Enqueue(ctx context.Context, write *entity.PendingWrite) error {
	args := m.Called(ctx, write)
	return args.Error(0)
}

func (m *MockPendingWriteRepository) ListPending(ctx context.Context) ([]*entity.PendingWrite, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.PendingWrite), args.Error(1)
}

func (m *MockPendingWriteRepository) Remove(ctx context.Context, seq int64) error {
	args := m.Called(ctx, seq)
	return args.Error(0)
}

func (m *MockPendingWriteRepository) IncrementRetry(ctx context.Context, seq int64) error {
	args := m.Called(ctx, seq)
	return args.Error(0)
}

func (m *MockPendingWriteRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockRemoteSyncAPI struct {
	mock.Mock

	mu    stdsync.Mutex
	calls []string
}

func (m *MockRemoteSyncAPI) record(op, table string) {
	m.mu.Lock()
	m.calls = append(m.calls, op+":"+table)
	m.mu.Unlock()
}

func (m *MockRemoteSyncAPI) Update(ctx context.Context, table string, data json.RawMessage) error {
	m.record("update", table)
	args := m.Called(ctx, table, data)
	return args.Error(0)
}

func (m *MockRemoteSyncAPI) Upsert(ctx context.Context, table string, data json.RawMessage) error {
	m.record("upsert", table)
	args := m.Called(ctx, table, data)
	return args.Error(0)
}

func (m *MockRemoteSyncAPI) Delete(ctx context.Context, table string, data json.RawMessage) error {
	m.record("delete", table)
	args := m.Called(ctx, table, data)
	return args.Error(0)
}

type MockSyncStateRepository struct {
	mock.Mock
}

func (m *MockSyncStateRepository) LastSyncedAt(ctx context.Context) (*time.Time, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

func (m *MockSyncStateRepository) SetLastSyncedAt(ctx context.Context, t time.Time) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

type stubConnectivity struct {
	online bool
	ch     chan bool
}

func (s *stubConnectivity) Online() bool           { return s.online }
func (s *stubConnectivity) Subscribe() <-chan bool { return s.ch }

type engineFixture struct {
	queue     *MockPendingWriteRepository
	remote    *MockRemoteSyncAPI
	syncState *MockSyncStateRepository
	conn      *stubConnectivity
	engine    *Engine
}

func newEngineFixture(online bool) *engineFixture {
	f := &engineFixture{
		queue:     new(MockPendingWriteRepository),
		remote:    new(MockRemoteSyncAPI),
		syncState: new(MockSyncStateRepository),
		conn:      &stubConnectivity{online: online, ch: make(chan bool, 1)},
	}
	log := logger.NewStructuredLogger(logger.LoggerConfig{Level: "panic", ServiceName: "test"})
	f.engine = NewEngine(f.queue, f.remote, f.syncState, f.conn, log)
	return f
}

func pendingWrite(seq int64, op, table string) *entity.PendingWrite {
	return &entity.PendingWrite{
		Seq:        seq,
		Operation:  op,
		TableName:  table,
		Payload:    json.RawMessage(`{"id":"x"}`),
		EnqueuedAt: time.Now().UTC(),
	}
}

func TestEngine_SyncNow_DrainsInOrder(t *testing.T) {
	f := newEngineFixture(true)

	writes := []*entity.PendingWrite{
		pendingWrite(1, entity.OpInsert, "actors"),
		pendingWrite(2, entity.OpInsert, "actor_details"),
		pendingWrite(3, entity.OpUpdate, "warehouses"),
	}
	f.queue.On("ListPending", mock.Anything).Return(writes, nil)
	f.remote.On("Upsert", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.remote.On("Update", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.queue.On("Remove", mock.Anything, mock.Anything).Return(nil)
	f.syncState.On("SetLastSyncedAt", mock.Anything, mock.Anything).Return(nil)
	f.queue.On("Count", mock.Anything).Return(0, nil)

	require.NoError(t, f.engine.SyncNow(context.Background()))

	assert.Equal(t, []string{"upsert:actors", "upsert:actor_details", "update:warehouses"}, f.remote.calls)
	f.queue.AssertCalled(t, "Remove", mock.Anything, int64(1))
	f.queue.AssertCalled(t, "Remove", mock.Anything, int64(2))
	f.queue.AssertCalled(t, "Remove", mock.Anything, int64(3))
}

// A failed item stays queued with a bumped retry count while later items
// are still attempted.
func TestEngine_SyncNow_FailureDoesNotDamQueue(t *testing.T) {
	f := newEngineFixture(true)

	writes := []*entity.PendingWrite{
		pendingWrite(1, entity.OpInsert, "actors"),
		pendingWrite(2, entity.OpInsert, "actor_details"),
		pendingWrite(3, entity.OpInsert, "addresses"),
	}
	f.queue.On("ListPending", mock.Anything).Return(writes, nil)
	f.remote.On("Upsert", mock.Anything, "actors", mock.Anything).Return(nil)
	f.remote.On("Upsert", mock.Anything, "actor_details", mock.Anything).Return(assert.AnError)
	f.remote.On("Upsert", mock.Anything, "addresses", mock.Anything).Return(nil)
	f.queue.On("Remove", mock.Anything, int64(1)).Return(nil)
	f.queue.On("Remove", mock.Anything, int64(3)).Return(nil)
	f.queue.On("IncrementRetry", mock.Anything, int64(2)).Return(nil)
	f.syncState.On("SetLastSyncedAt", mock.Anything, mock.Anything).Return(nil)
	f.queue.On("Count", mock.Anything).Return(1, nil)

	require.NoError(t, f.engine.SyncNow(context.Background()))

	f.queue.AssertCalled(t, "IncrementRetry", mock.Anything, int64(2))
	f.queue.AssertNotCalled(t, "Remove", mock.Anything, int64(2))
	f.queue.AssertCalled(t, "Remove", mock.Anything, int64(3))
	// The pass still records its timestamp.
	f.syncState.AssertCalled(t, "SetLastSyncedAt", mock.Anything, mock.Anything)
}

func TestEngine_SyncNow_OfflineIsNoOp(t *testing.T) {
	f := newEngineFixture(false)

	require.NoError(t, f.engine.SyncNow(context.Background()))

	f.queue.AssertNotCalled(t, "ListPending")
}

func TestEngine_SyncNow_DeleteOperation(t *testing.T) {
	f := newEngineFixture(true)

	writes := []*entity.PendingWrite{pendingWrite(1, entity.OpDelete, "warehouses")}
	f.queue.On("ListPending", mock.Anything).Return(writes, nil)
	f.remote.On("Delete", mock.Anything, "warehouses", mock.Anything).Return(nil)
	f.queue.On("Remove", mock.Anything, int64(1)).Return(nil)
	f.syncState.On("SetLastSyncedAt", mock.Anything, mock.Anything).Return(nil)
	f.queue.On("Count", mock.Anything).Return(0, nil)

	require.NoError(t, f.engine.SyncNow(context.Background()))

	f.remote.AssertCalled(t, "Delete", mock.Anything, "warehouses", mock.Anything)
}

// Two concurrent SyncNow calls must result in exactly one drain pass.
func TestEngine_SyncNow_ConcurrentCallIsNoOp(t *testing.T) {
	f := newEngineFixture(true)

	listStarted := make(chan struct{})
	release := make(chan struct{})

	f.queue.On("ListPending", mock.Anything).Run(func(mock.Arguments) {
		close(listStarted)
		<-release
	}).Return([]*entity.PendingWrite{}, nil).Once()
	f.syncState.On("SetLastSyncedAt", mock.Anything, mock.Anything).Return(nil)
	f.queue.On("Count", mock.Anything).Return(0, nil)

	var wg stdsync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = f.engine.SyncNow(context.Background())
	}()

	<-listStarted
	// Second call while the first pass is mid-flight.
	require.NoError(t, f.engine.SyncNow(context.Background()))
	close(release)
	wg.Wait()

	f.queue.AssertNumberOfCalls(t, "ListPending", 1)
}

// The backend-connected signal kicks a drain pass without waiting for
// the ticker.
func TestEngine_NotifyBackendConnected_TriggersPass(t *testing.T) {
	f := newEngineFixture(true)

	listed := make(chan struct{}, 1)
	f.queue.On("ListPending", mock.Anything).Run(func(mock.Arguments) {
		select {
		case listed <- struct{}{}:
		default:
		}
	}).Return([]*entity.PendingWrite{}, nil)
	f.syncState.On("SetLastSyncedAt", mock.Anything, mock.Anything).Return(nil)
	f.queue.On("Count", mock.Anything).Return(0, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.engine.Start(ctx)
	defer f.engine.Stop()

	f.engine.NotifyBackendConnected()

	select {
	case <-listed:
	case <-time.After(time.Second):
		t.Fatal("expected a drain pass after the backend-connected signal")
	}
}

func TestEngine_Status(t *testing.T) {
	f := newEngineFixture(true)

	last := time.Now().Add(-time.Minute).UTC()
	f.queue.On("Count", mock.Anything).Return(4, nil)
	f.syncState.On("LastSyncedAt", mock.Anything).Return(&last, nil)

	status := f.engine.Status(context.Background())

	assert.True(t, status.Connected)
	assert.False(t, status.Syncing)
	assert.Equal(t, 4, status.PendingCount)
	require.NotNil(t, status.LastSyncedAt)
	assert.Equal(t, last, *status.LastSyncedAt)
}

func TestEngine_SubscribeStatus_ReceivesSnapshotAfterPass(t *testing.T) {
	f := newEngineFixture(true)

	f.queue.On("ListPending", mock.Anything).Return([]*entity.PendingWrite{}, nil)
	f.syncState.On("SetLastSyncedAt", mock.Anything, mock.Anything).Return(nil)
	f.queue.On("Count", mock.Anything).Return(0, nil)

	sub := f.engine.SubscribeStatus()
	require.NoError(t, f.engine.SyncNow(context.Background()))

	select {
	case status := <-sub:
		assert.True(t, status.Connected)
		assert.Equal(t, 0, status.PendingCount)
	case <-time.After(time.Second):
		t.Fatal("expected a status snapshot after the pass")
	}
}
