package redis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu     sync.Mutex
	values map[string]string
	getErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: make(map[string]string)}
}

func (f *fakeStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.values[key]; ok {
		return false, nil
	}
	f.values[key] = value.(string)
	return true, nil
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return "", f.getErr
	}
	v, ok := f.values[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.values, k)
	}
	return nil
}

func TestNewLock_Validation(t *testing.T) {
	_, err := NewLock(nil, "x", time.Second)
	require.Error(t, err)

	_, err = NewLock(newFakeStore(), "", time.Second)
	require.Error(t, err)

	l, err := NewLock(newFakeStore(), "shift_schedule", 0)
	require.NoError(t, err)
	assert.Equal(t, defaultLockTTL, l.ttl)
	assert.Equal(t, "orderflow:lock:shift_schedule", l.key)
}

func TestLock_SecondReplicaIsRejectedUntilRelease(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	first, err := NewLock(store, "shift_schedule", time.Minute)
	require.NoError(t, err)
	second, err := NewLock(store, "shift_schedule", time.Minute)
	require.NoError(t, err)

	ok, err := first.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	// a replica that never held the lock cannot free it
	require.NoError(t, second.Release(ctx))
	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, first.Release(ctx))
	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLock_ReleaseAfterExpiryLeavesNewOwner(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	l, err := NewLock(store, "backlog", time.Minute)
	require.NoError(t, err)

	ok, err := l.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	// simulate TTL expiry and another owner taking over
	store.values[l.key] = "someone-else"

	require.NoError(t, l.Release(ctx))
	assert.Equal(t, "someone-else", store.values[l.key])
}

func TestLock_ReleaseReportsReadFailure(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	l, err := NewLock(store, "backlog", time.Minute)
	require.NoError(t, err)
	_, err = l.Acquire(ctx)
	require.NoError(t, err)

	store.getErr = errors.New("connection reset")

	assert.ErrorContains(t, l.Release(ctx), "read lock owner")
}

func TestLocalLock(t *testing.T) {
	ctx := context.Background()
	l := NewLocalLock()

	ok, err := l.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = l.Acquire(ctx)
	assert.False(t, ok)

	require.NoError(t, l.Release(ctx))
	ok, _ = l.Acquire(ctx)
	assert.True(t, ok)
}
