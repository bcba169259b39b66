package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icap-ethiopia/kpp/internal/platform/openmrs"
)

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.nowFunc = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "k", []byte("v"), time.Minute))
	data, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), data)

	now = now.Add(2 * time.Minute)
	_, ok, _ = s.Get(ctx, "k")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestMemoryStore_GetKeepsEntryReplacedAfterExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.nowFunc = func() time.Time { return now }
	require.NoError(t, s.Set(ctx, "k", []byte("old"), time.Minute))

	// a concurrent Set lands between the expiry check and the delete
	later := now.Add(2 * time.Minute)
	calls := 0
	s.nowFunc = func() time.Time {
		calls++
		if calls == 1 {
			s.mu.Lock()
			s.entries["k"] = &memoryEntry{data: []byte("new"), expiresAt: later.Add(time.Hour)}
			s.mu.Unlock()
		}
		return later
	}

	data, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("new"), data)
	assert.Equal(t, 1, s.Len())
}

func TestMemoryStore_EvictExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.nowFunc = func() time.Time { return now }

	s.Set(ctx, "short", []byte("1"), time.Second)
	s.Set(ctx, "long", []byte("2"), time.Hour)
	now = now.Add(time.Minute)
	s.evictExpired()

	assert.Equal(t, 1, s.Len())
}

func TestRevalidator_FetchCachesUntilInvalidated(t *testing.T) {
	ctx := context.Background()
	r := NewRevalidator(NewMemoryStore(), time.Minute, zerolog.Nop())

	calls := 0
	fetch := func(context.Context) ([]openmrs.Encounter, error) {
		calls++
		return []openmrs.Encounter{{
			UUID: "e-1",
			Obs: []openmrs.Obs{
				{Concept: openmrs.Concept{UUID: "c-1"}, Value: openmrs.CodedValue(openmrs.Concept{UUID: "v-1"})},
				{Concept: openmrs.Concept{UUID: "c-2"}, Value: openmrs.ScalarValue("text")},
			},
		}}, nil
	}

	first, err := Fetch(ctx, r, "/encounter?patient=p-1", fetch)
	require.NoError(t, err)
	second, err := Fetch(ctx, r, "/encounter?patient=p-1", fetch)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].UUID, second[0].UUID)
	require.True(t, second[0].Obs[0].Value.IsCoded())
	assert.Equal(t, "v-1", second[0].Obs[0].Value.Coded.UUID)
	assert.Equal(t, "text", second[0].Obs[1].Value.Scalar)

	r.Invalidate(ctx, "/encounter?patient=p-1")
	_, err = Fetch(ctx, r, "/encounter?patient=p-1", fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRevalidator_FetchErrorNotCached(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	r := NewRevalidator(store, time.Minute, zerolog.Nop())

	_, err := Fetch(ctx, r, "k", func(context.Context) (string, error) {
		return "", errors.New("gateway down")
	})
	require.Error(t, err)
	assert.Equal(t, 0, store.Len())
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("connection refused")
}
func (failingStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("connection refused")
}
func (failingStore) Delete(context.Context, string) error { return errors.New("connection refused") }

func TestRevalidator_StoreFailureBypassed(t *testing.T) {
	r := NewRevalidator(failingStore{}, 0, zerolog.Nop())
	v, err := Fetch(context.Background(), r, "k", func(context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	r.Invalidate(context.Background(), "k")
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	ctx := context.Background()
	s, err := NewRedisStore(ctx, url, "kpp-test:")
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Ping(ctx))

	require.NoError(t, s.Set(ctx, "k", []byte("v"), time.Minute))
	data, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), data)

	require.NoError(t, s.Delete(ctx, "k"))
	_, ok, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
