package kvstore

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newSqliteStore(t *testing.T) *GormStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "kv.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	store, err := NewGormStore(db)
	require.NoError(t, err)
	return store
}

func newRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, "test:")
}

func backends(t *testing.T) map[string]Store {
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": newSqliteStore(t),
		"redis":  newRedisStore(t),
	}
}

func TestStore_Conformance(t *testing.T) {
	ctx := context.Background()

	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, store.Set(ctx, "k", []byte(`{"a":1}`)))
			got, err := store.Get(ctx, "k")
			require.NoError(t, err)
			assert.JSONEq(t, `{"a":1}`, string(got))

			require.NoError(t, store.Set(ctx, "k", []byte(`[1,2]`)))
			got, err = store.Get(ctx, "k")
			require.NoError(t, err)
			assert.JSONEq(t, `[1,2]`, string(got))

			require.NoError(t, store.Delete(ctx, "k"))
			_, err = store.Get(ctx, "k")
			assert.ErrorIs(t, err, ErrNotFound)

			// deleting twice is harmless
			assert.NoError(t, store.Delete(ctx, "k"))
		})
	}
}

func TestRedisStore_UsesPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	store := NewRedisStore(client, "quiz:")

	require.NoError(t, store.Set(context.Background(), "fp_users", []byte("[]")))

	v, err := mr.Get("quiz:fp_users")
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
}

func TestRead_Fallbacks(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	a := NewAdapter(store)
	fallback := map[string]int{"fallback": 1}

	testCases := []struct {
		name string
		raw  *string
	}{
		{name: "absent"},
		{name: "empty", raw: ptr("")},
		{name: "null", raw: ptr("null")},
		{name: "malformed", raw: ptr("{not json")},
		{name: "wrong shape", raw: ptr(`[1,2,3]`)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_ = store.Delete(ctx, "k")
			if tc.raw != nil {
				require.NoError(t, store.Set(ctx, "k", []byte(*tc.raw)))
			}
			assert.Equal(t, fallback, Read(ctx, a, "k", fallback))
		})
	}
}

// unreadableStore fails every Get on one key while accepting writes.
type unreadableStore struct {
	Store
	key string
}

func (s *unreadableStore) Get(ctx context.Context, key string) ([]byte, error) {
	if key == s.key {
		return nil, errors.New("database is locked")
	}
	return s.Store.Get(ctx, key)
}

func TestLoad_ReportsBackendFailures(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	require.NoError(t, mem.Set(ctx, "fp_users", []byte(`[1,2]`)))
	a := NewAdapter(&unreadableStore{Store: mem, key: "fp_users"})

	got, err := Load(ctx, a, "fp_users", []int{})
	require.Error(t, err)
	assert.Empty(t, got)
	assert.Equal(t, []int{}, Read(ctx, a, "fp_users", []int{}))

	got, err = Load(ctx, a, "fp_missing", []int{7})
	require.NoError(t, err)
	assert.Equal(t, []int{7}, got)

	_, err = Exists(ctx, a, "fp_users")
	require.Error(t, err)
	assert.False(t, Present(ctx, a, "fp_users"))

	wrote, err := SeedIfAbsent(ctx, a, "fp_users", []int{})
	require.Error(t, err)
	assert.False(t, wrote)
	raw, err := mem.Get(ctx, "fp_users")
	require.NoError(t, err)
	assert.Equal(t, `[1,2]`, string(raw))
}

func TestWriteRead_RoundTrip(t *testing.T) {
	ctx := context.Background()
	a := NewAdapter(NewMemoryStore())

	type item struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, Write(ctx, a, "items", []item{{ID: 1, Name: "one"}}))

	got := Read(ctx, a, "items", []item(nil))
	assert.Equal(t, []item{{ID: 1, Name: "one"}}, got)
	assert.True(t, Present(ctx, a, "items"))

	require.NoError(t, Remove(ctx, a, "items"))
	assert.False(t, Present(ctx, a, "items"))
}

func TestSeedIfAbsent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	a := NewAdapter(store)

	wrote, err := SeedIfAbsent(ctx, a, "fp_votes", map[string][]int{})
	require.NoError(t, err)
	assert.True(t, wrote)

	require.NoError(t, Write(ctx, a, "fp_votes", map[string][]int{"1": {2}}))
	wrote, err = SeedIfAbsent(ctx, a, "fp_votes", map[string][]int{})
	require.NoError(t, err)
	assert.False(t, wrote)
	assert.Equal(t, map[string][]int{"1": {2}}, Read(ctx, a, "fp_votes", map[string][]int(nil)))

	// corrupt values are replaced by the seed
	require.NoError(t, store.Set(ctx, "fp_votes", []byte("{oops")))
	wrote, err = SeedIfAbsent(ctx, a, "fp_votes", map[string][]int{})
	require.NoError(t, err)
	assert.True(t, wrote)
}

func TestLock_SerializesReadModifyWrite(t *testing.T) {
	ctx := context.Background()
	a := NewAdapter(NewMemoryStore())
	require.NoError(t, Write(ctx, a, "counter", 0))

	const workers = 20
	const perWorker = 25
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				// alternate argument order to exercise sorted acquisition
				var unlock func()
				if i%2 == 0 {
					unlock = a.Lock("counter", "other")
				} else {
					unlock = a.Lock("other", "counter", "counter")
				}
				n := Read(ctx, a, "counter", 0)
				_ = Write(ctx, a, "counter", n+1)
				unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, workers*perWorker, Read(ctx, a, "counter", 0))
}

func TestGormStore_InstanceID(t *testing.T) {
	id, err := newSqliteStore(t).InstanceID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sqlite", id)
}

func ptr(s string) *string { return &s }
