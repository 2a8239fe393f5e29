package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SlpAus/quiz-share-backend/internal/platform/config"
	"github.com/SlpAus/quiz-share-backend/internal/platform/kvstore"
)

func TestOpenStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	testCases := []struct {
		name string
		cfg  config.StorageConfig
		want any
	}{
		{
			name: "memory",
			cfg:  config.StorageConfig{Backend: config.BackendMemory},
			want: &kvstore.MemoryStore{},
		},
		{
			name: "sqlite",
			cfg: config.StorageConfig{
				Backend: config.BackendSqlite,
				Sqlite:  config.SqliteConfig{Path: filepath.Join(t.TempDir(), "quiz.db")},
			},
			want: &kvstore.GormStore{},
		},
		{
			name: "redis",
			cfg: config.StorageConfig{
				Backend: config.BackendRedis,
				Redis:   config.RedisConfig{Address: mr.Addr(), KeyPrefix: "quiz:"},
			},
			want: &kvstore.RedisStore{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store, closeFn, err := OpenStore(ctx, tc.cfg)
			require.NoError(t, err)
			defer func() { assert.NoError(t, closeFn()) }()

			assert.IsType(t, tc.want, store)
			require.NoError(t, store.Set(ctx, "k", []byte("1")))
			got, err := store.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, "1", string(got))
		})
	}
}

func TestOpenStore_Errors(t *testing.T) {
	ctx := context.Background()

	_, _, err := OpenStore(ctx, config.StorageConfig{Backend: "etcd"})
	assert.Error(t, err)

	_, _, err = OpenStore(ctx, config.StorageConfig{
		Backend: config.BackendRedis,
		Redis:   config.RedisConfig{Address: "127.0.0.1:1"},
	})
	assert.Error(t, err)
}
