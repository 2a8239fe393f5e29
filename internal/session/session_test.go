package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SlpAus/quiz-share-backend/internal/platform/kvstore"
	"github.com/SlpAus/quiz-share-backend/internal/user"
)

func TestSession_LoginPersistsAndRestores(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewAdapter(kvstore.NewMemoryStore())

	s := New(kv)
	assert.False(t, s.LoggedIn())
	assert.Nil(t, s.User())
	assert.Empty(t, s.Header(AuthorizationHeader))

	u := user.Public{ID: 1, Name: "Test User", Email: "test@test.com"}
	require.NoError(t, s.Login(ctx, u, "abc1234"))
	assert.True(t, s.LoggedIn())
	assert.Equal(t, "abc1234", s.Token())
	assert.Equal(t, "Bearer abc1234", s.Header(AuthorizationHeader))
	assert.Equal(t, &u, s.User())

	restored := New(kv)
	restored.Restore(ctx)
	assert.Equal(t, "abc1234", restored.Token())
	assert.Equal(t, &u, restored.User())
	assert.Equal(t, "Bearer abc1234", restored.Header(AuthorizationHeader))
}

func TestSession_Logout(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewAdapter(kvstore.NewMemoryStore())
	s := New(kv)

	require.NoError(t, s.Login(ctx, user.Public{ID: 2}, "tok0001"))
	require.NoError(t, s.Logout(ctx))

	assert.False(t, s.LoggedIn())
	assert.Nil(t, s.User())
	assert.Empty(t, s.Header(AuthorizationHeader))
	assert.Empty(t, s.PersistedToken(ctx))
	assert.False(t, kvstore.Present(ctx, kv, UserKey))

	// twice is fine
	require.NoError(t, s.Logout(ctx))

	restored := New(kv)
	restored.Restore(ctx)
	assert.False(t, restored.LoggedIn())
}

func TestSession_RestoreIgnoresCorruptUser(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewAdapter(kvstore.NewMemoryStore())
	require.NoError(t, kv.Store().Set(ctx, UserKey, []byte("{not json")))
	require.NoError(t, kvstore.Write(ctx, kv, TokenKey, "tok0002"))

	s := New(kv)
	s.Restore(ctx)
	assert.Nil(t, s.User())
	assert.Equal(t, "tok0002", s.Token())
	assert.Equal(t, "Bearer tok0002", s.Header(AuthorizationHeader))
}

func TestSession_HeadersIsACopy(t *testing.T) {
	ctx := context.Background()
	s := New(kvstore.NewAdapter(kvstore.NewMemoryStore()))
	require.NoError(t, s.Login(ctx, user.Public{ID: 1}, "tok0003"))

	h := s.Headers()
	h[AuthorizationHeader] = "tampered"
	assert.Equal(t, "Bearer tok0003", s.Header(AuthorizationHeader))
}

// failingStore fails every Set on failKey.
type failingStore struct {
	kvstore.Store
	failKey string
}

func (s *failingStore) Set(ctx context.Context, key string, value []byte) error {
	if key == s.failKey {
		return errors.New("disk full")
	}
	return s.Store.Set(ctx, key, value)
}

func TestSession_LoginFailureNeverPairsStaleRecords(t *testing.T) {
	ctx := context.Background()
	mem := kvstore.NewMemoryStore()
	first := user.Public{ID: 1, Name: "Test User", Email: "test@test.com"}
	require.NoError(t, New(kvstore.NewAdapter(mem)).Login(ctx, first, "old0000"))

	t.Run("user write fails", func(t *testing.T) {
		s := New(kvstore.NewAdapter(&failingStore{Store: mem, failKey: UserKey}))
		s.Restore(ctx)

		err := s.Login(ctx, user.Public{ID: 2, Name: "B", Email: "b@x"}, "new0000")
		require.Error(t, err)
		assert.Equal(t, "old0000", s.Token())
		assert.Equal(t, &first, s.User())

		restored := New(kvstore.NewAdapter(mem))
		restored.Restore(ctx)
		assert.Equal(t, "new0000", restored.Token())
		assert.Nil(t, restored.User())
	})

	t.Run("token write fails", func(t *testing.T) {
		require.NoError(t, New(kvstore.NewAdapter(mem)).Login(ctx, first, "old0000"))
		s := New(kvstore.NewAdapter(&failingStore{Store: mem, failKey: TokenKey}))

		err := s.Login(ctx, user.Public{ID: 2, Name: "B", Email: "b@x"}, "new0000")
		require.Error(t, err)

		restored := New(kvstore.NewAdapter(mem))
		restored.Restore(ctx)
		assert.Equal(t, "old0000", restored.Token())
		assert.Equal(t, &first, restored.User())
	})
}
