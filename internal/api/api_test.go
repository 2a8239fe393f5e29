package api

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SlpAus/quiz-share-backend/internal/bookmark"
	"github.com/SlpAus/quiz-share-backend/internal/platform/kvstore"
	"github.com/SlpAus/quiz-share-backend/internal/question"
	"github.com/SlpAus/quiz-share-backend/internal/user"
	"github.com/SlpAus/quiz-share-backend/internal/vote"
)

type testApp struct {
	kv       *kvstore.Adapter
	services Services
	router   *Router
}

func newTestApp(t *testing.T, opts ...Option) *testApp {
	t.Helper()
	ctx := context.Background()
	kv := kvstore.NewAdapter(kvstore.NewMemoryStore())
	for _, prime := range []func(context.Context, *kvstore.Adapter) error{
		user.PrimeStore, question.PrimeStore, vote.PrimeStore, bookmark.PrimeStore,
	} {
		require.NoError(t, prime(ctx, kv))
	}

	questions := question.NewService(kv)
	services := Services{
		Users:     user.NewService(kv),
		Questions: questions,
		Votes:     vote.NewService(kv),
		Bookmarks: bookmark.NewService(kv, questions),
	}
	router, err := New(services, opts...)
	require.NoError(t, err)
	return &testApp{kv: kv, services: services, router: router}
}

// token logs the seeded test user in and returns a fresh token.
func (a *testApp) token(t *testing.T) string {
	t.Helper()
	res, err := a.services.Users.Login(context.Background(), user.LoginRequest{Email: "test@test.com", Password: "test123"})
	require.NoError(t, err)
	return res.Token
}

func questionIDs(t *testing.T, data any) []int {
	t.Helper()
	qs, ok := data.([]question.Question)
	require.True(t, ok, "unexpected payload %T", data)
	out := make([]int, 0, len(qs))
	for _, q := range qs {
		out = append(out, q.ID)
	}
	return out
}
