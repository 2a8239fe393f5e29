package api

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SlpAus/quiz-share-backend/internal/bookmark"
	"github.com/SlpAus/quiz-share-backend/internal/platform/apperr"
	"github.com/SlpAus/quiz-share-backend/internal/platform/kvstore"
	"github.com/SlpAus/quiz-share-backend/internal/question"
	"github.com/SlpAus/quiz-share-backend/internal/session"
	"github.com/SlpAus/quiz-share-backend/internal/user"
	"github.com/SlpAus/quiz-share-backend/internal/vote"
)

func (a *testApp) client() *Client {
	return NewClient(a.router, session.New(a.kv))
}

func votesOf(t *testing.T, c *Client, id int) int {
	t.Helper()
	resp, err := c.Get(context.Background(), "/questions/"+strconv.Itoa(id))
	require.NoError(t, err)
	return resp.Data.(*question.Question).Votes
}

func TestClient_EndToEndScenario(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)
	c := app.client()

	_, err := c.Register(ctx, user.RegisterRequest{Name: "U", Email: "u@x", Password: "pw"})
	require.NoError(t, err)
	require.NoError(t, c.Logout(ctx))

	res, err := c.Login(ctx, user.LoginRequest{Email: "u@x", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, res.Token, c.Session().Token())

	resp, err := c.Post(ctx, "/questions/2/vote", nil)
	require.NoError(t, err)
	assert.Equal(t, &vote.Result{Msg: "Voted successfully"}, resp.Data)
	assert.Equal(t, 2, votesOf(t, c, 2))

	resp, err = c.Get(ctx, "/questions")
	require.NoError(t, err)
	qs := resp.Data.([]question.Question)
	require.Len(t, qs, 2)
	assert.Equal(t, 1, qs[0].ID)
	assert.Equal(t, 3, qs[0].Votes)
	assert.Equal(t, 2, qs[1].ID)
	assert.Equal(t, 2, qs[1].Votes)

	_, err = c.Post(ctx, "/questions/2/vote", nil)
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, "Already voted", Message(err, ""))
	assert.Equal(t, 2, votesOf(t, c, 2))
}

func TestClient_VoteReordersList(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)
	c := app.client()

	_, err := c.Login(ctx, user.LoginRequest{Email: "test@test.com", Password: "test123"})
	require.NoError(t, err)

	// give question 2 three more votes from fresh accounts
	for _, email := range []string{"a@x", "b@x", "c@x"} {
		other := app.client()
		_, err := other.Register(ctx, user.RegisterRequest{Name: email, Email: email, Password: "p"})
		require.NoError(t, err)
		_, err = other.Post(ctx, "/questions/2/vote", nil)
		require.NoError(t, err)
	}

	resp, err := c.Get(ctx, "/questions")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, questionIDs(t, resp.Data))
}

func TestClient_DuplicateRegister(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)
	c := app.client()

	_, err := c.Register(ctx, user.RegisterRequest{Name: "A", Email: "dup@x", Password: "p"})
	require.NoError(t, err)
	count := app.services.Users.Count(ctx)

	_, err = c.Register(ctx, user.RegisterRequest{Name: "B", Email: "dup@x", Password: "q"})
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, "User already exists", Message(err, ""))
	assert.Equal(t, count, app.services.Users.Count(ctx))
}

func TestClient_LoginResolvesToSameUser(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)
	c := app.client()

	_, err := c.Login(ctx, user.LoginRequest{Email: "test@test.com", Password: "bad"})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	assert.False(t, c.Session().LoggedIn())

	res, err := c.Login(ctx, user.LoginRequest{Email: "test@test.com", Password: "test123"})
	require.NoError(t, err)
	u, err := app.services.Users.ResolveToken(ctx, res.Token)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, res.User.ID, u.ID)
}

func TestClient_BookmarkRoundTrip(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)
	c := app.client()
	_, err := c.Login(ctx, user.LoginRequest{Email: "test@test.com", Password: "test123"})
	require.NoError(t, err)

	resp, err := c.Post(ctx, "/users/bookmark", bookmark.AddRequest{QuestionID: 2})
	require.NoError(t, err)
	assert.Equal(t, &bookmark.Result{Msg: "Bookmarked"}, resp.Data)

	_, err = c.Post(ctx, "/users/bookmark", map[string]int{"questionId": 2})
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, "Already bookmarked", Message(err, ""))

	resp, err = c.Get(ctx, "/users/bookmarks")
	require.NoError(t, err)
	assert.Equal(t, []int{2}, questionIDs(t, resp.Data))
}

func TestClient_AddQuestion(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)
	c := app.client()
	_, err := c.Login(ctx, user.LoginRequest{Email: "test@test.com", Password: "test123"})
	require.NoError(t, err)

	_, err = c.Post(ctx, "/questions", question.AddRequest{OptionA: "a", OptionB: "b", OptionC: "c", OptionD: "d", CorrectOption: "A"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Len(t, app.services.Questions.List(ctx), 2)

	resp, err := c.Post(ctx, "/questions", question.AddRequest{
		QuestionText: "What is Go?", OptionA: "a", OptionB: "b", OptionC: "c", OptionD: "d", CorrectOption: "B",
	})
	require.NoError(t, err)
	assert.Equal(t, &question.AddResult{Msg: "Question added", ID: 3}, resp.Data)
	assert.Equal(t, 0, votesOf(t, c, 3))
}

func TestClient_TokenSources(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)
	tok := app.token(t)

	// no session state at all
	c := app.client()
	_, err := c.Get(ctx, "/users/bookmarks")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	// persisted token only, session never restored
	require.NoError(t, kvstore.Write(ctx, app.kv, session.TokenKey, tok))
	_, err = c.Get(ctx, "/users/bookmarks")
	assert.NoError(t, err)

	// the header wins over the persisted token
	require.NoError(t, c.Session().Login(ctx, user.Public{ID: 1}, "stale00"))
	require.NoError(t, kvstore.Write(ctx, app.kv, session.TokenKey, tok))
	_, err = c.Get(ctx, "/users/bookmarks")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestClient_LogoutKeepsTokenValidServerSide(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)
	c := app.client()

	res, err := c.Login(ctx, user.LoginRequest{Email: "test@test.com", Password: "test123"})
	require.NoError(t, err)
	require.NoError(t, c.Logout(ctx))

	_, err = c.Get(ctx, "/users/bookmarks")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	u, err := app.services.Users.ResolveToken(ctx, res.Token)
	require.NoError(t, err)
	assert.NotNil(t, u)
}

// unwritableStore rejects every Set.
type unwritableStore struct {
	kvstore.Store
}

func (unwritableStore) Set(context.Context, string, []byte) error {
	return errors.New("read-only file system")
}

func TestClient_RegisterReturnsResultWhenSessionNotSaved(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)
	sess := session.New(kvstore.NewAdapter(unwritableStore{Store: kvstore.NewMemoryStore()}))
	c := NewClient(app.router, sess)

	res, err := c.Register(ctx, user.RegisterRequest{Name: "A", Email: "a@x", Password: "p"})
	require.ErrorIs(t, err, ErrSessionNotSaved)
	require.NotNil(t, res)
	assert.False(t, sess.LoggedIn())

	u, err := app.services.Users.ResolveToken(ctx, res.Token)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "a@x", u.Email)

	require.NoError(t, session.New(app.kv).Login(ctx, res.User, res.Token))
}
