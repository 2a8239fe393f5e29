package api

import (
	"context"
	"net/http"

	"github.com/SlpAus/quiz-share-backend/internal/bookmark"
	"github.com/SlpAus/quiz-share-backend/internal/question"
	"github.com/SlpAus/quiz-share-backend/internal/user"
	"github.com/SlpAus/quiz-share-backend/internal/vote"
)

// Services bundles the domain services the route table calls into.
type Services struct {
	Users     *user.Service
	Questions *question.Service
	Votes     *vote.Service
	Bookmarks *bookmark.Service
}

// Routes is the application's route table.
func Routes(s Services) []Route {
	return []Route{
		{Method: http.MethodGet, Pattern: "/questions", Handle: s.listQuestions},
		{Method: http.MethodGet, Pattern: "/questions/{id}", Handle: s.getQuestion},
		{Method: http.MethodGet, Pattern: "/users/bookmarks", Auth: true, Handle: s.listBookmarks},
		{Method: http.MethodPost, Pattern: "/auth/register", Created: true, Handle: s.register},
		{Method: http.MethodPost, Pattern: "/auth/login", Handle: s.login},
		{Method: http.MethodPost, Pattern: "/questions", Auth: true, Created: true, Handle: s.addQuestion},
		{Method: http.MethodPost, Pattern: "/questions/{id}/vote", Auth: true, Handle: s.vote},
		{Method: http.MethodPost, Pattern: "/users/bookmark", Auth: true, Handle: s.addBookmark},
	}
}

// New builds the application router over s.
func New(s Services, opts ...Option) (*Router, error) {
	return NewRouter(s.Users, Routes(s), opts...)
}

func (s Services) listQuestions(ctx context.Context, _ *Call) (any, error) {
	return s.Questions.List(ctx), nil
}

func (s Services) getQuestion(ctx context.Context, call *Call) (any, error) {
	return s.Questions.Get(ctx, call.ID)
}

func (s Services) listBookmarks(ctx context.Context, call *Call) (any, error) {
	return s.Bookmarks.List(ctx, call.User.ID), nil
}

func (s Services) register(ctx context.Context, call *Call) (any, error) {
	req, err := decodeBody[user.RegisterRequest](call.Body)
	if err != nil {
		return nil, err
	}
	return s.Users.Register(ctx, req)
}

func (s Services) login(ctx context.Context, call *Call) (any, error) {
	req, err := decodeBody[user.LoginRequest](call.Body)
	if err != nil {
		return nil, err
	}
	return s.Users.Login(ctx, req)
}

func (s Services) addQuestion(ctx context.Context, call *Call) (any, error) {
	req, err := decodeBody[question.AddRequest](call.Body)
	if err != nil {
		return nil, err
	}
	return s.Questions.Add(ctx, call.User.ID, req)
}

func (s Services) vote(ctx context.Context, call *Call) (any, error) {
	return s.Votes.Vote(ctx, call.User.ID, call.ID)
}

func (s Services) addBookmark(ctx context.Context, call *Call) (any, error) {
	req, err := decodeBody[bookmark.AddRequest](call.Body)
	if err != nil {
		return nil, err
	}
	return s.Bookmarks.Add(ctx, call.User.ID, req)
}
