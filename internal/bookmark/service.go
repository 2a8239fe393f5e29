package bookmark

import (
	"context"

	"github.com/SlpAus/quiz-share-backend/internal/ledger"
	"github.com/SlpAus/quiz-share-backend/internal/platform/apperr"
	"github.com/SlpAus/quiz-share-backend/internal/platform/kvstore"
	"github.com/SlpAus/quiz-share-backend/internal/platform/validate"
	"github.com/SlpAus/quiz-share-backend/internal/question"
)

// Service manages per-user bookmarks.
type Service struct {
	kv        *kvstore.Adapter
	questions *question.Service
}

// NewService creates a bookmark Service. questions resolves bookmarked ids.
func NewService(kv *kvstore.Adapter, questions *question.Service) *Service {
	return &Service{kv: kv, questions: questions}
}

// Add bookmarks a question for userID. The question id is not checked
// against the pool; unknown ids simply never show up in List.
func (s *Service) Add(ctx context.Context, userID int, req AddRequest) (*Result, error) {
	if err := validate.Struct(req, "Missing questionId"); err != nil {
		return nil, err
	}

	unlock := s.kv.Lock(BookmarksKey)
	defer unlock()

	bookmarks, err := ledger.Fetch(ctx, s.kv, BookmarksKey)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Server error", err)
	}
	if !bookmarks.Add(userID, req.QuestionID) {
		return nil, apperr.New(apperr.Conflict, "Already bookmarked")
	}
	if err := ledger.Save(ctx, s.kv, BookmarksKey, bookmarks); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Server error", err)
	}
	return &Result{Msg: "Bookmarked"}, nil
}

// List returns the bookmarked questions of userID in pool order.
func (s *Service) List(ctx context.Context, userID int) []question.Question {
	ids := ledger.Load(ctx, s.kv, BookmarksKey).IDs(userID)
	return s.questions.Select(ctx, ids)
}
