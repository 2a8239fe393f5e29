package vote

import (
	"context"
	"log/slog"
	"slices"

	"github.com/SlpAus/quiz-share-backend/internal/ledger"
	"github.com/SlpAus/quiz-share-backend/internal/platform/apperr"
	"github.com/SlpAus/quiz-share-backend/internal/platform/kvstore"
	"github.com/SlpAus/quiz-share-backend/internal/question"
)

// Service records upvotes. A user can vote for a question once.
type Service struct {
	kv *kvstore.Adapter
}

// NewService creates a vote Service on kv.
func NewService(kv *kvstore.Adapter) *Service {
	return &Service{kv: kv}
}

// Vote adds userID's vote to questionID. All checks run before anything is
// written; the question counter is written first and reverted if the
// ledger write fails.
func (s *Service) Vote(ctx context.Context, userID, questionID int) (*Result, error) {
	unlock := s.kv.Lock(question.QuestionsKey, VotesKey)
	defer unlock()

	votes, err := ledger.Fetch(ctx, s.kv, VotesKey)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Server error", err)
	}
	if votes.Has(userID, questionID) {
		return nil, apperr.New(apperr.Conflict, "Already voted")
	}

	questions, err := question.FetchAll(ctx, s.kv)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Server error", err)
	}
	idx := question.IndexOf(questions, questionID)
	if idx < 0 {
		return nil, apperr.New(apperr.NotFound, "Question not found")
	}

	updated := slices.Clone(questions)
	updated[idx].Votes++
	if err := question.SaveAll(ctx, s.kv, updated); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Server error", err)
	}

	votes.Add(userID, questionID)
	if err := ledger.Save(ctx, s.kv, VotesKey, votes); err != nil {
		slog.Warn("vote ledger write failed, reverting question counter",
			"questionID", questionID, "userID", userID, "err", err)
		s.revertQuestions(ctx, questions)
		return nil, apperr.Wrap(apperr.Internal, "Server error", err)
	}

	return &Result{Msg: "Voted successfully"}, nil
}

// HasVoted reports whether userID already voted for questionID.
func (s *Service) HasVoted(ctx context.Context, userID, questionID int) bool {
	return ledger.Load(ctx, s.kv, VotesKey).Has(userID, questionID)
}

func (s *Service) revertQuestions(ctx context.Context, previous []question.Question) {
	if err := question.SaveAll(ctx, s.kv, previous); err != nil {
		slog.Error("failed to revert question counter", "err", err)
	}
}
