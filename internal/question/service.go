package question

import (
	"context"
	"log/slog"
	"slices"
	"sort"
	"time"

	"github.com/SlpAus/quiz-share-backend/internal/platform/apperr"
	"github.com/SlpAus/quiz-share-backend/internal/platform/kvstore"
	"github.com/SlpAus/quiz-share-backend/internal/platform/validate"
)

// Service owns the question collection.
type Service struct {
	kv  *kvstore.Adapter
	now func() time.Time
}

// NewService creates a question Service on kv.
func NewService(kv *kvstore.Adapter) *Service {
	return &Service{kv: kv, now: time.Now}
}

// List returns every question ordered by votes, highest first. Ties keep
// insertion order.
func (s *Service) List(ctx context.Context) []Question {
	questions := LoadAll(ctx, s.kv)
	sort.SliceStable(questions, func(i, j int) bool {
		return questions[i].Votes > questions[j].Votes
	})
	return questions
}

// Get returns a single question.
func (s *Service) Get(ctx context.Context, id int) (*Question, error) {
	questions := LoadAll(ctx, s.kv)
	idx := IndexOf(questions, id)
	if idx < 0 {
		return nil, apperr.New(apperr.NotFound, "Question not found")
	}
	return &questions[idx], nil
}

// Select returns the questions whose id is in ids, in collection order.
// Unknown ids are skipped.
func (s *Service) Select(ctx context.Context, ids []int) []Question {
	rows := []Question{}
	if len(ids) == 0 {
		return rows
	}
	for _, q := range LoadAll(ctx, s.kv) {
		if slices.Contains(ids, q.ID) {
			rows = append(rows, q)
		}
	}
	return rows
}

// Add stores a new question authored by userID and returns its id.
func (s *Service) Add(ctx context.Context, userID int, req AddRequest) (*AddResult, error) {
	if err := validate.Struct(req, "Missing fields"); err != nil {
		return nil, err
	}

	unlock := s.kv.Lock(QuestionsKey)
	defer unlock()

	questions, err := FetchAll(ctx, s.kv)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Server error", err)
	}
	q := Question{
		ID:            nextID(questions),
		QuestionText:  req.QuestionText,
		OptionA:       req.OptionA,
		OptionB:       req.OptionB,
		OptionC:       req.OptionC,
		OptionD:       req.OptionD,
		CorrectOption: req.CorrectOption,
		Category:      req.Category,
		Difficulty:    req.Difficulty,
		Votes:         0,
		CreatedBy:     userID,
		CreatedAt:     s.now(),
	}
	if q.Category == "" {
		q.Category = DefaultCategory
	}
	if q.Difficulty == "" {
		q.Difficulty = DefaultDifficulty
	}

	if err := SaveAll(ctx, s.kv, append(questions, q)); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Server error", err)
	}
	slog.Info("question added", "questionID", q.ID, "userID", userID)
	return &AddResult{Msg: "Question added", ID: q.ID}, nil
}
