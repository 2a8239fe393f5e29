package question

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SlpAus/quiz-share-backend/internal/platform/kvstore"
)

// SeedQuestions is the pool written on first start.
func SeedQuestions(now time.Time) []Question {
	return []Question{
		{
			ID:            1,
			QuestionText:  "What is React?",
			OptionA:       "JS library",
			OptionB:       "Framework",
			OptionC:       "Language",
			OptionD:       "Database",
			CorrectOption: "A",
			Category:      "Frontend",
			Difficulty:    "Easy",
			Votes:         3,
			CreatedBy:     1,
			CreatedAt:     now,
		},
		{
			ID:            2,
			QuestionText:  "What is Node.js?",
			OptionA:       "JS runtime",
			OptionB:       "Framework",
			OptionC:       "Language",
			OptionD:       "Database",
			CorrectOption: "A",
			Category:      "Backend",
			Difficulty:    "Easy",
			Votes:         1,
			CreatedBy:     1,
			CreatedAt:     now,
		},
	}
}

// PrimeStore seeds the question pool when absent.
func PrimeStore(ctx context.Context, kv *kvstore.Adapter) error {
	wrote, err := kvstore.SeedIfAbsent(ctx, kv, QuestionsKey, SeedQuestions(time.Now()))
	if err != nil {
		return fmt.Errorf("failed to seed questions: %w", err)
	}
	if wrote {
		slog.Info("seeded question pool")
	}
	return nil
}

// Keys lists the collections this module owns.
func Keys() []string {
	return []string{QuestionsKey}
}
