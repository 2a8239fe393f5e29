package question

import (
	"context"

	"github.com/SlpAus/quiz-share-backend/internal/platform/kvstore"
)

// QuestionsKey holds []Question in insertion order.
const QuestionsKey = "fp_questions"

// LoadAll returns the stored questions in insertion order.
func LoadAll(ctx context.Context, kv *kvstore.Adapter) []Question {
	return kvstore.Read(ctx, kv, QuestionsKey, []Question{})
}

// FetchAll is LoadAll for read-modify-write paths: a backend failure is
// returned rather than read as an empty collection.
func FetchAll(ctx context.Context, kv *kvstore.Adapter) ([]Question, error) {
	return kvstore.Load(ctx, kv, QuestionsKey, []Question{})
}

// SaveAll replaces the whole collection. Callers must hold QuestionsKey.
func SaveAll(ctx context.Context, kv *kvstore.Adapter, questions []Question) error {
	return kvstore.Write(ctx, kv, QuestionsKey, questions)
}

// IndexOf returns the position of id in questions, or -1.
func IndexOf(questions []Question, id int) int {
	for i, q := range questions {
		if q.ID == id {
			return i
		}
	}
	return -1
}

func nextID(questions []Question) int {
	maxID := 0
	for _, q := range questions {
		if q.ID > maxID {
			maxID = q.ID
		}
	}
	return maxID + 1
}
