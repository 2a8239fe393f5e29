// Package ledger stores per-user sets of question ids, as used by the vote
// and bookmark collections.
package ledger

import (
	"context"
	"slices"
	"strconv"

	"github.com/SlpAus/quiz-share-backend/internal/platform/kvstore"
)

// Ledger maps a user id (as a decimal string, the JSON object key) to the
// question ids recorded for that user in insertion order.
type Ledger map[string][]int

func userKey(userID int) string {
	return strconv.Itoa(userID)
}

// Load reads the ledger at key. A missing or unreadable value yields an
// empty ledger.
func Load(ctx context.Context, kv *kvstore.Adapter, key string) Ledger {
	l := kvstore.Read(ctx, kv, key, Ledger{})
	if l == nil {
		l = Ledger{}
	}
	return l
}

// Fetch is Load for read-modify-write paths: a backend failure is returned
// rather than read as an empty ledger.
func Fetch(ctx context.Context, kv *kvstore.Adapter, key string) (Ledger, error) {
	l, err := kvstore.Load(ctx, kv, key, Ledger{})
	if l == nil {
		l = Ledger{}
	}
	return l, err
}

// Save writes l to key. Callers must hold key.
func Save(ctx context.Context, kv *kvstore.Adapter, key string, l Ledger) error {
	return kvstore.Write(ctx, kv, key, l)
}

// Has reports whether questionID is recorded for userID.
func (l Ledger) Has(userID, questionID int) bool {
	return slices.Contains(l[userKey(userID)], questionID)
}

// Add records questionID for userID. It returns false if it was already
// present.
func (l Ledger) Add(userID, questionID int) bool {
	if l.Has(userID, questionID) {
		return false
	}
	k := userKey(userID)
	l[k] = append(l[k], questionID)
	return true
}

// IDs returns a copy of the ids recorded for userID.
func (l Ledger) IDs(userID int) []int {
	return slices.Clone(l[userKey(userID)])
}
