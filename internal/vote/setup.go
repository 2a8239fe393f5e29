package vote

import (
	"context"
	"fmt"

	"github.com/SlpAus/quiz-share-backend/internal/ledger"
	"github.com/SlpAus/quiz-share-backend/internal/platform/kvstore"
)

// PrimeStore writes an empty vote ledger when absent.
func PrimeStore(ctx context.Context, kv *kvstore.Adapter) error {
	if _, err := kvstore.SeedIfAbsent(ctx, kv, VotesKey, ledger.Ledger{}); err != nil {
		return fmt.Errorf("failed to seed vote ledger: %w", err)
	}
	return nil
}

// Keys lists the collections this module owns.
func Keys() []string {
	return []string{VotesKey}
}
