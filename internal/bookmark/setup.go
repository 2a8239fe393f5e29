package bookmark

import (
	"context"
	"fmt"

	"github.com/SlpAus/quiz-share-backend/internal/ledger"
	"github.com/SlpAus/quiz-share-backend/internal/platform/kvstore"
)

// PrimeStore writes an empty bookmark ledger when absent.
func PrimeStore(ctx context.Context, kv *kvstore.Adapter) error {
	if _, err := kvstore.SeedIfAbsent(ctx, kv, BookmarksKey, ledger.Ledger{}); err != nil {
		return fmt.Errorf("failed to seed bookmark ledger: %w", err)
	}
	return nil
}

// Keys lists the collections this module owns.
func Keys() []string {
	return []string{BookmarksKey}
}
