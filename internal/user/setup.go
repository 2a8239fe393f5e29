package user

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SlpAus/quiz-share-backend/internal/platform/kvstore"
)

// SeedUsers is written on first start when the users collection is absent.
// Login with test@test.com / test123.
func SeedUsers(now time.Time) []User {
	return []User{
		{ID: 1, Name: "Test User", Email: "test@test.com", Password: "test123", CreatedAt: now},
	}
}

// PrimeStore seeds the users collection and the token registry when absent.
func PrimeStore(ctx context.Context, kv *kvstore.Adapter) error {
	wrote, err := kvstore.SeedIfAbsent(ctx, kv, UsersKey, SeedUsers(time.Now()))
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}
	if wrote {
		slog.Info("seeded users collection")
	}
	if _, err := kvstore.SeedIfAbsent(ctx, kv, TokensKey, map[string]int{}); err != nil {
		return fmt.Errorf("failed to seed token registry: %w", err)
	}
	return nil
}

// Keys lists the collections this module owns.
func Keys() []string {
	return []string{UsersKey, TokensKey}
}
