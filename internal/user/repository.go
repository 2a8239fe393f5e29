package user

import (
	"context"

	"github.com/SlpAus/quiz-share-backend/internal/platform/kvstore"
)

const (
	// UsersKey holds []User in insertion order.
	UsersKey = "fp_users"

	// TokensKey holds the token registry, map[token]userID.
	TokensKey = "fp_tokens"
)

func loadUsers(ctx context.Context, kv *kvstore.Adapter) []User {
	return kvstore.Read(ctx, kv, UsersKey, []User{})
}

// fetchUsers is loadUsers for read-modify-write paths: a backend failure
// is returned rather than read as an empty collection.
func fetchUsers(ctx context.Context, kv *kvstore.Adapter) ([]User, error) {
	return kvstore.Load(ctx, kv, UsersKey, []User{})
}

func saveUsers(ctx context.Context, kv *kvstore.Adapter, users []User) error {
	return kvstore.Write(ctx, kv, UsersKey, users)
}

func loadTokens(ctx context.Context, kv *kvstore.Adapter) map[string]int {
	tokens := kvstore.Read(ctx, kv, TokensKey, map[string]int{})
	if tokens == nil {
		tokens = map[string]int{}
	}
	return tokens
}

func fetchTokens(ctx context.Context, kv *kvstore.Adapter) (map[string]int, error) {
	tokens, err := kvstore.Load(ctx, kv, TokensKey, map[string]int{})
	if tokens == nil {
		tokens = map[string]int{}
	}
	return tokens, err
}

func saveTokens(ctx context.Context, kv *kvstore.Adapter, tokens map[string]int) error {
	return kvstore.Write(ctx, kv, TokensKey, tokens)
}

func findByEmail(users []User, email string) (User, bool) {
	for _, u := range users {
		if u.Email == email {
			return u, true
		}
	}
	return User{}, false
}

func findByID(users []User, id int) (User, bool) {
	for _, u := range users {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}

func nextID(users []User) int {
	maxID := 0
	for _, u := range users {
		if u.ID > maxID {
			maxID = u.ID
		}
	}
	return maxID + 1
}
