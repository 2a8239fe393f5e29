package user

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SlpAus/quiz-share-backend/internal/platform/apperr"
	"github.com/SlpAus/quiz-share-backend/internal/platform/kvstore"
	"github.com/SlpAus/quiz-share-backend/internal/platform/validate"
	"github.com/SlpAus/quiz-share-backend/pkg/token"
)

const maxTokenAttempts = 8

// Service owns the users collection and the token registry.
type Service struct {
	kv  *kvstore.Adapter
	now func() time.Time
}

// NewService creates a user Service on kv.
func NewService(kv *kvstore.Adapter) *Service {
	return &Service{kv: kv, now: time.Now}
}

// Register creates a user and issues its first token.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	if err := validate.Struct(req, "Missing fields"); err != nil {
		return nil, err
	}

	unlock := s.kv.Lock(UsersKey, TokensKey)
	defer unlock()

	users, err := fetchUsers(ctx, s.kv)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Server error", err)
	}
	if _, exists := findByEmail(users, req.Email); exists {
		return nil, apperr.New(apperr.Conflict, "User already exists")
	}

	newUser := User{
		ID:        nextID(users),
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		CreatedAt: s.now(),
	}
	previous := users
	users = append(append([]User{}, users...), newUser)
	if err := saveUsers(ctx, s.kv, users); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Server error", err)
	}

	tok, err := s.issueTokenLocked(ctx, newUser.ID)
	if err != nil {
		if rbErr := saveUsers(ctx, s.kv, previous); rbErr != nil {
			slog.Error("failed to roll back user registration", "userID", newUser.ID, "err", rbErr)
		}
		return nil, err
	}

	slog.Info("user registered", "userID", newUser.ID)
	return &AuthResult{Token: tok, User: newUser.Public()}, nil
}

// Login checks credentials and issues a fresh token.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	if err := validate.Struct(req, "Missing fields"); err != nil {
		return nil, err
	}

	users, err := fetchUsers(ctx, s.kv)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Server error", err)
	}
	u, ok := findByEmail(users, req.Email)
	if !ok {
		return nil, apperr.New(apperr.NotFound, "User not found")
	}
	if u.Password != req.Password {
		return nil, apperr.New(apperr.Unauthorized, "Invalid credentials")
	}

	tok, err := s.IssueToken(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: tok, User: u.Public()}, nil
}

// IssueToken registers a new token for userID.
func (s *Service) IssueToken(ctx context.Context, userID int) (string, error) {
	unlock := s.kv.Lock(TokensKey)
	defer unlock()
	return s.issueTokenLocked(ctx, userID)
}

// issueTokenLocked must be called with TokensKey held.
func (s *Service) issueTokenLocked(ctx context.Context, userID int) (string, error) {
	tokens, err := fetchTokens(ctx, s.kv)
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, "Server error", err)
	}

	var tok string
	for attempt := 0; ; attempt++ {
		if attempt == maxTokenAttempts {
			return "", apperr.Wrap(apperr.Internal, "Server error",
				fmt.Errorf("no free token after %d attempts", maxTokenAttempts))
		}
		t, err := token.New()
		if err != nil {
			return "", apperr.Wrap(apperr.Internal, "Server error", err)
		}
		if _, taken := tokens[t]; !taken {
			tok = t
			break
		}
	}

	tokens[tok] = userID
	if err := saveTokens(ctx, s.kv, tokens); err != nil {
		return "", apperr.Wrap(apperr.Internal, "Server error", err)
	}
	return tok, nil
}

// ResolveToken returns the user tok belongs to, or nil when tok is empty,
// unknown, or points at a user that no longer exists.
func (s *Service) ResolveToken(ctx context.Context, tok string) (*User, error) {
	if tok == "" {
		return nil, nil
	}
	userID, ok := loadTokens(ctx, s.kv)[tok]
	if !ok {
		return nil, nil
	}
	u, ok := findByID(loadUsers(ctx, s.kv), userID)
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// Count returns the number of registered users.
func (s *Service) Count(ctx context.Context) int {
	return len(loadUsers(ctx, s.kv))
}
