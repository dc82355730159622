package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/set-night/tasksplit/internal/domain"
)

const (
	tokenPrefix  = "ts_"
	tokenLength  = 40
	tokenCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

type UserStore interface {
	UpsertUser(ctx context.Context, email string) (*domain.User, error)
	CreateAPIToken(ctx context.Context, userID uuid.UUID, tokenHash, label string) error
	UserByTokenHash(ctx context.Context, tokenHash string) (*domain.User, error)
	TouchToken(ctx context.Context, tokenHash string) error
}

type UserService struct {
	store UserStore
}

func NewUserService(store UserStore) *UserService {
	return &UserService{store: store}
}

// IssueToken creates the user if needed and returns a new bearer token.
// Only the token's hash is stored.
func (s *UserService) IssueToken(ctx context.Context, email, label string) (string, *domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return "", nil, fmt.Errorf("%w: invalid email %q", domain.ErrInvalidInput, email)
	}

	user, err := s.store.UpsertUser(ctx, email)
	if err != nil {
		return "", nil, err
	}

	token, err := generateToken()
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}

	if err := s.store.CreateAPIToken(ctx, user.ID, HashToken(token), label); err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// ResolveUser returns the user owning token.
func (s *UserService) ResolveUser(ctx context.Context, token string) (*domain.User, error) {
	if !strings.HasPrefix(token, tokenPrefix) {
		return nil, domain.ErrUnauthorized
	}

	hash := HashToken(token)
	user, err := s.store.UserByTokenHash(ctx, hash)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("resolve token: %w", err)
	}

	if err := s.store.TouchToken(ctx, hash); err != nil {
		slog.Warn("failed to touch api token", "user_id", user.ID, "error", err)
	}
	return user, nil
}

func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func generateToken() (string, error) {
	code := make([]byte, tokenLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(tokenCharset))))
		if err != nil {
			return "", fmt.Errorf("random int: %w", err)
		}
		code[i] = tokenCharset[n.Int64()]
	}
	return tokenPrefix + string(code), nil
}
