package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hairizuan-noorazman/browser-agent/apitoken"
)

// stubTokenStore is an in-memory apitoken.Store for handler tests.
type stubTokenStore struct {
	tokens map[uuid.UUID]*apitoken.APIToken
}

func newStubTokenStore() *stubTokenStore {
	return &stubTokenStore{tokens: make(map[uuid.UUID]*apitoken.APIToken)}
}

// issue generates a token, stores it, and returns the raw value.
func (s *stubTokenStore) issue(t *testing.T, name, scope string) string {
	t.Helper()

	raw, id, hash, err := apitoken.Generate()
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	s.tokens[id] = &apitoken.APIToken{
		ID:         id,
		Name:       name,
		SecretHash: hash,
		Scope:      scope,
		ExpiresAt:  time.Now().Add(apitoken.DefaultExpiry),
		IsActive:   true,
		CreatedAt:  time.Now(),
	}

	return raw
}

func (s *stubTokenStore) Create(ctx context.Context, token *apitoken.APIToken) error {
	if err := token.Validate(); err != nil {
		return err
	}
	active := 0
	for _, t := range s.tokens {
		if t.IsActive {
			active++
		}
	}
	if active >= apitoken.MaxActiveTokens {
		return apitoken.ErrMaxTokensReached
	}
	token.CreatedAt = time.Now()
	s.tokens[token.ID] = token
	return nil
}

func (s *stubTokenStore) GetByID(ctx context.Context, id uuid.UUID) (*apitoken.APIToken, error) {
	token, ok := s.tokens[id]
	if !ok {
		return nil, apitoken.ErrTokenNotFound
	}
	copied := *token
	return &copied, nil
}

func (s *stubTokenStore) List(ctx context.Context) ([]*apitoken.APIToken, error) {
	var active []*apitoken.APIToken
	for _, token := range s.tokens {
		if token.IsActive {
			copied := *token
			active = append(active, &copied)
		}
	}
	return active, nil
}

func (s *stubTokenStore) CountActive(ctx context.Context) (int, error) {
	count := 0
	for _, token := range s.tokens {
		if token.IsActive {
			count++
		}
	}
	return count, nil
}

func (s *stubTokenStore) Revoke(ctx context.Context, id uuid.UUID) error {
	token, ok := s.tokens[id]
	if !ok {
		return apitoken.ErrTokenNotFound
	}
	token.IsActive = false
	return nil
}

func (s *stubTokenStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.tokens[id]; !ok {
		return apitoken.ErrTokenNotFound
	}
	delete(s.tokens, id)
	return nil
}
