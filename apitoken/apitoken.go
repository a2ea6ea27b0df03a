// Package apitoken issues and verifies the bearer tokens that protect
// the HTTP API. A raw token carries its own ID so verification is a
// primary-key lookup plus a bcrypt comparison; only the bcrypt hash of
// the secret half is ever stored.
package apitoken

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrTokenNotFound    = errors.New("api token not found")
	ErrInvalidTokenName = errors.New("token name is required")
	ErrInvalidScope     = errors.New("invalid scope: must be read_only or read_write")
	ErrMalformedToken   = errors.New("malformed api token")
	ErrTokenRevoked     = errors.New("api token revoked")
	ErrTokenExpired     = errors.New("api token expired")
	ErrMaxTokensReached = errors.New("maximum number of active tokens reached")
)

const (
	ScopeReadOnly  = "read_only"
	ScopeReadWrite = "read_write"

	// tokenPrefix marks raw tokens so leaked strings are identifiable.
	tokenPrefix = "bat_"

	MaxActiveTokens = 20

	DefaultExpiry = 30 * 24 * time.Hour  // 1 month
	MinExpiry     = 24 * time.Hour       // 1 day
	MaxExpiry     = 365 * 24 * time.Hour // 1 year
)

// APIToken represents a bearer token for programmatic access.
type APIToken struct {
	ID         uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Name       string    `json:"name" gorm:"not null"`
	SecretHash string    `json:"-" gorm:"type:varchar(60);not null"`
	Scope      string    `json:"scope" gorm:"type:varchar(20);not null;default:read_only"`
	ExpiresAt  time.Time `json:"expires_at" gorm:"not null"`
	IsActive   bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName returns the database table name.
func (APIToken) TableName() string {
	return "api_tokens"
}

// BeforeCreate hook to generate UUID before creating a new token.
func (t *APIToken) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Validate checks if the token has valid required fields.
func (t *APIToken) Validate() error {
	if t.Name == "" {
		return ErrInvalidTokenName
	}
	if t.Scope != ScopeReadOnly && t.Scope != ScopeReadWrite {
		return ErrInvalidScope
	}
	if t.SecretHash == "" {
		return errors.New("secret_hash is required")
	}
	return nil
}

// IsExpired returns true if the token has expired.
func (t *APIToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

// Verify checks a raw secret against the stored hash and the token's
// active and expiry state.
func (t *APIToken) Verify(secret string) error {
	if !t.IsActive {
		return ErrTokenRevoked
	}
	if t.IsExpired() {
		return ErrTokenExpired
	}
	if err := bcrypt.CompareHashAndPassword([]byte(t.SecretHash), []byte(secret)); err != nil {
		return ErrTokenNotFound
	}
	return nil
}

// CanWrite reports whether the token's scope permits mutations.
func (t *APIToken) CanWrite() bool {
	return t.Scope == ScopeReadWrite
}

// Generate creates a new random token. The raw string embeds the token ID
// so verification can look the record up directly; the returned hash is
// the bcrypt digest of the secret half.
func Generate() (rawToken string, id uuid.UUID, secretHash string, err error) {
	id = uuid.New()

	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", uuid.Nil, "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	secret := base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString(bytes)

	digest, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", uuid.Nil, "", fmt.Errorf("failed to hash token secret: %w", err)
	}

	rawToken = tokenPrefix + id.String() + "." + secret
	return rawToken, id, string(digest), nil
}

// Parse splits a raw token into its ID and secret halves.
func Parse(raw string) (uuid.UUID, string, error) {
	if !strings.HasPrefix(raw, tokenPrefix) {
		return uuid.Nil, "", ErrMalformedToken
	}

	idPart, secret, found := strings.Cut(strings.TrimPrefix(raw, tokenPrefix), ".")
	if !found || secret == "" {
		return uuid.Nil, "", ErrMalformedToken
	}

	id, err := uuid.Parse(idPart)
	if err != nil {
		return uuid.Nil, "", ErrMalformedToken
	}

	return id, secret, nil
}

// ValidateExpiry validates and normalizes an expiry duration.
// If duration is 0, returns the default (1 month).
// Clamps to min 1 day and max 1 year.
func ValidateExpiry(d time.Duration) (time.Duration, error) {
	if d == 0 {
		return DefaultExpiry, nil
	}
	if d < MinExpiry {
		return MinExpiry, nil
	}
	if d > MaxExpiry {
		return MaxExpiry, nil
	}
	return d, nil
}
