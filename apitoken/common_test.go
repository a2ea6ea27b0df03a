package apitoken

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/hairizuan-noorazman/browser-agent/logger"
	"github.com/hairizuan-noorazman/browser-agent/testutil"
)

// setupTestStore creates a test database and API token store for testing.
func setupTestStore(t *testing.T) (*gorm.DB, Store) {
	db := testutil.SetupTestDB(t)
	testutil.AutoMigrate(t, db, &APIToken{})

	log := logger.NewTestLogger()
	store := NewMySQLStore(db, log)

	return db, store
}

// issueToken generates a token pair and returns the raw token and its
// unsaved record.
func issueToken(t *testing.T, name, scope string) (string, *APIToken) {
	raw, id, hash, err := Generate()
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	return raw, &APIToken{
		ID:         id,
		Name:       name,
		SecretHash: hash,
		Scope:      scope,
		ExpiresAt:  time.Now().Add(DefaultExpiry),
		IsActive:   true,
	}
}
