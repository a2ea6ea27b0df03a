package task

import (
	"testing"

	"gorm.io/gorm"

	"github.com/hairizuan-noorazman/browser-agent/logger"
	"github.com/hairizuan-noorazman/browser-agent/testutil"
)

// setupTestStore creates a test database and task store for testing.
func setupTestStore(t *testing.T) (*gorm.DB, Store) {
	db := testutil.SetupTestDB(t)
	testutil.AutoMigrate(t, db, &Task{})

	log := logger.NewTestLogger()
	store := NewMySQLStore(db, log)

	return db, store
}
