package datasource

import (
	"testing"

	"gorm.io/gorm"

	"github.com/hairizuan-noorazman/browser-agent/logger"
	"github.com/hairizuan-noorazman/browser-agent/testutil"
)

// setupTestStore creates a test database and data source store for testing.
func setupTestStore(t *testing.T) (*gorm.DB, Store) {
	db := testutil.SetupTestDB(t)
	testutil.AutoMigrate(t, db, &DataSource{}, &CollectedItem{})

	log := logger.NewTestLogger()
	store := NewMySQLStore(db, log)

	return db, store
}

// setupTestItemStore creates a test database and item store for testing.
func setupTestItemStore(t *testing.T) (*gorm.DB, ItemStore) {
	db := testutil.SetupTestDB(t)
	testutil.AutoMigrate(t, db, &DataSource{}, &CollectedItem{})

	log := logger.NewTestLogger()
	store := NewMySQLItemStore(db, log)

	return db, store
}

func validBrowserSource() *DataSource {
	return &DataSource{
		Name:        "WhatsApp export",
		SourceType:  SourceTypeBrowserAgent,
		TargetURL:   "https://web.whatsapp.com",
		Instruction: "Collect the latest messages from every chat",
	}
}
