package testutil

import (
	"testing"

	"gorm.io/gorm"
)

// CreateFixture inserts a single row, failing the test on error.
func CreateFixture(t *testing.T, db *gorm.DB, model interface{}) {
	t.Helper()

	if err := db.Create(model).Error; err != nil {
		t.Fatalf("failed to insert fixture: %v", err)
	}
}

// CreateFixtures inserts rows in order; handy for source-then-items setups
// where foreign keys matter.
func CreateFixtures(t *testing.T, db *gorm.DB, models ...interface{}) {
	t.Helper()

	for _, model := range models {
		CreateFixture(t, db, model)
	}
}
