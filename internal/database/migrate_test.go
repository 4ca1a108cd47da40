package database

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMigratedDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared&_foreign_keys=on"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := newMigratedDB(t, "migrate_idempotent")

	if err := Migrate(db); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestMigrate_RecentReviewsView(t *testing.T) {
	db := newMigratedDB(t, "migrate_view")

	review := Review{
		Filename:  "cv.pdf",
		Review:    "ok",
		CreatedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := db.Create(&review).Error; err != nil {
		t.Fatalf("seed review: %v", err)
	}

	var rows []RecentReview
	if err := db.Find(&rows).Error; err != nil {
		t.Fatalf("query view: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != review.ID {
		t.Fatalf("unexpected view rows: %v", rows)
	}
}
