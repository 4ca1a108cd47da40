package database

import (
	"fmt"

	"gorm.io/gorm"
)

// RecentReviewsLimit 是 recent_reviews 视图返回的最大行数。
const RecentReviewsLimit = 100

// Migrate 创建全部表结构与 recent_reviews 视图，可重复执行。
// 视图无法用 AutoMigrate 表达，这里先删后建保持幂等。
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Profile{}, &Resume{}, &Review{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if err := db.Exec("DROP VIEW IF EXISTS recent_reviews").Error; err != nil {
		return fmt.Errorf("drop recent_reviews: %w", err)
	}

	createView := fmt.Sprintf(`CREATE VIEW recent_reviews AS
SELECT id, user_id, filename, review, created_at
FROM reviews
ORDER BY created_at DESC
LIMIT %d`, RecentReviewsLimit)
	if err := db.Exec(createView).Error; err != nil {
		return fmt.Errorf("create recent_reviews: %w", err)
	}

	return nil
}
