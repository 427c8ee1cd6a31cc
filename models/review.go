package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Review struct {
	ID        int       `gorm:"primary_key" json:"id"`
	ItemCode  string    `gorm:"index;size:140;not null" json:"item_code"`
	User      string    `gorm:"size:255;not null" json:"user"`
	Rating    int       `gorm:"not null;default:0" json:"rating"`
	Title     string    `gorm:"size:255" json:"title"`
	Comment   string    `gorm:"type:text" json:"comment"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// ReviewStats carries the aggregated rating snapshot shown on the product
// detail page.
type ReviewStats struct {
	ItemCode    string          `json:"item_code"`
	AvgRating   decimal.Decimal `json:"avg_rating"`
	ReviewCount int             `json:"review_count"`
}

// GetProductReviews lists reviews for an item, newest first.
func GetProductReviews(ctx context.Context, db *gorm.DB, itemCode string) ([]Review, error) {
	var reviews []Review
	err := db.WithContext(ctx).
		Where("item_code = ?", itemCode).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

// GetReviewStatsByCodes aggregates rating stats for a batch of item codes in
// one grouped query.
func GetReviewStatsByCodes(ctx context.Context, db *gorm.DB, itemCodes []string) (map[string]ReviewStats, error) {
	stats := make(map[string]ReviewStats, len(itemCodes))
	if len(itemCodes) == 0 {
		return stats, nil
	}
	var rows []ReviewStats
	err := db.WithContext(ctx).Model(&Review{}).
		Select("item_code, AVG(rating) AS avg_rating, COUNT(*) AS review_count").
		Where("item_code IN ?", itemCodes).
		Group("item_code").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		stats[row.ItemCode] = row
	}
	return stats, nil
}
