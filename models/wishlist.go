package models

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type WishlistItem struct {
	ID        int       `gorm:"primary_key" json:"id"`
	User      string    `gorm:"index:idx_wishlist_user_item,unique;size:255;not null" json:"user"`
	ItemCode  string    `gorm:"index:idx_wishlist_user_item,unique;size:140;not null" json:"item_code"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// AddToWishlist is idempotent: adding an item twice keeps a single row.
func AddToWishlist(ctx context.Context, db *gorm.DB, user string, itemCode string) error {
	var count int64
	err := db.WithContext(ctx).Model(&WishlistItem{}).
		Where("user = ? AND item_code = ?", user, itemCode).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&WishlistItem{User: user, ItemCode: itemCode}).Error
}

func RemoveFromWishlist(ctx context.Context, db *gorm.DB, user string, itemCode string) error {
	return db.WithContext(ctx).
		Where("user = ? AND item_code = ?", user, itemCode).
		Delete(&WishlistItem{}).Error
}

// GetWishlistItemCodes returns one page of wishlisted item codes, newest
// first.
func GetWishlistItemCodes(ctx context.Context, db *gorm.DB, user string, page int, limit int) ([]string, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > MaxCatalogPageSize {
		limit = 10
	}
	var codes []string
	err := db.WithContext(ctx).Model(&WishlistItem{}).
		Where("user = ?", user).
		Order("id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Pluck("item_code", &codes).Error
	if err != nil {
		return nil, err
	}
	return codes, nil
}

// IsWishlisted answers membership for one item.
func IsWishlisted(ctx context.Context, db *gorm.DB, user string, itemCode string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Model(&WishlistItem{}).
		Where("user = ? AND item_code = ?", user, itemCode).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
