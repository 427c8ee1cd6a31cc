package models

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// WebsiteSettings is a single-row table of storefront configuration.
type WebsiteSettings struct {
	ID               int       `gorm:"primary_key" json:"id"`
	MailEnabled      bool      `gorm:"not null;default:false" json:"mail_enabled"`
	EmailGroupName   string    `gorm:"size:140" json:"email_group_name"`
	WebsiteItemField string    `gorm:"size:140" json:"website_item_field"`
	DefaultCompany   string    `gorm:"size:140" json:"default_company"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// ShopByCategoryTile is one tile of the storefront "shop by category" strip.
type ShopByCategoryTile struct {
	ID          int    `gorm:"primary_key" json:"id"`
	DisplayName string `gorm:"size:140;not null" json:"display_name"`
	Value       string `gorm:"size:140;not null" json:"value"`
	Thumbnail   string `gorm:"size:512" json:"thumbnail"`
	SortOrder   int    `gorm:"default:0" json:"order"`
}

// GetWebsiteSettings returns the settings row, or nil when it has never been
// configured.
func GetWebsiteSettings(ctx context.Context, db *gorm.DB) (*WebsiteSettings, error) {
	var settings WebsiteSettings
	err := db.WithContext(ctx).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func GetShopByCategoryTiles(ctx context.Context, db *gorm.DB) ([]ShopByCategoryTile, error) {
	var tiles []ShopByCategoryTile
	err := db.WithContext(ctx).Order("sort_order").Find(&tiles).Error
	if err != nil {
		return nil, err
	}
	return tiles, nil
}
