package models

import (
	"context"

	"gorm.io/gorm"
)

// HomePageSection orders the storefront home page. Items reference a section
// by name; the per-item position within the section lives on the item row.
type HomePageSection struct {
	ID          int    `gorm:"primary_key" json:"id"`
	SectionName string `gorm:"uniqueIndex;size:140;not null" json:"section_name"`
	SortOrder   int    `gorm:"default:0" json:"order"`
	IsActive    bool   `gorm:"not null;default:true" json:"is_active"`
}

func GetActiveSections(ctx context.Context, db *gorm.DB) ([]HomePageSection, error) {
	var sections []HomePageSection
	err := db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_order").
		Find(&sections).Error
	if err != nil {
		return nil, err
	}
	return sections, nil
}

// GetItemGroupChildren lists immediate sub-groups for the filter sidebar.
type ItemGroup struct {
	ID          int    `gorm:"primary_key" json:"id"`
	Name        string `gorm:"uniqueIndex;size:140;not null" json:"name"`
	ParentGroup string `gorm:"index;size:140" json:"parent_item_group"`
	IsGroup     bool   `gorm:"not null;default:false" json:"is_group"`
}

func GetItemGroupChildren(ctx context.Context, db *gorm.DB, parent string) ([]ItemGroup, error) {
	var groups []ItemGroup
	err := db.WithContext(ctx).
		Where("parent_group = ?", parent).
		Order("name").
		Find(&groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}
