package models

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Warehouse struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:140;not null" json:"name" binding:"required"`
	IsGroup   bool      `gorm:"not null;default:false" json:"is_group"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Bin holds the on-hand quantity of one item in one warehouse.
type Bin struct {
	ID        int             `gorm:"primary_key" json:"id"`
	ItemCode  string          `gorm:"index:idx_bin_item_wh,unique;size:140;not null" json:"item_code"`
	Warehouse string          `gorm:"index:idx_bin_item_wh,unique;size:140;not null" json:"warehouse"`
	ActualQty decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"actual_qty"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// BinQty is one (warehouse, qty) pair for an item, highest quantity first.
type BinQty struct {
	Warehouse string          `json:"warehouse"`
	ActualQty decimal.Decimal `json:"actual_qty"`
}

// GetStockQty sums on-hand quantity for an item, optionally scoped to one
// warehouse.
func GetStockQty(ctx context.Context, db *gorm.DB, itemCode string, warehouse string) (decimal.Decimal, error) {
	q := db.WithContext(ctx).Model(&Bin{}).Where("item_code = ?", itemCode)
	if warehouse != "" {
		q = q.Where("warehouse = ?", warehouse)
	}
	var total decimal.NullDecimal
	err := q.Select("SUM(actual_qty)").Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// GetBinQuantities lists per-warehouse quantities for an item, ordered so the
// fullest warehouse comes first.
func GetBinQuantities(ctx context.Context, db *gorm.DB, itemCode string) ([]BinQty, error) {
	var bins []BinQty
	err := db.WithContext(ctx).Model(&Bin{}).
		Select("warehouse, actual_qty").
		Where("item_code = ?", itemCode).
		Order("actual_qty DESC").
		Scan(&bins).Error
	if err != nil {
		return nil, err
	}
	return bins, nil
}

// GetFirstNonGroupWarehouse returns the first leaf warehouse by name, or ""
// when none exist.
func GetFirstNonGroupWarehouse(ctx context.Context, db *gorm.DB) (string, error) {
	var wh Warehouse
	err := db.WithContext(ctx).
		Where("is_group = ?", false).
		Order("name").
		First(&wh).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return wh.Name, nil
}
