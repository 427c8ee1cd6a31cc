package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WorkOrder is a production order for an item. Only existence of at least one
// active order per item matters to the storefront; "active" means not yet
// completed or cancelled and not amended away (docstatus 0 or 1).
type WorkOrder struct {
	ID             int             `gorm:"primary_key" json:"id"`
	ProductionItem string          `gorm:"index;size:140;not null" json:"production_item" binding:"required"`
	Qty            decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"qty"`
	Status         WorkOrderStatus `gorm:"size:30;not null" json:"status"`
	Docstatus      DocStatus       `gorm:"not null;default:0" json:"docstatus"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// HasActiveWorkOrder answers the single-item form of the lookup.
func HasActiveWorkOrder(ctx context.Context, db *gorm.DB, itemCode string) (bool, error) {
	var count int64
	err := activeWorkOrderQuery(ctx, db).
		Where("production_item = ?", itemCode).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetActiveWorkOrderSet is the batched existence lookup: one query over all
// item codes in a catalog page, returning the subset with at least one
// active work order.
func GetActiveWorkOrderSet(ctx context.Context, db *gorm.DB, itemCodes []string) (map[string]bool, error) {
	active := make(map[string]bool, len(itemCodes))
	if len(itemCodes) == 0 {
		return active, nil
	}

	var codes []string
	err := activeWorkOrderQuery(ctx, db).
		Where("production_item IN ?", itemCodes).
		Distinct("production_item").
		Pluck("production_item", &codes).Error
	if err != nil {
		return nil, err
	}
	for _, code := range codes {
		active[code] = true
	}
	return active, nil
}

func activeWorkOrderQuery(ctx context.Context, db *gorm.DB) *gorm.DB {
	return db.WithContext(ctx).Model(&WorkOrder{}).
		Where("status NOT IN ?", []WorkOrderStatus{WorkOrderStatusCompleted, WorkOrderStatusCancelled}).
		Where("docstatus IN ?", []DocStatus{DocStatusDraft, DocStatusSubmitted})
}
