package models

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Quotation is the cart-backed draft order. At most one draft web-sourced
// quotation exists per customer at any time; cart syncs replace its items.
type Quotation struct {
	ID          int             `gorm:"primary_key" json:"id"`
	CustomerId  int             `gorm:"index;not null" json:"customer_id" binding:"required"`
	OrderSource OrderSource     `gorm:"size:20;not null;default:web" json:"order_source"`
	Docstatus   DocStatus       `gorm:"index;not null;default:0" json:"docstatus"`
	GrandTotal  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"grand_total"`
	TotalQty    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_qty"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	Items       []QuotationItem `gorm:"foreignKey:QuotationId" json:"items"`
}

type QuotationItem struct {
	ID           int             `gorm:"primary_key" json:"id"`
	QuotationId  int             `gorm:"index;not null" json:"quotation_id"`
	ItemCode     string          `gorm:"size:140;not null" json:"item_code" binding:"required"`
	Qty          decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"qty"`
	Rate         decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"rate"`
	Amount       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount"`
	DeliveryDate time.Time       `json:"delivery_date"`
}

// CalcTotals recomputes line amounts and header totals from the line items.
// Always called after line mutation; client-supplied totals are ignored.
func (q *Quotation) CalcTotals() {
	grandTotal := decimal.Zero
	totalQty := decimal.Zero
	for i := range q.Items {
		q.Items[i].Amount = q.Items[i].Qty.Mul(q.Items[i].Rate)
		grandTotal = grandTotal.Add(q.Items[i].Amount)
		totalQty = totalQty.Add(q.Items[i].Qty)
	}
	q.GrandTotal = grandTotal
	q.TotalQty = totalQty
}

// FindDraftWebQuotation returns the customer's current cart, or nil when the
// customer has none.
func FindDraftWebQuotation(ctx context.Context, db *gorm.DB, customerId int) (*Quotation, error) {
	var quotation Quotation
	err := db.WithContext(ctx).
		Preload("Items").
		Where("customer_id = ? AND order_source = ? AND docstatus = ?", customerId, OrderSourceWeb, DocStatusDraft).
		First(&quotation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &quotation, nil
}

func GetQuotationById(ctx context.Context, db *gorm.DB, id int) (*Quotation, error) {
	var quotation Quotation
	err := db.WithContext(ctx).Preload("Items").First(&quotation, id).Error
	if err != nil {
		return nil, err
	}
	return &quotation, nil
}
