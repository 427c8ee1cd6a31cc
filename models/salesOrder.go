package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesOrder is the confirmed order derived 1:1 from a submitted quotation by
// the conversion workflow. It is only ever created inside that transaction.
type SalesOrder struct {
	ID          int              `gorm:"primary_key" json:"id"`
	CustomerId  int              `gorm:"index;not null" json:"customer_id"`
	QuotationId int              `gorm:"index;not null" json:"quotation_id"`
	Company     string           `gorm:"size:140" json:"company"`
	OrderSource OrderSource      `gorm:"size:20;not null;default:web" json:"order_source"`
	Docstatus   DocStatus        `gorm:"index;not null;default:0" json:"docstatus"`
	AddressId   *int             `json:"address_id"`
	GrandTotal  decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"grand_total"`
	TotalQty    decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"total_qty"`
	CreatedAt   time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
	Items       []SalesOrderItem `gorm:"foreignKey:SalesOrderId" json:"items"`
}

type SalesOrderItem struct {
	ID           int             `gorm:"primary_key" json:"id"`
	SalesOrderId int             `gorm:"index;not null" json:"sales_order_id"`
	ItemCode     string          `gorm:"size:140;not null" json:"item_code"`
	Qty          decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"qty"`
	Rate         decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"rate"`
	Amount       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount"`
	Warehouse    string          `gorm:"size:140" json:"warehouse"`
	DeliveryDate time.Time       `json:"delivery_date"`
}

// CalcTotals mirrors the quotation recomputation hook for the derived order.
func (so *SalesOrder) CalcTotals() {
	grandTotal := decimal.Zero
	totalQty := decimal.Zero
	for i := range so.Items {
		so.Items[i].Amount = so.Items[i].Qty.Mul(so.Items[i].Rate)
		grandTotal = grandTotal.Add(so.Items[i].Amount)
		totalQty = totalQty.Add(so.Items[i].Qty)
	}
	so.GrandTotal = grandTotal
	so.TotalQty = totalQty
}
