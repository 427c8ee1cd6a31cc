package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesInvoice is derived from a sales order inside the conversion
// transaction. UpdateStock marks it as the document that will move inventory
// when submitted downstream.
type SalesInvoice struct {
	ID                int                `gorm:"primary_key" json:"id"`
	CustomerId        int                `gorm:"index;not null" json:"customer_id"`
	SalesOrderId      int                `gorm:"index;not null" json:"sales_order_id"`
	Company           string             `gorm:"size:140" json:"company"`
	Docstatus         DocStatus          `gorm:"index;not null;default:0" json:"docstatus"`
	AddressId         *int               `json:"address_id"`
	UpdateStock       bool               `gorm:"not null;default:false" json:"update_stock"`
	GrandTotal        decimal.Decimal    `gorm:"type:decimal(20,4);default:0" json:"grand_total"`
	TotalQty          decimal.Decimal    `gorm:"type:decimal(20,4);default:0" json:"total_qty"`
	OutstandingAmount decimal.Decimal    `gorm:"type:decimal(20,4);default:0" json:"outstanding_amount"`
	CreatedAt         time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
	Items             []SalesInvoiceItem `gorm:"foreignKey:SalesInvoiceId" json:"items"`
}

type SalesInvoiceItem struct {
	ID             int             `gorm:"primary_key" json:"id"`
	SalesInvoiceId int             `gorm:"index;not null" json:"sales_invoice_id"`
	ItemCode       string          `gorm:"size:140;not null" json:"item_code"`
	Qty            decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"qty"`
	Rate           decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"rate"`
	Amount         decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount"`
	Warehouse      string          `gorm:"size:140" json:"warehouse"`
}

func (si *SalesInvoice) CalcTotals() {
	grandTotal := decimal.Zero
	totalQty := decimal.Zero
	for i := range si.Items {
		si.Items[i].Amount = si.Items[i].Qty.Mul(si.Items[i].Rate)
		grandTotal = grandTotal.Add(si.Items[i].Amount)
		totalQty = totalQty.Add(si.Items[i].Qty)
	}
	si.GrandTotal = grandTotal
	si.TotalQty = totalQty
	si.OutstandingAmount = grandTotal
}
