package workflow

import (
	"bitbucket.org/mmdatafocus/webshop_backend/models"
	"github.com/shopspring/decimal"
)

// ResolveStatus classifies an item's storefront availability. Precedence
// matters: an untracked item is always available, stock on hand wins over an
// open work order, and an open work order keeps a sold-out item purchasable
// as "In Process".
//
// Callers default a missing quantity to zero and missing flags to false; a
// missing stock record therefore resolves to In Stock (absence of tracking is
// not absence of availability).
func ResolveStatus(stockQty decimal.Decimal, isStockItem bool, hasActiveWorkOrder bool) models.StockStatus {
	if !isStockItem {
		return models.StockStatusInStock
	}
	if stockQty.IsPositive() {
		return models.StockStatusInStock
	}
	if hasActiveWorkOrder {
		return models.StockStatusInProcess
	}
	return models.StockStatusOutOfStock
}

// IsVisible decides whether an item may appear on the website. The single
// suppression rule: hide only when the item is discontinued AND has no stock
// AND no active work order. Discontinued items with stock or with production
// underway stay visible.
func IsVisible(isDiscontinued bool, stockQty decimal.Decimal, hasActiveWorkOrder bool) bool {
	if !isDiscontinued {
		return true
	}
	if stockQty.IsPositive() {
		return true
	}
	if hasActiveWorkOrder {
		return true
	}
	return false
}
