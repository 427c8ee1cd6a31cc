package workflow

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/webshop_backend/models"
	"bitbucket.org/mmdatafocus/webshop_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FallbackWarehouse receives order lines when neither stock levels nor the
// warehouse tree suggest a better location.
const FallbackWarehouse = "Stores"

const defaultDeliveryOffset = 7 * 24 * time.Hour

// CartLine is one incoming cart entry. Qty defaults to 1 and Rate to 0 when
// omitted; totals are always recomputed server-side.
type CartLine struct {
	ItemCode string          `json:"item_code" binding:"required"`
	Qty      decimal.Decimal `json:"qty"`
	Rate     decimal.Decimal `json:"rate"`
}

type CartSyncResult struct {
	QuotationId int             `json:"quotation_id"`
	GrandTotal  decimal.Decimal `json:"grand_total"`
	TotalQty    decimal.Decimal `json:"total_qty"`
}

type PlaceOrderResult struct {
	SalesOrderId   int             `json:"sales_order_id"`
	SalesInvoiceId int             `json:"sales_invoice_id"`
	GrandTotal     decimal.Decimal `json:"grand_total"`
}

// ResolveCustomer turns the request identity into a customer record. The
// identity travels in the context, never in a global; a guest request fails
// with ErrNotAuthenticated, a user without a linked customer with ErrNotFound.
func ResolveCustomer(ctx context.Context, db *gorm.DB) (*models.Customer, error) {
	username, ok := utils.GetUsernameFromContext(ctx)
	if !ok || username == "" {
		return nil, utils.ErrNotAuthenticated
	}
	return models.GetCustomerForUser(ctx, db, username)
}

// BuildQuotationItems normalizes cart lines into quotation items: qty
// defaults to 1, rate to 0, delivery date to a week out. Lines with an empty
// item code are dropped.
func BuildQuotationItems(lines []CartLine, now time.Time) []models.QuotationItem {
	deliveryDate := now.Add(defaultDeliveryOffset)
	items := make([]models.QuotationItem, 0, len(lines))
	for _, line := range lines {
		if line.ItemCode == "" {
			continue
		}
		qty := line.Qty
		if !qty.IsPositive() {
			qty = decimal.NewFromInt(1)
		}
		rate := line.Rate
		if rate.IsNegative() {
			rate = decimal.Zero
		}
		items = append(items, models.QuotationItem{
			ItemCode:     line.ItemCode,
			Qty:          qty,
			Rate:         rate,
			Amount:       qty.Mul(rate),
			DeliveryDate: deliveryDate,
		})
	}
	return items
}

// SyncCartToQuotation upserts the customer's single draft web quotation from
// the incoming cart lines. An existing draft has its lines replaced in place;
// two syncs never leave two drafts behind.
func SyncCartToQuotation(ctx context.Context, db *gorm.DB, lines []CartLine) (*CartSyncResult, error) {
	customer, err := ResolveCustomer(ctx, db)
	if err != nil {
		return nil, err
	}

	var result CartSyncResult
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		quotation, err := models.FindDraftWebQuotation(ctx, tx, customer.ID)
		if err != nil {
			return err
		}
		if quotation == nil {
			quotation = &models.Quotation{
				CustomerId:  customer.ID,
				OrderSource: models.OrderSourceWeb,
				Docstatus:   models.DocStatusDraft,
			}
			if err := tx.Create(quotation).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Where("quotation_id = ?", quotation.ID).Delete(&models.QuotationItem{}).Error; err != nil {
				return err
			}
		}

		items := BuildQuotationItems(lines, time.Now())
		for i := range items {
			items[i].QuotationId = quotation.ID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}

		quotation.Items = items
		quotation.CalcTotals()
		if err := tx.Model(&models.Quotation{}).Where("id = ?", quotation.ID).Updates(map[string]interface{}{
			"grand_total": quotation.GrandTotal,
			"total_qty":   quotation.TotalQty,
		}).Error; err != nil {
			return err
		}

		result = CartSyncResult{
			QuotationId: quotation.ID,
			GrandTotal:  quotation.GrandTotal,
			TotalQty:    quotation.TotalQty,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetCurrentQuotation returns the caller's draft cart, or nil when the caller
// is a guest, has no linked customer, or has no draft. The empty cases are
// explicit preconditions, not swallowed errors.
func GetCurrentQuotation(ctx context.Context, db *gorm.DB) (*models.Quotation, error) {
	customer, err := ResolveCustomer(ctx, db)
	if errors.Is(err, utils.ErrNotAuthenticated) || errors.Is(err, utils.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return models.FindDraftWebQuotation(ctx, db, customer.ID)
}

// PlaceOrder converts a draft quotation into a sales order plus invoice as
// one transaction. Any failure rolls the whole conversion back; the
// quotation is guaranteed to still be a draft afterwards, and the error is a
// ConversionError carrying the cause. There are no retries.
func PlaceOrder(ctx context.Context, db *gorm.DB, quotationId int, addressId *int) (*PlaceOrderResult, error) {
	customer, err := ResolveCustomer(ctx, db)
	if err != nil {
		return nil, err
	}

	quotation, err := models.GetQuotationById(ctx, db, quotationId)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if quotation.Docstatus != models.DocStatusDraft {
		return nil, utils.ErrInvalidState
	}
	if quotation.OrderSource != models.OrderSourceWeb {
		return nil, utils.ErrForbidden
	}
	if quotation.CustomerId != customer.ID {
		return nil, utils.ErrForbidden
	}
	if addressId != nil {
		if _, err := models.GetOwnedAddress(ctx, db, customer.ID, *addressId); err != nil {
			return nil, err
		}
	}

	var result PlaceOrderResult
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return ConvertQuotation(ctx, tx, quotation, addressId, &result)
	})
	if err != nil {
		return nil, &utils.ConversionError{QuotationId: quotationId, Cause: err}
	}
	return &result, nil
}

// ConvertQuotation performs the conversion steps inside the caller's
// transaction: submit the quotation, derive the sales order, recompute its
// totals, persist it, then derive and persist the invoice. It never commits
// or rolls back itself; the surrounding db.Transaction owns that.
//
// The submit is a compare-and-set on the draft state. Two racing conversions
// both pass the read-side precondition; only the one whose update flips
// draft to submitted proceeds, so a quotation can never yield two orders.
func ConvertQuotation(ctx context.Context, tx *gorm.DB, quotation *models.Quotation, addressId *int, result *PlaceOrderResult) error {
	submit := tx.Model(&models.Quotation{}).
		Where("id = ? AND docstatus = ?", quotation.ID, models.DocStatusDraft).
		Update("docstatus", models.DocStatusSubmitted)
	if submit.Error != nil {
		return submit.Error
	}
	if submit.RowsAffected == 0 {
		return utils.ErrInvalidState
	}

	settings, err := models.GetWebsiteSettings(ctx, tx)
	if err != nil {
		return err
	}
	company := ""
	if settings != nil {
		company = settings.DefaultCompany
	}

	firstLeaf, err := models.GetFirstNonGroupWarehouse(ctx, tx)
	if err != nil {
		return err
	}

	salesOrder := &models.SalesOrder{
		CustomerId:  quotation.CustomerId,
		QuotationId: quotation.ID,
		Company:     company,
		OrderSource: models.OrderSourceWeb,
		Docstatus:   models.DocStatusDraft,
		AddressId:   addressId,
	}
	for _, line := range quotation.Items {
		warehouse, err := resolveFulfillmentWarehouse(ctx, tx, line.ItemCode, firstLeaf)
		if err != nil {
			return err
		}
		salesOrder.Items = append(salesOrder.Items, models.SalesOrderItem{
			ItemCode:     line.ItemCode,
			Qty:          line.Qty,
			Rate:         line.Rate,
			Warehouse:    warehouse,
			DeliveryDate: line.DeliveryDate,
		})
	}
	salesOrder.CalcTotals()
	if err := tx.Create(salesOrder).Error; err != nil {
		return err
	}

	invoice := &models.SalesInvoice{
		CustomerId:   quotation.CustomerId,
		SalesOrderId: salesOrder.ID,
		Company:      company,
		Docstatus:    models.DocStatusDraft,
		AddressId:    addressId,
		UpdateStock:  true,
	}
	for _, line := range salesOrder.Items {
		invoice.Items = append(invoice.Items, models.SalesInvoiceItem{
			ItemCode:  line.ItemCode,
			Qty:       line.Qty,
			Rate:      line.Rate,
			Warehouse: line.Warehouse,
		})
	}
	invoice.CalcTotals()
	if err := tx.Create(invoice).Error; err != nil {
		return err
	}

	result.SalesOrderId = salesOrder.ID
	result.SalesInvoiceId = invoice.ID
	result.GrandTotal = salesOrder.GrandTotal
	return nil
}

// resolveFulfillmentWarehouse picks a warehouse for one order line: fullest
// bin first, then the first leaf warehouse, then the fixed fallback.
func resolveFulfillmentWarehouse(ctx context.Context, tx *gorm.DB, itemCode string, firstLeaf string) (string, error) {
	bins, err := models.GetBinQuantities(ctx, tx, itemCode)
	if err != nil {
		return "", err
	}
	return PickWarehouse(bins, firstLeaf), nil
}

// PickWarehouse applies the fulfillment location preference order to a list
// of bins sorted by quantity descending.
func PickWarehouse(bins []models.BinQty, firstLeaf string) string {
	for _, bin := range bins {
		if bin.ActualQty.IsPositive() {
			return bin.Warehouse
		}
	}
	if firstLeaf != "" {
		return firstLeaf
	}
	return FallbackWarehouse
}
