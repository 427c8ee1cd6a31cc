package workflow

import (
	"testing"

	"bitbucket.org/mmdatafocus/webshop_backend/models"
	"github.com/shopspring/decimal"
)

func TestResolveStatus_Precedence(t *testing.T) {
	cases := []struct {
		name     string
		qty      int64
		stock    bool
		activeWO bool
		expected models.StockStatus
	}{
		{"non stock item is always available", 0, false, false, models.StockStatusInStock},
		{"non stock item ignores work orders", 0, false, true, models.StockStatusInStock},
		{"non stock item ignores negative qty", -5, false, false, models.StockStatusInStock},
		{"positive qty wins", 3, true, false, models.StockStatusInStock},
		{"positive qty wins over work order", 3, true, true, models.StockStatusInStock},
		{"zero qty with work order is in process", 0, true, true, models.StockStatusInProcess},
		{"negative qty with work order is in process", -2, true, true, models.StockStatusInProcess},
		{"zero qty without work order is out of stock", 0, true, false, models.StockStatusOutOfStock},
		{"negative qty without work order is out of stock", -1, true, false, models.StockStatusOutOfStock},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolveStatus(decimal.NewFromInt(tc.qty), tc.stock, tc.activeWO)
			if got != tc.expected {
				t.Fatalf("ResolveStatus(%d, %v, %v) = %q, expected %q", tc.qty, tc.stock, tc.activeWO, got, tc.expected)
			}
		})
	}
}

// A missing stock record defaults to qty=0 is_stock_item=false, which must
// resolve to In Stock.
func TestResolveStatus_MissingRecordDefaults(t *testing.T) {
	if got := ResolveStatus(decimal.Zero, false, false); got != models.StockStatusInStock {
		t.Fatalf("missing record resolved to %q, expected In Stock", got)
	}
}

func TestIsVisible_SuppressionRule(t *testing.T) {
	cases := []struct {
		name         string
		discontinued bool
		qty          int64
		activeWO     bool
		expected     bool
	}{
		{"live item always visible", false, 0, false, true},
		{"live item with stock visible", false, 10, false, true},
		{"discontinued with stock visible", true, 1, false, true},
		{"discontinued with work order visible", true, 0, true, true},
		{"discontinued with stock and work order visible", true, 5, true, true},
		{"discontinued sold out without work order hidden", true, 0, false, false},
		{"discontinued negative qty without work order hidden", true, -3, false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := IsVisible(tc.discontinued, decimal.NewFromInt(tc.qty), tc.activeWO)
			if got != tc.expected {
				t.Fatalf("IsVisible(%v, %d, %v) = %v, expected %v", tc.discontinued, tc.qty, tc.activeWO, got, tc.expected)
			}
		})
	}
}
