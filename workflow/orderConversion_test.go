package workflow

import (
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/webshop_backend/models"
	"github.com/shopspring/decimal"
)

func TestBuildQuotationItems_Defaults(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	lines := []CartLine{
		{ItemCode: "WIDGET", Qty: dec("3"), Rate: dec("12.50")},
		{ItemCode: "NO-QTY", Rate: dec("5")},
		{ItemCode: "NEG-QTY", Qty: dec("-4"), Rate: dec("5")},
		{ItemCode: "NEG-RATE", Qty: dec("2"), Rate: dec("-9")},
		{ItemCode: "", Qty: dec("1"), Rate: dec("1")},
	}

	items := BuildQuotationItems(lines, now)
	if len(items) != 4 {
		t.Fatalf("expected 4 items (empty code dropped), got %d", len(items))
	}

	byCode := map[string]models.QuotationItem{}
	for _, item := range items {
		byCode[item.ItemCode] = item
	}

	if got := byCode["WIDGET"]; !got.Amount.Equal(dec("37.50")) {
		t.Fatalf("WIDGET amount = %s, expected 37.50", got.Amount)
	}
	if got := byCode["NO-QTY"]; !got.Qty.Equal(decimal.NewFromInt(1)) || !got.Amount.Equal(dec("5")) {
		t.Fatalf("omitted qty must default to 1: qty=%s amount=%s", got.Qty, got.Amount)
	}
	if got := byCode["NEG-QTY"]; !got.Qty.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("negative qty must default to 1, got %s", got.Qty)
	}
	if got := byCode["NEG-RATE"]; !got.Rate.Equal(decimal.Zero) || !got.Amount.Equal(decimal.Zero) {
		t.Fatalf("negative rate must clamp to 0: rate=%s amount=%s", got.Rate, got.Amount)
	}

	wantDelivery := now.Add(7 * 24 * time.Hour)
	for _, item := range items {
		if !item.DeliveryDate.Equal(wantDelivery) {
			t.Fatalf("%s delivery date = %s, expected %s", item.ItemCode, item.DeliveryDate, wantDelivery)
		}
	}
}

func TestBuildQuotationItems_EmptyCart(t *testing.T) {
	if items := BuildQuotationItems(nil, time.Now()); len(items) != 0 {
		t.Fatalf("expected no items for an empty cart, got %d", len(items))
	}
}

func TestPickWarehouse(t *testing.T) {
	cases := []struct {
		name      string
		bins      []models.BinQty
		firstLeaf string
		expected  string
	}{
		{
			"fullest bin wins",
			[]models.BinQty{
				{Warehouse: "Main Store", ActualQty: dec("12")},
				{Warehouse: "Annex", ActualQty: dec("3")},
			},
			"Annex", "Main Store",
		},
		{
			"empty bins are skipped",
			[]models.BinQty{
				{Warehouse: "Drained", ActualQty: dec("0")},
				{Warehouse: "Oversold", ActualQty: dec("-2")},
				{Warehouse: "Backroom", ActualQty: dec("1")},
			},
			"Annex", "Backroom",
		},
		{
			"no positive bin falls back to first leaf",
			[]models.BinQty{
				{Warehouse: "Drained", ActualQty: dec("0")},
			},
			"Annex", "Annex",
		},
		{"no bins falls back to first leaf", nil, "Annex", "Annex"},
		{"nothing at all uses the fixed fallback", nil, "", FallbackWarehouse},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := PickWarehouse(tc.bins, tc.firstLeaf); got != tc.expected {
				t.Fatalf("PickWarehouse = %q, expected %q", got, tc.expected)
			}
		})
	}
}
