package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

// Client-supplied totals are never trusted; CalcTotals recomputes everything
// from the lines.
func TestQuotationCalcTotals(t *testing.T) {
	q := Quotation{
		GrandTotal: decimal.NewFromInt(999999),
		TotalQty:   decimal.NewFromInt(999999),
		Items: []QuotationItem{
			{Qty: decimal.NewFromInt(2), Rate: decimal.NewFromInt(10), Amount: decimal.NewFromInt(1)},
			{Qty: decimal.NewFromInt(3), Rate: decimal.RequireFromString("4.5")},
		},
	}
	q.CalcTotals()

	if !q.Items[0].Amount.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("line 0 amount = %s, expected 20", q.Items[0].Amount)
	}
	if !q.Items[1].Amount.Equal(decimal.RequireFromString("13.5")) {
		t.Fatalf("line 1 amount = %s, expected 13.5", q.Items[1].Amount)
	}
	if !q.GrandTotal.Equal(decimal.RequireFromString("33.5")) {
		t.Fatalf("grand_total = %s, expected 33.5", q.GrandTotal)
	}
	if !q.TotalQty.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("total_qty = %s, expected 5", q.TotalQty)
	}
}

func TestQuotationCalcTotals_Empty(t *testing.T) {
	q := Quotation{GrandTotal: decimal.NewFromInt(7)}
	q.CalcTotals()
	if !q.GrandTotal.IsZero() || !q.TotalQty.IsZero() {
		t.Fatalf("empty quotation totals = (%s, %s), expected zero", q.GrandTotal, q.TotalQty)
	}
}
