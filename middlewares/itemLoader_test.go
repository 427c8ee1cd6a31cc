package middlewares

import (
	"errors"
	"testing"

	"bitbucket.org/mmdatafocus/webshop_backend/models"
	"bitbucket.org/mmdatafocus/webshop_backend/utils"
	"github.com/shopspring/decimal"
)

func TestMetaResults_MissingItemIsNotFound(t *testing.T) {
	metas := map[string]models.ItemMeta{
		"EXISTS": {ItemCode: "EXISTS", StockQty: decimal.Zero, IsStockItem: false},
	}

	results := metaResults([]string{"EXISTS", "GHOST"}, metas)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	if results[0].Error != nil {
		t.Fatalf("existing item returned error: %v", results[0].Error)
	}
	if results[0].Data == nil || results[0].Data.ItemCode != "EXISTS" {
		t.Fatalf("existing item data wrong: %+v", results[0].Data)
	}

	// An item with no row at all must surface as not found, never as a
	// blank in-stock item.
	if !errors.Is(results[1].Error, utils.ErrNotFound) {
		t.Fatalf("missing item error = %v, expected ErrNotFound", results[1].Error)
	}
	if results[1].Data != nil {
		t.Fatalf("missing item must carry no data, got %+v", results[1].Data)
	}
}

func TestMetaResults_PreservesRequestOrder(t *testing.T) {
	metas := map[string]models.ItemMeta{
		"A": {ItemCode: "A"},
		"B": {ItemCode: "B"},
	}
	results := metaResults([]string{"B", "A"}, metas)
	if results[0].Data.ItemCode != "B" || results[1].Data.ItemCode != "A" {
		t.Fatalf("results out of request order: %+v, %+v", results[0].Data, results[1].Data)
	}
}
