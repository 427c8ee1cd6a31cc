package workflow

import (
	"context"

	"bitbucket.org/mmdatafocus/webshop_backend/config"
	"bitbucket.org/mmdatafocus/webshop_backend/models"
	"gorm.io/gorm"
)

// SweepResult summarizes one unpublish sweep run.
type SweepResult struct {
	Scanned     int `json:"scanned"`
	Unpublished int `json:"unpublished"`
	Republished int `json:"republished"`
	Failed      int `json:"failed"`
}

// UnpublishSweep walks every discontinued item and reconciles its published
// flag with the visibility rule, in both directions: sold-out discontinued
// items without production go dark, discontinued items that regained stock or
// an open work order come back. A failed item is logged and skipped; the
// sweep always finishes the batch.
func UnpublishSweep(ctx context.Context, db *gorm.DB) (*SweepResult, error) {
	logger := config.GetLogger()

	items, err := models.GetDiscontinuedItems(ctx, db)
	if err != nil {
		return nil, err
	}
	result := &SweepResult{Scanned: len(items)}
	if len(items) == 0 {
		return result, nil
	}

	codes := make([]string, 0, len(items))
	for _, item := range items {
		codes = append(codes, item.ItemCode)
	}
	metas, err := models.GetItemMetaByCodes(ctx, db, codes)
	if err != nil {
		return nil, err
	}
	activeWO, err := models.GetActiveWorkOrderSet(ctx, db, codes)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		meta, ok := metas[item.ItemCode]
		if !ok {
			meta = models.ItemMeta{ItemCode: item.ItemCode, Discontinued: true}
		}
		visible := IsVisible(meta.Discontinued, meta.StockQty, activeWO[item.ItemCode])
		if visible == item.Published {
			continue
		}
		if err := models.SetItemPublished(ctx, db, item.ItemCode, visible); err != nil {
			config.LogError(logger, "workflow", "UnpublishSweep", "toggle published", item.ItemCode, err)
			result.Failed++
			continue
		}
		if visible {
			result.Republished++
		} else {
			result.Unpublished++
		}
	}
	return result, nil
}
