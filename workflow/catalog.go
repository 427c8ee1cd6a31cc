package workflow

import (
	"context"
	"errors"
	"sort"

	"bitbucket.org/mmdatafocus/webshop_backend/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CatalogFetcher is the read side of catalog assembly. Both methods take the
// whole page of item codes at once; implementations must answer each call
// with a single query so a page of N items never degrades into N lookups.
type CatalogFetcher interface {
	ItemMeta(ctx context.Context, itemCodes []string) (map[string]models.ItemMeta, error)
	ActiveWorkOrderSet(ctx context.Context, itemCodes []string) (map[string]bool, error)
}

type gormCatalogFetcher struct {
	db *gorm.DB
}

func NewCatalogFetcher(db *gorm.DB) CatalogFetcher {
	return &gormCatalogFetcher{db: db}
}

func (f *gormCatalogFetcher) ItemMeta(ctx context.Context, itemCodes []string) (map[string]models.ItemMeta, error) {
	return models.GetItemMetaByCodes(ctx, f.db, itemCodes)
}

func (f *gormCatalogFetcher) ActiveWorkOrderSet(ctx context.Context, itemCodes []string) (map[string]bool, error) {
	return models.GetActiveWorkOrderSet(ctx, f.db, itemCodes)
}

// ProductCard is one assembled catalog entry, ready for the storefront.
type ProductCard struct {
	models.ItemMeta
	InStock            bool               `json:"in_stock"`
	HasActiveWorkOrder bool               `json:"has_active_work_order"`
	Status             models.StockStatus `json:"stock_status"`
}

// ProductFilter narrows an assembled page. Price bounds are inclusive: an
// item priced exactly at the bound stays in.
type ProductFilter struct {
	PriceMin *decimal.Decimal `json:"price_min"`
	PriceMax *decimal.Decimal `json:"price_max"`
	HomePage bool             `json:"home_page"`
}

// AssembleProducts merges stock, work-order and discontinuation data into a
// page of catalog items: two batched lookups, then a per-item pipeline of
// visibility suppression, price filtering and status labelling. Suppressed
// items are dropped from the output entirely.
func AssembleProducts(ctx context.Context, fetcher CatalogFetcher, itemCodes []string, filter ProductFilter) ([]ProductCard, error) {
	if len(itemCodes) == 0 {
		return []ProductCard{}, nil
	}

	metas, err := fetcher.ItemMeta(ctx, itemCodes)
	if err != nil {
		return nil, err
	}
	activeWO, err := fetcher.ActiveWorkOrderSet(ctx, itemCodes)
	if err != nil {
		return nil, err
	}

	cards := make([]ProductCard, 0, len(itemCodes))
	for _, code := range itemCodes {
		meta, ok := metas[code]
		if !ok {
			// No stock record: zero qty, untracked. Resolves to In Stock.
			meta = models.ItemMeta{ItemCode: code}
		}
		hasWO := activeWO[code]

		if !IsVisible(meta.Discontinued, meta.StockQty, hasWO) {
			continue
		}
		if filter.PriceMin != nil && meta.PriceListRate.LessThan(*filter.PriceMin) {
			continue
		}
		if filter.PriceMax != nil && meta.PriceListRate.GreaterThan(*filter.PriceMax) {
			continue
		}

		status := ResolveStatus(meta.StockQty, meta.IsStockItem, hasWO)
		cards = append(cards, ProductCard{
			ItemMeta:           meta,
			InStock:            status == models.StockStatusInStock,
			HasActiveWorkOrder: hasWO,
			Status:             status,
		})
	}

	if filter.HomePage {
		sort.SliceStable(cards, func(i, j int) bool {
			return cards[i].SectionOrder < cards[j].SectionOrder
		})
	}
	return cards, nil
}

// GroupBySection buckets assembled cards under the active home page
// sections, preserving section order and sorting each bucket by the per-item
// order key, ascending. Cards without a known section are dropped.
func GroupBySection(cards []ProductCard, sections []models.HomePageSection) map[string][]ProductCard {
	grouped := make(map[string][]ProductCard, len(sections))
	for _, section := range sections {
		grouped[section.SectionName] = []ProductCard{}
	}
	for _, card := range cards {
		if card.Section == "" {
			continue
		}
		bucket, ok := grouped[card.Section]
		if !ok {
			continue
		}
		grouped[card.Section] = append(bucket, card)
	}
	for name := range grouped {
		bucket := grouped[name]
		sort.SliceStable(bucket, func(i, j int) bool {
			return bucket[i].SectionOrder < bucket[j].SectionOrder
		})
		grouped[name] = bucket
	}
	return grouped
}

// ItemStock is the single-item stock snapshot served by the get_stock call.
type ItemStock struct {
	InStock     bool            `json:"in_stock"`
	StockQty    decimal.Decimal `json:"stock_qty"`
	IsStockItem bool            `json:"is_stock_item"`
}

// GetItemStock answers stock for one item, optionally scoped to a warehouse.
// An unknown item yields the untracked defaults.
func GetItemStock(ctx context.Context, db *gorm.DB, itemCode string, warehouse string) (*ItemStock, error) {
	item, err := models.GetItemByCode(ctx, db, itemCode)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	isStockItem := false
	if item != nil {
		isStockItem = item.IsStockItem
	}

	qty, err := models.GetStockQty(ctx, db, itemCode, warehouse)
	if err != nil {
		return nil, err
	}

	hasWO := false
	if isStockItem && !qty.IsPositive() {
		hasWO, err = models.HasActiveWorkOrder(ctx, db, itemCode)
		if err != nil {
			return nil, err
		}
	}

	status := ResolveStatus(qty, isStockItem, hasWO)
	return &ItemStock{
		InStock:     status == models.StockStatusInStock,
		StockQty:    qty,
		IsStockItem: isStockItem,
	}, nil
}
