package models

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Item is a website catalog item. Stock quantities live in bins (one row per
// warehouse); the item row carries flags and pricing only.
type Item struct {
	ID                 int             `gorm:"primary_key" json:"id"`
	ItemCode           string          `gorm:"uniqueIndex;size:140;not null" json:"item_code" binding:"required"`
	ItemName           string          `gorm:"size:255;not null" json:"item_name"`
	WebItemName        string          `gorm:"size:255" json:"web_item_name"`
	ItemGroup          string          `gorm:"index;size:140" json:"item_group"`
	Brand              string          `gorm:"index;size:140" json:"brand"`
	WebLongDescription string          `gorm:"type:text" json:"web_long_description"`
	ThumbnailURL       string          `gorm:"size:512" json:"thumbnail"`
	PriceListRate      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"price_list_rate"`
	IsStockItem        bool            `gorm:"not null;default:false" json:"is_stock_item"`
	Discontinued       bool            `gorm:"index;not null;default:false" json:"discontinued"`
	Published          bool            `gorm:"index;not null;default:true" json:"published"`
	WebsiteWarehouseId int             `gorm:"default:0" json:"website_warehouse_id"`
	Section            string          `gorm:"index;size:140" json:"custom_section"`
	SectionOrder       int             `gorm:"default:0" json:"custom_section_order"`
	CreatedAt          time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// ItemMeta is the merged per-item snapshot the catalog pipeline works on.
// StockQty defaults to zero and IsStockItem to false when no stock record
// exists; the status rule treats that combination as available.
type ItemMeta struct {
	ItemCode      string          `json:"item_code"`
	ItemName      string          `json:"item_name"`
	WebItemName   string          `json:"web_item_name"`
	ItemGroup     string          `json:"item_group"`
	Brand         string          `json:"brand"`
	ThumbnailURL  string          `json:"thumbnail"`
	PriceListRate decimal.Decimal `json:"price_list_rate"`
	StockQty      decimal.Decimal `json:"stock_qty"`
	IsStockItem   bool            `json:"is_stock_item"`
	Discontinued  bool            `json:"discontinued"`
	Section       string          `json:"custom_section"`
	SectionOrder  int             `json:"custom_section_order"`
}

func GetItemByCode(ctx context.Context, db *gorm.DB, itemCode string) (*Item, error) {
	var item Item
	err := db.WithContext(ctx).Where("item_code = ?", itemCode).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// CatalogQueryArgs narrows the candidate page before assembly. The page is
// bounded; callers never receive more than MaxCatalogPageSize rows.
type CatalogQueryArgs struct {
	ItemGroup    string              `json:"item_group"`
	FieldFilters map[string][]string `json:"field_filters"`
	Search       string              `json:"search"`
	Start        int                 `json:"start"`
	PageSize     int                 `json:"page_size"`
}

const MaxCatalogPageSize = 100

var allowedFilterFields = map[string]string{
	"item_code":      "item_code",
	"item_group":     "item_group",
	"brand":          "brand",
	"custom_section": "section",
}

// QueryWebsiteItems returns one page of published candidate items. Filtering
// beyond field equality (visibility, price range, status) happens later in
// the assembly pipeline.
func QueryWebsiteItems(ctx context.Context, db *gorm.DB, args CatalogQueryArgs) ([]Item, error) {
	pageSize := args.PageSize
	if pageSize <= 0 || pageSize > MaxCatalogPageSize {
		pageSize = MaxCatalogPageSize
	}

	q := db.WithContext(ctx).Model(&Item{}).Where("published = ?", true)
	if args.ItemGroup != "" {
		q = q.Where("item_group = ?", args.ItemGroup)
	}
	if args.Search != "" {
		pattern := "%" + args.Search + "%"
		q = q.Where("item_name LIKE ? OR web_item_name LIKE ? OR item_code LIKE ?", pattern, pattern, pattern)
	}
	for field, values := range args.FieldFilters {
		column, ok := allowedFilterFields[field]
		if !ok || len(values) == 0 {
			// Unknown keys are rejected at the boundary, not propagated.
			continue
		}
		q = q.Where(column+" IN ?", values)
	}

	var items []Item
	err := q.Order("item_code").Offset(args.Start).Limit(pageSize).Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// GetItemMetaByCodes is the batched metadata lookup of the catalog pipeline:
// one query joining stock totals onto the item rows, regardless of how many
// codes are in the page.
func GetItemMetaByCodes(ctx context.Context, db *gorm.DB, itemCodes []string) (map[string]ItemMeta, error) {
	metas := make(map[string]ItemMeta, len(itemCodes))
	if len(itemCodes) == 0 {
		return metas, nil
	}

	var rows []struct {
		Item
		TotalQty decimal.NullDecimal
	}
	err := db.WithContext(ctx).Model(&Item{}).
		Select("items.*, SUM(bins.actual_qty) AS total_qty").
		Joins("LEFT JOIN bins ON bins.item_code = items.item_code").
		Where("items.item_code IN ?", itemCodes).
		Group("items.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		qty := decimal.Zero
		if row.TotalQty.Valid {
			qty = row.TotalQty.Decimal
		}
		metas[row.ItemCode] = ItemMeta{
			ItemCode:      row.ItemCode,
			ItemName:      row.ItemName,
			WebItemName:   row.WebItemName,
			ItemGroup:     row.ItemGroup,
			Brand:         row.Brand,
			ThumbnailURL:  row.ThumbnailURL,
			PriceListRate: row.PriceListRate,
			StockQty:      qty,
			IsStockItem:   row.IsStockItem,
			Discontinued:  row.Discontinued,
			Section:       row.Section,
			SectionOrder:  row.SectionOrder,
		}
	}
	return metas, nil
}

// SetItemPublished flips the published flag. Writing the value it already
// holds is a no-op, so concurrent sweep runs are tolerated.
func SetItemPublished(ctx context.Context, db *gorm.DB, itemCode string, published bool) error {
	return db.WithContext(ctx).Model(&Item{}).
		Where("item_code = ?", itemCode).
		Update("published", published).Error
}

// GetDiscontinuedItems returns every discontinued item, for the unpublish sweep.
func GetDiscontinuedItems(ctx context.Context, db *gorm.DB) ([]Item, error) {
	var items []Item
	err := db.WithContext(ctx).Where("discontinued = ?", true).Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// DistinctItemFieldValues powers the catalog filter list for one field.
func DistinctItemFieldValues(ctx context.Context, db *gorm.DB, column string) ([]string, error) {
	var values []string
	err := db.WithContext(ctx).Model(&Item{}).
		Where("published = ?", true).
		Where(column + " <> ''").
		Distinct(column).
		Order(column).
		Pluck(column, &values).Error
	if err != nil {
		return nil, err
	}
	return values, nil
}

// ItemAttribute is one attribute value on a website item (e.g. Colour=Red).
type ItemAttribute struct {
	ID             int    `gorm:"primary_key" json:"id"`
	ItemCode       string `gorm:"index:idx_item_attr,unique;size:140;not null" json:"item_code"`
	Attribute      string `gorm:"index:idx_item_attr,unique;size:140;not null" json:"attribute"`
	AttributeValue string `gorm:"index:idx_item_attr,unique;size:140;not null" json:"attribute_value"`
}

// GetAttributeFilters lists the distinct attribute values carried by
// published items, keyed by attribute name, for the filter sidebar.
func GetAttributeFilters(ctx context.Context, db *gorm.DB) (map[string][]string, error) {
	var rows []struct {
		Attribute      string
		AttributeValue string
	}
	err := db.WithContext(ctx).Model(&ItemAttribute{}).
		Select("DISTINCT item_attributes.attribute, item_attributes.attribute_value").
		Joins("JOIN items ON items.item_code = item_attributes.item_code").
		Where("items.published = ?", true).
		Order("item_attributes.attribute, item_attributes.attribute_value").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	filters := make(map[string][]string)
	for _, row := range rows {
		filters[row.Attribute] = append(filters[row.Attribute], row.AttributeValue)
	}
	return filters, nil
}
