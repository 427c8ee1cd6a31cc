package main

import (
	"net/http"
	"strconv"

	"bitbucket.org/mmdatafocus/webshop_backend/config"
	"bitbucket.org/mmdatafocus/webshop_backend/middlewares"
	"bitbucket.org/mmdatafocus/webshop_backend/models"
	"bitbucket.org/mmdatafocus/webshop_backend/utils"
	"bitbucket.org/mmdatafocus/webshop_backend/workflow"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// getProductFiltersHandler serves the catalog filter sidebar: distinct field
// values, attribute values, and sub-categories of the requested group.
// Catalog misconfiguration degrades to empty lists, never an error page.
func getProductFiltersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		db := config.GetDB()
		logger := config.GetLogger()

		itemGroups, err := models.DistinctItemFieldValues(ctx, db, "item_group")
		if err != nil {
			config.LogError(logger, "catalog.go", "getProductFiltersHandler", "item_group distinct", nil, err)
			itemGroups = []string{}
		}
		brands, err := models.DistinctItemFieldValues(ctx, db, "brand")
		if err != nil {
			config.LogError(logger, "catalog.go", "getProductFiltersHandler", "brand distinct", nil, err)
			brands = []string{}
		}
		attributes, err := models.GetAttributeFilters(ctx, db)
		if err != nil {
			config.LogError(logger, "catalog.go", "getProductFiltersHandler", "attribute filters", nil, err)
			attributes = map[string][]string{}
		}

		subCategories := []models.ItemGroup{}
		if parent := c.Query("item_group"); parent != "" {
			subCategories, err = models.GetItemGroupChildren(ctx, db, parent)
			if err != nil {
				config.LogError(logger, "catalog.go", "getProductFiltersHandler", "sub categories", parent, err)
				subCategories = []models.ItemGroup{}
			}
		}

		c.JSON(http.StatusOK, buildProductFilters(itemGroups, brands, attributes, subCategories))
	}
}

// buildProductFilters shapes the sidebar payload: the two filter families sit
// under a single "filters" key, sub-categories beside them.
func buildProductFilters(itemGroups []string, brands []string, attributes map[string][]string, subCategories []models.ItemGroup) gin.H {
	if attributes == nil {
		attributes = map[string][]string{}
	}
	return gin.H{
		"filters": gin.H{
			"field_filters": gin.H{
				"item_group": itemGroups,
				"brand":      brands,
			},
			"attribute_filters": attributes,
		},
		"sub_categories": subCategories,
	}
}

func getStockHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		itemCode := c.Query("item_code")
		if itemCode == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "item_code is required"})
			return
		}
		stock, err := workflow.GetItemStock(c.Request.Context(), config.GetDB(), itemCode, c.Query("warehouse"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, stock)
	}
}

type productsWithStockRequest struct {
	models.CatalogQueryArgs
	PriceMin *decimal.Decimal `json:"price_min"`
	PriceMax *decimal.Decimal `json:"price_max"`
	HomePage bool             `json:"home_page"`
}

func getProductsWithStockHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req productsWithStockRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		ctx, span := tracer.Start(c.Request.Context(), "get_products_with_stock")
		defer span.End()

		db := config.GetDB()
		items, err := models.QueryWebsiteItems(ctx, db, req.CatalogQueryArgs)
		if err != nil {
			respondError(c, err)
			return
		}
		codes := make([]string, 0, len(items))
		for _, item := range items {
			codes = append(codes, item.ItemCode)
		}

		cards, err := workflow.AssembleProducts(ctx, workflow.NewCatalogFetcher(db), codes, workflow.ProductFilter{
			PriceMin: req.PriceMin,
			PriceMax: req.PriceMax,
			HomePage: req.HomePage,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": cards, "count": len(cards)})
	}
}

// getProductInfoHandler assembles the product detail page. Metadata and
// review stats come through the request loaders so parallel detail fetches in
// one request still batch to single queries.
func getProductInfoHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		itemCode := c.Query("item_code")
		if itemCode == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "item_code is required"})
			return
		}
		ctx := c.Request.Context()
		db := config.GetDB()

		meta, err := middlewares.GetItemMeta(ctx, itemCode)
		if err != nil {
			respondError(c, err)
			return
		}
		stats, err := middlewares.GetReviewStats(ctx, itemCode)
		if err != nil {
			respondError(c, err)
			return
		}

		hasWO := false
		if meta.IsStockItem && !meta.StockQty.IsPositive() {
			hasWO, err = models.HasActiveWorkOrder(ctx, db, itemCode)
			if err != nil {
				respondError(c, err)
				return
			}
		}
		status := workflow.ResolveStatus(meta.StockQty, meta.IsStockItem, hasWO)

		wished := false
		if username, ok := utils.GetUsernameFromContext(ctx); ok && username != "" {
			wished, err = models.IsWishlisted(ctx, db, username, itemCode)
			if err != nil {
				respondError(c, err)
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"item":         meta,
			"stock_status": status,
			"in_stock":     status == models.StockStatusInStock,
			"avg_rating":   stats.AvgRating,
			"review_count": stats.ReviewCount,
			"wished":       wished,
		})
	}
}

func getProductReviewsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		itemCode := c.Query("item_code")
		if itemCode == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "item_code is required"})
			return
		}
		reviews, err := models.GetProductReviews(c.Request.Context(), config.GetDB(), itemCode)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"reviews": reviews, "count": len(reviews)})
	}
}

// getProductsBySectionHandler builds the home page: one candidate query over
// the active sections, one assembly pass, grouped and ordered per section.
func getProductsBySectionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		db := config.GetDB()

		sections, err := models.GetActiveSections(ctx, db)
		if err != nil {
			respondError(c, err)
			return
		}
		if len(sections) == 0 {
			c.JSON(http.StatusOK, gin.H{"sections": []models.HomePageSection{}, "items": gin.H{}})
			return
		}

		sectionNames := make([]string, 0, len(sections))
		for _, section := range sections {
			sectionNames = append(sectionNames, section.SectionName)
		}
		items, err := models.QueryWebsiteItems(ctx, db, models.CatalogQueryArgs{
			FieldFilters: map[string][]string{"custom_section": sectionNames},
			PageSize:     models.MaxCatalogPageSize,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		codes := make([]string, 0, len(items))
		for _, item := range items {
			codes = append(codes, item.ItemCode)
		}

		cards, err := workflow.AssembleProducts(ctx, workflow.NewCatalogFetcher(db), codes, workflow.ProductFilter{HomePage: true})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"sections": sections,
			"items":    workflow.GroupBySection(cards, sections),
		})
	}
}

func getShopByCategoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		db := config.GetDB()

		tiles, err := models.GetShopByCategoryTiles(ctx, db)
		if err != nil {
			respondError(c, err)
			return
		}

		filterField := "item_group"
		settings, err := models.GetWebsiteSettings(ctx, db)
		if err != nil {
			respondError(c, err)
			return
		}
		if settings != nil && settings.WebsiteItemField != "" {
			filterField = settings.WebsiteItemField
		}

		c.JSON(http.StatusOK, gin.H{
			"tiles":        tiles,
			"filter_field": filterField,
		})
	}
}

// parsePositiveInt reads an optional positive integer query param, falling
// back to the default on anything else.
func parsePositiveInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
