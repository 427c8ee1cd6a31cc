package middlewares

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/webshop_backend/config"
	"bitbucket.org/mmdatafocus/webshop_backend/models"
	"github.com/gin-gonic/gin"
	"github.com/graph-gophers/dataloader/v7"
	"gorm.io/gorm"
)

type ctxKey string

const (
	loadersKey = ctxKey("dataloaders")
)

// Loaders wrap the per-request data loaders to inject via middleware.
// Requests assembling a product detail page fetch metadata and review stats
// for many codes; the loaders collapse those into one batched query each.
type Loaders struct {
	itemMetaLoader   *dataloader.Loader[string, *models.ItemMeta]
	reviewStatLoader *dataloader.Loader[string, *models.ReviewStats]
}

// NewLoaders instantiates data loaders for the middleware
func NewLoaders(conn *gorm.DB) *Loaders {
	itemMetaReader := &itemMetaReader{db: conn}
	reviewStatReader := &reviewStatReader{db: conn}

	return &Loaders{
		itemMetaLoader:   dataloader.NewBatchedLoader(itemMetaReader.getItemMetas, dataloader.WithWait[string, *models.ItemMeta](time.Millisecond)),
		reviewStatLoader: dataloader.NewBatchedLoader(reviewStatReader.getReviewStats, dataloader.WithWait[string, *models.ReviewStats](time.Millisecond)),
	}
}

func LoaderMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		loader := NewLoaders(config.GetDB())
		ctx := context.WithValue(c.Request.Context(), loadersKey, loader)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func For(ctx context.Context) *Loaders {
	return ctx.Value(loadersKey).(*Loaders)
}

// handleError creates array of result with the same error repeated for as many items requested
func handleError[T any](itemsLength int, err error) []*dataloader.Result[T] {
	result := make([]*dataloader.Result[T], itemsLength)
	for i := 0; i < itemsLength; i++ {
		result[i] = &dataloader.Result[T]{Error: err}
	}
	return result
}
