package middlewares

import (
	"context"

	"bitbucket.org/mmdatafocus/webshop_backend/models"
	"bitbucket.org/mmdatafocus/webshop_backend/utils"
	"github.com/graph-gophers/dataloader/v7"
	"gorm.io/gorm"
)

type itemMetaReader struct {
	db *gorm.DB
}

func (r *itemMetaReader) getItemMetas(ctx context.Context, codes []string) []*dataloader.Result[*models.ItemMeta] {
	metas, err := models.GetItemMetaByCodes(ctx, r.db, codes)
	if err != nil {
		return handleError[*models.ItemMeta](len(codes), err)
	}
	return metaResults(codes, metas)
}

// metaResults orders the batch result by request order. A code with no item
// row resolves to not-found; the untracked-stock defaults only apply to items
// that exist (the batched query already folds those in).
func metaResults(codes []string, metas map[string]models.ItemMeta) []*dataloader.Result[*models.ItemMeta] {
	loaderResults := make([]*dataloader.Result[*models.ItemMeta], 0, len(codes))
	for _, code := range codes {
		meta, ok := metas[code]
		if !ok {
			loaderResults = append(loaderResults, &dataloader.Result[*models.ItemMeta]{Error: utils.ErrNotFound})
			continue
		}
		loaderResults = append(loaderResults, &dataloader.Result[*models.ItemMeta]{Data: &meta})
	}
	return loaderResults
}

func GetItemMeta(ctx context.Context, itemCode string) (*models.ItemMeta, error) {
	loaders := For(ctx)
	return loaders.itemMetaLoader.Load(ctx, itemCode)()
}

func GetItemMetas(ctx context.Context, itemCodes []string) ([]*models.ItemMeta, []error) {
	loaders := For(ctx)
	return loaders.itemMetaLoader.LoadMany(ctx, itemCodes)()
}
