package middlewares

import (
	"context"

	"bitbucket.org/mmdatafocus/webshop_backend/models"
	"github.com/graph-gophers/dataloader/v7"
	"gorm.io/gorm"
)

type reviewStatReader struct {
	db *gorm.DB
}

func (r *reviewStatReader) getReviewStats(ctx context.Context, codes []string) []*dataloader.Result[*models.ReviewStats] {
	stats, err := models.GetReviewStatsByCodes(ctx, r.db, codes)
	if err != nil {
		return handleError[*models.ReviewStats](len(codes), err)
	}

	loaderResults := make([]*dataloader.Result[*models.ReviewStats], 0, len(codes))
	for _, code := range codes {
		stat, ok := stats[code]
		if !ok {
			stat = models.ReviewStats{ItemCode: code}
		}
		loaderResults = append(loaderResults, &dataloader.Result[*models.ReviewStats]{Data: &stat})
	}
	return loaderResults
}

func GetReviewStats(ctx context.Context, itemCode string) (*models.ReviewStats, error) {
	loaders := For(ctx)
	return loaders.reviewStatLoader.Load(ctx, itemCode)()
}
