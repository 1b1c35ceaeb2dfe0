package files

import (
	"context"

	"github.com/dmitrijs2005/meshmart/internal/server/models"
)

type Repository interface {
	Upsert(ctx context.Context, file *models.ProductFile) (*models.ProductFile, error)
	ListByProduct(ctx context.Context, productID string) ([]*models.ProductFile, error)
	Delete(ctx context.Context, productID, fileID string) (storageKey string, err error)
	SetDisplayOrder(ctx context.Context, productID, fileID string, order int) error
	SetThumbnail(ctx context.Context, productID, fileID string) error
}
