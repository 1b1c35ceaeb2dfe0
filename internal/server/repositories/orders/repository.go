package orders

import (
	"context"

	"github.com/dmitrijs2005/meshmart/internal/server/models"
)

type Repository interface {
	Get(ctx context.Context, id string) (*models.Order, error)
	ListFiles(ctx context.Context, orderID string) ([]*models.ProductFile, error)
}
