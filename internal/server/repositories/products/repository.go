package products

import (
	"context"

	"github.com/dmitrijs2005/meshmart/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, p *models.Product) (*models.Product, error)
	Get(ctx context.Context, id string) (*models.Product, error)
	Delete(ctx context.Context, id string) error
}
