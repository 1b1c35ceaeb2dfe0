package client

import (
	"context"

	"github.com/dmitrijs2005/meshmart/internal/client/models"
)

type Client interface {
	Register(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) (string, error)
	SetToken(token string)
	Ping(ctx context.Context) error

	CreateProduct(ctx context.Context, title string) (*models.Product, error)
	DeleteProduct(ctx context.Context, productID string) error
	ListProductFiles(ctx context.Context, productID string) ([]models.ProductFile, error)
	DeleteProductFile(ctx context.Context, productID, fileID string) error
	ArrangeProductFiles(ctx context.Context, productID string, order []string, thumbnailID string) error

	RequestUploadGrants(ctx context.Context, productID string, files []models.FileSpec) ([]models.Grant, error)
	ConfirmUpload(ctx context.Context, c models.Confirmation) (*models.ProductFile, error)
	RequestDownload(ctx context.Context, orderID string) ([]models.DownloadFile, error)
}
