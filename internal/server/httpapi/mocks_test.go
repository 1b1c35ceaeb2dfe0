package httpapi

import (
	"context"

	"github.com/dmitrijs2005/meshmart/internal/server/models"
	"github.com/dmitrijs2005/meshmart/internal/server/services"
	"github.com/stretchr/testify/mock"
)

type mockUsers struct{ mock.Mock }

func (m *mockUsers) Register(ctx context.Context, username, password string) (*models.User, error) {
	args := m.Called(ctx, username, password)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUsers) Login(ctx context.Context, username, password string) (string, error) {
	args := m.Called(ctx, username, password)
	return args.String(0), args.Error(1)
}

type mockProducts struct{ mock.Mock }

func (m *mockProducts) Create(ctx context.Context, adminID, title string) (*models.Product, error) {
	args := m.Called(ctx, adminID, title)
	p, _ := args.Get(0).(*models.Product)
	return p, args.Error(1)
}

func (m *mockProducts) Delete(ctx context.Context, productID string) error {
	return m.Called(ctx, productID).Error(0)
}

func (m *mockProducts) ListFiles(ctx context.Context, productID string) ([]*models.ProductFile, error) {
	args := m.Called(ctx, productID)
	files, _ := args.Get(0).([]*models.ProductFile)
	return files, args.Error(1)
}

func (m *mockProducts) DeleteFile(ctx context.Context, productID, fileID string) error {
	return m.Called(ctx, productID, fileID).Error(0)
}

func (m *mockProducts) Arrange(ctx context.Context, productID string, order []string, thumbnailID string) error {
	return m.Called(ctx, productID, order, thumbnailID).Error(0)
}

func (m *mockProducts) IssueUploadGrants(ctx context.Context, productID string, specs []services.UploadSpec) ([]services.UploadGrant, error) {
	args := m.Called(ctx, productID, specs)
	grants, _ := args.Get(0).([]services.UploadGrant)
	return grants, args.Error(1)
}

func (m *mockProducts) ConfirmUpload(ctx context.Context, productID string, c services.Confirmation) (*models.ProductFile, error) {
	args := m.Called(ctx, productID, c)
	f, _ := args.Get(0).(*models.ProductFile)
	return f, args.Error(1)
}

func (m *mockProducts) PublicURL(key string) string {
	return "http://cdn/" + key
}

type mockOrders struct{ mock.Mock }

func (m *mockOrders) DownloadGrants(ctx context.Context, userID, orderID string) ([]services.DownloadGrant, error) {
	args := m.Called(ctx, userID, orderID)
	grants, _ := args.Get(0).([]services.DownloadGrant)
	return grants, args.Error(1)
}
