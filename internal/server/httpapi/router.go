// Package httpapi exposes the gateway's JSON API over chi.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/meshmart/internal/logging"
	"github.com/dmitrijs2005/meshmart/internal/server/models"
	"github.com/dmitrijs2005/meshmart/internal/server/services"
	"github.com/dmitrijs2005/meshmart/internal/wire"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	requestTimeout = 60 * time.Second
	maxBodyBytes   = 1 << 20
)

type UserService interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (string, error)
}

type ProductService interface {
	Create(ctx context.Context, adminID, title string) (*models.Product, error)
	Delete(ctx context.Context, productID string) error
	ListFiles(ctx context.Context, productID string) ([]*models.ProductFile, error)
	DeleteFile(ctx context.Context, productID, fileID string) error
	Arrange(ctx context.Context, productID string, order []string, thumbnailID string) error
	IssueUploadGrants(ctx context.Context, productID string, specs []services.UploadSpec) ([]services.UploadGrant, error)
	ConfirmUpload(ctx context.Context, productID string, c services.Confirmation) (*models.ProductFile, error)
	PublicURL(key string) string
}

type OrderService interface {
	DownloadGrants(ctx context.Context, userID, orderID string) ([]services.DownloadGrant, error)
}

// NewRouter builds the gateway's http.Handler. Product routes need the
// admin role; order downloads need any signed-in user.
func NewRouter(log logging.Logger, secretKey []byte, users UserService, products ProductService, orders OrderService) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.RequestSize(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, log, r, http.StatusOK, wire.HealthResponse{Status: "ok", Timestamp: time.Now()})
	})

	r.Mount("/api/auth", NewAuthHandler(users, log).Routes())

	r.Group(func(r chi.Router) {
		r.Use(Authenticate(secretKey, log))

		r.Mount("/api/orders", NewOrderHandler(orders, log).Routes())

		r.Group(func(r chi.Router) {
			r.Use(RequireAdmin(log))
			r.Mount("/api/products", NewProductHandler(products, log).Routes())
		})
	})

	return r
}
