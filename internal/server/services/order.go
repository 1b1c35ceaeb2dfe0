package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/meshmart/internal/common"
	"github.com/dmitrijs2005/meshmart/internal/logging"
	"github.com/dmitrijs2005/meshmart/internal/server/models"
	"github.com/dmitrijs2005/meshmart/internal/server/repositories/repomanager"
	"github.com/dustin/go-humanize"
)

// OrderService hands out downloads for completed orders.
type OrderService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       ObjectStore
	log         logging.Logger
}

func NewOrderService(db *sql.DB, m repomanager.RepositoryManager, store ObjectStore, log logging.Logger) *OrderService {
	return &OrderService{db: db, repomanager: m, store: store, log: log}
}

// DownloadGrants returns a presigned GET for every file of the order.
// Only the customer who placed the order may download it, and only once
// it is completed.
func (s *OrderService) DownloadGrants(ctx context.Context, userID, orderID string) ([]DownloadGrant, error) {
	order, err := s.repomanager.Orders(s.db).Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		s.log.Warn(ctx, "download of another user's order refused", "order_id", orderID, "user_id", userID)
		return nil, common.ErrNotOrderOwner
	}
	if order.Status != models.OrderCompleted {
		return nil, common.ErrOrderNotCompleted
	}

	files, err := s.repomanager.Orders(s.db).ListFiles(ctx, orderID)
	if err != nil {
		return nil, err
	}

	grants := make([]DownloadGrant, len(files))
	for i, f := range files {
		u, err := s.store.PresignGet(ctx, f.StorageKey)
		if err != nil {
			return nil, fmt.Errorf("presign %s: %w", f.FileName, err)
		}
		grants[i] = DownloadGrant{
			FileName:     f.FileName,
			Category:     f.Category,
			PresignedURL: u,
			SizeLabel:    humanize.Bytes(uint64(f.FileSize)),
		}
	}

	s.log.Info(ctx, "download granted", "order_id", orderID, "files", len(grants))
	return grants, nil
}
