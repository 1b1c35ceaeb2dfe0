package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/meshmart/internal/common"
	"github.com/dmitrijs2005/meshmart/internal/dbx"
	"github.com/dmitrijs2005/meshmart/internal/server/models"
	"github.com/dmitrijs2005/meshmart/internal/server/repositories/pgerr"
)

// PostgresRepository reads orders over a dbx.DBTX. Orders are written by
// the checkout system, so there is no Create here.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Order, error) {
	query :=
		`SELECT id, user_id, status, created_at FROM orders
		 WHERE id = $1
		 `

	o := &models.Order{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&o.ID, &o.UserID, &o.Status, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || pgerr.IsInvalidID(err) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return o, nil
}

// ListFiles returns every file of every product in the order, grouped by
// product and in display order within each.
func (r *PostgresRepository) ListFiles(ctx context.Context, orderID string) ([]*models.ProductFile, error) {
	query := `SELECT f.id, f.product_id, f.file_name, f.file_type, f.file_size, f.category, f.display_order, f.storage_key, f.created_at
		FROM order_items oi
		JOIN product_files f ON f.product_id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.product_id, f.display_order, f.created_at
		`
	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to select order files: %w", err)
	}
	defer rows.Close()

	result := []*models.ProductFile{}
	for rows.Next() {
		var f models.ProductFile
		if err := rows.Scan(&f.ID, &f.ProductID, &f.FileName, &f.FileType, &f.FileSize,
			&f.Category, &f.DisplayOrder, &f.StorageKey, &f.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
