package products

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

// PostgresRepository implements product storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.Product) (*models.Product, error) {
	query :=
		`INSERT INTO products (title, created_by)
		 VALUES ($1, $2)
		 RETURNING id, created_at
		 `

	if err := r.db.QueryRowContext(ctx, query, p.Title, p.CreatedBy).Scan(&p.ID, &p.CreatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

// Get returns the product with id, or common.ErrNotFound.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Product, error) {
	query :=
		`SELECT id, title, created_by, created_at FROM products
		 WHERE id = $1
		 `

	p := &models.Product{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Title, &p.CreatedBy, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || pgerr.IsInvalidID(err) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

// Delete removes the product. Its file records go with it (ON DELETE CASCADE).
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if pgerr.IsInvalidID(err) {
			return common.ErrNotFound
		}
		if pgerr.IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: product is part of an order", common.ErrConflict)
		}
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExactlyOne(res, common.ErrNotFound)
}
