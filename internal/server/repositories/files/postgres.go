package files

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

// PostgresRepository implements file record storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert records a confirmed upload keyed by its storage key. Confirming the
// same key twice updates the existing row and returns it, so a retried
// confirmation never creates a duplicate. A key that already belongs to a
// different product yields common.ErrConflict; an unknown product yields
// common.ErrNotFound.
func (r *PostgresRepository) Upsert(ctx context.Context, f *models.ProductFile) (*models.ProductFile, error) {
	query := `
		INSERT INTO product_files (product_id, file_name, file_type, file_size, category, display_order, storage_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (storage_key)
		DO UPDATE SET
			file_name = EXCLUDED.file_name,
			file_type = EXCLUDED.file_type,
			file_size = EXCLUDED.file_size,
			category = EXCLUDED.category,
			display_order = EXCLUDED.display_order
			WHERE product_files.product_id = EXCLUDED.product_id
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		f.ProductID, f.FileName, f.FileType, f.FileSize, f.Category, f.DisplayOrder, f.StorageKey).
		Scan(&f.ID, &f.CreatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, fmt.Errorf("%w: storage key belongs to another product", common.ErrConflict)
		case pgerr.IsForeignKeyViolation(err), pgerr.IsInvalidID(err):
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return f, nil
}

// ListByProduct returns the product's files in display order.
func (r *PostgresRepository) ListByProduct(ctx context.Context, productID string) ([]*models.ProductFile, error) {
	query := `SELECT id, product_id, file_name, file_type, file_size, category, display_order, is_thumbnail, storage_key, created_at
		FROM product_files
		WHERE product_id = $1
		ORDER BY display_order, created_at
		`
	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		if pgerr.IsInvalidID(err) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to select files: %w", err)
	}
	defer rows.Close()

	result := []*models.ProductFile{}
	for rows.Next() {
		var f models.ProductFile
		if err := rows.Scan(&f.ID, &f.ProductID, &f.FileName, &f.FileType, &f.FileSize,
			&f.Category, &f.DisplayOrder, &f.IsThumbnail, &f.StorageKey, &f.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes one file record of the product and returns the storage key
// it pointed at.
func (r *PostgresRepository) Delete(ctx context.Context, productID, fileID string) (string, error) {
	query := `DELETE FROM product_files
		WHERE id = $1 AND product_id = $2
		RETURNING storage_key`

	var key string
	if err := r.db.QueryRowContext(ctx, query, fileID, productID).Scan(&key); err != nil {
		if errors.Is(err, sql.ErrNoRows) || pgerr.IsInvalidID(err) {
			return "", common.ErrNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return key, nil
}

func (r *PostgresRepository) SetDisplayOrder(ctx context.Context, productID, fileID string, order int) error {
	query := `UPDATE product_files SET display_order = $1
		WHERE id = $2 AND product_id = $3`

	res, err := r.db.ExecContext(ctx, query, order, fileID, productID)
	if err != nil {
		if pgerr.IsInvalidID(err) {
			return common.ErrNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExactlyOne(res, common.ErrNotFound)
}

// SetThumbnail makes fileID the only thumbnail of the product. The old flag
// is cleared first so the partial unique index never sees two.
func (r *PostgresRepository) SetThumbnail(ctx context.Context, productID, fileID string) error {
	clearQuery := `UPDATE product_files SET is_thumbnail = false
		WHERE product_id = $1 AND is_thumbnail`
	if _, err := r.db.ExecContext(ctx, clearQuery, productID); err != nil {
		if pgerr.IsInvalidID(err) {
			return common.ErrNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}

	setQuery := `UPDATE product_files SET is_thumbnail = true
		WHERE id = $1 AND product_id = $2`
	res, err := r.db.ExecContext(ctx, setQuery, fileID, productID)
	if err != nil {
		if pgerr.IsInvalidID(err) {
			return common.ErrNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExactlyOne(res, common.ErrNotFound)
}
