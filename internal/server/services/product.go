package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/meshmart/internal/catalog"
	"github.com/dmitrijs2005/meshmart/internal/common"
	"github.com/dmitrijs2005/meshmart/internal/dbx"
	"github.com/dmitrijs2005/meshmart/internal/logging"
	"github.com/dmitrijs2005/meshmart/internal/server/models"
	"github.com/dmitrijs2005/meshmart/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/meshmart/internal/server/storage"
)

const (
	maxTitleLen         = 200
	maxGrantsPerRequest = 100
)

// newStorageKey is a seam so tests get predictable keys.
var newStorageKey = storage.NewStorageKey

// ProductService manages products and their files for administrators.
type ProductService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       ObjectStore
	log         logging.Logger
}

func NewProductService(db *sql.DB, m repomanager.RepositoryManager, store ObjectStore, log logging.Logger) *ProductService {
	return &ProductService{db: db, repomanager: m, store: store, log: log}
}

// Create makes an empty product owned by adminID.
func (s *ProductService) Create(ctx context.Context, adminID, title string) (*models.Product, error) {
	title = strings.TrimSpace(title)
	if title == "" || len(title) > maxTitleLen {
		return nil, fmt.Errorf("%w: title must be 1 to %d characters", common.ErrValidation, maxTitleLen)
	}

	p, err := s.repomanager.Products(s.db).Create(ctx, &models.Product{Title: title, CreatedBy: adminID})
	if err != nil {
		return nil, fmt.Errorf("error creating product: %w", err)
	}
	s.log.Info(ctx, "product created", "product_id", p.ID, "title", p.Title)
	return p, nil
}

// Delete removes the product with its file records, then its objects.
// Objects that cannot be removed are logged and left behind.
func (s *ProductService) Delete(ctx context.Context, productID string) error {
	keys, err := dbx.InTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) ([]string, error) {
		files, err := s.repomanager.Files(tx).ListByProduct(ctx, productID)
		if err != nil {
			return nil, err
		}
		if err := s.repomanager.Products(tx).Delete(ctx, productID); err != nil {
			return nil, err
		}
		keys := make([]string, len(files))
		for i, f := range files {
			keys[i] = f.StorageKey
		}
		return keys, nil
	})
	if err != nil {
		return err
	}

	for _, k := range keys {
		s.removeObject(ctx, k)
	}
	s.log.Info(ctx, "product deleted", "product_id", productID, "files", len(keys))
	return nil
}

// ListFiles returns the product's files in display order.
func (s *ProductService) ListFiles(ctx context.Context, productID string) ([]*models.ProductFile, error) {
	if _, err := s.repomanager.Products(s.db).Get(ctx, productID); err != nil {
		return nil, err
	}
	return s.repomanager.Files(s.db).ListByProduct(ctx, productID)
}

// DeleteFile removes one file record and its object.
func (s *ProductService) DeleteFile(ctx context.Context, productID, fileID string) error {
	key, err := s.repomanager.Files(s.db).Delete(ctx, productID, fileID)
	if err != nil {
		return err
	}
	s.removeObject(ctx, key)
	return nil
}

// Arrange stores the display order of the product's files. Files named in
// order come first, in that order; the rest keep their relative order after
// them. A non-empty thumbnailID must name an image file of the product and
// becomes its only thumbnail.
func (s *ProductService) Arrange(ctx context.Context, productID string, order []string, thumbnailID string) error {
	seen := make(map[string]bool, len(order))
	for _, id := range order {
		if id == "" || seen[id] {
			return fmt.Errorf("%w: file %q is listed twice or empty", common.ErrValidation, id)
		}
		seen[id] = true
	}

	_, err := dbx.InTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) (struct{}, error) {
		if _, err := s.repomanager.Products(tx).Get(ctx, productID); err != nil {
			return struct{}{}, err
		}
		repo := s.repomanager.Files(tx)
		current, err := repo.ListByProduct(ctx, productID)
		if err != nil {
			return struct{}{}, err
		}

		byID := make(map[string]*models.ProductFile, len(current))
		for _, f := range current {
			byID[f.ID] = f
		}
		arranged := make([]*models.ProductFile, 0, len(current))
		for _, id := range order {
			f, ok := byID[id]
			if !ok {
				return struct{}{}, fmt.Errorf("%w: file %s does not belong to product %s", common.ErrValidation, id, productID)
			}
			arranged = append(arranged, f)
		}
		for _, f := range current {
			if !seen[f.ID] {
				arranged = append(arranged, f)
			}
		}

		for i, f := range arranged {
			if f.DisplayOrder == i {
				continue
			}
			if err := repo.SetDisplayOrder(ctx, productID, f.ID, i); err != nil {
				return struct{}{}, err
			}
		}

		if thumbnailID == "" {
			return struct{}{}, nil
		}
		t, ok := byID[thumbnailID]
		if !ok {
			return struct{}{}, fmt.Errorf("%w: thumbnail %s does not belong to product %s", common.ErrValidation, thumbnailID, productID)
		}
		if t.Category != string(catalog.Image) {
			return struct{}{}, fmt.Errorf("%w: thumbnail %s is not a preview image", common.ErrValidation, t.FileName)
		}
		if t.IsThumbnail {
			return struct{}{}, nil
		}
		return struct{}{}, repo.SetThumbnail(ctx, productID, thumbnailID)
	})
	if err != nil {
		return err
	}

	s.log.Info(ctx, "files arranged", "product_id", productID, "files", len(order), "thumbnail", thumbnailID)
	return nil
}

// IssueUploadGrants validates every spec and returns one presigned PUT per
// file, in request order. Nothing is granted unless every file is valid.
func (s *ProductService) IssueUploadGrants(ctx context.Context, productID string, specs []UploadSpec) ([]UploadGrant, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("%w: no files", common.ErrValidation)
	}
	if len(specs) > maxGrantsPerRequest {
		return nil, fmt.Errorf("%w: at most %d files per request", common.ErrValidation, maxGrantsPerRequest)
	}
	if _, err := s.repomanager.Products(s.db).Get(ctx, productID); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(specs))
	categories := make([]catalog.Category, len(specs))
	for i, sp := range specs {
		if _, dup := seen[sp.FileName]; dup {
			return nil, fmt.Errorf("%w: %s is listed twice", common.ErrValidation, sp.FileName)
		}
		seen[sp.FileName] = struct{}{}
		c, err := checkFile(sp.FileName, sp.FileSize, sp.Category)
		if err != nil {
			return nil, err
		}
		categories[i] = c
	}

	grants := make([]UploadGrant, len(specs))
	for i, sp := range specs {
		key := newStorageKey(productID, sp.FileName)
		contentType := sp.FileType
		if contentType == "" {
			contentType = catalog.ContentType(sp.FileName)
		}

		u, expires, err := s.store.PresignPut(ctx, key, contentType)
		if err != nil {
			return nil, fmt.Errorf("presign %s: %w", sp.FileName, err)
		}
		grants[i] = UploadGrant{
			FileName:     sp.FileName,
			PresignedURL: u,
			StorageKey:   key,
			Category:     string(categories[i]),
			ExpiresAt:    expires,
		}
	}

	s.log.Debug(ctx, "upload grants issued", "product_id", productID, "files", len(grants))
	return grants, nil
}

// ConfirmUpload records an uploaded object. Confirming the same storage key
// again returns the existing record updated with c.
func (s *ProductService) ConfirmUpload(ctx context.Context, productID string, c Confirmation) (*models.ProductFile, error) {
	if !strings.HasPrefix(c.StorageKey, storage.ProductPrefix(productID)) {
		return nil, fmt.Errorf("%w: storage key does not belong to product %s", common.ErrValidation, productID)
	}
	category, err := checkFile(c.FileName, c.FileSize, c.Category)
	if err != nil {
		return nil, err
	}
	if c.DisplayOrder < 0 {
		return nil, fmt.Errorf("%w: display order must not be negative", common.ErrValidation)
	}

	fileType := c.FileType
	if fileType == "" {
		fileType = catalog.ContentType(c.FileName)
	}

	f, err := s.repomanager.Files(s.db).Upsert(ctx, &models.ProductFile{
		ProductID:    productID,
		FileName:     c.FileName,
		FileType:     fileType,
		FileSize:     c.FileSize,
		Category:     string(category),
		DisplayOrder: c.DisplayOrder,
		StorageKey:   c.StorageKey,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "upload confirmed", "product_id", productID, "file_id", f.ID, "file", f.FileName)
	return f, nil
}

// PublicURL is the bucket address of a stored file.
func (s *ProductService) PublicURL(key string) string {
	return s.store.PublicURL(key)
}

func (s *ProductService) removeObject(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		s.log.Warn(ctx, "object left in storage", "key", key, "error", err)
	}
}

func checkFile(name string, size int64, category string) (catalog.Category, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("%w: file name is required", common.ErrValidation)
	}
	c, err := catalog.ParseCategory(category)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", common.ErrValidation, name, err)
	}
	if err := catalog.Check(name, size, c); err != nil {
		return "", fmt.Errorf("%w: %s: %w", common.ErrValidation, name, err)
	}
	return c, nil
}
