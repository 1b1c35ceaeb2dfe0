package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/meshmart/internal/common"
	"github.com/dmitrijs2005/meshmart/internal/logging"
	"github.com/dmitrijs2005/meshmart/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newProductService(t *testing.T, repos *memRepos) (*ProductService, *fakeStore) {
	t.Helper()
	store := &fakeStore{}
	t.Cleanup(func() { store.AssertExpectations(t) })

	orig := newStorageKey
	newStorageKey = func(productID, fileName string) string {
		return "products/" + productID + "/2026/10/key/" + fileName
	}
	t.Cleanup(func() { newStorageKey = orig })

	return NewProductService(nil, repos, store, logging.Nop()), store
}

func TestProductService_Create(t *testing.T) {
	repos := newMemRepos()
	s, _ := newProductService(t, repos)

	p, err := s.Create(context.Background(), "u1", "  Ancient Statue ")
	require.NoError(t, err)
	assert.Equal(t, "Ancient Statue", p.Title)
	assert.Equal(t, "u1", p.CreatedBy)
	assert.NotEmpty(t, p.ID)

	_, err = s.Create(context.Background(), "u1", "   ")
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestProductService_IssueUploadGrants(t *testing.T) {
	repos := newMemRepos()
	repos.addProduct("p1")
	s, store := newProductService(t, repos)

	exp := time.Date(2026, 10, 16, 12, 15, 0, 0, time.UTC)
	store.On("PresignPut", mock.Anything, "products/p1/2026/10/key/statue.fbx", "application/octet-stream").
		Return("http://s3/put/statue", exp, nil).Once()
	store.On("PresignPut", mock.Anything, "products/p1/2026/10/key/cover.png", "image/png").
		Return("http://s3/put/cover", exp, nil).Once()

	grants, err := s.IssueUploadGrants(context.Background(), "p1", []UploadSpec{
		{FileName: "statue.fbx", FileType: "application/octet-stream", FileSize: 2048, Category: "model"},
		{FileName: "cover.png", FileSize: 100, Category: "Preview"},
	})
	require.NoError(t, err)
	require.Len(t, grants, 2)

	assert.Equal(t, UploadGrant{
		FileName:     "statue.fbx",
		PresignedURL: "http://s3/put/statue",
		StorageKey:   "products/p1/2026/10/key/statue.fbx",
		Category:     "model",
		ExpiresAt:    exp,
	}, grants[0])
	assert.Equal(t, "image", grants[1].Category, "aliases are normalized")
}

func TestProductService_IssueUploadGrantsRejects(t *testing.T) {
	ok := UploadSpec{FileName: "statue.fbx", FileSize: 10, Category: "model"}

	tests := []struct {
		name    string
		product string
		specs   []UploadSpec
		wantErr error
	}{
		{name: "no files", product: "p1", wantErr: common.ErrValidation},
		{name: "unknown product", product: "nope", specs: []UploadSpec{ok}, wantErr: common.ErrNotFound},
		{name: "duplicate names", product: "p1", specs: []UploadSpec{ok, ok}, wantErr: common.ErrValidation},
		{name: "wrong extension", product: "p1", specs: []UploadSpec{ok, {FileName: "run.exe", FileSize: 1, Category: "model"}}, wantErr: common.ErrValidation},
		{name: "unknown category", product: "p1", specs: []UploadSpec{{FileName: "a.fbx", FileSize: 1, Category: "sound"}}, wantErr: common.ErrValidation},
		{name: "empty file", product: "p1", specs: []UploadSpec{{FileName: "a.fbx", Category: "model"}}, wantErr: common.ErrValidation},
		{name: "no name", product: "p1", specs: []UploadSpec{{FileName: " ", FileSize: 1, Category: "other"}}, wantErr: common.ErrValidation},
		{name: "too many", product: "p1", specs: make([]UploadSpec, maxGrantsPerRequest+1), wantErr: common.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repos := newMemRepos()
			repos.addProduct("p1")
			s, _ := newProductService(t, repos)

			_, err := s.IssueUploadGrants(context.Background(), tt.product, tt.specs)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestProductService_IssueUploadGrantsPresignError(t *testing.T) {
	repos := newMemRepos()
	repos.addProduct("p1")
	s, store := newProductService(t, repos)

	store.On("PresignPut", mock.Anything, mock.Anything, mock.Anything).
		Return("", time.Time{}, errors.New("s3 down"))

	_, err := s.IssueUploadGrants(context.Background(), "p1", []UploadSpec{{FileName: "a.fbx", FileSize: 1, Category: "model"}})
	require.ErrorContains(t, err, "s3 down")
}

func TestProductService_ConfirmUploadIsIdempotent(t *testing.T) {
	repos := newMemRepos()
	repos.addProduct("p1")
	s, _ := newProductService(t, repos)

	c := Confirmation{
		FileName:     "statue.fbx",
		FileSize:     2048,
		StorageKey:   "products/p1/2026/10/key/statue.fbx",
		Category:     "model",
		DisplayOrder: 2,
	}

	first, err := s.ConfirmUpload(context.Background(), "p1", c)
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", first.FileType)

	c.DisplayOrder = 3
	second, err := s.ConfirmUpload(context.Background(), "p1", c)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 3, second.DisplayOrder)

	files, err := s.ListFiles(context.Background(), "p1")
	require.NoError(t, err)
	assert.Len(t, files, 1)
	assert.Equal(t, "http://cdn/products/p1/2026/10/key/statue.fbx", s.PublicURL(files[0].StorageKey))
}

func TestProductService_ConfirmUploadRejects(t *testing.T) {
	valid := Confirmation{FileName: "a.fbx", FileSize: 1, StorageKey: "products/p1/x/a.fbx", Category: "model"}

	tests := []struct {
		name    string
		mutate  func(c *Confirmation)
		wantErr error
	}{
		{name: "key of another product", mutate: func(c *Confirmation) { c.StorageKey = "products/p2/x/a.fbx" }, wantErr: common.ErrValidation},
		{name: "prefix lookalike", mutate: func(c *Confirmation) { c.StorageKey = "products/p10/x/a.fbx" }, wantErr: common.ErrValidation},
		{name: "bad category", mutate: func(c *Confirmation) { c.Category = "texture" }, wantErr: common.ErrValidation},
		{name: "negative order", mutate: func(c *Confirmation) { c.DisplayOrder = -1 }, wantErr: common.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repos := newMemRepos()
			repos.addProduct("p1")
			s, _ := newProductService(t, repos)

			c := valid
			tt.mutate(&c)
			_, err := s.ConfirmUpload(context.Background(), "p1", c)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestProductService_ListFilesUnknownProduct(t *testing.T) {
	s, _ := newProductService(t, newMemRepos())

	_, err := s.ListFiles(context.Background(), "p9")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestProductService_DeleteFile(t *testing.T) {
	repos := newMemRepos()
	repos.addProduct("p1")
	repos.addFile(models.ProductFile{ID: "f1", ProductID: "p1", FileName: "a.fbx", StorageKey: "k1"})
	repos.addFile(models.ProductFile{ID: "f2", ProductID: "p1", FileName: "b.fbx", StorageKey: "k2"})
	s, store := newProductService(t, repos)

	store.On("Delete", mock.Anything, "k1").Return(nil).Once()
	store.On("Delete", mock.Anything, "k2").Return(errors.New("denied")).Once()

	require.NoError(t, s.DeleteFile(context.Background(), "p1", "f1"))
	require.NoError(t, s.DeleteFile(context.Background(), "p1", "f2"), "storage errors are only logged")
	require.ErrorIs(t, s.DeleteFile(context.Background(), "p1", "f1"), common.ErrNotFound)
}

func TestProductService_Delete(t *testing.T) {
	repos := newMemRepos()
	repos.addProduct("p1")
	repos.addFile(models.ProductFile{ID: "f1", ProductID: "p1", StorageKey: "k1"})
	repos.addFile(models.ProductFile{ID: "f2", ProductID: "p1", StorageKey: "k2", DisplayOrder: 1})

	s, store := newProductService(t, repos)
	db, m := txDB(t, true)
	s.db = db

	store.On("Delete", mock.Anything, "k1").Return(nil).Once()
	store.On("Delete", mock.Anything, "k2").Return(nil).Once()

	require.NoError(t, s.Delete(context.Background(), "p1"))
	require.NoError(t, m.ExpectationsWereMet())
	assert.Empty(t, repos.products)
	assert.Empty(t, repos.files)
}

func TestProductService_DeleteMissingRollsBack(t *testing.T) {
	s, _ := newProductService(t, newMemRepos())
	db, m := txDB(t, false)
	s.db = db

	require.ErrorIs(t, s.Delete(context.Background(), "p1"), common.ErrNotFound)
	require.NoError(t, m.ExpectationsWereMet())
}

func arrangedFiles(repos *memRepos, productID string) (names []string, thumbnail string) {
	repos.mu.Lock()
	defer repos.mu.Unlock()
	for _, f := range repos.listLocked(productID) {
		names = append(names, f.FileName)
		if f.IsThumbnail {
			thumbnail = f.FileName
		}
	}
	return names, thumbnail
}

func TestProductService_Arrange(t *testing.T) {
	repos := newMemRepos()
	repos.addProduct("p1")
	repos.addFile(models.ProductFile{ID: "f1", ProductID: "p1", FileName: "statue.fbx", Category: "model", DisplayOrder: 0})
	repos.addFile(models.ProductFile{ID: "f2", ProductID: "p1", FileName: "cover.png", Category: "image", DisplayOrder: 1, IsThumbnail: true})
	repos.addFile(models.ProductFile{ID: "f3", ProductID: "p1", FileName: "side.png", Category: "image", DisplayOrder: 2})
	repos.addFile(models.ProductFile{ID: "f4", ProductID: "p1", FileName: "wood.tga", Category: "texture", DisplayOrder: 3})

	s, _ := newProductService(t, repos)
	db, m := txDB(t, true)
	s.db = db

	require.NoError(t, s.Arrange(context.Background(), "p1", []string{"f3", "f1"}, "f3"))
	require.NoError(t, m.ExpectationsWereMet())

	names, thumb := arrangedFiles(repos, "p1")
	assert.Equal(t, []string{"side.png", "statue.fbx", "cover.png", "wood.tga"}, names, "unlisted files follow in their old order")
	assert.Equal(t, "side.png", thumb)
}

func TestProductService_ArrangeRejects(t *testing.T) {
	tests := []struct {
		name      string
		productID string
		order     []string
		thumbnail string
		wantErr   error
		noTx      bool
	}{
		{name: "duplicate id", productID: "p1", order: []string{"f1", "f1"}, wantErr: common.ErrValidation, noTx: true},
		{name: "empty id", productID: "p1", order: []string{""}, wantErr: common.ErrValidation, noTx: true},
		{name: "unknown product", productID: "p9", order: []string{"f1"}, wantErr: common.ErrNotFound},
		{name: "file of another product", productID: "p1", order: []string{"f1", "other"}, wantErr: common.ErrValidation},
		{name: "thumbnail of another product", productID: "p1", order: []string{"f1"}, thumbnail: "other", wantErr: common.ErrValidation},
		{name: "thumbnail not an image", productID: "p1", order: []string{"f2", "f1"}, thumbnail: "f1", wantErr: common.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repos := newMemRepos()
			repos.addProduct("p1")
			repos.addProduct("p2")
			repos.addFile(models.ProductFile{ID: "f1", ProductID: "p1", FileName: "statue.fbx", Category: "model", DisplayOrder: 0})
			repos.addFile(models.ProductFile{ID: "f2", ProductID: "p1", FileName: "cover.png", Category: "image", DisplayOrder: 1})
			repos.addFile(models.ProductFile{ID: "other", ProductID: "p2", FileName: "x.png", Category: "image"})

			s, _ := newProductService(t, repos)
			if !tt.noTx {
				db, m := txDB(t, false)
				s.db = db
				t.Cleanup(func() { require.NoError(t, m.ExpectationsWereMet()) })
			}

			err := s.Arrange(context.Background(), tt.productID, tt.order, tt.thumbnail)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}
