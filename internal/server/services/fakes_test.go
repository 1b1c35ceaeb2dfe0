package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/meshmart/internal/common"
	"github.com/dmitrijs2005/meshmart/internal/dbx"
	"github.com/dmitrijs2005/meshmart/internal/server/models"
	"github.com/dmitrijs2005/meshmart/internal/server/repositories/files"
	"github.com/dmitrijs2005/meshmart/internal/server/repositories/orders"
	"github.com/dmitrijs2005/meshmart/internal/server/repositories/products"
	"github.com/dmitrijs2005/meshmart/internal/server/repositories/users"
	"github.com/stretchr/testify/mock"
)

// fakeStore is a testify mock of ObjectStore.
type fakeStore struct{ mock.Mock }

func (m *fakeStore) PresignPut(ctx context.Context, key, contentType string) (string, time.Time, error) {
	args := m.Called(ctx, key, contentType)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *fakeStore) PresignGet(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *fakeStore) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *fakeStore) PublicURL(key string) string {
	return "http://cdn/" + key
}

// memRepos is an in-memory stand-in for every repository.
type memRepos struct {
	mu sync.Mutex

	users    map[string]*models.User
	products map[string]*models.Product
	files    map[string]*models.ProductFile
	orders   map[string]*models.Order
	items    map[string][]string

	seq int

	failUsers error
	failFiles error
}

func newMemRepos() *memRepos {
	return &memRepos{
		users:    map[string]*models.User{},
		products: map[string]*models.Product{},
		files:    map[string]*models.ProductFile{},
		orders:   map[string]*models.Order{},
		items:    map[string][]string{},
	}
}

func (r *memRepos) nextID(prefix string) string {
	r.seq++
	return fmt.Sprintf("%s%d", prefix, r.seq)
}

func (r *memRepos) RunMigrations(context.Context, *sql.DB) error { return nil }
func (r *memRepos) Users(dbx.DBTX) users.Repository               { return memUsers{r} }
func (r *memRepos) Products(dbx.DBTX) products.Repository         { return memProducts{r} }
func (r *memRepos) Files(dbx.DBTX) files.Repository               { return memFiles{r} }
func (r *memRepos) Orders(dbx.DBTX) orders.Repository             { return memOrders{r} }

type memUsers struct{ r *memRepos }

func (u memUsers) Create(_ context.Context, user *models.User) (*models.User, error) {
	u.r.mu.Lock()
	defer u.r.mu.Unlock()
	if u.r.failUsers != nil {
		return nil, u.r.failUsers
	}
	if _, ok := u.r.users[user.UserName]; ok {
		return nil, common.ErrAlreadyExists
	}
	user.ID = u.r.nextID("u")
	user.CreatedAt = time.Now()
	cp := *user
	u.r.users[user.UserName] = &cp
	return user, nil
}

func (u memUsers) GetUserByLogin(_ context.Context, login string) (*models.User, error) {
	u.r.mu.Lock()
	defer u.r.mu.Unlock()
	if u.r.failUsers != nil {
		return nil, u.r.failUsers
	}
	user, ok := u.r.users[login]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *user
	return &cp, nil
}

type memProducts struct{ r *memRepos }

func (p memProducts) Create(_ context.Context, pr *models.Product) (*models.Product, error) {
	p.r.mu.Lock()
	defer p.r.mu.Unlock()
	pr.ID = p.r.nextID("p")
	cp := *pr
	p.r.products[pr.ID] = &cp
	return pr, nil
}

func (p memProducts) Get(_ context.Context, id string) (*models.Product, error) {
	p.r.mu.Lock()
	defer p.r.mu.Unlock()
	pr, ok := p.r.products[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *pr
	return &cp, nil
}

func (p memProducts) Delete(_ context.Context, id string) error {
	p.r.mu.Lock()
	defer p.r.mu.Unlock()
	if _, ok := p.r.products[id]; !ok {
		return common.ErrNotFound
	}
	delete(p.r.products, id)
	for fid, f := range p.r.files {
		if f.ProductID == id {
			delete(p.r.files, fid)
		}
	}
	return nil
}

type memFiles struct{ r *memRepos }

func (f memFiles) Upsert(_ context.Context, file *models.ProductFile) (*models.ProductFile, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	if f.r.failFiles != nil {
		return nil, f.r.failFiles
	}
	if _, ok := f.r.products[file.ProductID]; !ok {
		return nil, common.ErrNotFound
	}
	for _, existing := range f.r.files {
		if existing.StorageKey == file.StorageKey {
			if existing.ProductID != file.ProductID {
				return nil, common.ErrConflict
			}
			id := existing.ID
			*existing = *file
			existing.ID = id
			cp := *existing
			return &cp, nil
		}
	}
	file.ID = f.r.nextID("f")
	cp := *file
	f.r.files[file.ID] = &cp
	return file, nil
}

func (f memFiles) ListByProduct(_ context.Context, productID string) ([]*models.ProductFile, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	return f.r.listLocked(productID), nil
}

func (r *memRepos) listLocked(productID string) []*models.ProductFile {
	out := []*models.ProductFile{}
	for _, file := range r.files {
		if file.ProductID == productID {
			cp := *file
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayOrder < out[j].DisplayOrder })
	return out
}

func (f memFiles) SetDisplayOrder(_ context.Context, productID, fileID string, order int) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	if f.r.failFiles != nil {
		return f.r.failFiles
	}
	file, ok := f.r.files[fileID]
	if !ok || file.ProductID != productID {
		return common.ErrNotFound
	}
	file.DisplayOrder = order
	return nil
}

func (f memFiles) SetThumbnail(_ context.Context, productID, fileID string) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	file, ok := f.r.files[fileID]
	if !ok || file.ProductID != productID {
		return common.ErrNotFound
	}
	for _, other := range f.r.files {
		if other.ProductID == productID {
			other.IsThumbnail = false
		}
	}
	file.IsThumbnail = true
	return nil
}

func (f memFiles) Delete(_ context.Context, productID, fileID string) (string, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	file, ok := f.r.files[fileID]
	if !ok || file.ProductID != productID {
		return "", common.ErrNotFound
	}
	delete(f.r.files, fileID)
	return file.StorageKey, nil
}

type memOrders struct{ r *memRepos }

func (o memOrders) Get(_ context.Context, id string) (*models.Order, error) {
	o.r.mu.Lock()
	defer o.r.mu.Unlock()
	order, ok := o.r.orders[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *order
	return &cp, nil
}

func (o memOrders) ListFiles(_ context.Context, orderID string) ([]*models.ProductFile, error) {
	o.r.mu.Lock()
	defer o.r.mu.Unlock()
	out := []*models.ProductFile{}
	for _, pid := range o.r.items[orderID] {
		out = append(out, o.r.listLocked(pid)...)
	}
	return out, nil
}

// txDB returns a sqlmock DB expecting a single transaction that commits
// or rolls back, for services that wrap repository calls in dbx.InTx.
func txDB(t *testing.T, commit bool) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, m, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	m.ExpectBegin()
	if commit {
		m.ExpectCommit()
	} else {
		m.ExpectRollback()
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, m
}

func newUser(name string) *models.User {
	return &models.User{UserName: name, PasswordHash: "x", Role: common.RoleCustomer}
}

func (r *memRepos) addProduct(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[id] = &models.Product{ID: id, Title: "Product " + id}
}

func (r *memRepos) addFile(f models.ProductFile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files[f.ID] = &f
}
