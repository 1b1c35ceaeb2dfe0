package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/meshmart/internal/server/migrations"
	"github.com/dmitrijs2005/meshmart/internal/server/repositories/files"
	"github.com/dmitrijs2005/meshmart/internal/server/repositories/orders"
	"github.com/dmitrijs2005/meshmart/internal/server/repositories/products"
	"github.com/dmitrijs2005/meshmart/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
)

func newDB(t *testing.T) *sql.DB {
	t.Helper()
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db := newDB(t)

	m := NewPostgresRepositoryManager()

	var _ users.Repository = m.Users(db)
	var _ products.Repository = m.Products(db)
	var _ files.Repository = m.Files(db)
	var _ orders.Repository = m.Orders(db)

	if m.Users(db) == nil || m.Products(db) == nil || m.Files(db) == nil || m.Orders(db) == nil {
		t.Fatal("factory returned nil")
	}
}

func TestRunMigrations_Success(t *testing.T) {
	db := newDB(t)

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if dir != "." {
			return errors.New("unexpected dir")
		}
		return nil
	}
	defer func() { gooseUpContext = orig }()

	m := &PostgresRepositoryManager{}
	if err := m.RunMigrations(context.Background(), db); err != nil {
		t.Fatalf("RunMigrations error: %v", err)
	}
}

func TestRunMigrations_Error(t *testing.T) {
	db := newDB(t)

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	m := &PostgresRepositoryManager{}
	if err := m.RunMigrations(context.Background(), db); err == nil || err.Error() != "boom" {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestMigrationsAreEmbedded(t *testing.T) {
	names, err := fs.Glob(migrations.Migrations, "*.sql")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(names) == 0 || names[0] != "00001_init.sql" {
		t.Fatalf("unexpected migrations: %v", names)
	}
}
