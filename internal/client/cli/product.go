package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/meshmart/internal/client/staging"
)

func (a *App) requireAdmin() error {
	if !a.isAdmin() {
		fmt.Fprintln(a.out, ErrNotAdmin)
		return ErrNotAdmin
	}
	return nil
}

func (a *App) requireProduct() (*staging.Session, error) {
	if a.staging == nil {
		fmt.Fprintln(a.out, ErrNoProduct)
		return nil, ErrNoProduct
	}
	return a.staging, nil
}

func (a *App) openProduct(productID string) *staging.Session {
	a.closeProduct()
	a.staging = staging.NewSession(productID,
		staging.WithLister(a.api),
		staging.WithPreviewer(a.previews),
		staging.WithLogger(a.log.With("product_id", productID)))
	return a.staging
}

func (a *App) closeProduct() {
	if a.staging != nil {
		a.staging.Close()
		a.staging = nil
	}
}

// CreateProduct creates an empty product and opens it for editing.
func (a *App) CreateProduct(ctx context.Context, title string) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}

	p, err := a.api.CreateProduct(ctx, title)
	if err != nil {
		if !a.sessionLost(ctx, err) {
			fmt.Fprintln(a.out, "Could not create product:", err)
		}
		return err
	}

	a.openProduct(p.ID)
	a.lastResult = nil
	fmt.Fprintf(a.out, "Product %q created with id %s\n", p.Title, p.ID)
	return nil
}

// Edit opens an existing product and loads its files from the gateway.
func (a *App) Edit(ctx context.Context, productID string) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}

	a.openProduct(productID)
	a.lastResult = nil
	return a.Reload(ctx)
}

// Reload refreshes the server files of the open product, keeping local
// additions and pending deletions.
func (a *App) Reload(ctx context.Context) error {
	s, err := a.requireProduct()
	if err != nil {
		return err
	}

	if err := s.Refetch(ctx); err != nil {
		if !a.sessionLost(ctx, err) {
			fmt.Fprintln(a.out, "Could not load product files:", err)
		}
		return err
	}

	fmt.Fprintf(a.out, "Product %s: %d file(s)\n", s.ProductID(), len(s.Active()))
	return nil
}
