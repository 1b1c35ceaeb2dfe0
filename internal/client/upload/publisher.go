package upload

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/meshmart/internal/client/models"
	"github.com/dmitrijs2005/meshmart/internal/logging"
	"github.com/dmitrijs2005/meshmart/internal/transfer"
)

var ErrCompensation = errors.New("compensation failed")

type ProductAPI interface {
	CreateProduct(ctx context.Context, title string) (*models.Product, error)
	DeleteProduct(ctx context.Context, productID string) error
}

// Publisher creates a product and attaches its files in one step. When no
// file ends up attached, the just-created product is removed again.
type Publisher struct {
	products ProductAPI
	uploads  *Orchestrator
	log      logging.Logger
}

func NewPublisher(products ProductAPI, uploads *Orchestrator, log logging.Logger) *Publisher {
	if log == nil {
		log = logging.Nop()
	}
	return &Publisher{products: products, uploads: uploads, log: log}
}

// Publish returns the created product and the upload result. A partial
// failure is not an error; the caller can retry Result.Retry() against the
// returned product.
func (p *Publisher) Publish(ctx context.Context, title string, items []Item, onProgress func(transfer.UploadState)) (*models.Product, *Result, error) {
	if len(items) == 0 {
		return nil, nil, ErrNoItems
	}

	product, err := p.products.CreateProduct(ctx, title)
	if err != nil {
		return nil, nil, fmt.Errorf("create product: %w", err)
	}

	res, err := p.uploads.Upload(ctx, product.ID, items, onProgress)
	if err == nil {
		return product, res, nil
	}

	if res != nil && len(res.Succeeded) > 0 {
		return product, res, err
	}

	if cerr := p.Compensate(ctx, product.ID); cerr != nil {
		return nil, res, errors.Join(err, cerr)
	}
	return nil, res, err
}

// Compensate deletes a product whose files could not be attached.
func (p *Publisher) Compensate(ctx context.Context, productID string) error {
	ctx = context.WithoutCancel(ctx)

	if err := p.products.DeleteProduct(ctx, productID); err != nil {
		p.log.Error(ctx, "orphaned product left behind", "product_id", productID, "error", err)
		return fmt.Errorf("%w: delete product %s: %w", ErrCompensation, productID, err)
	}

	p.log.Info(ctx, "orphaned product removed", "product_id", productID)
	return nil
}
