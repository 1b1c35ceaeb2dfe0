// Package upload moves staged local files of one product to object storage
// using presigned write grants, confirming each successful write with the
// gateway.
package upload

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/meshmart/internal/catalog"
	"github.com/dmitrijs2005/meshmart/internal/client/models"
	"github.com/dmitrijs2005/meshmart/internal/client/staging"
	"github.com/dmitrijs2005/meshmart/internal/logging"
	"github.com/dmitrijs2005/meshmart/internal/netx"
	"github.com/dmitrijs2005/meshmart/internal/transfer"
)

const DefaultConcurrency = 4

type Authorizer interface {
	RequestUploadGrants(ctx context.Context, productID string, files []models.FileSpec) ([]models.Grant, error)
}

type Confirmer interface {
	ConfirmUpload(ctx context.Context, c models.Confirmation) (*models.ProductFile, error)
}

type Putter interface {
	Put(ctx context.Context, url, path string, size int64, contentType string, onProgress netx.ProgressFunc) error
}

// Item is one local file to upload.
type Item struct {
	Name         string
	Path         string
	Size         int64
	Category     catalog.Category
	DisplayOrder int
}

// ItemsFromStaged converts local staged files into upload items.
func ItemsFromStaged(files []staging.StagedFile) []Item {
	items := make([]Item, 0, len(files))
	for _, f := range files {
		if !f.IsLocal() {
			continue
		}
		items = append(items, Item{
			Name:         f.Name,
			Path:         f.Path,
			Size:         f.Size,
			Category:     f.Category,
			DisplayOrder: f.Order,
		})
	}
	return items
}

type Failure struct {
	Item   Item
	Reason string
}

// Result is the outcome of one batch. Succeeded and Failed keep batch order.
type Result struct {
	Succeeded []models.ProductFile
	Failed    []Failure
	Cancelled []Item
	State     transfer.UploadState
}

// Retry returns the items worth sending again: the failed ones and those
// that never finished because of cancellation.
func (r *Result) Retry() []Item {
	items := make([]Item, 0, len(r.Failed)+len(r.Cancelled))
	for _, f := range r.Failed {
		items = append(items, f.Item)
	}
	return append(items, r.Cancelled...)
}

func (r *Result) FailedNames() []string {
	names := make([]string, len(r.Failed))
	for i, f := range r.Failed {
		names[i] = f.Item.Name
	}
	return names
}

func (r *Result) Partial() bool {
	return len(r.Succeeded) > 0 && len(r.Failed) > 0
}

type Orchestrator struct {
	auth    Authorizer
	confirm Confirmer
	put     Putter
	pool    *transfer.Pool
	log     logging.Logger
}

type Option func(*Orchestrator)

// WithConcurrency bounds the number of simultaneous transfers.
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) { o.pool = transfer.NewPool(n) }
}

func WithLogger(l logging.Logger) Option {
	return func(o *Orchestrator) { o.log = l }
}

func New(auth Authorizer, confirm Confirmer, put Putter, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		auth:    auth,
		confirm: confirm,
		put:     put,
		pool:    transfer.NewPool(DefaultConcurrency),
		log:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

type outcome struct {
	file *models.ProductFile
	err  error
}

// Upload transfers items for productID. onProgress, if set, receives every
// new progress state; it is called from worker goroutines one at a time.
//
// A failure to obtain grants aborts the batch before any transfer and is
// reported as ErrAuthorization. Individual file failures are collected in
// the Result. If every file failed the error is an *AllFailedError; if ctx
// is cancelled while files are still pending the error wraps ErrCancelled.
// In both cases the Result is returned as well. A cancellation that lands
// after every file settled does not change the outcome.
func (o *Orchestrator) Upload(ctx context.Context, productID string, items []Item, onProgress func(transfer.UploadState)) (*Result, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}

	names := make([]string, len(items))
	seen := make(map[string]bool, len(items))
	specs := make([]models.FileSpec, len(items))
	for i, it := range items {
		if seen[it.Name] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateItem, it.Name)
		}
		seen[it.Name] = true
		names[i] = it.Name
		specs[i] = models.FileSpec{
			FileName: it.Name,
			FileType: catalog.ContentType(it.Name),
			FileSize: it.Size,
			Category: it.Category,
		}
	}

	tracker := transfer.NewTracker(transfer.NewUploadState(names...), transfer.ReduceUpload, onProgress)
	if onProgress != nil {
		onProgress(tracker.State())
	}

	grants, err := o.auth.RequestUploadGrants(ctx, productID, specs)
	if err != nil {
		o.log.Error(ctx, "upload authorization failed", "product_id", productID, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrAuthorization, err)
	}

	byName := make(map[string]models.Grant, len(grants))
	for _, g := range grants {
		byName[g.FileName] = g
	}

	outcomes := make([]outcome, len(items))
	runErr := o.pool.Run(ctx, len(items), func(ctx context.Context, i int) {
		g, ok := byName[items[i].Name]
		if !ok {
			outcomes[i] = o.fail(ctx, tracker, items[i], ErrMissingGrant)
			return
		}
		outcomes[i] = o.transferOne(ctx, tracker, productID, items[i], g)
	})

	if runErr != nil {
		for _, n := range names {
			tracker.Apply(transfer.UploadEvent{Kind: transfer.UploadCancelled, Name: n, Reason: "cancelled"})
		}
	}

	state := tracker.State()
	res := &Result{State: state}
	for i, it := range items {
		switch rec := state[it.Name]; rec.Status {
		case transfer.StatusCompleted:
			res.Succeeded = append(res.Succeeded, *outcomes[i].file)
		case transfer.StatusFailed:
			res.Failed = append(res.Failed, Failure{Item: it, Reason: rec.Reason})
		default:
			res.Cancelled = append(res.Cancelled, it)
		}
	}

	o.log.Info(ctx, "upload batch finished",
		"product_id", productID,
		"succeeded", len(res.Succeeded),
		"failed", len(res.Failed),
		"cancelled", len(res.Cancelled),
	)

	if runErr != nil && len(res.Cancelled) > 0 {
		return res, fmt.Errorf("%w: %w", ErrCancelled, runErr)
	}

	if len(res.Succeeded) == 0 && len(res.Failed) > 0 {
		e := &AllFailedError{Names: res.FailedNames(), Reasons: make(map[string]string, len(res.Failed))}
		for _, f := range res.Failed {
			e.Reasons[f.Item.Name] = f.Reason
		}
		return res, e
	}

	return res, nil
}

func (o *Orchestrator) transferOne(ctx context.Context, tracker *transfer.Tracker[transfer.UploadState, transfer.UploadEvent], productID string, it Item, g models.Grant) outcome {
	tracker.Apply(transfer.UploadEvent{Kind: transfer.UploadStarted, Name: it.Name})

	contentType := catalog.ContentType(it.Name)
	err := o.put.Put(ctx, g.PresignedURL, it.Path, it.Size, contentType, func(sent, total int64) {
		if total <= 0 {
			return
		}
		tracker.Apply(transfer.UploadEvent{
			Kind:    transfer.UploadProgress,
			Name:    it.Name,
			Percent: float64(sent) * 100 / float64(total),
		})
	})
	if err != nil {
		return o.fail(ctx, tracker, it, err)
	}

	tracker.Apply(transfer.UploadEvent{Kind: transfer.UploadConfirming, Name: it.Name})

	category := g.Category
	if category == "" {
		category = it.Category
	}
	file, err := o.confirm.ConfirmUpload(ctx, models.Confirmation{
		ProductID:    productID,
		FileName:     it.Name,
		FileType:     contentType,
		FileSize:     it.Size,
		StorageKey:   g.StorageKey,
		Category:     category,
		DisplayOrder: it.DisplayOrder,
	})
	if err != nil {
		return o.fail(ctx, tracker, it, fmt.Errorf("confirm: %w", err))
	}
	if file == nil {
		file = &models.ProductFile{ProductID: productID, FileName: it.Name, FileSize: it.Size, Category: category, StorageKey: g.StorageKey}
	}

	tracker.Apply(transfer.UploadEvent{Kind: transfer.UploadCompleted, Name: it.Name})
	return outcome{file: file}
}

func (o *Orchestrator) fail(ctx context.Context, tracker *transfer.Tracker[transfer.UploadState, transfer.UploadEvent], it Item, err error) outcome {
	if ctx.Err() != nil {
		tracker.Apply(transfer.UploadEvent{Kind: transfer.UploadCancelled, Name: it.Name, Reason: "cancelled"})
		return outcome{err: err}
	}

	o.log.Warn(ctx, "file upload failed", "file", it.Name, "error", err)
	tracker.Apply(transfer.UploadEvent{Kind: transfer.UploadFailed, Name: it.Name, Reason: err.Error()})
	return outcome{err: err}
}
