package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/meshmart/internal/catalog"
	"github.com/dmitrijs2005/meshmart/internal/client/client"
	"github.com/dmitrijs2005/meshmart/internal/client/staging"
	"github.com/dmitrijs2005/meshmart/internal/client/upload"
)

var ErrInvalidProduct = errors.New("product is not valid")

func (a *App) printProblems(problems []string) {
	fmt.Fprintln(a.out, "Cannot save:")
	for _, p := range problems {
		fmt.Fprintln(a.out, "  -", p)
	}
}

// Save applies the open session to the gateway: pending server deletions
// first, then every local file, then the order and thumbnail of the files
// now on the server.
func (a *App) Save(ctx context.Context) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}
	s, err := a.requireProduct()
	if err != nil {
		return err
	}

	if problems := s.Validate(); len(problems) > 0 {
		a.printProblems(problems)
		return ErrInvalidProduct
	}

	var deleted []string
	for _, id := range s.PendingDeletions() {
		err := a.api.DeleteProductFile(ctx, s.ProductID(), id)
		if err != nil && !errors.Is(err, client.ErrNotFound) {
			if a.sessionLost(ctx, err) {
				s.CommitDeletions(deleted)
				return err
			}
			fmt.Fprintf(a.out, "  could not delete %s: %v\n", id, err)
			continue
		}
		deleted = append(deleted, id)
	}
	s.CommitDeletions(deleted)

	items := upload.ItemsFromStaged(s.BeginTransfer())
	if len(items) == 0 {
		s.EndTransfer()
		if err := a.saveArrangement(ctx, s); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Saved")
		return nil
	}
	return a.finishUpload(ctx, s, a.runUpload(ctx, s, items))
}

// finishUpload stores the arrangement after an upload, unless the upload was
// cancelled or the session was lost on the way.
func (a *App) finishUpload(ctx context.Context, s *staging.Session, err error) error {
	if errors.Is(err, upload.ErrCancelled) || client.IsAuthError(err) {
		return err
	}
	if aerr := a.saveArrangement(ctx, s); aerr != nil && err == nil {
		return aerr
	}
	return err
}

func (a *App) saveArrangement(ctx context.Context, s *staging.Session) error {
	order, thumbnail := s.Arrangement()
	if len(order) == 0 {
		return nil
	}
	if err := a.api.ArrangeProductFiles(ctx, s.ProductID(), order, thumbnail); err != nil {
		if !a.sessionLost(ctx, err) {
			fmt.Fprintln(a.out, "Could not save file order:", err)
		}
		return err
	}
	return nil
}

// Retry sends again the files that failed or were cancelled in the last
// upload of the open product.
func (a *App) Retry(ctx context.Context) error {
	s, err := a.requireProduct()
	if err != nil {
		return err
	}

	var items []upload.Item
	if a.lastResult != nil {
		local := make(map[string]bool)
		for _, f := range s.Local() {
			local[f.Name] = true
		}
		for _, it := range a.lastResult.Retry() {
			if local[it.Name] {
				items = append(items, it)
			}
		}
	}
	if len(items) == 0 {
		fmt.Fprintln(a.out, ErrNothingRetry)
		return ErrNothingRetry
	}

	s.BeginTransfer()
	return a.finishUpload(ctx, s, a.runUpload(ctx, s, items))
}

func (a *App) runUpload(ctx context.Context, s *staging.Session, items []upload.Item) error {
	printer := newUploadPrinter(a.out)
	res, err := a.uploads.Upload(ctx, s.ProductID(), items, printer.update)
	if res != nil {
		s.CompleteTransfer(res.Succeeded)
	} else {
		s.EndTransfer()
	}
	a.lastResult = res

	a.reportUpload(res, err)
	if err != nil {
		a.sessionLost(ctx, err)
	}
	return err
}

func (a *App) reportUpload(res *upload.Result, err error) {
	if res == nil {
		if err != nil {
			fmt.Fprintln(a.out, "Upload failed:", err)
		}
		return
	}

	total := len(res.Succeeded) + len(res.Failed) + len(res.Cancelled)
	fmt.Fprintf(a.out, "%d of %d file(s) uploaded\n", len(res.Succeeded), total)

	for _, f := range res.Failed {
		fmt.Fprintf(a.out, "  failed: %s: %s\n", f.Item.Name, f.Reason)
	}
	if len(res.Cancelled) > 0 {
		names := make([]string, len(res.Cancelled))
		for i, it := range res.Cancelled {
			names[i] = it.Name
		}
		fmt.Fprintln(a.out, "  cancelled:", strings.Join(names, ", "))
	}
	if len(res.Retry()) > 0 {
		fmt.Fprintln(a.out, "Type 'retry' to send the remaining files again")
	}
}

// Publish creates a product from local files in one go. If none of the files
// can be attached the product is removed again.
func (a *App) Publish(ctx context.Context, title string, paths []string) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}

	draft := staging.NewSession("", staging.WithPreviewer(a.previews), staging.WithLogger(a.log))
	defer draft.Close()

	local, errs := statFiles(paths)
	added, rejected := draft.Add(local)
	a.printFileErrors(append(errs, rejected...))

	var thumbnail string
	for _, f := range added {
		if f.Category == catalog.Image {
			_ = draft.SetThumbnail(f.ID)
			thumbnail = f.Name
			break
		}
	}
	if problems := draft.Validate(); len(problems) > 0 {
		a.printProblems(problems)
		return ErrInvalidProduct
	}

	printer := newUploadPrinter(a.out)
	product, res, err := a.publisher.Publish(ctx, title, upload.ItemsFromStaged(draft.BeginTransfer()), printer.update)
	a.reportUpload(res, err)

	if product == nil {
		if err != nil && !a.sessionLost(ctx, err) && errors.Is(err, upload.ErrCompensation) {
			fmt.Fprintln(a.out, "Warning: the empty product could not be removed:", err)
		}
		return err
	}

	fmt.Fprintf(a.out, "Product %q published with id %s\n", product.Title, product.ID)

	// Files that did not make it stay staged on the new product for 'retry'.
	s := a.openProduct(product.ID)
	var retry []staging.LocalFile
	for _, it := range res.Retry() {
		retry = append(retry, staging.LocalFile{Path: it.Path, Name: it.Name, Size: it.Size})
	}
	s.Add(retry)
	a.lastResult = res
	if rerr := s.Refetch(ctx); rerr != nil {
		a.log.Warn(ctx, "reloading published product", "product_id", product.ID, "error", rerr)
		return err
	}
	for _, f := range s.Active() {
		if f.Name == thumbnail && !f.IsLocal() {
			_ = s.SetThumbnail(f.ID)
			break
		}
	}
	return a.finishUpload(ctx, s, err)
}
