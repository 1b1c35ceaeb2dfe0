package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/meshmart/internal/client/archive"
	"github.com/dmitrijs2005/meshmart/internal/client/client"
)

// Download fetches every file of an order and saves them as one archive in
// the configured download directory.
func (a *App) Download(ctx context.Context, orderID, title string) error {
	printer := newDownloadPrinter(a.out)

	sum, err := a.archives.Download(ctx, orderID, title, printer.update)
	if err != nil {
		switch {
		case a.sessionLost(ctx, err):
		case errors.Is(err, client.ErrForbidden):
			fmt.Fprintln(a.out, "This order belongs to another account")
		case errors.Is(err, archive.ErrNothingDownloaded):
			fmt.Fprintln(a.out, "None of the order files could be downloaded")
			if sum != nil {
				a.printSummary(sum)
			}
		default:
			fmt.Fprintln(a.out, "Download failed:", err)
		}
		return err
	}

	a.printSummary(sum)
	return nil
}

func (a *App) printSummary(sum *archive.Summary) {
	fmt.Fprintln(a.out, sum.String())
	for _, f := range sum.Failed {
		fmt.Fprintf(a.out, "  failed: %s: %s\n", f.Name, f.Reason)
	}
	if sum.Path != "" {
		fmt.Fprintln(a.out, "Saved to", sum.Path)
	}
}
