// Package archive downloads the files of a completed order through
// presigned GET URLs and saves them as one zip archive, bucketed into
// folders by category.
package archive

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/meshmart/internal/client/models"
	"github.com/dmitrijs2005/meshmart/internal/logging"
	"github.com/dmitrijs2005/meshmart/internal/transfer"
	"github.com/dustin/go-humanize"
)

const DefaultBatchSize = 3

type Authorizer interface {
	RequestDownload(ctx context.Context, orderID string) ([]models.DownloadFile, error)
}

type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Sink stores a finished archive and returns where it ended up.
type Sink interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
}

type FileFailure struct {
	Name   string
	Reason string
}

// Summary reports which files made it into the archive.
type Summary struct {
	Included []string
	Failed   []FileFailure
	Path     string
	// Bytes is the sum of downloaded file sizes, not the archive size.
	Bytes int64
}

func (s *Summary) String() string {
	total := len(s.Included) + len(s.Failed)
	msg := fmt.Sprintf("%d of %d files included (%s)", len(s.Included), total, humanize.Bytes(uint64(s.Bytes)))
	if len(s.Failed) == 0 {
		return msg
	}
	names := make([]string, len(s.Failed))
	for i, f := range s.Failed {
		names[i] = f.Name
	}
	return fmt.Sprintf("%s; %d failed: %s", msg, len(s.Failed), strings.Join(names, ", "))
}

type Orchestrator struct {
	auth  Authorizer
	fetch Fetcher
	sink  Sink
	batch int
	log   logging.Logger
	now   func() time.Time
}

type Option func(*Orchestrator)

func WithBatchSize(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.batch = n
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(o *Orchestrator) { o.log = l }
}

func New(auth Authorizer, fetch Fetcher, sink Sink, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		auth:  auth,
		fetch: fetch,
		sink:  sink,
		batch: DefaultBatchSize,
		log:   logging.Nop(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

type fetched struct {
	data []byte
	err  error
	done bool
}

// Download fetches every file of orderID and saves the archive named after
// title. Files that fail are left out and listed in the Summary; only when
// none could be fetched does Download fail with ErrNothingDownloaded.
// Errors from the authorizer are returned unchanged.
func (o *Orchestrator) Download(ctx context.Context, orderID, title string, onProgress func(transfer.DownloadSnapshot)) (*Summary, error) {
	files, err := o.auth.RequestDownload(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	tracker := transfer.NewTracker(transfer.DownloadSnapshot{Phase: transfer.PhaseIdle}, transfer.ReduceDownload, onProgress)
	tracker.Apply(transfer.DownloadEvent{Kind: transfer.DownloadStarted, Total: len(files), Bytes: EstimateBytes(files)})

	results := make([]fetched, len(files))
	runErr := transfer.RunBatches(ctx, len(files), o.batch, func(ctx context.Context, i int) {
		f := files[i]
		tracker.Apply(transfer.DownloadEvent{Kind: transfer.FileStarted, Name: f.FileName})

		data, err := o.fetch.Fetch(ctx, f.PresignedURL)
		results[i] = fetched{data: data, err: err, done: true}
		if err != nil {
			o.log.Warn(ctx, "file download failed", "order_id", orderID, "file", f.FileName, "error", err)
			tracker.Apply(transfer.DownloadEvent{Kind: transfer.FileFailed, Name: f.FileName})
			return
		}
		tracker.Apply(transfer.DownloadEvent{Kind: transfer.FileFetched, Name: f.FileName, Bytes: int64(len(data))})
	})

	sum := &Summary{}
	var entries []Entry
	for i, f := range files {
		r := results[i]
		switch {
		case r.done && r.err == nil:
			sum.Included = append(sum.Included, f.FileName)
			sum.Bytes += int64(len(r.data))
			entries = append(entries, Entry{Name: f.FileName, Category: f.Category, Data: r.data})
		case r.done:
			sum.Failed = append(sum.Failed, FileFailure{Name: f.FileName, Reason: r.err.Error()})
		default:
			sum.Failed = append(sum.Failed, FileFailure{Name: f.FileName, Reason: "not fetched"})
		}
	}

	if runErr != nil || ctx.Err() != nil {
		tracker.Apply(transfer.DownloadEvent{Kind: transfer.DownloadCancelled, Err: "cancelled"})
		o.log.Info(ctx, "download cancelled", "order_id", orderID, "fetched", len(sum.Included))
		return sum, fmt.Errorf("%w: %w", ErrCancelled, context.Cause(ctx))
	}

	if len(entries) == 0 {
		msg := fmt.Sprintf("none of the %d files could be downloaded, please try again", len(files))
		tracker.Apply(transfer.DownloadEvent{Kind: transfer.DownloadErrored, Err: msg})
		o.log.Error(ctx, "download failed", "order_id", orderID, "files", len(files))
		return sum, fmt.Errorf("%w: %d of %d files failed", ErrNothingDownloaded, len(sum.Failed), len(files))
	}

	tracker.Apply(transfer.DownloadEvent{Kind: transfer.DownloadCompressing})

	data, _, err := Pack(entries, o.now())
	if err != nil {
		return sum, fmt.Errorf("build archive: %w", err)
	}

	p, err := o.sink.Save(ctx, ArchiveName(title, orderID), data)
	if err != nil {
		return sum, fmt.Errorf("save archive: %w", err)
	}
	sum.Path = p

	tracker.Apply(transfer.DownloadEvent{Kind: transfer.DownloadComplete})
	o.log.Info(ctx, "download complete",
		"order_id", orderID,
		"included", len(sum.Included),
		"failed", len(sum.Failed),
		"path", p,
		"size", humanize.Bytes(uint64(len(data))),
	)
	return sum, nil
}
