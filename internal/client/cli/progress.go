package cli

import (
	"fmt"
	"io"

	"github.com/dmitrijs2005/meshmart/internal/transfer"
	"github.com/dustin/go-humanize"
)

// progressStep is how far overall progress has to move before a new line
// is printed.
const progressStep = 10

// uploadPrinter prints a line each time a file reaches a terminal status and
// every progressStep percent of overall progress. Trackers call listeners
// one at a time, so it needs no locking.
type uploadPrinter struct {
	w        io.Writer
	lastStep int
	reported map[string]bool
}

func newUploadPrinter(w io.Writer) *uploadPrinter {
	return &uploadPrinter{w: w, lastStep: -1, reported: make(map[string]bool)}
}

func (p *uploadPrinter) update(s transfer.UploadState) {
	for _, name := range s.Names() {
		r := s[name]
		if !r.Status.Terminal() || p.reported[name] {
			continue
		}
		p.reported[name] = true
		if r.Reason != "" {
			fmt.Fprintf(p.w, "  %s: %s (%s)\n", name, r.Status, r.Reason)
		} else {
			fmt.Fprintf(p.w, "  %s: %s\n", name, r.Status)
		}
	}

	step := int(s.Overall()) / progressStep
	if step > p.lastStep {
		p.lastStep = step
		fmt.Fprintf(p.w, "upload %3.0f%% (%d/%d done)\n",
			s.Overall(), s.Count(transfer.StatusCompleted), len(s))
	}
}

type downloadPrinter struct {
	w        io.Writer
	lastStep int
	phase    transfer.Phase
}

func newDownloadPrinter(w io.Writer) *downloadPrinter {
	return &downloadPrinter{w: w, lastStep: -1}
}

func (p *downloadPrinter) update(s transfer.DownloadSnapshot) {
	if s.Phase != p.phase {
		p.phase = s.Phase
		switch s.Phase {
		case transfer.PhaseFetching:
			fmt.Fprintf(p.w, "fetching %d file(s), about %s\n", s.Total, humanize.Bytes(uint64(s.TotalBytes)))
		case transfer.PhaseCompressing:
			fmt.Fprintln(p.w, "compressing archive")
		case transfer.PhaseError:
			fmt.Fprintln(p.w, "download failed:", s.Err)
		case transfer.PhaseCancelled:
			fmt.Fprintln(p.w, "download cancelled")
		}
	}

	if s.Phase != transfer.PhaseFetching {
		return
	}
	step := int(s.Percent()) / progressStep
	if step > p.lastStep {
		p.lastStep = step
		fmt.Fprintf(p.w, "download %3.0f%% %s/%s (%d of %d files) %s\n",
			s.Percent(),
			humanize.Bytes(uint64(s.FetchedBytes)), humanize.Bytes(uint64(s.TotalBytes)),
			s.Completed+s.Failed, s.Total, s.Current)
	}
}
