package transfer

// DownloadSnapshot is the aggregate progress of one archive download.
type DownloadSnapshot struct {
	Total        int
	Completed    int
	Failed       int
	Current      string
	TotalBytes   int64
	FetchedBytes int64
	Phase        Phase
	Err          string
}

// DownloadEventKind identifies a step of the archive pipeline.
type DownloadEventKind int

const (
	DownloadStarted DownloadEventKind = iota
	FileStarted
	FileFetched
	FileFailed
	DownloadCompressing
	DownloadComplete
	DownloadErrored
	DownloadCancelled
)

// DownloadEvent is one step of the archive pipeline. Total and Bytes are
// read for DownloadStarted (estimated bytes) and FileFetched (actual bytes).
type DownloadEvent struct {
	Kind  DownloadEventKind
	Name  string
	Total int
	Bytes int64
	Err   string
}

// ReduceDownload applies ev to s. Phases only move forward; error is only
// reachable from fetching; once terminal the snapshot no longer changes.
func ReduceDownload(s DownloadSnapshot, ev DownloadEvent) DownloadSnapshot {
	if s.Phase == "" {
		s.Phase = PhaseIdle
	}
	if s.Phase.Terminal() {
		return s
	}

	switch ev.Kind {
	case DownloadStarted:
		if s.Phase != PhaseIdle {
			return s
		}
		s.Phase = PhaseFetching
		s.Total = ev.Total
		s.TotalBytes = ev.Bytes
	case FileStarted:
		if s.Phase != PhaseFetching {
			return s
		}
		s.Current = ev.Name
	case FileFetched:
		if s.Phase != PhaseFetching || s.Completed+s.Failed >= s.Total {
			return s
		}
		s.Completed++
		s.FetchedBytes += ev.Bytes
	case FileFailed:
		if s.Phase != PhaseFetching || s.Completed+s.Failed >= s.Total {
			return s
		}
		s.Failed++
	case DownloadCompressing:
		if s.Phase != PhaseFetching {
			return s
		}
		s.Phase = PhaseCompressing
		s.Current = ""
	case DownloadComplete:
		if s.Phase != PhaseCompressing {
			return s
		}
		s.Phase = PhaseComplete
	case DownloadErrored:
		if s.Phase != PhaseFetching {
			return s
		}
		s.Phase = PhaseError
		s.Err = ev.Err
		s.Current = ""
	case DownloadCancelled:
		s.Phase = PhaseCancelled
		s.Err = ev.Err
		s.Current = ""
	}
	return s
}

// Percent is the share of estimated bytes fetched so far, falling back to the
// file count when no estimate is available.
func (s DownloadSnapshot) Percent() float64 {
	if s.TotalBytes > 0 {
		p := float64(s.FetchedBytes) / float64(s.TotalBytes) * 100
		if p > 100 {
			p = 100
		}
		return p
	}
	if s.Total == 0 {
		return 0
	}
	return float64(s.Completed+s.Failed) / float64(s.Total) * 100
}
