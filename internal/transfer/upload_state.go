package transfer

import "sort"

// Record is the progress and outcome of one file's upload.
type Record struct {
	Status  Status
	Percent float64
	Reason  string
}

// UploadState maps file name to its record. Values produced by ReduceUpload
// are never mutated afterwards, so they can be handed to listeners as is.
type UploadState map[string]Record

// NewUploadState returns a state with one pending record per name.
func NewUploadState(names ...string) UploadState {
	s := make(UploadState, len(names))
	for _, n := range names {
		s[n] = Record{Status: StatusPending}
	}
	return s
}

// UploadEventKind identifies what happened to a file.
type UploadEventKind int

const (
	UploadStarted UploadEventKind = iota
	UploadProgress
	UploadConfirming
	UploadCompleted
	UploadFailed
	UploadCancelled
)

// UploadEvent is one observation about a single file.
type UploadEvent struct {
	Kind    UploadEventKind
	Name    string
	Percent float64
	Reason  string
}

// ReduceUpload applies ev to state and returns the new state. state is not
// modified. Events for files already in a terminal state are ignored and the
// percentage of a transferring file never decreases.
func ReduceUpload(state UploadState, ev UploadEvent) UploadState {
	rec, ok := state[ev.Name]
	if !ok {
		rec = Record{Status: StatusPending}
	}
	if rec.Status.Terminal() {
		return state
	}

	switch ev.Kind {
	case UploadStarted:
		rec = Record{Status: StatusTransferring}
	case UploadProgress:
		if rec.Status != StatusTransferring {
			return state
		}
		if p := clampPercent(ev.Percent); p > rec.Percent {
			rec.Percent = p
		} else {
			return state
		}
	case UploadConfirming:
		rec.Status = StatusConfirming
		rec.Percent = 100
	case UploadCompleted:
		rec.Status = StatusCompleted
		rec.Percent = 100
	case UploadFailed:
		rec.Status = StatusFailed
		rec.Reason = ev.Reason
	case UploadCancelled:
		rec.Status = StatusCancelled
		rec.Reason = ev.Reason
	default:
		return state
	}

	next := make(UploadState, len(state)+1)
	for k, v := range state {
		next[k] = v
	}
	next[ev.Name] = rec
	return next
}

// Overall is the arithmetic mean of every record's percentage.
func (s UploadState) Overall() float64 {
	if len(s) == 0 {
		return 0
	}
	var sum float64
	for _, r := range s {
		sum += r.Percent
	}
	return sum / float64(len(s))
}

// Count returns how many records are in status st.
func (s UploadState) Count(st Status) int {
	n := 0
	for _, r := range s {
		if r.Status == st {
			n++
		}
	}
	return n
}

// Done reports whether every record is terminal.
func (s UploadState) Done() bool {
	for _, r := range s {
		if !r.Status.Terminal() {
			return false
		}
	}
	return true
}

// Names returns the file names in lexical order.
func (s UploadState) Names() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func clampPercent(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}
