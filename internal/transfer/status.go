// Package transfer holds the state shared by the upload and archive pipelines:
// per-file transfer records, download progress snapshots, the pure reducers
// that advance them, and the bounded worker pool both pipelines run on.
package transfer

// Status is the lifecycle state of one file's upload.
type Status string

const (
	StatusPending      Status = "pending"
	StatusTransferring Status = "transferring"
	StatusConfirming   Status = "confirming"
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
	StatusCancelled    Status = "cancelled"
)

// Terminal reports whether no further event can change a record in s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Phase is the stage of an archive download.
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseFetching    Phase = "fetching"
	PhaseCompressing Phase = "compressing"
	PhaseComplete    Phase = "complete"
	PhaseError       Phase = "error"
	PhaseCancelled   Phase = "cancelled"
)

// Terminal reports whether p ends a download.
func (p Phase) Terminal() bool {
	return p == PhaseComplete || p == PhaseError || p == PhaseCancelled
}
