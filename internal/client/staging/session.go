package staging

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/dmitrijs2005/meshmart/internal/catalog"
	"github.com/dmitrijs2005/meshmart/internal/client/models"
	"github.com/dmitrijs2005/meshmart/internal/logging"
	"github.com/google/uuid"
)

type Origin string

const (
	OriginLocal  Origin = "local"
	OriginServer Origin = "server"
)

type LoadState string

const (
	LoadIdle    LoadState = "idle"
	LoadLoading LoadState = "loading"
	LoadLoaded  LoadState = "loaded"
	LoadFailed  LoadState = "failed"
)

// LocalFile is a file picked from disk. Name defaults to the base of Path.
type LocalFile struct {
	Path string
	Name string
	Size int64
}

type StagedFile struct {
	ID       string
	Name     string
	Path     string
	Size     int64
	Category catalog.Category
	Order    int
	Origin   Origin
	Preview  string
}

func (f StagedFile) IsLocal() bool { return f.Origin == OriginLocal }

type FileLister interface {
	ListProductFiles(ctx context.Context, productID string) ([]models.ProductFile, error)
}

// Session is the working set of one product-editing session. It is meant to
// be driven from a single goroutine.
type Session struct {
	productID string
	lister    FileLister
	previews  Previewer
	log       logging.Logger

	files     []*StagedFile
	deleted   map[string]bool
	deletions []string
	thumbnail string
	errs      []catalog.FileError

	frozen  bool
	loaded  bool
	load    LoadState
	loadErr error
}

type Option func(*Session)

func WithLister(l FileLister) Option { return func(s *Session) { s.lister = l } }

func WithPreviewer(p Previewer) Option { return func(s *Session) { s.previews = p } }

func WithLogger(l logging.Logger) Option { return func(s *Session) { s.log = l } }

func NewSession(productID string, opts ...Option) *Session {
	s := &Session{
		productID: productID,
		deleted:   make(map[string]bool),
		load:      LoadIdle,
		log:       logging.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	if s.previews == nil {
		s.previews = NewMemoryPreviews()
	}
	return s
}

func (s *Session) ProductID() string { return s.productID }

// Add stages local files. A file that fails classification rules is
// reported in errs and does not affect the rest of the batch.
func (s *Session) Add(files []LocalFile) (added []StagedFile, errs []catalog.FileError) {
	for _, lf := range files {
		name := lf.Name
		if name == "" {
			name = filepath.Base(lf.Path)
		}

		cat := catalog.Classify(name)
		if err := catalog.Check(name, lf.Size, cat); err != nil {
			errs = append(errs, catalog.FileError{FileName: name, Err: err})
			continue
		}
		if s.hasActiveName(name) {
			errs = append(errs, catalog.FileError{FileName: name, Err: ErrDuplicateName})
			continue
		}

		f := &StagedFile{
			ID:       uuid.NewString(),
			Name:     name,
			Path:     lf.Path,
			Size:     lf.Size,
			Category: cat,
			Order:    len(s.activeFiles()),
			Origin:   OriginLocal,
		}
		if cat == catalog.Image {
			s.acquirePreview(f)
		}

		s.files = append(s.files, f)
		added = append(added, *f)
	}

	s.errs = append(s.errs, errs...)
	return added, errs
}

// Remove takes a file out of the active set. Server files are queued for
// deletion on the next save; local files are dropped immediately.
func (s *Session) Remove(id string) error {
	i := s.indexOf(id)
	if i < 0 || s.deleted[id] {
		return ErrNotFound
	}
	f := s.files[i]

	if f.Origin == OriginServer {
		s.deleted[id] = true
		s.deletions = append(s.deletions, id)
	} else {
		s.releasePreview(f)
		s.files = append(s.files[:i], s.files[i+1:]...)
	}

	if s.thumbnail == id {
		s.thumbnail = ""
	}
	s.renumber()
	return nil
}

func (s *Session) ChangeCategory(id string, c catalog.Category) error {
	if !c.Valid() {
		return catalog.ErrUnknownCategory
	}
	f := s.active(id)
	if f == nil {
		return ErrNotFound
	}
	if f.Origin != OriginLocal {
		return ErrNotLocal
	}
	if s.frozen {
		return ErrTransferStarted
	}

	if err := catalog.Check(f.Name, f.Size, c); err != nil {
		fe := catalog.FileError{FileName: f.Name, Err: err}
		s.errs = append(s.errs, fe)
		return fe
	}

	switch {
	case c == catalog.Image && f.Preview == "":
		s.acquirePreview(f)
	case c != catalog.Image:
		s.releasePreview(f)
	}
	f.Category = c
	return nil
}

// Reorder moves the active file at from to position to and renumbers the
// whole active set.
func (s *Session) Reorder(from, to int) error {
	act := s.activeFiles()
	if from < 0 || from >= len(act) || to < 0 || to >= len(act) {
		return ErrIndexOutOfRange
	}
	if from == to {
		return nil
	}

	moved := act[from]
	act = append(act[:from], act[from+1:]...)
	act = append(act[:to], append([]*StagedFile{moved}, act[to:]...)...)

	for i, f := range act {
		f.Order = i
	}
	s.sortFiles()
	return nil
}

func (s *Session) SetThumbnail(id string) error {
	if s.active(id) == nil {
		return ErrNotFound
	}
	s.thumbnail = id
	return nil
}

func (s *Session) Thumbnail() string { return s.thumbnail }

// Validate returns the list of problems preventing a save, in a fixed
// order. An empty result means the session is valid.
func (s *Session) Validate() []string {
	act := s.activeFiles()
	if len(act) == 0 {
		return []string{"at least one file is required"}
	}

	var msgs []string
	hasImage := false
	for _, f := range act {
		if f.Category == catalog.Image {
			hasImage = true
			break
		}
	}
	if !hasImage {
		msgs = append(msgs, "at least one preview image is required")
		return msgs
	}

	switch t := s.active(s.thumbnail); {
	case s.thumbnail == "":
		msgs = append(msgs, "a thumbnail must be selected")
	case t == nil:
		msgs = append(msgs, "selected thumbnail no longer exists")
	case t.Category != catalog.Image:
		msgs = append(msgs, "thumbnail must be a preview image")
	}
	return msgs
}

// Refetch reloads the server-side file list. Local files and pending
// deletions survive the reload. Files the session already knows keep their
// current position; files new to the session are appended in the server's
// display order, except on the first successful load, which puts the server
// files ahead of anything staged before it. A failed load leaves the
// previous state untouched and may simply be retried.
func (s *Session) Refetch(ctx context.Context) error {
	if s.lister == nil {
		return ErrNoLister
	}

	s.load = LoadLoading
	s.loadErr = nil

	remote, err := s.lister.ListProductFiles(ctx, s.productID)
	if err != nil {
		s.load = LoadFailed
		s.loadErr = err
		s.log.Warn(ctx, "file list load failed", "product", s.productID, "error", err)
		return fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	sort.SliceStable(remote, func(i, j int) bool { return remote[i].DisplayOrder < remote[j].DisplayOrder })

	byID := make(map[string]models.ProductFile, len(remote))
	for _, r := range remote {
		byID[r.ID] = r
	}

	var deletions []string
	for _, id := range s.deletions {
		if _, ok := byID[id]; ok {
			deletions = append(deletions, id)
		} else {
			delete(s.deleted, id)
		}
	}
	s.deletions = deletions

	s.sortFiles()
	known := make(map[string]bool, len(s.files))
	var kept []*StagedFile
	for _, f := range s.files {
		if f.Origin == OriginLocal {
			kept = append(kept, f)
			continue
		}
		r, ok := byID[f.ID]
		if !ok {
			continue
		}
		known[f.ID] = true
		f.Name, f.Size, f.Category = r.FileName, r.FileSize, r.Category
		kept = append(kept, f)
	}

	var fresh []*StagedFile
	for _, r := range remote {
		if known[r.ID] {
			continue
		}
		fresh = append(fresh, &StagedFile{
			ID:       r.ID,
			Name:     r.FileName,
			Size:     r.FileSize,
			Category: r.Category,
			Origin:   OriginServer,
		})
	}

	var merged []*StagedFile
	if s.loaded {
		merged = append(kept, fresh...)
	} else {
		merged = append(fresh, kept...)
	}
	for i, f := range merged {
		f.Order = i
	}
	s.files = merged
	s.renumber()

	if s.active(s.thumbnail) == nil {
		for _, r := range remote {
			if r.Thumbnail && s.active(r.ID) != nil {
				s.thumbnail = r.ID
				break
			}
		}
	}

	s.loaded = true
	s.load = LoadLoaded
	return nil
}

// Arrangement returns the server files of the active set in display order,
// and the selected thumbnail when it is a server file.
func (s *Session) Arrangement() (order []string, thumbnail string) {
	for _, f := range s.activeFiles() {
		if f.Origin == OriginServer {
			order = append(order, f.ID)
		}
	}
	if t := s.active(s.thumbnail); t != nil && t.Origin == OriginServer {
		thumbnail = t.ID
	}
	return order, thumbnail
}

func (s *Session) LoadState() LoadState { return s.load }

func (s *Session) LoadErr() error { return s.loadErr }

// BeginTransfer freezes categories and returns the local files to upload.
func (s *Session) BeginTransfer() []StagedFile {
	s.frozen = true
	return s.Local()
}

// CompleteTransfer turns the uploaded local files into server files and
// unfreezes the session. Records are matched by file name.
func (s *Session) CompleteTransfer(uploaded []models.ProductFile) {
	byName := make(map[string]models.ProductFile, len(uploaded))
	for _, u := range uploaded {
		byName[u.FileName] = u
	}

	for _, f := range s.files {
		if f.Origin != OriginLocal {
			continue
		}
		u, ok := byName[f.Name]
		if !ok {
			continue
		}
		s.releasePreview(f)
		if s.thumbnail == f.ID {
			s.thumbnail = u.ID
		}
		f.ID = u.ID
		f.Origin = OriginServer
		f.Path = ""
	}
	s.frozen = false
}

func (s *Session) EndTransfer() { s.frozen = false }

func (s *Session) Transferring() bool { return s.frozen }

// CommitDeletions forgets deletion entries the backend has acted on.
func (s *Session) CommitDeletions(ids []string) {
	done := make(map[string]bool, len(ids))
	for _, id := range ids {
		done[id] = true
	}

	var rest []string
	for _, id := range s.deletions {
		if !done[id] {
			rest = append(rest, id)
		}
	}
	s.deletions = rest

	kept := s.files[:0]
	for _, f := range s.files {
		if done[f.ID] && s.deleted[f.ID] {
			delete(s.deleted, f.ID)
			continue
		}
		kept = append(kept, f)
	}
	s.files = kept
}

func (s *Session) PendingDeletions() []string {
	return append([]string(nil), s.deletions...)
}

func (s *Session) Active() []StagedFile {
	act := s.activeFiles()
	out := make([]StagedFile, len(act))
	for i, f := range act {
		out[i] = *f
	}
	return out
}

func (s *Session) Local() []StagedFile {
	var out []StagedFile
	for _, f := range s.activeFiles() {
		if f.Origin == OriginLocal {
			out = append(out, *f)
		}
	}
	return out
}

func (s *Session) Errors() []catalog.FileError {
	return append([]catalog.FileError(nil), s.errs...)
}

func (s *Session) ClearErrors() { s.errs = nil }

// Close releases every outstanding preview handle. It is safe to call more
// than once.
func (s *Session) Close() {
	for _, f := range s.files {
		s.releasePreview(f)
	}
}

func (s *Session) acquirePreview(f *StagedFile) {
	h, err := s.previews.Acquire(f.Path)
	if err != nil {
		s.log.Warn(context.Background(), "preview unavailable", "file", f.Name, "error", err)
		return
	}
	f.Preview = h
}

func (s *Session) releasePreview(f *StagedFile) {
	if f.Preview == "" {
		return
	}
	if err := s.previews.Release(f.Preview); err != nil {
		s.log.Warn(context.Background(), "preview release failed", "file", f.Name, "error", err)
	}
	f.Preview = ""
}

func (s *Session) indexOf(id string) int {
	for i, f := range s.files {
		if f.ID == id {
			return i
		}
	}
	return -1
}

func (s *Session) active(id string) *StagedFile {
	if id == "" || s.deleted[id] {
		return nil
	}
	if i := s.indexOf(id); i >= 0 {
		return s.files[i]
	}
	return nil
}

func (s *Session) activeFiles() []*StagedFile {
	out := make([]*StagedFile, 0, len(s.files))
	for _, f := range s.files {
		if !s.deleted[f.ID] {
			out = append(out, f)
		}
	}
	return out
}

func (s *Session) hasActiveName(name string) bool {
	for _, f := range s.activeFiles() {
		if f.Name == name {
			return true
		}
	}
	return false
}

// renumber assigns contiguous display orders to active files following
// their current relative order.
func (s *Session) renumber() {
	s.sortFiles()
	for i, f := range s.activeFiles() {
		f.Order = i
	}
}

func (s *Session) sortFiles() {
	sort.SliceStable(s.files, func(i, j int) bool {
		a, b := s.files[i], s.files[j]
		if s.deleted[a.ID] != s.deleted[b.ID] {
			return !s.deleted[a.ID]
		}
		return a.Order < b.Order
	})
}
