package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dmitrijs2005/meshmart/internal/catalog"
	"github.com/dmitrijs2005/meshmart/internal/client/staging"
	"github.com/dustin/go-humanize"
)

// statFiles turns command arguments into staging input. Paths that cannot be
// read or are directories come back as errors next to the good ones.
func statFiles(paths []string) ([]staging.LocalFile, []catalog.FileError) {
	var (
		files []staging.LocalFile
		errs  []catalog.FileError
	)
	for _, p := range paths {
		fi, err := os.Stat(p)
		if err != nil {
			errs = append(errs, catalog.FileError{FileName: filepath.Base(p), Err: err})
			continue
		}
		if fi.IsDir() {
			errs = append(errs, catalog.FileError{FileName: filepath.Base(p), Err: fmt.Errorf("%s is a directory", p)})
			continue
		}
		files = append(files, staging.LocalFile{Path: p, Name: fi.Name(), Size: fi.Size()})
	}
	return files, errs
}

// resolveFile accepts a 1-based position from the 'files' listing, a file id
// or a file name.
func resolveFile(s *staging.Session, ref string) (staging.StagedFile, error) {
	act := s.Active()
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(act) {
			return staging.StagedFile{}, staging.ErrIndexOutOfRange
		}
		return act[n-1], nil
	}
	for _, f := range act {
		if f.ID == ref || f.Name == ref {
			return f, nil
		}
	}
	return staging.StagedFile{}, staging.ErrNotFound
}

func (a *App) printFileErrors(errs []catalog.FileError) {
	for _, fe := range errs {
		fmt.Fprintln(a.out, "  rejected:", fe.Error())
	}
}

// AddFiles stages local files on the open product.
func (a *App) AddFiles(ctx context.Context, paths []string) error {
	s, err := a.requireProduct()
	if err != nil {
		return err
	}

	local, errs := statFiles(paths)
	added, rejected := s.Add(local)
	errs = append(errs, rejected...)

	for _, f := range added {
		fmt.Fprintf(a.out, "  staged: %s as %s (%s)\n", f.Name, f.Category, humanize.Bytes(uint64(f.Size)))
	}
	a.printFileErrors(errs)

	if s.Thumbnail() == "" {
		for _, f := range added {
			if f.Category == catalog.Image {
				_ = s.SetThumbnail(f.ID)
				fmt.Fprintln(a.out, "  thumbnail:", f.Name)
				break
			}
		}
	}
	return nil
}

func (a *App) RemoveFile(ctx context.Context, ref string) error {
	s, err := a.requireProduct()
	if err != nil {
		return err
	}

	f, err := resolveFile(s, ref)
	if err == nil {
		err = s.Remove(f.ID)
	}
	if err != nil {
		fmt.Fprintln(a.out, "Cannot remove:", err)
		return err
	}

	if f.IsLocal() {
		fmt.Fprintln(a.out, "Removed", f.Name)
	} else {
		fmt.Fprintln(a.out, "Removed", f.Name, "(deleted from the server on save)")
	}
	return nil
}

func (a *App) SetCategory(ctx context.Context, ref, category string) error {
	s, err := a.requireProduct()
	if err != nil {
		return err
	}

	c, err := catalog.ParseCategory(category)
	if err != nil {
		fmt.Fprintln(a.out, "Unknown category:", category)
		return err
	}

	f, err := resolveFile(s, ref)
	if err == nil {
		err = s.ChangeCategory(f.ID, c)
	}
	if err != nil {
		fmt.Fprintln(a.out, "Cannot change category:", err)
		return err
	}

	fmt.Fprintf(a.out, "%s is now %s\n", f.Name, c)
	return nil
}

// Move reorders files using the 1-based positions shown by 'files'.
func (a *App) Move(ctx context.Context, from, to string) error {
	s, err := a.requireProduct()
	if err != nil {
		return err
	}

	f, ferr := strconv.Atoi(from)
	t, terr := strconv.Atoi(to)
	if ferr != nil || terr != nil {
		fmt.Fprintln(a.out, "Usage: move <from> <to>")
		return staging.ErrIndexOutOfRange
	}

	if err := s.Reorder(f-1, t-1); err != nil {
		fmt.Fprintln(a.out, "Cannot move:", err)
		return err
	}
	return a.Files(ctx)
}

func (a *App) Thumb(ctx context.Context, ref string) error {
	s, err := a.requireProduct()
	if err != nil {
		return err
	}

	f, err := resolveFile(s, ref)
	if err == nil {
		err = s.SetThumbnail(f.ID)
	}
	if err != nil {
		fmt.Fprintln(a.out, "Cannot set thumbnail:", err)
		return err
	}

	if f.Category != catalog.Image {
		fmt.Fprintln(a.out, "Warning:", f.Name, "is not a preview image")
	}
	fmt.Fprintln(a.out, "Thumbnail:", f.Name)
	return nil
}

// Files lists the active files of the open product in display order.
func (a *App) Files(ctx context.Context) error {
	s, err := a.requireProduct()
	if err != nil {
		return err
	}

	act := s.Active()
	if len(act) == 0 {
		fmt.Fprintln(a.out, "No files")
	}
	for i, f := range act {
		mark := " "
		if f.ID == s.Thumbnail() {
			mark = "*"
		}
		fmt.Fprintf(a.out, "%s%3d. %-32s %-10s %10s  %s\n",
			mark, i+1, f.Name, f.Category, humanize.Bytes(uint64(f.Size)), f.Origin)
	}

	if n := len(s.PendingDeletions()); n > 0 {
		fmt.Fprintf(a.out, "%d file(s) will be deleted on save\n", n)
	}
	return nil
}

// Validate prints every problem that would block a save.
func (a *App) Validate(ctx context.Context) error {
	s, err := a.requireProduct()
	if err != nil {
		return err
	}

	problems := s.Validate()
	if len(problems) == 0 {
		fmt.Fprintln(a.out, "Ready to save")
		return nil
	}
	for _, p := range problems {
		fmt.Fprintln(a.out, "  -", p)
	}
	return nil
}
