package catalog

import (
	"errors"
	"fmt"
	"mime"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
)

var (
	ErrUnknownCategory     = errors.New("unknown category")
	ErrExtensionNotAllowed = errors.New("extension not allowed for category")
	ErrTooLarge            = errors.New("file exceeds size limit")
	ErrEmptyFile           = errors.New("file is empty")
)

// Rule constrains the files accepted into one category. An empty Extensions
// set accepts any extension.
type Rule struct {
	Extensions map[string]struct{}
	MaxSize    int64
}

func extSet(exts ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		m[e] = struct{}{}
	}
	return m
}

// Rules is the fixed per-category table.
var Rules = map[Category]Rule{
	Model: {
		Extensions: extSet(".fbx", ".obj", ".blend", ".gltf", ".glb", ".stl", ".3ds", ".max", ".dae", ".usdz"),
		MaxSize:    500 * humanize.MiByte,
	},
	Texture: {
		Extensions: extSet(".png", ".jpg", ".jpeg", ".tga", ".tif", ".tiff", ".exr", ".hdr", ".dds", ".psd"),
		MaxSize:    100 * humanize.MiByte,
	},
	Image: {
		Extensions: extSet(".png", ".jpg", ".jpeg", ".webp", ".gif"),
		MaxSize:    10 * humanize.MiByte,
	},
	Archive: {
		Extensions: extSet(".zip", ".rar", ".7z"),
		MaxSize:    humanize.GiByte,
	},
	Other: {
		MaxSize: 50 * humanize.MiByte,
	},
}

// FileError pairs a rejected file with the reason it was rejected.
type FileError struct {
	FileName string
	Err      error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.FileName, e.Err)
}

func (e FileError) Unwrap() error {
	return e.Err
}

// Check validates a file of the given size against category's rule.
func Check(name string, size int64, category Category) error {
	rule, ok := Rules[category]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	if size <= 0 {
		return ErrEmptyFile
	}
	if len(rule.Extensions) > 0 {
		if _, ok := rule.Extensions[Ext(name)]; !ok {
			return fmt.Errorf("%w: %s accepts %s", ErrExtensionNotAllowed, category, strings.Join(rule.AllowedExtensions(), ", "))
		}
	}
	if size > rule.MaxSize {
		return fmt.Errorf("%w: %s is over the %s limit for %s",
			ErrTooLarge, humanize.IBytes(uint64(size)), humanize.IBytes(uint64(rule.MaxSize)), category)
	}
	return nil
}

// AllowedExtensions returns the sorted extension allow-list.
func (r Rule) AllowedExtensions() []string {
	out := make([]string, 0, len(r.Extensions))
	for e := range r.Extensions {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}

// ContentType guesses the MIME type sent with direct uploads.
func ContentType(name string) string {
	if t := mime.TypeByExtension(Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}
