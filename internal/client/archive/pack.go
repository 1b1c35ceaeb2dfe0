package archive

import (
	"bytes"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/dmitrijs2005/meshmart/internal/catalog"
	"github.com/klauspost/compress/zip"
)

const (
	ModelsFolder   = "models/"
	TexturesFolder = "textures/"
)

// Folder is the archive folder a category is packed into. Categories
// without a folder go to the archive root.
func Folder(c catalog.Category) string {
	switch c {
	case catalog.Model, catalog.Archive:
		return ModelsFolder
	case catalog.Texture:
		return TexturesFolder
	default:
		return ""
	}
}

// Entry is one fetched file ready to be packed.
type Entry struct {
	Name     string
	Category catalog.Category
	Data     []byte
}

// already compressed formats are stored as is
var storedExt = map[string]bool{
	".zip": true, ".rar": true, ".7z": true,
	".png": true, ".jpg": true, ".jpeg": true, ".webp": true, ".gif": true,
	".glb": true, ".usdz": true,
}

// Pack builds a zip archive from entries and returns it together with the
// path each entry was stored under.
func Pack(entries []Entry, modified time.Time) ([]byte, []string, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	used := make(map[string]bool, len(entries))
	paths := make([]string, 0, len(entries))

	for _, e := range entries {
		p := uniqueEntry(Folder(e.Category)+entryName(e.Name), used)

		method := zip.Deflate
		if storedExt[catalog.Ext(e.Name)] {
			method = zip.Store
		}

		w, err := zw.CreateHeader(&zip.FileHeader{Name: p, Method: method, Modified: modified})
		if err != nil {
			return nil, nil, fmt.Errorf("create %s: %w", p, err)
		}
		if _, err := w.Write(e.Data); err != nil {
			return nil, nil, fmt.Errorf("write %s: %w", p, err)
		}
		paths = append(paths, p)
	}

	if err := zw.Close(); err != nil {
		return nil, nil, fmt.Errorf("close archive: %w", err)
	}
	return buf.Bytes(), paths, nil
}

// entryName drops any directory part so entries cannot escape their folder.
func entryName(name string) string {
	n := path.Base(strings.ReplaceAll(name, `\`, "/"))
	if n == "." || n == ".." || n == "/" {
		return "file"
	}
	return n
}

func uniqueEntry(p string, used map[string]bool) string {
	if !used[p] {
		used[p] = true
		return p
	}

	ext := path.Ext(p)
	base := strings.TrimSuffix(p, ext)
	for n := 2; ; n++ {
		c := fmt.Sprintf("%s (%d)%s", base, n, ext)
		if !used[c] {
			used[c] = true
			return c
		}
	}
}
