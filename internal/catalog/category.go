// Package catalog classifies asset files into marketplace categories and
// holds the per-category upload rules shared by the client and the gateway.
package catalog

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Category is the marketplace bucket a product file belongs to.
type Category string

const (
	Model   Category = "model"
	Texture Category = "texture"
	Image   Category = "image"
	Archive Category = "archive"
	Other   Category = "other"
)

// All lists the categories in display order.
var All = []Category{Model, Texture, Image, Archive, Other}

var extensionCategory = buildExtensionTable(map[Category][]string{
	Model:   {".fbx", ".obj", ".blend", ".gltf", ".glb", ".stl", ".3ds", ".max", ".dae", ".usdz"},
	Texture: {".tga", ".tif", ".tiff", ".exr", ".hdr", ".dds", ".psd"},
	Image:   {".png", ".jpg", ".jpeg", ".webp", ".gif"},
	Archive: {".zip", ".rar", ".7z"},
})

func buildExtensionTable(byCategory map[Category][]string) map[string]Category {
	table := make(map[string]Category)
	for c, exts := range byCategory {
		for _, e := range exts {
			table[e] = c
		}
	}
	return table
}

// Ext returns the lowercase extension of name, including the dot.
func Ext(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// Classify maps a file name to its category by extension alone.
// Unknown or missing extensions map to Other.
func Classify(name string) Category {
	if c, ok := extensionCategory[Ext(name)]; ok {
		return c
	}
	return Other
}

// ParseCategory accepts a category name in any case, plus a few aliases
// used on the command line.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "model", "3d", "models":
		return Model, nil
	case "texture", "textures":
		return Texture, nil
	case "image", "preview", "thumbnail":
		return Image, nil
	case "archive", "archives":
		return Archive, nil
	case "other":
		return Other, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case Model, Texture, Image, Archive, Other:
		return true
	}
	return false
}

func (c Category) String() string {
	return string(c)
}
