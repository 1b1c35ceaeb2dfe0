package archive

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/meshmart/internal/client/models"
	"github.com/dustin/go-humanize"
)

const (
	maxNameLen    = 50
	archiveSuffix = "_assets.zip"
)

var (
	disallowed = regexp.MustCompile(`[^a-zA-Z0-9\-_\s]+`)
	whitespace = regexp.MustCompile(`\s+`)
)

// SanitizeName keeps ASCII letters, digits, dashes, underscores and
// whitespace, turns whitespace runs into a single underscore and truncates
// to 50 characters.
func SanitizeName(title string) string {
	s := disallowed.ReplaceAllString(title, "")
	s = whitespace.ReplaceAllString(s, "_")
	if len(s) > maxNameLen {
		s = s[:maxNameLen]
	}
	return s
}

// ArchiveName is the file name the archive of an order is saved under.
func ArchiveName(title, orderID string) string {
	s := SanitizeName(title)
	if strings.Trim(s, "_") == "" {
		s = "order_" + SanitizeName(orderID)
	}
	return s + archiveSuffix
}

// EstimateBytes sums the size labels of files. A bare number is read as
// megabytes; labels that cannot be parsed count as zero.
func EstimateBytes(files []models.DownloadFile) int64 {
	var total int64
	for _, f := range files {
		total += parseSizeLabel(f.SizeLabel)
	}
	return total
}

func parseSizeLabel(label string) int64 {
	label = strings.TrimSpace(label)
	if label == "" {
		return 0
	}
	if mb, err := strconv.ParseFloat(label, 64); err == nil {
		if mb < 0 {
			return 0
		}
		return int64(mb * humanize.MByte)
	}
	n, err := humanize.ParseBytes(label)
	if err != nil {
		return 0
	}
	return int64(n)
}
