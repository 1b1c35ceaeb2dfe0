// Package buildinfo holds version data injected at build time:
//
//	go build -ldflags "-X github.com/dmitrijs2005/meshmart/internal/buildinfo.Version=v1.0.0 \
//	  -X github.com/dmitrijs2005/meshmart/internal/buildinfo.Date=$(date -u +%FT%TZ) \
//	  -X github.com/dmitrijs2005/meshmart/internal/buildinfo.Commit=$(git rev-parse --short HEAD)"
package buildinfo

import (
	"fmt"
	"io"
)

// These variables are set via -ldflags.
var (
	Version = "N/A"
	Date    = "N/A"
	Commit  = "N/A"
)

// PrintBuildData writes the version banner printed on startup.
func PrintBuildData(w io.Writer) {
	fmt.Fprintf(w, "Build version: %s\n", Version)
	fmt.Fprintf(w, "Build date: %s\n", Date)
	fmt.Fprintf(w, "Build commit: %s\n", Commit)
}
