package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/meshmart/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gateway base URL
//	-u int      parallel uploads
//	-b int      download batch size
//	-t int      request timeout in seconds
//	-o string   download directory
//	-d string   local database path
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-u", "-b", "-t", "-o", "-d"})

	fs := flag.NewFlagSet("meshmart", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "gateway base URL")
	fs.IntVar(&cfg.UploadConcurrency, "u", cfg.UploadConcurrency, "parallel uploads")
	fs.IntVar(&cfg.DownloadBatchSize, "b", cfg.DownloadBatchSize, "download batch size")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.DownloadDir, "o", cfg.DownloadDir, "download directory")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "local database path")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	if cfg.UploadConcurrency < 1 || cfg.DownloadBatchSize < 1 || *timeout < 1 {
		return fmt.Errorf("parse flags: -u, -b and -t must be positive")
	}
	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
	return nil
}
