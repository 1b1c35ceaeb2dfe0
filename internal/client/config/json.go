package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/meshmart/internal/flagx"
	"github.com/dmitrijs2005/meshmart/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Absent fields
// leave the corresponding Config value untouched.
type JsonConfig struct {
	ServerURL         string         `json:"server_url"`
	UploadConcurrency int            `json:"upload_concurrency"`
	DownloadBatchSize int            `json:"download_batch_size"`
	RequestTimeout    timex.Duration `json:"request_timeout"`
	DownloadDir       string         `json:"download_dir"`
	DBPath            string         `json:"db_path"`
}

// parseJson overlays cfg with values from the file named by -c/-config in
// args. Without such a flag it does nothing.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.UploadConcurrency > 0 {
		cfg.UploadConcurrency = jc.UploadConcurrency
	}
	if jc.DownloadBatchSize > 0 {
		cfg.DownloadBatchSize = jc.DownloadBatchSize
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.DownloadDir != "" {
		cfg.DownloadDir = jc.DownloadDir
	}
	if jc.DBPath != "" {
		cfg.DBPath = jc.DBPath
	}
	return nil
}
