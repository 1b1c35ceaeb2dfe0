package config

import "time"

// Config holds runtime settings for the MeshMart CLI.
//
// Fields:
//   - ServerURL: base URL of the storage gateway.
//   - UploadConcurrency: how many files upload at once.
//   - DownloadBatchSize: how many order files are fetched per batch.
//   - RequestTimeout: timeout of a single gateway call.
//   - DownloadDir: where order archives are saved.
//   - DBPath: SQLite file holding the local session.
type Config struct {
	ServerURL         string
	UploadConcurrency int
	DownloadBatchSize int
	RequestTimeout    time.Duration
	DownloadDir       string
	DBPath            string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.UploadConcurrency = 4
	c.DownloadBatchSize = 3
	c.RequestTimeout = 30 * time.Second
	c.DownloadDir = "download"
	c.DBPath = "meshmart.db"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags from args. Later sources take
// precedence over earlier ones.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
