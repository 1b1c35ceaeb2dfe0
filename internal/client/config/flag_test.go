package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected *Config
		name     string
		args     []string
		wantErr  bool
	}{
		{
			name: "all flags",
			args: []string{"-a", "http://gw:9090", "-u", "2", "-b", "6", "-t", "10", "-o", "out", "-d", "x.db"},
			expected: &Config{
				ServerURL:         "http://gw:9090",
				UploadConcurrency: 2,
				DownloadBatchSize: 6,
				RequestTimeout:    10 * time.Second,
				DownloadDir:       "out",
				DBPath:            "x.db",
			},
		},
		{
			name: "unknown flags and positionals ignored",
			args: []string{"-x", "1", "download", "-a=http://gw:1"},
			expected: &Config{
				ServerURL:         "http://gw:1",
				UploadConcurrency: 4,
				DownloadBatchSize: 3,
				RequestTimeout:    30 * time.Second,
				DownloadDir:       "download",
				DBPath:            "meshmart.db",
			},
		},
		{name: "incorrect timeout", args: []string{"-t", "abc"}, wantErr: true},
		{name: "zero concurrency", args: []string{"-u", "0"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.LoadDefaults()

			err := parseFlags(cfg, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, cfg))
		})
	}
}
