// Package netx performs the direct object-storage transfers authorized by
// presigned URLs: streaming PUTs with progress and size-capped GETs.
package netx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
)

// ErrResponseTooLarge is returned by Get when the body exceeds MaxBytes.
var ErrResponseTooLarge = errors.New("response exceeds size limit")

// ProgressFunc receives the number of bytes sent so far and the total.
type ProgressFunc func(sent, total int64)

// PresignedPutter uploads local files to presigned PUT URLs.
type PresignedPutter struct {
	Client *http.Client
}

func NewPresignedPutter(c *http.Client) *PresignedPutter {
	if c == nil {
		c = http.DefaultClient
	}
	return &PresignedPutter{Client: c}
}

// Put streams the file at path to url. onProgress, if set, is called as the
// body is consumed by the transport. Cancelling ctx aborts the request.
func (p *PresignedPutter) Put(ctx context.Context, url, path string, size int64, contentType string, onProgress ProgressFunc) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return p.PutReader(ctx, url, f, size, contentType, onProgress)
}

// PutReader streams size bytes from body to url.
func (p *PresignedPutter) PutReader(ctx context.Context, url string, body io.Reader, size int64, contentType string, onProgress ProgressFunc) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	var r io.Reader = body
	if onProgress != nil {
		r = &progressReader{r: body, total: size, fn: onProgress}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, r)
	if err != nil {
		return err
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", contentType)

	resp, err := p.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("upload failed: %s; body: %s", resp.Status, string(b))
	}
	return nil
}

type progressReader struct {
	r     io.Reader
	sent  int64
	total int64
	fn    ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		p.fn(p.sent, p.total)
	}
	return n, err
}

// PresignedGetter downloads objects from presigned GET URLs into memory.
type PresignedGetter struct {
	Client *http.Client
	// MaxBytes caps a single body; zero means no limit.
	MaxBytes int64
}

func NewPresignedGetter(c *http.Client, maxBytes int64) *PresignedGetter {
	if c == nil {
		c = http.DefaultClient
	}
	return &PresignedGetter{Client: c, MaxBytes: maxBytes}
}

// Fetch returns the body of url. Non-2xx statuses are errors.
func (g *PresignedGetter) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("download failed: %s", resp.Status)
	}

	var r io.Reader = resp.Body
	if g.MaxBytes > 0 {
		r = io.LimitReader(resp.Body, g.MaxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if g.MaxBytes > 0 && int64(len(data)) > g.MaxBytes {
		return nil, ErrResponseTooLarge
	}
	return data, nil
}
