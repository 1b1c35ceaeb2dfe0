package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/meshmart/internal/catalog"
	"github.com/dmitrijs2005/meshmart/internal/client/models"
	"github.com/dmitrijs2005/meshmart/internal/common"
	"github.com/dmitrijs2005/meshmart/internal/wire"
)

// HTTPClient implements Client over the gateway's JSON API. It is safe for
// concurrent use.
type HTTPClient struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *HTTPClient) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if t := c.Token(); t != "" {
		req.Header.Set(common.AuthorizationHeader, common.BearerPrefix+t)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var er wire.ErrorResponse
	msg := strings.TrimSpace(string(b))
	if json.Unmarshal(b, &er) == nil && er.Error != "" {
		msg = er.Error
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return NewAPIError(resp.StatusCode, msg)
}

func (c *HTTPClient) Register(ctx context.Context, username, password string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/register", wire.Credentials{Username: username, Password: password}, nil)
}

// Login authenticates and keeps the returned access token for later calls.
func (c *HTTPClient) Login(ctx context.Context, username, password string) (string, error) {
	var resp wire.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", wire.Credentials{Username: username, Password: password}, &resp); err != nil {
		return "", err
	}
	c.SetToken(resp.AccessToken)
	return resp.AccessToken, nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	var resp wire.HealthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return err
	}
	if resp.Status != "ok" {
		return fmt.Errorf("%w: status %q", ErrUnavailable, resp.Status)
	}
	return nil
}

func (c *HTTPClient) CreateProduct(ctx context.Context, title string) (*models.Product, error) {
	var p wire.Product
	if err := c.do(ctx, http.MethodPost, "/api/products", wire.CreateProductRequest{Title: title}, &p); err != nil {
		return nil, err
	}
	return &models.Product{ID: p.ID, Title: p.Title}, nil
}

func (c *HTTPClient) DeleteProduct(ctx context.Context, productID string) error {
	return c.do(ctx, http.MethodDelete, "/api/products/"+url.PathEscape(productID), nil, nil)
}

func (c *HTTPClient) ListProductFiles(ctx context.Context, productID string) ([]models.ProductFile, error) {
	var resp wire.ProductFilesResponse
	if err := c.do(ctx, http.MethodGet, "/api/products/"+url.PathEscape(productID)+"/files", nil, &resp); err != nil {
		return nil, err
	}

	out := make([]models.ProductFile, len(resp.Files))
	for i, f := range resp.Files {
		out[i] = fileFromWire(f)
	}
	return out, nil
}

func (c *HTTPClient) DeleteProductFile(ctx context.Context, productID, fileID string) error {
	return c.do(ctx, http.MethodDelete, "/api/products/"+url.PathEscape(productID)+"/files/"+url.PathEscape(fileID), nil, nil)
}

// ArrangeProductFiles stores the display order of the product's files and,
// when thumbnailID is set, its thumbnail.
func (c *HTTPClient) ArrangeProductFiles(ctx context.Context, productID string, order []string, thumbnailID string) error {
	req := wire.ArrangeRequest{Order: order, ThumbnailFileID: thumbnailID}
	return c.do(ctx, http.MethodPut, "/api/products/"+url.PathEscape(productID)+"/files/order", req, nil)
}

func (c *HTTPClient) RequestUploadGrants(ctx context.Context, productID string, files []models.FileSpec) ([]models.Grant, error) {
	req := wire.PresignRequest{Files: make([]wire.UploadFileSpec, len(files))}
	for i, f := range files {
		req.Files[i] = wire.UploadFileSpec{
			FileName: f.FileName,
			FileType: f.FileType,
			FileSize: f.FileSize,
			Category: string(f.Category),
		}
	}

	var resp wire.PresignResponse
	if err := c.do(ctx, http.MethodPost, "/api/products/"+url.PathEscape(productID)+"/files/presign", req, &resp); err != nil {
		return nil, err
	}

	out := make([]models.Grant, len(resp.Grants))
	for i, g := range resp.Grants {
		out[i] = models.Grant{
			FileName:     g.FileName,
			PresignedURL: g.PresignedURL,
			StorageKey:   g.StorageKey,
			Category:     catalog.Category(g.Category),
			ExpiresAt:    g.ExpiresAt,
		}
	}
	return out, nil
}

func (c *HTTPClient) ConfirmUpload(ctx context.Context, conf models.Confirmation) (*models.ProductFile, error) {
	req := wire.ConfirmRequest{
		FileName:     conf.FileName,
		FileType:     conf.FileType,
		FileSize:     conf.FileSize,
		StorageKey:   conf.StorageKey,
		Category:     string(conf.Category),
		DisplayOrder: conf.DisplayOrder,
	}

	var f wire.ProductFile
	if err := c.do(ctx, http.MethodPost, "/api/products/"+url.PathEscape(conf.ProductID)+"/files/confirm", req, &f); err != nil {
		return nil, err
	}
	pf := fileFromWire(f)
	return &pf, nil
}

// RequestDownload asks for download grants of a completed order. Ownership
// and payment errors come back as *APIError with the gateway's message.
func (c *HTTPClient) RequestDownload(ctx context.Context, orderID string) ([]models.DownloadFile, error) {
	var resp wire.DownloadResponse
	if err := c.do(ctx, http.MethodGet, "/api/orders/"+url.PathEscape(orderID)+"/download", nil, &resp); err != nil {
		return nil, err
	}

	out := make([]models.DownloadFile, len(resp.Files))
	for i, f := range resp.Files {
		out[i] = models.DownloadFile{
			FileName:     f.FileName,
			Category:     catalog.Category(f.Category),
			PresignedURL: f.PresignedURL,
			SizeLabel:    f.FileSizeMB,
		}
	}
	return out, nil
}

func fileFromWire(f wire.ProductFile) models.ProductFile {
	return models.ProductFile{
		ID:           f.ID,
		ProductID:    f.ProductID,
		FileName:     f.FileName,
		FileSize:     f.FileSize,
		Category:     catalog.Category(f.Category),
		DisplayOrder: f.DisplayOrder,
		Thumbnail:    f.IsThumbnail,
		PublicURL:    f.PublicURL,
		StorageKey:   f.StorageKey,
	}
}

// IsAuthError reports whether err means the stored session is no longer
// accepted by the gateway.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
