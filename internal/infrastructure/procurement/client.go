package procurement

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxResponseSize is the maximum allowed response size from the backend (10MB)
const maxResponseSize = 10 * 1024 * 1024

// Config holds the procurement backend connection settings
type Config struct {
	BaseURL        string
	TimeoutSeconds int
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("procurement: base URL is required")
	}
	if _, err := url.Parse(c.BaseURL); err != nil {
		return fmt.Errorf("procurement: invalid base URL: %w", err)
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}

// Client is the HTTP adapter over the procurement backend, the external
// collaborator that owns persistence, catalog CRUD and bulk-file parsing.
// Every call takes a context. There is no retry policy: a failed call
// surfaces an error and the operator re-triggers the action.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a procurement backend client
func NewClient(config *Config, logger *zap.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
		logger: logger.Named("procurement"),
	}, nil
}

// ListCategories fetches the catalog categories
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := c.getJSON(ctx, "/categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// ListItems fetches catalog items, optionally filtered by type and active flag
func (c *Client) ListItems(ctx context.Context, filter ItemFilter) ([]Item, error) {
	query := url.Values{}
	if filter.Type != "" {
		query.Set("type", filter.Type)
	}
	if filter.ActiveOnly {
		query.Set("active", "true")
	}
	var items []Item
	if err := c.getJSON(ctx, "/items", query, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ListPurposes fetches the payment-purpose reference values
func (c *Client) ListPurposes(ctx context.Context) ([]Purpose, error) {
	var purposes []Purpose
	if err := c.getJSON(ctx, "/purposes", nil, &purposes); err != nil {
		return nil, err
	}
	return purposes, nil
}

// CreatePurpose creates a payment-purpose reference value
func (c *Client) CreatePurpose(ctx context.Context, name string) (*Purpose, error) {
	var purpose Purpose
	body := map[string]string{"name": name}
	if err := c.sendJSON(ctx, http.MethodPost, "/purposes", body, &purpose); err != nil {
		return nil, err
	}
	return &purpose, nil
}

// GetOrder fetches a persisted purchase order for edit-mode hydration
func (c *Client) GetOrder(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	var order Order
	if err := c.getJSON(ctx, "/purchase-orders/"+orderID.String(), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// CreateOrder persists a new purchase order
func (c *Client) CreateOrder(ctx context.Context, payload OrderPayload) (*Order, error) {
	var order Order
	if err := c.sendJSON(ctx, http.MethodPost, "/purchase-orders", payload, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateOrder persists changes to an existing purchase order
func (c *Client) UpdateOrder(ctx context.Context, orderID uuid.UUID, payload OrderPayload) (*Order, error) {
	var order Order
	if err := c.sendJSON(ctx, http.MethodPut, "/purchase-orders/"+orderID.String(), payload, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// CreateItem creates a catalog item for the inline create-and-assign flow
func (c *Client) CreateItem(ctx context.Context, payload CreateItemPayload) (*Item, error) {
	var item Item
	if err := c.sendJSON(ctx, http.MethodPost, "/items", payload, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// DownloadTemplate fetches the CSV line-template. The content is an opaque
// passthrough; nothing here parses it.
func (c *Client) DownloadTemplate(ctx context.Context) (*TemplateFile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/purchase-orders/line-template", nil)
	if err != nil {
		return nil, fmt.Errorf("procurement: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("procurement: download template: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("procurement: download template: unexpected status %d", resp.StatusCode)
	}

	content, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("procurement: read template: %w", err)
	}

	file := &TemplateFile{
		Filename:    "purchase-order-lines.csv",
		ContentType: resp.Header.Get("Content-Type"),
		Content:     content,
	}
	if file.ContentType == "" {
		file.ContentType = "text/csv"
	}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		if name := params["filename"]; name != "" {
			file.Filename = name
		}
	}
	return file, nil
}

// UploadLines submits a bulk file of candidate lines to the backend parser
// and returns its structured result. Parsing policy lives entirely on the
// backend; this client only carries the file and the result.
func (c *Client) UploadLines(ctx context.Context, filename string, file io.Reader) (*BulkParseResult, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("procurement: build upload: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("procurement: build upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("procurement: build upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/purchase-orders/lines/upload", &buf)
	if err != nil {
		return nil, fmt.Errorf("procurement: build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var result BulkParseResult
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	if result.Lines == nil {
		result.Lines = make([]OrderLine, 0)
	}
	if result.Errors == nil {
		result.Errors = make([]BulkRowError, 0)
	}
	return &result, nil
}

// getJSON performs a GET and decodes the enveloped data payload
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("procurement: build request: %w", err)
	}
	return c.do(req, out)
}

// sendJSON performs a request with a JSON body and decodes the enveloped
// data payload
func (c *Client) sendJSON(ctx context.Context, method, path string, body, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("procurement: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("procurement: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

// do executes the request and unwraps the {success, data} envelope
func (c *Client) do(req *http.Request, out any) error {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("backend call failed",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Error(err))
		return fmt.Errorf("procurement: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("procurement: read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("procurement: decode response (status %d): %w", resp.StatusCode, err)
	}

	c.logger.Debug("backend call",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)))

	if !env.Success {
		if env.Error != nil {
			return env.Error
		}
		return &APIError{Code: "UNKNOWN", Message: fmt.Sprintf("request rejected with status %d", resp.StatusCode)}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("procurement: decode data payload: %w", err)
		}
	}
	return nil
}
