package nexusapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"nexus_dashboard/internal/models"
)

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	logger     *slog.Logger
}

// APIError is a non-2xx answer from the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

func mroQuery(f models.MROFilter) string {
	params := url.Values{}
	if f.Category != "" {
		params.Set("category", f.Category)
	}
	if f.Progress != "" {
		params.Set("progress", f.Progress)
	}
	if len(params) == 0 {
		return ""
	}
	return "?" + params.Encode()
}

func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	return req, nil
}

func (c *Client) do(req *http.Request) ([]byte, int, error) {
	c.logger.Debug("backend request", "method", req.Method, "url", req.URL.String(), "request_id", req.Header.Get("X-Request-ID"))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}
	return body, resp.StatusCode, nil
}

// getList fetches path and decodes either a bare JSON array or an object
// wrapping the array in "data".
func getList[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	body, status, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, errorFromBody(status, body, "GET "+path)
	}

	list, err := decodeList[T](body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return list, nil
}

func decodeList[T any](body []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []T{}, nil
	}
	if trimmed[0] == '[' {
		var list []T
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, err
		}
		return list, nil
	}
	var wrapped struct {
		Data []T `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, err
	}
	if wrapped.Data == nil {
		return []T{}, nil
	}
	return wrapped.Data, nil
}

// errorFromBody builds an APIError, preferring the backend's own message.
func errorFromBody(status int, body []byte, op string) *APIError {
	var payload struct {
		Error   string `json:"error"`
		Detail  any    `json:"detail"`
		Message string `json:"message"`
	}
	msg := ""
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.Error != "":
			msg = payload.Error
		case payload.Detail != nil:
			if s, ok := payload.Detail.(string); ok {
				msg = s
			} else if b, err := json.Marshal(payload.Detail); err == nil {
				msg = string(b)
			}
		case payload.Message != "":
			msg = payload.Message
		}
	}
	if msg == "" {
		msg = fmt.Sprintf("%s failed: %s", op, http.StatusText(status))
	}
	return &APIError{StatusCode: status, Message: msg}
}

// FetchInventory returns the inventory or the error that prevented it.
func (c *Client) FetchInventory(ctx context.Context) ([]models.InventoryItem, error) {
	return getList[models.InventoryItem](ctx, c, "/api/inventory")
}

// FetchOrders returns all orders or the error that prevented it.
func (c *Client) FetchOrders(ctx context.Context) ([]models.Order, error) {
	return getList[models.Order](ctx, c, "/api/orders")
}

// FetchMROItems returns MRO items matching filter, normalized.
func (c *Client) FetchMROItems(ctx context.Context, filter models.MROFilter) ([]models.MROItem, error) {
	items, err := getList[models.MROItem](ctx, c, "/api/mro/items"+mroQuery(filter))
	if err != nil {
		return nil, err
	}
	models.NormalizeMROItems(items)
	return items, nil
}

func (c *Client) sendJSON(ctx context.Context, method, path string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request data: %w", err)
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	respBody, status, err := c.do(req)
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		apiErr := errorFromBody(status, respBody, method+" "+path)
		c.logger.Error("backend rejected request", "method", method, "path", path, "status", status, "error", apiErr.Message)
		return apiErr
	}
	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func serialPath(serialNumber string) string {
	return "/api/mro/items?" + url.Values{"serialNumber": {serialNumber}}.Encode()
}

// CreateMROItem posts a new item. The id is assigned by the backend and any
// value in item.ID is not sent.
func (c *Client) CreateMROItem(ctx context.Context, item models.MROItem) (*models.MROItem, error) {
	item.ID = ""
	var created models.MROItem
	if err := c.sendJSON(ctx, http.MethodPost, "/api/mro/items", item, &created); err != nil {
		return nil, err
	}
	models.NormalizeMROItem(&created)
	return &created, nil
}

func (c *Client) UpdateMROItem(ctx context.Context, serialNumber string, patch models.MROPatch) (*models.MROItem, error) {
	var updated models.MROItem
	if err := c.sendJSON(ctx, http.MethodPut, serialPath(serialNumber), patch, &updated); err != nil {
		return nil, err
	}
	models.NormalizeMROItem(&updated)
	return &updated, nil
}

func (c *Client) DeleteMROItem(ctx context.Context, serialNumber string) error {
	var result struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := c.sendJSON(ctx, http.MethodDelete, serialPath(serialNumber), nil, &result); err != nil {
		return err
	}
	if result.Error != "" {
		return &APIError{StatusCode: http.StatusOK, Message: result.Error}
	}
	return nil
}

// AnalyticsSummary fetches the backend's aggregate numbers.
func (c *Client) AnalyticsSummary(ctx context.Context) (*models.AnalyticsSummary, error) {
	var summary models.AnalyticsSummary
	if err := c.sendJSON(ctx, http.MethodGet, "/api/analytics/summary", nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// UploadInventoryFile sends a spreadsheet of inventory rows.
func (c *Client) UploadInventoryFile(ctx context.Context, filename string, r io.Reader) (*models.UploadResult, error) {
	return c.upload(ctx, "/api/upload/inventory", filename, r)
}

// UploadOrdersFile sends a spreadsheet of orders.
func (c *Client) UploadOrdersFile(ctx context.Context, filename string, r io.Reader) (*models.UploadResult, error) {
	return c.upload(ctx, "/api/upload/orders", filename, r)
}

func (c *Client) upload(ctx context.Context, path, filename string, r io.Reader) (*models.UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish form: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	body, status, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, errorFromBody(status, body, "upload")
	}

	var result models.UploadResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if !result.Success {
		msg := result.Error
		if msg == "" {
			msg = "upload rejected"
		}
		return &result, &APIError{StatusCode: status, Message: msg}
	}
	return &result, nil
}

// IsAPIError reports whether err carries a backend rejection.
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
