package points

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zombor/receipt-points/internal/receipt"
)

// ErrMalformedResponse is returned when a response body cannot be decoded
var ErrMalformedResponse = errors.New("malformed response")

// ServerError is returned for non-2xx responses
type ServerError struct {
	StatusCode int
	Message    string // from the {"error": ...} body, empty if absent
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("scoring service returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("scoring service returned status %d: %s", e.StatusCode, e.Message)
}

// NetworkError is returned when no usable response was obtained
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Client talks to the receipt scoring service
type Client struct {
	baseURL string
	client  *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// WithTimeout sets the request timeout of the underlying http.Client
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// NewClient creates a Client for the service at baseURL, e.g. http://localhost:8080
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type processResponse struct {
	ID string `json:"id"`
}

type pointsResponse struct {
	Points *int64 `json:"points"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ProcessReceipt submits r and returns the id assigned by the service
func (c *Client) ProcessReceipt(ctx context.Context, r receipt.Receipt) (string, error) {
	body, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("marshaling receipt: %w", err)
	}

	var out processResponse
	if err := c.do(ctx, http.MethodPost, "/receipts/process", body, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", &NetworkError{Op: "processing receipt", Err: fmt.Errorf("%w: missing id", ErrMalformedResponse)}
	}
	return out.ID, nil
}

// GetPoints returns the points awarded to the receipt with the given id
func (c *Client) GetPoints(ctx context.Context, id string) (int64, error) {
	var out pointsResponse
	path := fmt.Sprintf("/receipts/%s/points", url.PathEscape(id))
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return 0, err
	}
	if out.Points == nil {
		return 0, &NetworkError{Op: "getting points", Err: fmt.Errorf("%w: missing points", ErrMalformedResponse)}
	}
	return *out.Points, nil
}

// do performs a JSON request. 2xx bodies are decoded into out. Other statuses
// with a JSON body become a *ServerError. Anything else, including an error
// page that is not JSON, becomes a *NetworkError.
func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		slog.Debug("Scoring service unreachable", "method", method, "path", path, "request_id", requestID, "error", err)
		return &NetworkError{Op: fmt.Sprintf("%s %s", method, path), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: "reading response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp errorResponse
		// Only a JSON body is a server rejection; HTML error pages and empty
		// bodies from proxies mean the service itself was not reached
		if err := json.Unmarshal(data, &errResp); err != nil {
			slog.Debug("Unreadable error response",
				"method", method,
				"path", path,
				"request_id", requestID,
				"status", resp.StatusCode,
			)
			return &NetworkError{
				Op:  fmt.Sprintf("%s %s", method, path),
				Err: fmt.Errorf("%w: status %d: %v", ErrMalformedResponse, resp.StatusCode, err),
			}
		}
		slog.Debug("Scoring service rejected request",
			"method", method,
			"path", path,
			"request_id", requestID,
			"status", resp.StatusCode,
			"message", errResp.Error,
		)
		return &ServerError{StatusCode: resp.StatusCode, Message: errResp.Error}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &NetworkError{Op: "decoding response", Err: fmt.Errorf("%w: %v", ErrMalformedResponse, err)}
	}
	return nil
}
