// Package client talks to a running lifeclock server so CLI commands act on
// the server's session instead of writing behind its back.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	json "github.com/goccy/go-json"

	"github.com/lazypower/lifeclock/internal/store"
	"github.com/lazypower/lifeclock/internal/transfer"
)

const (
	defaultServerURL = "http://127.0.0.1:37778"
	httpTimeout      = 5 * time.Second
)

// Client talks to the lifeclock server.
type Client struct {
	http      *http.Client
	serverURL string
}

// New creates a client for serverURL. An empty URL uses LIFECLOCK_URL, then
// http://127.0.0.1:37778.
func New(serverURL string) *Client {
	if serverURL == "" {
		serverURL = os.Getenv("LIFECLOCK_URL")
	}
	if serverURL == "" {
		serverURL = defaultServerURL
	}
	return &Client{
		http:      &http.Client{Timeout: httpTimeout},
		serverURL: serverURL,
	}
}

// APIError is an error response from the server.
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"error"`
	Field   string `json:"field,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Healthy checks if the server is reachable.
func (c *Client) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.serverURL+"/api/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Choose records a choice through the server.
func (c *Client) Choose(ctx context.Context, category store.Category, value string) (store.Choice, error) {
	body, err := json.Marshal(map[string]string{"category": string(category), "value": value})
	if err != nil {
		return store.Choice{}, err
	}
	var choice store.Choice
	if err := c.do(ctx, http.MethodPost, "/api/choices", body, &choice); err != nil {
		return store.Choice{}, err
	}
	return choice, nil
}

// CategoryScores fetches the current per-category scores.
func (c *Client) CategoryScores(ctx context.Context) (map[store.Category]float64, error) {
	var resp struct {
		Abstract map[store.Category]float64 `json:"abstract"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/scores", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Abstract, nil
}

// Choices fetches the server's choice log.
func (c *Client) Choices(ctx context.Context) ([]store.Choice, error) {
	var resp struct {
		Choices []store.Choice `json:"choices"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/choices", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Choices, nil
}

// Reset clears the server's choice log.
func (c *Client) Reset(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/choices", nil, nil)
}

// PutParameters sets the life parameters through the server. A zero dob is
// sent empty and rejected by the server.
func (c *Client) PutParameters(ctx context.Context, dob time.Time, conditions []string) (store.LifeParameters, error) {
	req := struct {
		DOB        string   `json:"dob"`
		Conditions []string `json:"conditions"`
	}{Conditions: conditions}
	if !dob.IsZero() {
		req.DOB = dob.Format(time.DateOnly)
	}
	body, err := json.Marshal(req)
	if err != nil {
		return store.LifeParameters{}, err
	}
	var p store.LifeParameters
	if err := c.do(ctx, http.MethodPut, "/api/parameters", body, &p); err != nil {
		return store.LifeParameters{}, err
	}
	return p, nil
}

// Import streams an export document to the server and returns how many
// records it appended. On a failed import the count covers the records
// appended before the failure.
func (c *Client) Import(ctx context.Context, format transfer.Format, r io.Reader) (int, error) {
	contentType := "application/json"
	if format == transfer.FormatCSV {
		contentType = "text/csv"
	}
	data, err := c.send(ctx, http.MethodPost, "/api/import?format="+url.QueryEscape(string(format)), contentType, r)

	var resp struct {
		Imported int `json:"imported"`
	}
	if len(data) > 0 {
		if jerr := json.Unmarshal(data, &resp); jerr != nil && err == nil {
			return 0, fmt.Errorf("decode /api/import: %w", jerr)
		}
	}
	return resp.Imported, err
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var r io.Reader
	var contentType string
	if body != nil {
		r = bytes.NewReader(body)
		contentType = "application/json"
	}
	data, err := c.send(ctx, method, path, contentType, r)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// send performs the request and returns the response body. A status of 400
// or above returns the body together with an *APIError.
func (c *Client) send(ctx context.Context, method, path, contentType string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.serverURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response %s: %w", path, err)
	}
	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		if json.Unmarshal(data, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = fmt.Sprintf("%s %s: status %d", method, path, resp.StatusCode)
		}
		return data, apiErr
	}
	return data, nil
}
