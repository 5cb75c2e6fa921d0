package loadtest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// client wraps http.Client with the service base URL.
type client struct {
	http *http.Client
	base string
}

func newClient(base string, timeout time.Duration) *client {
	return &client{
		http: &http.Client{Timeout: timeout},
		base: strings.TrimRight(base, "/"),
	}
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// do sends body as JSON and decodes a 2xx reply into out. Other statuses
// are returned as errors wrapping ErrRequest.
func (c *client) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s %s: %w", method, path, err)
		}
		rdr = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rdr)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrRequest, method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read %s %s: %w", ErrRequest, method, path, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		var e apiError
		if json.Unmarshal(data, &e) == nil && e.Message != "" {
			return fmt.Errorf("%w: %s %s: %d %s: %s", ErrRequest, method, path, resp.StatusCode, e.Code, e.Message)
		}
		return fmt.Errorf("%w: %s %s: %d", ErrRequest, method, path, resp.StatusCode)
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
