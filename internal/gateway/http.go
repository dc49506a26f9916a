package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
)

// maxResponseBytes bounds upstream response bodies.
const maxResponseBytes = 8 << 20

// postJSON issues a JSON POST and returns the response body and status code.
// A non-empty bearer is attached as an Authorization header. Every request
// carries an X-Request-Id for upstream correlation. Network-level failures
// are wrapped as ErrAPI; non-2xx statuses are returned to the caller to map.
func postJSON(ctx context.Context, hc *http.Client, url string, body any, bearer string) ([]byte, int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: encode request: %w", ErrAPI, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: build request: %w", ErrAPI, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrAPI, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: read response: %w", ErrAPI, err)
	}
	return data, resp.StatusCode, nil
}

// is2xx reports whether status is a success code.
func is2xx(status int) bool {
	return status >= 200 && status < 300
}
