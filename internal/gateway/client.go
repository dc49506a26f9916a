package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/aingelmo/HCGateway-dashboard/internal/domain/model"
	"github.com/aingelmo/HCGateway-dashboard/internal/domain/validate"
	"github.com/aingelmo/HCGateway-dashboard/pkg/logger"
	"github.com/aingelmo/HCGateway-dashboard/pkg/metrics"
)

// timestampLayout matches the upstream query format, second precision UTC.
const timestampLayout = "2006-01-02T15:04:05Z"

// Client fetches step records from the gateway using a token Manager.
type Client struct {
	baseURL   string
	hc        *http.Client
	tokens    *Manager
	validator validate.Steps
	log       logger.Logger
}

// NewClient creates a gateway client. The token manager is required.
func NewClient(tokens *Manager, baseURL string, opts ...ClientOption) (*Client, error) {
	if tokens == nil {
		return nil, fmt.Errorf("%w: nil token manager", ErrAPI)
	}
	if baseURL == "" {
		return nil, fmt.Errorf("%w: missing base URL", ErrAPI)
	}

	c := &Client{
		baseURL: baseURL,
		hc:      http.DefaultClient,
		tokens:  tokens,
		log:     logger.Get().Named("gateway"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FetchSteps returns validated step records for the given range.
//
// The range is checked before any network I/O. A 401 from the gateway
// triggers exactly one forced token renewal and retry; a second 401
// surfaces as ErrAPI. Records failing validation are dropped and logged,
// never fatal to the fetch.
func (c *Client) FetchSteps(ctx context.Context, rng model.QueryRange) ([]model.StepsRecord, error) {
	if err := validate.Range(rng); err != nil {
		return nil, err
	}

	from, to := rng.Window()
	body := fetchRequest{
		Queries: map[string]any{
			"end": map[string]string{
				"$gte": from.UTC().Format(timestampLayout),
				"$lte": to.UTC().Format(timestampLayout),
			},
		},
	}

	started := time.Now()
	data, status, err := c.post(ctx, body)
	if err == nil && status == http.StatusUnauthorized {
		// One forced renewal, then a single retry.
		metrics.RecordFetchRetry()
		c.log.Warn(ctx, "fetch unauthorized, renewing token and retrying once")
		c.tokens.Invalidate()
		data, status, err = c.post(ctx, body)
	}
	metrics.RecordFetchLatency(float64(time.Since(started).Milliseconds()))

	if err != nil {
		metrics.RecordFetch("failure")
		return nil, err
	}
	if !is2xx(status) {
		metrics.RecordFetch("failure")
		return nil, fmt.Errorf("%w: fetch returned status %d", ErrAPI, status)
	}

	var resp fetchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		metrics.RecordFetch("failure")
		return nil, fmt.Errorf("%w: decode fetch response: %w", ErrAPI, err)
	}

	records, errs := c.validator.Records(resp.Data)
	for _, verr := range errs {
		c.log.Warn(ctx, "dropping invalid step record", logger.Error(verr))
	}

	// Enforce the range invariant even if the upstream filter misbehaves.
	kept := records[:0]
	outside := 0
	for _, rec := range records {
		when := rec.When()
		if when.Before(from) || when.After(to) {
			outside++
			c.log.Debug(ctx, "dropping record outside requested range",
				logger.String("id", rec.ID), logger.Any("when", when))
			continue
		}
		kept = append(kept, rec)
	}

	metrics.RecordFetch("success")
	metrics.AddRecordsFetched(len(resp.Data))
	metrics.AddRecordsDropped(len(errs) + outside)
	c.log.Info(ctx, "fetched step records",
		logger.Int("returned", len(resp.Data)),
		logger.Int("valid", len(kept)),
		logger.Int("dropped", len(errs)+outside))
	return kept, nil
}

// post obtains a valid token and issues the fetch request with it.
func (c *Client) post(ctx context.Context, body fetchRequest) ([]byte, int, error) {
	tok, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, 0, err
	}
	return postJSON(ctx, c.hc, c.baseURL+"/fetch/steps", body, tok.Access)
}
