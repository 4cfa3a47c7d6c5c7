// Package refuge talks to the external restroom-location API and converts
// its raw records into canonical Restroom candidates. It is the only
// package that depends on the exact shape of the provider's JSON.
//
// The client performs a single blocking search call per invocation: no
// retries, no backoff, no pagination of the provider (those belong to the
// HTTP-client collaborator outside the core). Callers control deadlines
// through the context.
package refuge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Record is one raw record from the provider: a mapping of string keys to
// heterogeneous values, exactly as decoded from the response JSON.
type Record map[string]any

// Client queries the restroom-location search endpoint.
type Client struct {
	// BaseURL is the provider root, e.g. "https://www.refugerestrooms.org/api/v1".
	BaseURL string
	// HTTPClient is used for requests; a default with a 15s timeout is used
	// when nil.
	HTTPClient *http.Client
}

// NewClient constructs a Client for the given provider root.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// SearchByLocation fetches restroom records near (lat, lng). perPage caps
// the number of records requested from the provider; values <= 0 fall back
// to the provider default.
func (c *Client) SearchByLocation(ctx context.Context, lat, lng float64, perPage int) ([]Record, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lng", strconv.FormatFloat(lng, 'f', -1, 64))
	if perPage > 0 {
		q.Set("per_page", strconv.Itoa(perPage))
	}

	endpoint := fmt.Sprintf("%s/restrooms/by_location?%s", c.BaseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	hc := c.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("restroom search: unexpected status %d", resp.StatusCode)
	}

	var records []Record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("restroom search: decode response: %w", err)
	}
	return records, nil
}
