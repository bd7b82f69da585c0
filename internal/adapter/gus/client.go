// Package gus is a client for the GUS Local Data Bank (BDL) REST API.
package gus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/wheat-yield-etl/internal/domain"
	"github.com/couchcryptid/wheat-yield-etl/internal/observability"
)

const (
	// Source labels metrics and upstream errors.
	Source = "gus"

	// DefaultBaseURL is the public BDL API root.
	DefaultBaseURL = "https://bdl.stat.gov.pl/api/v1"

	clientIDHeader = "X-ClientId"
	provinceLevel  = "2"
	pageSize       = "100"
)

// Client fetches province-level variables from BDL.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates a BDL client. An empty apiKey sends anonymous requests,
// which BDL serves with a lower rate limit.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:  logger,
		metrics: metrics,
	}
}

// FetchVariable returns every province's value of a variable for one year.
// Failures are reported as *domain.UpstreamFetchError.
func (c *Client) FetchVariable(ctx context.Context, variableID string, year int) ([]domain.ProvinceValue, error) {
	params := url.Values{
		"format":     {"json"},
		"unit-level": {provinceLevel},
		"year":       {strconv.Itoa(year)},
		"page-size":  {pageSize},
	}
	u := fmt.Sprintf("%s/data/by-variable/%s?%s", c.baseURL, url.PathEscape(variableID), params.Encode())
	key := fmt.Sprintf("variable=%s year=%d", variableID, year)

	var body response
	if err := c.doRequest(ctx, u, &body); err != nil {
		return nil, &domain.UpstreamFetchError{Source: Source, Request: key, Err: err}
	}

	var out []domain.ProvinceValue
	for _, r := range body.Results {
		for _, v := range r.Values {
			out = append(out, domain.ProvinceValue{
				UnitID:   r.ID,
				Province: r.Name,
				Year:     int(v.Year),
				Value:    v.Val,
			})
		}
	}
	c.logger.Debug("gus variable fetched", "variable", variableID, "year", year, "values", len(out))
	return out, nil
}

// CheckConnection calls the subjects listing and returns the HTTP status.
// A transport failure returns an error and a zero status.
func (c *Client) CheckConnection(ctx context.Context) (int, error) {
	req, err := c.newRequest(ctx, c.baseURL+"/subjects")
	if err != nil {
		return 0, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("gus connection check: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

func (c *Client) newRequest(ctx context.Context, fullURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(clientIDHeader, c.apiKey)
	}
	return req, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string, v any) error {
	req, err := c.newRequest(ctx, fullURL)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.UpstreamDuration.WithLabelValues(Source).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(Source, "error").Inc()
		return fmt.Errorf("gus request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.UpstreamRequests.WithLabelValues(Source, "error").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("gus API error: status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(Source, "error").Inc()
		return fmt.Errorf("decode response: %w", err)
	}
	c.metrics.UpstreamRequests.WithLabelValues(Source, "success").Inc()
	return nil
}

// BDL API response types.

type response struct {
	TotalRecords int      `json:"totalRecords"`
	Results      []result `json:"results"`
}

type result struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Values []value `json:"values"`
}

type value struct {
	Year flexYear `json:"year"`
	Val  *float64 `json:"val"`
}

// flexYear accepts the year as either a JSON string or a number.
type flexYear int

func (y *flexYear) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	n, err := strconv.Atoi(string(b))
	if err != nil {
		return fmt.Errorf("parse year %q: %w", b, err)
	}
	*y = flexYear(n)
	return nil
}
