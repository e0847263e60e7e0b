package synth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/okian/ritmo/internal/domain/model"
)

// Client talks to a running service.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a client with a request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{baseURL: baseURL, client: &http.Client{Timeout: timeout}}
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, want int, out any) error {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "text/csv")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if resp.StatusCode != want {
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, bytes.TrimSpace(data))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

// Health checks that the service answers on /healthz.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, http.StatusOK, nil)
}

// Upload ingests a results file into race.
func (c *Client) Upload(ctx context.Context, race model.Race, content []byte) (model.IngestResult, error) {
	q := url.Values{}
	q.Set("nombre", race.Name)
	q.Set("distancia", strconv.FormatFloat(race.DistanceKm, 'f', -1, 64))
	if race.Date != "" {
		q.Set("fecha", race.Date)
	}
	var res model.IngestResult
	err := c.do(ctx, http.MethodPost, "/races/results?"+q.Encode(), content, http.StatusCreated, &res)
	return res, err
}

// TopByGender fetches the per-gender podium of a race.
func (c *Client) TopByGender(ctx context.Context, raceID int64, n int) (model.GenderTop, error) {
	var top model.GenderTop
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/races/%d/top-gender?limit=%d", raceID, n), nil, http.StatusOK, &top)
	return top, err
}
