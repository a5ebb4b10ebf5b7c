package alerts

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

// Client talks to the alert backend's scenario endpoints.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// FetchScenarios loads the full alert snapshot.
func (c *Client) FetchScenarios(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	if err := c.do(ctx, http.MethodGet, "/scenarios", nil, &snap); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// UpdateStatus mutates one alert's status (acknowledge/resolve/escalate).
func (c *Client) UpdateStatus(ctx context.Context, id, status string) error {
	body := map[string]string{"status": status}
	return c.do(ctx, http.MethodPut, "/scenarios/"+id, body, nil)
}

// ClearAll deletes every stored alert.
func (c *Client) ClearAll(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/scenarios", nil, nil)
}

// HealthInfo is the /health probe response.
type HealthInfo struct {
	Status      string `json:"status"`
	AlertsCount int    `json:"alerts_count"`
}

// Health probes backend connectivity.
func (c *Client) Health(ctx context.Context) (HealthInfo, error) {
	var info HealthInfo
	if err := c.do(ctx, http.MethodGet, "/health", nil, &info); err != nil {
		return HealthInfo{}, err
	}
	return info, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		dump := strings.TrimSpace(string(raw))
		if dump != "" {
			return fmt.Errorf("http_%d: %s", resp.StatusCode, dump)
		}
		return fmt.Errorf("http_%d: %s %s", resp.StatusCode, method, path)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
