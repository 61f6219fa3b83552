package demo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client sends orders to the target order service.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a demo order client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

// Health checks the service's actuator health endpoint before a run.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/actuator/health", nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("order service unreachable at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("order service health returned status %d", resp.StatusCode)
	}
	return nil
}

// SendResult is the outcome of one order delivery.
type SendResult struct {
	Success    bool
	StatusCode int
}

// SendOrder posts one order. Transport failures count as unsuccessful
// deliveries rather than errors so a run survives service hiccups.
func (c *Client) SendOrder(ctx context.Context, order Order) SendResult {
	body, err := json.Marshal(order)
	if err != nil {
		return SendResult{}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/orders", bytes.NewReader(body))
	if err != nil {
		return SendResult{}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return SendResult{}
	}
	defer resp.Body.Close()

	return SendResult{
		Success:    resp.StatusCode == http.StatusOK,
		StatusCode: resp.StatusCode,
	}
}
