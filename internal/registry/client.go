// Package registry is a client for the Confluent Schema Registry HTTP API,
// covering the subset the governance tooling needs: connectivity checks,
// subject listing, schema registration and compatibility testing.
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const contentType = "application/vnd.schemaregistry.v1+json"

// Client talks to a schema registry instance.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a registry client for the given base URL
// (e.g. http://localhost:8081).
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Subject returns the registry subject for an event, following the
// TopicNameStrategy value convention.
func Subject(eventName string) string {
	return eventName + "-value"
}

type registerRequest struct {
	Schema string `json:"schema"`
}

type registerResponse struct {
	ID int `json:"id"`
}

type compatibilityResponse struct {
	IsCompatible bool `json:"is_compatible"`
}

type schemaVersion struct {
	Subject string `json:"subject"`
	ID      int    `json:"id"`
	Version int    `json:"version"`
	Schema  string `json:"schema"`
}

type registryError struct {
	ErrorCode int    `json:"error_code"`
	Message   string `json:"message"`
}

// Check verifies that the registry is reachable.
func (c *Client) Check(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/subjects", nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("schema registry unreachable at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("schema registry returned status %d", resp.StatusCode)
	}
	return nil
}

// Subjects lists all registered subjects.
func (c *Client) Subjects(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/subjects", nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("listing subjects: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.apiError(resp)
	}
	var subjects []string
	if err := json.NewDecoder(resp.Body).Decode(&subjects); err != nil {
		return nil, fmt.Errorf("decoding subjects: %w", err)
	}
	return subjects, nil
}

// Register registers a schema under the given subject and returns the
// assigned schema ID. Registering an identical schema again returns the
// existing ID; the registry treats it as a no-op.
func (c *Client) Register(ctx context.Context, subject string, schema map[string]any) (int, error) {
	schemaJSON, err := json.Marshal(schema)
	if err != nil {
		return 0, fmt.Errorf("marshalling schema: %w", err)
	}
	body, err := json.Marshal(registerRequest{Schema: string(schemaJSON)})
	if err != nil {
		return 0, fmt.Errorf("marshalling register request: %w", err)
	}

	url := fmt.Sprintf("%s/subjects/%s/versions", c.baseURL, subject)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("registering %s: %w", subject, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return 0, c.apiError(resp)
	}
	var result registerResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("decoding register response: %w", err)
	}
	return result.ID, nil
}

// Latest fetches the latest schema version for a subject. The returned
// schema is the parsed Avro document.
func (c *Client) Latest(ctx context.Context, subject string) (map[string]any, int, error) {
	url := fmt.Sprintf("%s/subjects/%s/versions/latest", c.baseURL, subject)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("building request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("fetching latest %s: %w", subject, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, c.apiError(resp)
	}
	var version schemaVersion
	if err := json.NewDecoder(resp.Body).Decode(&version); err != nil {
		return nil, 0, fmt.Errorf("decoding version: %w", err)
	}
	var schema map[string]any
	if err := json.Unmarshal([]byte(version.Schema), &schema); err != nil {
		return nil, 0, fmt.Errorf("decoding schema document: %w", err)
	}
	return schema, version.Version, nil
}

// Compatible checks whether a candidate schema is compatible with the
// latest registered version of the subject.
func (c *Client) Compatible(ctx context.Context, subject string, schema map[string]any) (bool, error) {
	schemaJSON, err := json.Marshal(schema)
	if err != nil {
		return false, fmt.Errorf("marshalling schema: %w", err)
	}
	body, err := json.Marshal(registerRequest{Schema: string(schemaJSON)})
	if err != nil {
		return false, fmt.Errorf("marshalling compatibility request: %w", err)
	}

	url := fmt.Sprintf("%s/compatibility/subjects/%s/versions/latest", c.baseURL, subject)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("checking compatibility for %s: %w", subject, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, c.apiError(resp)
	}
	var result compatibilityResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("decoding compatibility response: %w", err)
	}
	return result.IsCompatible, nil
}

// apiError decodes a registry error body into a descriptive error.
func (c *Client) apiError(resp *http.Response) error {
	data, _ := io.ReadAll(resp.Body)
	var apiErr registryError
	if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Message != "" {
		return fmt.Errorf("registry error %d (HTTP %d): %s", apiErr.ErrorCode, resp.StatusCode, apiErr.Message)
	}
	return fmt.Errorf("registry returned HTTP %d: %s", resp.StatusCode, string(data))
}
