// Package schemaregistry is the HTTP client for the Schema Registry
// collaborator.
package schemaregistry

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type Client struct {
	host       string
	httpClient *http.Client
}

type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("schema registry API error (%d): %s", e.Status, e.Body)
}

func NewClient(httpClient *http.Client, host string) *Client {
	host = strings.TrimRight(host, "/")
	return &Client{
		host:       host,
		httpClient: httpClient,
	}
}

func (c *Client) doRequest(ctx context.Context, method, path string, payload any) ([]byte, int, error) {
	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, err
		}
		reqBody = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.host+path, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response: %w", err)
	}
	return body, resp.StatusCode, nil
}

func (c *Client) IsSchemaActive(ctx context.Context, schemaID string) (bool, error) {
	if schemaID == "" {
		return false, fmt.Errorf("schema_id is required")
	}
	body, status, err := c.doRequest(ctx, http.MethodGet, "/api/v1/schemas/"+schemaID, nil)
	if err != nil {
		return false, err
	}
	if status == http.StatusNotFound {
		return false, nil
	}
	if status != http.StatusOK {
		return false, &APIError{Status: status, Body: string(body)}
	}
	var s struct {
		Active bool `json:"active"`
	}
	if err := json.Unmarshal(body, &s); err != nil {
		return false, fmt.Errorf("failed to decode schema: %w", err)
	}
	return s.Active, nil
}

func (c *Client) GameSchema(ctx context.Context, gameID string) (string, error) {
	if gameID == "" {
		return "", fmt.Errorf("game_id is required")
	}
	body, status, err := c.doRequest(ctx, http.MethodGet, "/api/v1/games/"+gameID+"/schema", nil)
	if err != nil {
		return "", err
	}
	if status == http.StatusNotFound {
		return "", nil
	}
	if status != http.StatusOK {
		return "", &APIError{Status: status, Body: string(body)}
	}
	var s struct {
		SchemaID string `json:"schema_id"`
	}
	if err := json.Unmarshal(body, &s); err != nil {
		return "", fmt.Errorf("failed to decode schema binding: %w", err)
	}
	return s.SchemaID, nil
}

func (c *Client) Validate(ctx context.Context, schemaID string, payload []byte) error {
	if schemaID == "" {
		return fmt.Errorf("schema_id is required")
	}
	body, status, err := c.doRequest(ctx, http.MethodPost, "/api/v1/schemas/"+schemaID+"/validate", map[string]any{
		"payload": base64.StdEncoding.EncodeToString(payload),
	})
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return &APIError{Status: status, Body: string(body)}
	}
	var v struct {
		Valid bool   `json:"valid"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &v); err != nil {
		return fmt.Errorf("failed to decode validation result: %w", err)
	}
	if !v.Valid {
		if v.Error != "" {
			return fmt.Errorf("payload does not conform to schema %s: %s", schemaID, v.Error)
		}
		return fmt.Errorf("payload does not conform to schema %s", schemaID)
	}
	return nil
}
