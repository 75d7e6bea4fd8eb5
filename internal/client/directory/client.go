// Package directory is the HTTP client for the Match/Game Directory
// collaborator.
package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"matchoracle/internal/oracle"
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
	return fmt.Sprintf("directory API error (%d): %s", e.Status, e.Body)
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

type matchPayload struct {
	ID          string    `json:"id"`
	GameID      string    `json:"game_id"`
	Status      string    `json:"status"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

func (c *Client) GetMatch(ctx context.Context, matchID string) (*oracle.Match, error) {
	if matchID == "" {
		return nil, fmt.Errorf("match_id is required")
	}
	body, status, err := c.doRequest(ctx, http.MethodGet, "/api/v1/matches/"+matchID, nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, &APIError{Status: status, Body: string(body)}
	}
	var m matchPayload
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("failed to decode match: %w", err)
	}
	return &oracle.Match{
		ID:          m.ID,
		GameID:      m.GameID,
		Status:      strings.ToUpper(m.Status),
		ScheduledAt: m.ScheduledAt,
	}, nil
}

type gamePayload struct {
	ID                string `json:"id"`
	Developer         string `json:"developer"`
	Active            bool   `json:"active"`
	Reputation        int    `json:"reputation"`
	RegistrationStake string `json:"registration_stake"`
}

func (c *Client) GetGame(ctx context.Context, gameID string) (*oracle.Game, error) {
	if gameID == "" {
		return nil, fmt.Errorf("game_id is required")
	}
	body, status, err := c.doRequest(ctx, http.MethodGet, "/api/v1/games/"+gameID, nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, &APIError{Status: status, Body: string(body)}
	}
	var g gamePayload
	if err := json.Unmarshal(body, &g); err != nil {
		return nil, fmt.Errorf("failed to decode game: %w", err)
	}
	stake, err := decimal.NewFromString(strings.TrimSpace(g.RegistrationStake))
	if err != nil {
		return nil, fmt.Errorf("failed to parse registration stake %q: %w", g.RegistrationStake, err)
	}
	return &oracle.Game{
		ID:                g.ID,
		Developer:         g.Developer,
		Active:            g.Active,
		Reputation:        g.Reputation,
		RegistrationStake: stake,
	}, nil
}

func (c *Client) SetMatchStatus(ctx context.Context, matchID, status string) error {
	if matchID == "" {
		return fmt.Errorf("match_id is required")
	}
	body, code, err := c.doRequest(ctx, http.MethodPut, "/api/v1/matches/"+matchID+"/status", map[string]any{
		"status": status,
	})
	if err != nil {
		return err
	}
	if code != http.StatusOK && code != http.StatusNoContent {
		return &APIError{Status: code, Body: string(body)}
	}
	return nil
}

func (c *Client) SlashStake(ctx context.Context, gameID string, amount decimal.Decimal, reason string) error {
	if gameID == "" {
		return fmt.Errorf("game_id is required")
	}
	body, code, err := c.doRequest(ctx, http.MethodPost, "/api/v1/games/"+gameID+"/slash", map[string]any{
		"amount": amount.String(),
		"reason": reason,
	})
	if err != nil {
		return err
	}
	if code != http.StatusOK && code != http.StatusNoContent {
		return &APIError{Status: code, Body: string(body)}
	}
	return nil
}

func (c *Client) SetReputation(ctx context.Context, gameID string, score int) error {
	if gameID == "" {
		return fmt.Errorf("game_id is required")
	}
	body, code, err := c.doRequest(ctx, http.MethodPut, "/api/v1/games/"+gameID+"/reputation", map[string]any{
		"score": score,
	})
	if err != nil {
		return err
	}
	if code != http.StatusOK && code != http.StatusNoContent {
		return &APIError{Status: code, Body: string(body)}
	}
	return nil
}
