package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/guildforge/engine/pkg/guild"
	"github.com/guildforge/engine/pkg/respond"
)

// apiClient wraps the engine API for console use.
type apiClient struct {
	baseURL string
	client  *http.Client
}

func newAPIClient(cfg *ConsoleConfig, client *http.Client) *apiClient {
	return &apiClient{baseURL: cfg.APIBaseURL, client: client}
}

func (c *apiClient) getGuild(guildID string) (*guild.Record, error) {
	resp, err := c.client.Get(fmt.Sprintf("%s/v1/guilds/%s", c.baseURL, guildID))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp.StatusCode, body)
	}

	var rec guild.Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse guild response: %w", err)
	}
	return &rec, nil
}

func (c *apiClient) fireTrigger(guildID, playerID, triggerID string, forceFalse bool) (*respond.Response, error) {
	reqBody := map[string]interface{}{
		"player_id":   playerID,
		"force_false": forceFalse,
	}
	return c.postResponse(fmt.Sprintf("%s/v1/guilds/%s/triggers/%s/fire", c.baseURL, guildID, triggerID), reqBody)
}

func (c *apiClient) scheduleAttack(guildID, attackerID, defenderID, itemID string, qty int) (*respond.Response, error) {
	reqBody := map[string]interface{}{
		"attacker_id": attackerID,
		"defender_id": defenderID,
		"item_id":     itemID,
		"quantity":    qty,
	}
	return c.postResponse(fmt.Sprintf("%s/v1/guilds/%s/attacks", c.baseURL, guildID), reqBody)
}

func (c *apiClient) advanceRound(guildID string) (*respond.Response, error) {
	return c.postResponse(fmt.Sprintf("%s/v1/guilds/%s/round/advance", c.baseURL, guildID), nil)
}

func (c *apiClient) resetGame(guildID string) (*respond.Response, error) {
	return c.postResponse(fmt.Sprintf("%s/v1/guilds/%s/round/reset", c.baseURL, guildID), nil)
}

func (c *apiClient) storeView(guildID, storeID string) (string, error) {
	resp, err := c.client.Get(fmt.Sprintf("%s/v1/guilds/%s/stores/%s", c.baseURL, guildID, storeID))
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", apiError(resp.StatusCode, body)
	}

	var view struct {
		Name     string `json:"name"`
		Listings []struct {
			ItemName string `json:"item_name"`
			Price    int    `json:"price"`
			Stock    int    `json:"stock"`
		} `json:"listings"`
	}
	if err := json.Unmarshal(body, &view); err != nil {
		return "", fmt.Errorf("failed to parse store response: %w", err)
	}

	out := view.Name + "\n"
	for _, l := range view.Listings {
		stock := "unlimited"
		if l.Stock >= 0 {
			stock = fmt.Sprintf("%d left", l.Stock)
		}
		out += fmt.Sprintf("  %s — %d coins (%s)\n", l.ItemName, l.Price, stock)
	}
	return out, nil
}

func (c *apiClient) postResponse(url string, reqBody interface{}) (*respond.Response, error) {
	var payload io.Reader = http.NoBody
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		payload = bytes.NewBuffer(data)
	}

	resp, err := c.client.Post(url, "application/json", payload)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp.StatusCode, body)
	}

	var r respond.Response
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &r, nil
}

func apiError(status int, body []byte) error {
	var errorResp ErrorResponse
	if err := json.Unmarshal(body, &errorResp); err != nil || errorResp.Error == "" {
		return fmt.Errorf("API returned status %d: %s", status, string(body))
	}
	return fmt.Errorf("%s", errorResp.Error)
}
