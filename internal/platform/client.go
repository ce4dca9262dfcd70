// Package platform is a minimal REST client for the chat platform's HTTP
// API. The bot uses it to fetch reacted-on messages, announce pins, and
// look up member roles for admin checks.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

var ErrNotFound = errors.New("platform resource not found")

// APIError is a non-2xx response from the platform API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("platform API error %d: %s", e.Status, e.Message)
}

// Client calls the platform REST API with bot-token authorization.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	logger     *slog.Logger
}

// NewClient creates a platform client. baseURL has no trailing slash, e.g.
// "https://discord.com/api/v10".
func NewClient(baseURL, token string, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
		token:      token,
		logger:     logger,
	}
}

// GetMessage fetches a single message.
func (c *Client) GetMessage(ctx context.Context, channelID, messageID int64) (*Message, error) {
	path := fmt.Sprintf("/channels/%d/messages/%d", channelID, messageID)
	var msg Message
	if err := c.do(ctx, http.MethodGet, path, nil, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// SendMessage posts a message to a channel and returns the created message.
func (c *Client) SendMessage(ctx context.Context, channelID int64, content string) (*Message, error) {
	path := fmt.Sprintf("/channels/%d/messages", channelID)
	body := map[string]string{"content": content}
	var msg Message
	if err := c.do(ctx, http.MethodPost, path, body, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// GetGuildMember fetches a guild member, including their roles.
func (c *Client) GetGuildMember(ctx context.Context, guildID, userID int64) (*Member, error) {
	path := fmt.Sprintf("/guilds/%d/members/%d", guildID, userID)
	var member Member
	if err := c.do(ctx, http.MethodGet, path, nil, &member); err != nil {
		return nil, err
	}
	return &member, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Message string `json:"message"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		_ = json.Unmarshal(raw, &apiErr)
		c.logger.Warn("platform API error",
			"method", method,
			"path", path,
			"status", resp.StatusCode)
		return &APIError{Status: resp.StatusCode, Message: apiErr.Message}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}
