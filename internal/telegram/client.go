// Package telegram holds the Bot API adapters: outbound message delivery
// for the worker and the channel-membership probe for enrollment. With no
// bot token configured both degrade to no-ops so the core runs standalone.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// Client is a minimal Bot API client.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates a Bot API client. An empty token yields a disabled
// client whose calls no-op.
func NewClient(baseURL, token string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

// Enabled reports whether a bot token is configured.
func (c *Client) Enabled() bool {
	return c.token != ""
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

func (c *Client) call(ctx context.Context, method string, body any) (json.RawMessage, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s read body: %w", method, err)
	}
	var apiResp apiResponse
	if err := json.Unmarshal(data, &apiResp); err != nil {
		return nil, fmt.Errorf("%s decode: %w", method, err)
	}
	if !apiResp.OK {
		return nil, fmt.Errorf("%s: %s", method, apiResp.Description)
	}
	return apiResp.Result, nil
}

// SendMessage delivers one Markdown message to a chat. It satisfies the
// worker's Transport contract.
func (c *Client) SendMessage(ctx context.Context, chatID, text string) error {
	if !c.Enabled() {
		c.logger.Debug("telegram disabled, dropping message", zap.String("chat_id", chatID))
		return nil
	}
	_, err := c.call(ctx, "sendMessage", map[string]any{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "Markdown",
	})
	return err
}

// IsChannelMember checks whether the user belongs to the configured channel.
// A disabled client reports false without error; the check never gates
// order submission.
func (c *Client) IsChannelMember(ctx context.Context, channelID, userID string) (bool, error) {
	if !c.Enabled() || channelID == "" {
		return false, nil
	}
	result, err := c.call(ctx, "getChatMember", map[string]any{
		"chat_id": channelID,
		"user_id": userID,
	})
	if err != nil {
		return false, err
	}
	var member struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(result, &member); err != nil {
		return false, fmt.Errorf("getChatMember decode: %w", err)
	}
	switch member.Status {
	case "member", "administrator", "creator":
		return true, nil
	}
	return false, nil
}

// BaseURLValid is a startup sanity check on the configured API base URL.
func BaseURLValid(base string) error {
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid telegram api base url: %q", base)
	}
	return nil
}
