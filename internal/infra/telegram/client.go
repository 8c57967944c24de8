package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"pool_watch/internal/domain"
)

const defaultBaseURL = "https://api.telegram.org"

// Client is a thin Telegram Bot API gateway (boundary layer). It implements
// domain.Notifier. Sends are rate-limited below the Bot API's ~30 msg/s cap.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
	// getUpdates long-polls server-side, so it gets its own client with a
	// deadline longer than the poll timeout.
	pollClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a Bot API client for the given bot token.
func NewClient(token string) *Client {
	return NewClientWithBaseURL(token, defaultBaseURL)
}

// NewClientWithBaseURL creates a client against a custom API host (tests).
func NewClientWithBaseURL(token, baseURL string) *Client {
	return &Client{
		token:      token,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		pollClient: &http.Client{Timeout: 40 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(25), 5),
	}
}

// Send delivers a plain-text message to one chat session.
func (c *Client) Send(ctx context.Context, chatID int64, text string) error {
	return c.sendMessage(ctx, sendMessageRequest{ChatID: chatID, Text: text})
}

// SendMenu delivers a message with an inline button grid attached.
func (c *Client) SendMenu(ctx context.Context, chatID int64, text string, menu domain.Menu) error {
	keyboard := make([][]inlineButton, len(menu))
	for i, row := range menu {
		keyboard[i] = make([]inlineButton, len(row))
		for j, b := range row {
			keyboard[i][j] = inlineButton{Text: b.Text, CallbackData: b.Data}
		}
	}
	return c.sendMessage(ctx, sendMessageRequest{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: &replyMarkup{InlineKeyboard: keyboard},
	})
}

func (c *Client) sendMessage(ctx context.Context, req sendMessageRequest) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &domain.DispatchError{ChatID: req.ChatID, Err: err}
	}
	if _, err := c.call(ctx, c.httpClient, "sendMessage", req); err != nil {
		return &domain.DispatchError{ChatID: req.ChatID, Err: err}
	}
	return nil
}

// SetCommands publishes the bot's command menu.
func (c *Client) SetCommands(ctx context.Context, commands []BotCommand) error {
	_, err := c.call(ctx, c.httpClient, "setMyCommands", map[string]any{"commands": commands})
	return err
}

// getUpdates long-polls for new updates after offset.
func (c *Client) getUpdates(ctx context.Context, offset int64, timeoutSec int) ([]update, error) {
	raw, err := c.call(ctx, c.pollClient, "getUpdates", map[string]any{
		"offset":  offset,
		"timeout": timeoutSec,
	})
	if err != nil {
		return nil, err
	}
	var updates []update
	if err := json.Unmarshal(raw, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

// answerCallback acknowledges a button press so the client stops its spinner.
func (c *Client) answerCallback(ctx context.Context, callbackID string) error {
	_, err := c.call(ctx, c.httpClient, "answerCallbackQuery", map[string]any{
		"callback_query_id": callbackID,
	})
	return err
}

func (c *Client) call(ctx context.Context, hc *http.Client, method string, payload any) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var apiResp apiResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", method, err)
	}
	if !apiResp.OK {
		return nil, fmt.Errorf("%s: api error: %s", method, apiResp.Description)
	}
	return apiResp.Result, nil
}
