package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/confessly/confessly/pkg/config"
)

// TelegramClient implements Client against the Telegram Bot API.
type TelegramClient struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewTelegramClient creates a new Telegram Bot API client
func NewTelegramClient(cfg *config.ChannelConfig) *TelegramClient {
	return &TelegramClient{
		baseURL: cfg.APIBaseURL,
		token:   cfg.BotToken,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
}

type apiMessage struct {
	MessageID int64 `json:"message_id"`
	Chat      struct {
		ID int64 `json:"id"`
	} `json:"chat"`
}

func (c *TelegramClient) call(ctx context.Context, method string, params map[string]interface{}, result interface{}) error {
	body, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to encode %s params: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}
	if !apiResp.OK {
		return fmt.Errorf("%s rejected: %s", method, apiResp.Description)
	}
	if result != nil {
		if err := json.Unmarshal(apiResp.Result, result); err != nil {
			return fmt.Errorf("failed to decode %s result: %w", method, err)
		}
	}
	return nil
}

func (c *TelegramClient) send(ctx context.Context, method string, params map[string]interface{}) (*Message, error) {
	var msg apiMessage
	if err := c.call(ctx, method, params, &msg); err != nil {
		return nil, err
	}
	return &Message{ID: msg.MessageID, ChatID: msg.Chat.ID}, nil
}

// SendMessage sends a text message to a chat
func (c *TelegramClient) SendMessage(ctx context.Context, chatID int64, text string) (*Message, error) {
	return c.send(ctx, "sendMessage", map[string]interface{}{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "HTML",
	})
}

// SendPhoto sends a captioned photo by file reference
func (c *TelegramClient) SendPhoto(ctx context.Context, chatID int64, fileID, caption string) (*Message, error) {
	return c.send(ctx, "sendPhoto", map[string]interface{}{
		"chat_id":    chatID,
		"photo":      fileID,
		"caption":    caption,
		"parse_mode": "HTML",
	})
}

// SendVideo sends a captioned video by file reference
func (c *TelegramClient) SendVideo(ctx context.Context, chatID int64, fileID, caption string) (*Message, error) {
	return c.send(ctx, "sendVideo", map[string]interface{}{
		"chat_id":    chatID,
		"video":      fileID,
		"caption":    caption,
		"parse_mode": "HTML",
	})
}

// SendAnimation sends a captioned animation by file reference
func (c *TelegramClient) SendAnimation(ctx context.Context, chatID int64, fileID, caption string) (*Message, error) {
	return c.send(ctx, "sendAnimation", map[string]interface{}{
		"chat_id":    chatID,
		"animation":  fileID,
		"caption":    caption,
		"parse_mode": "HTML",
	})
}

// EditMessageText edits the text of an existing message
func (c *TelegramClient) EditMessageText(ctx context.Context, chatID, messageID int64, text string) error {
	return c.call(ctx, "editMessageText", map[string]interface{}{
		"chat_id":    chatID,
		"message_id": messageID,
		"text":       text,
		"parse_mode": "HTML",
	}, nil)
}

// DeleteMessage deletes a message by reference
func (c *TelegramClient) DeleteMessage(ctx context.Context, chatID, messageID int64) error {
	return c.call(ctx, "deleteMessage", map[string]interface{}{
		"chat_id":    chatID,
		"message_id": messageID,
	}, nil)
}

// GetChat resolves a chat's metadata
func (c *TelegramClient) GetChat(ctx context.Context, chatID int64) (*Chat, error) {
	var raw struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
		Title    string `json:"title"`
	}
	if err := c.call(ctx, "getChat", map[string]interface{}{"chat_id": chatID}, &raw); err != nil {
		return nil, err
	}
	return &Chat{ID: raw.ID, Username: raw.Username, Title: raw.Title}, nil
}
