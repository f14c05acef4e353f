package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"
)

const telegramAPIBase = "https://api.telegram.org/bot"

type TelegramUpdate struct {
	UpdateID int64            `json:"update_id"`
	Message  *TelegramMessage `json:"message"`
}

type TelegramMessage struct {
	MessageID int64        `json:"message_id"`
	From      TelegramUser `json:"from"`
	Chat      TelegramChat `json:"chat"`
	Text      string       `json:"text"`
}

type TelegramUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type TelegramChat struct {
	ID int64 `json:"id"`
}

type TelegramBotCommand struct {
	Command     string `json:"command"`
	Description string `json:"description"`
}

type telegramResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
}

func (c Client) telegramDo(ctx context.Context, method string, reqBody any) (json.RawMessage, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, errors.Wrapf(err, "telegramDo: error marshalling request for method: %s", method)
	}

	base := c.TelegramBase
	if base == "" {
		base = telegramAPIBase
	}
	req, err := newRequest(ctx, http.MethodPost, base+c.BotToken+"/"+method, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrapf(err, "telegramDo: error creating HTTP request for method: %s", method)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "telegramDo: error doing request for method: %s", method)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.Logger.Errorf("telegramDo: error closing response body, method: %s, err: %v", method, err)
		}
	}()

	respBody, err := io.ReadAll(http.MaxBytesReader(nil, resp.Body, 1024*1024))
	if err != nil {
		return nil, errors.Wrapf(err, "telegramDo: error reading response body, method: %s", method)
	}

	var tResp telegramResponse
	if err = json.Unmarshal(respBody, &tResp); err != nil {
		return nil, errors.Wrapf(err, "telegramDo: error unmarshalling response body, method: %s, body: %s", method, respBody)
	}
	if !tResp.OK {
		return nil, errors.Errorf("telegramDo: Telegram API error, method: %s, status: %s, description: %s",
			method, resp.Status, tResp.Description)
	}
	return tResp.Result, nil
}

func (c Client) TelegramSendMessage(ctx context.Context, chatID int64, text string) error {
	req := struct {
		ChatID int64  `json:"chat_id"`
		Text   string `json:"text"`
	}{ChatID: chatID, Text: text}

	_, err := c.telegramDo(ctx, "sendMessage", req)
	return errors.Wrapf(err, "TelegramSendMessage: error sending message to chat: %d", chatID)
}

// TelegramGetUpdates long-polls for new updates. Blocks up to timeoutSec on the
// Telegram side; the HTTP client timeout must leave headroom above it.
func (c Client) TelegramGetUpdates(ctx context.Context, offset int64, timeoutSec int) ([]TelegramUpdate, error) {
	req := struct {
		Offset         int64    `json:"offset"`
		Timeout        int      `json:"timeout"`
		AllowedUpdates []string `json:"allowed_updates"`
	}{Offset: offset, Timeout: timeoutSec, AllowedUpdates: []string{"message"}}

	result, err := c.telegramDo(ctx, "getUpdates", req)
	if err != nil {
		return nil, errors.Wrap(err, "TelegramGetUpdates: error getting updates")
	}
	var updates []TelegramUpdate
	if err = json.Unmarshal(result, &updates); err != nil {
		return nil, errors.Wrapf(err, "TelegramGetUpdates: error unmarshalling updates: %s", result)
	}
	return updates, nil
}

func (c Client) TelegramSetMyCommands(ctx context.Context, commands []TelegramBotCommand) error {
	req := struct {
		Commands []TelegramBotCommand `json:"commands"`
	}{Commands: commands}

	_, err := c.telegramDo(ctx, "setMyCommands", req)
	return errors.Wrapf(err, "TelegramSetMyCommands: error setting %d commands", len(commands))
}
