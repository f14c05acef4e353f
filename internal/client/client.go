package client

import (
	"context"
	"io"
	"net/http"

	"github.com/go-redis/redis/v9"
	"github.com/sony/gobreaker"
)

type Client struct {
	*http.Client
	BotToken      string
	TelegramBase  string // empty means the real Telegram API
	EngineURL     string
	Redis         *redis.Client
	EngineBreaker *gobreaker.CircuitBreaker
	Logger        logger
}

type logger interface {
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Errorf(format string, v ...any)
}

func newRequest(ctx context.Context, method string, url string, body io.Reader) (*http.Request, error) {
	r, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	r.Header.Set("Accept", "application/json")
	return r, nil
}
