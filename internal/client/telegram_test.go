package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

type noopLogger struct{}

func (noopLogger) Debugf(string, ...any) {}
func (noopLogger) Infof(string, ...any)  {}
func (noopLogger) Errorf(string, ...any) {}

func newTestClient(ts *httptest.Server) Client {
	return Client{
		Client:       ts.Client(),
		BotToken:     "TESTTOKEN",
		TelegramBase: ts.URL + "/bot",
		Logger:       noopLogger{},
	}
}

func TestTelegramSendMessage(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decoding request body: %v", err)
		}
		_, _ = w.Write([]byte(`{"ok":true,"result":{}}`))
	}))
	defer ts.Close()

	c := newTestClient(ts)
	if err := c.TelegramSendMessage(context.Background(), 101, "hello"); err != nil {
		t.Fatalf("TelegramSendMessage failed: %v", err)
	}

	if gotPath != "/botTESTTOKEN/sendMessage" {
		t.Errorf("request path = %s, want /botTESTTOKEN/sendMessage", gotPath)
	}
	if gotBody["chat_id"] != float64(101) || gotBody["text"] != "hello" {
		t.Errorf("request body = %v, want chat_id 101 and text hello", gotBody)
	}
}

func TestTelegramSendMessageAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"ok":false,"description":"Forbidden: bot was blocked by the user"}`))
	}))
	defer ts.Close()

	c := newTestClient(ts)
	if err := c.TelegramSendMessage(context.Background(), 101, "hello"); err == nil {
		t.Fatal("TelegramSendMessage succeeded on an API error response")
	}
}

func TestTelegramGetUpdates(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/botTESTTOKEN/getUpdates" {
			t.Errorf("request path = %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"ok":true,"result":[
			{"update_id":7,"message":{"message_id":1,"from":{"id":101,"first_name":"Ada"},"chat":{"id":101},"text":"/latest"}},
			{"update_id":8}
		]}`))
	}))
	defer ts.Close()

	c := newTestClient(ts)
	updates, err := c.TelegramGetUpdates(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("TelegramGetUpdates failed: %v", err)
	}
	if len(updates) != 2 {
		t.Fatalf("got %d updates, want 2", len(updates))
	}
	if updates[0].Message == nil || updates[0].Message.Text != "/latest" || updates[0].Message.From.ID != 101 {
		t.Errorf("first update decoded wrong: %+v", updates[0])
	}
	if updates[1].Message != nil {
		t.Errorf("second update should have no message: %+v", updates[1])
	}
}
