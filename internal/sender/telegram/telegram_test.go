package telegram_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"MonitorNotify/internal/domain"
	"MonitorNotify/internal/sender/telegram"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_Send(t *testing.T) {
	var path string
	var payload map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&payload)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":123,"type":"private"},"text":"down"}}`))
	}))
	defer server.Close()

	p := telegram.New(server.URL, time.Second)
	cfg := domain.NotificationConfig{
		"type":                 "telegram",
		"telegramBotToken":     "tok",
		"telegramChatID":       "123",
		"telegramSendSilently": true,
	}

	res, err := p.Send(context.Background(), cfg, "down", nil, nil)

	require.NoError(t, err)
	assert.Equal(t, domain.SentSuccessfully, res)
	assert.Equal(t, "/bottok/sendMessage", path)
	assert.Equal(t, "123", payload["chat_id"])
	assert.Equal(t, "down", payload["text"])
	assert.Equal(t, "true", payload["disable_notification"])
}

func TestProvider_Send_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
	}))
	defer server.Close()

	p := telegram.New(server.URL, time.Second)
	cfg := domain.NotificationConfig{"telegramBotToken": "tok", "telegramChatID": "1"}

	_, err := p.Send(context.Background(), cfg, "down", nil, nil)

	var perr *domain.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "telegram", perr.Provider)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestProvider_Send_MissingFields(t *testing.T) {
	p := telegram.New("http://127.0.0.1:0", time.Second)

	_, err := p.Send(context.Background(), domain.NotificationConfig{"telegramChatID": "1"}, "m", nil, nil)
	var ferr *domain.MissingFieldError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, "telegramBotToken", ferr.Field)

	_, err = p.Send(context.Background(), domain.NotificationConfig{"telegramBotToken": "t"}, "m", nil, nil)
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, "telegramChatID", ferr.Field)
}
