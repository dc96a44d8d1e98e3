package domain_test

import (
	"encoding/json"
	"errors"
	"testing"

	"MonitorNotify/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestHeartbeatStatus_String(t *testing.T) {
	tests := []struct {
		status   domain.HeartbeatStatus
		expected string
	}{
		{domain.StatusDown, "down"},
		{domain.StatusUp, "up"},
		{domain.StatusPending, "pending"},
		{domain.HeartbeatStatus(42), "unknown"},
	}

	for _, tt := range tests {
		t.Run("status_"+tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.status.String())
		})
	}
}

func TestNotificationConfig_Accessors(t *testing.T) {
	var cfg domain.NotificationConfig
	err := json.Unmarshal([]byte(`{
		"name": " My Telegram ",
		"type": "telegram",
		"isDefault": true,
		"telegramChatID": 123456,
		"smtpPort": "587",
		"gotifyPriority": 8,
		"telegramSendSilently": "true"
	}`), &cfg)
	assert.NoError(t, err)

	assert.Equal(t, "My Telegram", cfg.Name())
	assert.Equal(t, "telegram", cfg.Type())
	assert.True(t, cfg.IsDefault())
	assert.False(t, cfg.ApplyExisting())
	assert.Equal(t, "123456", cfg.String("telegramChatID"))
	assert.Equal(t, 587, cfg.Int("smtpPort", 25))
	assert.Equal(t, 8, cfg.Int("gotifyPriority", 5))
	assert.Equal(t, 5, cfg.Int("missing", 5))
	assert.True(t, cfg.Bool("telegramSendSilently"))
	assert.Equal(t, "", cfg.String("missing"))
}

func TestNotificationConfig_Empty(t *testing.T) {
	var cfg domain.NotificationConfig

	assert.Equal(t, "", cfg.Type())
	assert.False(t, cfg.IsDefault())
	assert.False(t, cfg.Bool("applyExisting"))
}

func TestProviderError_Unwrap(t *testing.T) {
	cause := errors.New("chat not found")
	err := error(&domain.ProviderError{Provider: "telegram", Err: cause})

	assert.Equal(t, "telegram: chat not found", err.Error())
	assert.ErrorIs(t, err, cause)

	var perr *domain.ProviderError
	assert.True(t, errors.As(err, &perr))
	assert.Equal(t, "telegram", perr.Provider)
}

func TestMissingFieldError(t *testing.T) {
	err := &domain.MissingFieldError{Field: "telegramBotToken"}
	assert.Equal(t, "missing required field telegramBotToken", err.Error())
}
