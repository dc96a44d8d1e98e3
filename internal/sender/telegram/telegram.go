package telegram

import (
	"context"
	"net/http"
	"time"

	"MonitorNotify/internal/domain"
	"github.com/wb-go/wbf/zlog"
	tele "gopkg.in/telebot.v4"
)

// Name тип уведомления.
const Name = "telegram"

// DefaultAPIURL адрес Telegram Bot API.
const DefaultAPIURL = "https://api.telegram.org"

// chatRecipient позволяет передавать как числовой chat id, так и @username канала.
type chatRecipient string

func (c chatRecipient) Recipient() string {
	return string(c)
}

// Provider отправляет уведомления через Telegram бота.
type Provider struct {
	APIURL string
	Client *http.Client
}

// New создает провайдер с таймаутом запросов к API.
func New(apiURL string, timeout time.Duration) *Provider {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Provider{APIURL: apiURL, Client: &http.Client{Timeout: timeout}}
}

func (p *Provider) Name() string { return Name }

// Send отправляет сообщение в чат telegramChatID от имени бота telegramBotToken.
func (p *Provider) Send(ctx context.Context, cfg domain.NotificationConfig, msg string,
	_ *domain.MonitorInfo, _ *domain.Heartbeat) (string, error) {
	token := cfg.String("telegramBotToken")
	if token == "" {
		return "", &domain.MissingFieldError{Field: "telegramBotToken"}
	}
	chatID := cfg.String("telegramChatID")
	if chatID == "" {
		return "", &domain.MissingFieldError{Field: "telegramChatID"}
	}

	// Offline: не запрашиваем getMe при создании бота, токен проверит sendMessage.
	bot, err := tele.NewBot(tele.Settings{
		URL:     p.APIURL,
		Token:   token,
		Client:  p.Client,
		Offline: true,
	})
	if err != nil {
		return "", &domain.ProviderError{Provider: Name, Err: err}
	}

	opts := &tele.SendOptions{
		DisableNotification: cfg.Bool("telegramSendSilently"),
		Protected:           cfg.Bool("telegramProtectContent"),
	}

	done := make(chan error, 1)
	go func() {
		_, err := bot.Send(chatRecipient(chatID), msg, opts)
		done <- err
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case err := <-done:
		if err != nil {
			zlog.Logger.Debug().Err(err).Str("chat_id", chatID).Msg("telegram send failed")
			return "", &domain.ProviderError{Provider: Name, Err: err}
		}
	}

	return domain.SentSuccessfully, nil
}
