package sender

import (
	"time"

	"MonitorNotify/internal/sender/apprise"
	emailsender "MonitorNotify/internal/sender/email"
	"MonitorNotify/internal/sender/telegram"
	"MonitorNotify/internal/sender/webhook"
)

// Options параметры встроенных провайдеров.
type Options struct {
	Timeout        time.Duration
	TelegramAPIURL string
	AppriseBinary  string
}

// Default создает реестр со всеми встроенными провайдерами.
func Default(opts Options) (*Registry, error) {
	return NewRegistry(
		telegram.New(opts.TelegramAPIURL, opts.Timeout),
		emailsender.NewSMTPSender(opts.Timeout),
		webhook.NewWebhook(opts.Timeout),
		webhook.NewDiscord(opts.Timeout),
		webhook.NewSlack(opts.Timeout),
		webhook.NewGotify(opts.Timeout),
		webhook.NewPushover(opts.Timeout),
		apprise.New(opts.AppriseBinary),
	)
}
