package domain

import "context"

// SentSuccessfully стандартный ответ провайдера при успешной отправке.
const SentSuccessfully = "Sent Successfully."

// Provider интерфейс провайдера уведомлений (telegram, smtp, webhook ...).
type Provider interface {
	// Name уникальное имя провайдера, совпадает с полем type конфигурации.
	Name() string
	// Send отправляет сообщение. monitor и heartbeat заполнены только для up/down событий.
	Send(ctx context.Context, cfg NotificationConfig, msg string, monitor *MonitorInfo, heartbeat *Heartbeat) (string, error)
}
