package domain

import "context"

// NotificationService интерфейс для работы с уведомлениями.
type NotificationService interface {
	// Send отправляет сообщение через провайдера, указанного в конфигурации
	Send(ctx context.Context, cfg NotificationConfig, msg string, monitor *MonitorInfo, heartbeat *Heartbeat) (string, error)
	// Save создает (notificationID == 0) или обновляет уведомление пользователя
	Save(ctx context.Context, cfg NotificationConfig, notificationID, userID int64) (*Notification, error)
	// Delete удаляет уведомление пользователя
	Delete(ctx context.Context, notificationID, userID int64) error
	// Get получает уведомление пользователя
	Get(ctx context.Context, notificationID, userID int64) (*Notification, error)
	// List получает все уведомления пользователя
	List(ctx context.Context, userID int64) ([]Notification, error)
	// ApplyToEveryMonitor привязывает уведомление ко всем мониторам пользователя
	ApplyToEveryMonitor(ctx context.Context, notificationID, userID int64) error
	// Test отправляет тестовое сообщение
	Test(ctx context.Context, cfg NotificationConfig) (string, error)
	// SendMonitorAlert рассылает событие монитора по всем его уведомлениям
	SendMonitorAlert(ctx context.Context, event AlertEvent) (int, error)
	// CheckApprise проверяет наличие apprise
	CheckApprise() bool
}
