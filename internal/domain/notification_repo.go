package domain

import "context"

// NotificationRepository интерфейс для работы с уведомлениями в базе данных.
type NotificationRepository interface {
	// FindByIDAndUser получает уведомление пользователя по ID
	FindByIDAndUser(ctx context.Context, id, userID int64) (*Notification, error)
	// Create сохраняет новое уведомление и заполняет его ID
	Create(ctx context.Context, n *Notification) error
	// Update обновляет существующее уведомление
	Update(ctx context.Context, n *Notification) error
	// Delete удаляет уведомление вместе со связями с мониторами
	Delete(ctx context.Context, n *Notification) error
	// ListByUser получает все уведомления пользователя
	ListByUser(ctx context.Context, userID int64) ([]Notification, error)
	// ListMonitorIDsByUser получает ID всех мониторов пользователя
	ListMonitorIDsByUser(ctx context.Context, userID int64) ([]int64, error)
	// HasMonitorNotification проверяет наличие связи монитора и уведомления
	HasMonitorNotification(ctx context.Context, monitorID, notificationID int64) (bool, error)
	// CreateMonitorNotification создает связь монитора и уведомления
	CreateMonitorNotification(ctx context.Context, monitorID, notificationID int64) error
	// ListActiveByMonitor получает активные уведомления, привязанные к монитору
	ListActiveByMonitor(ctx context.Context, monitorID int64) ([]Notification, error)
}
