package domain

import "context"

// NotificationListCache кэш списка уведомлений пользователя.
type NotificationListCache interface {
	// Get возвращает список из кэша, ok=false при промахе
	Get(ctx context.Context, userID int64) (list []Notification, ok bool, err error)
	// Set сохраняет список в кэш
	Set(ctx context.Context, userID int64, list []Notification) error
	// Invalidate удаляет список пользователя из кэша
	Invalidate(ctx context.Context, userID int64) error
}
