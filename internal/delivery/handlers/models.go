package handlers

import (
	"encoding/json"
	"time"

	"MonitorNotify/internal/domain"
)

// SaveRequest тело запроса на создание/изменение уведомления.
// Кроме name и type форма содержит поля выбранного провайдера.
type SaveRequest struct {
	Name string `json:"name" validate:"required,max=255"`
	Type string `json:"type" validate:"required"`
}

// NotificationResponse уведомление в ответе API, config раскрыт в объект.
type NotificationResponse struct {
	ID        int64                     `json:"id"`
	Name      string                    `json:"name"`
	UserID    int64                     `json:"user_id"`
	Config    domain.NotificationConfig `json:"config"`
	IsDefault bool                      `json:"is_default"`
	Active    bool                      `json:"active"`
	CreatedAt time.Time                 `json:"created_at"`
}

// ApplyResponse результат привязки уведомления к мониторам.
type ApplyResponse struct {
	NotificationID int64 `json:"notification_id"`
	Applied        bool  `json:"applied"`
}

// AppriseResponse наличие apprise на сервере.
type AppriseResponse struct {
	Installed bool `json:"installed"`
}

func toResponse(n *domain.Notification) NotificationResponse {
	cfg := domain.NotificationConfig{}
	if n.Config != "" {
		_ = json.Unmarshal([]byte(n.Config), &cfg)
	}
	return NotificationResponse{
		ID:        n.ID,
		Name:      n.Name,
		UserID:    n.UserID,
		Config:    cfg,
		IsDefault: n.IsDefault,
		Active:    n.Active,
		CreatedAt: n.CreatedAt,
	}
}

func toResponseList(list []domain.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(list))
	for i := range list {
		out = append(out, toResponse(&list[i]))
	}
	return out
}
