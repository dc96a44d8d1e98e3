package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// Notification представляет сохраненную настройку уведомления пользователя.
type Notification struct {
	bun.BaseModel `bun:"table:notification,alias:n"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	Name      string    `bun:"name,notnull" json:"name"`
	UserID    int64     `bun:"user_id,notnull" json:"user_id"`
	Config    string    `bun:"config" json:"config"`
	IsDefault bool      `bun:"is_default,notnull" json:"is_default"`
	Active    bool      `bun:"active,notnull" json:"active"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

// MonitorNotification связь монитора и уведомления.
type MonitorNotification struct {
	bun.BaseModel `bun:"table:monitor_notification,alias:mn"`

	ID             int64 `bun:"id,pk,autoincrement"`
	MonitorID      int64 `bun:"monitor_id,notnull"`
	NotificationID int64 `bun:"notification_id,notnull"`
}

// NotificationConfig форма уведомления в том виде, в котором ее прислал пользователь.
// Хранится целиком в колонке config.
type NotificationConfig map[string]interface{}

// Type возвращает тип провайдера.
func (c NotificationConfig) Type() string {
	return c.String("type")
}

// Name возвращает имя уведомления.
func (c NotificationConfig) Name() string {
	return c.String("name")
}

// IsDefault включено ли уведомление по умолчанию для новых мониторов.
func (c NotificationConfig) IsDefault() bool {
	return c.Bool("isDefault")
}

// ApplyExisting нужно ли применить уведомление ко всем существующим мониторам.
func (c NotificationConfig) ApplyExisting() bool {
	return c.Bool("applyExisting")
}

// String возвращает строковое значение ключа, числа приводятся к строке.
func (c NotificationConfig) String(key string) string {
	switch v := c[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return ""
	}
}

// Int возвращает целое значение ключа или def, если значение отсутствует или некорректно.
func (c NotificationConfig) Int(key string, def int) int {
	switch v := c[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

// Bool возвращает логическое значение ключа, отсутствующий ключ равен false.
func (c NotificationConfig) Bool(key string) bool {
	switch v := c[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	case float64:
		return v != 0
	default:
		return false
	}
}

// MonitorInfo данные монитора, передаваемые провайдеру для up/down сообщений.
type MonitorInfo struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
	Type string `json:"type,omitempty"`
}

// HeartbeatStatus состояние монитора на момент проверки.
type HeartbeatStatus int

const (
	StatusDown    HeartbeatStatus = 0
	StatusUp      HeartbeatStatus = 1
	StatusPending HeartbeatStatus = 2
)

// String возвращает строковое представление статуса.
func (s HeartbeatStatus) String() string {
	switch s {
	case StatusDown:
		return "down"
	case StatusUp:
		return "up"
	case StatusPending:
		return "pending"
	default:
		return "unknown"
	}
}

// Heartbeat результат проверки монитора.
type Heartbeat struct {
	MonitorID int64           `json:"monitorID"`
	Status    HeartbeatStatus `json:"status"`
	Msg       string          `json:"msg"`
	Time      time.Time       `json:"time"`
	Ping      *int            `json:"ping,omitempty"`
}

// AlertEvent сообщение из очереди о смене состояния монитора.
type AlertEvent struct {
	MonitorID int64        `json:"monitor_id"`
	Msg       string       `json:"msg"`
	Monitor   *MonitorInfo `json:"monitor,omitempty"`
	Heartbeat *Heartbeat   `json:"heartbeat,omitempty"`
}
