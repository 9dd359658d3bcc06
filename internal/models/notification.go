package models

import "time"

// Типы событий, о которых ядро уведомляет пользователей.
const (
	EventConnectionRequest      = "connection_request"
	EventAdminConnectionRequest = "admin_connection_request"
	EventRequestAccepted        = "request_accepted"
	EventRequestRejected        = "request_rejected"
	EventRequestExpired         = "request_expired"
)

// Notification — запись уведомления пользователю. Доставка асинхронная:
// ядро создаёт запись и публикует сообщение в очередь, не дожидаясь результата.
type Notification struct {
	ID        int
	UserUID   string
	Type      string
	Title     string
	Message   string
	Payload   map[string]any
	IsRead    bool
	CreatedAt time.Time
}

// NotificationMessage — сообщение, публикуемое в RabbitMQ для сервиса доставки.
type NotificationMessage struct {
	UserUID string `json:"user_uid"`
	Email   string `json:"email"`
	Type    string `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`
}
