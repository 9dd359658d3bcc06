package rabbitmq

// NotificationsExchange — имя exchange для событий ядра.
const NotificationsExchange = "notifications"

// Маршрутные ключи событий.
const (
	// RoutingKeyUser — уведомления, доставляемые пользователю по e-mail.
	RoutingKeyUser = "user"
)

// QueueConfig связывает очередь с маршрутным ключом.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetNotificationQueues возвращает очереди, которые обслуживает notification-sender.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "notification.user", RoutingKey: RoutingKeyUser},
	}
}
