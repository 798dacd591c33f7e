package rabbitmq

const (
	ExchangeNotifications = "notifications"

	QueueCourseUpdated      = "notification.course_updated"
	RoutingKeyCourseUpdated = "course_updated"

	// PrefetchCount ограничивает число неподтверждённых сообщений на канал.
	PrefetchCount = 10
)

// QueueConfig описывает очередь и ключ маршрутизации в обменнике notifications.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetNotificationQueues возвращает очереди почтовых рассылок.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: QueueCourseUpdated, RoutingKey: RoutingKeyCourseUpdated},
	}
}
