package rabbitmq

const (
	// Exchange задаёт direct-exchange для уведомлений.
	Exchange = "notifications"

	// VerificationQueue задаёт очередь писем с кодом подтверждения.
	VerificationQueue = "verification.email"
	// VerificationRoutingKey задаёт ключ маршрутизации писем с кодом подтверждения.
	VerificationRoutingKey = "verification"

	prefetchCount = 10
)

// QueueConfig описывает очередь и её ключ маршрутизации.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetNotificationQueues возвращает очереди, которые объявляются при старте.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: VerificationQueue, RoutingKey: VerificationRoutingKey},
	}
}
