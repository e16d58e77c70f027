package rabbitmq

import "github.com/magabrotheeeer/online-learning/internal/models"

// Exchange имя exchange для фоновых задач.
const Exchange = "lms.tasks"

// Prefetch число неподтверждённых сообщений на канал и предел
// одновременно обрабатываемых сообщений одной очереди.
const Prefetch = 10

// Очереди задач.
const (
	QueueCourseUpdate       = "tasks.course_update"
	QueueDeactivateInactive = "tasks.deactivate_inactive"
)

// QueueConfig очередь и ключ маршрутизации, по которому она привязана к exchange.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetTaskQueues возвращает очереди фоновых задач.
func GetTaskQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: QueueCourseUpdate, RoutingKey: models.JobCourseUpdate},
		{QueueName: QueueDeactivateInactive, RoutingKey: models.JobDeactivateInactive},
	}
}
