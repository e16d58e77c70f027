// Package metrics регистрирует Prometheus метрики HTTP API и фоновых задач.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Результаты операций для label result.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

var (
	// HTTPRequestsTotal число HTTP запросов по методу, маршруту и статусу.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests.",
	}, []string{"method", "route", "status"})

	// HTTPRequestDuration длительность обработки HTTP запросов.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// NotificationsEnqueued число поставленных в очередь рассылок об обновлении курса.
	NotificationsEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lms_notifications_enqueued_total",
		Help: "Course update notifications enqueued.",
	})

	// NotificationsSent число попыток отправки писем подписчикам.
	NotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lms_notifications_sent_total",
		Help: "Course update notification e-mails by result.",
	}, []string{"result"})

	// CheckoutSessions число попыток создания сессий оплаты.
	CheckoutSessions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lms_checkout_sessions_total",
		Help: "Checkout sessions created at the payment provider by result.",
	}, []string{"result"})

	// UsersDeactivated число деактивированных неактивных пользователей.
	UsersDeactivated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lms_users_deactivated_total",
		Help: "Users deactivated by the inactivity sweep.",
	})
)

// Result возвращает значение label result по ошибке.
func Result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}
