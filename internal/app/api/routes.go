package api

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/online-learning/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/online-learning/internal/http/handlers/auth/refresh"
	"github.com/magabrotheeeer/online-learning/internal/http/handlers/auth/register"
	coursecreate "github.com/magabrotheeeer/online-learning/internal/http/handlers/course/create"
	courselist "github.com/magabrotheeeer/online-learning/internal/http/handlers/course/list"
	courseread "github.com/magabrotheeeer/online-learning/internal/http/handlers/course/read"
	courseremove "github.com/magabrotheeeer/online-learning/internal/http/handlers/course/remove"
	"github.com/magabrotheeeer/online-learning/internal/http/handlers/course/subscribe"
	courseupdate "github.com/magabrotheeeer/online-learning/internal/http/handlers/course/update"
	"github.com/magabrotheeeer/online-learning/internal/http/handlers/health"
	lessoncreate "github.com/magabrotheeeer/online-learning/internal/http/handlers/lesson/create"
	lessonlist "github.com/magabrotheeeer/online-learning/internal/http/handlers/lesson/list"
	lessonread "github.com/magabrotheeeer/online-learning/internal/http/handlers/lesson/read"
	lessonremove "github.com/magabrotheeeer/online-learning/internal/http/handlers/lesson/remove"
	lessonupdate "github.com/magabrotheeeer/online-learning/internal/http/handlers/lesson/update"
	"github.com/magabrotheeeer/online-learning/internal/http/handlers/payment/checkout"
	paymentlist "github.com/magabrotheeeer/online-learning/internal/http/handlers/payment/list"
	paymentstatus "github.com/magabrotheeeer/online-learning/internal/http/handlers/payment/status"
	userlist "github.com/magabrotheeeer/online-learning/internal/http/handlers/user/list"
	userread "github.com/magabrotheeeer/online-learning/internal/http/handlers/user/read"
	userremove "github.com/magabrotheeeer/online-learning/internal/http/handlers/user/remove"
	userupdate "github.com/magabrotheeeer/online-learning/internal/http/handlers/user/update"
	"github.com/magabrotheeeer/online-learning/internal/http/middlewarectx"
	authservice "github.com/magabrotheeeer/online-learning/internal/services/auth"
	courseservice "github.com/magabrotheeeer/online-learning/internal/services/course"
	lessonservice "github.com/magabrotheeeer/online-learning/internal/services/lesson"
	paymentservice "github.com/magabrotheeeer/online-learning/internal/services/payment"
	subscriptionservice "github.com/magabrotheeeer/online-learning/internal/services/subscription"
	userservice "github.com/magabrotheeeer/online-learning/internal/services/user"
)

// Services сервисы, которые обслуживают маршруты API.
type Services struct {
	Auth         *authservice.Service
	Courses      *courseservice.Service
	Lessons      *lessonservice.Service
	Subscription *subscriptionservice.Service
	Users        *userservice.Service
	Payments     *paymentservice.Service
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, svc Services, limiter *middlewarectx.RateLimiter, db health.Pinger) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middlewarectx.MetricsMiddleware,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/auth/register", register.New(logger, svc.Auth).ServeHTTP)
		r.Post("/auth/token", login.New(logger, svc.Auth).ServeHTTP)
		r.Post("/auth/token/refresh", refresh.New(logger, svc.Auth).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(svc.Auth, logger))
			r.Use(middlewarectx.RateLimitMiddleware(limiter, logger))

			r.Get("/courses", courselist.New(logger, svc.Courses).ServeHTTP)
			r.Post("/courses", coursecreate.New(logger, svc.Courses).ServeHTTP)
			r.Get("/courses/{id}", courseread.New(logger, svc.Courses).ServeHTTP)
			r.Put("/courses/{id}", courseupdate.New(logger, svc.Courses).ServeHTTP)
			r.Patch("/courses/{id}", courseupdate.NewPartial(logger, svc.Courses).ServeHTTP)
			r.Delete("/courses/{id}", courseremove.New(logger, svc.Courses).ServeHTTP)
			r.Post("/courses/{id}/subscribe", subscribe.New(logger, svc.Subscription).ServeHTTP)

			r.Get("/lessons", lessonlist.New(logger, svc.Lessons).ServeHTTP)
			r.Post("/lessons", lessoncreate.New(logger, svc.Lessons).ServeHTTP)
			r.Get("/lessons/{id}", lessonread.New(logger, svc.Lessons).ServeHTTP)
			r.Put("/lessons/{id}", lessonupdate.New(logger, svc.Lessons).ServeHTTP)
			r.Patch("/lessons/{id}", lessonupdate.NewPartial(logger, svc.Lessons).ServeHTTP)
			r.Delete("/lessons/{id}", lessonremove.New(logger, svc.Lessons).ServeHTTP)

			r.Get("/users", userlist.New(logger, svc.Users).ServeHTTP)
			r.Get("/users/{id}", userread.New(logger, svc.Users).ServeHTTP)
			r.Put("/users/{id}", userupdate.New(logger, svc.Users).ServeHTTP)
			r.Patch("/users/{id}", userupdate.NewPartial(logger, svc.Users).ServeHTTP)
			r.Delete("/users/{id}", userremove.New(logger, svc.Users).ServeHTTP)

			r.Get("/payments", paymentlist.New(logger, svc.Payments).ServeHTTP)
			r.Post("/payments/checkout", checkout.New(logger, svc.Payments).ServeHTTP)
			r.Get("/payments/{id}/status", paymentstatus.New(logger, svc.Payments).ServeHTTP)
		})
	})

	r.Get("/healthz", health.New(logger, db).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
