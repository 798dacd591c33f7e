// Package lmsapi собирает HTTP API платформы: маршруты, middleware и сервер.
package lmsapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/lms-platform/internal/http/handlers/auth/refresh"
	"github.com/magabrotheeeer/lms-platform/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/lms-platform/internal/http/handlers/auth/token"
	"github.com/magabrotheeeer/lms-platform/internal/http/handlers/course/coursecreate"
	"github.com/magabrotheeeer/lms-platform/internal/http/handlers/course/courselist"
	"github.com/magabrotheeeer/lms-platform/internal/http/handlers/course/courseread"
	"github.com/magabrotheeeer/lms-platform/internal/http/handlers/course/courseremove"
	"github.com/magabrotheeeer/lms-platform/internal/http/handlers/course/courseupdate"
	"github.com/magabrotheeeer/lms-platform/internal/http/handlers/health"
	"github.com/magabrotheeeer/lms-platform/internal/http/handlers/lesson/lessoncreate"
	"github.com/magabrotheeeer/lms-platform/internal/http/handlers/lesson/lessonlist"
	"github.com/magabrotheeeer/lms-platform/internal/http/handlers/lesson/lessonread"
	"github.com/magabrotheeeer/lms-platform/internal/http/handlers/lesson/lessonremove"
	"github.com/magabrotheeeer/lms-platform/internal/http/handlers/lesson/lessonupdate"
	"github.com/magabrotheeeer/lms-platform/internal/http/handlers/payment/checkstatus"
	"github.com/magabrotheeeer/lms-platform/internal/http/handlers/payment/gatewaycreate"
	"github.com/magabrotheeeer/lms-platform/internal/http/handlers/payment/manualcreate"
	"github.com/magabrotheeeer/lms-platform/internal/http/handlers/payment/paymentlist"
	"github.com/magabrotheeeer/lms-platform/internal/http/handlers/payment/paymentread"
	"github.com/magabrotheeeer/lms-platform/internal/http/handlers/subscription/toggle"
	"github.com/magabrotheeeer/lms-platform/internal/http/handlers/users/me"
	"github.com/magabrotheeeer/lms-platform/internal/http/handlers/users/userlist"
	"github.com/magabrotheeeer/lms-platform/internal/http/handlers/users/userread"
	"github.com/magabrotheeeer/lms-platform/internal/http/handlers/users/userupdate"
	"github.com/magabrotheeeer/lms-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/lms-platform/internal/metrics"
	authservice "github.com/magabrotheeeer/lms-platform/internal/services/auth"
	courseservice "github.com/magabrotheeeer/lms-platform/internal/services/course"
	paymentservice "github.com/magabrotheeeer/lms-platform/internal/services/payment"
	subscriptionservice "github.com/magabrotheeeer/lms-platform/internal/services/subscription"
	usersservice "github.com/magabrotheeeer/lms-platform/internal/services/users"
)

// Deps: зависимости маршрутов API.
type Deps struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	Limiter        *middlewarectx.RateLimiter
	Auth           *authservice.AuthService
	Courses        *courseservice.Service
	Payments       *paymentservice.Service
	Subscription   *subscriptionservice.Service
	Users          *usersservice.Service
	CheckoutURLs   paymentservice.CheckoutURLs
	Health         map[string]health.Pinger
	MetricsHandler http.Handler
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, d Deps) {
	logger := d.Logger

	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		d.Metrics.Middleware,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(d.Limiter.Middleware)

		// Открытые конечные точки
		r.Post("/auth/register", register.New(logger, d.Auth).ServeHTTP)
		r.Post("/auth/token", token.New(logger, d.Auth).ServeHTTP)
		r.Post("/auth/token/refresh", refresh.New(logger, d.Auth).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(d.Auth, logger))

			r.Get("/users", userlist.New(logger, d.Users).ServeHTTP)
			r.Get("/users/me", me.New(logger, d.Users).ServeHTTP)
			r.Get("/users/{id}", userread.New(logger, d.Users).ServeHTTP)
			r.Patch("/users/{id}", userupdate.New(logger, d.Users).ServeHTTP)

			r.Get("/courses", courselist.New(logger, d.Courses).ServeHTTP)
			r.Post("/courses", coursecreate.New(logger, d.Courses).ServeHTTP)
			r.Get("/courses/{id}", courseread.New(logger, d.Courses).ServeHTTP)
			r.Put("/courses/{id}", courseupdate.New(logger, d.Courses).ServeHTTP)
			r.Patch("/courses/{id}", courseupdate.NewPartial(logger, d.Courses).ServeHTTP)
			r.Delete("/courses/{id}", courseremove.New(logger, d.Courses).ServeHTTP)

			r.Get("/lessons", lessonlist.New(logger, d.Courses).ServeHTTP)
			r.Post("/lessons", lessoncreate.New(logger, d.Courses).ServeHTTP)
			r.Get("/lessons/{id}", lessonread.New(logger, d.Courses).ServeHTTP)
			r.Put("/lessons/{id}", lessonupdate.New(logger, d.Courses).ServeHTTP)
			r.Patch("/lessons/{id}", lessonupdate.NewPartial(logger, d.Courses).ServeHTTP)
			r.Delete("/lessons/{id}", lessonremove.New(logger, d.Courses).ServeHTTP)

			r.Post("/subscriptions", toggle.New(logger, d.Subscription).ServeHTTP)

			r.Get("/payments", paymentlist.New(logger, d.Payments).ServeHTTP)
			r.Post("/payments", manualcreate.New(logger, d.Payments).ServeHTTP)
			r.Post("/payments/create-gateway-payment", gatewaycreate.New(logger, d.Payments, d.CheckoutURLs).ServeHTTP)
			r.Get("/payments/{id}", paymentread.New(logger, d.Payments).ServeHTTP)
			r.Get("/payments/{id}/check-status", checkstatus.New(logger, d.Payments).ServeHTTP)
		})
	})

	r.Get("/health", health.New(logger, d.Health).ServeHTTP)
	if d.MetricsHandler == nil {
		d.MetricsHandler = promhttp.Handler()
	}
	r.Handle("/metrics", d.MetricsHandler)
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
