// Package mysterymessage собирает HTTP API сервиса анонимных сообщений.
package mysterymessage

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/mystery-message/internal/http/handlers/auth/signin"
	"github.com/magabrotheeeer/mystery-message/internal/http/handlers/auth/signout"
	"github.com/magabrotheeeer/mystery-message/internal/http/handlers/auth/signup"
	"github.com/magabrotheeeer/mystery-message/internal/http/handlers/auth/usernameunique"
	"github.com/magabrotheeeer/mystery-message/internal/http/handlers/auth/verify"
	"github.com/magabrotheeeer/mystery-message/internal/http/handlers/health"
	"github.com/magabrotheeeer/mystery-message/internal/http/handlers/messages/accept"
	"github.com/magabrotheeeer/mystery-message/internal/http/handlers/messages/acceptstatus"
	"github.com/magabrotheeeer/mystery-message/internal/http/handlers/messages/list"
	"github.com/magabrotheeeer/mystery-message/internal/http/handlers/messages/profile"
	"github.com/magabrotheeeer/mystery-message/internal/http/handlers/messages/remove"
	"github.com/magabrotheeeer/mystery-message/internal/http/handlers/messages/send"
	"github.com/magabrotheeeer/mystery-message/internal/http/handlers/messages/suggest"
	"github.com/magabrotheeeer/mystery-message/internal/http/middlewarectx"
	"github.com/magabrotheeeer/mystery-message/internal/metrics"
	authservice "github.com/magabrotheeeer/mystery-message/internal/services/auth"
	messageservice "github.com/magabrotheeeer/mystery-message/internal/services/messages"
)

// Deps содержит зависимости, из которых собираются маршруты.
// LookupLimiter ограничивает проверку имени отдельно от пишущих ручек.
type Deps struct {
	Logger        *slog.Logger
	Auth          *authservice.Service
	Messages      *messageservice.Service
	Limiter       *middlewarectx.IPRateLimiter
	LookupLimiter *middlewarectx.IPRateLimiter
	Metrics       *metrics.Metrics
	DB            health.Pinger
	TokenTTL      time.Duration
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, d Deps) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		d.Metrics.Middleware,
	)

	r.Route("/api", func(r chi.Router) {
		// Открытые ручки, которые пишут в базу или шлют письма, ограничены по IP
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(d.Logger, d.Limiter))
			r.Post("/sign-up", signup.New(d.Logger, d.Auth).ServeHTTP)
			r.Post("/sign-in", signin.New(d.Logger, d.Auth, d.TokenTTL).ServeHTTP)
			r.Post("/verify-code", verify.New(d.Logger, d.Auth).ServeHTTP)
			r.Post("/send-message", send.New(d.Logger, d.Messages).ServeHTTP)
		})

		r.With(middlewarectx.RateLimitMiddleware(d.Logger, d.LookupLimiter)).
			Get("/check-username-unique", usernameunique.New(d.Logger, d.Auth).ServeHTTP)

		r.Get("/suggest-messages", suggest.New(d.Messages).ServeHTTP)
		r.Get("/u/{username}", profile.New(d.Logger, d.Messages).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(d.Auth, d.Logger))
			r.Post("/sign-out", signout.New(d.Logger, d.Auth).ServeHTTP)
			r.Get("/accept-messages", acceptstatus.New(d.Logger, d.Messages).ServeHTTP)
			r.Post("/accept-messages", accept.New(d.Logger, d.Messages).ServeHTTP)
			r.Get("/get-messages", list.New(d.Logger, d.Messages).ServeHTTP)
			r.Delete("/delete-message/{id}", remove.New(d.Logger, d.Messages).ServeHTTP)
		})
	})

	r.Get("/health", health.New(d.Logger, d.DB).ServeHTTP)
	r.Handle("/metrics", d.Metrics.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
