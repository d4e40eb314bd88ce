// Package usernameunique содержит обработчик проверки доступности имени пользователя.
package usernameunique

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/mystery-message/internal/http/response"
	"github.com/magabrotheeeer/mystery-message/internal/lib/sl"
)

// Query описывает параметры запроса.
type Query struct {
	Username string `validate:"required,alphanum,min=3,max=20"`
}

// Service проверяет, свободно ли имя.
type Service interface {
	IsUsernameUnique(ctx context.Context, username string) error
}

// Handler обрабатывает GET /api/check-username-unique.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает обработчик проверки имени.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP обрабатывает запрос проверки имени.
// @Summary Проверка имени пользователя
// @Description Сообщает, может ли имя быть использовано при регистрации.
// @Tags Auth
// @Produce  json
// @Param username query string true "Имя пользователя"
// @Success 200 {object} response.Response "Имя свободно"
// @Failure 400 {object} response.ErrorResponse "Имя занято или некорректно"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /check-username-unique [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.usernameunique"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	q := Query{Username: r.URL.Query().Get("username")}
	if err := h.validate.Struct(q); err != nil {
		var verrs validator.ValidationErrors
		errors.As(err, &verrs)
		log.Info("validation failed", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(verrs))
		return
	}

	if err := h.service.IsUsernameUnique(r.Context(), q.Username); err != nil {
		response.Fail(w, r, log, err, "Error checking username")
		return
	}

	render.JSON(w, r, response.OK("Username is unique"))
}
