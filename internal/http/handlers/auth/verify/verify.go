// Package verify содержит обработчик подтверждения почты кодом.
package verify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/mystery-message/internal/http/response"
	"github.com/magabrotheeeer/mystery-message/internal/lib/sl"
)

// Request содержит имя пользователя и код из письма.
type Request struct {
	Username string `json:"username" validate:"required"`
	Code     string `json:"code" validate:"required,numeric,len=6"`
}

// Service проверяет код подтверждения.
type Service interface {
	VerifyCode(ctx context.Context, username, code string) error
}

// Handler обрабатывает POST /api/verify-code.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает обработчик подтверждения.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP обрабатывает запрос на подтверждение почты.
// @Summary Подтверждение почты
// @Description Проверяет шестизначный код. Истекший код отклоняется даже при совпадении.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Имя пользователя и код"
// @Success 200 {object} response.Response "Аккаунт подтвержден"
// @Failure 400 {object} response.ErrorResponse "Неверный или истекший код"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /verify-code [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.verify"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		errors.As(err, &verrs)
		log.Info("validation failed", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(verrs))
		return
	}

	if err := h.service.VerifyCode(r.Context(), req.Username, req.Code); err != nil {
		response.Fail(w, r, log, err, "Error verifying user")
		return
	}

	render.JSON(w, r, response.OK("Account verified successfully"))
}
