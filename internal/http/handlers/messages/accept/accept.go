// Package accept содержит обработчик переключения приёма сообщений.
package accept

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/mystery-message/internal/http/middlewarectx"
	"github.com/magabrotheeeer/mystery-message/internal/http/response"
	"github.com/magabrotheeeer/mystery-message/internal/lib/apperr"
	"github.com/magabrotheeeer/mystery-message/internal/lib/sl"
	"github.com/magabrotheeeer/mystery-message/internal/models"
)

// Request содержит новое значение флага.
type Request struct {
	AcceptMessages *bool `json:"acceptMessages" validate:"required"`
}

// Response описывает ответ с обновлённым пользователем.
type Response struct {
	response.Response
	UpdatedUser models.PublicUser `json:"updatedUser"`
}

// Service сохраняет флаг приёма сообщений.
type Service interface {
	SetAccepting(ctx context.Context, principal models.Principal, accepting bool) (*models.User, error)
}

// Handler обрабатывает POST /api/accept-messages.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает обработчик.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP обрабатывает запрос на изменение флага приёма сообщений.
// @Summary Включить или выключить приём сообщений
// @Tags Messages
// @Accept  json
// @Produce  json
// @Param request body Request true "Новое значение флага"
// @Success 200 {object} Response "Флаг обновлен"
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /accept-messages [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.messages.accept"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	principal, ok := middlewarectx.PrincipalFrom(r.Context())
	if !ok {
		response.Fail(w, r, log, apperr.ErrNotAuthenticated, "Not authenticated")
		return
	}

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

	user, err := h.service.SetAccepting(r.Context(), principal, *req.AcceptMessages)
	if err != nil {
		response.Fail(w, r, log, err, "Error updating message acceptance status")
		return
	}

	log.Info("message acceptance updated", slog.Bool("accepting", user.IsAcceptingMessages))
	render.JSON(w, r, Response{
		Response:    response.OK("Message acceptance status updated successfully"),
		UpdatedUser: user.Public(),
	})
}
