// Package list содержит обработчик получения сообщений владельца.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/mystery-message/internal/http/middlewarectx"
	"github.com/magabrotheeeer/mystery-message/internal/http/response"
	"github.com/magabrotheeeer/mystery-message/internal/lib/apperr"
	"github.com/magabrotheeeer/mystery-message/internal/models"
)

// Response содержит сообщения в порядке поступления.
type Response struct {
	response.Response
	Messages []models.Message `json:"messages"`
}

// Service возвращает сообщения владельца.
type Service interface {
	List(ctx context.Context, principal models.Principal) ([]models.Message, error)
}

// Handler обрабатывает GET /api/get-messages.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает обработчик.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP возвращает все сообщения текущего пользователя.
// @Summary Список сообщений
// @Tags Messages
// @Produce  json
// @Success 200 {object} Response "Сообщения"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /get-messages [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.messages.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	principal, ok := middlewarectx.PrincipalFrom(r.Context())
	if !ok {
		response.Fail(w, r, log, apperr.ErrNotAuthenticated, "Not authenticated")
		return
	}

	messages, err := h.service.List(r.Context(), principal)
	if err != nil {
		response.Fail(w, r, log, err, "Error fetching messages")
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}

	log.Debug("messages listed", slog.Int("count", len(messages)))
	render.JSON(w, r, Response{
		Response: response.Response{Success: true},
		Messages: messages,
	})
}
