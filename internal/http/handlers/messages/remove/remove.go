// Package remove содержит обработчик удаления сообщения владельцем.
package remove

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/mystery-message/internal/http/middlewarectx"
	"github.com/magabrotheeeer/mystery-message/internal/http/response"
	"github.com/magabrotheeeer/mystery-message/internal/lib/apperr"
	"github.com/magabrotheeeer/mystery-message/internal/models"
)

// Service удаляет сообщение владельца.
type Service interface {
	Delete(ctx context.Context, principal models.Principal, messageID string) error
}

// Handler обрабатывает DELETE /api/delete-message/{id}.
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

// ServeHTTP удаляет сообщение по id.
// @Summary Удалить сообщение
// @Tags Messages
// @Produce  json
// @Param id path string true "ID сообщения"
// @Success 200 {object} response.Response "Сообщение удалено"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Сообщение не найдено"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /delete-message/{id} [delete]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.messages.remove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	principal, ok := middlewarectx.PrincipalFrom(r.Context())
	if !ok {
		response.Fail(w, r, log, apperr.ErrNotAuthenticated, "Not authenticated")
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), principal, id); err != nil {
		response.Fail(w, r, log, err, "Error deleting message")
		return
	}

	render.JSON(w, r, response.OK("Message deleted"))
}
