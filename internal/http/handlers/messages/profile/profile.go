// Package profile содержит обработчик публичного профиля пользователя.
package profile

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/mystery-message/internal/http/response"
	"github.com/magabrotheeeer/mystery-message/internal/models"
)

// Response содержит публичные данные пользователя.
type Response struct {
	response.Response
	Username            string `json:"username"`
	IsAcceptingMessages bool   `json:"isAcceptingMessages"`
}

// Service возвращает публичный профиль.
type Service interface {
	Profile(ctx context.Context, username string) (*models.Profile, error)
}

// Handler обрабатывает GET /api/u/{username}.
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

// ServeHTTP возвращает публичный профиль.
// @Summary Публичный профиль
// @Description Данные для страницы отправки анонимного сообщения.
// @Tags Messages
// @Produce  json
// @Param username path string true "Имя пользователя"
// @Success 200 {object} Response "Профиль"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /u/{username} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.messages.profile"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	p, err := h.service.Profile(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		response.Fail(w, r, log, err, "Error fetching user")
		return
	}

	render.JSON(w, r, Response{
		Response:            response.Response{Success: true},
		Username:            p.Username,
		IsAcceptingMessages: p.IsAcceptingMessages,
	})
}
