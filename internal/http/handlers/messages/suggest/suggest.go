// Package suggest содержит обработчик подсказок для анонимных сообщений.
package suggest

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/mystery-message/internal/http/response"
)

// Response содержит вопросы, разделённые "||".
type Response struct {
	response.Response
	Suggestions string `json:"suggestions" example:"What's a hobby you've recently started?||What's your favorite movie of all time?||What's a skill you'd love to learn?"`
}

// Service подбирает подсказки.
type Service interface {
	Suggest() string
}

// Handler обрабатывает GET /api/suggest-messages.
type Handler struct {
	service Service
}

// New создает обработчик.
func New(service Service) *Handler {
	return &Handler{service: service}
}

// ServeHTTP возвращает три вопроса-подсказки.
// @Summary Подсказки для сообщения
// @Tags Messages
// @Produce  json
// @Success 200 {object} Response "Подсказки"
// @Router /suggest-messages [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, Response{
		Response:    response.Response{Success: true},
		Suggestions: h.service.Suggest(),
	})
}
