// Package send содержит обработчик отправки анонимного сообщения.
package send

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
	"github.com/magabrotheeeer/mystery-message/internal/models"
)

// Request содержит получателя и текст сообщения.
type Request struct {
	Username string `json:"username" validate:"required"`
	Content  string `json:"content" validate:"required,max=1000"`
}

// Response содержит созданное сообщение.
type Response struct {
	response.Response
	SentMessage models.Message `json:"sentMessage"`
}

// Service добавляет сообщение получателю.
type Service interface {
	Append(ctx context.Context, username, content string) (*models.Message, error)
}

// Handler обрабатывает POST /api/send-message.
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

// ServeHTTP отправляет анонимное сообщение пользователю.
// @Summary Отправить анонимное сообщение
// @Tags Messages
// @Accept  json
// @Produce  json
// @Param request body Request true "Получатель и текст"
// @Success 201 {object} Response "Сообщение отправлено"
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 403 {object} response.ErrorResponse "Пользователь не принимает сообщения"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 429 {object} response.ErrorResponse "Слишком много запросов"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /send-message [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.messages.send"

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

	msg, err := h.service.Append(r.Context(), req.Username, req.Content)
	if err != nil {
		response.Fail(w, r, log, err, "Error sending message")
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, Response{
		Response:    response.OK("Message sent successfully"),
		SentMessage: *msg,
	})
}
