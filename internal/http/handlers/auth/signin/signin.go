// Package signin содержит обработчик входа по имени или почте.
package signin

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/mystery-message/internal/http/middlewarectx"
	"github.com/magabrotheeeer/mystery-message/internal/http/response"
	"github.com/magabrotheeeer/mystery-message/internal/lib/sl"
	"github.com/magabrotheeeer/mystery-message/internal/models"
)

// Request содержит учётные данные пользователя.
type Request struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// Response описывает ответ на успешный вход.
type Response struct {
	response.Response
	Token string           `json:"token"`
	User  models.Principal `json:"user"`
}

// Service проверяет учётные данные и выдаёт токен.
type Service interface {
	SignIn(ctx context.Context, identifier, password string) (models.Principal, string, error)
}

// Handler обрабатывает POST /api/sign-in.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
	tokenTTL time.Duration
}

// New создает обработчик входа. tokenTTL задаёт срок жизни cookie сессии.
func New(log *slog.Logger, service Service, tokenTTL time.Duration) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
		tokenTTL: tokenTTL,
	}
}

// ServeHTTP обрабатывает запрос на вход.
// @Summary Вход пользователя
// @Description Аутентифицирует пользователя по имени или почте и паролю. Возвращает JWT и устанавливает cookie session_token.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Учетные данные пользователя"
// @Success 200 {object} Response "Успешный вход"
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 401 {object} response.ErrorResponse "Пользователь не найден, не подтвержден или неверный пароль"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /sign-in [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.signin"

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

	principal, token, err := h.service.SignIn(r.Context(), req.Identifier, req.Password)
	if err != nil {
		response.Fail(w, r, log, err, "Error signing in")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middlewarectx.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.tokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	log.Info("user signed in", slog.String("user_id", principal.ID))
	render.JSON(w, r, Response{
		Response: response.OK("Signed in successfully"),
		Token:    token,
		User:     principal,
	})
}
