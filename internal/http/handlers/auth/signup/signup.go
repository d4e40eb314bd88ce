// Package signup содержит обработчик регистрации пользователя.
package signup

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

// Request содержит входные данные для регистрации.
type Request struct {
	Username string `json:"username" validate:"required,alphanum,min=3,max=20"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// Service регистрирует пользователя и отправляет код подтверждения.
type Service interface {
	SignUp(ctx context.Context, username, email, password string) (*models.User, error)
}

// Handler обрабатывает POST /api/sign-up.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает обработчик регистрации.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP обрабатывает запрос на регистрацию.
// @Summary Регистрация пользователя
// @Description Создает неподтвержденного пользователя и отправляет на почту код подтверждения. Повторная регистрация с той же почтой до подтверждения выпускает новый код.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Данные нового пользователя"
// @Success 201 {object} response.Response "Пользователь зарегистрирован"
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации или имя/почта заняты"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /sign-up [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.signup"

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

	user, err := h.service.SignUp(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		response.Fail(w, r, log, err, "Error registering user")
		return
	}

	log.Info("user signed up", slog.String("user_id", user.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OK("User registered successfully. Please verify your account."))
}
