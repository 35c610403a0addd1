// Package login реализует HTTP-обработчик входа пользователей.
//
// В нём определяется структура Request для входных данных, выполняется
// декодирование JSON, проверка и валидация полей, а также делегирование
// операции входа сервису сессий. При успешной аутентификации пара токенов
// возвращается в теле ответа и дублируется в HTTP-only cookie.
package login

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/grmlvv/video-hosting/internal/apperr"
	"github.com/grmlvv/video-hosting/internal/http/cookies"
	"github.com/grmlvv/video-hosting/internal/http/response"
	"github.com/grmlvv/video-hosting/internal/lib/sl"
	"github.com/grmlvv/video-hosting/internal/services/session"
)

// Request — структура входных данных для входа.
// Допускается вход по имени пользователя или по почте.
type Request struct {
	Username string `json:"username" validate:"omitempty,min=3,max=50"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Handler обрабатывает HTTP-запросы для входа.
type Handler struct {
	log           *slog.Logger
	service       Service
	validate      *validator.Validate
	secureCookies bool
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// Service описывает интерфейс бизнес-логики входа.
type Service interface {
	Login(ctx context.Context, username, email, password string) (*session.LoginResult, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, secureCookies bool, accessTTL, refreshTTL time.Duration) *Handler {
	return &Handler{
		log:           log,
		service:       service,
		validate:      validator.New(),
		secureCookies: secureCookies,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// ServeHTTP godoc
// @Summary Вход пользователя
// @Description Аутентифицирует пользователя по имени или почте и паролю. Возвращает профиль и пару токенов, токены также записываются в HTTP-only cookie.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Учетные данные пользователя"
// @Success 200 {object} response.Response "Успешный вход"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Неверные учетные данные"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	log.Info("all fields are validated")

	result, err := h.service.Login(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		log.Error("login failed", sl.Err(err))
		w.WriteHeader(apperr.HTTPStatus(err))
		render.JSON(w, r, response.Error(err.Error()))
		return
	}

	cookies.SetSession(w, result.AccessToken, result.RefreshToken, h.secureCookies, h.accessTTL, h.refreshTTL)

	log.Info("login success", slog.String("username", result.User.Username))
	render.JSON(w, r, response.StatusOKWithMessage("user logged in successfully", result))
}
