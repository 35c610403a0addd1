// Package logout реализует HTTP-обработчик выхода пользователя.
// Выход очищает refresh токен на сервере и cookie сессии у клиента.
package logout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/grmlvv/video-hosting/internal/apperr"
	"github.com/grmlvv/video-hosting/internal/http/cookies"
	"github.com/grmlvv/video-hosting/internal/http/middlewarectx"
	"github.com/grmlvv/video-hosting/internal/http/response"
	"github.com/grmlvv/video-hosting/internal/lib/sl"
)

// Handler обрабатывает HTTP-запросы выхода.
type Handler struct {
	log           *slog.Logger
	service       Service
	secureCookies bool
}

// Service описывает интерфейс бизнес-логики выхода.
type Service interface {
	Logout(ctx context.Context, userUID string) error
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, secureCookies bool) *Handler {
	return &Handler{
		log:           log,
		service:       service,
		secureCookies: secureCookies,
	}
}

// ServeHTTP godoc
// @Summary Выход пользователя
// @Description Закрывает сессию текущего пользователя: очищает refresh токен и cookie. Повторный выход не является ошибкой.
// @Tags Auth
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Успешный выход"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	if err := h.service.Logout(r.Context(), userUID); err != nil {
		log.Error("logout failed", sl.Err(err))
		w.WriteHeader(apperr.HTTPStatus(err))
		render.JSON(w, r, response.Error(err.Error()))
		return
	}

	cookies.ClearSession(w, h.secureCookies)

	log.Info("user logged out", slog.String("uid", userUID))
	render.JSON(w, r, response.StatusOKWithMessage("user logged out", nil))
}
