// Package toggle реализует HTTP-обработчик переключения подписки на канал.
//
// Один и тот же запрос подписывает, если подписки нет, и отписывает,
// если она есть. Возвращаемое сообщение отражает достигнутое состояние.
package toggle

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/grmlvv/video-hosting/internal/apperr"
	"github.com/grmlvv/video-hosting/internal/http/middlewarectx"
	"github.com/grmlvv/video-hosting/internal/http/response"
	"github.com/grmlvv/video-hosting/internal/lib/sl"
)

// Handler обрабатывает HTTP-запросы переключения подписки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики переключения подписки.
type Service interface {
	Toggle(ctx context.Context, subscriberUID, channelUID string) (string, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Переключить подписку на канал
// @Description Подписывает текущего пользователя на канал или отписывает, если подписка уже есть.
// @Tags Channels
// @Produce  json
// @Security BearerAuth
// @Param channelId path string true "UID канала"
// @Success 200 {object} response.Response "Достигнутое состояние подписки"
// @Failure 400 {object} response.ErrorResponse "Канал не указан или подписка на себя"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /channels/{channelId}/subscription [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.channel.toggle"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	subscriberUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || subscriberUID == "" {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	channelUID := chi.URLParam(r, "channelId")

	state, err := h.service.Toggle(r.Context(), subscriberUID, channelUID)
	if err != nil {
		log.Error("failed to toggle subscription", sl.Err(err))
		w.WriteHeader(apperr.HTTPStatus(err))
		render.JSON(w, r, response.Error(err.Error()))
		return
	}

	log.Info("subscription toggled", slog.String("state", state))
	render.JSON(w, r, response.StatusOKWithMessage(state, map[string]any{
		"state": state,
	}))
}
