// Package subscribed реализует HTTP-обработчик списка каналов,
// на которые подписан пользователь.
package subscribed

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/grmlvv/video-hosting/internal/apperr"
	"github.com/grmlvv/video-hosting/internal/http/response"
	"github.com/grmlvv/video-hosting/internal/lib/sl"
	"github.com/grmlvv/video-hosting/internal/models"
)

// Handler обрабатывает HTTP-запросы списка подписок пользователя.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс выборки каналов пользователя.
type Service interface {
	SubscribedChannels(ctx context.Context, subscriberUID string) ([]*models.ChannelInfo, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Каналы, на которые подписан пользователь
// @Description Возвращает каналы пользователя со сводками профилей. Пустой список — не ошибка.
// @Tags Channels
// @Produce  json
// @Security BearerAuth
// @Param subscriberId path string true "UID пользователя"
// @Success 200 {object} response.Response "Список каналов"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /users/{subscriberId}/subscriptions [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.channel.subscribed"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	subscriberUID := chi.URLParam(r, "subscriberId")

	channels, err := h.service.SubscribedChannels(r.Context(), subscriberUID)
	if err != nil {
		log.Error("failed to list subscribed channels", sl.Err(err))
		w.WriteHeader(apperr.HTTPStatus(err))
		render.JSON(w, r, response.Error(err.Error()))
		return
	}

	if channels == nil {
		channels = []*models.ChannelInfo{}
	}

	log.Info("subscribed channels fetched", slog.Int("count", len(channels)))
	render.JSON(w, r, response.StatusOKWithMessage("Subscribed channels fetched successfully", channels))
}
