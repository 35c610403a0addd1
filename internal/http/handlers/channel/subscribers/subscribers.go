// Package subscribers реализует HTTP-обработчик списка подписчиков канала.
package subscribers

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

// Handler обрабатывает HTTP-запросы списка подписчиков.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс выборки подписчиков канала.
type Service interface {
	ChannelSubscribers(ctx context.Context, channelUID string) ([]*models.SubscriberInfo, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Подписчики канала
// @Description Возвращает подписчиков канала со сводками профилей. Пустой список — не ошибка.
// @Tags Channels
// @Produce  json
// @Security BearerAuth
// @Param channelId path string true "UID канала"
// @Success 200 {object} response.Response "Список подписчиков"
// @Failure 404 {object} response.ErrorResponse "Канал не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /channels/{channelId}/subscribers [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.channel.subscribers"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	channelUID := chi.URLParam(r, "channelId")

	subscribers, err := h.service.ChannelSubscribers(r.Context(), channelUID)
	if err != nil {
		log.Error("failed to list subscribers", sl.Err(err))
		w.WriteHeader(apperr.HTTPStatus(err))
		render.JSON(w, r, response.Error(err.Error()))
		return
	}

	msg := "Subscribers fetched successfully"
	if len(subscribers) == 0 {
		msg = "No subscriber found"
		subscribers = []*models.SubscriberInfo{}
	}

	log.Info("subscribers fetched", slog.Int("count", len(subscribers)))
	render.JSON(w, r, response.StatusOKWithMessage(msg, subscribers))
}
