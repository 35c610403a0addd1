// Package profile реализует HTTP-обработчик публичного профиля канала.
//
// Профиль доступен и анонимно; если запрос аутентифицирован, в ответ
// добавляется признак подписки смотрящего на канал.
package profile

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
	"github.com/grmlvv/video-hosting/internal/models"
)

// Handler обрабатывает HTTP-запросы профиля канала.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс сборки профиля канала.
type Service interface {
	ChannelProfile(ctx context.Context, username, viewerUID string) (*models.ChannelProfile, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Профиль канала
// @Description Возвращает публичный профиль канала по имени пользователя: счетчики подписчиков и подписок и, для аутентифицированного смотрящего, признак подписки.
// @Tags Channels
// @Produce  json
// @Param username path string true "Имя пользователя канала"
// @Success 200 {object} response.Response "Профиль канала"
// @Failure 400 {object} response.ErrorResponse "Имя пользователя не указано"
// @Failure 404 {object} response.ErrorResponse "Канал не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /channels/{username} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.channel.profile"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	username := chi.URLParam(r, "username")
	viewerUID, _ := r.Context().Value(middlewarectx.UserUID).(string)

	channel, err := h.service.ChannelProfile(r.Context(), username, viewerUID)
	if err != nil {
		log.Error("failed to fetch channel profile", sl.Err(err))
		w.WriteHeader(apperr.HTTPStatus(err))
		render.JSON(w, r, response.Error(err.Error()))
		return
	}

	log.Info("channel profile fetched", slog.String("username", channel.Username))
	render.JSON(w, r, response.StatusOKWithMessage("User channel fetched successfully", channel))
}
