// Package refresh реализует HTTP-обработчик обмена refresh токена
// на новую пару токенов.
//
// Токен принимается из cookie или из тела запроса. Успешный обмен
// делает прежний refresh токен непригодным; новая пара возвращается
// в теле ответа и дублируется в HTTP-only cookie.
package refresh

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/grmlvv/video-hosting/internal/apperr"
	"github.com/grmlvv/video-hosting/internal/http/cookies"
	"github.com/grmlvv/video-hosting/internal/http/response"
	"github.com/grmlvv/video-hosting/internal/lib/sl"
	"github.com/grmlvv/video-hosting/internal/services/session"
)

// Request — тело запроса с refresh токеном, если он не передан в cookie.
type Request struct {
	RefreshToken string `json:"refreshToken"`
}

// Handler обрабатывает HTTP-запросы обмена токенов.
type Handler struct {
	log           *slog.Logger
	service       Service
	secureCookies bool
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// Service описывает интерфейс бизнес-логики обмена токенов.
type Service interface {
	Refresh(ctx context.Context, presentedToken string) (*session.TokenPair, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, secureCookies bool, accessTTL, refreshTTL time.Duration) *Handler {
	return &Handler{
		log:           log,
		service:       service,
		secureCookies: secureCookies,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// ServeHTTP godoc
// @Summary Обновление пары токенов
// @Description Обменивает действующий refresh токен (из cookie или тела запроса) на новую пару. Прежний refresh токен становится непригодным.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request false "Refresh токен, если не передан в cookie"
// @Success 200 {object} response.Response "Новая пара токенов"
// @Failure 401 {object} response.ErrorResponse "Токен отсутствует, истек или уже использован"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /refresh-token [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.refresh"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	presented := ""
	if cookie, err := r.Cookie(cookies.RefreshToken); err == nil {
		presented = cookie.Value
	}
	if presented == "" {
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			presented = req.RefreshToken
		}
	}

	pair, err := h.service.Refresh(r.Context(), presented)
	if err != nil {
		log.Error("refresh failed", sl.Err(err))
		w.WriteHeader(apperr.HTTPStatus(err))
		render.JSON(w, r, response.Error(err.Error()))
		return
	}

	cookies.SetSession(w, pair.AccessToken, pair.RefreshToken, h.secureCookies, h.accessTTL, h.refreshTTL)

	log.Info("tokens refreshed")
	render.JSON(w, r, response.StatusOKWithMessage("access token refreshed", pair))
}
