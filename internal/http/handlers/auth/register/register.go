// Package register реализует HTTP-обработчик регистрации пользователей.
//
// Запрос приходит multipart-формой: текстовые поля профиля и файлы
// аватара (обязателен) и обложки (опциональна). Обработчик валидирует
// поля, передает данные сервису сессий и возвращает публичный профиль
// созданного пользователя без секретов.
package register

import (
	"context"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/grmlvv/video-hosting/internal/apperr"
	"github.com/grmlvv/video-hosting/internal/http/response"
	"github.com/grmlvv/video-hosting/internal/lib/sl"
	"github.com/grmlvv/video-hosting/internal/models"
	"github.com/grmlvv/video-hosting/internal/services/session"
)

// Request — текстовые поля формы регистрации.
type Request struct {
	Username string `validate:"required,min=3,max=50"`
	Email    string `validate:"required,email"`
	FullName string `validate:"required,min=1,max=100"`
	Password string `validate:"required,min=6"`
}

// Handler обрабатывает HTTP-запросы регистрации.
type Handler struct {
	log           *slog.Logger
	service       Service
	validate      *validator.Validate
	maxUploadSize int64
}

// Service описывает интерфейс бизнес-логики регистрации.
type Service interface {
	Register(ctx context.Context, req session.RegisterRequest) (*models.PublicUser, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, maxUploadSizeMB int64) *Handler {
	return &Handler{
		log:           log,
		service:       service,
		validate:      validator.New(),
		maxUploadSize: maxUploadSizeMB << 20,
	}
}

// ServeHTTP godoc
// @Summary Регистрация пользователя
// @Description Создает нового пользователя. Принимает multipart-форму с полями профиля, файлом аватара (обязателен) и обложки (опциональна).
// @Tags Auth
// @Accept  multipart/form-data
// @Produce  json
// @Param username formData string true "Имя пользователя"
// @Param email formData string true "Электронная почта"
// @Param fullName formData string true "Полное имя"
// @Param password formData string true "Пароль"
// @Param avatar formData file true "Файл аватара"
// @Param coverImage formData file false "Файл обложки"
// @Success 201 {object} response.Response "Пользователь создан"
// @Failure 400 {object} response.ErrorResponse "Некорректная форма"
// @Failure 409 {object} response.ErrorResponse "Имя или почта уже заняты"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		log.Error("failed to parse multipart form", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid multipart form"))
		return
	}

	req := Request{
		Username: r.FormValue("username"),
		Email:    r.FormValue("email"),
		FullName: r.FormValue("fullName"),
		Password: r.FormValue("password"),
	}
	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	log.Info("all fields are validated")

	avatar, avatarHeader, err := r.FormFile("avatar")
	if err != nil {
		log.Error("avatar file missing", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("avatar file is required"))
		return
	}
	defer avatar.Close()

	registerReq := session.RegisterRequest{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
		Avatar:   toUploadFile(avatar, avatarHeader),
	}

	if cover, coverHeader, err := r.FormFile("coverImage"); err == nil {
		defer cover.Close()
		registerReq.Cover = toUploadFile(cover, coverHeader)
	}

	user, err := h.service.Register(r.Context(), registerReq)
	if err != nil {
		log.Error("registration failed", sl.Err(err))
		w.WriteHeader(apperr.HTTPStatus(err))
		render.JSON(w, r, response.Error(err.Error()))
		return
	}

	log.Info("user registered", slog.String("username", user.Username))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithMessage("user registered successfully", user))
}

func toUploadFile(file multipart.File, header *multipart.FileHeader) *session.UploadFile {
	return &session.UploadFile{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     file,
	}
}
