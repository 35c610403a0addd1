// Package session содержит бизнес-логику жизненного цикла сессии:
// регистрацию, вход, выход, ротацию refresh токена и смену пароля.
//
// Ключевой инвариант — у пользователя в каждый момент не более одного
// действующего refresh токена. Выпуск нового (вход или ротация) делает
// прежний навсегда непригодным; повторное предъявление уже обменянного
// токена отклоняется как неавторизованное.
package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/grmlvv/video-hosting/internal/apperr"
	"github.com/grmlvv/video-hosting/internal/lib/jwt"
	"github.com/grmlvv/video-hosting/internal/lib/password"
	"github.com/grmlvv/video-hosting/internal/lib/sl"
	"github.com/grmlvv/video-hosting/internal/models"
	"github.com/grmlvv/video-hosting/internal/storage"
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя и возвращает его UID.
	CreateUser(ctx context.Context, user models.User) (string, error)
	// GetUserByUID возвращает пользователя по UID или storage.ErrUserNotFound.
	GetUserByUID(ctx context.Context, userUID string) (*models.User, error)
	// GetUserByUsernameOrEmail ищет пользователя по имени или почте.
	GetUserByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error)
	// SetRefreshToken безусловно перезаписывает refresh токен (nil — очистка).
	SetRefreshToken(ctx context.Context, userUID string, token *string) error
	// RotateRefreshToken заменяет токен только при совпадении прежнего значения.
	RotateRefreshToken(ctx context.Context, userUID, oldToken, newToken string) error
	// UpdatePasswordHash заменяет хэш пароля.
	UpdatePasswordHash(ctx context.Context, userUID, passwordHash string) error
}

// MediaStore описывает контракт внешнего медиахранилища.
type MediaStore interface {
	Upload(ctx context.Context, filename, contentType string, content io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}

// UploadFile — содержимое загружаемого файла с метаданными.
type UploadFile struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

// RegisterRequest — входные данные регистрации после разбора multipart-формы.
// Avatar обязателен, Cover опционален.
type RegisterRequest struct {
	Username string
	Email    string
	FullName string
	Password string
	Avatar   *UploadFile
	Cover    *UploadFile
}

// TokenPair — пара выпущенных токенов сессии.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// LoginResult — результат входа: публичный профиль и пара токенов.
type LoginResult struct {
	User models.PublicUser `json:"user"`
	TokenPair
}

// SessionService отвечает за регистрацию, аутентификацию и ротацию токенов.
type SessionService struct {
	users  UserRepository
	media  MediaStore
	tokens jwt.Maker
	log    *slog.Logger
}

// NewSessionService создает новый экземпляр SessionService.
func NewSessionService(users UserRepository, media MediaStore, tokens jwt.Maker, log *slog.Logger) *SessionService {
	return &SessionService{
		users:  users,
		media:  media,
		tokens: tokens,
		log:    log,
	}
}

// Register создает нового пользователя: проверяет заполненность полей и
// уникальность username/email, загружает аватар (и обложку, если передана)
// в медиахранилище, хэширует пароль и сохраняет запись.
// Возвращается публичная проекция без хэша пароля и refresh токена.
func (s *SessionService) Register(ctx context.Context, req RegisterRequest) (*models.PublicUser, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	email := strings.ToLower(strings.TrimSpace(req.Email))
	fullName := strings.TrimSpace(req.FullName)

	if username == "" || email == "" || fullName == "" || strings.TrimSpace(req.Password) == "" {
		return nil, apperr.Validation("all fields are required")
	}
	if req.Avatar == nil {
		return nil, apperr.Validation("avatar file is required")
	}

	existing, err := s.users.GetUserByUsernameOrEmail(ctx, username, email)
	if err != nil && !errors.Is(err, storage.ErrUserNotFound) {
		return nil, apperr.Internal("failed to check existing users")
	}
	if existing != nil {
		return nil, apperr.Conflict("user with this username or email already exists")
	}

	avatarURL, err := s.media.Upload(ctx, req.Avatar.Filename, req.Avatar.ContentType, req.Avatar.Content)
	if err != nil {
		s.log.Error("avatar upload failed", sl.Err(err))
		return nil, apperr.Internal("failed to upload avatar")
	}

	var coverURL *string
	if req.Cover != nil {
		url, err := s.media.Upload(ctx, req.Cover.Filename, req.Cover.ContentType, req.Cover.Content)
		if err != nil {
			s.log.Error("cover upload failed", sl.Err(err))
			s.cleanupMedia(ctx, avatarURL)
			return nil, apperr.Internal("failed to upload cover image")
		}
		coverURL = &url
	}

	hashed, err := password.GetHash(req.Password)
	if err != nil {
		return nil, apperr.Internal("failed to process password")
	}

	uid, err := s.users.CreateUser(ctx, models.User{
		Username:      username,
		Email:         email,
		FullName:      fullName,
		PasswordHash:  hashed,
		AvatarURL:     avatarURL,
		CoverImageURL: coverURL,
	})
	if err != nil {
		uploaded := []string{avatarURL}
		if coverURL != nil {
			uploaded = append(uploaded, *coverURL)
		}
		s.cleanupMedia(ctx, uploaded...)
		if errors.Is(err, storage.ErrUserExists) {
			return nil, apperr.Conflict("user with this username or email already exists")
		}
		return nil, apperr.Internal("failed to create user")
	}

	created, err := s.users.GetUserByUID(ctx, uid)
	if err != nil {
		s.log.Error("read-back of created user failed", sl.Err(err), slog.String("uid", uid))
		return nil, apperr.Internal("something went wrong while registering the user")
	}

	s.log.Info("registered new user", slog.String("uid", uid), slog.String("username", username))
	pub := created.Public()
	return &pub, nil
}

// cleanupMedia удаляет загруженные файлы, если запись пользователя так и
// не появилась. Ошибка удаления не фатальна: осиротевший ресурс логируется
// и остается на стороне хранилища.
func (s *SessionService) cleanupMedia(ctx context.Context, urls ...string) {
	for _, url := range urls {
		if err := s.media.Delete(ctx, url); err != nil {
			s.log.Warn("orphaned media after failed registration",
				slog.String("url", url), sl.Err(err))
		}
	}
}

// Login проверяет учетные данные и открывает новую сессию.
// Ротация безусловна: свежий вход инвалидирует любой прежний refresh токен.
func (s *SessionService) Login(ctx context.Context, username, email, rawPassword string) (*LoginResult, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" && email == "" {
		return nil, apperr.Validation("username or email is required")
	}
	if rawPassword == "" {
		return nil, apperr.Validation("password is required")
	}

	user, err := s.users.GetUserByUsernameOrEmail(ctx, username, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, apperr.NotFound("user does not exist")
		}
		return nil, apperr.Internal("failed to look up user")
	}

	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return nil, apperr.Unauthorized("invalid user credentials")
	}

	pair, err := s.issueTokens(ctx, user, "")
	if err != nil {
		return nil, err
	}

	s.log.Info("user logged in", slog.String("uid", user.UID))
	return &LoginResult{User: user.Public(), TokenPair: *pair}, nil
}

// Logout закрывает сессию, очищая refresh токен. Операция идемпотентна:
// повторный выход оставляет то же состояние и не является ошибкой.
func (s *SessionService) Logout(ctx context.Context, userUID string) error {
	if err := s.users.SetRefreshToken(ctx, userUID, nil); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return apperr.NotFound("user does not exist")
		}
		return apperr.Internal("failed to log out")
	}
	s.log.Info("user logged out", slog.String("uid", userUID))
	return nil
}

// Refresh обменивает действующий refresh токен на новую пару токенов.
//
// Токен принимается только если он криптографически корректен, не истек
// и байт-в-байт совпадает с хранимым значением — так обнаруживается
// повторное использование уже обменянного токена. Все отказы проверки
// отдаются одинаковой ошибкой авторизации, чтобы не раскрывать причину.
func (s *SessionService) Refresh(ctx context.Context, presentedToken string) (*TokenPair, error) {
	if presentedToken == "" {
		return nil, apperr.Unauthorized("unauthorized request")
	}

	claims, err := s.tokens.ParseRefreshToken(presentedToken)
	if err != nil {
		return nil, apperr.Unauthorized("invalid refresh token")
	}

	user, err := s.users.GetUserByUID(ctx, claims.UserUID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, apperr.NotFound("user does not exist")
		}
		return nil, apperr.Internal("failed to look up user")
	}

	if user.RefreshToken == nil || *user.RefreshToken != presentedToken {
		s.log.Warn("refresh token reuse detected", slog.String("uid", user.UID))
		return nil, apperr.Unauthorized("refresh token is expired or used")
	}

	pair, err := s.issueTokens(ctx, user, presentedToken)
	if err != nil {
		return nil, err
	}

	s.log.Info("session refreshed", slog.String("uid", user.UID))
	return pair, nil
}

// ChangePassword заменяет пароль после проверки старого.
// Refresh токен не трогается: действующие сессии сохраняются, желающий
// "выйти везде" должен явно вызвать Logout.
func (s *SessionService) ChangePassword(ctx context.Context, userUID, oldPassword, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" {
		return apperr.Validation("new password is required")
	}

	user, err := s.users.GetUserByUID(ctx, userUID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return apperr.NotFound("user does not exist")
		}
		return apperr.Internal("failed to look up user")
	}

	if err := password.CompareHash(user.PasswordHash, oldPassword); err != nil {
		return apperr.Unauthorized("invalid old password")
	}

	hashed, err := password.GetHash(newPassword)
	if err != nil {
		return apperr.Internal("failed to process password")
	}
	if err := s.users.UpdatePasswordHash(ctx, userUID, hashed); err != nil {
		return apperr.Internal("failed to update password")
	}

	s.log.Info("password changed", slog.String("uid", userUID))
	return nil
}

// CurrentUser возвращает публичный профиль пользователя по UID.
func (s *SessionService) CurrentUser(ctx context.Context, userUID string) (*models.PublicUser, error) {
	user, err := s.users.GetUserByUID(ctx, userUID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, apperr.NotFound("user does not exist")
		}
		return nil, apperr.Internal("failed to look up user")
	}
	pub := user.Public()
	return &pub, nil
}

// issueTokens выпускает новую пару токенов и записывает refresh токен.
// При пустом previousToken запись безусловна (вход), иначе — условная
// ротация: проигравший конкурентный запрос получает отказ авторизации.
func (s *SessionService) issueTokens(ctx context.Context, user *models.User, previousToken string) (*TokenPair, error) {
	accessToken, err := s.tokens.GenerateAccessToken(user.UID, user.Email, user.Username, user.FullName)
	if err != nil {
		return nil, apperr.Internal("failed to generate access token")
	}
	refreshToken, err := s.tokens.GenerateRefreshToken(user.UID)
	if err != nil {
		return nil, apperr.Internal("failed to generate refresh token")
	}

	if previousToken == "" {
		err = s.users.SetRefreshToken(ctx, user.UID, &refreshToken)
	} else {
		err = s.users.RotateRefreshToken(ctx, user.UID, previousToken, refreshToken)
	}
	if err != nil {
		if errors.Is(err, storage.ErrRotationConflict) {
			return nil, apperr.Unauthorized("refresh token is expired or used")
		}
		return nil, apperr.Internal("failed to store refresh token")
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
