package refresh

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/grmlvv/video-hosting/internal/apperr"
	"github.com/grmlvv/video-hosting/internal/http/cookies"
	"github.com/grmlvv/video-hosting/internal/services/session"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Refresh(ctx context.Context, presentedToken string) (*session.TokenPair, error) {
	args := m.Called(ctx, presentedToken)
	resp, _ := args.Get(0).(*session.TokenPair)
	return resp, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestRefreshHandler_ServeHTTP(t *testing.T) {
	newPair := &session.TokenPair{AccessToken: "new.access", RefreshToken: "new.refresh"}

	t.Run("token from cookie", func(t *testing.T) {
		serviceMock := new(ServiceMock)
		serviceMock.On("Refresh", mock.Anything, "old.refresh").Return(newPair, nil).Once()
		handler := New(newNoopLogger(), serviceMock, false, 15*time.Minute, 240*time.Hour)

		req := httptest.NewRequest(http.MethodPost, "/refresh-token", nil)
		req.AddCookie(&http.Cookie{Name: cookies.RefreshToken, Value: "old.refresh"})
		req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		names := map[string]string{}
		for _, c := range rec.Result().Cookies() {
			names[c.Name] = c.Value
		}
		assert.Equal(t, "new.access", names[cookies.AccessToken])
		assert.Equal(t, "new.refresh", names[cookies.RefreshToken])
		serviceMock.AssertExpectations(t)
	})

	t.Run("token from body when cookie is absent", func(t *testing.T) {
		serviceMock := new(ServiceMock)
		serviceMock.On("Refresh", mock.Anything, "old.refresh").Return(newPair, nil).Once()
		handler := New(newNoopLogger(), serviceMock, false, 15*time.Minute, 240*time.Hour)

		body, err := json.Marshal(Request{RefreshToken: "old.refresh"})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/refresh-token", bytes.NewReader(body))
		req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		serviceMock.AssertExpectations(t)
	})

	t.Run("missing token rejected", func(t *testing.T) {
		serviceMock := new(ServiceMock)
		serviceMock.On("Refresh", mock.Anything, "").
			Return(nil, apperr.Unauthorized("unauthorized request")).Once()
		handler := New(newNoopLogger(), serviceMock, false, 15*time.Minute, 240*time.Hour)

		req := httptest.NewRequest(http.MethodPost, "/refresh-token", nil)
		req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		var got map[string]any
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		assert.Equal(t, "Error", got["status"])
		assert.Equal(t, "unauthorized request", got["error"])
	})

	t.Run("reused token rejected without new cookies", func(t *testing.T) {
		serviceMock := new(ServiceMock)
		serviceMock.On("Refresh", mock.Anything, "stolen.refresh").
			Return(nil, apperr.Unauthorized("refresh token is expired or used")).Once()
		handler := New(newNoopLogger(), serviceMock, false, 15*time.Minute, 240*time.Hour)

		req := httptest.NewRequest(http.MethodPost, "/refresh-token", nil)
		req.AddCookie(&http.Cookie{Name: cookies.RefreshToken, Value: "stolen.refresh"})
		req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, rec.Result().Cookies())
	})
}
