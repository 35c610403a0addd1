package toggle

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/grmlvv/video-hosting/internal/apperr"
	"github.com/grmlvv/video-hosting/internal/http/middlewarectx"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Toggle(ctx context.Context, subscriberUID, channelUID string) (string, error) {
	args := m.Called(ctx, subscriberUID, channelUID)
	return args.String(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func newToggleRequest(channelID, userUID string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/channels/"+channelID+"/subscription", nil)

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("channelId", channelID)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, middleware.RequestIDKey, "reqid123")
	if userUID != "" {
		ctx = context.WithValue(ctx, middlewarectx.UserUID, userUID)
	}
	return req.WithContext(ctx)
}

func TestToggleHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		userUID        string
		mockState      string
		mockErr        error
		wantStatusCode int
		wantStatus     string
		wantMessage    string
		wantError      string
	}{
		{
			name:           "subscribes",
			userUID:        "viewer-uid",
			mockState:      "subscribed",
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
			wantMessage:    "subscribed",
		},
		{
			name:           "unsubscribes",
			userUID:        "viewer-uid",
			mockState:      "unsubscribed",
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
			wantMessage:    "unsubscribed",
		},
		{
			name:           "self subscription rejected",
			userUID:        "channel-uid",
			mockErr:        apperr.Validation("cannot subscribe to own channel"),
			wantStatusCode: http.StatusBadRequest,
			wantStatus:     "Error",
			wantError:      "cannot subscribe to own channel",
		},
		{
			name:           "anonymous request rejected",
			userUID:        "",
			wantStatusCode: http.StatusUnauthorized,
			wantStatus:     "Error",
			wantError:      "unauthorized",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			if tt.userUID != "" {
				serviceMock.On("Toggle", mock.Anything, tt.userUID, "channel-uid").
					Return(tt.mockState, tt.mockErr).Once()
			}

			handler := New(newNoopLogger(), serviceMock)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, newToggleRequest("channel-uid", tt.userUID))

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, tt.wantStatus, got["status"])
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, got["message"])
			}
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, got["error"])
			}

			serviceMock.AssertExpectations(t)
		})
	}
}
