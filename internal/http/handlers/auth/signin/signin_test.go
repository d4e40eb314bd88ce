package signin

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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/mystery-message/internal/http/middlewarectx"
	"github.com/magabrotheeeer/mystery-message/internal/lib/apperr"
	"github.com/magabrotheeeer/mystery-message/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) SignIn(ctx context.Context, identifier, password string) (models.Principal, string, error) {
	args := m.Called(ctx, identifier, password)
	return args.Get(0).(models.Principal), args.String(1), args.Error(2)
}

func TestSignInHandler_ServeHTTP(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	principal := models.Principal{ID: "u1", Username: "alice", IsVerified: true, IsAcceptingMessages: true}

	t.Run("success sets cookie", func(t *testing.T) {
		svc := new(ServiceMock)
		svc.On("SignIn", mock.Anything, "alice@x.io", "password123").Return(principal, "jwt-token", nil).Once()

		body := `{"identifier":"alice@x.io","password":"password123"}`
		req := httptest.NewRequest(http.MethodPost, "/api/sign-in", bytes.NewBufferString(body))
		rr := httptest.NewRecorder()
		New(logger, svc, time.Hour).ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var resp Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "jwt-token", resp.Token)
		assert.Equal(t, principal, resp.User)

		cookies := rr.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, middlewarectx.SessionCookie, cookies[0].Name)
		assert.Equal(t, "jwt-token", cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
		assert.Equal(t, 3600, cookies[0].MaxAge)
		svc.AssertExpectations(t)
	})

	failures := []struct {
		name        string
		err         error
		wantMessage string
	}{
		{name: "no account", err: apperr.ErrNoAccount, wantMessage: "No user found with this username or email"},
		{name: "not verified", err: apperr.ErrNotVerified, wantMessage: "Please verify your account before signing in"},
		{name: "incorrect password", err: apperr.ErrIncorrectPassword, wantMessage: "Incorrect password"},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			svc.On("SignIn", mock.Anything, "alice", "password123").Return(models.Principal{}, "", tt.err).Once()

			body := `{"identifier":"alice","password":"password123"}`
			req := httptest.NewRequest(http.MethodPost, "/api/sign-in", bytes.NewBufferString(body))
			rr := httptest.NewRecorder()
			New(logger, svc, time.Hour).ServeHTTP(rr, req)

			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.wantMessage)
			assert.Empty(t, rr.Result().Cookies())
			svc.AssertExpectations(t)
		})
	}

	t.Run("missing password", func(t *testing.T) {
		svc := new(ServiceMock)
		req := httptest.NewRequest(http.MethodPost, "/api/sign-in", bytes.NewBufferString(`{"identifier":"alice"}`))
		rr := httptest.NewRecorder()
		New(logger, svc, time.Hour).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "field Password is a required field")
	})
}
