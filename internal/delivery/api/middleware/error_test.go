package middleware

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"sso/internal/delivery/api/response"
	domainerrors "sso/internal/domain/errors"
	"sso/internal/errors"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMiddleware_HandleHTTPError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
		wantDetails bool
	}{
		{
			name:        "reason error keeps remediation details",
			err:         domainerrors.ErrTemporaryLocked5Min.WithDetails(domainerrors.LockDetails{MinutesRemaining: 5}),
			wantStatus:  http.StatusUnauthorized,
			wantCode:    "temporary_locked_5min",
			wantMessage: "Too many failed attempts, account locked for 5 minutes",
			wantDetails: true,
		},
		{
			name:        "wrapped reason error",
			err:         errors.WithStack(domainerrors.ErrRefreshTokenRevoked),
			wantStatus:  http.StatusUnauthorized,
			wantCode:    "refresh_token_revoked",
			wantMessage: "Refresh token has been revoked",
		},
		{
			name:        "database failure hides details and reason",
			err:         domainerrors.NewDatabaseExecuteError(errors.New("connection reset"), "users.update"),
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Operation failed",
		},
		{
			name:        "echo not found",
			err:         echo.ErrNotFound,
			wantStatus:  http.StatusNotFound,
			wantCode:    "not_found",
			wantMessage: "Not Found",
		},
		{
			name:        "unknown error",
			err:         errors.New("boom"),
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Operation failed",
		},
	}

	m := NewErrorMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil)))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			m.HandleHTTPError(tt.err, c)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body struct {
				Error struct {
					Code    string          `json:"code"`
					Message string          `json:"message"`
					Details json.RawMessage `json:"details"`
				} `json:"error"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Error.Code)
			assert.Equal(t, tt.wantMessage, body.Error.Message)
			assert.Equal(t, tt.wantDetails, len(body.Error.Details) > 0)
		})
	}
}

func TestErrorMiddleware_SkipsCommittedResponse(t *testing.T) {
	m := NewErrorMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil)))

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, response.Message(c, "done"))

	m.HandleHTTPError(domainerrors.ErrInvalidToken, c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "invalid_token")
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{header: "bearer abc", want: "abc"},
		{header: "Bearer   padded  ", want: "padded"},
		{header: "Basic dXNlcjpwYXNz", want: ""},
		{header: "Bearer", want: ""},
		{header: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, bearerToken(tt.header))
		})
	}
}
