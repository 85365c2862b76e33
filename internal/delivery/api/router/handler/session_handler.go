package handler

import (
	"net/http"

	"sso/internal/delivery/api/middleware"
	"sso/internal/delivery/api/response"
	"sso/internal/errors"
	"sso/internal/usecase"

	"github.com/labstack/echo/v4"
)

// SessionHandler serves the caller's device list.
type SessionHandler struct {
	sessionUC usecase.SessionUsecase
}

// NewSessionHandler is the constructor for SessionHandler.
func NewSessionHandler(sessionUC usecase.SessionUsecase) *SessionHandler {
	return &SessionHandler{sessionUC: sessionUC}
}

// ListSessions returns the caller's active sessions, flagging the current one.
func (h *SessionHandler) ListSessions(c echo.Context) error {
	identity, err := middleware.GetIdentity(c)
	if err != nil {
		return err
	}

	sessions, err := h.sessionUC.ListSessions(c.Request().Context(), identity.UserID, identity.SessionID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, sessions)
}

// RevokeSession signs out one of the caller's devices.
func (h *SessionHandler) RevokeSession(c echo.Context) error {
	identity, err := middleware.GetIdentity(c)
	if err != nil {
		return err
	}

	sessionID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.sessionUC.RevokeOwnSession(c.Request().Context(), identity.UserID, sessionID); err != nil {
		return errors.WithStack(err)
	}

	return response.Message(c, "Session revoked successfully")
}
