package handler

import (
	"net/http"

	"sso/internal/delivery/api/middleware"
	"sso/internal/delivery/api/response"
	"sso/internal/domain/entity"
	"sso/internal/errors"
	"sso/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// AuthHandlerParams holds dependencies for AuthHandler, injected by Fx.
type AuthHandlerParams struct {
	fx.In

	AuthUC    usecase.AuthUsecase
	SessionUC usecase.SessionUsecase
	AccountUC usecase.AccountUsecase
}

// AuthHandler serves login, token and account-security endpoints.
type AuthHandler struct {
	authUC    usecase.AuthUsecase
	sessionUC usecase.SessionUsecase
	accountUC usecase.AccountUsecase
}

// NewAuthHandler is the constructor for AuthHandler.
func NewAuthHandler(params AuthHandlerParams) *AuthHandler {
	return &AuthHandler{
		authUC:    params.AuthUC,
		sessionUC: params.SessionUC,
		accountUC: params.AccountUC,
	}
}

// LoginRequest represents the request body for a password login.
type LoginRequest struct {
	UsernameOrEmail string  `json:"usernameOrEmail" validate:"required"`
	Password        string  `json:"password" validate:"required,min=6"`
	DeviceName      string  `json:"deviceName" validate:"omitempty,max=255"`
	Latitude        *string `json:"latitude" validate:"omitempty,latitude"`
	Longitude       *string `json:"longitude" validate:"omitempty,longitude"`
	RememberMe      bool    `json:"rememberMe"`
}

// RefreshRequest represents the request body for refresh token rotation.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// EmailRequest carries a single email address.
type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest represents the request body for completing a password reset.
type ResetPasswordRequest struct {
	Email                string `json:"email" validate:"required,email"`
	Token                string `json:"token" validate:"required"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"passwordConfirmation" validate:"required"`
}

// VerifyEmailRequest represents the request body for confirming an email address.
type VerifyEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
	Token string `json:"token" validate:"required"`
}

// SwitchTenantRequest represents the request body for changing the current tenant.
type SwitchTenantRequest struct {
	TenantID string `json:"tenantId" validate:"required,uuid"`
}

// LogoutAllResponse reports how many sessions a logout-all terminated.
type LogoutAllResponse struct {
	Message            string `json:"message"`
	SessionsTerminated int    `json:"sessionsTerminated"`
}

// Login handles the user login request.
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	client := clientInfo(c)
	output, err := h.authUC.Login(c.Request().Context(), &usecase.LoginInput{
		UsernameOrEmail: req.UsernameOrEmail,
		Password:        req.Password,
		Device: entity.DeviceInfo{
			IPAddress:  client.IPAddress,
			UserAgent:  client.UserAgent,
			DeviceName: req.DeviceName,
			Latitude:   req.Latitude,
			Longitude:  req.Longitude,
			RememberMe: req.RememberMe,
		},
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output)
}

// Refresh rotates a refresh token into a new token pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req RefreshRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	output, err := h.sessionUC.RotateRefreshToken(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output)
}

// Logout revokes the caller's current session.
func (h *AuthHandler) Logout(c echo.Context) error {
	identity, err := middleware.GetIdentity(c)
	if err != nil {
		return err
	}

	if err := h.sessionUC.RevokeSession(c.Request().Context(), identity.SessionID); err != nil {
		return errors.WithStack(err)
	}

	return response.Message(c, "Successfully logged out")
}

// LogoutAll revokes every session of the caller, including the current one.
func (h *AuthHandler) LogoutAll(c echo.Context) error {
	identity, err := middleware.GetIdentity(c)
	if err != nil {
		return err
	}

	count, err := h.sessionUC.RevokeAllSessionsForUser(c.Request().Context(), identity.UserID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, LogoutAllResponse{
		Message:            "Successfully logged out from all devices",
		SessionsTerminated: count,
	})
}

// ForgotPassword always acknowledges, whether or not the email is known.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req EmailRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.accountUC.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return errors.WithStack(err)
	}

	return response.Message(c, "If the email exists, a password reset link has been sent")
}

// ResetPassword completes a password reset.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	err := h.accountUC.ResetPassword(c.Request().Context(), &usecase.ResetPasswordInput{
		Email:                req.Email,
		Token:                req.Token,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Message(c, "Password has been reset successfully")
}

// SendEmailVerification mails a verification token.
func (h *AuthHandler) SendEmailVerification(c echo.Context) error {
	var req EmailRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.accountUC.SendEmailVerification(c.Request().Context(), req.Email); err != nil {
		return errors.WithStack(err)
	}

	return response.Message(c, "Verification email sent successfully")
}

// VerifyEmail confirms an email address.
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	var req VerifyEmailRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.accountUC.VerifyEmail(c.Request().Context(), req.Email, req.Token); err != nil {
		return errors.WithStack(err)
	}

	return response.Message(c, "Email verified successfully")
}

// Me returns the caller's profile, memberships and preferences.
func (h *AuthHandler) Me(c echo.Context) error {
	identity, err := middleware.GetIdentity(c)
	if err != nil {
		return err
	}

	output, err := h.accountUC.GetMe(c.Request().Context(), identity.UserID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output)
}

// SwitchTenant changes the caller's current tenant.
func (h *AuthHandler) SwitchTenant(c echo.Context) error {
	identity, err := middleware.GetIdentity(c)
	if err != nil {
		return err
	}

	var req SwitchTenantRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	output, err := h.accountUC.SwitchTenant(c.Request().Context(), identity.UserID, uuid.MustParse(req.TenantID))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output)
}

// ToggleUserLocked locks or unlocks a member of the caller's current tenant.
func (h *AuthHandler) ToggleUserLocked(c echo.Context) error {
	identity, err := middleware.GetIdentity(c)
	if err != nil {
		return err
	}

	targetID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	output, err := h.accountUC.ToggleUserLocked(c.Request().Context(), identity.UserID, targetID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output)
}
