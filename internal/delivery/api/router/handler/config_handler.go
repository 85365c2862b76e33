package handler

import (
	"net/http"

	"sso/internal/delivery/api/middleware"
	"sso/internal/delivery/api/response"
	"sso/internal/errors"
	"sso/internal/usecase"

	"github.com/labstack/echo/v4"
)

// ConfigHandler serves user preferences and tenant settings.
type ConfigHandler struct {
	configUC usecase.ConfigUsecase
}

// NewConfigHandler is the constructor for ConfigHandler.
func NewConfigHandler(configUC usecase.ConfigUsecase) *ConfigHandler {
	return &ConfigHandler{configUC: configUC}
}

func (h *ConfigHandler) GetUserConfig(c echo.Context) error {
	identity, err := middleware.GetIdentity(c)
	if err != nil {
		return err
	}

	cfg, err := h.configUC.GetUserConfig(c.Request().Context(), identity.UserID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, cfg)
}

func (h *ConfigHandler) UpdateUserConfig(c echo.Context) error {
	identity, err := middleware.GetIdentity(c)
	if err != nil {
		return err
	}

	values, err := bindConfigValues(c)
	if err != nil {
		return err
	}

	cfg, err := h.configUC.UpdateUserConfig(c.Request().Context(), identity.UserID, values)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, cfg)
}

func (h *ConfigHandler) GetTenantConfig(c echo.Context) error {
	identity, err := middleware.GetIdentity(c)
	if err != nil {
		return err
	}

	cfg, err := h.configUC.GetTenantConfig(c.Request().Context(), identity)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, cfg)
}

func (h *ConfigHandler) UpdateTenantConfig(c echo.Context) error {
	identity, err := middleware.GetIdentity(c)
	if err != nil {
		return err
	}

	values, err := bindConfigValues(c)
	if err != nil {
		return err
	}

	cfg, err := h.configUC.UpdateTenantConfig(c.Request().Context(), identity, values)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, cfg)
}

// VerifyTenantIsolation reports whether row-level security scopes the caller's tenant data.
func (h *ConfigHandler) VerifyTenantIsolation(c echo.Context) error {
	identity, err := middleware.GetIdentity(c)
	if err != nil {
		return err
	}

	report, err := h.configUC.VerifyTenantIsolation(c.Request().Context(), identity)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, report)
}
