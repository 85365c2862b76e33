// Package handler contains the HTTP handlers for the application.
package handler

import (
	"net/http"

	"sso/internal/delivery/api/response"
	deliverycontext "sso/internal/delivery/context"
	domainerrors "sso/internal/domain/errors"
	"sso/internal/errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// bindAndValidate decodes the request into req and runs the struct validation rules.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails(map[string]string{"body": "malformed request body"})
	}

	return errors.WithStack(c.Validate(req))
}

// bindConfigValues decodes a flat JSON object of configuration values. A null value resets the key.
func bindConfigValues(c echo.Context) (map[string]*string, error) {
	values := map[string]*string{}
	if err := c.Echo().JSONSerializer.Deserialize(c, &values); err != nil {
		return nil, domainerrors.ErrValidationFailed.WithDetails(map[string]string{
			"body": "expected an object of string values",
		})
	}
	if len(values) == 0 {
		return nil, domainerrors.ErrValidationFailed.WithDetails(map[string]string{"body": "no values supplied"})
	}

	return values, nil
}

func uuidParam(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, domainerrors.ErrValidationFailed.WithDetails(map[string]string{name: "must be a UUID"})
	}

	return id, nil
}

func clientInfo(c echo.Context) deliverycontext.ClientInfo {
	info := deliverycontext.GetClientInfo(c.Request().Context())
	if info.IPAddress == "" {
		info.IPAddress = c.RealIP()
	}
	if info.UserAgent == "" {
		info.UserAgent = c.Request().UserAgent()
	}

	return info
}

// HealthCheck is a simple handler to check if the service is up.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"status": "ok"})
}
