package utils

import (
	"github.com/labstack/echo/v4"

	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/pkg/errors"
)

// GetRequestID returns the request id echo's middleware attached.
func GetRequestID(c echo.Context) string {
	return c.Response().Header().Get(echo.HeaderXRequestID)
}

// ReadRequest binds and validates an incoming payload.
func ReadRequest(ctx echo.Context, request interface{}) error {
	if err := ctx.Bind(request); err != nil {
		return errors.Validationf(errors.CodeInvalidRequest, "invalid request payload")
	}
	if err := ValidateStruct(ctx.Request().Context(), request); err != nil {
		return errors.Validationf(errors.CodeInvalidRequest, "%s", err)
	}
	return nil
}

// RespondError writes the uniform error body with the status the error kind
// maps to.
func RespondError(c echo.Context, err error) error {
	return c.JSON(errors.HTTPStatus(err), map[string]string{
		"error": errors.MessageOf(err),
		"code":  errors.CodeOf(err),
	})
}
