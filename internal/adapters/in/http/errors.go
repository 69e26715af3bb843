package http

import (
	"errors"
	"net/http"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/model/shift"
	"orderflow/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// statusFor maps domain errors to HTTP status codes. Precondition failures
// are conflicts with current state, not malformed requests.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound
	case shift.IsPrecondition(err),
		errors.Is(err, order.ErrNotAssignable),
		errors.Is(err, order.ErrAlreadyAssigned),
		errors.Is(err, order.ErrTerminal):
		return http.StatusConflict
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c echo.Context, err error, message string) error {
	code := statusFor(err)
	body := Error{Code: code, Message: message}
	if code != http.StatusInternalServerError {
		body.Message = message + ": " + err.Error()
	} else {
		s.logger.Error(s.logger.WithFields(c.Request().Context(), map[string]any{
			"method": c.Request().Method,
			"path":   c.Path(),
		}), message, err)
	}
	return c.JSON(code, body)
}

func badRequest(c echo.Context, message string, err error) error {
	body := Error{Code: http.StatusBadRequest, Message: message}
	if details := validationDetails(err); details != nil {
		body.Details = details
	} else if err != nil {
		body.Message = message + ": " + err.Error()
	}
	return c.JSON(http.StatusBadRequest, body)
}
