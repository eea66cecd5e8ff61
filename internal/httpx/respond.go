package httpx

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/loadboard-app/loadboard/internal/apperr"
)

// OK writes the standard success envelope.
func OK(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": data})
}

// Created writes the success envelope with a 201.
func Created(c echo.Context, data any) error {
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": data})
}

// Fail maps an error through the apperr taxonomy and writes the failure
// envelope. Unexpected errors are logged with their full cause and redacted
// in the body.
func Fail(c echo.Context, err error) error {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		logrus.WithError(err).WithField("path", c.Path()).Error("request failed")
	}
	return c.JSON(status, echo.Map{"success": false, "message": apperr.ClientMessage(err)})
}
