package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github-pulse/config"
	"github-pulse/internal/dashboard"
	"github-pulse/internal/metrics"
)

// ErrorResponse is the JSON body returned on failure.
type ErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func parseDate(raw string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: expected YYYY-MM-DD, got %q", config.ErrBadWindow, raw)
	}
	return t, nil
}

func writeError(c *fiber.Ctx, err error) error {
	status := http.StatusInternalServerError
	code := "INTERNAL"
	msg := err.Error()

	switch {
	case errors.Is(err, config.ErrBadWindow):
		status = http.StatusBadRequest
		code = "BAD_WINDOW"
	case errors.Is(err, dashboard.ErrUpstream):
		status = http.StatusBadGateway
		code = "UPSTREAM"
	case errors.Is(err, metrics.ErrMissingField), errors.Is(err, metrics.ErrBadField):
		status = http.StatusBadGateway
		code = "BAD_DATA"
	}

	return c.Status(status).JSON(errorResponse(code, msg))
}

func errorResponse(code, msg string) ErrorResponse {
	var resp ErrorResponse
	resp.Error.Code = code
	resp.Error.Message = msg
	return resp
}
