package presenter

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/trace"

	"github.com/nik132-eng/roastit/internal/domain"
)

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// OK wraps a successful response.
func OK(c echo.Context, payload any) error {
	return c.JSON(http.StatusOK, payload)
}

func Created(c echo.Context, payload any) error {
	return c.JSON(http.StatusCreated, payload)
}

func Unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, errorResponse{Message: "Unauthorized"})
}

func BadRequestMessage(c echo.Context, msg string) error {
	slog.DebugContext(c.Request().Context(), "bad request", slog.String("message", msg), slog.String("module", "rest"))
	return c.JSON(http.StatusBadRequest, errorResponse{Message: msg})
}

func NotFound(c echo.Context, msg string) error {
	return c.JSON(http.StatusNotFound, errorResponse{Message: msg})
}

// InternalError answers 500 with msg and the cause.
func InternalError(c echo.Context, msg string, err error) error {
	logInternal(c, msg, err)
	return c.JSON(http.StatusInternalServerError, errorResponse{Message: msg, Error: err.Error()})
}

// InternalErrorMessage answers 500 with msg only.
func InternalErrorMessage(c echo.Context, msg string, err error) error {
	logInternal(c, msg, err)
	return c.JSON(http.StatusInternalServerError, errorResponse{Message: msg})
}

func logInternal(c echo.Context, msg string, err error) {
	ctx := c.Request().Context()
	slog.ErrorContext(
		ctx, msg,
		slog.String("error", err.Error()),
		slog.String("path", c.Path()),
		slog.String("traceID", trace.SpanContextFromContext(ctx).TraceID().String()),
		slog.String("module", "rest"),
	)
}

// Error answers a failed flow according to the kind of err. Failures on the
// server side answer with msg, and with the cause as well when detail is set.
func Error(c echo.Context, err error, msg string, detail bool) error {
	var de *domain.Error
	if errors.As(err, &de) {
		switch de.Kind {
		case domain.KindUnauthorized:
			return Unauthorized(c)
		case domain.KindInvalidInput:
			return BadRequestMessage(c, de.Message)
		case domain.KindNotFound:
			return NotFound(c, capitalize(de.Message))
		}
	}

	if detail {
		return InternalError(c, msg, err)
	}
	return InternalErrorMessage(c, msg, err)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
