package middleware

import (
	"context"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/nik132-eng/roastit/internal/config"
	"github.com/nik132-eng/roastit/internal/domain"
)

var tracer = otel.Tracer("auth")

// Resolver turns a session token into a caller.
type Resolver interface {
	Resolve(ctx context.Context, token string) (domain.Caller, error)
}

type AuthMiddleware struct {
	auth   Resolver
	config config.Site
}

func NewAuthMiddleware(
	auth Resolver,
	config config.Site,
) *AuthMiddleware {
	return &AuthMiddleware{
		auth:   auth,
		config: config,
	}
}

// sessionToken reads the bearer token, falling back to the session cookie.
func (s *AuthMiddleware) sessionToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get(domain.AuthorizationHeader)
	if authHeader != "" {
		split := strings.Split(authHeader, " ")
		if len(split) != 2 {
			return "", fmt.Errorf("invalid authentication header")
		}
		authType, token := split[0], split[1]
		if authType != "Bearer" {
			return "", fmt.Errorf("only Bearer is acceptable")
		}
		return token, nil
	}

	name := s.config.SessionCookie
	if name == "" {
		name = domain.SessionCookieDefault
	}
	cookie, err := c.Cookie(name)
	if err != nil || cookie.Value == "" {
		return "", nil
	}
	return cookie.Value, nil
}

// IdentifyCaller puts the resolved caller into the request context. A
// request without a valid session proceeds as anonymous.
func (s *AuthMiddleware) IdentifyCaller(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, span := tracer.Start(c.Request().Context(), "Auth.Middleware.IdentifyCaller")
		defer span.End()

		token, err := s.sessionToken(c)
		if err != nil {
			span.RecordError(err)
			goto skipCheckAuthorization
		}

		if token != "" {
			caller, err := s.auth.Resolve(ctx, token)
			if err != nil {
				span.RecordError(errors.Wrap(err, "AuthMiddleware.IdentifyCaller: s.auth.Resolve failed"))
				goto skipCheckAuthorization
			}

			ctx = context.WithValue(ctx, domain.CallerCtxKey, caller)
			span.SetAttributes(attribute.String("UserId", caller.UserID))
		}

	skipCheckAuthorization:
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

// Caller returns the caller resolved for the request, or the anonymous
// caller.
func Caller(ctx context.Context) domain.Caller {
	caller, _ := ctx.Value(domain.CallerCtxKey).(domain.Caller)
	return caller
}
