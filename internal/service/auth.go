package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/nik132-eng/roastit/internal/config"
	"github.com/nik132-eng/roastit/internal/domain"
	"github.com/nik132-eng/roastit/internal/usecase"
	"github.com/nik132-eng/roastit/jwt"
)

var tracer = otel.Tracer("auth")

const callerCacheTTL = 5 * time.Minute

// userNamespace scopes the derived user ids, so the same provider account
// always maps to the same user.
var userNamespace = uuid.MustParse("2f5c0d5e-5b8a-4b51-9a54-6a4f7c1e3d21")

type AuthService struct {
	site  config.Site
	users usecase.UserRepository
	cache *cache.Cache
}

func NewAuthService(
	site config.Site,
	users usecase.UserRepository,
) *AuthService {
	return &AuthService{
		site:  site,
		users: users,
		cache: cache.New(callerCacheTTL, 10*time.Minute),
	}
}

// UserID derives the stable user id of a provider account.
func UserID(provider, accountID string) string {
	return uuid.NewSHA1(userNamespace, []byte(provider+":"+accountID)).String()
}

// Resolve turns a session token into the caller it identifies. The user is
// created on first sight.
func (s *AuthService) Resolve(ctx context.Context, token string) (domain.Caller, error) {
	ctx, span := tracer.Start(ctx, "Auth.Service.Resolve")
	defer span.End()

	if x, found := s.cache.Get(token); found {
		caller := x.(domain.Caller)
		span.SetAttributes(attribute.String("UserId", caller.UserID), attribute.Bool("Cached", true))
		return caller, nil
	}

	claims, err := jwt.Validate(token, s.site.SessionSecret, s.site.FQDN)
	if err != nil {
		span.RecordError(errors.Wrap(err, "jwt validation failed"))
		return domain.Caller{}, domain.Unauthorized("Unauthorized")
	}

	user := domain.User{
		ID:                UserID(claims.Provider, claims.Subject),
		Provider:          claims.Provider,
		ProviderAccountID: claims.Subject,
	}
	if claims.Name != "" {
		user.Name = &claims.Name
	}
	if claims.Picture != "" {
		user.Image = &claims.Picture
	}

	user, err = s.users.Upsert(ctx, user)
	if err != nil {
		err = errors.Wrap(err, "AuthService.Resolve: upsert user failed")
		span.RecordError(err)
		return domain.Caller{}, err
	}

	caller := domain.Caller{
		UserID: user.ID,
		Name:   user.Name,
		Image:  user.Image,
	}

	ttl := callerCacheTTL
	if claims.ExpiresAt != nil {
		if remaining := time.Until(claims.ExpiresAt.Time); remaining < ttl {
			ttl = remaining
		}
	}
	if ttl > 0 {
		s.cache.Set(token, caller, ttl)
	}

	span.SetAttributes(attribute.String("UserId", caller.UserID))
	return caller, nil
}
