package jwt

import (
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// Claims carried by a RoastIt session token. The subject is the
// provider account id, issued by the login front end.
type Claims struct {
	Name     string `json:"name,omitempty"`
	Picture  string `json:"picture,omitempty"`
	Provider string `json:"provider,omitempty"`
	gojwt.RegisteredClaims
}

// Create signs claims with the shared session secret
func Create(claims Claims, secret string) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("empty session secret")
	}
	token := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Issue builds and signs a session token valid for ttl
func Issue(subject, provider, name, picture, audience, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	return Create(Claims{
		Name:     name,
		Picture:  picture,
		Provider: provider,
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   subject,
			Audience:  gojwt.ClaimStrings{audience},
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(ttl)),
		},
	}, secret)
}

// Validate checks the signature, expiry and audience of a session token
func Validate(token, secret, audience string) (*Claims, error) {
	var claims Claims
	_, err := gojwt.ParseWithClaims(
		token,
		&claims,
		func(t *gojwt.Token) (any, error) {
			return []byte(secret), nil
		},
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithAudience(audience),
		gojwt.WithExpirationRequired(),
		gojwt.WithLeeway(30*time.Second),
	)
	if err != nil {
		return nil, err
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("jwt has no subject")
	}

	return &claims, nil
}
