package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/coursebox/backend/core"
	"github.com/coursebox/backend/core/access"
)

var (
	contextTokenKey    = "userToken"
	contextDecisionKey = "access"
)

// Claims represents the authorization claims transmitted via a JWT. Email is the caller identity.
type Claims struct {
	jwt.StandardClaims
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

func NewClaims(conf *core.Config, email, name string) *Claims {
	now := time.Now() // verified against the wall clock by jwt-go
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   core.CleanString(email, true /* lower */),
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Email: core.CleanString(email, true /* lower */),
		Name:  name,
	}
}

func newJWTConfig(secret string) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(secret),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(claims *Claims, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// ParseToken verifies a signed token and returns its claims.
func ParseToken(tokenStr, secret string) (*Claims, error) {
	claims := new(Claims)
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != middleware.AlgorithmHS256 {
			return nil, errors.Errorf("unexpected jwt signing method=%v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "parsing token")
	}
	return claims, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok && claims.Email != "" {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func getContextDecision(ctx echo.Context) (access.Decision, error) {
	if dec, ok := ctx.Get(contextDecisionKey).(access.Decision); ok {
		return dec, nil
	}
	return access.Decision{}, errUnauthorized
}

// callerEmail returns the identity of the authenticated caller.
func callerEmail(ctx echo.Context) string {
	if dec, err := getContextDecision(ctx); err == nil {
		return dec.Email
	}
	if claims, err := getContextClaims(ctx); err == nil {
		return core.CleanString(claims.Email, true /* lower */)
	}
	return ""
}
