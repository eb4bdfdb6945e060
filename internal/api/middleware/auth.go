package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/spendline/expense-approval/internal/core/domain"
)

const (
	principalKey = "principal"

	// queryTokenParam carries the bearer token for clients that cannot set
	// headers, such as browser EventSource connections.
	queryTokenParam = "access_token"
)

// PrincipalResolver maps a verified identity to its tenant membership.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, identity domain.ExternalIdentity) (domain.Principal, error)
}

// Auth validates the JWT, resolves the caller to a Principal and stores it
// in the echo context. Resolution failures are returned unchanged so the
// error handler can render them.
func Auth(jwtSecret string, resolver PrincipalResolver, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := bearerToken(c)
			if err != nil {
				return err
			}

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
				if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(jwtSecret), nil
			}, jwt.WithExpirationRequired())
			if err != nil || !tkn.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			subject, _ := claims.GetSubject()
			email, _ := claims["email"].(string)
			if subject == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "token missing subject")
			}

			p, err := resolver.ResolvePrincipal(c.Request().Context(), domain.ExternalIdentity{Subject: subject, Email: email})
			if err != nil {
				log.Debug().Err(err).Str("subject", subject).Msg("principal resolution failed")
				return err
			}

			SetPrincipal(c, p)
			return next(c)
		}
	}
}

func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		if c.Request().Method == http.MethodGet {
			if t := c.QueryParam(queryTokenParam); t != "" {
				return t, nil
			}
		}
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
	}
	return parts[1], nil
}

// SetPrincipal stores p in the request context.
func SetPrincipal(c echo.Context, p domain.Principal) {
	c.Set(principalKey, p)
}

// PrincipalFrom returns the principal stored by Auth.
func PrincipalFrom(c echo.Context) (domain.Principal, bool) {
	p, ok := c.Get(principalKey).(domain.Principal)
	return p, ok
}
