package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	UserIDKey contextKey = "user_id"
	ClaimsKey contextKey = "claims"
)

// SubjectChecker reports whether the user a token was issued to still exists.
type SubjectChecker interface {
	SubjectExists(ctx context.Context, subject string) (bool, error)
}

// JWTConfig wires the middleware to token parsing, revocation and the user lookup.
type JWTConfig struct {
	Issuer      *TokenIssuer
	Revocations RevocationStore
	Subjects    SubjectChecker
}

// JWTMiddleware authenticates requests using a bearer token from the
// Authorization header or, failing that, the access_token cookie.
func JWTMiddleware(cfg JWTConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenStr, ok := bearerToken(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
			}

			claims, err := cfg.Issuer.Parse(tokenStr)
			if err != nil {
				return echo.NewHTTPError(http.StatusForbidden, "Could not validate credentials")
			}

			ctx := c.Request().Context()
			if cfg.Revocations != nil {
				revoked, err := cfg.Revocations.IsRevoked(ctx, claims.ID)
				if err != nil {
					return echo.NewHTTPError(http.StatusInternalServerError, "token revocation check failed").SetInternal(err)
				}
				if revoked {
					return echo.NewHTTPError(http.StatusForbidden, "Could not validate credentials")
				}
			}

			if cfg.Subjects != nil {
				exists, err := cfg.Subjects.SubjectExists(ctx, claims.Subject)
				if err != nil {
					return echo.NewHTTPError(http.StatusInternalServerError, "user lookup failed").SetInternal(err)
				}
				if !exists {
					return echo.NewHTTPError(http.StatusNotFound, "User not found")
				}
			}

			ctx = context.WithValue(ctx, UserIDKey, claims.Subject)
			ctx = context.WithValue(ctx, ClaimsKey, claims)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

func bearerToken(c echo.Context) (string, bool) {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); h != "" {
		return splitBearer(h)
	}
	if ck, err := c.Cookie(TokenCookieName); err == nil && ck.Value != "" {
		return splitBearer(ck.Value)
	}
	return "", false
}

func splitBearer(v string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(v), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// UserIDFromContext returns the authenticated subject, or "" outside a protected route.
func UserIDFromContext(ctx context.Context) string {
	uid, _ := ctx.Value(UserIDKey).(string)
	return uid
}

// ClaimsFromContext returns the parsed claims of the presented token.
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(ClaimsKey).(*Claims)
	return claims
}
