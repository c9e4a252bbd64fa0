package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	userIDKey contextKey = "auth_user_id"
	nameKey   contextKey = "auth_name"
	rolesKey  contextKey = "auth_roles"
)

// Claims are the staff token claims issued to front-desk users.
type Claims struct {
	Name  string   `json:"name"`
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// JWTConfig configures the bearer-token middleware.
type JWTConfig struct {
	Secret string
}

// JWTMiddleware validates HS256 bearer tokens and stores the staff identity
// on the request context.
func JWTMiddleware(cfg JWTConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "authorization header must be a bearer token")
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
				}
				return []byte(cfg.Secret), nil
			})
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			ctx := c.Request().Context()
			ctx = context.WithValue(ctx, userIDKey, claims.Subject)
			ctx = context.WithValue(ctx, nameKey, claims.Name)
			ctx = context.WithValue(ctx, rolesKey, claims.Roles)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// DevAuthMiddleware grants every request an admin identity. Development only.
func DevAuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			ctx = context.WithValue(ctx, userIDKey, "dev-user")
			ctx = context.WithValue(ctx, nameKey, "Development User")
			ctx = context.WithValue(ctx, rolesKey, []string{"admin"})
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// UserIDFromContext returns the authenticated staff user id, or "".
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// RolesFromContext returns the authenticated user's roles.
func RolesFromContext(ctx context.Context) []string {
	roles, _ := ctx.Value(rolesKey).([]string)
	return roles
}
