package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/authz"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/model"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/pkg/jwtutil"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/pkg/logger"
)

const principalKey = "principal"

// JWTAuthMiddleware validates the bearer token and stores the rebuilt
// authorization principal in the Echo context.
func JWTAuthMiddleware(jwtUtil *jwtutil.JWTUtil) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				log.Warn("Missing authorization header")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization header"})
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				log.Warn("Invalid authorization header format")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization header format"})
			}

			claims, err := jwtUtil.ValidateToken(parts[1])
			if err != nil {
				log.Warn("Invalid or expired token", zap.Error(err))
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}

			role, ok := model.ParseRole(claims.Role)
			if !ok {
				log.Warn("Token carries unknown role", zap.String("role", claims.Role))
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			c.Set("user", claims)
			c.Set(principalKey, authz.Principal{
				UserID: claims.UserID,
				Role:   role,
				OrgID:  claims.OrgID,
			})

			log.Debug("JWT token validated",
				zap.Uint("user_id", claims.UserID),
				zap.String("email", claims.Email))

			return next(c)
		}
	}
}

// PrincipalFromEcho returns the principal stored by JWTAuthMiddleware.
func PrincipalFromEcho(c echo.Context) (authz.Principal, bool) {
	p, ok := c.Get(principalKey).(authz.Principal)
	return p, ok
}

// RequireOrgContext rejects requests from principals with no organization.
// Superadmin passes; every cross-tenant path re-checks through the gate.
func RequireOrgContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, ok := PrincipalFromEcho(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}
		if p.Role != model.RoleSuperAdmin && p.OrgID == nil {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "organization context required"})
		}
		return next(c)
	}
}
