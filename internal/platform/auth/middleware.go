package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// DevIdentityHeader selects the acting principal in development mode.
const DevIdentityHeader = "X-ABHA-ID"

type Claims struct {
	jwt.RegisteredClaims
}

type JWTConfig struct {
	Issuer     string
	SigningKey []byte
	Resolver   IdentityResolver
	// Skipper bypasses authentication when it returns true. Defaults to AuthSkipper.
	Skipper func(echo.Context) bool
}

// JWTMiddleware validates an HS256 bearer token whose subject is the
// caller's external id, resolves it to a principal and stores the principal
// on the request context.
func JWTMiddleware(cfg JWTConfig) echo.MiddlewareFunc {
	skipper := cfg.Skipper
	if skipper == nil {
		skipper = AuthSkipper
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skipper(c) {
				return next(c)
			}

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
				return cfg.SigningKey, nil
			}, opts...)
			if err != nil || !token.Valid || claims.Subject == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			return authenticate(c, next, cfg.Resolver, claims.Subject)
		}
	}
}

// DevAuthMiddleware is a permissive middleware for development. The acting
// identity comes from the X-ABHA-ID header, or defaultExternalID when the
// header is absent; it is still resolved through resolver so role gating
// behaves as in production.
func DevAuthMiddleware(resolver IdentityResolver, defaultExternalID string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if AuthSkipper(c) {
				return next(c)
			}
			externalID := c.Request().Header.Get(DevIdentityHeader)
			if externalID == "" {
				externalID = defaultExternalID
			}
			if externalID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized,
					fmt.Sprintf("missing %s header", DevIdentityHeader))
			}
			return authenticate(c, next, resolver, externalID)
		}
	}
}

func authenticate(c echo.Context, next echo.HandlerFunc, resolver IdentityResolver, externalID string) error {
	p, err := resolver.Resolve(c.Request().Context(), externalID)
	if errors.Is(err, ErrUnknownIdentity) {
		return echo.NewHTTPError(http.StatusUnauthorized, "unknown identity")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "identity resolution failed")
	}
	if !ValidRole(p.Role) {
		return echo.NewHTTPError(http.StatusForbidden, "principal has no recognised role")
	}

	c.Set("principal_id", p.ID.String())
	c.SetRequest(c.Request().WithContext(WithPrincipal(c.Request().Context(), p)))
	return next(c)
}

// IssueToken signs an HS256 token for externalID valid for ttl.
func IssueToken(signingKey []byte, issuer, externalID string, ttl time.Duration) (string, error) {
	if len(signingKey) == 0 {
		return "", fmt.Errorf("signing key is required")
	}
	if externalID == "" {
		return "", fmt.Errorf("external id is required")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   externalID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
}

// Me handles GET /api/v1/me.
func Me(c echo.Context) error {
	p, ok := PrincipalFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return c.JSON(http.StatusOK, p)
}
