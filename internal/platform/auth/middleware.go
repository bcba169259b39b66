// Package auth resolves the clinician session behind each request. The
// session carries the provider and encounter role that OpenMRS stamps on
// every encounter the BFF writes.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

type contextKey string

const sessionKey contextKey = "kpp_session"

// Session is the authenticated user as seen by the workspace services.
type Session struct {
	UserID            string
	ProviderUUID      string
	EncounterRoleUUID string
	LocationUUID      string
	Roles             []string
}

// HasRole reports whether the session carries role.
func (s Session) HasRole(role string) bool {
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Claims is the token body minted by the OpenMRS login bridge.
type Claims struct {
	jwt.RegisteredClaims
	ProviderUUID      string   `json:"provider_uuid"`
	EncounterRoleUUID string   `json:"encounter_role_uuid"`
	LocationUUID      string   `json:"location_uuid,omitempty"`
	Roles             []string `json:"roles"`
}

type JWTConfig struct {
	Issuer     string
	SigningKey []byte
	Skipper    func(echo.Context) bool
	// Defaults fill provider and encounter role when the token omits them.
	Defaults Session
}

// WithSession stores s on ctx.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFromContext returns the session set by the middleware.
func SessionFromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey).(Session)
	return s, ok
}

func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
	}
	return strings.TrimSpace(parts[1]), nil
}

func parseSession(cfg JWTConfig, tokenStr string) (Session, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return cfg.SigningKey, nil
	}, opts...)
	if err != nil || !token.Valid {
		return Session{}, echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}
	if claims.Subject == "" {
		return Session{}, echo.NewHTTPError(http.StatusUnauthorized, "token has no subject")
	}

	s := Session{
		UserID:            claims.Subject,
		ProviderUUID:      claims.ProviderUUID,
		EncounterRoleUUID: claims.EncounterRoleUUID,
		LocationUUID:      claims.LocationUUID,
		Roles:             claims.Roles,
	}
	if s.ProviderUUID == "" {
		s.ProviderUUID = cfg.Defaults.ProviderUUID
	}
	if s.EncounterRoleUUID == "" {
		s.EncounterRoleUUID = cfg.Defaults.EncounterRoleUUID
	}
	return s, nil
}

// SessionMiddleware requires an HS256 bearer token and stores the resulting
// Session on the request context.
func SessionMiddleware(cfg JWTConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Skipper != nil && cfg.Skipper(c) {
				return next(c)
			}
			tokenStr, err := bearerToken(c)
			if err != nil {
				return err
			}
			s, err := parseSession(cfg, tokenStr)
			if err != nil {
				return err
			}
			c.SetRequest(c.Request().WithContext(WithSession(c.Request().Context(), s)))
			return next(c)
		}
	}
}

// DevSessionMiddleware lets requests without a token run as cfg.Defaults.
// A token, when present and a signing key is configured, is still verified.
func DevSessionMiddleware(cfg JWTConfig) echo.MiddlewareFunc {
	strict := SessionMiddleware(cfg)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		verified := strict(next)
		return func(c echo.Context) error {
			if c.Request().Header.Get("Authorization") != "" && len(cfg.SigningKey) > 0 {
				return verified(c)
			}
			s := cfg.Defaults
			if s.UserID == "" {
				s.UserID = "dev-user"
			}
			c.SetRequest(c.Request().WithContext(WithSession(c.Request().Context(), s)))
			return next(c)
		}
	}
}

// RequireSession returns the session or a 401 for handlers mounted outside
// the middleware.
func RequireSession(c echo.Context) (Session, error) {
	s, ok := SessionFromContext(c.Request().Context())
	if !ok {
		return Session{}, echo.NewHTTPError(http.StatusUnauthorized, "no session")
	}
	return s, nil
}
