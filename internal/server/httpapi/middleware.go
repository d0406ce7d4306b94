package httpapi

import (
	"context"
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/dmitrijs2005/booklib/internal/common"
	"github.com/dmitrijs2005/booklib/internal/server/auth"
	"github.com/dmitrijs2005/booklib/internal/server/models"
)

// ContextUserKey is the echo.Context key holding the authenticated *models.User.
const ContextUserKey = "user"

var (
	errNoToken      = common.NewError(common.ErrUnauthenticated, "Access denied. No token provided.")
	errInvalidToken = common.NewError(common.ErrUnauthenticated, "Invalid token.")
)

// TokenVerifier resolves a bearer token to a user id.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// UserFinder loads the user a verified token points at.
type UserFinder interface {
	FindUser(ctx context.Context, userID string) (*models.User, error)
}

// RequireUser gates a route on a valid bearer token that belongs to an
// existing user. On success the user id is attached to the request context
// (see auth.UserIDFromContext) and the user to the echo context under
// ContextUserKey.
func RequireUser(tokens TokenVerifier, users UserFinder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request().Header.Get(common.AuthorizationHeaderName))
			if !ok {
				return errNoToken
			}

			userID, err := tokens.Verify(token)
			if err != nil {
				return errInvalidToken
			}

			user, err := users.FindUser(c.Request().Context(), userID)
			if err != nil {
				if errors.Is(err, common.ErrNotFound) {
					return errInvalidToken
				}
				return err
			}

			req := c.Request()
			c.SetRequest(req.WithContext(auth.WithUserID(req.Context(), user.ID)))
			c.Set(ContextUserKey, user)

			return next(c)
		}
	}
}

func bearerToken(value string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(value), " ")
	if !found || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", false
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}

	return token, true
}

// requestLogger logs one line per request; the user id is included when the
// request was authenticated. Headers and bodies are never logged.
func (s *Server) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURIPath:  true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			args := []any{
				"method", v.Method,
				"path", v.URIPath,
				"status", v.Status,
				"latency", v.Latency.String(),
				"remote_ip", v.RemoteIP,
			}
			if user, ok := c.Get(ContextUserKey).(*models.User); ok {
				args = append(args, "user_id", user.ID)
			}
			s.logger.Info(c.Request().Context(), "request", args...)
			return nil
		},
	})
}
