package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/micportal/core/auth"
)

const contextSessionKey = "session"

// sessionMiddleware decodes the bearer token of the request; its signature is checked by the portal on each call.
func sessionMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		header := ctx.Request().Header.Get(echo.HeaderAuthorization)
		if !strings.HasPrefix(header, "Bearer ") {
			return errUnauthorized
		}
		sess, err := auth.NewSession(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return errors.Wrap(err, "reading bearer token")
		}
		ctx.Set(contextSessionKey, sess)
		return next(ctx)
	}
}

func roleMiddleware(roles ...auth.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			sess, err := getContextSession(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context session")
			}
			for _, role := range roles {
				if sess.Role() == role {
					return next(ctx)
				}
			}
			return errHttpForbidden
		}
	}
}

func adminMiddleware() echo.MiddlewareFunc   { return roleMiddleware(auth.RoleAdmin) }
func facultyMiddleware() echo.MiddlewareFunc { return roleMiddleware(auth.RoleFaculty) }

func getContextSession(ctx echo.Context) (auth.Session, error) {
	if sess, ok := ctx.Get(contextSessionKey).(auth.Session); ok {
		return sess, nil
	}
	return auth.Session{}, errUnauthorized
}
