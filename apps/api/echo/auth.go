package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/micportal/core"
	"github.com/trezcool/micportal/core/auth"
	"github.com/trezcool/micportal/services/portal"
)

var errAuthenticationFailed = echo.NewHTTPError(http.StatusBadRequest, "authentication failed")

type authApi struct {
	deps *Deps
}

func registerAuthAPI(g *echo.Group, deps *Deps) {
	api := authApi{deps: deps}
	g.POST("/login", api.login)
	g.GET("/me", api.me, sessionMiddleware)
}

// Handlers

func (api *authApi) login(ctx echo.Context) error {
	var data auth.LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	data.Email = core.CleanString(data.Email)
	if err := api.deps.Validate.Struct(data); err != nil {
		return err
	}

	resp, err := api.deps.Portal.Login(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == core.ErrUnauthenticated {
			return errAuthenticationFailed
		}
		return errors.Wrap(err, "logging in")
	}
	if resp.Role != auth.RoleAdmin && resp.Role != auth.RoleFaculty {
		return errHttpForbidden
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (api *authApi) me(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sess.Claims)
}

// portalFor returns the portal client of the request's user.
func (d *Deps) portalFor(ctx echo.Context) (*portal.Client, auth.Session, error) {
	sess, err := getContextSession(ctx)
	if err != nil {
		return nil, sess, err
	}
	return d.Portal.WithToken(portal.StaticToken(sess.Token)), sess, nil
}
