package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/micportal/core"
	"github.com/trezcool/micportal/core/invitation"
)

type invitationApi struct {
	deps   *Deps
	logger core.Logger
}

func registerInvitationAPI(g *echo.Group, authed echo.MiddlewareFunc, deps *Deps, logger core.Logger) {
	api := invitationApi{deps: deps, logger: logger}

	ig := g.Group("/invitations", authed, facultyMiddleware())
	ig.GET("", api.list)
	ig.POST("/:id/rsvp", api.rsvp)
}

func (api *invitationApi) service(ctx echo.Context) (*invitation.Service, error) {
	client, _, err := api.deps.portalFor(ctx)
	if err != nil {
		return nil, err
	}
	return invitation.NewService(client, api.deps.Validate, api.deps.Guard, api.logger), nil
}

// Handlers

func (api *invitationApi) list(ctx echo.Context) error {
	var filter InvitationFilter
	if err := filter.Bind(ctx); err != nil {
		return err
	}
	svc, err := api.service(ctx)
	if err != nil {
		return err
	}
	listing, err := svc.List(ctx.Request().Context(), filter.Key, invitation.NowFunc())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, listing)
}

func (api *invitationApi) rsvp(ctx echo.Context) error {
	var data invitation.RSVPRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RSVPRequest")
	}
	action, err := invitation.ParseAction(string(data.Status))
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "status", Error: "must be accepted or declined"})
	}
	svc, err := api.service(ctx)
	if err != nil {
		return err
	}
	item, err := svc.Respond(ctx.Request().Context(), ctx.Param("id"), action)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, item)
}
