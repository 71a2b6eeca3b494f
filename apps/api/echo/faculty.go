package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/micportal/core"
	"github.com/trezcool/micportal/core/submission"
)

type facultyApi struct {
	deps   *Deps
	logger core.Logger
}

func registerFacultyAPI(g *echo.Group, authed echo.MiddlewareFunc, deps *Deps, logger core.Logger) {
	api := facultyApi{deps: deps, logger: logger}

	g.GET("/pipeline", api.pipeline)

	g.GET("/incubation", api.portfolio, authed, facultyMiddleware())
	g.POST("/incubation/:id", api.updateIncubation, authed, facultyMiddleware())
	g.GET("/progress", api.progress, authed, facultyMiddleware())
	g.GET("/profile", api.profile, authed, facultyMiddleware())
}

func (api *facultyApi) service(ctx echo.Context) (*submission.Service, error) {
	client, sess, err := api.deps.portalFor(ctx)
	if err != nil {
		return nil, err
	}
	return submission.NewService(client, sess.Role(), api.deps.Validate, api.deps.Guard, api.logger), nil
}

// Handlers

func (api *facultyApi) pipeline(ctx echo.Context) error {
	p, err := submission.LoadPipeline(ctx.Request().Context(), api.deps.Portal)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *facultyApi) portfolio(ctx echo.Context) error {
	svc, err := api.service(ctx)
	if err != nil {
		return err
	}
	pf, err := svc.Portfolio(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, pf)
}

func (api *facultyApi) updateIncubation(ctx echo.Context) error {
	var data submission.IncubationUpdate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to IncubationUpdate")
	}
	svc, err := api.service(ctx)
	if err != nil {
		return err
	}
	report, err := svc.UpdateIncubation(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, report)
}

func (api *facultyApi) progress(ctx echo.Context) error {
	svc, err := api.service(ctx)
	if err != nil {
		return err
	}
	report, err := svc.Progress(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, report)
}

func (api *facultyApi) profile(ctx echo.Context) error {
	svc, err := api.service(ctx)
	if err != nil {
		return err
	}
	p, err := svc.Profile(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, p)
}
