package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/micportal/core/content"
)

type contentApi struct {
	deps *Deps
}

func registerContentAPI(g *echo.Group, authed echo.MiddlewareFunc, deps *Deps) {
	api := contentApi{deps: deps}

	cg := g.Group("/contents", authed, adminMiddleware())
	cg.GET("", api.list)
	cg.POST("", api.create)
	cg.PUT("/:id", api.update)
	cg.DELETE("/:id", api.destroy)
}

func (api *contentApi) service(ctx echo.Context) (*content.Service, error) {
	client, _, err := api.deps.portalFor(ctx)
	if err != nil {
		return nil, err
	}
	return content.NewService(client, api.deps.Validate, api.deps.Guard), nil
}

// Handlers

func (api *contentApi) list(ctx echo.Context) error {
	var tab ContentTab
	if err := tab.Bind(ctx); err != nil {
		return err
	}
	svc, err := api.service(ctx)
	if err != nil {
		return err
	}
	listing, err := svc.List(ctx.Request().Context(), tab.Tab)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, listing)
}

func (api *contentApi) create(ctx echo.Context) error {
	var data content.Input
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to content.Input")
	}
	svc, err := api.service(ctx)
	if err != nil {
		return err
	}
	listing, err := svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, listing)
}

func (api *contentApi) update(ctx echo.Context) error {
	var data content.Input
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to content.Input")
	}
	svc, err := api.service(ctx)
	if err != nil {
		return err
	}
	listing, err := svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, listing)
}

// destroy deletes a block and answers with the refreshed `tab` the client was showing.
func (api *contentApi) destroy(ctx echo.Context) error {
	var tab ContentTab
	if err := tab.Bind(ctx); err != nil {
		return err
	}
	svc, err := api.service(ctx)
	if err != nil {
		return err
	}
	listing, err := svc.Delete(ctx.Request().Context(), ctx.Param("id"), tab.Tab)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, listing)
}
