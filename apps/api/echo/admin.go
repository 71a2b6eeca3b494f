package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/micportal/core/store"
	"github.com/trezcool/micportal/core/submission"
)

type (
	adminApi struct {
		deps *Deps
	}

	listResponse[T any] struct {
		State store.State `json:"state"`
		Items []T         `json:"items"`
	}
)

func registerAdminAPI(g *echo.Group, authed echo.MiddlewareFunc, deps *Deps) {
	api := adminApi{deps: deps}

	wg := g.Group("/work", authed, adminMiddleware())
	wg.GET("", api.work)
	wg.PUT("/:id", api.updateWork)
	wg.DELETE("/:id", api.deleteWork)

	cg := g.Group("/companies", authed, adminMiddleware())
	cg.GET("", api.companies)
	cg.POST("", api.addCompany)
	cg.DELETE("/:id", api.deleteCompany)

	fg := g.Group("/faculty", authed, adminMiddleware())
	fg.GET("", api.faculty)
	fg.POST("", api.createFaculty)
	fg.PUT("/:id", api.updateFaculty)
	fg.DELETE("/:id", api.deleteFaculty)
}

func (api *adminApi) service(ctx echo.Context) (*submission.AdminService, error) {
	client, _, err := api.deps.portalFor(ctx)
	if err != nil {
		return nil, err
	}
	return submission.NewAdminService(client, api.deps.Validate, api.deps.Guard), nil
}

func renderSnapshot[T any](ctx echo.Context, code int, snap store.Snapshot[T], err error) error {
	if err != nil {
		return err
	}
	return ctx.JSON(code, listResponse[T]{State: snap.State, Items: nonNil(snap.Items)})
}

// Handlers

func (api *adminApi) work(ctx echo.Context) error {
	svc, err := api.service(ctx)
	if err != nil {
		return err
	}
	snap, err := svc.Work(ctx.Request().Context())
	return renderSnapshot(ctx, http.StatusOK, snap, err)
}

func (api *adminApi) updateWork(ctx echo.Context) error {
	var data submission.WorkUpdate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to WorkUpdate")
	}
	svc, err := api.service(ctx)
	if err != nil {
		return err
	}
	snap, err := svc.UpdateWork(ctx.Request().Context(), ctx.Param("id"), data)
	return renderSnapshot(ctx, http.StatusOK, snap, err)
}

func (api *adminApi) deleteWork(ctx echo.Context) error {
	svc, err := api.service(ctx)
	if err != nil {
		return err
	}
	snap, err := svc.DeleteWork(ctx.Request().Context(), ctx.Param("id"))
	return renderSnapshot(ctx, http.StatusOK, snap, err)
}

func (api *adminApi) companies(ctx echo.Context) error {
	svc, err := api.service(ctx)
	if err != nil {
		return err
	}
	snap, err := svc.Companies(ctx.Request().Context())
	return renderSnapshot(ctx, http.StatusOK, snap, err)
}

func (api *adminApi) addCompany(ctx echo.Context) error {
	var data submission.NewCompany
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCompany")
	}
	svc, err := api.service(ctx)
	if err != nil {
		return err
	}
	snap, err := svc.AddCompany(ctx.Request().Context(), data)
	return renderSnapshot(ctx, http.StatusCreated, snap, err)
}

func (api *adminApi) deleteCompany(ctx echo.Context) error {
	svc, err := api.service(ctx)
	if err != nil {
		return err
	}
	snap, err := svc.DeleteCompany(ctx.Request().Context(), ctx.Param("id"))
	return renderSnapshot(ctx, http.StatusOK, snap, err)
}

func (api *adminApi) faculty(ctx echo.Context) error {
	svc, err := api.service(ctx)
	if err != nil {
		return err
	}
	snap, err := svc.Faculty(ctx.Request().Context())
	return renderSnapshot(ctx, http.StatusOK, snap, err)
}

func (api *adminApi) createFaculty(ctx echo.Context) error {
	var data submission.NewFaculty
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewFaculty")
	}
	svc, err := api.service(ctx)
	if err != nil {
		return err
	}
	snap, err := svc.CreateFaculty(ctx.Request().Context(), data)
	return renderSnapshot(ctx, http.StatusCreated, snap, err)
}

func (api *adminApi) updateFaculty(ctx echo.Context) error {
	var data submission.UpdateFaculty
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateFaculty")
	}
	svc, err := api.service(ctx)
	if err != nil {
		return err
	}
	snap, err := svc.UpdateFaculty(ctx.Request().Context(), ctx.Param("id"), data)
	return renderSnapshot(ctx, http.StatusOK, snap, err)
}

func (api *adminApi) deleteFaculty(ctx echo.Context) error {
	svc, err := api.service(ctx)
	if err != nil {
		return err
	}
	snap, err := svc.DeleteFaculty(ctx.Request().Context(), ctx.Param("id"))
	return renderSnapshot(ctx, http.StatusOK, snap, err)
}
