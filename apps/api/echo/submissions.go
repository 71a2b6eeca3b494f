package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/micportal/core"
	"github.com/trezcool/micportal/core/auth"
	"github.com/trezcool/micportal/core/submission"
)

type (
	submissionApi struct {
		deps   *Deps
		logger core.Logger
	}

	assignFacultyRequest struct {
		FacultyID string `json:"faculty_id"`
	}

	feedbackRequest struct {
		Feedback        string `json:"feedback"`
		OverallFeedback string `json:"overall_feedback"`
	}
)

func registerSubmissionAPI(g *echo.Group, authed echo.MiddlewareFunc, deps *Deps, logger core.Logger) {
	api := submissionApi{deps: deps, logger: logger}

	sg := g.Group("/submissions", authed, roleMiddleware(auth.RoleAdmin, auth.RoleFaculty))
	sg.GET("", api.list)
	sg.GET("/:id", api.retrieve)
	sg.POST("/:id/decision", api.decide)
	sg.POST("/:id/feedback", api.feedback, facultyMiddleware())

	sg.GET("/:id/faculty", api.assigned, adminMiddleware())
	sg.POST("/:id/faculty", api.assign, adminMiddleware())
	sg.DELETE("/:id/faculty/:facultyId", api.unassign, adminMiddleware())
	sg.PUT("/:id/tags", api.tags, adminMiddleware())
}

func (api *submissionApi) service(ctx echo.Context) (*submission.Service, error) {
	client, sess, err := api.deps.portalFor(ctx)
	if err != nil {
		return nil, err
	}
	return submission.NewService(client, sess.Role(), api.deps.Validate, api.deps.Guard, api.logger), nil
}

// Handlers

func (api *submissionApi) list(ctx echo.Context) error {
	var filter ReviewFilter
	if err := filter.Bind(ctx); err != nil {
		return err
	}
	svc, err := api.service(ctx)
	if err != nil {
		return err
	}
	listing, err := svc.List(ctx.Request().Context(), filter.Key)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, listing)
}

func (api *submissionApi) retrieve(ctx echo.Context) error {
	svc, err := api.service(ctx)
	if err != nil {
		return err
	}
	item, err := svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, item)
}

func (api *submissionApi) decide(ctx echo.Context) error {
	var data submission.DecisionRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to DecisionRequest")
	}
	svc, err := api.service(ctx)
	if err != nil {
		return err
	}
	item, err := svc.Decide(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, item)
}

func (api *submissionApi) feedback(ctx echo.Context) error {
	var data feedbackRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to feedbackRequest")
	}
	text := data.Feedback
	if text == "" {
		text = data.OverallFeedback
	}
	svc, err := api.service(ctx)
	if err != nil {
		return err
	}
	if err = svc.Feedback(ctx.Request().Context(), ctx.Param("id"), text); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *submissionApi) assigned(ctx echo.Context) error {
	svc, err := api.service(ctx)
	if err != nil {
		return err
	}
	assignments, err := svc.AssignedFaculty(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, nonNil(assignments))
}

func (api *submissionApi) assign(ctx echo.Context) error {
	var data assignFacultyRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to assignFacultyRequest")
	}
	svc, err := api.service(ctx)
	if err != nil {
		return err
	}
	assignments, err := svc.AssignFaculty(ctx.Request().Context(), ctx.Param("id"), data.FacultyID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, nonNil(assignments))
}

func (api *submissionApi) unassign(ctx echo.Context) error {
	svc, err := api.service(ctx)
	if err != nil {
		return err
	}
	assignments, err := svc.RemoveFaculty(ctx.Request().Context(), ctx.Param("id"), ctx.Param("facultyId"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, nonNil(assignments))
}

func (api *submissionApi) tags(ctx echo.Context) error {
	var data submission.TagsUpdate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TagsUpdate")
	}
	svc, err := api.service(ctx)
	if err != nil {
		return err
	}
	item, err := svc.UpdateTags(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, item)
}

// nonNil lets empty lists render as `[]`.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
