package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/trezcool/micportal/core/content"
	"github.com/trezcool/micportal/core/invitation"
	"github.com/trezcool/micportal/core/submission"
)

var (
	filterParam = "filter"
	tabParam    = "tab"
)

// ReviewFilter is the `filter` query param of the review screens.
type ReviewFilter struct {
	Key submission.FilterKey
}

func (f *ReviewFilter) Bind(ctx echo.Context) (err error) {
	f.Key, err = submission.ParseFilterKey(ctx.QueryParam(filterParam))
	return err
}

// InvitationFilter is the `filter` query param of the invitations screen.
type InvitationFilter struct {
	Key invitation.FilterKey
}

func (f *InvitationFilter) Bind(ctx echo.Context) (err error) {
	f.Key, err = invitation.ParseFilterKey(ctx.QueryParam(filterParam))
	return err
}

// ContentTab is the `tab` query param of the content screen.
type ContentTab struct {
	Tab content.Tab
}

func (t *ContentTab) Bind(ctx echo.Context) (err error) {
	t.Tab, err = content.ParseTab(ctx.QueryParam(tabParam))
	return err
}
