package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/micportal/core/content"
)

type siteApi struct {
	site *content.Site
}

// registerSiteAPI serves the public site listings; no session is required.
func registerSiteAPI(g *echo.Group, deps *Deps) {
	api := siteApi{site: content.NewSite(deps.Portal)}

	sg := g.Group("/site")
	sg.GET("/about", api.about)
	for _, sec := range content.Sections {
		sg.GET("/"+string(sec), api.section(sec))
	}
}

// Handlers

func (api *siteApi) section(sec content.Section) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		listing, err := api.site.Section(ctx.Request().Context(), sec)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, listing)
	}
}

func (api *siteApi) about(ctx echo.Context) error {
	about, err := api.site.About(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, about)
}
