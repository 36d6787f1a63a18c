package apis

import (
	"net/http"

	"event-rest-api/cmd/event-api/model"

	"github.com/labstack/echo/v4"
)

// IndexAPI serves the discovery document.
type IndexAPI struct {
	links LinkBuilder
}

func NewIndexAPI(links LinkBuilder) *IndexAPI {
	return &IndexAPI{
		links: links,
	}
}

func (a *IndexAPI) Setup(g *echo.Group) {
	g.GET("", a.index)
}

func (a *IndexAPI) index(c echo.Context) error {
	return hal(c, http.StatusOK, model.IndexResponse{
		Links: model.Links{}.Add("events", a.links.Events(c)),
	})
}
