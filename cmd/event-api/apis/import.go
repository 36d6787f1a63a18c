package apis

import (
	"context"
	"io"
	"net/http"

	"event-rest-api/cmd/event-api/model"

	"github.com/labstack/echo/v4"
)

type IEventImporter interface {
	Import(ctx context.Context, r io.Reader, managerID *int) (model.ImportResponse, error)
}

// ImportAPI bulk creates events from an uploaded CSV file.
type ImportAPI struct {
	importer IEventImporter
	links    LinkBuilder
}

func NewImportAPI(importer IEventImporter, links LinkBuilder) *ImportAPI {
	return &ImportAPI{
		importer: importer,
		links:    links,
	}
}

func (a *ImportAPI) Setup(g *echo.Group, m ...echo.MiddlewareFunc) {
	g.POST("/events/import", a.importEvents, m...)
}

func (a *ImportAPI) importEvents(c echo.Context) error {

	ctx := c.Request().Context()

	csvfile, err := c.FormFile("csvfile")
	if err != nil {
		return c.JSON(
			http.StatusBadRequest,
			model.BaseResponse{
				Message: err.Error(),
			},
		)
	}

	cf, err := csvfile.Open()
	if err != nil {
		return c.JSON(
			http.StatusBadRequest,
			model.BaseResponse{
				Message: err.Error(),
			},
		)
	}

	defer cf.Close()

	var managerID *int
	if claims, ok := ClaimsFrom(c); ok && claims.AccountID != 0 {
		id := claims.AccountID
		managerID = &id
	}

	resp, err := a.importer.Import(ctx, cf, managerID)
	if err != nil {
		return c.JSON(
			http.StatusBadRequest,
			model.BaseResponse{
				Message: err.Error(),
			},
		)
	}

	resp.Links = model.Links{}.
		Add("query-events", a.links.Events(c)).
		Add("index", a.links.Index(c))

	return hal(c, http.StatusOK, resp)
}
