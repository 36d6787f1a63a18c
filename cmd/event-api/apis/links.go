package apis

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	MIMEApplicationHALJSON = "application/hal+json;charset=UTF-8"

	profileEventsList   = "resources-events-list"
	profileEventsGet    = "resources-events-get"
	profileEventsCreate = "resources-events-create"
	profileEventsUpdate = "resources-events-update"
)

// LinkBuilder renders absolute hrefs. Without a configured base URL the
// scheme and host of the current request are used.
type LinkBuilder struct {
	baseURL string
	docsURL string
}

func NewLinkBuilder(baseURL, docsURL string) LinkBuilder {
	return LinkBuilder{
		baseURL: strings.TrimRight(baseURL, "/"),
		docsURL: docsURL,
	}
}

func (b LinkBuilder) base(c echo.Context) string {
	if b.baseURL != "" {
		return b.baseURL
	}
	return c.Scheme() + "://" + c.Request().Host
}

func (b LinkBuilder) Index(c echo.Context) string {
	return b.base(c) + "/api"
}

func (b LinkBuilder) Events(c echo.Context) string {
	return b.base(c) + "/api/events"
}

func (b LinkBuilder) Event(c echo.Context, id int) string {
	return b.Events(c) + "/" + strconv.Itoa(id)
}

func (b LinkBuilder) Profile(anchor string) string {
	return b.docsURL + "#" + anchor
}

// hal writes body with the HAL media type.
func hal(c echo.Context, status int, body any) error {
	c.Response().Header().Set(echo.HeaderContentType, MIMEApplicationHALJSON)
	return c.JSON(status, body)
}
