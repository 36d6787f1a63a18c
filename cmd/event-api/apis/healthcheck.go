package apis

import (
	"net/http"

	"event-rest-api/cmd/event-api/model"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type HealthCheckAPI struct {
	db *gorm.DB
}

func NewHealthCheckAPI(db *gorm.DB) *HealthCheckAPI {
	return &HealthCheckAPI{
		db: db,
	}
}

func (a *HealthCheckAPI) Setup(g *echo.Group) {
	g.GET("/healthz", a.healthCheck)
}

func (a *HealthCheckAPI) healthCheck(c echo.Context) error {

	ctx := c.Request().Context()

	db, err := a.db.DB()
	if err != nil {
		return a.unhealthy(c, err)
	}

	err = db.PingContext(ctx)
	if err != nil {
		return a.unhealthy(c, err)
	}

	return c.JSON(
		http.StatusOK,
		model.BaseResponse{
			Message: "healthy",
		},
	)
}

func (a *HealthCheckAPI) unhealthy(c echo.Context, err error) error {
	zerolog.Ctx(c.Request().Context()).Error().Err(err).Msg("database ping failed")
	return c.JSON(
		http.StatusServiceUnavailable,
		model.BaseResponse{
			Message: "unhealthy",
		},
	)
}
