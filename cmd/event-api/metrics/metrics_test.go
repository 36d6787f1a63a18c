package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware_CountsByRoutePattern(t *testing.T) {
	e := echo.New()
	e.Use(Middleware())
	e.GET("/api/events/:id", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	e.PUT("/api/events/:id", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusBadRequest, "bad")
	})

	ok := HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/events/:id", "200")
	bad := HTTPRequestsTotal.WithLabelValues(http.MethodPut, "/api/events/:id", "400")
	okBefore := testutil.ToFloat64(ok)
	badBefore := testutil.ToFloat64(bad)

	for _, id := range []string{"1", "2"} {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/events/"+id, nil))
	}
	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPut, "/api/events/1", nil))

	assert.Equal(t, okBefore+2, testutil.ToFloat64(ok))
	assert.Equal(t, badBefore+1, testutil.ToFloat64(bad))
	assert.Equal(t, float64(0), testutil.ToFloat64(HTTPRequestsInFlight))
}

func TestHandler_ExposesRegistry(t *testing.T) {
	EventsCreated.WithLabelValues("api").Inc()

	e := echo.New()
	e.GET("/metrics", Handler())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `event_api_events_created_total{source="api"}`))
	assert.Contains(t, body, "go_goroutines")
}
