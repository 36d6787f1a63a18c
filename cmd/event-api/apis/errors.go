package apis

import (
	"errors"
	"net/http"

	"event-rest-api/cmd/event-api/model"
	"event-rest-api/cmd/event-api/validation"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// ErrorsResponse is the 400 body for rejected event payloads.
type ErrorsResponse struct {
	Errors *validation.Errors `json:"errors"`
	Links  model.Links        `json:"_links"`
}

// NewHTTPErrorHandler renders errors that reach echo as model.BaseResponse.
// Internal error details are logged, never sent to the client.
func NewHTTPErrorHandler() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		logger := zerolog.Ctx(c.Request().Context())

		status := http.StatusInternalServerError
		message := http.StatusText(status)

		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			if m, ok := he.Message.(string); ok {
				message = m
			} else {
				message = http.StatusText(status)
			}
		}

		if status >= http.StatusInternalServerError {
			logger.Error().Err(err).Msg("request failed")
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(status)
		} else {
			werr = c.JSON(status, model.BaseResponse{Message: message})
		}
		if werr != nil {
			logger.Error().Err(werr).Msg("write error response")
		}
	}
}

func internalError(c echo.Context, err error) error {
	zerolog.Ctx(c.Request().Context()).Error().Err(err).Msg("request failed")
	return c.JSON(
		http.StatusInternalServerError,
		model.BaseResponse{
			Message: http.StatusText(http.StatusInternalServerError),
		},
	)
}
