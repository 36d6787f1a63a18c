package apis

import (
	"context"
	"errors"
	"net/http"

	"event-rest-api/cmd/event-api/auth"
	"event-rest-api/cmd/event-api/metrics"

	"github.com/labstack/echo/v4"
)

type ITokenServer interface {
	Token(ctx context.Context, req auth.TokenRequest) (auth.TokenResponse, error)
}

// OAuthAPI exposes the token endpoint.
type OAuthAPI struct {
	server ITokenServer
}

func NewOAuthAPI(server ITokenServer) *OAuthAPI {
	return &OAuthAPI{
		server: server,
	}
}

func (a *OAuthAPI) Setup(g *echo.Group, m ...echo.MiddlewareFunc) {
	g.POST("/token", a.token, m...)
}

func (a *OAuthAPI) token(c echo.Context) error {

	ctx := c.Request().Context()

	req := auth.TokenRequest{
		GrantType:    c.FormValue("grant_type"),
		Username:     c.FormValue("username"),
		Password:     c.FormValue("password"),
		RefreshToken: c.FormValue("refresh_token"),
		Scope:        c.FormValue("scope"),
	}

	if id, secret, ok := c.Request().BasicAuth(); ok {
		req.ClientID, req.ClientSecret = id, secret
	} else {
		req.ClientID = c.FormValue("client_id")
		req.ClientSecret = c.FormValue("client_secret")
	}

	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	c.Response().Header().Set("Pragma", "no-cache")

	resp, err := a.server.Token(ctx, req)

	var oerr *auth.OAuthError
	if errors.As(err, &oerr) {
		metrics.TokensIssued.WithLabelValues(req.GrantType, oerr.Code).Inc()
		if oerr.Code == "invalid_client" {
			c.Response().Header().Set(echo.HeaderWWWAuthenticate, `Basic realm="oauth2/client"`)
		}
		return c.JSON(oerr.Status, oerr)
	}
	if err != nil {
		metrics.TokensIssued.WithLabelValues(req.GrantType, "error").Inc()
		return internalError(c, err)
	}

	metrics.TokensIssued.WithLabelValues(req.GrantType, "issued").Inc()
	return c.JSON(http.StatusOK, resp)
}
