package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/eic-cefet/seminarios-v2-sub001/core/presence"
	"github.com/eic-cefet/seminarios-v2-sub001/core/registration"
	"github.com/eic-cefet/seminarios-v2-sub001/core/user"
)

type presenceApi struct {
	svc     presence.Service
	regSvc  registration.Service
	userSvc user.Service
}

func registerPresenceAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := presenceApi{
		svc:     opts.PresenceSvc,
		regSvc:  opts.RegistrationSvc,
		userSvc: opts.UserSvc,
	}

	// public scan path
	g.GET("/presence/:token", api.retrieve)
	g.GET("/presence/:token/qr.png", api.qrPNG)

	// checking in requires a logged-in student
	g.POST("/presence/:token/check-in", api.checkIn, jwt)
}

// Handlers

// retrieve tells the scanning client whether the link currently validates;
// inactive and expired come back as distinct errors.
func (api *presenceApi) retrieve(ctx echo.Context) error {
	pl, err := api.svc.ValidateScan(ctx.Request().Context(), ctx.Param("token"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, pl)
}

func (api *presenceApi) qrPNG(ctx echo.Context) error {
	// the QR only encodes the scan URL; render it for inactive and expired
	// links too so it can be printed ahead of the seminar
	pl, err := api.svc.ValidateScan(ctx.Request().Context(), ctx.Param("token"))
	if err != nil {
		cause := errors.Cause(err)
		if cause != presence.ErrLinkInactive && cause != presence.ErrLinkExpired {
			return err
		}
		pl = presence.PresenceLink{UUID: ctx.Param("token")}
	}

	png, err := api.svc.QRPNG(pl)
	if err != nil {
		return errors.Wrap(err, "rendering QR code")
	}
	return ctx.Blob(http.StatusOK, "image/png", png)
}

func (api *presenceApi) checkIn(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	reg, err := api.regSvc.MarkPresent(ctx.Request().Context(), usr, ctx.Param("token"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, reg)
}
