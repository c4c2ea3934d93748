package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/eic-cefet/seminarios-v2-sub001/core/registration"
	"github.com/eic-cefet/seminarios-v2-sub001/core/user"
)

type registrationApi struct {
	svc     registration.Service
	userSvc user.Service
}

func registerRegistrationAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := registrationApi{
		svc:     opts.RegistrationSvc,
		userSvc: opts.UserSvc,
	}

	// student self-registration
	g.POST("/seminars/:id/register", api.register, jwt)
	g.DELETE("/seminars/:id/register", api.cancel, jwt)
	g.GET("/me/registrations", api.queryMine, jwt)

	// anyone holding a serial can verify a certificate
	g.GET("/certificates/:serial", api.retrieveCertificate)
}

// Handlers

func (api *registrationApi) register(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	reg, err := api.svc.Register(ctx.Request().Context(), usr, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, reg)
}

func (api *registrationApi) cancel(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	if err := api.svc.Cancel(ctx.Request().Context(), usr, ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *registrationApi) queryMine(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	regs, err := api.svc.QueryByUser(ctx.Request().Context(), usr)
	if err != nil {
		return errors.Wrap(err, "querying registrations")
	}
	if regs == nil {
		regs = []registration.Registration{}
	}
	return ctx.JSON(http.StatusOK, regs)
}

func (api *registrationApi) retrieveCertificate(ctx echo.Context) error {
	cert, err := api.svc.CertificateBySerial(ctx.Request().Context(), ctx.Param("serial"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cert)
}
