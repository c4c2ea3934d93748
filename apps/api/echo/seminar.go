package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/eic-cefet/seminarios-v2-sub001/core/presence"
	"github.com/eic-cefet/seminarios-v2-sub001/core/registration"
	"github.com/eic-cefet/seminarios-v2-sub001/core/seminar"
	"github.com/eic-cefet/seminarios-v2-sub001/core/user"
)

type seminarApi struct {
	svc        seminar.Service
	presSvc    presence.Service
	regSvc     registration.Service
	userSvc    user.Service
	validate   *validator.Validate
	translator ut.Translator
}

func registerSeminarAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := seminarApi{
		svc:        opts.SeminarSvc,
		presSvc:    opts.PresenceSvc,
		regSvc:     opts.RegistrationSvc,
		userSvc:    opts.UserSvc,
		validate:   opts.Validate,
		translator: opts.Translator,
	}

	// public browsing of open seminars
	g.GET("/seminars/open", api.queryOpen)
	g.GET("/seminars/open/:idOrSlug", api.retrieveOpen)

	// staff area; per-object ownership is enforced by the services
	sg := g.Group("/admin/seminars", jwt, staffMiddleware())
	sg.POST("", api.create)
	sg.GET("", api.query)
	sg.GET("/:id", api.retrieve)
	sg.PUT("/:id", api.update)
	sg.DELETE("/:id", api.destroy)
	sg.POST("/:id/restore", api.restore)
	sg.GET("/:id/registrations", api.queryRegistrations)

	sg.GET("/:id/presence-link", api.retrievePresenceLink)
	sg.POST("/:id/presence-link", api.createPresenceLink)
	sg.PATCH("/:id/presence-link/toggle", api.togglePresenceLink)
}

// Handlers

func (api *seminarApi) create(ctx echo.Context) error {
	var data seminar.NewSeminar
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSeminar")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	sem, err := api.svc.Create(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "creating seminar")
	}
	return ctx.JSON(http.StatusCreated, sem)
}

func (api *seminarApi) query(ctx echo.Context) error {
	filter := new(seminar.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []seminar.Seminar{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	sems, err := api.svc.Query(ctx.Request().Context(), actor, filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying seminars")
	}
	if sems == nil {
		sems = []seminar.Seminar{}
	}
	return ctx.JSON(http.StatusOK, sems)
}

func (api *seminarApi) retrieve(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	sem, err := api.svc.Get(ctx.Request().Context(), actor, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sem)
}

func (api *seminarApi) update(ctx echo.Context) error {
	var data seminar.UpdateSeminar
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSeminar")
	}

	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	orig, err := api.svc.Get(ctx.Request().Context(), actor, ctx.Param("id"))
	if err != nil {
		return err
	}
	if err := data.Validate(api.validate, orig); err != nil {
		return err
	}

	sem, err := api.svc.Update(ctx.Request().Context(), actor, orig.ID, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sem)
}

func (api *seminarApi) destroy(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	if err := api.svc.Delete(ctx.Request().Context(), actor, ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *seminarApi) restore(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	sem, err := api.svc.Restore(ctx.Request().Context(), actor, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sem)
}

func (api *seminarApi) queryOpen(ctx echo.Context) error {
	filter := new(seminar.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []seminar.Seminar{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	// anonymous browsing; the service scopes to open seminars
	sems, err := api.svc.Query(ctx.Request().Context(), user.User{}, filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying open seminars")
	}
	if sems == nil {
		sems = []seminar.Seminar{}
	}
	return ctx.JSON(http.StatusOK, sems)
}

func (api *seminarApi) retrieveOpen(ctx echo.Context) error {
	sem, err := api.svc.GetOpen(ctx.Request().Context(), ctx.Param("idOrSlug"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sem)
}

func (api *seminarApi) queryRegistrations(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	sem, err := api.svc.Get(ctx.Request().Context(), actor, ctx.Param("id"))
	if err != nil {
		return err
	}

	regs, err := api.regSvc.QueryBySeminar(ctx.Request().Context(), actor, sem)
	if err != nil {
		return err
	}
	if regs == nil {
		regs = []registration.Registration{}
	}
	return ctx.JSON(http.StatusOK, regs)
}

// Presence link management

type presenceLinkResponse struct {
	Data *presence.PresenceLink `json:"data"`
}

func (api *seminarApi) retrievePresenceLink(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	sem, err := api.svc.Get(ctx.Request().Context(), actor, ctx.Param("id"))
	if err != nil {
		return err
	}

	// data is null when no link was ever created; absence is a normal state
	pl, err := api.presSvc.GetForSeminar(ctx.Request().Context(), actor, sem)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, presenceLinkResponse{Data: pl})
}

func (api *seminarApi) createPresenceLink(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	sem, err := api.svc.Get(ctx.Request().Context(), actor, ctx.Param("id"))
	if err != nil {
		return err
	}

	pl, err := api.presSvc.Create(ctx.Request().Context(), actor, sem)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, pl)
}

func (api *seminarApi) togglePresenceLink(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	sem, err := api.svc.Get(ctx.Request().Context(), actor, ctx.Param("id"))
	if err != nil {
		return err
	}

	pl, err := api.presSvc.Toggle(ctx.Request().Context(), actor, sem)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, pl)
}
