package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/eic-cefet/seminarios-v2-sub001/core/catalog"
)

type catalogApi struct {
	svc      catalog.Service
	validate *validator.Validate
}

func registerCatalogAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := catalogApi{
		svc:      opts.CatalogSvc,
		validate: opts.Validate,
	}

	lg := g.Group("/admin/locations", jwt, adminMiddleware())
	lg.POST("", api.createLocation)
	lg.GET("", api.queryLocations)
	lg.GET("/:id", api.retrieveLocation)
	lg.PUT("/:id", api.updateLocation)
	lg.DELETE("/:id", api.destroyLocation)

	sg := g.Group("/admin/subjects", jwt, adminMiddleware())
	sg.POST("", api.createSubject)
	sg.GET("", api.querySubjects)
	sg.GET("/:id", api.retrieveSubject)
	sg.PUT("/:id", api.updateSubject)
	sg.DELETE("/:id", api.destroySubject)
	sg.POST("/:id/merge", api.mergeSubjects)

	wg := g.Group("/admin/workshops", jwt, adminMiddleware())
	wg.POST("", api.createWorkshop)
	wg.GET("", api.queryWorkshops)
	wg.GET("/:id", api.retrieveWorkshop)
	wg.PUT("/:id", api.updateWorkshop)
	wg.DELETE("/:id", api.destroyWorkshop)
}

// Locations

func (api *catalogApi) createLocation(ctx echo.Context) error {
	var data catalog.NewLocation
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLocation")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	loc, err := api.svc.CreateLocation(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating location")
	}
	return ctx.JSON(http.StatusCreated, loc)
}

func (api *catalogApi) queryLocations(ctx echo.Context) error {
	ordering := new(Ordering)
	ordering.Bind(ctx)

	locs, err := api.svc.QueryLocations(ctx.Request().Context(), ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying locations")
	}
	if locs == nil {
		locs = []catalog.Location{}
	}
	return ctx.JSON(http.StatusOK, locs)
}

func (api *catalogApi) retrieveLocation(ctx echo.Context) error {
	loc, err := api.svc.GetLocation(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, loc)
}

func (api *catalogApi) updateLocation(ctx echo.Context) error {
	var data catalog.NewLocation
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLocation")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	loc, err := api.svc.UpdateLocation(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, loc)
}

func (api *catalogApi) destroyLocation(ctx echo.Context) error {
	if err := api.svc.DeleteLocation(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Subjects

func (api *catalogApi) createSubject(ctx echo.Context) error {
	var data catalog.NewSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sub, err := api.svc.CreateSubject(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating subject")
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *catalogApi) querySubjects(ctx echo.Context) error {
	ordering := new(Ordering)
	ordering.Bind(ctx)

	subs, err := api.svc.QuerySubjects(ctx.Request().Context(), ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	if subs == nil {
		subs = []catalog.Subject{}
	}
	return ctx.JSON(http.StatusOK, subs)
}

func (api *catalogApi) retrieveSubject(ctx echo.Context) error {
	sub, err := api.svc.GetSubject(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *catalogApi) updateSubject(ctx echo.Context) error {
	var data catalog.NewSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sub, err := api.svc.UpdateSubject(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *catalogApi) destroySubject(ctx echo.Context) error {
	if err := api.svc.DeleteSubject(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *catalogApi) mergeSubjects(ctx echo.Context) error {
	var data catalog.MergeSubjects
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MergeSubjects")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	moved, err := api.svc.MergeSubjects(ctx.Request().Context(), ctx.Param("id"), data.IntoID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, MergeSubjectsResponse{Moved: moved})
}

// Workshops

func (api *catalogApi) createWorkshop(ctx echo.Context) error {
	var data catalog.NewWorkshop
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewWorkshop")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ws, err := api.svc.CreateWorkshop(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating workshop")
	}
	return ctx.JSON(http.StatusCreated, ws)
}

func (api *catalogApi) queryWorkshops(ctx echo.Context) error {
	ordering := new(Ordering)
	ordering.Bind(ctx)

	wss, err := api.svc.QueryWorkshops(ctx.Request().Context(), ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying workshops")
	}
	if wss == nil {
		wss = []catalog.Workshop{}
	}
	return ctx.JSON(http.StatusOK, wss)
}

func (api *catalogApi) retrieveWorkshop(ctx echo.Context) error {
	ws, err := api.svc.GetWorkshop(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ws)
}

func (api *catalogApi) updateWorkshop(ctx echo.Context) error {
	var data catalog.NewWorkshop
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewWorkshop")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ws, err := api.svc.UpdateWorkshop(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ws)
}

func (api *catalogApi) destroyWorkshop(ctx echo.Context) error {
	if err := api.svc.DeleteWorkshop(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

type MergeSubjectsResponse struct {
	Moved int `json:"moved"`
}
