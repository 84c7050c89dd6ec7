package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/coursebox/backend/core/store"
)

// entityService is the collection surface shared by every entity service.
type entityService[T any] interface {
	List(ctx context.Context, ords ...store.Ordering) ([]T, error)
	Filter(ctx context.Context, criteria store.Fields, ords ...store.Ordering) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	Create(ctx context.Context, rec T) (T, error)
	Update(ctx context.Context, id string, fields store.Fields) (T, error)
	Remove(ctx context.Context, id string) (bool, error)
}

// resourceAPI serves the plain CRUD endpoints of one collection.
type resourceAPI[T any, PT store.EntityPtr[T]] struct {
	name    string
	svc     entityService[T]
	filters []string // query params matched exactly against record fields
}

func (api resourceAPI[T, PT]) list(ctx echo.Context) error {
	var ord Ordering
	ord.Bind(ctx)

	var recs []T
	var err error
	if criteria := filterParams(ctx, api.filters...); criteria != nil {
		recs, err = api.svc.Filter(ctx.Request().Context(), criteria, ord.Orderings...)
	} else {
		recs, err = api.svc.List(ctx.Request().Context(), ord.Orderings...)
	}
	if err != nil {
		return errors.Wrapf(err, "listing %s", api.name)
	}
	return ctx.JSON(http.StatusOK, recs)
}

func (api resourceAPI[T, PT]) retrieve(ctx echo.Context) error {
	rec, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrapf(err, "getting %s", api.name)
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api resourceAPI[T, PT]) create(ctx echo.Context) error {
	var rec T
	if err := bindRecord(ctx, &rec); err != nil {
		return err
	}
	PT(&rec).Meta().CreatedBy = callerEmail(ctx)

	rec, err := api.svc.Create(ctx.Request().Context(), rec)
	if err != nil {
		return errors.Wrapf(err, "creating %s", api.name)
	}
	return ctx.JSON(http.StatusCreated, rec)
}

func (api resourceAPI[T, PT]) update(ctx echo.Context) error {
	fields, err := bindFields(ctx)
	if err != nil {
		return err
	}
	rec, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), fields)
	if err != nil {
		return errors.Wrapf(err, "updating %s", api.name)
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api resourceAPI[T, PT]) destroy(ctx echo.Context) error {
	removed, err := api.svc.Remove(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrapf(err, "removing %s", api.name)
	}
	if !removed {
		return errHttpNotFound
	}
	return ctx.NoContent(http.StatusNoContent)
}

// register wires the CRUD endpoints on g: reads for approved users, writes for the super-admin.
func (api resourceAPI[T, PT]) register(g *echo.Group) {
	g.GET("", api.list, approvedMiddleware)
	g.GET("/:id", api.retrieve, approvedMiddleware)
	g.POST("", api.create, superAdminMiddleware)
	g.PUT("/:id", api.update, superAdminMiddleware)
	g.DELETE("/:id", api.destroy, superAdminMiddleware)
}
