package echoapi

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/schoolsaas/core"
)

// Generic handlers shared by the resource APIs.
// Each one adapts a service method of the matching shape.

type validatable interface {
	Validate(validate *validator.Validate) error
}

type input[T any] interface {
	*T
	validatable
}

// bindValid binds the request into data and validates it.
func bindValid(ctx echo.Context, validate *validator.Validate, data validatable) error {
	if err := ctx.Bind(data); err != nil {
		return err
	}
	return data.Validate(validate)
}

// listParams binds the filter, the page and the ordering of a listing.
func listParams(ctx echo.Context, filter interface{}) (core.Page, []core.DBOrdering, error) {
	var page core.Page
	if err := ctx.Bind(filter); err != nil {
		return page, nil, err
	}
	if err := ctx.Bind(&page); err != nil {
		return page, nil, err
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)
	return page, ordering.Orderings, nil
}

func list[F any](query func(context.Context, F, core.Page, ...core.DBOrdering) (core.Paginated, error)) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		var filter F
		page, ordering, err := listParams(ctx, &filter)
		if err != nil {
			return err
		}
		res, err := query(ctx.Request().Context(), filter, page, ordering...)
		if err != nil {
			return errors.Wrap(err, "querying")
		}
		return respond(ctx, http.StatusOK, res)
	}
}

func create[T any, PT input[T], R any](validate *validator.Validate, save func(context.Context, T) (R, error)) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		data := PT(new(T))
		if err := bindValid(ctx, validate, data); err != nil {
			return err
		}
		obj, err := save(ctx.Request().Context(), *data)
		if err != nil {
			return errors.Wrap(err, "creating")
		}
		return respond(ctx, http.StatusCreated, obj)
	}
}

// byID serves fetch for the `:id` path parameter. It also serves the state transitions, e.g. publishing an exam.
func byID[R any](fetch func(context.Context, string) (R, error)) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		obj, err := fetch(ctx.Request().Context(), ctx.Param("id"))
		if err != nil {
			return err
		}
		return respond(ctx, http.StatusOK, obj)
	}
}

func update[T any, PT input[T], R any](validate *validator.Validate, save func(context.Context, string, T) (R, error)) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		data := PT(new(T))
		if err := bindValid(ctx, validate, data); err != nil {
			return err
		}
		obj, err := save(ctx.Request().Context(), ctx.Param("id"), *data)
		if err != nil {
			return errors.Wrap(err, "updating")
		}
		return respond(ctx, http.StatusOK, obj)
	}
}

func destroy(del func(context.Context, string) error) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if err := del(ctx.Request().Context(), ctx.Param("id")); err != nil {
			return errors.Wrap(err, "deleting")
		}
		return ctx.NoContent(http.StatusNoContent)
	}
}
