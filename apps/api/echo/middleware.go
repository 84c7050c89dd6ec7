package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/coursebox/backend/core/access"
)

// identityMiddleware resolves the access status of the token's email once per request.
func identityMiddleware(ctl *access.Controller) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			dec, err := ctl.Resolve(ctx.Request().Context(), claims.Email)
			if err != nil {
				return errors.Wrap(err, "resolving access")
			}
			ctx.Set(contextDecisionKey, dec)
			return next(ctx)
		}
	}
}

func approvedMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		dec, err := getContextDecision(ctx)
		if err != nil {
			return err
		}
		if !dec.Approved() {
			return errNotApproved
		}
		return next(ctx)
	}
}

func superAdminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		dec, err := getContextDecision(ctx)
		if err != nil {
			return err
		}
		if !dec.SuperAdmin {
			return errHttpForbidden
		}
		return next(ctx)
	}
}
