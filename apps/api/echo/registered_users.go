package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/coursebox/backend/core/registereduser"
	"github.com/coursebox/backend/core/store"
)

func (s *server) registerUserAPI(g *echo.Group) {
	api := resourceAPI[registereduser.RegisteredUser, *registereduser.RegisteredUser]{
		name:    "registered user",
		svc:     s.deps.UserSvc,
		filters: []string{"email", "status"},
	}

	// any authenticated email
	g.POST("/login", s.login)
	g.POST("/request-access", s.requestAccess)
	g.GET("/me", s.me)

	// super-admin only
	g.GET("", api.list, superAdminMiddleware)
	g.GET("/:id", api.retrieve, superAdminMiddleware)
	g.POST("", api.create, superAdminMiddleware)
	g.PUT("/:id", api.update, superAdminMiddleware)
	g.DELETE("/:id", api.destroy, superAdminMiddleware)
	g.POST("/approve", s.approve, superAdminMiddleware)
	g.POST("/reject", s.reject, superAdminMiddleware)
	g.POST("/invite", s.invite, superAdminMiddleware)
}

// Handlers

func (s *server) login(ctx echo.Context) error {
	var data LoginRequest
	if err := s.bind(ctx, &data); err != nil {
		return err
	}
	if data.FullName == "" {
		if claims, err := getContextClaims(ctx); err == nil {
			data.FullName = claims.Name
		}
	}
	dec, err := s.deps.Access.Login(ctx.Request().Context(), callerEmail(ctx), data.FullName)
	if err != nil {
		return errors.Wrap(err, "logging in")
	}
	return ctx.JSON(http.StatusOK, dec)
}

func (s *server) requestAccess(ctx echo.Context) error {
	var data AccessRequest
	if err := s.bind(ctx, &data); err != nil {
		return err
	}
	usr, err := s.deps.Access.RequestAccess(ctx.Request().Context(), callerEmail(ctx), data.FullName, data.Notes)
	if err != nil {
		return errors.Wrap(err, "requesting access")
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (s *server) me(ctx echo.Context) error {
	dec, err := getContextDecision(ctx)
	if err != nil {
		return err
	}
	resp := MeResponse{Email: dec.Email, Status: dec.Status, SuperAdmin: dec.SuperAdmin}

	latest, err := s.deps.UserSvc.Latest(ctx.Request().Context(), dec.Email)
	switch {
	case err == nil:
		resp.Registration = latest
	case !errors.Is(err, store.ErrNotFound):
		return errors.Wrap(err, "getting latest registration")
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (s *server) approve(ctx echo.Context) error {
	var data DecisionRequest
	if err := s.bind(ctx, &data); err != nil {
		return err
	}
	usr, err := s.deps.Access.Approve(ctx.Request().Context(), callerEmail(ctx), data.Email, data.Notes)
	if err != nil {
		return errors.Wrap(err, "approving access")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (s *server) reject(ctx echo.Context) error {
	var data DecisionRequest
	if err := s.bind(ctx, &data); err != nil {
		return err
	}
	usr, err := s.deps.Access.Reject(ctx.Request().Context(), callerEmail(ctx), data.Email, data.Notes)
	if err != nil {
		return errors.Wrap(err, "rejecting access")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (s *server) invite(ctx echo.Context) error {
	var data InviteRequest
	if err := s.bind(ctx, &data); err != nil {
		return err
	}
	usr, err := s.deps.Access.Invite(ctx.Request().Context(), callerEmail(ctx), data.Email, data.FullName, data.Notes)
	if err != nil {
		return errors.Wrap(err, "inviting user")
	}
	return ctx.JSON(http.StatusCreated, usr)
}
