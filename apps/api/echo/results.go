package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/coursebox/backend/core"
	"github.com/coursebox/backend/core/examresult"
	"github.com/coursebox/backend/core/store"
)

func (s *server) registerResultAPI(g *echo.Group) {
	api := resourceAPI[examresult.ExamResult, *examresult.ExamResult]{name: "exam result", svc: s.deps.ResultSvc}

	g.GET("", s.listResults, approvedMiddleware)
	g.GET("/latest", s.latestResults, approvedMiddleware)
	g.PUT("/:id", api.update, superAdminMiddleware)
	g.DELETE("/:id", api.destroy, superAdminMiddleware)
}

// listResults returns the caller's results; the super-admin sees everyone's.
func (s *server) listResults(ctx echo.Context) error {
	dec, err := getContextDecision(ctx)
	if err != nil {
		return err
	}
	var ord Ordering
	ord.Bind(ctx)

	criteria := filterParams(ctx, "exam_id", "created_by")
	if criteria == nil {
		criteria = store.Fields{}
	}
	if by, ok := criteria["created_by"].(string); ok {
		criteria["created_by"] = core.CleanString(by, true /* lower */)
	}
	if !dec.SuperAdmin {
		criteria["created_by"] = dec.Email
	}
	results, err := s.deps.ResultSvc.Filter(ctx.Request().Context(), criteria, ord.Orderings...)
	if err != nil {
		return errors.Wrap(err, "listing exam results")
	}
	return ctx.JSON(http.StatusOK, results)
}

// latestResults returns the current result per exam and learner, restricted like listResults.
func (s *server) latestResults(ctx echo.Context) error {
	dec, err := getContextDecision(ctx)
	if err != nil {
		return err
	}
	var results []examresult.ExamResult
	if dec.SuperAdmin {
		var all []examresult.ExamResult
		if all, err = s.deps.ResultSvc.List(ctx.Request().Context()); err == nil {
			results = examresult.Latest(all)
		}
	} else {
		results, err = s.deps.ResultSvc.LatestForUser(ctx.Request().Context(), dec.Email)
	}
	if err != nil {
		return errors.Wrap(err, "listing latest exam results")
	}
	return ctx.JSON(http.StatusOK, results)
}
