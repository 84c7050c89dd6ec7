package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/coursebox/backend/core/exam"
	"github.com/coursebox/backend/core/lesson"
)

func (s *server) registerLessonAPI(g *echo.Group) {
	api := resourceAPI[lesson.Lesson, *lesson.Lesson]{name: "lesson", svc: s.deps.LessonSvc, filters: []string{"topic"}}
	g.GET("/topics", s.lessonTopics, approvedMiddleware)
	api.register(g)
}

func (s *server) lessonTopics(ctx echo.Context) error {
	topics, err := s.deps.LessonSvc.Topics(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing lesson topics")
	}
	return ctx.JSON(http.StatusOK, topics)
}

func (s *server) registerExamAPI(g *echo.Group) {
	api := resourceAPI[exam.Exam, *exam.Exam]{name: "exam", svc: s.deps.ExamSvc, filters: []string{"topic"}}
	api.register(g)
	g.POST("/:id/submit", s.submitExam, approvedMiddleware)
}

func (s *server) submitExam(ctx echo.Context) error {
	var data SubmitRequest
	if err := s.bind(ctx, &data); err != nil {
		return err
	}
	sub, err := s.deps.ResultSvc.Submit(ctx.Request().Context(), ctx.Param("id"), callerEmail(ctx), data.Answers)
	if err != nil {
		return errors.Wrap(err, "submitting exam")
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (s *server) registerContentAPI(g *echo.Group) {
	g.GET("", s.courseContent, approvedMiddleware)
	g.PUT("", s.saveCourseContent, superAdminMiddleware)
}

func (s *server) courseContent(ctx echo.Context) error {
	content, err := s.deps.ContentSvc.Current(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "getting course content")
	}
	return ctx.JSON(http.StatusOK, content)
}

func (s *server) saveCourseContent(ctx echo.Context) error {
	fields, err := bindFields(ctx)
	if err != nil {
		return err
	}
	content, err := s.deps.ContentSvc.Save(ctx.Request().Context(), fields, callerEmail(ctx))
	if err != nil {
		return errors.Wrap(err, "saving course content")
	}
	return ctx.JSON(http.StatusOK, content)
}

func (s *server) registerTopicAPI(g *echo.Group) {
	g.GET("", s.listTopics, approvedMiddleware)
	g.POST("", s.createTopic, superAdminMiddleware)
	g.DELETE("/:id", s.deleteTopic, superAdminMiddleware)
}

func (s *server) listTopics(ctx echo.Context) error {
	topics, err := s.deps.TopicSvc.List(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing exam topics")
	}
	return ctx.JSON(http.StatusOK, topics)
}

func (s *server) createTopic(ctx echo.Context) error {
	var data TopicRequest
	if err := s.bind(ctx, &data); err != nil {
		return err
	}
	topic, err := s.deps.TopicSvc.Create(ctx.Request().Context(), data.Label, callerEmail(ctx))
	if err != nil {
		return errors.Wrap(err, "creating exam topic")
	}
	return ctx.JSON(http.StatusCreated, topic)
}

func (s *server) deleteTopic(ctx echo.Context) error {
	if err := s.deps.TopicSvc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting exam topic")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (s *server) registerDashboardAPI(g *echo.Group) {
	g.GET("", s.dashboard, approvedMiddleware)
}

func (s *server) dashboard(ctx echo.Context) error {
	dec, err := getContextDecision(ctx)
	if err != nil {
		return err
	}
	if dec.SuperAdmin {
		stats, err := s.deps.DashboardSvc.Admin(ctx.Request().Context())
		if err != nil {
			return errors.Wrap(err, "computing admin dashboard")
		}
		return ctx.JSON(http.StatusOK, stats)
	}
	stats, err := s.deps.DashboardSvc.Learner(ctx.Request().Context(), dec.Email)
	if err != nil {
		return errors.Wrap(err, "computing dashboard")
	}
	return ctx.JSON(http.StatusOK, stats)
}
