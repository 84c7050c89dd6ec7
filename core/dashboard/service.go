// Package dashboard computes the home page statistics for learners and administrators.
package dashboard

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/coursebox/backend/core/coursecontent"
	"github.com/coursebox/backend/core/exam"
	"github.com/coursebox/backend/core/examresult"
	"github.com/coursebox/backend/core/lesson"
	"github.com/coursebox/backend/core/registereduser"
	"github.com/coursebox/backend/core/store"
)

type (
	LearnerStats struct {
		TotalLessons int                          `json:"total_lessons"`
		TotalExams   int                          `json:"total_exams"`
		Course       *coursecontent.CourseContent `json:"course,omitempty"`
		examresult.UserStats
	}

	AdminStats struct {
		TotalLessons int                          `json:"total_lessons"`
		TotalExams   int                          `json:"total_exams"`
		TotalUsers   int                          `json:"total_users"` // unique approved emails
		Course       *coursecontent.CourseContent `json:"course,omitempty"`
		Results      examresult.UserStats         `json:"results"` // every learner's current results
	}

	Service struct {
		lessons *lesson.Service
		exams   *exam.Service
		results *examresult.Service
		users   *registereduser.Service
		content *coursecontent.Service
	}
)

func NewService(
	lessons *lesson.Service,
	exams *exam.Service,
	results *examresult.Service,
	users *registereduser.Service,
	content *coursecontent.Service,
) *Service {
	return &Service{lessons: lessons, exams: exams, results: results, users: users, content: content}
}

// snapshot is what both dashboards load, read concurrently.
type snapshot struct {
	lessons  []lesson.Lesson
	exams    []exam.Exam
	results  []examresult.ExamResult
	approved []registereduser.RegisteredUser
	course   *coursecontent.CourseContent
}

func (svc *Service) load(ctx context.Context, user string, admin bool) (*snapshot, error) {
	var snap snapshot
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		snap.lessons, err = svc.lessons.Collection.List(ctx)
		return errors.Wrap(err, "loading lessons")
	})
	g.Go(func() (err error) {
		snap.exams, err = svc.exams.List(ctx)
		return errors.Wrap(err, "loading exams")
	})
	g.Go(func() (err error) {
		if admin {
			snap.results, err = svc.results.List(ctx)
		} else {
			snap.results, err = svc.results.ListByUser(ctx, user)
		}
		return errors.Wrap(err, "loading exam results")
	})
	g.Go(func() error {
		c, err := svc.content.Current(ctx)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil
			}
			return errors.Wrap(err, "loading course content")
		}
		snap.course = &c
		return nil
	})
	if admin {
		g.Go(func() (err error) {
			snap.approved, err = svc.users.UniqueApproved(ctx)
			return errors.Wrap(err, "loading approved users")
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (svc *Service) Learner(ctx context.Context, user string) (LearnerStats, error) {
	snap, err := svc.load(ctx, user, false)
	if err != nil {
		return LearnerStats{}, err
	}
	return LearnerStats{
		TotalLessons: len(snap.lessons),
		TotalExams:   len(snap.exams),
		Course:       snap.course,
		UserStats:    examresult.Stats(snap.exams, snap.results, user),
	}, nil
}

func (svc *Service) Admin(ctx context.Context) (AdminStats, error) {
	snap, err := svc.load(ctx, "", true)
	if err != nil {
		return AdminStats{}, err
	}
	return AdminStats{
		TotalLessons: len(snap.lessons),
		TotalExams:   len(snap.exams),
		TotalUsers:   len(snap.approved),
		Course:       snap.course,
		Results:      examresult.Stats(snap.exams, snap.results, ""),
	}, nil
}
