package examresult

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/coursebox/backend/core"
	"github.com/coursebox/backend/core/exam"
	"github.com/coursebox/backend/core/store"
)

const (
	DocumentName = "examResults"
	RootKey      = "examResults"
)

type Service struct {
	*store.Collection[ExamResult, *ExamResult]
	exams *exam.Service
}

func NewService(db *store.DB, exams *exam.Service) *Service {
	return &Service{
		Collection: store.NewCollection[ExamResult](db, store.Schema[ExamResult]{
			Name:      DocumentName,
			RootKey:   RootKey,
			Defaults:  defaults,
			Normalize: normalize,
			Validate:  validateResult,
		}),
		exams: exams,
	}
}

func (svc *Service) ListByUser(ctx context.Context, user string, ords ...store.Ordering) ([]ExamResult, error) {
	return svc.Filter(ctx, store.Fields{"created_by": core.CleanString(user, true /* lower */)}, ords...)
}

// LatestForUser returns the current result of user for each exam they attempted.
func (svc *Service) LatestForUser(ctx context.Context, user string) ([]ExamResult, error) {
	results, err := svc.ListByUser(ctx, user)
	if err != nil {
		return nil, err
	}
	return Latest(results), nil
}

// Submit grades answers against the current version of the exam and records the attempt as the
// user's result for that exam: an existing result of the same (exam, user) pair is overwritten,
// otherwise a new one is created.
func (svc *Service) Submit(ctx context.Context, examID, user string, answers []int) (Submission, error) {
	ex, err := svc.exams.Get(ctx, examID)
	if err != nil {
		return Submission{}, errors.Wrap(err, "loading exam")
	}
	if err = checkAnswers(ex, answers); err != nil {
		return Submission{}, err
	}

	score := exam.Grade(ex, answers)
	user = core.CleanString(user, true /* lower */)
	now := core.NowFunc()

	var res ExamResult
	err = svc.Mutate(ctx, func(results []ExamResult) ([]ExamResult, error) {
		i := svc.currentIndex(results, examID, user)
		if i < 0 {
			res = ExamResult{ExamID: examID, Answers: answers, Score: score, CompletedDate: now}
			res.CreatedBy = user
			if err := svc.Prepare(results, &res); err != nil {
				return nil, err
			}
			return append(results, res), nil
		}

		res = results[i]
		res.Answers = answers
		res.Score = score
		res.CompletedDate = now
		if err := svc.Touch(&res); err != nil {
			return nil, err
		}
		results[i] = res
		return results, nil
	})
	if err != nil {
		return Submission{}, err
	}
	return Submission{Result: res, Passed: exam.Passed(ex, score), PassingScore: ex.PassingScore}, nil
}

// currentIndex returns the index of the current result of (examID, user), or -1.
func (svc *Service) currentIndex(results []ExamResult, examID, user string) int {
	idx := -1
	for i, r := range results {
		if r.ExamID != examID || r.CreatedBy != user {
			continue
		}
		if idx < 0 || newer(r, results[idx]) {
			idx = i
		}
	}
	return idx
}

func checkAnswers(ex exam.Exam, answers []int) error {
	if len(answers) != len(ex.Questions) {
		msg := fmt.Sprintf("expected %d answers, got %d", len(ex.Questions), len(answers))
		return core.NewValidationError(errors.New(msg), core.FieldError{Field: "answers", Error: msg})
	}
	var flds []core.FieldError
	for i, a := range answers {
		if a < 0 || a >= len(ex.Questions[i].Options) {
			flds = append(flds, core.FieldError{
				Field: fmt.Sprintf("answers[%d]", i),
				Error: "answer must be one of the options",
			})
		}
	}
	if len(flds) > 0 {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}
