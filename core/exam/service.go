package exam

import (
	"context"
	"math"

	"github.com/coursebox/backend/core/store"
)

const (
	DocumentName = "exams"
	RootKey      = "exams"
)

type Service struct {
	*store.Collection[Exam, *Exam]
}

func NewService(db *store.DB) *Service {
	return &Service{
		Collection: store.NewCollection[Exam](db, store.Schema[Exam]{
			Name:      DocumentName,
			RootKey:   RootKey,
			Normalize: normalize,
			Validate:  validateExam,
		}),
	}
}

func (svc *Service) ListByTopic(ctx context.Context, topic string) ([]Exam, error) {
	return svc.Filter(ctx, store.Fields{"topic": topic})
}

// IDs returns the set of ids of the exams that currently exist.
func (svc *Service) IDs(ctx context.Context) (map[string]bool, error) {
	exams, err := svc.List(ctx)
	if err != nil {
		return nil, err
	}
	return IDSet(exams), nil
}

func IDSet(exams []Exam) map[string]bool {
	ids := make(map[string]bool, len(exams))
	for _, e := range exams {
		ids[e.ID] = true
	}
	return ids
}

// Grade scores answers against the exam, as a rounded percentage of correct answers.
// answers[i] is the chosen option index for question i; missing answers count as wrong.
func Grade(e Exam, answers []int) int {
	if len(e.Questions) == 0 {
		return 0
	}
	var correct int
	for i, q := range e.Questions {
		if i < len(answers) && answers[i] == q.CorrectAnswer {
			correct++
		}
	}
	return int(math.Round(float64(correct) / float64(len(e.Questions)) * 100))
}

// Passed reports whether score reaches the exam's passing score.
func Passed(e Exam, score int) bool {
	return score >= e.PassingScore
}
