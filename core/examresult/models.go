package examresult

import (
	"time"

	"github.com/coursebox/backend/core/store"
)

type (
	// ExamResult is one attempt of a learner (CreatedBy) at an exam.
	ExamResult struct {
		store.Record
		ExamID        string    `json:"exam_id" validate:"notblank"`
		Answers       []int     `json:"answers"` // parallel to the exam questions
		Score         int       `json:"score" validate:"gte=0,lte=100"`
		CompletedDate time.Time `json:"completed_date"`
		IsSample      bool      `json:"is_sample"`
	}

	// Submission is the outcome of grading an attempt.
	Submission struct {
		Result       ExamResult `json:"result"`
		Passed       bool       `json:"passed"`
		PassingScore int        `json:"passing_score"`
	}

	// UserStats summarizes the current results over the exams that still exist.
	UserStats struct {
		AvailableExams int      `json:"available_exams"`
		ExamsTaken     int      `json:"exams_taken"`
		Passed         int      `json:"passed"`
		AverageScore   *float64 `json:"average_score"` // nil when no exam was taken
	}
)

// recency is the time a result counts as "current" from.
func (r ExamResult) recency() time.Time {
	if !r.CompletedDate.IsZero() {
		return r.CompletedDate
	}
	return r.CreatedDate
}
