package exam

import "github.com/coursebox/backend/core/store"

type (
	Question struct {
		Question      string   `json:"question" validate:"notblank"`
		ImageURL      string   `json:"image_url,omitempty" validate:"omitempty,url"`
		Options       []string `json:"options" validate:"min=2,dive,notblank"`
		CorrectAnswer int      `json:"correct_answer"` // index into Options
	}

	Exam struct {
		store.Record
		Title        string     `json:"title" validate:"notblank"`
		Description  string     `json:"description"`
		Topic        string     `json:"topic"`
		Questions    []Question `json:"questions" validate:"min=1,dive"`
		PassingScore int        `json:"passing_score" validate:"gte=0,lte=100"`
	}
)
