package exam

import (
	"github.com/go-playground/validator/v10"

	"github.com/coursebox/backend/core"
)

var (
	validate, translator = core.NewValidator()

	answerIdxTag  = "answeridx"
	answerIdxText = "correct answer must be one of the options"
)

func init() {
	validate.RegisterStructValidation(questionStructValidation, Question{})
	core.RegisterCustomTranslation(validate, translator, answerIdxTag, answerIdxText)
}

// questionStructValidation checks that CorrectAnswer points at one of the options.
func questionStructValidation(sl validator.StructLevel) {
	q, ok := sl.Current().Interface().(Question)
	if !ok {
		return
	}
	if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
		sl.ReportError(q.CorrectAnswer, "correct_answer", "CorrectAnswer", answerIdxTag, "")
	}
}

func normalize(e *Exam) {
	e.Title = core.CleanString(e.Title)
	e.Topic = core.CleanString(e.Topic)
	for i := range e.Questions {
		q := &e.Questions[i]
		q.Question = core.CleanString(q.Question)
		q.ImageURL = core.CleanString(q.ImageURL)
		for j := range q.Options {
			q.Options[j] = core.CleanString(q.Options[j])
		}
	}
}

func validateExam(e *Exam) error {
	return core.ValidateStruct(validate, translator, e)
}
