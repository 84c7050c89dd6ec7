package examresult

import (
	"github.com/go-playground/validator/v10"

	"github.com/coursebox/backend/core"
)

var validate, translator = core.NewValidator()

func init() {
	validate.RegisterStructValidation(resultStructValidation, ExamResult{})
}

// resultStructValidation requires an owner on every result.
func resultStructValidation(sl validator.StructLevel) {
	r, ok := sl.Current().Interface().(ExamResult)
	if !ok {
		return
	}
	if r.CreatedBy == "" {
		sl.ReportError(r.CreatedBy, "created_by", "CreatedBy", "required", "")
	}
}

func defaults(r *ExamResult) {
	if r.Answers == nil {
		r.Answers = []int{}
	}
}

func normalize(r *ExamResult) {
	r.ExamID = core.CleanString(r.ExamID)
	r.CreatedBy = core.CleanString(r.CreatedBy, true /* lower */)
	if !r.CompletedDate.IsZero() {
		r.CompletedDate = r.CompletedDate.UTC()
	}
}

func validateResult(r *ExamResult) error {
	return core.ValidateStruct(validate, translator, r)
}
