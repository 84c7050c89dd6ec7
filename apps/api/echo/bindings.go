package echoapi

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/coursebox/backend/core"
	"github.com/coursebox/backend/core/store"
)

var orderingParam = "ordering"

type (
	Ordering struct {
		Orderings []store.Ordering
	}

	// request payloads

	LoginRequest struct {
		FullName string `json:"full_name"`
	}

	AccessRequest struct {
		FullName string `json:"full_name" validate:"max=200"`
		Notes    string `json:"notes" validate:"max=2000"`
	}

	DecisionRequest struct {
		Email string `json:"email" validate:"required,email"`
		Notes string `json:"notes" validate:"max=2000"`
	}

	InviteRequest struct {
		Email    string `json:"email" validate:"required,email"`
		FullName string `json:"full_name" validate:"max=200"`
		Notes    string `json:"notes" validate:"max=2000"`
	}

	SubmitRequest struct {
		Answers []int `json:"answers" validate:"required"`
	}

	TopicRequest struct {
		Label string `json:"label" validate:"notblank"`
	}

	// responses

	MeResponse struct {
		Email        string      `json:"email"`
		Status       string      `json:"status"`
		SuperAdmin   bool        `json:"super_admin"`
		Registration interface{} `json:"registration"`
	}
)

func (ord *Ordering) Bind(ctx echo.Context) {
	if val := ctx.QueryParam(orderingParam); val != "" {
		ord.Orderings = store.ParseOrderings(val)
	}
}

// filterParams collects the given query params into filter criteria. Params left empty are skipped.
func filterParams(ctx echo.Context, names ...string) store.Fields {
	var criteria store.Fields
	for _, name := range names {
		if val := ctx.QueryParam(name); val != "" {
			if criteria == nil {
				criteria = make(store.Fields, len(names))
			}
			criteria[name] = val
		}
	}
	return criteria
}

// bind decodes the request body into data and validates it.
func (s *server) bind(ctx echo.Context, data interface{}) error {
	if err := ctx.Bind(data); err != nil {
		return errors.Wrapf(err, "binding to %T", data)
	}
	return core.ValidateStruct(s.validate, s.translator, data)
}

// bindFields decodes a JSON object body into the fields of a partial update.
func bindFields(ctx echo.Context) (store.Fields, error) {
	var fields store.Fields
	if err := json.NewDecoder(ctx.Request().Body).Decode(&fields); err != nil {
		if err == io.EOF {
			return nil, errEmptyPatch
		}
		return nil, malformedBody(err)
	}
	if len(fields) == 0 {
		return nil, errEmptyPatch
	}
	return fields, nil
}

func malformedBody(err error) error {
	return echo.NewHTTPError(http.StatusBadRequest, "malformed request body").SetInternal(err)
}

// bindRecord decodes a JSON object body into a new record.
func bindRecord(ctx echo.Context, rec interface{}) error {
	if err := json.NewDecoder(ctx.Request().Body).Decode(rec); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return core.NewValidationError(err, core.FieldError{
				Field: typeErr.Field,
				Error: "expected a value of type " + typeErr.Type.String(),
			})
		}
		return malformedBody(err)
	}
	return nil
}
