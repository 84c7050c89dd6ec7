// Package examtopic stores the labels exams and lessons can be grouped under.
package examtopic

import (
	"context"
	"errors"
	"strings"

	"github.com/coursebox/backend/core"
	"github.com/coursebox/backend/core/store"
)

const (
	DocumentName = "examTopics"
	RootKey      = "examTopics"
)

var ErrLabelExists = errors.New("a topic with this label already exists")

type Topic struct {
	store.Record
	Label string `json:"label" validate:"notblank,max=120"`
}

var validate, translator = core.NewValidator()

type Service struct {
	coll *store.Collection[Topic, *Topic]
}

func NewService(db *store.DB) *Service {
	return &Service{
		coll: store.NewCollection[Topic](db, store.Schema[Topic]{
			Name:      DocumentName,
			RootKey:   RootKey,
			Normalize: func(tp *Topic) { tp.Label = core.CleanString(tp.Label) },
			Validate:  func(tp *Topic) error { return core.ValidateStruct(validate, translator, tp) },
			BeforeCreate: func(existing []Topic, tp *Topic) error {
				for _, e := range existing {
					if strings.EqualFold(e.Label, tp.Label) {
						return core.NewValidationError(ErrLabelExists, core.FieldError{Field: "label", Error: ErrLabelExists.Error()})
					}
				}
				return nil
			},
		}),
	}
}

func (svc *Service) List(ctx context.Context) ([]Topic, error) {
	return svc.coll.List(ctx, store.Ordering{Field: "label", Ascending: true})
}

func (svc *Service) Create(ctx context.Context, label, actor string) (Topic, error) {
	tp := Topic{Label: label}
	tp.CreatedBy = core.CleanString(actor, true /* lower */)
	return svc.coll.Create(ctx, tp)
}

// Delete removes the topic. Deleting an unknown topic reports store.ErrNotFound.
func (svc *Service) Delete(ctx context.Context, id string) error {
	removed, err := svc.coll.Remove(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return store.ErrNotFound
	}
	return nil
}
