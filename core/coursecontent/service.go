// Package coursecontent stores the course description shown on the home page. The collection
// holds at most one meaningful record: the first one.
package coursecontent

import (
	"context"
	"time"

	"github.com/coursebox/backend/core"
	"github.com/coursebox/backend/core/store"
)

const (
	DocumentName = "courseContent"
	RootKey      = "courseContent"
)

type CourseContent struct {
	store.Record
	Title       string    `json:"title" validate:"notblank"`
	Description string    `json:"description"`
	LastUpdated time.Time `json:"last_updated"`
	UpdatedBy   string    `json:"updated_by"`
}

var validate, translator = core.NewValidator()

type Service struct {
	*store.Collection[CourseContent, *CourseContent]
}

func NewService(db *store.DB) *Service {
	return &Service{
		Collection: store.NewCollection[CourseContent](db, store.Schema[CourseContent]{
			Name:    DocumentName,
			RootKey: RootKey,
			Normalize: func(c *CourseContent) {
				c.Title = core.CleanString(c.Title)
				c.UpdatedBy = core.CleanString(c.UpdatedBy, true /* lower */)
			},
			Validate: func(c *CourseContent) error {
				return core.ValidateStruct(validate, translator, c)
			},
		}),
	}
}

// Current returns the course content, or store.ErrNotFound when it was never saved.
func (svc *Service) Current(ctx context.Context) (CourseContent, error) {
	all, err := svc.List(ctx)
	if err != nil {
		return CourseContent{}, err
	}
	if len(all) == 0 {
		return CourseContent{}, store.ErrNotFound
	}
	return all[0], nil
}

// Save merges fields into the course content, creating it on first save, and records actor as
// its last editor.
func (svc *Service) Save(ctx context.Context, fields store.Fields, actor string) (CourseContent, error) {
	actor = core.CleanString(actor, true /* lower */)
	if actor == "" {
		actor = "system"
	}
	flds := make(store.Fields, len(fields)+2)
	for k, v := range fields {
		flds[k] = v
	}
	flds["last_updated"] = core.NowFunc()
	flds["updated_by"] = actor

	var saved CourseContent
	err := svc.Mutate(ctx, func(all []CourseContent) ([]CourseContent, error) {
		if len(all) > 0 {
			merged, err := svc.Merge(all[0], flds)
			if err != nil {
				return nil, err
			}
			all[0], saved = merged, merged
			return all, nil
		}

		first, err := svc.Merge(CourseContent{}, flds)
		if err != nil {
			return nil, err
		}
		first.CreatedBy = actor
		if err = svc.Prepare(all, &first); err != nil {
			return nil, err
		}
		saved = first
		return append(all, first), nil
	})
	if err != nil {
		return CourseContent{}, err
	}
	return saved, nil
}
