package lesson

import (
	"context"

	"github.com/coursebox/backend/core/store"
)

const (
	DocumentName = "lessonsData"
	RootKey      = "lessons"
)

// DefaultOrdering lists lessons topic by topic, in display order.
var DefaultOrdering = []store.Ordering{{Field: "topic", Ascending: true}, {Field: "order", Ascending: true}}

type Service struct {
	*store.Collection[Lesson, *Lesson]
}

func NewService(db *store.DB) *Service {
	return &Service{
		Collection: store.NewCollection[Lesson](db, store.Schema[Lesson]{
			Name:      DocumentName,
			RootKey:   RootKey,
			Normalize: normalize,
			Validate:  validateLesson,
		}),
	}
}

// List returns lessons sorted by ords, or by DefaultOrdering when none are given.
func (svc *Service) List(ctx context.Context, ords ...store.Ordering) ([]Lesson, error) {
	if len(ords) == 0 {
		ords = DefaultOrdering
	}
	return svc.Collection.List(ctx, ords...)
}

func (svc *Service) ListByTopic(ctx context.Context, topic string) ([]Lesson, error) {
	return svc.Filter(ctx, store.Fields{"topic": topic}, DefaultOrdering...)
}

// Topics returns the distinct lesson topics in display order.
func (svc *Service) Topics(ctx context.Context) ([]string, error) {
	lessons, err := svc.List(ctx)
	if err != nil {
		return nil, err
	}
	topics := make([]string, 0)
	seen := make(map[string]bool)
	for _, l := range lessons {
		if l.Topic == "" || seen[l.Topic] {
			continue
		}
		seen[l.Topic] = true
		topics = append(topics, l.Topic)
	}
	return topics, nil
}
