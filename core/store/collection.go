package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/coursebox/backend/core"
)

var errSkipSave = errors.New("nothing to save")

type (
	// Record holds the fields shared by every entity.
	Record struct {
		ID          string    `json:"id"`
		CreatedDate time.Time `json:"created_date"` // UTC
		UpdatedDate time.Time `json:"updated_date"` // UTC
		CreatedBy   string    `json:"created_by,omitempty"`
	}

	// EntityPtr is satisfied by a pointer to any struct embedding Record.
	EntityPtr[T any] interface {
		*T
		Meta() *Record
	}

	// Schema describes where a collection lives and the entity rules it enforces.
	Schema[T any] struct {
		Name    string // document name, e.g. "lessonsData"
		RootKey string // key of the records array inside the document, e.g. "lessons"

		// Defaults fills fields the caller left empty, before a record is created.
		Defaults func(rec *T)
		// Normalize canonicalizes fields (e.g. lower-cases emails) on create and update.
		Normalize func(rec *T)
		// Validate checks entity invariants on create and after every merge.
		Validate func(rec *T) error
		// BeforeCreate runs under the write lock with the current records, for invariants that
		// span records (uniqueness).
		BeforeCreate func(existing []T, rec *T) error
	}

	// Collection provides CRUD over the records array of one document.
	Collection[T any, PT EntityPtr[T]] struct {
		db     *DB
		schema Schema[T]
	}
)

func (r *Record) Meta() *Record { return r }

func NewCollection[T any, PT EntityPtr[T]](db *DB, schema Schema[T]) *Collection[T, PT] {
	if schema.RootKey == "" {
		schema.RootKey = schema.Name
	}
	return &Collection[T, PT]{db: db, schema: schema}
}

func (c *Collection[T, PT]) Name() string { return c.schema.Name }

func (c *Collection[T, PT]) decode(doc Document) ([]T, error) {
	recs := make([]T, 0)
	raw, ok := doc[c.schema.RootKey]
	if !ok || string(raw) == "null" {
		return recs, nil
	}
	if err := json.Unmarshal(raw, &recs); err != nil {
		return nil, &CorruptDocumentError{Name: c.schema.Name, Err: errors.Wrapf(err, "decoding %q", c.schema.RootKey)}
	}
	return recs, nil
}

// encode writes recs under the root key. Each record is laid over the stored JSON object it was
// loaded from: fields T does not model are kept, and null or zero-time values are not added to
// records that never had those fields.
func (c *Collection[T, PT]) encode(doc Document, recs []T) (Document, error) {
	stored := storedByID(doc[c.schema.RootKey])
	out := make([]json.RawMessage, 0, len(recs))
	for i := range recs {
		data, err := json.Marshal(recs[i])
		if err != nil {
			return nil, errors.Wrapf(err, "encoding %q", c.schema.RootKey)
		}
		if orig, ok := stored[PT(&recs[i]).Meta().ID]; ok {
			if data, err = overlay(orig, data); err != nil {
				return nil, errors.Wrapf(err, "encoding %q", c.schema.RootKey)
			}
		}
		out = append(out, data)
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, errors.Wrapf(err, "encoding %q", c.schema.RootKey)
	}
	if doc == nil {
		doc = Document{}
	}
	doc[c.schema.RootKey] = data
	return doc, nil
}

func (c *Collection[T, PT]) all(ctx context.Context) ([]T, error) {
	doc, err := c.db.View(ctx, c.schema.Name)
	if err != nil {
		return nil, err
	}
	return c.decode(doc)
}

// mutate runs fn as one load-mutate-save unit on the records array.
func (c *Collection[T, PT]) mutate(ctx context.Context, fn func(recs []T) ([]T, error)) error {
	err := c.db.Update(ctx, c.schema.Name, func(doc Document) (Document, error) {
		recs, err := c.decode(doc)
		if err != nil {
			return nil, err
		}
		if recs, err = fn(recs); err != nil {
			return nil, err
		}
		return c.encode(doc, recs)
	})
	if err == errSkipSave {
		return nil
	}
	return err
}

// List returns every record, optionally sorted by the given orderings.
func (c *Collection[T, PT]) List(ctx context.Context, ords ...Ordering) ([]T, error) {
	recs, err := c.all(ctx)
	if err != nil {
		return nil, err
	}
	return c.sort(recs, ords)
}

func (c *Collection[T, PT]) sort(recs []T, ords []Ordering) ([]T, error) {
	if len(ords) == 0 || len(recs) < 2 {
		return recs, nil
	}
	projected := make([]map[string]interface{}, len(recs))
	idx := make([]int, len(recs))
	for i := range recs {
		m, err := project(recs[i])
		if err != nil {
			return nil, errors.Wrap(err, "projecting record")
		}
		projected[i] = m
		idx[i] = i
	}
	sortProjected(projected, idx, ords)
	sorted := make([]T, len(recs))
	for i, j := range idx {
		sorted[i] = recs[j]
	}
	return sorted, nil
}

func (c *Collection[T, PT]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	recs, err := c.all(ctx)
	if err != nil {
		return zero, err
	}
	if i := indexOf[T, PT](recs, id); i >= 0 {
		return recs[i], nil
	}
	return zero, ErrNotFound
}

// Filter returns the records whose fields all equal the given criteria.
func (c *Collection[T, PT]) Filter(ctx context.Context, criteria Fields, ords ...Ordering) ([]T, error) {
	want, err := criteria.normalize()
	if err != nil {
		return nil, err
	}
	recs, err := c.all(ctx)
	if err != nil {
		return nil, err
	}
	filtered := make([]T, 0, len(recs))
	for _, rec := range recs {
		m, err := project(rec)
		if err != nil {
			return nil, errors.Wrap(err, "projecting record")
		}
		if matches(m, want) {
			filtered = append(filtered, rec)
		}
	}
	return c.sort(filtered, ords)
}

// Create stores a new record. The id and timestamps are generated; rec must not carry an id.
func (c *Collection[T, PT]) Create(ctx context.Context, rec T) (T, error) {
	var zero T
	if PT(&rec).Meta().ID != "" {
		return zero, core.NewValidationError(ErrIDNotAllowed, core.FieldError{Field: "id", Error: ErrIDNotAllowed.Error()})
	}
	err := c.mutate(ctx, func(recs []T) ([]T, error) {
		if err := c.Prepare(recs, &rec); err != nil {
			return nil, err
		}
		return append(recs, rec), nil
	})
	if err != nil {
		return zero, err
	}
	return rec, nil
}

// Update shallow-merges fields onto the record with the given id and returns the merged record.
func (c *Collection[T, PT]) Update(ctx context.Context, id string, fields Fields) (T, error) {
	var merged T
	err := c.mutate(ctx, func(recs []T) ([]T, error) {
		i := indexOf[T, PT](recs, id)
		if i < 0 {
			return nil, ErrNotFound
		}
		var err error
		if merged, err = c.Merge(recs[i], fields); err != nil {
			return nil, err
		}
		recs[i] = merged
		return recs, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return merged, nil
}

// Merge returns rec with fields merged over it, normalized, validated and touched. It does not
// save anything; use it from Mutate.
func (c *Collection[T, PT]) Merge(rec T, fields Fields) (T, error) {
	var merged T
	orig := PT(&rec).Meta()
	if err := merge(rec, orig.ID, fields, &merged); err != nil {
		return merged, err
	}
	meta := PT(&merged).Meta()
	meta.ID = orig.ID
	meta.CreatedDate = orig.CreatedDate
	meta.CreatedBy = orig.CreatedBy
	if err := c.Touch(&merged); err != nil {
		return merged, err
	}
	return merged, nil
}

// Remove deletes the record with the given id. It reports whether a record was removed; removing
// an absent id leaves the document untouched.
func (c *Collection[T, PT]) Remove(ctx context.Context, id string) (bool, error) {
	var removed bool
	err := c.mutate(ctx, func(recs []T) ([]T, error) {
		i := indexOf[T, PT](recs, id)
		if i < 0 {
			return nil, errSkipSave
		}
		removed = true
		return append(recs[:i], recs[i+1:]...), nil
	})
	return removed, err
}

// Mutate runs fn as one atomic load-mutate-save unit. New records appended by fn must go through
// Prepare and changed ones through Touch (or Merge). Returning an error from fn discards every
// change.
func (c *Collection[T, PT]) Mutate(ctx context.Context, fn func(recs []T) ([]T, error)) error {
	return c.mutate(ctx, fn)
}

// Prepare readies a new record for insertion among existing: defaults, normalization,
// validation, a fresh id and creation timestamps.
func (c *Collection[T, PT]) Prepare(existing []T, rec *T) error {
	if c.schema.Defaults != nil {
		c.schema.Defaults(rec)
	}
	if c.schema.Normalize != nil {
		c.schema.Normalize(rec)
	}
	if c.schema.Validate != nil {
		if err := c.schema.Validate(rec); err != nil {
			return err
		}
	}
	if c.schema.BeforeCreate != nil {
		if err := c.schema.BeforeCreate(existing, rec); err != nil {
			return err
		}
	}

	meta := PT(rec).Meta()
	meta.ID = c.db.newID()
	for indexOf[T, PT](existing, meta.ID) >= 0 {
		meta.ID = c.db.newID()
	}
	now := core.NowFunc()
	meta.CreatedDate = now
	meta.UpdatedDate = now
	return nil
}

// Touch normalizes and validates a changed record and refreshes its updated_date.
func (c *Collection[T, PT]) Touch(rec *T) error {
	if c.schema.Normalize != nil {
		c.schema.Normalize(rec)
	}
	if c.schema.Validate != nil {
		if err := c.schema.Validate(rec); err != nil {
			return err
		}
	}
	PT(rec).Meta().UpdatedDate = core.NowFunc()
	return nil
}

func indexOf[T any, PT EntityPtr[T]](recs []T, id string) int {
	if id == "" {
		return -1
	}
	for i := range recs {
		if PT(&recs[i]).Meta().ID == id {
			return i
		}
	}
	return -1
}
