// Package store holds the JSON-document record store: the DocumentStore contract every storage
// driver implements, and the generic Collection built on top of it.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/pkg/errors"
)

var (
	// errors
	ErrNotFound        = errors.New("record not found")
	ErrCorruptDocument = errors.New("corrupt document")
	ErrInvalidName     = errors.New("invalid document name")
	ErrImmutableField  = errors.New("field cannot be changed")
	ErrIDNotAllowed    = errors.New("id is generated by the server and cannot be supplied")
	ErrRootKeyNotArray = errors.New("root key does not hold an array")

	errEmptyContent = errors.New("empty content")

	nameRegex = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

type (
	// Document is one stored JSON object: a root key mapping to an array of records, plus any
	// other top-level keys found in the stored object (kept untouched on save).
	Document map[string]json.RawMessage

	// DocumentStore loads and saves whole named documents. Save must replace the previous
	// content atomically: readers see either the old or the new document, never a mix.
	DocumentStore interface {
		// Load returns an empty Document when nothing was saved under name yet, and a
		// *CorruptDocumentError when the stored content cannot be parsed.
		Load(ctx context.Context, name string) (Document, error)
		Save(ctx context.Context, name string, doc Document) error
	}

	// CorruptDocumentError reports a stored document that exists but cannot be parsed.
	CorruptDocumentError struct {
		Name string
		Err  error
	}
)

func (e *CorruptDocumentError) Error() string {
	return fmt.Sprintf("corrupt document %q: %v", e.Name, e.Err)
}

func (e *CorruptDocumentError) Unwrap() error { return e.Err }

func (e *CorruptDocumentError) Is(target error) bool { return target == ErrCorruptDocument }

// ValidateName rejects names that could escape a storage namespace (paths, key separators, ..).
func ValidateName(name string) error {
	if !nameRegex.MatchString(name) {
		return errors.Wrapf(ErrInvalidName, "%q", name)
	}
	return nil
}

// Decode parses raw stored bytes into a Document. Values are compacted so that a saved and then
// loaded document compares equal to the original. Empty content is corrupt: only a document that
// was never saved loads empty.
func Decode(name string, data []byte) (Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &CorruptDocumentError{Name: name, Err: errEmptyContent}
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &CorruptDocumentError{Name: name, Err: err}
	}
	if doc == nil { // literal `null`
		return Document{}, nil
	}
	for k, raw := range doc {
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return nil, &CorruptDocumentError{Name: name, Err: err}
		}
		doc[k] = buf.Bytes()
	}
	return doc, nil
}

// Encode serializes a Document the way drivers persist it.
func Encode(doc Document) ([]byte, error) {
	if doc == nil {
		doc = Document{}
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Clone returns a deep copy of the document.
func (doc Document) Clone() Document {
	c := make(Document, len(doc))
	for k, v := range doc {
		c[k] = append(json.RawMessage(nil), v...)
	}
	return c
}

// Records returns the raw records held under rootKey. A missing key (or `null`) yields no records.
func (doc Document) Records(rootKey string) ([]json.RawMessage, error) {
	raw, ok := doc[rootKey]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return []json.RawMessage{}, nil
	}
	var recs []json.RawMessage
	if err := json.Unmarshal(raw, &recs); err != nil {
		return nil, ErrRootKeyNotArray
	}
	return recs, nil
}
