package store

import (
	"bytes"
	"encoding/json"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/coursebox/backend/core"
)

// protected fields are set once at creation and silently kept on update.
var protectedFields = []string{"created_date", "created_by"}

// Fields is a set of record fields keyed by their JSON names, e.g. {"order": 2}.
type Fields map[string]interface{}

// Ordering sorts records by one JSON field.
type Ordering struct {
	Field     string
	Ascending bool
}

func (ord Ordering) String() string {
	if ord.Ascending {
		return ord.Field
	}
	return "-" + ord.Field
}

// ParseOrderings parses "-created_date,title" into orderings; a leading "-" means descending.
func ParseOrderings(s string) []Ordering {
	var ords []Ordering
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		field = strings.TrimPrefix(field, "-")
		if field == "" {
			continue
		}
		ords = append(ords, Ordering{Field: field, Ascending: !descending})
	}
	return ords
}

// project returns v as a generic JSON object. Numbers are kept as json.Number so they compare
// exactly.
func project(v interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return decodeObject(data)
}

func decodeObject(data []byte) (map[string]interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var m map[string]interface{}
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	return m, nil
}

// normalize passes fields through JSON so Go values (ints, time.Time, structs) compare equal to
// what a record projects to.
func (flds Fields) normalize() (map[string]interface{}, error) {
	if len(flds) == 0 {
		return map[string]interface{}{}, nil
	}
	m, err := project(map[string]interface{}(flds))
	if err != nil {
		return nil, core.NewValidationError(errors.Wrap(err, "encoding fields"))
	}
	return m, nil
}

// merge shallow-merges patch over the record: fields named in patch win, all others are kept.
func merge(rec interface{}, id string, patch Fields, dst interface{}) error {
	base, err := project(rec)
	if err != nil {
		return errors.Wrap(err, "projecting record")
	}
	over, err := patch.normalize()
	if err != nil {
		return err
	}
	if v, ok := over["id"]; ok {
		if s, isStr := v.(string); !isStr || s != id {
			return core.NewValidationError(ErrImmutableField, core.FieldError{Field: "id", Error: ErrImmutableField.Error()})
		}
	}
	for _, f := range protectedFields {
		delete(over, f)
	}
	for k, v := range over {
		base[k] = v
	}

	data, err := json.Marshal(base)
	if err != nil {
		return errors.Wrap(err, "encoding merged record")
	}
	if err = json.Unmarshal(data, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return core.NewValidationError(err, core.FieldError{
				Field: typeErr.Field,
				Error: "expected a value of type " + typeErr.Type.String(),
			})
		}
		return core.NewValidationError(err)
	}
	return nil
}

// matches reports whether every criterion equals the record's field of the same name.
func matches(rec map[string]interface{}, criteria map[string]interface{}) bool {
	for k, want := range criteria {
		got, ok := rec[k]
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

// sortProjected stable-sorts indexes of projected records by the given orderings.
func sortProjected(projected []map[string]interface{}, idx []int, ords []Ordering) {
	sort.SliceStable(idx, func(i, j int) bool {
		a, b := projected[idx[i]], projected[idx[j]]
		for _, ord := range ords {
			c := compareValues(a[ord.Field], b[ord.Field])
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})
}

func typeRank(v interface{}) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case json.Number:
		return 2
	case string:
		return 3
	default:
		return 4
	}
}

func compareValues(a, b interface{}) int {
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch av := a.(type) {
	case bool:
		bv := b.(bool)
		switch {
		case av == bv:
			return 0
		case !av:
			return -1
		default:
			return 1
		}
	case json.Number:
		af, _ := av.Float64()
		bf, _ := b.(json.Number).Float64()
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	case string:
		bv := b.(string)
		// timestamps are stored as RFC 3339 strings whose lexical order is not chronological
		// once fractional seconds are trimmed.
		if at, err := time.Parse(time.RFC3339Nano, av); err == nil {
			if bt, err := time.Parse(time.RFC3339Nano, bv); err == nil {
				switch {
				case at.Before(bt):
					return -1
				case at.After(bt):
					return 1
				}
				return 0
			}
		}
		return strings.Compare(av, bv)
	}
	return 0
}

// zero time as encoded by time.Time
var zeroTimeJSON = []byte(`"0001-01-01T00:00:00Z"`)

// storedByID indexes the raw records of a root array by id. The first record of an id wins.
func storedByID(raw json.RawMessage) map[string]map[string]json.RawMessage {
	var recs []json.RawMessage
	if err := json.Unmarshal(raw, &recs); err != nil {
		return nil
	}
	byID := make(map[string]map[string]json.RawMessage, len(recs))
	for _, r := range recs {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(r, &obj); err != nil {
			continue
		}
		var id string
		if err := json.Unmarshal(obj["id"], &id); err != nil || id == "" {
			continue
		}
		if _, ok := byID[id]; !ok {
			byID[id] = obj
		}
	}
	return byID
}

// overlay lays the encoded record data over orig.
func overlay(orig map[string]json.RawMessage, data []byte) ([]byte, error) {
	var proj map[string]json.RawMessage
	if err := json.Unmarshal(data, &proj); err != nil {
		return nil, err
	}
	merged := make(map[string]json.RawMessage, len(orig)+len(proj))
	for k, v := range orig {
		merged[k] = v
	}
	for k, v := range proj {
		if _, had := orig[k]; !had && isUnsetJSON(v) {
			continue
		}
		merged[k] = v
	}
	return json.Marshal(merged)
}

func isUnsetJSON(v json.RawMessage) bool {
	v = bytes.TrimSpace(v)
	return bytes.Equal(v, []byte("null")) || bytes.Equal(v, zeroTimeJSON)
}
