package logging

import (
	"reflect"
	"strings"
)

// Mask replaces the value of every sensitive field.
const Mask = "********"

// DefaultSensitiveFragments are the key fragments that mark a field as
// sensitive. Matching is a case-insensitive substring test on the key.
var DefaultSensitiveFragments = []string{
	"password",
	"secret",
	"token",
	"key",
	"auth",
	"credentials",
	"code",
	"pin",
	"access_token",
	"refresh_token",
	"id_token",
}

// DefaultExemptKeys are structural keys written by the request pipeline
// itself. They would otherwise match the "code" fragment.
var DefaultExemptKeys = []string{
	"status_code",
	"http.status_code",
	"error_code",
}

// RedactionPolicy decides which fields are masked.
type RedactionPolicy struct {
	// Fragments mark a key as sensitive when contained in it.
	Fragments []string

	// Exempt keys are never masked. Compared case-insensitively.
	Exempt []string
}

// DefaultPolicy returns the redaction policy used by the service.
func DefaultPolicy() RedactionPolicy {
	return RedactionPolicy{
		Fragments: append([]string(nil), DefaultSensitiveFragments...),
		Exempt:    append([]string(nil), DefaultExemptKeys...),
	}
}

// Redactor masks sensitive values in structured log fields.
//
// Redaction never fails and never panics: it accepts any value, rebuilds
// mappings and sequences of mappings, and returns everything else as-is.
// Applying it twice yields the same result as applying it once.
type Redactor struct {
	fragments []string
	exempt    map[string]struct{}
}

// NewRedactor creates a Redactor for the given policy.
func NewRedactor(policy RedactionPolicy) *Redactor {
	r := &Redactor{
		fragments: make([]string, 0, len(policy.Fragments)),
		exempt:    make(map[string]struct{}, len(policy.Exempt)),
	}
	for _, f := range policy.Fragments {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			r.fragments = append(r.fragments, f)
		}
	}
	for _, k := range policy.Exempt {
		r.exempt[strings.ToLower(k)] = struct{}{}
	}
	return r
}

var defaultRedactor = NewRedactor(DefaultPolicy())

// Redact masks sensitive fields of data using the default policy.
func Redact(data map[string]any) map[string]any {
	return defaultRedactor.Redact(data)
}

// RedactValue is Redact for values of unknown shape. Non-mapping input is
// returned unchanged.
func RedactValue(v any) any {
	return defaultRedactor.RedactValue(v)
}

// Redact returns a copy of data with every sensitive field masked.
// A nil map yields nil.
func (r *Redactor) Redact(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}
	return r.redactMap(data, mapID(data), make(map[uintptr]struct{}))
}

// redactMap rebuilds data with its fields redacted. path holds the maps on
// the way down from the root; a map met again on its own path is a cycle
// and is masked instead of followed.
func (r *Redactor) redactMap(data map[string]any, id uintptr, path map[uintptr]struct{}) map[string]any {
	path[id] = struct{}{}
	defer delete(path, id)

	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = r.redactField(k, v, path)
	}
	return out
}

// RedactValue redacts v if it is a mapping and returns it unchanged otherwise.
func (r *Redactor) RedactValue(v any) any {
	return r.redactNested(v, make(map[uintptr]struct{}))
}

// IsSensitive reports whether key names a sensitive field.
func (r *Redactor) IsSensitive(key string) bool {
	lower := strings.ToLower(key)
	if _, ok := r.exempt[lower]; ok {
		return false
	}
	for _, f := range r.fragments {
		if strings.Contains(lower, f) {
			return true
		}
	}
	return false
}

func (r *Redactor) redactField(key string, value any, path map[uintptr]struct{}) any {
	if r.IsSensitive(key) && !isEmpty(value) {
		return Mask
	}
	return r.redactNested(value, path)
}

func (r *Redactor) redactNested(value any, path map[uintptr]struct{}) any {
	m, ok := r.asMap(value)
	if !ok {
		return r.redactSequence(value, path)
	}
	id := mapID(value)
	if _, cyclic := path[id]; cyclic {
		return Mask
	}
	return r.redactMap(m, id, path)
}

// redactSequence recurses into the mapping elements of a slice. Slices with
// no mapping element are returned as they came.
func (r *Redactor) redactSequence(value any, path map[uintptr]struct{}) any {
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return value
	}

	hasMap := false
	for i := 0; i < rv.Len(); i++ {
		if _, ok := r.asMap(rv.Index(i).Interface()); ok {
			hasMap = true
			break
		}
	}
	if !hasMap {
		return value
	}

	out := make([]any, rv.Len())
	for i := range out {
		elem := rv.Index(i).Interface()
		if _, ok := r.asMap(elem); ok {
			out[i] = r.redactNested(elem, path)
		} else {
			out[i] = elem
		}
	}
	return out
}

// mapID identifies the map behind v. Values that are not maps share id 0,
// which is never placed on a path.
func mapID(v any) uintptr {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return 0
	}
	return rv.Pointer()
}

// asMap views any map with string keys as map[string]any.
func (r *Redactor) asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case nil:
		return nil, false
	case map[string]any:
		if m == nil {
			return nil, false
		}
		return m, true
	case map[string]string:
		if m == nil {
			return nil, false
		}
		out := make(map[string]any, len(m))
		for k, s := range m {
			out[k] = s
		}
		return out, true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.IsNil() || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// isEmpty reports whether v carries no information worth masking: nil,
// false, zero numbers, and empty strings, maps and slices.
func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String, reflect.Map, reflect.Slice, reflect.Array:
		return rv.Len() == 0
	case reflect.Bool:
		return !rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
