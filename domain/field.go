package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

// Field is one slot of a merge patch. It distinguishes three states:
// absent (the key was not in the document), null (explicit null) and set.
//
// Field relies on encoding/json calling UnmarshalJSON only for keys that are
// present, including keys whose value is null.
type Field[T any] struct {
	present bool
	null    bool
	value   T
}

func Set[T any](v T) Field[T] {
	return Field[T]{present: true, value: v}
}

func Null[T any]() Field[T] {
	return Field[T]{present: true, null: true}
}

func (f Field[T]) Present() bool { return f.present }

func (f Field[T]) Null() bool { return f.present && f.null }

// Get returns the value and true when the field carries a concrete value.
func (f Field[T]) Get() (T, bool) {
	if !f.present || f.null {
		var zero T
		return zero, false
	}
	return f.value, true
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.present = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.null = true
		var zero T
		f.value = zero
		return nil
	}
	f.null = false
	return json.Unmarshal(data, &f.value)
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.present || f.null {
		return []byte("null"), nil
	}
	return json.Marshal(f.value)
}

// decodePatch decodes a merge patch document into dst. Unknown keys and
// anything that is not a JSON object are rejected as ErrInvalidPatch.
func decodePatch(data []byte, dst any) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return InvalidPatch("patch must be a JSON object")
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return InvalidPatch("field %q has the wrong type", typeErr.Field)
		}
		return InvalidPatch("%v", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return InvalidPatch("trailing data after patch document")
	}
	return nil
}
