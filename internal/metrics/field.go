package metrics

import (
	"encoding/json"
	"fmt"
)

// NA is how an unknown field is displayed.
const NA = "N/A"

// Field is a single reading that is either known or carries the reason it
// is not.
type Field[T any] struct {
	Value T
	Err   error
}

// Known wraps a successful reading.
func Known[T any](v T) Field[T] {
	return Field[T]{Value: v}
}

// Unknown records a failed reading. err is classified.
func Unknown[T any](err error) Field[T] {
	if err == nil {
		err = ErrUnavailable
	}
	return Field[T]{Err: Classify(err)}
}

// FieldOf builds a Field from a value/error pair as returned by gopsutil.
func FieldOf[T any](v T, err error) Field[T] {
	if err != nil {
		return Unknown[T](err)
	}
	return Known(v)
}

// OK reports whether the reading is known.
func (f Field[T]) OK() bool {
	return f.Err == nil
}

// Denied reports whether the reading failed for lack of permission.
func (f Field[T]) Denied() bool {
	return IsPermissionDenied(f.Err)
}

// Or returns the value, or def when the reading is unknown.
func (f Field[T]) Or(def T) T {
	if f.Err != nil {
		return def
	}
	return f.Value
}

// Format renders the value with fn, or NA when unknown.
func (f Field[T]) Format(fn func(T) string) string {
	if f.Err != nil {
		return NA
	}
	return fn(f.Value)
}

// String renders the value with %v, or NA when unknown.
func (f Field[T]) String() string {
	if f.Err != nil {
		return NA
	}
	return fmt.Sprintf("%v", f.Value)
}

type fieldJSON[T any] struct {
	Value *T   `json:"value,omitempty"`
	Error string `json:"error,omitempty"`
}

// MarshalJSON encodes a known field as {"value": v} and an unknown one as
// {"error": "reason"}.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if f.Err != nil {
		return json.Marshal(fieldJSON[T]{Error: f.Err.Error()})
	}
	v := f.Value
	return json.Marshal(fieldJSON[T]{Value: &v})
}
