package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
)

var (
	ErrEnvelopeShape = errors.New("response envelope does not match the expected shape")
	ErrMissingData   = errors.New("response envelope carries no data")
)

// Envelope is the typed client-side view of Response.
// T is the shape the call site expects under "data".
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    *T     `json:"data,omitempty"`
	Token   string `json:"token,omitempty"`
	Count   *int   `json:"count,omitempty"`
}

// Validator is implemented by payloads that can tell a real record from a
// zero value decoded out of an unrelated object
type Validator interface {
	Validate() error
}

// Decode parses raw into an Envelope[T].
// A body whose shape does not fit T, a failed envelope that still carries
// data, or data rejected by its Validator (per element for slices) is
// rejected with ErrEnvelopeShape.
func Decode[T any](raw []byte) (*Envelope[T], error) {
	var env Envelope[T]
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEnvelopeShape, err)
	}
	if !env.Success && env.Data != nil {
		return nil, fmt.Errorf("%w: unsuccessful response carries data", ErrEnvelopeShape)
	}
	if env.Data != nil {
		if err := validate(*env.Data); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEnvelopeShape, err)
		}
	}
	return &env, nil
}

func validate(data interface{}) error {
	if v, ok := data.(Validator); ok {
		return v.Validate()
	}
	rv := reflect.ValueOf(data)
	if rv.Kind() != reflect.Slice {
		return nil
	}
	for i := 0; i < rv.Len(); i++ {
		v, ok := rv.Index(i).Interface().(Validator)
		if !ok {
			return nil
		}
		if err := v.Validate(); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
	}
	return nil
}

// Require returns the data of a successful envelope
func (e *Envelope[T]) Require() (T, error) {
	var zero T
	if e == nil || !e.Success {
		msg := "unsuccessful response"
		if e != nil && e.Message != "" {
			msg = e.Message
		}
		return zero, fmt.Errorf("%w: %s", ErrMissingData, msg)
	}
	if e.Data == nil {
		return zero, ErrMissingData
	}
	return *e.Data, nil
}
