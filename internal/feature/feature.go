// Package feature holds what the screen controllers share: the wire codec for
// events and effects.
package feature

import (
	"errors"
	"fmt"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/validator"
)

// Effect is a one-shot side effect. Kind names it on the wire.
type Effect interface {
	Kind() string
}

// Events maps wire type names to event decoders for one screen.
type Events[E any] map[string]func(data []byte) (E, error)

// Decode reads {"type": "...", ...} and builds the matching event. Malformed
// JSON and unknown types are invalid input; field failures are returned as
// *validator.ValidationError.
func (m Events[E]) Decode(data []byte) (E, error) {
	var zero E
	var envelope struct {
		Type string `json:"type" validate:"required"`
	}
	if err := validator.Unmarshal(data, &envelope); err != nil {
		return zero, invalid(err)
	}

	decode, ok := m[envelope.Type]
	if !ok {
		return zero, apperrors.InvalidInput(fmt.Sprintf("unknown event type %q", envelope.Type))
	}

	e, err := decode(data)
	if err != nil {
		return zero, invalid(err)
	}
	return e, nil
}

// Types lists the accepted type names.
func (m Events[E]) Types() []string {
	types := make([]string, 0, len(m))
	for t := range m {
		types = append(types, t)
	}
	return types
}

// Static decodes to a fixed event that carries no fields.
func Static[E any](e E) func([]byte) (E, error) {
	return func([]byte) (E, error) { return e, nil }
}

// Payload decodes and validates a T, then converts it with to.
func Payload[T, E any](to func(T) E) func([]byte) (E, error) {
	return func(data []byte) (E, error) {
		var t T
		if err := validator.Unmarshal(data, &t); err != nil {
			var zero E
			return zero, err
		}
		return to(t), nil
	}
}

func invalid(err error) error {
	var valErr *validator.ValidationError
	var appErr *apperrors.AppError
	if errors.As(err, &valErr) || errors.As(err, &appErr) {
		return err
	}
	return apperrors.InvalidInput(err.Error())
}
