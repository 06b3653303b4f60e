package provenance

import (
	"fmt"

	"patchforge/internal/services"
)

// Origin identifies where a value came from.
type Origin string

const (
	OriginInference Origin = "external-inference"
	OriginManual    Origin = "manual-entry"
	OriginDerived   Origin = "derived"
	OriginDefault   Origin = "default"
)

var validOrigins = map[Origin]struct{}{
	OriginInference: {},
	OriginManual:    {},
	OriginDerived:   {},
	OriginDefault:   {},
}

// Status describes how much trust a value has earned.
type Status string

const (
	StatusUnconfirmed Status = "unconfirmed"
	StatusInferred    Status = "inferred"
	StatusConfirmed   Status = "confirmed"
)

// statusRank orders statuses for merge comparisons: confirmed > inferred > unconfirmed.
var statusRank = map[Status]int{
	StatusUnconfirmed: 0,
	StatusInferred:    1,
	StatusConfirmed:   2,
}

// Provenance records the origin of a value and a free-form source identifier
// (model name, user handle, derivation rule). Immutable once attached.
type Provenance struct {
	Origin Origin `json:"origin"`
	Source string `json:"source,omitempty"`
}

// Value wraps a value that may be uncertain with its provenance, a confidence
// in [0,1], and a review status. Values are immutable; deriving a changed
// value produces a new instance.
type Value[T any] struct {
	Value      T          `json:"value"`
	Provenance Provenance `json:"provenance"`
	Confidence float64    `json:"confidence"`
	Status     Status     `json:"status"`
}

// New constructs a provenanced value, enforcing the consistency invariant:
// confirmed values carry confidence 1.0 and a manual or derived origin.
func New[T any](value T, prov Provenance, confidence float64, status Status) (Value[T], error) {
	if _, ok := validOrigins[prov.Origin]; !ok {
		return Value[T]{}, services.Wrap(services.ErrValidation, "provenance", "new",
			fmt.Sprintf("unknown origin %q", prov.Origin), nil)
	}
	if _, ok := statusRank[status]; !ok {
		return Value[T]{}, services.Wrap(services.ErrValidation, "provenance", "new",
			fmt.Sprintf("unknown status %q", status), nil)
	}
	if confidence < 0 || confidence > 1 {
		return Value[T]{}, services.Wrap(services.ErrValidation, "provenance", "new",
			fmt.Sprintf("confidence %v outside [0,1]", confidence), nil)
	}
	if status == StatusConfirmed {
		if confidence != 1 {
			return Value[T]{}, services.Wrap(services.ErrValidation, "provenance", "new",
				fmt.Sprintf("confirmed value requires confidence 1.0, got %v", confidence), nil)
		}
		if prov.Origin != OriginManual && prov.Origin != OriginDerived {
			return Value[T]{}, services.Wrap(services.ErrValidation, "provenance", "new",
				fmt.Sprintf("confirmed value requires manual or derived origin, got %q", prov.Origin), nil)
		}
	}
	return Value[T]{Value: value, Provenance: prov, Confidence: confidence, Status: status}, nil
}

// Manual constructs a confirmed value entered by a human.
func Manual[T any](value T, source string) Value[T] {
	return Value[T]{
		Value:      value,
		Provenance: Provenance{Origin: OriginManual, Source: source},
		Confidence: 1,
		Status:     StatusConfirmed,
	}
}

// Inferred constructs an inferred value produced by an external capability.
func Inferred[T any](value T, source string, confidence float64) (Value[T], error) {
	return New(value, Provenance{Origin: OriginInference, Source: source}, confidence, StatusInferred)
}

// Derived constructs a value computed from other values.
func Derived[T any](value T, source string, confidence float64) (Value[T], error) {
	status := StatusInferred
	if confidence == 1 {
		status = StatusConfirmed
	}
	return New(value, Provenance{Origin: OriginDerived, Source: source}, confidence, status)
}

// Merge combines two provenanced values for the same logical field. The value
// with the higher status wins; ties go to the higher confidence; further ties
// keep the earlier value. Pure and stable.
func Merge[T any](earlier, later Value[T]) Value[T] {
	er, lr := statusRank[earlier.Status], statusRank[later.Status]
	if lr > er {
		return later
	}
	if lr == er && later.Confidence > earlier.Confidence {
		return later
	}
	return earlier
}
