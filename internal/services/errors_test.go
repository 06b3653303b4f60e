package services

import (
	"errors"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	base := errors.New("disk full")
	err := Wrap(ErrConflict, "catalog", "append", "key mutable-plaits", base)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped base error, got %v", err)
	}
	want := "conflict: catalog: append: key mutable-plaits: disk full"
	if err.Error() != want {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestWrapNilMarkerDefaultsToValidation(t *testing.T) {
	err := Wrap(nil, "rig", "assemble", "", nil)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation fallback, got %v", err)
	}
}

func TestRetryable(t *testing.T) {
	if !Retryable(Wrap(ErrConflict, "catalog", "append", "", nil)) {
		t.Fatal("conflict should be retryable")
	}
	if !Retryable(Wrap(ErrInference, "detect", "infer", "", nil)) {
		t.Fatal("inference failure should be retryable")
	}
	if Retryable(Wrap(ErrValidation, "provenance", "new", "", nil)) {
		t.Fatal("validation failure should not be retryable")
	}
}
