package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsThroughWrapChain(t *testing.T) {
	base := New(ErrNotFound, "item 7 not found")
	wrapped := fmt.Errorf("restoring item 7: %w", base)

	if !Is(wrapped, ErrNotFound) {
		t.Fatalf("expected NOT_FOUND through fmt wrap, got %v", wrapped)
	}
	if Is(wrapped, ErrDuplicateKey) {
		t.Fatal("did not expect DUPLICATE_KEY")
	}
	if Is(errors.New("plain"), ErrNotFound) {
		t.Fatal("plain error must not match")
	}
}

func TestIsNestedCodes(t *testing.T) {
	inner := New(ErrDuplicateKey, "category name taken")
	outer := Wrap(ErrInvalid, "creating category", inner)

	if !Is(outer, ErrInvalid) || !Is(outer, ErrDuplicateKey) {
		t.Fatalf("expected both codes to match on %v", outer)
	}
	if got := CodeOf(outer); got != ErrInvalid {
		t.Fatalf("CodeOf = %s, want %s", got, ErrInvalid)
	}
	if got := CodeOf(errors.New("x")); got != ErrInternal {
		t.Fatalf("CodeOf plain = %s, want %s", got, ErrInternal)
	}
}

func TestErrorMessage(t *testing.T) {
	err := Wrap(ErrStorageUnavailable, "opening store", errors.New("disk full"))
	want := "[STORAGE_UNAVAILABLE] opening store: disk full"
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}
