package commonerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestDomainError_IsMatchesDerivedErrors(t *testing.T) {
	cause := errors.New("connection refused")
	derived := ErrStoreUnavailable.WithCause(cause)

	if !errors.Is(derived, ErrStoreUnavailable) {
		t.Error("expected derived error to match sentinel")
	}
	if !errors.Is(derived, cause) {
		t.Error("expected derived error to unwrap to cause")
	}
	if errors.Is(derived, ErrNotFound) {
		t.Error("expected derived error not to match a different sentinel")
	}
}

func TestDomainError_WrappedStillClassified(t *testing.T) {
	err := fmt.Errorf("update training: %w", ErrLockedWindow)

	de, ok := AsDomainError(err)
	if !ok {
		t.Fatal("expected domain error")
	}
	if de.HTTPStatus() != http.StatusUnprocessableEntity {
		t.Errorf("expected status 422, got %d", de.HTTPStatus())
	}
}

func TestDomainError_WithDetails(t *testing.T) {
	err := ErrValidation.WithDetails(map[string]any{"email": "email"})

	if err.Details()["email"] != "email" {
		t.Errorf("expected details to be kept, got %v", err.Details())
	}
	if ErrValidation.Details() != nil {
		t.Error("expected sentinel to stay untouched")
	}
	if err.Error() != "validation failed" {
		t.Errorf("unexpected message %q", err.Error())
	}
}
