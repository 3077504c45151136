package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNewCarriesCodeAndMessage(t *testing.T) {
	t.Parallel()

	err := New(CodeValidation, "quantity must be at least 1")
	if err.Code() != CodeValidation {
		t.Fatalf("unexpected code: %s", err.Code())
	}
	if err.Message() != "quantity must be at least 1" {
		t.Fatalf("unexpected message: %s", err.Message())
	}
}

func TestWrapPreservesCause(t *testing.T) {
	t.Parallel()

	cause := stdErrors.New("disk full")
	err := Wrap(CodeStorage, cause, "persisting cart")

	if !stdErrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be reachable via errors.Is")
	}
	if err.Code() != CodeStorage {
		t.Fatalf("unexpected code: %s", err.Code())
	}
}

func TestAsFindsTypedErrorThroughWrapping(t *testing.T) {
	t.Parallel()

	inner := New(CodeNotFound, "order not found")
	outer := fmt.Errorf("listing orders: %w", inner)

	typed := As(outer)
	if typed == nil {
		t.Fatal("expected typed error")
	}
	if typed.Code() != CodeNotFound {
		t.Fatalf("unexpected code: %s", typed.Code())
	}
}

func TestAsReturnsNilForPlainErrors(t *testing.T) {
	t.Parallel()

	if As(stdErrors.New("plain")) != nil {
		t.Fatal("expected nil for untyped error")
	}
	if As(nil) != nil {
		t.Fatal("expected nil for nil error")
	}
}

func TestIsCode(t *testing.T) {
	t.Parallel()

	err := New(CodeConflict, "concurrent write detected")
	if !IsCode(err, CodeConflict) {
		t.Fatal("expected IsCode match")
	}
	if IsCode(err, CodeStorage) {
		t.Fatal("unexpected IsCode match")
	}
}

func TestWithDetails(t *testing.T) {
	t.Parallel()

	err := New(CodeInvalidTransition, "cannot transition").
		WithDetails(map[string]string{"from": "delivered", "to": "pending"})

	details, ok := err.Details().(map[string]string)
	if !ok {
		t.Fatalf("unexpected details type: %T", err.Details())
	}
	if details["from"] != "delivered" || details["to"] != "pending" {
		t.Fatalf("unexpected details: %v", details)
	}
}

func TestMetadataForKnownCodes(t *testing.T) {
	t.Parallel()

	cases := map[Code]int{
		CodeValidation:        http.StatusBadRequest,
		CodeUnauthorized:      http.StatusUnauthorized,
		CodeForbidden:         http.StatusForbidden,
		CodeNotFound:          http.StatusNotFound,
		CodeConflict:          http.StatusConflict,
		CodeInvalidTransition: http.StatusUnprocessableEntity,
		CodeStorage:           http.StatusInternalServerError,
		CodeRemoteSync:        http.StatusServiceUnavailable,
		CodeInternal:          http.StatusInternalServerError,
	}
	for code, want := range cases {
		if got := MetadataFor(code).HTTPStatus; got != want {
			t.Fatalf("code %s: expected status %d, got %d", code, want, got)
		}
	}
}

func TestMetadataForUnknownCodeFallsBackToInternal(t *testing.T) {
	t.Parallel()

	meta := MetadataFor(Code("BOGUS"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("unexpected status: %d", meta.HTTPStatus)
	}
}
