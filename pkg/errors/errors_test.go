package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorCodesMapToHTTPStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"not found", NotFound("Appointment"), CodeNotFound, http.StatusNotFound},
		{"validation", Validation("bad input", nil), CodeValidation, http.StatusUnprocessableEntity},
		{"invalid input", InvalidInput("bad id"), CodeInvalidInput, http.StatusBadRequest},
		{"unauthorized", Unauthorized("no token"), CodeUnauthorized, http.StatusUnauthorized},
		{"forbidden", Forbidden("not yours"), CodeForbidden, http.StatusForbidden},
		{"conflict", Conflict("slot taken"), CodeConflict, http.StatusConflict},
		{"internal", Internal("boom", nil), CodeInternal, http.StatusInternalServerError},
		{"timeout", Timeout("too slow"), CodeTimeout, http.StatusGatewayTimeout},
		{"unavailable", Unavailable("mongo"), CodeUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, tt.err.Code)
			}
			if tt.err.StatusCode() != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, tt.err.StatusCode())
			}
		})
	}
}

func TestAsAppError_WrapsUnknownErrors(t *testing.T) {
	raw := errors.New("connection reset")
	appErr := AsAppError(raw)

	if appErr.Code != CodeInternal {
		t.Errorf("expected INTERNAL_ERROR, got %s", appErr.Code)
	}
	if appErr.Message == raw.Error() {
		t.Error("raw error text must not become the client message")
	}
	if !errors.Is(appErr, raw) {
		t.Error("wrapped cause must remain reachable via errors.Is")
	}
}

func TestAsAppError_UnwrapsThroughWrapping(t *testing.T) {
	orig := NotFoundWithID("Appointment", "abc123")
	wrapped := fmt.Errorf("while handling request: %w", orig)

	appErr := AsAppError(wrapped)
	if appErr != orig {
		t.Error("expected the original AppError back")
	}
	if appErr.Details["id"] != "abc123" {
		t.Errorf("expected id detail preserved, got %v", appErr.Details)
	}
}

func TestNotFoundWithID_DetailsButGenericMessage(t *testing.T) {
	err := NotFoundWithID("Doctor", "64b0")
	if err.Message != "Doctor not found" {
		t.Errorf("unexpected message: %q", err.Message)
	}
	if err.Details["resource"] != "Doctor" || err.Details["id"] != "64b0" {
		t.Errorf("unexpected details: %v", err.Details)
	}
}
