package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"medbook/pkg/logger"
	"medbook/pkg/model"
	"medbook/pkg/token"
)

func TestAuthentication_MissingHeader(t *testing.T) {
	log := logger.New(logger.Config{Level: "error", Format: logger.FormatJSON, Service: "test"})
	tokens := token.NewManager("test-secret", time.Hour)
	handler := Authentication(tokens, nil, log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run without a token")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/appointments", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestAuthentication_MalformedHeader(t *testing.T) {
	log := logger.New(logger.Config{Level: "error", Format: logger.FormatJSON, Service: "test"})
	tokens := token.NewManager("test-secret", time.Hour)
	handler := Authentication(tokens, nil, log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run with a malformed header")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments", nil)
	req.Header.Set("Authorization", "Token abc")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestAuthentication_BadSignature(t *testing.T) {
	log := logger.New(logger.Config{Level: "error", Format: logger.FormatJSON, Service: "test"})
	tokens := token.NewManager("test-secret", time.Hour)
	otherTokens := token.NewManager("other-secret", time.Hour)

	signed, err := otherTokens.Issue("64b0c8a9e4b0f1a2b3c4d5e6", model.RolePatient)
	if err != nil {
		t.Fatal(err)
	}

	handler := Authentication(tokens, nil, log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run with a foreign signature")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments", nil)
	req.Header.Set("Authorization", "Bearer "+signed)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestAuthentication_InjectsRequester(t *testing.T) {
	log := logger.New(logger.Config{Level: "error", Format: logger.FormatJSON, Service: "test"})
	tokens := token.NewManager("test-secret", time.Hour)

	signed, err := tokens.Issue("64b0c8a9e4b0f1a2b3c4d5e6", model.RoleDoctor)
	if err != nil {
		t.Fatal(err)
	}

	var seen model.Requester
	handler := Authentication(tokens, nil, log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = RequesterFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments", nil)
	req.Header.Set("Authorization", "Bearer "+signed)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if seen.ID != "64b0c8a9e4b0f1a2b3c4d5e6" || seen.Role != model.RoleDoctor {
		t.Errorf("unexpected requester: %+v", seen)
	}
}

func TestAuthentication_SkipsPublicPaths(t *testing.T) {
	log := logger.New(logger.Config{Level: "error", Format: logger.FormatJSON, Service: "test"})
	tokens := token.NewManager("test-secret", time.Hour)
	skip := func(r *http.Request) bool {
		return strings.HasPrefix(r.URL.Path, "/api/v1/auth/")
	}

	handler := Authentication(tokens, skip, log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected public path to bypass auth, got %d", rec.Code)
	}
}
