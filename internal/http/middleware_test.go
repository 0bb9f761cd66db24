package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/example/court-booking/internal/application"
)

type fakeResolver struct {
	got       application.Credentials
	principal application.Principal
	err       error
}

func (f *fakeResolver) Resolve(_ context.Context, creds application.Credentials) (application.Principal, error) {
	f.got = creds
	return f.principal, f.err
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	var seen string
	handler := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	t.Run("honours the incoming header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("X-Request-Id", "abc-123")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if seen != "abc-123" || rec.Header().Get("X-Request-Id") != "abc-123" {
			t.Fatalf("expected abc-123, context=%q header=%q", seen, rec.Header().Get("X-Request-Id"))
		}
	})

	t.Run("generates one when missing", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		if len(seen) != 36 || rec.Header().Get("X-Request-Id") != seen {
			t.Fatalf("expected a generated uuid, got %q", seen)
		}
	})
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	t.Run("passes credentials and stores the principal", func(t *testing.T) {
		resolver := &fakeResolver{principal: application.Principal{IsAdmin: true}}
		var got application.Principal
		handler := Authenticate(resolver, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, _ = PrincipalFromContext(r.Context())
			w.WriteHeader(http.StatusNoContent)
		}))

		req := httptest.NewRequest(http.MethodGet, "/venues/v1/courts", nil)
		req.Header.Set("Authorization", "bearer secret-key")
		req.Header.Set("X-Profile-ID", " profile-9 ")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
		if resolver.got.AdminKey != "secret-key" || resolver.got.ProfileID != "profile-9" {
			t.Fatalf("unexpected credentials: %+v", resolver.got)
		}
		if !got.IsAdmin {
			t.Fatalf("principal not stored: %+v", got)
		}
	})

	t.Run("rejects an invalid admin key", func(t *testing.T) {
		resolver := &fakeResolver{err: application.ErrInvalidAdminKey}
		handler := Authenticate(resolver, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("next handler must not run")
		}))

		req := httptest.NewRequest(http.MethodGet, "/venues/v1/courts", nil)
		req.Header.Set("Authorization", "Bearer wrong")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		var body errorResponse
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil || body.ErrorCode != "UNAUTHORIZED" {
			t.Fatalf("unexpected body %+v, %v", body, err)
		}
	})

	t.Run("ignores non bearer schemes", func(t *testing.T) {
		resolver := &fakeResolver{}
		handler := Authenticate(resolver, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic Zm9vOmJhcg==")
		handler.ServeHTTP(httptest.NewRecorder(), req)
		if resolver.got.AdminKey != "" {
			t.Fatalf("expected no admin key, got %q", resolver.got.AdminKey)
		}
	})
}

func TestRequestLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	handler := RequestID()(RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if LoggerFromContext(r.Context()) == nil {
			t.Error("expected a request scoped logger")
		}
		w.WriteHeader(http.StatusTeapot)
	})))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "req-7")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	line := buf.String()
	for _, want := range []string{`"request_id":"req-7"`, `"status":418`, `"path":"/healthz"`, `"duration_ms":`} {
		if !strings.Contains(line, want) {
			t.Fatalf("log line %q misses %s", line, want)
		}
	}
}
