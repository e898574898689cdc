package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHealthz(t *testing.T) {
	s := New(Config{Port: 0})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok"`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestCORSHeaders(t *testing.T) {
	s := New(Config{AllowedOrigins: []string{"https://demo.example.com"}})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://demo.example.com")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://demo.example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://elsewhere.example.com")
	w = httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("disallowed origin got Access-Control-Allow-Origin = %q", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	s := New(Config{DemoToken: "secret"})
	s.Router().Post("/api/thing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Preflight carries no Authorization header and must not be rejected.
	req := httptest.NewRequest(http.MethodOptions, "/api/thing", nil)
	req.Header.Set("Origin", "https://demo.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "x-session-token")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	if w.Code == http.StatusUnauthorized {
		t.Fatalf("preflight rejected by bearer gate: %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
	allowed := w.Header().Get("Access-Control-Allow-Headers")
	if !strings.Contains(strings.ToLower(allowed), "x-session-token") {
		t.Errorf("Access-Control-Allow-Headers = %q", allowed)
	}
}

func TestBearerGate(t *testing.T) {
	s := New(Config{DemoToken: "hunter2"})
	s.Router().Post("/api/thing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	hit := func(authorization string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/thing", nil)
		if authorization != "" {
			req.Header.Set("Authorization", authorization)
		}
		w := httptest.NewRecorder()
		s.Router().ServeHTTP(w, req)
		return w.Code
	}

	if code := hit(""); code != http.StatusUnauthorized {
		t.Errorf("no credential: status = %d, want 401", code)
	}
	if code := hit("Bearer wrong"); code != http.StatusUnauthorized {
		t.Errorf("wrong credential: status = %d, want 401", code)
	}
	if code := hit("hunter2"); code != http.StatusUnauthorized {
		t.Errorf("missing scheme: status = %d, want 401", code)
	}
	if code := hit("Bearer hunter2"); code != http.StatusOK {
		t.Errorf("valid credential: status = %d, want 200", code)
	}

	// The health check stays open.
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("healthz behind gate: status = %d", w.Code)
	}
}

func TestCORSHeadersOnErrorResponses(t *testing.T) {
	s := New(Config{DemoToken: "secret"})

	// A browser can only read the 401 if the CORS headers made it on.
	req := httptest.NewRequest(http.MethodPost, "/api/thing", nil)
	req.Header.Set("Origin", "https://demo.example.com")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q on error response", got)
	}
}

func TestBearerGateDisabled(t *testing.T) {
	s := New(Config{})
	s.Router().Post("/api/thing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/thing", nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 with gate disabled", w.Code)
	}
}
