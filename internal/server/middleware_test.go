package server

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// TestPreflight verifies OPTIONS is answered with an empty 200 and the CORS
// headers, without an API key, on any path.
func TestPreflight(t *testing.T) {
	srv := newTestServer(&fakeCalc{}, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/v1/activity-chart", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", rec.Body.String())
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("allow-origin = %q, want *", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Headers"); !strings.Contains(got, "apikey") || !strings.Contains(got, "authorization") {
		t.Errorf("allow-headers = %q", got)
	}
}

// TestCORSOnErrors verifies CORS headers are present on error responses too.
func TestCORSOnErrors(t *testing.T) {
	rec := do(t, newTestServer(&fakeCalc{}, nil), http.MethodPost, "/api/v1/activity-chart", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("allow-origin = %q, want *", got)
	}
}

// TestAPIKeyAuth verifies each accepted key header and the rejection codes.
func TestAPIKeyAuth(t *testing.T) {
	handler := APIKeyAuth("secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name   string
		header string
		value  string
		want   int
	}{
		{"x-api-key", "X-API-Key", "secret", http.StatusOK},
		{"apikey", "apikey", "secret", http.StatusOK},
		{"bearer", "Authorization", "Bearer secret", http.StatusOK},
		{"missing", "", "", http.StatusUnauthorized},
		{"wrong", "X-API-Key", "nope", http.StatusForbidden},
		{"basic auth ignored", "Authorization", "Basic c2VjcmV0", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

// TestRequestLoggingStatus verifies the logged status is the one written.
func TestRequestLoggingStatus(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	handler := RequestLogging(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	if !strings.Contains(buf.String(), "status=418") {
		t.Errorf("log = %q, want status=418", buf.String())
	}
	if strings.Contains(buf.String(), "caller=") {
		t.Errorf("log = %q, want no caller without tsnet", buf.String())
	}
}

// TestCallerIdentity verifies the tailnet login reaches the request log and
// that a failed lookup does not block the request.
func TestCallerIdentity(t *testing.T) {
	var buf bytes.Buffer
	srv := New(&fakeCalc{}, &fakeReader{}, fakePinger{}, testKey, slog.New(slog.NewTextHandler(&buf, nil)))
	srv.whoIs = func(_ context.Context, remoteAddr string) (string, error) {
		if strings.HasPrefix(remoteAddr, "100.64.0.1") {
			return "alice@example.com", nil
		}
		return "", errors.New("no such peer")
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.RemoteAddr = "100.64.0.1:41000"
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(buf.String(), "caller=alice@example.com") {
		t.Errorf("log = %q, want caller", buf.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.RemoteAddr = "10.0.0.9:5000"
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status after failed whois = %d, want 200", rec.Code)
	}
}
