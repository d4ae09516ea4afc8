package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientIPGeneric_DirectRemote(t *testing.T) {
	req := httptest.NewRequest("GET", "http://example.local/", nil)
	req.RemoteAddr = "203.0.113.5:54321"
	ip := clientIPGeneric(req, nil)
	if ip != "203.0.113.5" {
		t.Fatalf("expected direct remote IP, got %s", ip)
	}
}

func TestClientIPGeneric_TrustedProxyXFF(t *testing.T) {
	req := httptest.NewRequest("GET", "http://example.local/", nil)
	req.RemoteAddr = "198.51.100.10:443"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 198.51.100.10")
	ip := clientIPGeneric(req, []string{"198.51.100.10"})
	if ip != "203.0.113.7" {
		t.Fatalf("expected X-Forwarded-For first value, got %s", ip)
	}
}

func TestClientIPGeneric_TrustedProxyCIDR(t *testing.T) {
	req := httptest.NewRequest("GET", "http://example.local/", nil)
	req.RemoteAddr = "10.0.8.14:443"
	req.Header.Set("X-Real-IP", "203.0.113.9")
	ip := clientIPGeneric(req, []string{"10.0.0.0/8"})
	if ip != "203.0.113.9" {
		t.Fatalf("expected X-Real-IP value for trusted CIDR, got %s", ip)
	}
}

func TestClientIPGeneric_UntrustedProxyIgnoresXFF(t *testing.T) {
	req := httptest.NewRequest("GET", "http://example.local/", nil)
	req.RemoteAddr = "198.51.100.11:443"
	req.Header.Set("X-Forwarded-For", "203.0.113.8, 198.51.100.11")
	ip := clientIPGeneric(req, []string{"198.51.100.10"})
	if ip != "198.51.100.11" {
		t.Fatalf("expected remote IP when proxy untrusted, got %s", ip)
	}
}

func TestIPRateLimiter_BlocksOverLimit(t *testing.T) {
	l := &IPRateLimiter{
		window:      time.Minute,
		state:       make(map[string]timestamps),
		cleanupTick: time.Minute,
		maxReq:      2,
	}
	handler := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	var last int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("GET", "http://example.local/", nil)
		req.RemoteAddr = "203.0.113.20:1000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on third request, got %d", last)
	}
}
