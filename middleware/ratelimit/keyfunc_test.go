package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDefaultKeyFunc_PrefersForwardedFor(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r.RemoteAddr = "10.0.0.9:5555"
	r.Header.Set("X-Forwarded-For", "1.2.3.4, 5.6.7.8")

	if got := DefaultKeyFunc(r); got != "rate-limit-middleware:1.2.3.4" {
		t.Fatalf("expected first XFF ip, got %q", got)
	}
}

func TestDefaultKeyFunc_FallbacksToRemoteAddr(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r.RemoteAddr = "10.0.0.9:5555"

	if got := DefaultKeyFunc(r); got != "rate-limit-middleware:10.0.0.9" {
		t.Fatalf("expected remote host, got %q", got)
	}
}

func TestDefaultKeyFunc_ExtractsIPv4FromMappedAddress(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r.RemoteAddr = "[::ffff:192.168.1.20]:443"

	if got := DefaultKeyFunc(r); got != "rate-limit-middleware:192.168.1.20" {
		t.Fatalf("expected embedded ipv4, got %q", got)
	}
}

func TestDefaultKeyFunc_CoalescesUnparseableSources(t *testing.T) {
	for _, addr := range []string{"[2001:db8::1]:8080", "unix-socket", ""} {
		r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
		r.RemoteAddr = addr

		if got := DefaultKeyFunc(r); got != "rate-limit-middleware:0.0.0.0" {
			t.Fatalf("remote %q: expected fallback bucket, got %q", addr, got)
		}
	}
}

func TestHeaderKeyFunc_UsesHeaderThenFallback(t *testing.T) {
	fn := HeaderKeyFunc("X-Api-Key", nil)

	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	r.Header.Set("X-Api-Key", "k1")
	if got := fn(r); got != "rate-limit-middleware:X-Api-Key:k1" {
		t.Fatalf("expected header key, got %q", got)
	}

	r.Header.Del("X-Api-Key")
	if got := fn(r); got != "rate-limit-middleware:10.0.0.1" {
		t.Fatalf("expected ip fallback, got %q", got)
	}
}
