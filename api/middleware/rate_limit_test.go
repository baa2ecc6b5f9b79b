package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type windowStore struct {
	counts map[string]int64
	scopes []string
}

func (s *windowStore) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	if s.counts == nil {
		s.counts = map[string]int64{}
	}
	s.counts[scope]++
	s.scopes = append(s.scopes, scope)
	return s.counts[scope] <= limit, s.counts[scope], nil
}

func TestClientLimiterSeparatesClients(t *testing.T) {
	limiter := NewClientLimiter(1, 2)
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	if !limiter.Allow("10.0.0.1") || !limiter.Allow("10.0.0.1") {
		t.Fatal("expected burst of two to pass")
	}
	if limiter.Allow("10.0.0.1") {
		t.Fatal("expected third request in the same instant to be limited")
	}
	if !limiter.Allow("10.0.0.2") {
		t.Fatal("expected a different client to have its own bucket")
	}

	now = now.Add(time.Second)
	if !limiter.Allow("10.0.0.1") {
		t.Fatal("expected a token to refill after one second")
	}
}

func TestClientLimiterEvictsIdleClients(t *testing.T) {
	limiter := NewClientLimiter(1, 1)
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	limiter.Allow("10.0.0.1")
	now = now.Add(clientIdleTTL + time.Minute)
	limiter.Allow("10.0.0.2")
	if _, ok := limiter.clients["10.0.0.1"]; ok {
		t.Fatal("expected idle client to be evicted")
	}
}

func TestRateLimitMiddlewareReturns429(t *testing.T) {
	limiter := NewClientLimiter(1, 1)
	handler := RateLimit(limiter, nil)(okHandler(nil))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/", nil))

	if first.Code != http.StatusOK {
		t.Fatalf("expected first request 200 got %d", first.Code)
	}
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request 429 got %d", second.Code)
	}
}

func TestWindowLimitScopesByClient(t *testing.T) {
	store := &windowStore{}
	handler := WindowLimit("pin", store, 1, time.Minute, nil)(okHandler(nil))

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/deliveries/pin/1234", nil)
		req.Header.Set("X-Forwarded-For", ip+", 10.1.1.1")
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		return resp.Code
	}

	if code := send("203.0.113.5"); code != http.StatusOK {
		t.Fatalf("expected 200 got %d", code)
	}
	if code := send("203.0.113.5"); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", code)
	}
	if code := send("198.51.100.7"); code != http.StatusOK {
		t.Fatalf("expected other client 200 got %d", code)
	}
	if store.scopes[0] != "pin:203.0.113.5" {
		t.Fatalf("unexpected scope %s", store.scopes[0])
	}
}
