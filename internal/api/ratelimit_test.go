package api

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hungerium/hungeriumm-sub001/internal/config"
)

// TestOriginChecker verifies exact, wildcard and default origins.
func TestOriginChecker(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		origin   string
		want     bool
	}{
		{"empty origin", nil, "", true},
		{"default localhost port", nil, "http://localhost:3000", true},
		{"default rejects remote", nil, "https://evil.example", false},
		{"exact", []string{"https://game.example"}, "https://game.example", true},
		{"subdomain wildcard", []string{"https://*.game.example"}, "https://play.game.example", true},
		{"wildcard needs subdomain", []string{"https://*.game.example"}, "https://game.example", false},
		{"allow all", []string{"*"}, "https://anything", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewOriginChecker(tt.patterns).Allowed(tt.origin); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

// TestWebSocketRateLimiter verifies per-IP slots are reserved and released.
func TestWebSocketRateLimiter(t *testing.T) {
	wrl := NewWebSocketRateLimiter(2)
	if !wrl.Allow("1.1.1.1") || !wrl.Allow("1.1.1.1") {
		t.Fatal("Expected two connections to be allowed")
	}
	if wrl.Allow("1.1.1.1") {
		t.Error("Expected third connection to be rejected")
	}
	if !wrl.Allow("2.2.2.2") {
		t.Error("Expected other IP to be allowed")
	}
	wrl.Release("1.1.1.1")
	if got := wrl.ConnectionCount("1.1.1.1"); got != 1 {
		t.Errorf("Expected 1 connection after release, got %d", got)
	}
	if !wrl.Allow("1.1.1.1") {
		t.Error("Expected slot to be reusable after release")
	}
}

// TestIPRateLimiterCleanup verifies idle limiters are evicted.
func TestIPRateLimiterCleanup(t *testing.T) {
	rl := NewIPRateLimiter(config.RateLimitConfig{RequestsPerSecond: 10, Burst: 1, CleanupInterval: time.Minute})
	rl.Allow("1.1.1.1")
	rl.cleanup(time.Now().Add(5 * time.Minute))

	count := 0
	rl.limiters.Range(func(_, _ interface{}) bool {
		count++
		return true
	})
	if count != 0 {
		t.Errorf("Expected idle limiter to be evicted, %d remain", count)
	}
}

// TestGetClientIP verifies proxy headers take precedence.
func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	if got := GetClientIP(req); got != "10.0.0.1" {
		t.Errorf("Expected remote addr, got %s", got)
	}
	req.Header.Set("X-Real-IP", "9.9.9.9")
	if got := GetClientIP(req); got != "9.9.9.9" {
		t.Errorf("Expected X-Real-IP, got %s", got)
	}
	req.Header.Set("X-Forwarded-For", "8.8.8.8, 10.0.0.2")
	if got := GetClientIP(req); got != "8.8.8.8" {
		t.Errorf("Expected first X-Forwarded-For hop, got %s", got)
	}
}
