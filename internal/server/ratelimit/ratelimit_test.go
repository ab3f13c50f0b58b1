package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(config *Config) (*Limiter, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	limiter := NewLimiter(config)
	limiter.now = clock.Now
	return limiter, clock
}

func TestTokenBucket_Take(t *testing.T) {
	now := time.Now()
	bucket := newTokenBucket(10, 1.0, now) // 10 tokens, 1 token per second

	// Should allow 10 requests immediately (burst)
	for i := 0; i < 10; i++ {
		if allowed, _, _ := bucket.take(now); !allowed {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
	}

	// 11th request should be denied (no tokens left)
	allowed, remaining, reset := bucket.take(now)
	if allowed {
		t.Error("Expected 11th request to be denied")
	}
	if remaining != 0 {
		t.Errorf("Expected 0 remaining, got %d", remaining)
	}
	if want := now.Add(10 * time.Second); !reset.Equal(want) {
		t.Errorf("Expected reset at %v, got %v", want, reset)
	}
}

func TestTokenBucket_Refill(t *testing.T) {
	now := time.Now()
	bucket := newTokenBucket(10, 1.0, now)

	for i := 0; i < 10; i++ {
		bucket.take(now)
	}

	if got := bucket.nextToken(); got != time.Second {
		t.Errorf("Expected next token in 1s, got %v", got)
	}

	// One second later exactly one token is back
	now = now.Add(time.Second)
	if allowed, _, _ := bucket.take(now); !allowed {
		t.Error("Expected request to be allowed after refill")
	}
	if allowed, _, _ := bucket.take(now); allowed {
		t.Error("Expected request to be denied after consuming refilled token")
	}

	// Refill never exceeds capacity
	now = now.Add(time.Hour)
	if _, remaining, _ := bucket.take(now); remaining != 9 {
		t.Errorf("Expected 9 remaining after long idle, got %d", remaining)
	}
}

func TestLimiter_Allow(t *testing.T) {
	limiter, clock := newTestLimiter(&Config{Enabled: true, DefaultRate: 1, DefaultBurst: 3})
	defer limiter.Stop()

	for i := 0; i < 3; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/test", "GET")
		if !allowed {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
		if info.Limit != 3 {
			t.Errorf("Expected limit 3, got %d", info.Limit)
		}
	}

	allowed, info := limiter.Allow("127.0.0.1", "/test", "GET")
	if allowed {
		t.Error("Expected request over limit to be denied")
	}
	if info.RetryAfter != time.Second {
		t.Errorf("Expected retry after 1s, got %v", info.RetryAfter)
	}

	// Other clients have their own bucket
	if allowed, _ := limiter.Allow("10.0.0.1", "/test", "GET"); !allowed {
		t.Error("Expected other client to be allowed")
	}

	clock.Advance(time.Second)
	if allowed, _ := limiter.Allow("127.0.0.1", "/test", "GET"); !allowed {
		t.Error("Expected request to be allowed after refill")
	}
}

func TestLimiter_Whitelist(t *testing.T) {
	limiter, _ := newTestLimiter(&Config{
		Enabled:      true,
		DefaultRate:  1,
		DefaultBurst: 1,
		Whitelist:    map[string]bool{"127.0.0.1": true},
	})
	defer limiter.Stop()

	for i := 0; i < 100; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/test", "GET")
		if !allowed {
			t.Errorf("Expected whitelisted request %d to be allowed", i+1)
		}
		if info.Limit != 0 {
			t.Errorf("Expected limit 0 for whitelisted, got %d", info.Limit)
		}
	}
}

func TestLimiter_Blacklist(t *testing.T) {
	limiter, _ := newTestLimiter(&Config{
		Enabled:      true,
		DefaultRate:  100,
		DefaultBurst: 100,
		Blacklist:    map[string]bool{"192.168.1.1": true},
	})
	defer limiter.Stop()

	if allowed, _ := limiter.Allow("192.168.1.1", "/test", "GET"); allowed {
		t.Error("Expected blacklisted request to be denied")
	}
}

func TestLimiter_Disabled(t *testing.T) {
	limiter, _ := newTestLimiter(&Config{Enabled: false})
	defer limiter.Stop()

	for i := 0; i < 100; i++ {
		if allowed, _ := limiter.Allow("127.0.0.1", "/test", "GET"); !allowed {
			t.Errorf("Expected request %d to be allowed when disabled", i+1)
		}
	}
}

func TestLimiter_EndpointSpecific(t *testing.T) {
	limiter, _ := newTestLimiter(&Config{
		Enabled:         true,
		DefaultRate:     100,
		DefaultBurst:    100,
		EndpointConfigs: DefaultEndpointConfigs(0.5, 2),
	})
	defer limiter.Stop()

	clientID := "127.0.0.1"
	for i := 0; i < 2; i++ {
		if allowed, _ := limiter.Allow(clientID, "/v1/messages", "POST"); !allowed {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
	}
	allowed, info := limiter.Allow(clientID, "/v1/messages", "POST")
	if allowed {
		t.Error("Expected 3rd message request to be denied")
	}
	if info.Limit != 2 {
		t.Errorf("Expected limit 2, got %d", info.Limit)
	}
	if info.RetryAfter != 2*time.Second {
		t.Errorf("Expected retry after 2s, got %v", info.RetryAfter)
	}

	// Prefix match covers the streaming endpoint
	if _, info := limiter.Allow(clientID, "/v1/messages/stream", "POST"); info.Limit != 2 {
		t.Errorf("Expected stream limit 2, got %d", info.Limit)
	}

	// Other endpoints use the default
	if _, info := limiter.Allow(clientID, "/other", "GET"); info.Limit != 100 {
		t.Errorf("Expected default limit 100, got %d", info.Limit)
	}
}

func TestLimiter_HealthUnlimited(t *testing.T) {
	limiter, _ := newTestLimiter(&Config{Enabled: true, DefaultRate: 1, DefaultBurst: 1})
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		if allowed, _ := limiter.Allow("127.0.0.1", "/health", "GET"); !allowed {
			t.Errorf("Expected health check %d to be allowed", i+1)
		}
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	limiter, _ := newTestLimiter(&Config{Enabled: true, DefaultRate: 1, DefaultBurst: 100})
	defer limiter.Stop()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowedCount := 0

	// Make 200 concurrent requests (should only allow 100)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if allowed, _ := limiter.Allow("127.0.0.1", "/test", "GET"); allowed {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowedCount != 100 {
		t.Errorf("Expected 100 allowed requests, got %d", allowedCount)
	}
}

func TestLimiter_CleanupBuckets(t *testing.T) {
	limiter, clock := newTestLimiter(&Config{
		Enabled:      true,
		DefaultRate:  1,
		DefaultBurst: 10,
		IdleTimeout:  time.Minute,
	})
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		limiter.Allow(fmt.Sprintf("127.0.0.%d", i+1), "/test", "GET")
	}

	clock.Advance(45 * time.Second)
	for i := 0; i < 5; i++ {
		limiter.Allow(fmt.Sprintf("127.0.0.%d", i+1), "/test", "GET")
	}

	clock.Advance(30 * time.Second)
	limiter.cleanupBuckets()

	if got := limiter.size(); got != 5 {
		t.Errorf("Expected 5 buckets after cleanup, got %d", got)
	}
}

func TestNewLimiter_NilConfig(t *testing.T) {
	limiter := NewLimiter(nil)
	defer limiter.Stop()

	allowed, info := limiter.Allow("127.0.0.1", "/test", "GET")
	if !allowed {
		t.Error("Expected request to be allowed with default config")
	}
	if info.Limit != DefaultBurst {
		t.Errorf("Expected default limit %d, got %d", DefaultBurst, info.Limit)
	}
}

func TestLimiter_StopTwice(t *testing.T) {
	limiter := NewLimiter(DefaultConfig())
	limiter.Stop()
	limiter.Stop()
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_WHITELIST", "10.0.0.1, 10.0.0.2")
	cfg := LoadConfig(2, 4)

	if !cfg.Enabled {
		t.Fatal("Expected limiter to be enabled")
	}
	if !cfg.Whitelist["10.0.0.2"] {
		t.Error("Expected whitelist to include 10.0.0.2")
	}
	if len(cfg.EndpointConfigs) != 2 || cfg.EndpointConfigs[0].Rate != 2 || cfg.EndpointConfigs[0].Burst != 4 {
		t.Errorf("Unexpected endpoint configs: %+v", cfg.EndpointConfigs)
	}

	t.Setenv("RATE_LIMIT_ENABLED", "false")
	if LoadConfig(2, 4).Enabled {
		t.Error("Expected limiter to be disabled")
	}
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs(1, 1)

	if got := MatchEndpoint("/v1/messages", "POST", configs); got == nil || got.Path != "/v1/messages" {
		t.Errorf("Expected exact match, got %+v", got)
	}
	if got := MatchEndpoint("/v1/messages", "GET", configs); got != nil {
		t.Errorf("Expected no match for GET, got %+v", got)
	}
	if got := MatchEndpoint("/health", "GET", configs); got == nil || got.Rate != 0 {
		t.Errorf("Expected unlimited health config, got %+v", got)
	}
}
