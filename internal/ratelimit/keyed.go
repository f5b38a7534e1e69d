// Package ratelimit throttles LLM-backed requests per user.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/uniadvisor/uniadvisor/internal/metrics"
)

// KeyedConfig configures a KeyedLimiter instance.
type KeyedConfig struct {
	// Name identifies this limiter for metrics (e.g., "llm")
	Name string

	// Token bucket settings
	Burst      int     // Maximum tokens (burst capacity)
	RefillRate float64 // Tokens refilled per second

	// How often idle keys are dropped
	CleanupPeriod time.Duration

	// Optional metrics reporter
	Metrics *metrics.Metrics
}

// PerHour converts a requests-per-hour budget into a refill rate.
func PerHour(n float64) float64 {
	return n / 3600
}

// KeyedLimiter keeps one token bucket per key (user ID) and drops buckets
// that have refilled completely.
type KeyedLimiter struct {
	mu       sync.RWMutex
	entries  map[string]*rate.Limiter
	config   KeyedConfig
	now      func() time.Time
	onDrop   func()
	onUpdate func(count int)
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewKeyedLimiter creates a per-key limiter and starts its cleanup loop.
// A non-positive Burst disables limiting.
//
//	limiter := NewKeyedLimiter(KeyedConfig{
//	    Name:          "llm",
//	    Burst:         10,
//	    RefillRate:    PerHour(60),
//	    CleanupPeriod: 5 * time.Minute,
//	})
//	defer limiter.Stop()
func NewKeyedLimiter(cfg KeyedConfig) *KeyedLimiter {
	if cfg.CleanupPeriod <= 0 {
		cfg.CleanupPeriod = 5 * time.Minute
	}
	kl := &KeyedLimiter{
		entries: make(map[string]*rate.Limiter),
		config:  cfg,
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}

	if cfg.Metrics != nil {
		kl.onDrop = func() {
			cfg.Metrics.RecordRateLimiterDrop(cfg.Name)
		}
		kl.onUpdate = func(count int) {
			cfg.Metrics.SetRateLimiterKeys(cfg.Name, count)
		}
	}

	go kl.cleanupLoop()

	return kl
}

// Allow reports whether key may make a request now and consumes a token
// if so. The empty key is never limited.
func (kl *KeyedLimiter) Allow(key string) bool {
	if key == "" || kl.config.Burst <= 0 {
		return true
	}

	if kl.getOrCreate(key).AllowN(kl.now(), 1) {
		return true
	}
	if kl.onDrop != nil {
		kl.onDrop()
	}
	return false
}

// getOrCreate returns the bucket for a key, creating a full one if needed.
func (kl *KeyedLimiter) getOrCreate(key string) *rate.Limiter {
	kl.mu.RLock()
	lim, exists := kl.entries[key]
	kl.mu.RUnlock()

	if exists {
		return lim
	}

	kl.mu.Lock()
	defer kl.mu.Unlock()

	// Double-check after acquiring write lock
	if lim, exists = kl.entries[key]; exists {
		return lim
	}
	lim = rate.NewLimiter(rate.Limit(kl.config.RefillRate), kl.config.Burst)
	kl.entries[key] = lim
	return lim
}

// ActiveCount returns the number of tracked keys.
func (kl *KeyedLimiter) ActiveCount() int {
	kl.mu.RLock()
	defer kl.mu.RUnlock()
	return len(kl.entries)
}

// cleanup drops keys whose bucket is full again and reports the count.
func (kl *KeyedLimiter) cleanup() {
	now := kl.now()
	burst := float64(kl.config.Burst)

	kl.mu.Lock()
	for key, lim := range kl.entries {
		if lim.TokensAt(now) >= burst {
			delete(kl.entries, key)
		}
	}
	activeCount := len(kl.entries)
	kl.mu.Unlock()

	if kl.onUpdate != nil {
		kl.onUpdate(activeCount)
	}
}

func (kl *KeyedLimiter) cleanupLoop() {
	ticker := time.NewTicker(kl.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-kl.stopCh:
			return
		case <-ticker.C:
			kl.cleanup()
		}
	}
}

// Stop ends the cleanup goroutine. Safe to call multiple times.
func (kl *KeyedLimiter) Stop() {
	kl.stopOnce.Do(func() { close(kl.stopCh) })
}
