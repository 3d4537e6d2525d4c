package ratelimit

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Upstream services with a daily request budget.
const (
	ServiceNewsAPI = "newsapi"
	ServiceGemini  = "gemini"
)

// ErrLimitExceeded is returned by Use once a budget is spent.
var ErrLimitExceeded = errors.New("rate limit exceeded")

// Limiter tracks daily request budgets per upstream service plus a shared
// total. A limit of zero means unlimited.
type Limiter struct {
	mu          sync.Mutex
	limits      map[string]int
	counts      map[string]int
	maxTotal    int
	totalCount  int
	cacheHits   int
	cacheMisses int
	resetTime   time.Time
	now         func() time.Time
	log         *slog.Logger
}

// New creates a limiter with per-service limits and a total limit.
func New(limits map[string]int, maxTotal int, logger *slog.Logger) *Limiter {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Limiter{
		limits:   make(map[string]int, len(limits)),
		counts:   make(map[string]int),
		maxTotal: maxTotal,
		now:      time.Now,
		log:      logger.With("component", "ratelimit"),
	}
	for k, v := range limits {
		l.limits[k] = v
	}
	l.resetTime = l.now().Add(24 * time.Hour)
	return l
}

// Allow reports whether a request to service would fit the budget.
func (l *Limiter) Allow(service string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.checkReset()
	return l.exceeded(service) == nil
}

// Use records one request to service, or fails if its budget is spent.
func (l *Limiter) Use(service string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.checkReset()
	if err := l.exceeded(service); err != nil {
		l.log.Warn("request budget exhausted", "service", service, "error", err)
		return err
	}

	l.counts[service]++
	l.totalCount++
	l.cacheMisses++

	l.log.Debug("request budget used",
		"service", service,
		"used", l.counts[service],
		"limit", l.limits[service],
		"total", l.totalCount,
		"total_limit", l.maxTotal,
	)
	return nil
}

func (l *Limiter) exceeded(service string) error {
	if max := l.limits[service]; max > 0 && l.counts[service] >= max {
		return fmt.Errorf("%s: %w (%d/%d)", service, ErrLimitExceeded, l.counts[service], max)
	}
	if l.maxTotal > 0 && l.totalCount >= l.maxTotal {
		return fmt.Errorf("total: %w (%d/%d)", ErrLimitExceeded, l.totalCount, l.maxTotal)
	}
	return nil
}

// RecordCacheHit records a request that was answered from cache.
func (l *Limiter) RecordCacheHit(service string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.cacheHits++
	l.log.Debug("cache hit", "service", service, "hit_rate", l.cacheHitRate())
}

// CacheHitRate returns the cache hit rate as a percentage.
func (l *Limiter) CacheHitRate() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cacheHitRate()
}

func (l *Limiter) cacheHitRate() float64 {
	total := l.cacheHits + l.cacheMisses
	if total == 0 {
		return 0
	}
	return float64(l.cacheHits) / float64(total) * 100
}

// Stats returns a snapshot of the counters.
func (l *Limiter) Stats() map[string]any {
	l.mu.Lock()
	defer l.mu.Unlock()

	stats := map[string]any{
		"total_used":     l.totalCount,
		"total_limit":    l.maxTotal,
		"cache_hits":     l.cacheHits,
		"cache_misses":   l.cacheMisses,
		"cache_hit_rate": l.cacheHitRate(),
		"reset_time":     l.resetTime,
	}
	for service, max := range l.limits {
		stats[service+"_used"] = l.counts[service]
		stats[service+"_limit"] = max
	}
	return stats
}

// checkReset clears the counters once the daily window has passed.
func (l *Limiter) checkReset() {
	if !l.now().After(l.resetTime) {
		return
	}
	l.log.Info("resetting request budgets", "total_used", l.totalCount, "cache_hits", l.cacheHits)

	l.counts = make(map[string]int)
	l.totalCount = 0
	l.cacheHits = 0
	l.cacheMisses = 0
	l.resetTime = l.now().Add(24 * time.Hour)
}
