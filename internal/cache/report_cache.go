package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mechanix/shop-reports/internal/domain"
	"github.com/mechanix/shop-reports/internal/platform/errors"
	"github.com/mechanix/shop-reports/internal/platform/observability/logging"
	"github.com/mechanix/shop-reports/internal/platform/observability/metrics"
	"github.com/mechanix/shop-reports/internal/platform/observability/tracing"
)

const availableMonthsKey = "available-months"

// KV is the key-value store the cache layer writes through to. Satisfied
// by the platform Redis connection.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
}

// ReportCache fronts report reads with a TTL-bounded cache. Every read is
// fail-open: any cache failure, including a payload that no longer decodes
// or validates, counts as a miss and never reaches the caller. The store
// behind it stays the source of truth.
type ReportCache struct {
	kv      KV
	ttl     time.Duration
	logger  logging.Logger
	metrics metrics.Metrics
}

// NewReportCache creates a report cache with the given entry TTL
func NewReportCache(kv KV, ttl time.Duration, logger logging.Logger, m metrics.Metrics) *ReportCache {
	return &ReportCache{
		kv:      kv,
		ttl:     ttl,
		logger:  logger,
		metrics: m,
	}
}

// MonthlyKey derives the cache key for a single report period.
func MonthlyKey(year, month int) string {
	return fmt.Sprintf("monthly:%d-%d", year, month)
}

// GetReport returns the cached report for the period, or nil on a miss.
func (c *ReportCache) GetReport(ctx context.Context, year, month int) *domain.MonthlyReport {
	key := MonthlyKey(year, month)

	var report domain.MonthlyReport
	if !c.read(ctx, key, &report) {
		return nil
	}
	if err := report.Validate(); err != nil {
		c.logger.Warn(ctx, "Cached report failed validation, treating as miss", map[string]interface{}{
			"cache_key": key,
		})
		c.metrics.IncrementCounter("cache_misses_total", map[string]string{"key": key})
		return nil
	}

	c.metrics.IncrementCounter("cache_hits_total", map[string]string{"key": key})
	return &report
}

// SetReport caches the report for its period. Best-effort.
func (c *ReportCache) SetReport(ctx context.Context, report *domain.MonthlyReport) {
	c.write(ctx, MonthlyKey(report.Year, report.Month), report)
}

// GetMonths returns the cached available-months listing, or nil on a miss.
func (c *ReportCache) GetMonths(ctx context.Context) []domain.AvailableMonth {
	var months []domain.AvailableMonth
	if !c.read(ctx, availableMonthsKey, &months) {
		return nil
	}

	c.metrics.IncrementCounter("cache_hits_total", map[string]string{"key": availableMonthsKey})
	return months
}

// SetMonths caches the available-months listing. Best-effort.
func (c *ReportCache) SetMonths(ctx context.Context, months []domain.AvailableMonth) {
	c.write(ctx, availableMonthsKey, months)
}

// read fetches and decodes one cache entry, reporting whether it produced
// a usable value. Failures are logged and swallowed.
func (c *ReportCache) read(ctx context.Context, key string, out interface{}) bool {
	tracing.AddSpanAttributes(ctx, tracing.CacheKeyKey.String(key))

	raw, err := c.kv.Get(ctx, key)
	if err != nil {
		if !errors.IsNotFound(err) {
			c.logger.Warn(ctx, "Cache read failed, treating as miss", map[string]interface{}{
				"cache_key": key,
				"error":     err.Error(),
			})
		}
		c.metrics.IncrementCounter("cache_misses_total", map[string]string{"key": key})
		return false
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		c.logger.Warn(ctx, "Cached value failed to decode, treating as miss", map[string]interface{}{
			"cache_key": key,
			"error":     err.Error(),
		})
		c.metrics.IncrementCounter("cache_misses_total", map[string]string{"key": key})
		return false
	}

	return true
}

// write serializes and stores one cache entry. Failures are logged and
// swallowed so they never fail a request that already has its answer.
func (c *ReportCache) write(ctx context.Context, key string, value interface{}) {
	tracing.AddSpanAttributes(ctx, tracing.CacheKeyKey.String(key))

	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn(ctx, "Failed to serialize cache value", map[string]interface{}{
			"cache_key": key,
			"error":     err.Error(),
		})
		return
	}

	if err := c.kv.Set(ctx, key, string(data), c.ttl); err != nil {
		c.logger.Warn(ctx, "Cache write failed", map[string]interface{}{
			"cache_key": key,
			"error":     err.Error(),
		})
	}
}
