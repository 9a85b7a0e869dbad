package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// Service coordinates analytics query execution with the cache layer.
type Service struct {
	repo   Repository
	cache  *Cache
	logger *slog.Logger
	group  singleflight.Group
	now    func() time.Time
}

// NewService wires a Repository with a Cache helper. A nil cache disables caching.
func NewService(repo Repository, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, logger: logger, now: time.Now}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// SupplierSummaries returns units sold and profit per supplier.
func (s *Service) SupplierSummaries(ctx context.Context) ([]SupplierSummary, error) {
	var out []SupplierSummary
	err := s.cached(ctx, &out, func(ctx context.Context) (any, error) {
		return s.repo.SupplierSummaries(ctx)
	}, "suppliers")
	return out, err
}

// RevenueTrend returns one point per day for the last days days, ending
// today. Days without sales are reported as zero.
func (s *Service) RevenueTrend(ctx context.Context, days int) ([]DailyRevenue, error) {
	if days <= 0 {
		days = TrendWindowDays
	}
	now := s.now().UTC()
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	from := to.AddDate(0, 0, -(days - 1))

	var rows []DailyRevenue
	err := s.cached(ctx, &rows, func(ctx context.Context) (any, error) {
		return s.repo.DailyRevenue(ctx, from, to)
	}, "revenue", from.Format("20060102"), to.Format("20060102"))
	if err != nil {
		return nil, err
	}
	return fillDays(rows, from, days), nil
}

// Warm pre-populates the cached summaries for the current version.
func (s *Service) Warm(ctx context.Context) error {
	if _, err := s.SupplierSummaries(ctx); err != nil {
		return fmt.Errorf("warm supplier summaries: %w", err)
	}
	if _, err := s.RevenueTrend(ctx, TrendWindowDays); err != nil {
		return fmt.Errorf("warm revenue trend: %w", err)
	}
	return nil
}

// cached resolves a versioned key and collapses concurrent misses on it.
// When Redis is unreachable the loader runs directly.
func (s *Service) cached(ctx context.Context, dest any, loader func(context.Context) (any, error), parts ...string) error {
	cache := s.cache
	key, err := cache.BuildKey(ctx, parts...)
	if err != nil {
		s.logger.Warn("analytics cache unavailable", slog.Any("error", err))
		cache = nil
		key = "direct:" + strings.Join(parts, ":")
	}
	raw, err, _ := s.group.Do(key, func() (any, error) {
		return cache.Load(ctx, key, loader)
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(raw.([]byte), dest)
}

func fillDays(rows []DailyRevenue, from time.Time, days int) []DailyRevenue {
	byDay := make(map[string]decimal.Decimal, len(rows))
	for _, r := range rows {
		byDay[r.Day.UTC().Format("2006-01-02")] = r.Revenue
	}
	out := make([]DailyRevenue, 0, days)
	for i := 0; i < days; i++ {
		day := from.AddDate(0, 0, i)
		out = append(out, DailyRevenue{Day: day, Revenue: byDay[day.Format("2006-01-02")]})
	}
	return out
}
