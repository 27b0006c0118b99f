package console

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-admin-console/internal/models"
	appErrors "github.com/noah-isme/campus-admin-console/pkg/errors"
)

// DashboardCacheKey is where the stats are cached.
const DashboardCacheKey = "dashboard:stats"

// DashboardTables are the tables whose changes refresh the stats.
var DashboardTables = []string{"students", "instructors", "courses", "classes", "gallery", "functions", "participants"}

// StatsSource computes the dashboard counts in one read.
type StatsSource interface {
	DashboardStats(ctx context.Context) (models.DashboardStats, error)
}

// StatsCache stores computed stats between reads.
type StatsCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, patterns ...string) error
}

// Dashboard keeps the landing page counts.
type Dashboard struct {
	source StatsSource
	cache  StatsCache
	ttl    time.Duration
	logger *zap.Logger

	mu      sync.Mutex
	stats   models.DashboardStats
	loaded  bool
	lastErr string
}

// NewDashboard builds the dashboard. cache may be nil.
func NewDashboard(source StatsSource, cache StatsCache, ttl time.Duration, logger *zap.Logger) *Dashboard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dashboard{source: source, cache: cache, ttl: ttl, logger: logger}
}

// Load returns the stats, from cache when possible.
func (d *Dashboard) Load(ctx context.Context) (models.DashboardStats, error) {
	if d.cache != nil {
		var cached models.DashboardStats
		if hit, err := d.cache.Get(ctx, DashboardCacheKey, &cached); err == nil && hit {
			d.store(cached)
			return cached, nil
		}
	}
	return d.fetch(ctx)
}

// Refresh drops the cached stats and recomputes them.
func (d *Dashboard) Refresh(ctx context.Context) error {
	if d.cache != nil {
		if err := d.cache.Invalidate(ctx, DashboardCacheKey); err != nil {
			d.logger.Warn("invalidate dashboard cache failed", zap.Error(err))
		}
	}
	_, err := d.fetch(ctx)
	return err
}

// Stats returns the held stats and whether they were ever loaded.
func (d *Dashboard) Stats() (models.DashboardStats, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats, d.loaded
}

// LastError is the message of the last failed read, if any.
func (d *Dashboard) LastError() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastErr
}

func (d *Dashboard) fetch(ctx context.Context) (models.DashboardStats, error) {
	stats, err := d.source.DashboardStats(ctx)
	if err != nil {
		d.logger.Warn("dashboard stats failed", zap.Error(err))
		d.mu.Lock()
		d.lastErr = "Failed to load dashboard: " + err.Error()
		previous := d.stats
		d.mu.Unlock()
		return previous, appErrors.WrapAs(appErrors.ErrRead, err, "Failed to load dashboard")
	}
	if stats.GeneratedAt.IsZero() {
		stats.GeneratedAt = time.Now().UTC()
	}
	d.store(stats)
	if d.cache != nil {
		if err := d.cache.Set(ctx, DashboardCacheKey, stats, d.ttl); err != nil {
			d.logger.Debug("cache dashboard stats failed", zap.Error(err))
		}
	}
	return stats, nil
}

func (d *Dashboard) store(stats models.DashboardStats) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stats = stats
	d.loaded = true
	d.lastErr = ""
}
