package console

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-admin-console/internal/models"
	appErrors "github.com/noah-isme/campus-admin-console/pkg/errors"
)

type fakeStats struct {
	stats models.DashboardStats
	err   error
	calls int
}

func (f *fakeStats) DashboardStats(context.Context) (models.DashboardStats, error) {
	f.calls++
	return f.stats, f.err
}

type memCache struct {
	data        map[string][]byte
	invalidated []string
}

func (m *memCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (m *memCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	return nil
}

func (m *memCache) Invalidate(_ context.Context, patterns ...string) error {
	for _, p := range patterns {
		delete(m.data, p)
		m.invalidated = append(m.invalidated, p)
	}
	return nil
}

func TestDashboardCachesStats(t *testing.T) {
	source := &fakeStats{stats: models.DashboardStats{TotalStudents: 12, ActiveStudents: 10}}
	cache := &memCache{data: map[string][]byte{}}
	d := NewDashboard(source, cache, time.Minute, nil)
	ctx := context.Background()

	stats, err := d.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, stats.TotalStudents)
	assert.False(t, stats.GeneratedAt.IsZero())

	_, err = d.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, source.calls)

	source.stats.TotalStudents = 13
	require.NoError(t, d.Refresh(ctx))
	assert.Equal(t, []string{DashboardCacheKey}, cache.invalidated)
	held, loaded := d.Stats()
	assert.True(t, loaded)
	assert.Equal(t, 13, held.TotalStudents)
}

func TestDashboardKeepsPreviousStatsOnFailure(t *testing.T) {
	source := &fakeStats{stats: models.DashboardStats{TotalCourses: 4}}
	d := NewDashboard(source, nil, 0, nil)
	ctx := context.Background()
	_, err := d.Load(ctx)
	require.NoError(t, err)

	source.err = errors.New("relation does not exist")
	source.stats = models.DashboardStats{}
	stats, err := d.Load(ctx)
	assert.ErrorIs(t, err, appErrors.ErrRead)
	assert.Equal(t, 4, stats.TotalCourses)
	assert.Contains(t, d.LastError(), "relation does not exist")
}
