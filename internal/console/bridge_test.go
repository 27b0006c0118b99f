package console

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFeed struct {
	mu       sync.Mutex
	handlers map[string]map[int]func(context.Context)
	next     int
	failOn   string
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{handlers: map[string]map[int]func(context.Context){}}
}

func (f *fakeFeed) Subscribe(table string, fn func(context.Context)) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if table == f.failOn {
		return nil, errors.New("channel closed")
	}
	f.next++
	id := f.next
	if f.handlers[table] == nil {
		f.handlers[table] = map[int]func(context.Context){}
	}
	f.handlers[table][id] = fn
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.handlers[table], id)
	}, nil
}

func (f *fakeFeed) notify(table string) {
	f.mu.Lock()
	fns := make([]func(context.Context), 0)
	for _, fn := range f.handlers[table] {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn(context.Background())
	}
}

func (f *fakeFeed) subscribers(table string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.handlers[table])
}

type countingRefresher struct {
	mu    sync.Mutex
	calls int
}

func (c *countingRefresher) Refresh(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return nil
}

func TestWatchRefreshesOnEveryNotification(t *testing.T) {
	feed := newFakeFeed()
	r := &countingRefresher{}
	bridge, err := Watch(feed, r, "functions", "participants")
	require.NoError(t, err)

	feed.notify("functions")
	feed.notify("functions")
	feed.notify("participants")
	feed.notify("students")
	assert.Equal(t, 3, r.calls)

	bridge.Close()
	bridge.Close()
	feed.notify("functions")
	assert.Equal(t, 3, r.calls)
	assert.Zero(t, feed.subscribers("functions"))
}

func TestWatchReleasesOnPartialFailure(t *testing.T) {
	feed := newFakeFeed()
	feed.failOn = "participants"
	_, err := Watch(feed, &countingRefresher{}, "functions", "participants")
	require.Error(t, err)
	assert.Zero(t, feed.subscribers("functions"))
}

func TestRealtimeChangeReloadsController(t *testing.T) {
	feed := newFakeFeed()
	store := studentStore()
	ctrl := newStudents(store)
	bridge, err := Watch(feed, ctrl, "students")
	require.NoError(t, err)
	defer bridge.Close()

	_, err = store.Insert(context.Background(), studentDraft("Ada"))
	require.NoError(t, err)
	feed.notify("students")
	assert.Len(t, ctrl.Records(), 1)
}
