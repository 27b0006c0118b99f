package realtime

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-admin-console/pkg/jobs"
)

// Observer is told about delivered and dropped notifications.
type Observer interface {
	ObserveChange(table string)
	ObserveDropped(table string)
}

// HubConfig tunes the refresh worker pool.
type HubConfig struct {
	Workers    int
	BufferSize int
	JobTimeout time.Duration
	Observer   Observer
	Logger     *zap.Logger
}

type subscription struct {
	id      uint64
	table   string
	fn      func(context.Context)
	pending atomic.Bool
	closed  atomic.Bool
}

// Hub fans table change notifications out to subscribers. Callbacks run on the
// worker queue; a subscriber already waiting for a refresh is not queued twice.
type Hub struct {
	queue    *jobs.Queue
	observer Observer
	logger   *zap.Logger

	mu        sync.RWMutex
	subs      map[string]map[uint64]*subscription
	listeners map[uint64]func(string)
	next      uint64
}

// NewHub builds a hub. Start must be called before notifications are delivered.
func NewHub(cfg HubConfig) *Hub {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	h := &Hub{
		observer:  cfg.Observer,
		logger:    cfg.Logger,
		subs:      map[string]map[uint64]*subscription{},
		listeners: map[uint64]func(string){},
	}
	h.queue = jobs.NewQueue("realtime", h.run, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		MaxRetries: jobs.NoRetry,
		JobTimeout: cfg.JobTimeout,
		Logger:     cfg.Logger,
	})
	return h
}

// Start launches the refresh workers.
func (h *Hub) Start(ctx context.Context) { h.queue.Start(ctx) }

// Stop waits for running refreshes and drops queued ones.
func (h *Hub) Stop() { h.queue.Stop() }

// Subscribe registers fn for changes of table.
func (h *Hub) Subscribe(table string, fn func(context.Context)) (func(), error) {
	if table == "" || fn == nil {
		return nil, errors.New("realtime: table and callback are required")
	}
	h.mu.Lock()
	h.next++
	sub := &subscription{id: h.next, table: table, fn: fn}
	if h.subs[table] == nil {
		h.subs[table] = map[uint64]*subscription{}
	}
	h.subs[table][sub.id] = sub
	h.mu.Unlock()

	return func() {
		sub.closed.Store(true)
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs[table], sub.id)
		if len(h.subs[table]) == 0 {
			delete(h.subs, table)
		}
	}, nil
}

// Listen registers fn to be called synchronously with every published table.
// fn must not block.
func (h *Hub) Listen(fn func(table string)) func() {
	h.mu.Lock()
	h.next++
	id := h.next
	h.listeners[id] = fn
	h.mu.Unlock()
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.listeners, id)
	}
}

// Notify publishes table; it lets the hub act as the write notifier of the stores.
func (h *Hub) Notify(_ context.Context, table string) { h.Publish(table) }

// Publish schedules a refresh for every subscriber of table.
func (h *Hub) Publish(table string) {
	h.mu.RLock()
	subs := make([]*subscription, 0, len(h.subs[table]))
	for _, sub := range h.subs[table] {
		subs = append(subs, sub)
	}
	listeners := make([]func(string), 0, len(h.listeners))
	for _, l := range h.listeners {
		listeners = append(listeners, l)
	}
	h.mu.RUnlock()

	if h.observer != nil {
		h.observer.ObserveChange(table)
	}
	for _, l := range listeners {
		l(table)
	}
	for _, sub := range subs {
		h.schedule(sub)
	}
}

// PublishAll refreshes every subscribed table, used after a feed reconnects.
func (h *Hub) PublishAll() {
	for _, table := range h.Tables() {
		h.Publish(table)
	}
}

// Tables lists the tables that currently have subscribers.
func (h *Hub) Tables() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]string, 0, len(h.subs))
	for table := range h.subs {
		out = append(out, table)
	}
	return out
}

func (h *Hub) schedule(sub *subscription) {
	if !sub.pending.CompareAndSwap(false, true) {
		return
	}
	err := h.queue.TryEnqueue(jobs.Job{
		ID:      sub.table + "#" + strconv.FormatUint(sub.id, 10),
		Type:    "refresh",
		Payload: sub,
	})
	if err != nil {
		sub.pending.Store(false)
		if h.observer != nil {
			h.observer.ObserveDropped(sub.table)
		}
		h.logger.Warn("refresh dropped", zap.String("table", sub.table), zap.Error(err))
	}
}

func (h *Hub) run(ctx context.Context, job jobs.Job) error {
	sub, ok := job.Payload.(*subscription)
	if !ok {
		return errors.New("realtime: unexpected job payload")
	}
	sub.pending.Store(false)
	if sub.closed.Load() {
		return nil
	}
	sub.fn(ctx)
	return nil
}
