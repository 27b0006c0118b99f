package console

import (
	"context"
	"fmt"
	"sync"
)

// ChangeFeed delivers a callback whenever a row of table changes.
type ChangeFeed interface {
	Subscribe(table string, fn func(ctx context.Context)) (unsubscribe func(), err error)
}

// Refresher re-reads its list.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Bridge ties a refresher to change notifications of its tables.
type Bridge struct {
	mu     sync.Mutex
	unsubs []func()
}

// Watch subscribes refresher to every table. Either all subscriptions are
// established or none are.
func Watch(feed ChangeFeed, refresher Refresher, tables ...string) (*Bridge, error) {
	b := &Bridge{}
	for _, table := range tables {
		unsub, err := feed.Subscribe(table, func(ctx context.Context) {
			_ = refresher.Refresh(ctx)
		})
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("subscribe %s: %w", table, err)
		}
		b.unsubs = append(b.unsubs, unsub)
	}
	return b, nil
}

// Close releases every subscription. Safe to call more than once.
func (b *Bridge) Close() {
	if b == nil {
		return
	}
	b.mu.Lock()
	unsubs := b.unsubs
	b.unsubs = nil
	b.mu.Unlock()
	for _, unsub := range unsubs {
		unsub()
	}
}
