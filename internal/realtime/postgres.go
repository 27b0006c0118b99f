package realtime

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// Publisher receives table names from a change feed.
type Publisher interface {
	Publish(table string)
	PublishAll()
}

type pqListener interface {
	Listen(channel string) error
	NotificationChannel() <-chan *pq.Notification
	Ping() error
	Close() error
}

var newPQListener = func(dsn string, minReconnect, maxReconnect time.Duration, cb pq.EventCallbackType) pqListener {
	return pq.NewListener(dsn, minReconnect, maxReconnect, cb)
}

const pingInterval = 90 * time.Second

// PostgresListener relays NOTIFY payloads of one channel into a Publisher. The
// payload is the name of the changed table.
type PostgresListener struct {
	listener pqListener
	channel  string
	hub      Publisher
	logger   *zap.Logger
}

// NewPostgresListener connects and starts listening on channel.
func NewPostgresListener(dsn, channel string, minReconnect, maxReconnect time.Duration, hub Publisher, logger *zap.Logger) (*PostgresListener, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if minReconnect <= 0 {
		minReconnect = 10 * time.Second
	}
	if maxReconnect < minReconnect {
		maxReconnect = time.Minute
	}
	l := newPQListener(dsn, minReconnect, maxReconnect, func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventConnectionAttemptFailed:
			logger.Warn("realtime listener connection failed", zap.Error(err))
		case pq.ListenerEventDisconnected:
			logger.Warn("realtime listener disconnected", zap.Error(err))
		case pq.ListenerEventReconnected:
			logger.Info("realtime listener reconnected")
		}
	})
	if err := l.Listen(channel); err != nil {
		_ = l.Close()
		return nil, fmt.Errorf("listen %s: %w", channel, err)
	}
	return &PostgresListener{listener: l, channel: channel, hub: hub, logger: logger}, nil
}

// Run relays notifications until ctx ends or the listener is closed.
func (p *PostgresListener) Run(ctx context.Context) error {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	notifications := p.listener.NotificationChannel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n, ok := <-notifications:
			if !ok {
				return nil
			}
			if n == nil {
				// Sent after a reconnect; changes may have been missed.
				p.hub.PublishAll()
				continue
			}
			if table := strings.TrimSpace(n.Extra); table != "" {
				p.hub.Publish(table)
			}
		case <-ticker.C:
			go func() {
				if err := p.listener.Ping(); err != nil {
					p.logger.Debug("realtime listener ping failed", zap.Error(err))
				}
			}()
		}
	}
}

// Close stops listening.
func (p *PostgresListener) Close() error {
	return p.listener.Close()
}
