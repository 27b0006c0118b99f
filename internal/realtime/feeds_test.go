package realtime

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	tables []string
	all    int
}

func (p *recordingPublisher) Publish(table string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tables = append(p.tables, table)
}

func (p *recordingPublisher) PublishAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.all++
}

func (p *recordingPublisher) snapshot() ([]string, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.tables...), p.all
}

type fakeListener struct {
	listened  []string
	listenErr error
	ch        chan *pq.Notification
	closed    bool
}

func (f *fakeListener) Listen(channel string) error {
	f.listened = append(f.listened, channel)
	return f.listenErr
}
func (f *fakeListener) NotificationChannel() <-chan *pq.Notification { return f.ch }
func (f *fakeListener) Ping() error                                  { return nil }
func (f *fakeListener) Close() error {
	f.closed = true
	return nil
}

func withFakeListener(t *testing.T, fake *fakeListener) *[2]time.Duration {
	t.Helper()
	orig := newPQListener
	t.Cleanup(func() { newPQListener = orig })
	intervals := &[2]time.Duration{}
	newPQListener = func(_ string, minReconnect, maxReconnect time.Duration, _ pq.EventCallbackType) pqListener {
		intervals[0], intervals[1] = minReconnect, maxReconnect
		return fake
	}
	return intervals
}

func TestPostgresListenerRelaysPayloads(t *testing.T) {
	fake := &fakeListener{ch: make(chan *pq.Notification, 4)}
	intervals := withFakeListener(t, fake)
	pub := &recordingPublisher{}

	l, err := NewPostgresListener("postgres://x", "table_changes", 0, 0, pub, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"table_changes"}, fake.listened)
	assert.Equal(t, 10*time.Second, intervals[0])
	assert.Equal(t, time.Minute, intervals[1])

	fake.ch <- &pq.Notification{Channel: "table_changes", Extra: "classes"}
	fake.ch <- &pq.Notification{Channel: "table_changes", Extra: "  "}
	fake.ch <- nil
	fake.ch <- &pq.Notification{Channel: "table_changes", Extra: "gallery"}
	close(fake.ch)

	require.NoError(t, l.Run(context.Background()))
	tables, all := pub.snapshot()
	assert.Equal(t, []string{"classes", "gallery"}, tables)
	assert.Equal(t, 1, all)

	require.NoError(t, l.Close())
	assert.True(t, fake.closed)
}

func TestPostgresListenerStopsWithContext(t *testing.T) {
	fake := &fakeListener{ch: make(chan *pq.Notification)}
	withFakeListener(t, fake)

	l, err := NewPostgresListener("postgres://x", "table_changes", time.Second, 5*time.Second, &recordingPublisher{}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, l.Run(ctx), context.Canceled)
}

func TestPostgresListenerListenFailure(t *testing.T) {
	fake := &fakeListener{listenErr: errors.New("denied")}
	withFakeListener(t, fake)

	_, err := NewPostgresListener("postgres://x", "table_changes", 0, 0, &recordingPublisher{}, nil)
	require.Error(t, err)
	assert.True(t, fake.closed)
}

type fakeRedis struct {
	published []string
	err       error
}

func (f *fakeRedis) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	f.published = append(f.published, channel+":"+message.(string))
	if f.err != nil {
		cmd.SetErr(f.err)
	}
	return cmd
}

func (f *fakeRedis) Subscribe(context.Context, ...string) *redis.PubSub { return nil }

func TestRedisRelayNotifyPublishes(t *testing.T) {
	fake := &fakeRedis{}
	r := newRedisRelay(fake, "console:changes", &recordingPublisher{}, nil)
	r.Notify(context.Background(), "staff")

	fake.err = errors.New("down")
	r.Notify(context.Background(), "classes")

	assert.Equal(t, []string{"console:changes:staff", "console:changes:classes"}, fake.published)
}

func TestRedisRelayForwardsMessages(t *testing.T) {
	pub := &recordingPublisher{}
	r := newRedisRelay(&fakeRedis{}, "console:changes", pub, nil)

	messages := make(chan *redis.Message, 3)
	messages <- &redis.Message{Channel: "console:changes", Payload: "instructors"}
	messages <- &redis.Message{Channel: "console:changes", Payload: ""}
	messages <- &redis.Message{Channel: "console:changes", Payload: "settings"}
	close(messages)

	require.NoError(t, r.relay(context.Background(), messages))
	tables, _ := pub.snapshot()
	assert.Equal(t, []string{"instructors", "settings"}, tables)
}
