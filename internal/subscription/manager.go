// Package subscription implements the live-query change feed. Writers
// notify the manager after mutating a collection; subscribers receive a
// tick per change and re-query for a fresh snapshot. Subscriptions are
// explicit: Subscribe returns a handle owned by the consumer, and
// Cancel detaches it synchronously.
package subscription

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const channelPrefix = "changefeed:"

// Change is a single change-feed tick for one collection.
type Change struct {
	Collection string    `json:"collection"`
	At         time.Time `json:"at"`
}

// Handle is a live subscription. C delivers at-least-one tick per burst
// of changes; ticks are coalesced when the consumer is slow. Cancel
// detaches the subscription and closes C.
type Handle struct {
	C      <-chan Change
	cancel func()
	once   sync.Once
}

// Cancel detaches the subscription. Safe to call more than once.
func (h *Handle) Cancel() {
	h.once.Do(h.cancel)
}

// Manager fans change ticks out to subscribers. With a Redis client it
// bridges ticks across processes via pub/sub; with a nil client it runs
// purely in-process. The zero value is not usable; call NewManager.
type Manager struct {
	mu     sync.Mutex
	subs   map[string]map[uint64]chan Change // collection -> subscriber id -> channel
	nextID uint64
	rdb    *redis.Client // nil disables the cross-process bridge
	pubsub *redis.PubSub // nil without the bridge; closed by Close
	closed bool
}

// NewManager creates a Manager. When rdb is non-nil a background
// listener bridges changefeed ticks published by other instances into
// the local subscriber set.
func NewManager(rdb *redis.Client) *Manager {
	m := &Manager{
		subs: make(map[string]map[uint64]chan Change),
		rdb:  rdb,
	}
	if rdb != nil {
		m.pubsub = rdb.PSubscribe(context.Background(), channelPrefix+"*")
		go m.listen()
	}
	return m
}

// listen consumes the Redis changefeed pattern subscription and fans
// messages out locally. go-redis reconnects the PubSub internally, so a
// plain range over the channel is sufficient; closing the PubSub closes
// the channel and ends the goroutine.
func (m *Manager) listen() {
	for msg := range m.pubsub.Channel() {
		m.fanout(strings.TrimPrefix(msg.Channel, channelPrefix))
	}
}

// Notify records a change to collection. With Redis configured the tick
// is published there and delivered locally by the listener, so every
// instance sees it exactly once; otherwise it fans out in-process.
// Errors from Redis are logged and the tick delivered locally anyway so
// a cache outage does not silence same-process subscribers.
func (m *Manager) Notify(ctx context.Context, collection string) {
	if m.rdb != nil {
		if err := m.rdb.Publish(ctx, channelPrefix+collection, "1").Err(); err == nil {
			return
		} else {
			log.Printf("subscription: redis publish failed: %v", err)
		}
	}
	m.fanout(collection)
}

// fanout delivers a tick to all local subscribers of collection without
// blocking: a subscriber whose buffer is full already has a pending
// tick, which is enough to trigger its re-query.
func (m *Manager) fanout(collection string) {
	now := time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.subs[collection] {
		select {
		case ch <- Change{Collection: collection, At: now}:
		default:
		}
	}
}

// Subscribe registers a subscriber for collection and returns its
// handle. The subscription is also cancelled when ctx is done. The
// returned channel is buffered with one slot; consumers re-query on
// every receive.
func (m *Manager) Subscribe(ctx context.Context, collection string) *Handle {
	ch := make(chan Change, 1)

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		close(ch)
		return &Handle{C: ch, cancel: func() {}}
	}
	m.nextID++
	id := m.nextID
	if m.subs[collection] == nil {
		m.subs[collection] = make(map[uint64]chan Change)
	}
	m.subs[collection][id] = ch
	m.mu.Unlock()

	h := &Handle{C: ch}
	h.cancel = func() {
		m.mu.Lock()
		if set, ok := m.subs[collection]; ok {
			if _, ok := set[id]; ok {
				delete(set, id)
				close(ch)
			}
			if len(set) == 0 {
				delete(m.subs, collection)
			}
		}
		m.mu.Unlock()
	}

	go func() {
		<-ctx.Done()
		h.Cancel()
	}()
	return h
}

// Close cancels every subscription and shuts down the Redis bridge
// listener. Subsequent Subscribe calls return already-closed handles.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	if m.pubsub != nil {
		_ = m.pubsub.Close()
	}
	for _, set := range m.subs {
		for id, ch := range set {
			delete(set, id)
			close(ch)
		}
	}
	m.subs = make(map[string]map[uint64]chan Change)
}
