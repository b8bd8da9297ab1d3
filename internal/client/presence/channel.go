// Package presence is the client side of the community presence channel:
// each client publishes one full-state record and receives the merged
// state of every client after each change.
package presence

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dkeye/Huddle/internal/client/transport"
	"github.com/dkeye/Huddle/internal/core"
	"github.com/rs/zerolog/log"
)

// Channel is one open presence topic.
type Channel struct {
	sock  transport.Socket
	topic string
	key   string

	mu        sync.Mutex
	joined    bool
	closed    bool
	state     map[string][]core.PresenceMeta
	onJoined  []func()
	listeners map[uint64]func()
	nextID    uint64
	unsubs    []func()
}

// Open subscribes to topic under the identity key.
func Open(sock transport.Socket, topic, key string) (*Channel, error) {
	c := &Channel{
		sock:      sock,
		topic:     topic,
		key:       key,
		state:     make(map[string][]core.PresenceMeta),
		listeners: make(map[uint64]func()),
	}
	c.unsubs = []func(){
		sock.On(core.EventPresenceJoined, c.handleJoined),
		sock.On(core.EventPresenceSync, c.handleSync),
	}
	if err := sock.Emit(core.EventPresenceJoin, core.PresenceJoin{Topic: topic, Key: key}); err != nil {
		c.detach()
		return nil, fmt.Errorf("open presence channel %s: %w", topic, err)
	}
	return c, nil
}

func (c *Channel) Topic() string { return c.topic }

func (c *Channel) Joined() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.joined
}

// OnJoined runs fn once the server confirms the subscription, or right away
// if it already has.
func (c *Channel) OnJoined(fn func()) {
	c.mu.Lock()
	if !c.joined {
		c.onJoined = append(c.onJoined, fn)
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	fn()
}

// OnSync registers fn to run after every state sync.
func (c *Channel) OnSync(fn func()) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	id := c.nextID
	c.listeners[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// Track replaces this client's record on the topic.
func (c *Channel) Track(record any) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode presence record: %w", err)
	}
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return transport.ErrClosed
	}
	return c.sock.Emit(core.EventPresenceTrack, core.PresenceTrack{Topic: c.topic, Payload: raw})
}

// PresenceState returns a copy of the last synced state.
func (c *Channel) PresenceState() map[string][]core.PresenceMeta {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string][]core.PresenceMeta, len(c.state))
	for k, metas := range c.state {
		out[k] = append([]core.PresenceMeta(nil), metas...)
	}
	return out
}

func (c *Channel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.state = make(map[string][]core.PresenceMeta)
	c.mu.Unlock()
	c.detach()
	return c.sock.Emit(core.EventPresenceLeave, core.PresenceLeave{Topic: c.topic})
}

func (c *Channel) detach() {
	for _, u := range c.unsubs {
		u()
	}
}

func (c *Channel) handleJoined(data json.RawMessage) {
	var ev core.PresenceJoined
	if err := json.Unmarshal(data, &ev); err != nil || ev.Topic != c.topic {
		return
	}
	c.mu.Lock()
	if c.joined || c.closed {
		c.mu.Unlock()
		return
	}
	c.joined = true
	fns := c.onJoined
	c.onJoined = nil
	c.mu.Unlock()

	log.Debug().Str("module", "client.presence").Str("topic", c.topic).Msg("subscribed")
	for _, fn := range fns {
		fn()
	}
}

func (c *Channel) handleSync(data json.RawMessage) {
	var ev core.PresenceSync
	if err := json.Unmarshal(data, &ev); err != nil {
		log.Warn().Err(err).Str("module", "client.presence").Msg("bad presence sync")
		return
	}
	if ev.Topic != c.topic {
		return
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if ev.State == nil {
		ev.State = make(map[string][]core.PresenceMeta)
	}
	c.state = ev.State
	fns := make([]func(), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
