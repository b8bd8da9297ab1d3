// Package transport is the client end of the signaling socket: one
// WebSocket carrying named events in both directions.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var (
	ErrClosed       = errors.New("transport closed")
	ErrBackpressure = errors.New("send queue full")
)

const (
	sendQueue = 64
	writeWait = 5 * time.Second
)

// Handler receives the data of one event. Handlers run on the read
// goroutine in arrival order and must not block.
type Handler func(data json.RawMessage)

// Socket is what the signaling and presence clients need from a connection.
type Socket interface {
	Emit(eventType string, data any) error
	On(eventType string, h Handler) (unsubscribe func())
}

type Conn struct {
	ws      *websocket.Conn
	send    chan []byte
	flushed chan struct{}
	done    chan struct{}

	mu       sync.RWMutex
	handlers map[string]map[uint64]Handler
	nextID   uint64
	closed   bool
	err      error
}

// Dial connects to a signaling endpoint. jar may be nil; when set it carries
// the client token and session cookies issued by the HTTP API.
func Dial(ctx context.Context, url string, jar http.CookieJar) (*Conn, error) {
	dialer := *websocket.DefaultDialer
	dialer.Jar = jar
	ws, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	c := newConn(ws)
	go c.writeLoop()
	go c.readLoop()
	log.Info().Str("module", "client.transport").Str("url", url).Msg("connected")
	return c, nil
}

func newConn(ws *websocket.Conn) *Conn {
	return &Conn{
		ws:       ws,
		send:     make(chan []byte, sendQueue),
		flushed:  make(chan struct{}),
		done:     make(chan struct{}),
		handlers: make(map[string]map[uint64]Handler),
	}
}

// On registers h for eventType and returns its deregistration.
func (c *Conn) On(eventType string, h Handler) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	id := c.nextID
	hs, ok := c.handlers[eventType]
	if !ok {
		hs = make(map[uint64]Handler)
		c.handlers[eventType] = hs
	}
	hs[id] = h

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			delete(c.handlers[eventType], id)
		})
	}
}

// Emit queues an event without waiting for the network.
func (c *Conn) Emit(eventType string, data any) error {
	f, err := core.Encode(eventType, data)
	if err != nil {
		return fmt.Errorf("encode %s: %w", eventType, err)
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClosed
	}
	select {
	case c.send <- f:
		return nil
	default:
		return ErrBackpressure
	}
}

// Done is closed once the connection is gone.
func (c *Conn) Done() <-chan struct{} { return c.done }

// Err reports why the connection ended, nil after a local Close.
func (c *Conn) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

func (c *Conn) Close() error {
	c.shutdown(nil)
	return nil
}

func (c *Conn) shutdown(cause error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.err = cause
	close(c.send)
	c.mu.Unlock()

	// give queued frames, a leave in particular, a chance to go out
	select {
	case <-c.flushed:
	case <-time.After(writeWait):
	}
	_ = c.ws.Close()
	close(c.done)
}

func (c *Conn) writeLoop() {
	defer close(c.flushed)
	for f := range c.send {
		if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			log.Warn().Err(err).Str("module", "client.transport").Msg("set write deadline")
			return
		}
		if err := c.ws.WriteMessage(websocket.TextMessage, f); err != nil {
			log.Warn().Err(err).Str("module", "client.transport").Msg("write")
			return
		}
	}
	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}

func (c *Conn) readLoop() {
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			c.mu.RLock()
			local := c.closed
			c.mu.RUnlock()
			if !local && !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("module", "client.transport").Msg("read")
			}
			go c.shutdown(err)
			return
		}
		c.dispatch(data)
	}
}

func (c *Conn) dispatch(data []byte) {
	var env core.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Str("module", "client.transport").Msg("bad frame")
		return
	}
	if env.Type == core.EventError {
		log.Warn().Str("module", "client.transport").Str("code", env.Error).Msg("server rejected event")
	}

	c.mu.RLock()
	hs := make([]Handler, 0, len(c.handlers[env.Type]))
	for _, h := range c.handlers[env.Type] {
		hs = append(hs, h)
	}
	c.mu.RUnlock()

	for _, h := range hs {
		h(env.Data)
	}
}
