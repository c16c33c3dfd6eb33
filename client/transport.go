package client

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"cosmic/protocol"
)

var (
	ErrNotConnected  = errors.New("client: not connected")
	ErrSendQueueFull = errors.New("client: send queue full")
)

const (
	defaultDeadAfter  = 7 * time.Second
	defaultRetryDelay = 250 * time.Millisecond
	maxRetryDelay     = 5 * time.Second
)

type EventKind int

const (
	EventFrame EventKind = iota
	EventConnected
	EventDisconnected
)

// Event is what the transport hands to the controller loop.
type Event struct {
	Kind EventKind
	Env  protocol.Envelope
}

// Transport is an auto-reconnecting websocket connection. Frames and
// lifecycle changes arrive on Events; Send is safe from any goroutine.
type Transport struct {
	url       string
	dialer    *websocket.Dialer
	events    chan Event
	deadAfter time.Duration
	logger    *log.Logger

	mu  sync.Mutex
	out chan []byte // nil while disconnected
}

func NewTransport(url string, logger *log.Logger) *Transport {
	if logger == nil {
		logger = log.Default()
	}
	return &Transport{
		url:       url,
		dialer:    websocket.DefaultDialer,
		events:    make(chan Event, 256),
		deadAfter: defaultDeadAfter,
		logger:    logger,
	}
}

func (t *Transport) Events() <-chan Event { return t.events }

func (t *Transport) Send(typ string, payload any) error {
	b, err := protocol.Encode(typ, payload)
	if err != nil {
		return err
	}
	t.mu.Lock()
	out := t.out
	t.mu.Unlock()
	if out == nil {
		return ErrNotConnected
	}
	select {
	case out <- b:
		return nil
	default:
		return ErrSendQueueFull
	}
}

// Run dials, serves the connection until it drops, and dials again with
// exponential backoff until ctx is done.
func (t *Transport) Run(ctx context.Context) error {
	delay := defaultRetryDelay
	for {
		conn, _, err := t.dialer.DialContext(ctx, t.url, nil)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			t.logger.Printf("client: dial %s: %v (retry in %s)", t.url, err, delay)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay = min(delay*2, maxRetryDelay)
			continue
		}
		delay = defaultRetryDelay
		t.serve(ctx, conn)
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (t *Transport) serve(ctx context.Context, conn *websocket.Conn) {
	out := make(chan []byte, 256)
	t.mu.Lock()
	t.out = out
	t.mu.Unlock()
	t.emit(ctx, Event{Kind: EventConnected})

	done := make(chan struct{})
	go func() {
		for {
			select {
			case b := <-out:
				_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					_ = conn.Close()
					return
				}
			case <-ctx.Done():
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(time.Second))
				_ = conn.Close()
				return
			case <-done:
				return
			}
		}
	}()

	_ = conn.SetReadDeadline(time.Now().Add(t.deadAfter))
	conn.SetPingHandler(func(data string) error {
		_ = conn.SetReadDeadline(time.Now().Add(t.deadAfter))
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
	})
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				t.logger.Printf("client: connection lost: %v", err)
			}
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(t.deadAfter))
		env, err := protocol.DecodeEnvelope(msg)
		if err != nil {
			t.logger.Printf("client: discarding malformed message: %v", err)
			continue
		}
		t.emit(ctx, Event{Kind: EventFrame, Env: env})
	}

	close(done)
	t.mu.Lock()
	t.out = nil
	t.mu.Unlock()
	_ = conn.Close()
	t.emit(ctx, Event{Kind: EventDisconnected})
}

func (t *Transport) emit(ctx context.Context, ev Event) {
	select {
	case t.events <- ev:
	case <-ctx.Done():
	}
}

// Apply feeds one transport event into the controller.
func (c *Controller) Apply(ev Event) {
	switch ev.Kind {
	case EventConnected:
		c.OnReconnect()
	case EventDisconnected:
		c.OnDisconnect()
	case EventFrame:
		if err := c.Handle(ev.Env); err != nil {
			c.logger.Printf("client: %v", err)
		}
	}
}
