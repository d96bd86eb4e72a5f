package ws

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/vladimirvolkov/bucketshot/internal/middleware"
)

const (
	eventBuffer  = 32
	inputBuffer  = 64
	writeTimeout = 5 * time.Second
	pingInterval = 20 * time.Second
)

// Conn is one player's socket. State frames are coalesced: only the newest unsent frame
// is kept, so a slow client skips frames instead of falling behind. Every other message
// is an event and goes out in order ahead of the next frame.
type Conn struct {
	ws      *websocket.Conn
	limiter *middleware.IPRateLimiter

	ID       string
	Nickname string
	IP       string

	events chan []byte
	wake   chan struct{}

	frameMu sync.Mutex
	frame   []byte

	dropped atomic.Uint64
	done    chan struct{}
	once    sync.Once
}

func NewConn(ws *websocket.Conn, id string, ip string, limiter *middleware.IPRateLimiter) *Conn {
	return &Conn{
		ws:      ws,
		limiter: limiter,
		ID:      id,
		IP:      ip,
		events:  make(chan []byte, eventBuffer),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

// Send queues msg without blocking.
func (c *Conn) Send(msg Message) {
	data, err := Encode(msg)
	if err != nil {
		log.Printf("[CONN] %s: encode %#x: %v", c.ID, msg.Type, err)
		return
	}
	if msg.Type == MsgState {
		c.frameMu.Lock()
		if c.frame != nil {
			c.dropped.Add(1)
		}
		c.frame = data
		c.frameMu.Unlock()
		select {
		case c.wake <- struct{}{}:
		default:
		}
		return
	}
	select {
	case c.events <- data:
	default:
		c.dropped.Add(1)
		log.Printf("[CONN] %s: event queue full, dropping %#x", c.ID, msg.Type)
	}
}

// Dropped counts state frames superseded before they were written plus events lost to a
// full queue.
func (c *Conn) Dropped() uint64 {
	return c.dropped.Load()
}

func (c *Conn) takeFrame() []byte {
	c.frameMu.Lock()
	defer c.frameMu.Unlock()
	data := c.frame
	c.frame = nil
	return data
}

// ReadLoop decodes client input until the socket fails or ctx ends. Messages over the
// per-IP rate are discarded; aim updates arrive at pointer rate and losing a few is harmless.
func (c *Conn) ReadLoop(ctx context.Context) <-chan Message {
	ch := make(chan Message, inputBuffer)
	go func() {
		defer close(ch)
		for {
			_, data, err := c.ws.Read(ctx)
			if err != nil {
				if websocket.CloseStatus(err) == -1 && ctx.Err() == nil {
					log.Printf("[CONN] %s: read: %v", c.ID, err)
				}
				c.Close()
				return
			}
			if c.limiter != nil && !c.limiter.MessageAllowed(c.IP) {
				continue
			}
			msg, err := DecodeInput(data)
			if err != nil {
				log.Printf("[CONN] %s: bad input: %v", c.ID, err)
				continue
			}
			select {
			case ch <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

// WriteLoop flushes events and the latest frame, and pings an idle peer.
func (c *Conn) WriteLoop(ctx context.Context) {
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()
	for {
		select {
		case data := <-c.events:
			if !c.write(ctx, data) {
				return
			}
		case <-c.wake:
			if !c.flushEvents(ctx) {
				return
			}
			if data := c.takeFrame(); data != nil && !c.write(ctx, data) {
				return
			}
		case <-ping.C:
			pctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.ws.Ping(pctx)
			cancel()
			if err != nil {
				log.Printf("[CONN] %s: ping: %v", c.ID, err)
				c.Close()
				return
			}
		case <-c.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// flushEvents writes every queued event so that outcomes precede the frame showing them.
func (c *Conn) flushEvents(ctx context.Context) bool {
	for {
		select {
		case data := <-c.events:
			if !c.write(ctx, data) {
				return false
			}
		default:
			return true
		}
	}
}

func (c *Conn) write(ctx context.Context, data []byte) bool {
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if err := c.ws.Write(wctx, websocket.MessageText, data); err != nil {
		log.Printf("[CONN] %s: write: %v", c.ID, err)
		c.Close()
		return false
	}
	return true
}

func (c *Conn) Close() {
	c.CloseWith(websocket.StatusNormalClosure, "")
}

// CloseWith closes the socket with the given status. Only the first call has an effect.
func (c *Conn) CloseWith(code websocket.StatusCode, reason string) {
	c.once.Do(func() {
		close(c.done)
		c.ws.Close(code, reason)
	})
}

func (c *Conn) Done() <-chan struct{} {
	return c.done
}
