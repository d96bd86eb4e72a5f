package ws

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync/atomic"

	"github.com/coder/websocket"
	"github.com/vladimirvolkov/bucketshot/internal/middleware"
)

// maxInputSize fits the largest client payload (resize or assist) with room to spare.
const maxInputSize = 1024

// RoomCreator starts a game for an admitted connection. It must not block; the hub keeps
// the HTTP handler alive until the connection closes.
type RoomCreator interface {
	CreateRoom(c *Conn)
}

// HubStats holds live server metrics.
type HubStats struct {
	ActiveRooms      int64  `json:"activeRooms"`
	TotalConnections uint64 `json:"totalConnections"`
	RejectedFull     uint64 `json:"rejectedFull"`
}

// Hub admits websocket players, one room each, up to a fixed number of rooms.
type Hub struct {
	creator  RoomCreator
	limiter  *middleware.IPRateLimiter
	accept   websocket.AcceptOptions
	maxRooms int64

	nextID           atomic.Uint64
	activeRooms      atomic.Int64
	totalConnections atomic.Uint64
	rejectedFull     atomic.Uint64
}

func NewHub(creator RoomCreator, limiter *middleware.IPRateLimiter, originPatterns []string, maxRooms int) *Hub {
	if maxRooms <= 0 {
		maxRooms = 100
	}
	return &Hub{
		creator:  creator,
		limiter:  limiter,
		accept:   websocket.AcceptOptions{OriginPatterns: originPatterns},
		maxRooms: int64(maxRooms),
	}
}

func (h *Hub) Stats() HubStats {
	return HubStats{
		ActiveRooms:      h.activeRooms.Load(),
		TotalConnections: h.totalConnections.Load(),
		RejectedFull:     h.rejectedFull.Load(),
	}
}

// RoomEnded releases the slot taken when the room was admitted.
func (h *Hub) RoomEnded() {
	h.activeRooms.Add(-1)
}

// HandleWS upgrades the request and hands the connection to a new room. The player's
// nickname comes from the "name" query parameter.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	ip := middleware.RealIP(r)
	if h.limiter != nil && !h.limiter.ConnectAllowed(ip) {
		http.Error(w, "too many connections", http.StatusTooManyRequests)
		return
	}

	sock, err := websocket.Accept(w, r, &h.accept)
	if err != nil {
		h.release(ip)
		log.Printf("[HUB] accept from %s: %v", ip, err)
		return
	}
	sock.SetReadLimit(maxInputSize)

	conn := NewConn(sock, fmt.Sprintf("player-%d", h.nextID.Add(1)), ip, h.limiter)
	conn.Nickname = SanitizeNickname(r.URL.Query().Get("name"))
	total := h.totalConnections.Add(1)
	log.Printf("[HUB] %s joined as %q from %s (total: %d)", conn.ID, conn.Nickname, ip, total)

	// The write loop stops on conn.Done, not with the request.
	go conn.WriteLoop(context.Background())
	defer h.release(ip)

	if !h.admit() {
		h.rejectedFull.Add(1)
		log.Printf("[HUB] %d rooms running, turning away %s", h.maxRooms, conn.ID)
		conn.CloseWith(websocket.StatusTryAgainLater, "server full")
		return
	}
	h.creator.CreateRoom(conn)

	<-conn.Done()
	log.Printf("[HUB] %s left (%d messages dropped)", conn.ID, conn.Dropped())
}

func (h *Hub) release(ip string) {
	if h.limiter != nil {
		h.limiter.Disconnect(ip)
	}
}

// admit reserves a room slot.
func (h *Hub) admit() bool {
	for {
		n := h.activeRooms.Load()
		if n >= h.maxRooms {
			return false
		}
		if h.activeRooms.CompareAndSwap(n, n+1) {
			return true
		}
	}
}
