package game

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/vladimirvolkov/bucketshot/internal/physics"
	"github.com/vladimirvolkov/bucketshot/internal/stats"
	"github.com/vladimirvolkov/bucketshot/internal/ws"
)

// maxPending bounds the inputs queued between two ticks.
const maxPending = 64

// Arena sizes a client may request.
const (
	minArenaSide = 200
	maxArenaSide = 4000
)

// Client is the connection a room talks to.
type Client interface {
	Send(msg ws.Message)
	ReadLoop(ctx context.Context) <-chan ws.Message
	Close()
}

// RoomConfig is what a room needs besides its client.
type RoomConfig struct {
	Width, Height float64
	Params        physics.Params
	Assist        physics.Assist
	// Record is the player's persisted totals, loaded before the room starts.
	Record   stats.Record
	Recorder *stats.Recorder
}

// Room runs one player's session at the frame rate. Inputs are queued by the read loop
// and applied on the next tick, so the session is only touched by the game loop.
type Room struct {
	client   Client
	player   string
	session  *Session
	recorder *stats.Recorder

	pending []ws.Message
	inputMu sync.Mutex

	tick     uint32
	lastTick time.Time
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewRoom(c Client, player string, cfg RoomConfig) *Room {
	r := &Room{
		client:   c,
		player:   player,
		recorder: cfg.Recorder,
	}
	r.session = NewSession(cfg.Width, cfg.Height, Options{
		Params:   cfg.Params,
		Assist:   cfg.Assist,
		Observer: r,
	})
	r.session.Restore(cfg.Record)
	return r
}

func (r *Room) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)
	r.done = make(chan struct{})

	board := r.session.Board()
	msg, _ := ws.NewMessage(ws.MsgWelcome, 0, ws.WelcomePayload{
		Nickname: r.player,
		Best:     board.Best,
		Lifetime: board.Lifetime,
	})
	r.client.Send(msg)

	go r.readLoop(ctx)

	go func() {
		r.gameLoop(ctx)
		close(r.done)
	}()
}

// Done returns a channel that closes when the room's game loop exits.
func (r *Room) Done() <-chan struct{} {
	return r.done
}

func (r *Room) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
}

func (r *Room) readLoop(ctx context.Context) {
	msgs := r.client.ReadLoop(ctx)
	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				log.Printf("[ROOM] %s disconnected", r.player)
				r.cancel()
				return
			}
			r.enqueue(msg)
		case <-ctx.Done():
			return
		}
	}
}

func (r *Room) enqueue(msg ws.Message) {
	r.inputMu.Lock()
	defer r.inputMu.Unlock()
	if len(r.pending) >= maxPending {
		return
	}
	r.pending = append(r.pending, msg)
}

func (r *Room) gameLoop(ctx context.Context) {
	ticker := time.NewTicker(physics.FrameInterval)
	defer ticker.Stop()
	r.lastTick = time.Now()

	for {
		select {
		case now := <-ticker.C:
			r.step(now)
		case <-ctx.Done():
			return
		}
	}
}

func (r *Room) step(now time.Time) {
	r.tick++

	r.inputMu.Lock()
	inputs := r.pending
	r.pending = nil
	r.inputMu.Unlock()

	for _, msg := range inputs {
		r.handleMessage(msg)
	}

	r.session.Tick(now.Sub(r.lastTick))
	r.lastTick = now
	r.broadcastState()
}

func (r *Room) handleMessage(msg ws.Message) {
	s := r.session
	switch msg.Type {
	case ws.MsgPress, ws.MsgAim:
		var p ws.PointPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return
		}
		if msg.Type == ws.MsgPress {
			s.Press(physics.V(p.X, p.Y))
		} else {
			s.Aim(physics.V(p.X, p.Y))
		}

	case ws.MsgRelease:
		s.Release()

	case ws.MsgCancel:
		s.Cancel()

	case ws.MsgReset:
		s.QuickReset()

	case ws.MsgPause:
		var p ws.PausePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return
		}
		s.SetPaused(p.Paused)

	case ws.MsgAssist:
		var p ws.AssistPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return
		}
		s.SetAssist(physics.Assist{
			Forgiveness: physics.Clamp(p.Forgiveness, 0, 40),
			LowerBucket: p.LowerBucket,
			TargetScale: physics.Clamp(p.TargetScale, 0, 2),
		})

	case ws.MsgResetStats:
		s.ResetStats()

	case ws.MsgResize:
		var p ws.ResizePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return
		}
		s.Resize(
			physics.Clamp(p.Width, minArenaSide, maxArenaSide),
			physics.Clamp(p.Height, minArenaSide, maxArenaSide),
		)

	case ws.MsgPing:
		var ping ws.PingPayload
		if err := json.Unmarshal(msg.Payload, &ping); err != nil {
			return
		}
		r.send(ws.MsgPong, ws.PongPayload{
			ClientTime: ping.ClientTime,
			ServerTime: uint64(time.Now().UnixMilli()),
		})
	}
}

func (r *Room) send(typ uint8, payload any) {
	msg, err := ws.NewMessage(typ, r.tick, payload)
	if err != nil {
		log.Printf("[ROOM] encode message %#x: %v", typ, err)
		return
	}
	r.client.Send(msg)
}

func (r *Room) broadcastState() {
	r.send(ws.MsgState, r.session.Snapshot())
}

// Impact implements Observer.
func (r *Room) Impact(surface physics.Surface, intensity, speed float64) {
	r.send(ws.MsgImpact, ws.ImpactPayload{
		Surface:   surface.String(),
		Speed:     speed,
		Intensity: intensity,
	})
}

// Concluded implements Observer.
func (r *Room) Concluded(res Result) {
	o := res.Outcome
	r.send(ws.MsgOutcome, ws.OutcomePayload{
		Success:  o.Success,
		Reason:   o.Reason.String(),
		Streak:   res.Board.Streak,
		Best:     res.Board.Best,
		Lifetime: res.Board.Lifetime,
		Hot:      res.Hot,
	})
	if o.Success {
		log.Printf("[ROOM] %s scored (streak %d, flight %.1f)", r.player, res.Board.Streak, o.FlightTime)
	}

	if r.recorder == nil {
		return
	}
	r.recorder.Record(r.player, res.Board.Record(), &stats.Attempt{
		Player:      r.player,
		Success:     o.Success,
		Reason:      o.Reason.String(),
		LaunchVX:    o.Launch.Velocity.X,
		LaunchVY:    o.Launch.Velocity.Y,
		Strength:    o.Launch.Strength,
		TargetX:     res.Target.X,
		TargetY:     res.Target.Y,
		TargetWidth: res.Target.Width,
		TargetDepth: res.Target.Depth,
		TargetWall:  res.Target.Wall,
		FlightTime:  o.FlightTime,
		Streak:      res.Board.Streak,
		Assisted:    res.Assisted,
	})
}

// StatsReset implements Observer.
func (r *Room) StatsReset() {
	if r.recorder != nil {
		r.recorder.Reset(r.player)
	}
}
