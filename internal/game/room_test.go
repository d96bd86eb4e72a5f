package game

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/vladimirvolkov/bucketshot/internal/physics"
	"github.com/vladimirvolkov/bucketshot/internal/stats"
	"github.com/vladimirvolkov/bucketshot/internal/ws"
)

type fakeClient struct {
	mu     sync.Mutex
	sent   []ws.Message
	inbox  chan ws.Message
	closed bool
}

func newFakeClient() *fakeClient {
	return &fakeClient{inbox: make(chan ws.Message, 8)}
}

func (c *fakeClient) Send(msg ws.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, msg)
}

func (c *fakeClient) ReadLoop(ctx context.Context) <-chan ws.Message {
	return c.inbox
}

func (c *fakeClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// last returns the most recent message of type typ.
func (c *fakeClient) last(typ uint8) (ws.Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.sent) - 1; i >= 0; i-- {
		if c.sent[i].Type == typ {
			return c.sent[i], true
		}
	}
	return ws.Message{}, false
}

func mustMessage(t *testing.T, typ uint8, payload any) ws.Message {
	t.Helper()
	msg, err := ws.NewMessage(typ, 0, payload)
	if err != nil {
		t.Fatal(err)
	}
	return msg
}

func newTestRoom(rec *stats.Recorder) (*Room, *fakeClient) {
	c := newFakeClient()
	r := NewRoom(c, "ana", RoomConfig{
		Width:    800,
		Height:   600,
		Record:   stats.Record{Best: 3, Lifetime: 10},
		Recorder: rec,
	})
	r.lastTick = time.Now()
	return r, c
}

func TestRoomRestoresRecord(t *testing.T) {
	r, _ := newTestRoom(nil)
	if b := r.session.Board(); b.Best != 3 || b.Lifetime != 10 || b.Streak != 0 {
		t.Errorf("board = %+v", b)
	}
}

func TestRoomAimBroadcastsPreview(t *testing.T) {
	r, c := newTestRoom(nil)
	ball := r.session.Engine().Ball()

	r.enqueue(mustMessage(t, ws.MsgPress, ws.PointPayload{X: ball.Pos.X, Y: ball.Pos.Y}))
	r.enqueue(mustMessage(t, ws.MsgAim, ws.PointPayload{X: ball.Pos.X - 100, Y: ball.Pos.Y + 60}))
	r.step(r.lastTick.Add(physics.FrameInterval))

	msg, ok := c.last(ws.MsgState)
	if !ok {
		t.Fatal("no state broadcast")
	}
	var snap Snapshot
	if err := json.Unmarshal(msg.Payload, &snap); err != nil {
		t.Fatal(err)
	}
	if !snap.Aiming || len(snap.Preview) == 0 {
		t.Errorf("snapshot aiming %v with %d preview points", snap.Aiming, len(snap.Preview))
	}
	if msg.Tick != 1 {
		t.Errorf("tick = %d, want 1", msg.Tick)
	}

	r.enqueue(mustMessage(t, ws.MsgRelease, struct{}{}))
	r.step(r.lastTick.Add(physics.FrameInterval))
	if r.session.Engine().State() != physics.Flight {
		t.Errorf("state after release = %v", r.session.Engine().State())
	}
}

func TestRoomControlMessages(t *testing.T) {
	r, c := newTestRoom(nil)

	r.handleMessage(mustMessage(t, ws.MsgPause, ws.PausePayload{Paused: true}))
	if !r.session.Paused() {
		t.Error("pause message ignored")
	}
	r.handleMessage(mustMessage(t, ws.MsgPause, ws.PausePayload{Paused: false}))

	r.handleMessage(mustMessage(t, ws.MsgAssist, ws.AssistPayload{Forgiveness: 500, LowerBucket: true, TargetScale: 1.3}))
	if a := r.session.Assist(); a.Forgiveness != 40 || !a.LowerBucket || a.TargetScale != 1.3 {
		t.Errorf("assist = %+v", a)
	}

	r.handleMessage(mustMessage(t, ws.MsgResize, ws.ResizePayload{Width: 50, Height: 10000}))
	if a := r.session.Engine().World.Arena; a.Width != minArenaSide || a.Height != maxArenaSide {
		t.Errorf("arena = %+v", a)
	}

	r.handleMessage(mustMessage(t, ws.MsgPing, ws.PingPayload{ClientTime: 42}))
	msg, ok := c.last(ws.MsgPong)
	if !ok {
		t.Fatal("no pong")
	}
	var pong ws.PongPayload
	if err := json.Unmarshal(msg.Payload, &pong); err != nil {
		t.Fatal(err)
	}
	if pong.ClientTime != 42 || pong.ServerTime == 0 {
		t.Errorf("pong = %+v", pong)
	}
}

func TestRoomRecordsOutcome(t *testing.T) {
	store := stats.NewMemoryStore()
	rec := stats.NewRecorder(store, nil, 8)
	r, c := newTestRoom(rec)

	r.handleMessage(mustMessage(t, ws.MsgReset, struct{}{}))

	msg, ok := c.last(ws.MsgOutcome)
	if !ok {
		t.Fatal("no outcome message")
	}
	var out ws.OutcomePayload
	if err := json.Unmarshal(msg.Payload, &out); err != nil {
		t.Fatal(err)
	}
	if out.Success || out.Reason != "forced" || out.Best != 3 || out.Lifetime != 10 {
		t.Errorf("outcome = %+v", out)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec.Run(ctx)

	got, err := store.Load(context.Background(), "ana")
	if err != nil {
		t.Fatal(err)
	}
	if got != (stats.Record{Best: 3, Lifetime: 10}) {
		t.Errorf("stored record = %+v", got)
	}
}

func TestRoomStopsWhenClientLeaves(t *testing.T) {
	r, c := newTestRoom(nil)
	r.Start(context.Background())
	close(c.inbox)

	select {
	case <-r.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("room kept running after the client left")
	}

	if _, ok := c.last(ws.MsgWelcome); !ok {
		t.Error("no welcome message")
	}
}
