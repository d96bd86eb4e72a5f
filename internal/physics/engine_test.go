package physics

import (
	"testing"
	"time"
)

// fire puts e into flight from an exact state, bypassing the launch planner.
func fire(e *Engine, from, vel Vec2) {
	e.ball.Pos = from
	e.ball.Vel = vel
	e.state = Flight
	e.age = 0
}

// runUntilResolved updates e with a constant delta and returns the outcome and the
// number of ticks it took.
func runUntilResolved(t *testing.T, e *Engine, delta float64) (Outcome, int) {
	t.Helper()
	for tick := 1; tick <= 10000; tick++ {
		if o, ok := e.Update(delta); ok {
			return o, tick
		}
	}
	t.Fatal("flight never resolved")
	return Outcome{}, 0
}

func TestEngineRegressionFixture(t *testing.T) {
	e := NewEngine(fixtureWorld(), 18, V(150, 520), nil)
	fire(e, V(150, 520), V(6, -18))

	o, ticks := runUntilResolved(t, e, 1)
	if o.Success || o.Reason != ReasonSettled {
		t.Fatalf("outcome = %+v, want a settle miss", o)
	}
	if ticks < 96 || ticks > 100 {
		t.Errorf("resolved after %d ticks, want 98", ticks)
	}
	if !near(o.Pos.X, 557.525, 1) || o.Pos.Y != 482 {
		t.Errorf("resting point = %v, want about (557.5, 482)", o.Pos)
	}
	if e.State() != Resolved {
		t.Errorf("state = %v, want resolved", e.State())
	}
	if _, ok := e.Update(1); ok {
		t.Error("resolved engine produced a second outcome")
	}
}

func TestEngineScores(t *testing.T) {
	for _, delta := range []float64{1, 2.5} {
		e := NewEngine(fixtureWorld(), 18, V(150, 482), nil)
		fire(e, V(150, 482), V(8.1, -24))

		o, _ := runUntilResolved(t, e, delta)
		if !o.Success || o.Reason != ReasonScored {
			t.Errorf("delta %v: outcome = %+v, want scored", delta, o)
		}
	}
}

func TestEngineImpactsReachSink(t *testing.T) {
	sink := &recordSink{}
	e := NewEngine(fixtureWorld(), 18, V(150, 520), sink)
	fire(e, V(150, 520), V(6, -18))
	runUntilResolved(t, e, 1)

	if len(sink.impacts) == 0 {
		t.Fatal("live flight reported no impacts")
	}
	for i, s := range sink.speeds {
		if s <= 0 {
			t.Errorf("impact %d (%v) has speed %v", i, sink.impacts[i], s)
		}
	}
}

func TestPredictorMatchesLiveFlight(t *testing.T) {
	w := fixtureWorld()
	e := NewEngine(w, 18, V(150, 520), nil)
	fire(e, V(150, 520), V(6, -18))
	o, _ := runUntilResolved(t, e, 1)

	path := Predict(Body{Pos: V(150, 520), Vel: V(6, -18), Radius: 18}, w)
	if len(path) == 0 {
		t.Fatal("empty prediction")
	}
	last := path[len(path)-1]
	if !near(last.X, o.Pos.X, 1e-6) || !near(last.Y, o.Pos.Y, 1e-6) {
		t.Errorf("predicted rest %v, live rest %v", last, o.Pos)
	}
}

func TestPreviewTrajectoryMatchesLaunch(t *testing.T) {
	origin := V(144, 491)
	drag := V(244, 541)
	e := NewEngine(fixtureWorld(), 18, origin, nil)

	path := e.PreviewTrajectory(drag)
	if len(path) == 0 {
		t.Fatal("no preview for a real pull")
	}
	if e.State() != Resting || e.Ball().Pos != origin {
		t.Fatalf("preview touched the ball: state %v pos %v", e.State(), e.Ball().Pos)
	}

	if _, ok := e.Launch(drag); !ok {
		t.Fatal("launch failed")
	}
	o, _ := runUntilResolved(t, e, 1)
	last := path[len(path)-1]
	if o.Success || !near(last.X, o.Pos.X, 1e-6) || !near(last.Y, o.Pos.Y, 1e-6) {
		t.Errorf("preview ended at %v, flight ended at %v (%v)", last, o.Pos, o.Reason)
	}
}

func TestPreviewIsSilent(t *testing.T) {
	sink := &recordSink{}
	e := NewEngine(fixtureWorld(), 18, V(144, 491), sink)
	if path := e.PreviewTrajectory(V(60, 600)); len(path) == 0 {
		t.Fatal("no preview")
	}
	if len(sink.impacts) != 0 {
		t.Errorf("preview reported impacts: %v", sink.impacts)
	}
}

func TestPreviewStride(t *testing.T) {
	w := fixtureWorld()
	w.Target = Target{X: -1000, Y: -1000, Width: 1, Depth: 1, Wall: 1}
	// slow straight-up throw from mid-air never settles within the horizon
	w.Arena = Arena{Width: 800, Height: 1e9, GroundY: 1e9}
	w.Params.FailBorder = 1e12
	path := Predict(Body{Pos: V(400, 300), Vel: V(0, -1), Radius: 10}, w)
	if len(path) != w.Params.PreviewSteps/2 {
		t.Errorf("len(path) = %d, want %d", len(path), w.Params.PreviewSteps/2)
	}
}

func TestPreviewShortPull(t *testing.T) {
	e := NewEngine(fixtureWorld(), 18, V(144, 491), nil)
	if path := e.PreviewTrajectory(V(146, 493)); path != nil {
		t.Errorf("short pull previewed %d points", len(path))
	}
}

func TestEngineLaunchShortPull(t *testing.T) {
	origin := V(144, 491)
	e := NewEngine(fixtureWorld(), 18, origin, nil)
	e.Aim(V(147, 493))
	if _, ok := e.Launch(V(147, 493)); ok {
		t.Fatal("short pull launched")
	}
	if e.State() != Resting || e.Ball().Pos != origin {
		t.Errorf("after short pull: state %v pos %v, want resting at origin", e.State(), e.Ball().Pos)
	}
	if _, ok := e.Update(1); ok {
		t.Error("resting ball produced an outcome")
	}
}

func TestEngineAimClamps(t *testing.T) {
	origin := V(144, 491)
	e := NewEngine(fixtureWorld(), 18, origin, nil)
	e.Aim(V(144, 5000))
	if got := e.Ball().Pos.Dist(origin); !near(got, e.World.Arena.MaxDragDistance(18), 1e-9) {
		t.Errorf("aimed ball %v from anchor, want the max drag distance", got)
	}
}

func TestEngineLaunchOnlyWhenResting(t *testing.T) {
	e := NewEngine(fixtureWorld(), 18, V(144, 491), nil)
	if _, ok := e.Launch(V(60, 600)); !ok {
		t.Fatal("first launch failed")
	}
	if e.State() != Flight {
		t.Fatalf("state = %v, want flight", e.State())
	}
	if _, ok := e.Launch(V(60, 600)); ok {
		t.Error("launched a ball already in flight")
	}
}

func TestEngineForceMiss(t *testing.T) {
	origin := V(144, 491)
	e := NewEngine(fixtureWorld(), 18, origin, nil)
	e.Launch(V(60, 600))
	e.Update(1)
	e.Update(1)

	o := e.ForceMiss()
	if o.Success || o.Reason != ReasonForced {
		t.Errorf("ForceMiss outcome = %+v", o)
	}
	if e.State() != Resting || e.Ball().Pos != origin || e.Ball().Vel != (Vec2{}) {
		t.Errorf("after ForceMiss: state %v ball %+v", e.State(), e.Ball())
	}
	if len(e.Trail()) != 0 {
		t.Errorf("trail survived the reset: %d points", len(e.Trail()))
	}
}

func TestEngineStallEndsFlight(t *testing.T) {
	w := fixtureWorld()
	w.Params.Gravity = 0
	w.Params.MaxFlightTime = 50
	e := NewEngine(w, 18, V(150, 520), nil)
	fire(e, V(300, 300), Vec2{})

	o, ticks := runUntilResolved(t, e, 1)
	if o.Success || o.Reason != ReasonStalled {
		t.Errorf("outcome = %+v, want stalled miss", o)
	}
	if ticks != 50 || o.FlightTime < 50 {
		t.Errorf("resolved after %d ticks, flight time %v; want 50", ticks, o.FlightTime)
	}
}

func TestEngineBallOnWallCapStalls(t *testing.T) {
	e := NewEngine(fixtureWorld(), 18, V(150, 520), nil)
	fire(e, V(500, 40), Vec2{})

	o, _ := runUntilResolved(t, e, 1)
	if o.Success {
		t.Errorf("ball balanced on the wall cap scored: %+v", o)
	}
	if o.Reason != ReasonStalled && o.Reason != ReasonSettled && o.Reason != ReasonEscaped {
		t.Errorf("reason = %v", o.Reason)
	}
}

func TestEngineSubStepsMatchSmallDeltas(t *testing.T) {
	a := NewEngine(fixtureWorld(), 18, V(150, 520), nil)
	b := NewEngine(fixtureWorld(), 18, V(150, 520), nil)
	fire(a, V(150, 520), V(6, -18))
	fire(b, V(150, 520), V(6, -18))

	for i := 0; i < 10; i++ {
		a.Update(2.5)
		for j := 0; j < 3; j++ {
			b.Update(2.5 / 3)
		}
	}
	if a.Ball().Pos != b.Ball().Pos || a.Ball().Vel != b.Ball().Vel {
		t.Errorf("sub-stepped %+v differs from stepped %+v", a.Ball(), b.Ball())
	}
}

func TestEngineTrailCapped(t *testing.T) {
	w := fixtureWorld()
	w.Params.TrailLength = 5
	e := NewEngine(w, 18, V(150, 520), nil)
	fire(e, V(150, 520), V(6, -18))
	for i := 0; i < 20; i++ {
		e.Update(1)
	}
	trail := e.Trail()
	if len(trail) != 5 {
		t.Fatalf("trail length = %d, want 5", len(trail))
	}
	if trail[4] != e.Ball().Pos {
		t.Errorf("newest trail point %v, ball at %v", trail[4], e.Ball().Pos)
	}
}

func TestEngineResetBall(t *testing.T) {
	e := NewEngine(fixtureWorld(), 18, V(144, 491), nil)
	fire(e, V(150, 520), V(6, -18))
	runUntilResolved(t, e, 1)

	e.ResetBall(V(140, 489))
	if e.State() != Resting || e.Origin() != V(140, 489) || e.Ball().Pos != V(140, 489) {
		t.Errorf("ResetBall: state %v origin %v pos %v", e.State(), e.Origin(), e.Ball().Pos)
	}
}

func TestFrameDelta(t *testing.T) {
	p := DefaultParams()
	tests := []struct {
		name    string
		elapsed int64 // milliseconds
		want    float64
	}{
		{"one frame", 1000 / 60, float64(1000/60) * 60 / 1000},
		{"stalled", 5000, 2.5},
		{"zero", 0, 0},
	}
	for _, tt := range tests {
		got := p.FrameDelta(msDuration(tt.elapsed))
		if !near(got, tt.want, 1e-6) {
			t.Errorf("%s: FrameDelta = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func msDuration(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
