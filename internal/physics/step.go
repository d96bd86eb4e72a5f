package physics

import "math"

// Body is the integrated part of the ball.
type Body struct {
	Pos    Vec2    `json:"pos"`
	Vel    Vec2    `json:"vel"`
	Radius float64 `json:"radius"`
}

// Surface identifies what the ball bounced off.
type Surface uint8

const (
	SurfaceGround Surface = iota
	SurfaceSide
	SurfaceCeiling
	SurfaceBucket
)

func (s Surface) String() string {
	switch s {
	case SurfaceGround:
		return "ground"
	case SurfaceSide:
		return "side"
	case SurfaceCeiling:
		return "ceiling"
	case SurfaceBucket:
		return "bucket"
	}
	return "unknown"
}

// Sink receives bounce impacts from a step. Live play forwards them to sound
// collaborators; the preview passes NullSink.
type Sink interface {
	Impact(surface Surface, speed float64)
}

// NullSink discards impacts.
type NullSink struct{}

func (NullSink) Impact(Surface, float64) {}

// World is everything a step reads besides the ball itself.
type World struct {
	Arena  Arena
	Target Target
	Assist Assist
	Params Params
}

type stepResult uint8

const (
	stepRunning stepResult = iota
	stepSettled
	stepEscaped
	stepScored
)

// stepOptions distinguishes live flight from the preview.
type stepOptions struct {
	// age is flight time before this sub-step, used for the settle gate.
	age float64
	// goal enables the goal check; the preview flies through the bucket.
	goal bool
}

// step advances b by dt. It is the single integration routine behind both Engine.Update
// and Engine.PreviewTrajectory.
func step(b *Body, w *World, dt float64, sink Sink, opt stepOptions) stepResult {
	p := &w.Params

	b.Vel.Y += p.Gravity * dt
	b.Pos.X += b.Vel.X * dt
	b.Pos.Y += b.Vel.Y * dt

	if b.Pos.Y+b.Radius >= w.Arena.GroundY {
		b.Pos.Y = w.Arena.GroundY - b.Radius
		// A ball still rising is leaving the ground, not hitting it.
		if b.Vel.Y >= 0 {
			impact := math.Abs(b.Vel.Y)
			if impact < p.MinBounce && opt.age+dt >= p.SettleGate {
				b.Vel.Y = 0
				b.Vel.X *= p.SettleFriction
				return stepSettled
			}
			if impact < p.MinBounce {
				b.Vel.Y = 0
			} else {
				b.Vel.Y *= -p.RestitutionGround
				b.Vel.X *= p.GroundFriction
				sink.Impact(SurfaceGround, impact)
			}
		}
	}

	bounceSides(b, w, sink)
	bounceCeiling(b, w, sink)

	for _, seg := range DeriveWalls(w.Target).Each() {
		if _, impact := ResolveBallVsWall(b, seg, *p); impact > 0 {
			sink.Impact(SurfaceBucket, impact)
		}
	}

	if escaped(b, w) {
		return stepEscaped
	}

	if opt.goal && w.Assist.Scored(*b, w.Target) {
		return stepScored
	}

	drag := math.Pow(p.AirDrag, dt)
	b.Vel.X *= drag
	b.Vel.Y *= drag
	return stepRunning
}

func bounceSides(b *Body, w *World, sink Sink) {
	p := &w.Params
	// dir is the sign the reflected velocity must take.
	var dir float64
	switch {
	case b.Pos.X-b.Radius < 0:
		b.Pos.X = b.Radius
		dir = 1
	case b.Pos.X+b.Radius > w.Arena.Width:
		b.Pos.X = w.Arena.Width - b.Radius
		dir = -1
	default:
		return
	}
	impact := math.Abs(b.Vel.X)
	if impact > p.MinBounce {
		b.Vel.X = dir * impact * p.RestitutionSide
		sink.Impact(SurfaceSide, impact)
	} else {
		b.Vel.X = 0
	}
}

func bounceCeiling(b *Body, w *World, sink Sink) {
	p := &w.Params
	if b.Pos.Y-b.Radius >= 0 {
		return
	}
	b.Pos.Y = b.Radius
	impact := math.Abs(b.Vel.Y)
	if impact > p.MinBounce {
		b.Vel.Y = impact * p.RestitutionGround
		sink.Impact(SurfaceCeiling, impact)
	} else {
		b.Vel.Y = 0
	}
}

func escaped(b *Body, w *World) bool {
	m := w.Params.FailBorder
	return b.Pos.X < -m || b.Pos.X > w.Arena.Width+m ||
		b.Pos.Y < -m || b.Pos.Y > w.Arena.Height+m
}
