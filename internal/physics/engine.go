package physics

// BallState is the phase of the current attempt.
type BallState uint8

const (
	// Resting: the ball waits at the launch origin and follows the pointer while aiming.
	Resting BallState = iota
	// Flight: the ball is integrated every Update.
	Flight
	// Resolved: the attempt has an outcome; ResetBall starts the next one.
	Resolved
)

func (s BallState) String() string {
	switch s {
	case Resting:
		return "resting"
	case Flight:
		return "flight"
	case Resolved:
		return "resolved"
	}
	return "unknown"
}

// Reason explains an Outcome.
type Reason uint8

const (
	ReasonScored Reason = iota
	ReasonSettled
	ReasonEscaped
	ReasonForced
	ReasonStalled
)

func (r Reason) String() string {
	switch r {
	case ReasonScored:
		return "scored"
	case ReasonSettled:
		return "settled"
	case ReasonEscaped:
		return "escaped"
	case ReasonForced:
		return "forced"
	case ReasonStalled:
		return "stalled"
	}
	return "unknown"
}

// Outcome is emitted once per attempt.
type Outcome struct {
	Success    bool    `json:"success"`
	Reason     Reason  `json:"reason"`
	Pos        Vec2    `json:"pos"`
	FlightTime float64 `json:"flightTime"`
	Launch     Launch  `json:"launch"`
}

// Engine runs one ball through its attempts. It is not safe for concurrent use.
type Engine struct {
	World World

	ball   Body
	state  BallState
	origin Vec2
	launch Launch
	age    float64
	trail  []Vec2
	sink   Sink
}

// NewEngine places a resting ball of the given radius at origin. A nil sink is replaced
// by NullSink.
func NewEngine(w World, radius float64, origin Vec2, sink Sink) *Engine {
	e := &Engine{World: w}
	e.SetSink(sink)
	e.ball.Radius = radius
	e.ResetBall(origin)
	return e
}

func (e *Engine) SetSink(s Sink) {
	if s == nil {
		s = NullSink{}
	}
	e.sink = s
}

func (e *Engine) State() BallState { return e.state }

func (e *Engine) Ball() Body { return e.ball }

func (e *Engine) Origin() Vec2 { return e.origin }

// SetRadius resizes the ball. It takes effect on the resting ball immediately.
func (e *Engine) SetRadius(r float64) {
	e.ball.Radius = r
}

// Trail returns a copy of the recent flight positions.
func (e *Engine) Trail() []Vec2 {
	out := make([]Vec2, len(e.trail))
	copy(out, e.trail)
	return out
}

// ResetBall puts a resting ball at origin and makes origin the launch anchor.
func (e *Engine) ResetBall(origin Vec2) {
	e.origin = origin
	e.ball.Pos = origin
	e.ball.Vel = Vec2{}
	e.state = Resting
	e.launch = Launch{}
	e.age = 0
	e.trail = e.trail[:0]
}

// Aim moves the resting ball to the drag point, held within the maximum drag distance.
func (e *Engine) Aim(drag Vec2) {
	if e.state != Resting {
		return
	}
	e.ball.Pos = ClampDrag(e.origin, drag, e.World.Arena.MaxDragDistance(e.ball.Radius))
}

// Launch releases the ball from drag. When the pull is too short the ball returns to
// the anchor, stays Resting, and ok is false.
func (e *Engine) Launch(drag Vec2) (Vec2, bool) {
	if e.state != Resting {
		return Vec2{}, false
	}
	l, ok := PlanLaunch(e.origin, drag, e.World.Arena, e.ball.Radius, e.World.Params)
	if !ok {
		e.ball.Pos = e.origin
		return Vec2{}, false
	}
	e.ball.Pos = l.From
	e.ball.Vel = l.Velocity
	e.launch = l
	e.state = Flight
	e.age = 0
	e.trail = e.trail[:0]
	return l.Velocity, true
}

// Update advances a ball in flight by delta frames. ok is true exactly once per attempt,
// on the tick the attempt concludes; the engine is then Resolved until ResetBall.
func (e *Engine) Update(delta float64) (Outcome, bool) {
	if e.state != Flight {
		return Outcome{}, false
	}

	n, dt := e.World.Params.subSteps(delta)
	for i := 0; i < n; i++ {
		res := step(&e.ball, &e.World, dt, e.sink, stepOptions{age: e.age, goal: true})
		e.age += dt
		switch res {
		case stepScored:
			return e.conclude(ReasonScored), true
		case stepSettled:
			return e.conclude(ReasonSettled), true
		case stepEscaped:
			return e.conclude(ReasonEscaped), true
		}
	}
	if limit := e.World.Params.MaxFlightTime; limit > 0 && e.age >= limit {
		return e.conclude(ReasonStalled), true
	}
	e.pushTrail()
	return Outcome{}, false
}

// ForceMiss ends the current attempt as a miss whatever its state and resets the ball
// to the anchor.
func (e *Engine) ForceMiss() Outcome {
	o := e.conclude(ReasonForced)
	e.ResetBall(e.origin)
	return o
}

// PreviewTrajectory predicts the flight a release at drag would produce. It returns nil
// when the pull is too short or the ball is not resting.
func (e *Engine) PreviewTrajectory(drag Vec2) []Vec2 {
	if e.state != Resting {
		return nil
	}
	l, ok := PlanLaunch(e.origin, drag, e.World.Arena, e.ball.Radius, e.World.Params)
	if !ok {
		return nil
	}
	return Predict(Body{Pos: l.From, Vel: l.Velocity, Radius: e.ball.Radius}, e.World)
}

func (e *Engine) conclude(r Reason) Outcome {
	e.state = Resolved
	e.pushTrail()
	return Outcome{
		Success:    r == ReasonScored,
		Reason:     r,
		Pos:        e.ball.Pos,
		FlightTime: e.age,
		Launch:     e.launch,
	}
}

func (e *Engine) pushTrail() {
	limit := e.World.Params.TrailLength
	if limit <= 0 {
		return
	}
	if len(e.trail) >= limit {
		copy(e.trail, e.trail[1:])
		e.trail = e.trail[:len(e.trail)-1]
	}
	e.trail = append(e.trail, e.ball.Pos)
}
