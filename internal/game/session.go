package game

import (
	"math/rand"
	"time"

	"github.com/vladimirvolkov/bucketshot/internal/physics"
	"github.com/vladimirvolkov/bucketshot/internal/stats"
)

// grabSlack is how far outside the ball a press still picks it up.
const grabSlack = 40

// Status message durations.
const (
	statusLaunched  = 900 * time.Millisecond
	statusShortPull = 800 * time.Millisecond
	statusBucket    = 1600 * time.Millisecond
	statusMissed    = 1200 * time.Millisecond
	statusReset     = 1000 * time.Millisecond
	statusStats     = 1600 * time.Millisecond
	statusResumed   = 900 * time.Millisecond
	statusResized   = 1200 * time.Millisecond
	statusWelcome   = 3200 * time.Millisecond
)

// Result is a concluded attempt together with the board it produced.
type Result struct {
	Outcome  physics.Outcome
	Target   physics.Target
	Board    Scoreboard
	Hot      bool
	Assisted bool
}

// Observer receives the side effects of a session: sounds, persistence, network events.
// Calls are made from whatever goroutine drives the session and must not block.
type Observer interface {
	Impact(surface physics.Surface, intensity, speed float64)
	Concluded(r Result)
	StatsReset()
}

type nopObserver struct{}

func (nopObserver) Impact(physics.Surface, float64, float64) {}
func (nopObserver) Concluded(Result)                         {}
func (nopObserver) StatsReset()                              {}

// ImpactIntensity maps an impact speed to a 0..1 loudness. Each surface has its own
// scale so a ground thud and a rim clink at the same speed sound different.
func ImpactIntensity(s physics.Surface, speed float64) float64 {
	switch s {
	case physics.SurfaceGround:
		return physics.Clamp(speed/30, 0.2, 1)
	case physics.SurfaceSide:
		return physics.Clamp(speed/25, 0.15, 0.8)
	case physics.SurfaceCeiling:
		return physics.Clamp(speed/25, 0.1, 0.6)
	default:
		return physics.Clamp(speed/35, 0.2, 0.9)
	}
}

// liveSink forwards engine impacts to the observer during play.
type liveSink struct {
	obs Observer
}

func (s liveSink) Impact(surface physics.Surface, speed float64) {
	s.obs.Impact(surface, ImpactIntensity(surface, speed), speed)
}

// Status is the transient message shown to the player.
type Status struct {
	Text      string        `json:"text"`
	Remaining time.Duration `json:"remaining"`
}

// Options configures a Session. Zero values select defaults.
type Options struct {
	Params   physics.Params
	Assist   physics.Assist
	Rand     *rand.Rand
	Observer Observer
}

// Session is one player's game: the engine, the bucket, the scoreboard and the pointer.
// It is not safe for concurrent use.
type Session struct {
	engine *physics.Engine
	board  Scoreboard
	rng    *rand.Rand
	obs    Observer

	aiming  bool
	grab    physics.Vec2
	pointer physics.Vec2
	paused  bool
	status  Status
}

func NewSession(width, height float64, opt Options) *Session {
	if opt.Params == (physics.Params{}) {
		opt.Params = physics.DefaultParams()
	}
	if opt.Rand == nil {
		opt.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opt.Observer == nil {
		opt.Observer = nopObserver{}
	}

	arena := physics.NewArena(width, height)
	radius := BallRadius(width)
	s := &Session{rng: opt.Rand, obs: opt.Observer}
	world := physics.World{
		Arena:  arena,
		Target: RandomTarget(opt.Rand, arena, opt.Assist.TargetScale),
		Assist: opt.Assist,
		Params: opt.Params,
	}
	s.engine = physics.NewEngine(world, radius, LaunchOrigin(arena, radius), liveSink{obs: opt.Observer})
	s.resetBall()
	s.setStatus("Drag + release to score!", statusWelcome)
	return s
}

// Engine exposes the underlying engine for inspection.
func (s *Session) Engine() *physics.Engine {
	return s.engine
}

func (s *Session) Board() Scoreboard {
	return s.board
}

// Restore loads persisted best and lifetime counts.
func (s *Session) Restore(r stats.Record) {
	s.board.Restore(r)
}

func (s *Session) Paused() bool {
	return s.paused
}

func (s *Session) Status() Status {
	return s.status
}

func (s *Session) setStatus(text string, d time.Duration) {
	s.status = Status{Text: text, Remaining: d}
}

// Press starts aiming if p is close enough to a resting ball.
func (s *Session) Press(p physics.Vec2) bool {
	if s.paused || s.engine.State() != physics.Resting {
		return false
	}
	b := s.engine.Ball()
	if p.Dist(b.Pos) > b.Radius+grabSlack {
		return false
	}
	s.aiming = true
	s.grab = p
	s.pointer = p
	return true
}

// Aim moves the pointer while aiming; the ball follows it relative to where it was grabbed.
func (s *Session) Aim(p physics.Vec2) {
	if !s.aiming || s.paused {
		return
	}
	s.pointer = p
	s.engine.Aim(s.dragPoint())
}

// Release launches the ball from the current aim.
func (s *Session) Release() bool {
	if !s.aiming || s.paused {
		return false
	}
	s.aiming = false
	if _, ok := s.engine.Launch(s.dragPoint()); !ok {
		s.setStatus("Pull back further", statusShortPull)
		return false
	}
	s.setStatus("Launched!", statusLaunched)
	return true
}

// Cancel drops the current aim without launching.
func (s *Session) Cancel() {
	if !s.aiming {
		return
	}
	s.aiming = false
	s.engine.Aim(s.engine.Origin())
}

func (s *Session) dragPoint() physics.Vec2 {
	return s.engine.Origin().Add(s.pointer.Sub(s.grab))
}

// Tick advances the game by the wall-clock time since the previous tick.
func (s *Session) Tick(elapsed time.Duration) {
	if s.paused {
		return
	}
	if s.status.Remaining > 0 {
		s.status.Remaining -= elapsed
		if s.status.Remaining < 0 {
			s.status.Remaining = 0
		}
	}
	delta := s.engine.World.Params.FrameDelta(elapsed)
	if o, ok := s.engine.Update(delta); ok {
		s.finish(o)
	}
}

// QuickReset abandons the current attempt as a miss.
func (s *Session) QuickReset() bool {
	if s.paused {
		return false
	}
	s.aiming = false
	s.finish(s.engine.ForceMiss())
	s.setStatus("Attempt reset", statusReset)
	return true
}

func (s *Session) finish(o physics.Outcome) {
	res := Result{
		Outcome:  o,
		Target:   s.engine.World.Target,
		Assisted: s.assisted(),
	}
	if o.Success {
		res.Hot = s.board.Hit()
		text := "Bucket!"
		if res.Hot {
			text += " Hot streak!"
		}
		s.setStatus(text, statusBucket)
		s.engine.World.Target = RandomTarget(s.rng, s.engine.World.Arena, s.engine.World.Assist.TargetScale)
	} else {
		s.board.Miss()
		s.setStatus("Missed", statusMissed)
	}
	res.Board = s.board
	s.obs.Concluded(res)
	s.resetBall()
}

func (s *Session) assisted() bool {
	a := s.engine.World.Assist
	return a.Forgiveness > 0 || a.LowerBucket || a.TargetScale > 1
}

// resetBall puts a fresh ball near the launch origin with a little jitter.
func (s *Session) resetBall() {
	w := s.engine.World
	radius := BallRadius(w.Arena.Width)
	s.engine.SetRadius(radius)
	origin := LaunchOrigin(w.Arena, radius).Add(physics.V(
		randomRange(s.rng, -3, 3),
		randomRange(s.rng, -3, 3),
	))
	s.engine.ResetBall(origin)
}

// SetPaused freezes or resumes the game. Pausing drops any aim in progress.
func (s *Session) SetPaused(paused bool) {
	if s.paused == paused {
		return
	}
	s.paused = paused
	if paused {
		s.Cancel()
		s.setStatus("Paused", 0)
		return
	}
	s.setStatus("Game resumed", statusResumed)
}

// SetAssist changes the assist options. A new bucket size applies to the next bucket.
func (s *Session) SetAssist(a physics.Assist) {
	s.engine.World.Assist = a
}

func (s *Session) Assist() physics.Assist {
	return s.engine.World.Assist
}

// ResetStats clears the scoreboard and starts a fresh attempt.
func (s *Session) ResetStats() {
	s.board.Reset()
	s.aiming = false
	s.obs.StatsReset()
	s.setStatus("Stats reset", statusStats)
	s.resetBall()
}

// Resize rebuilds the arena. A ball in flight keeps flying; otherwise it is re-placed.
func (s *Session) Resize(width, height float64) {
	w := &s.engine.World
	w.Arena = physics.NewArena(width, height)
	w.Target = RandomTarget(s.rng, w.Arena, w.Assist.TargetScale)
	if s.engine.State() != physics.Flight {
		s.aiming = false
		s.resetBall()
	}
	s.setStatus("Resized Arena", statusResized)
}

// Snapshot is everything a client needs to draw one frame.
type Snapshot struct {
	Arena   physics.Arena  `json:"arena"`
	Target  physics.Target `json:"target"`
	Ball    physics.Body   `json:"ball"`
	State   string         `json:"state"`
	Origin  physics.Vec2   `json:"origin"`
	Trail   []physics.Vec2 `json:"trail"`
	Preview []physics.Vec2 `json:"preview,omitempty"`
	Aiming  bool           `json:"aiming"`
	Board   Scoreboard     `json:"board"`
	Status  Status         `json:"status"`
	Paused  bool           `json:"paused"`
	Assist  physics.Assist `json:"assist"`
}

func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Arena:  s.engine.World.Arena,
		Target: s.engine.World.Target,
		Ball:   s.engine.Ball(),
		State:  s.engine.State().String(),
		Origin: s.engine.Origin(),
		Trail:  s.engine.Trail(),
		Aiming: s.aiming,
		Board:  s.board,
		Status: s.status,
		Paused: s.paused,
		Assist: s.engine.World.Assist,
	}
	if s.aiming {
		snap.Preview = s.engine.PreviewTrajectory(s.dragPoint())
	}
	return snap
}
