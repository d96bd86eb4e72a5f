package physics

import (
	"math"
	"time"
)

// Time in the simulation is measured in frames of a 60 Hz display: a velocity of 1 moves
// one arena unit per frame and a delta of 1 advances one frame.
const (
	FrameRate     = 60
	FrameInterval = time.Second / FrameRate
)

// Params holds the process-wide tuning constants. Live play and the trajectory preview
// must share one Params value.
type Params struct {
	Gravity           float64 `toml:"gravity"`
	AirDrag           float64 `toml:"air_drag"`
	RestitutionGround float64 `toml:"restitution_ground"`
	RestitutionSide   float64 `toml:"restitution_side"`
	MinBounce         float64 `toml:"min_bounce"`
	MaxSubStep        float64 `toml:"max_sub_step"`
	MaxFrameDelta     float64 `toml:"max_frame_delta"`

	GroundFriction float64 `toml:"ground_friction"`
	SettleFriction float64 `toml:"settle_friction"`
	// SettleGate is the flight time before a soft ground contact may end the attempt.
	SettleGate float64 `toml:"settle_gate"`
	FailBorder float64 `toml:"fail_border"`
	// MaxFlightTime ends a flight that has neither scored nor left the arena, such as a
	// ball balanced on a wall cap. Zero disables the limit.
	MaxFlightTime float64 `toml:"max_flight_time"`

	// WallRestitution is the restitution factor passed to Reflect for bucket walls; 0.6
	// gives the 1.6x impulse. WallDamping scales the whole velocity afterwards.
	WallRestitution float64 `toml:"wall_restitution"`
	WallDamping     float64 `toml:"wall_damping"`

	MinPull       float64 `toml:"min_pull"`
	TrailLength   int     `toml:"trail_length"`
	PreviewSteps  int     `toml:"preview_steps"`
	PreviewStride int     `toml:"preview_stride"`
}

func DefaultParams() Params {
	return Params{
		Gravity:           0.55,
		AirDrag:           0.994,
		RestitutionGround: 0.45,
		RestitutionSide:   0.5,
		MinBounce:         1.5,
		MaxSubStep:        1,
		MaxFrameDelta:     2.5,
		GroundFriction:    0.8,
		SettleFriction:    0.7,
		SettleGate:        3,
		FailBorder:        120,
		MaxFlightTime:     30 * FrameRate,
		WallRestitution:   0.6,
		WallDamping:       0.85,
		MinPull:           6,
		TrailLength:       60,
		PreviewSteps:      200,
		PreviewStride:     2,
	}
}

// FrameDelta converts wall-clock time since the last frame into simulation time,
// capped at MaxFrameDelta so a stalled frame cannot produce a multi-second jump.
func (p Params) FrameDelta(elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return math.Min(float64(elapsed)/float64(FrameInterval), p.MaxFrameDelta)
}

// subSteps splits delta into equal sub-steps no wider than MaxSubStep.
func (p Params) subSteps(delta float64) (int, float64) {
	if delta <= 0 {
		return 0, 0
	}
	n := int(math.Ceil(delta / p.MaxSubStep))
	if n < 1 {
		n = 1
	}
	return n, delta / float64(n)
}
