package physics

import "math"

// Arena is the playable rectangle. The ground sits above the bottom edge.
type Arena struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	GroundY float64 `json:"groundY"`
}

func NewArena(width, height float64) Arena {
	return Arena{
		Width:   width,
		Height:  height,
		GroundY: height - math.Max(100, height*0.15),
	}
}

// MaxDragDistance is how far the ball may be pulled back from the anchor: the height
// from the ground to the top of the arena, less one ball radius.
func (a Arena) MaxDragDistance(radius float64) float64 {
	return math.Max(a.GroundY-radius, 1)
}

// MaxSpeed is the launch speed at full pull.
func (a Arena) MaxSpeed() float64 {
	return math.Max(a.Width, a.Height)*0.04 + 4
}

// ClampDrag keeps drag within maxDist of anchor.
func ClampDrag(anchor, drag Vec2, maxDist float64) Vec2 {
	d := drag.Sub(anchor)
	dist := d.Len()
	if dist <= maxDist || dist == 0 {
		return drag
	}
	return anchor.Add(d.Scale(maxDist / dist))
}

// Launch is a planned launch: the point the ball leaves from and its initial velocity.
type Launch struct {
	From     Vec2    `json:"from"`
	Velocity Vec2    `json:"velocity"`
	Strength float64 `json:"strength"`
	Speed    float64 `json:"speed"`
}

// PlanLaunch turns a drag away from anchor into a launch toward it. ok is false when the
// pull is shorter than p.MinPull.
func PlanLaunch(anchor, drag Vec2, arena Arena, radius float64, p Params) (Launch, bool) {
	maxDrag := arena.MaxDragDistance(radius)
	from := ClampDrag(anchor, drag, maxDrag)

	pull := anchor.Sub(from)
	distance := pull.Len()
	if distance < p.MinPull || distance == 0 {
		return Launch{}, false
	}

	strength := Clamp(distance/maxDrag, 0, 1)
	speed := strength * arena.MaxSpeed()
	return Launch{
		From:     from,
		Velocity: pull.Scale(speed / distance),
		Strength: strength,
		Speed:    speed,
	}, true
}
