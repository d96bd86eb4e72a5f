package physics

// bottomWallRatio makes the floor of the bucket thinner than its sides.
const bottomWallRatio = 0.65

// Target is the bucket: an open-topped rectangle with walls of the given thickness.
type Target struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Width float64 `json:"width"`
	Depth float64 `json:"depth"`
	Wall  float64 `json:"wall"`
}

// Walls are the three capsule colliders of a Target.
type Walls struct {
	Left   Segment `json:"left"`
	Right  Segment `json:"right"`
	Bottom Segment `json:"bottom"`
}

// DeriveWalls builds the colliders for t. It is recomputed every sub-step so a target
// regenerated between frames never leaves stale colliders behind.
func DeriveWalls(t Target) Walls {
	bottom := t.Y + t.Depth
	return Walls{
		Left: Segment{
			X1: t.X, Y1: t.Y,
			X2: t.X, Y2: bottom,
			Thickness: t.Wall,
		},
		Right: Segment{
			X1: t.X + t.Width, Y1: t.Y,
			X2: t.X + t.Width, Y2: bottom,
			Thickness: t.Wall,
		},
		Bottom: Segment{
			X1: t.X, Y1: bottom,
			X2: t.X + t.Width, Y2: bottom,
			Thickness: t.Wall * bottomWallRatio,
		},
	}
}

// Each returns the walls in resolution order.
func (w Walls) Each() [3]Segment {
	return [3]Segment{w.Left, w.Right, w.Bottom}
}

// ResolveBallVsWall pushes b out of seg and bounces it when it is moving into the wall.
// impact is the inward speed before the bounce, zero when the ball only overlapped.
func ResolveBallVsWall(b *Body, seg Segment, p Params) (collided bool, impact float64) {
	closest, _ := ClosestPointOnSegment(b.Pos, seg)
	n, dist := separation(closest, b.Pos)

	minDist := b.Radius + seg.Thickness*0.5
	if dist >= minDist {
		return false, 0
	}

	b.Pos = b.Pos.Add(n.Scale(minDist - dist))

	dot := b.Vel.Dot(n)
	if dot < 0 {
		b.Vel = Reflect(b.Vel, n, p.WallRestitution).Scale(p.WallDamping)
		impact = -dot
	}
	return true, impact
}
