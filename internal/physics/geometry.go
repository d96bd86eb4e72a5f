package physics

import "math"

const (
	// segmentEpsilon is the squared length below which a segment is treated as a point.
	segmentEpsilon = 1e-12
	// minSeparation keeps the contact normal finite when the ball center sits on a wall.
	minSeparation = 0.0001
)

// Segment is a capsule collider: a line from (X1,Y1) to (X2,Y2) swept by half its Thickness.
type Segment struct {
	X1        float64 `json:"x1"`
	Y1        float64 `json:"y1"`
	X2        float64 `json:"x2"`
	Y2        float64 `json:"y2"`
	Thickness float64 `json:"thickness"`
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClosestPointOnSegment projects p onto seg and returns the projection together with
// its parameter t in [0,1]. A zero-length segment yields its start point and t = 0.
func ClosestPointOnSegment(p Vec2, seg Segment) (Vec2, float64) {
	dx := seg.X2 - seg.X1
	dy := seg.Y2 - seg.Y1
	lenSq := dx*dx + dy*dy
	if lenSq < segmentEpsilon {
		lenSq = 1
	}
	t := Clamp(((p.X-seg.X1)*dx+(p.Y-seg.Y1)*dy)/lenSq, 0, 1)
	return Vec2{X: seg.X1 + dx*t, Y: seg.Y1 + dy*t}, t
}

// Reflect removes (1+restitution) times the component of v along the unit normal n.
// Velocities already leaving the surface are returned unchanged.
func Reflect(v, n Vec2, restitution float64) Vec2 {
	dot := v.Dot(n)
	if dot >= 0 {
		return v
	}
	return v.Sub(n.Scale((1 + restitution) * dot))
}

// separation returns the unit normal pointing from a to b and the distance between them.
func separation(a, b Vec2) (Vec2, float64) {
	d := b.Sub(a)
	dist := math.Hypot(d.X, d.Y)
	if dist < minSeparation {
		dist = minSeparation
	}
	return d.Scale(1 / dist), dist
}
