package game

import (
	"math"
	"math/rand"

	"github.com/vladimirvolkov/bucketshot/internal/physics"
)

func randomRange(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// RandomTarget places a new bucket in the right half of the arena, clear of the ground.
// scale enlarges the bucket for assisted play and pulls its right-most position toward
// the launch side; values <= 1 give the standard bucket.
func RandomTarget(rng *rand.Rand, a physics.Arena, scale float64) physics.Target {
	if scale < 1 {
		scale = 1
	}

	minWidth := math.Max(70, a.Width*0.08)
	maxWidth := math.Max(minWidth+40, a.Width*0.2)
	width := randomRange(rng, minWidth, maxWidth) * scale
	depth := randomRange(rng, math.Max(70, a.Height*0.14), math.Max(110, a.Height*0.22))
	depth = math.Min(depth*scale, math.Max(70, a.GroundY*0.5))
	wall := physics.Clamp(width/scale*randomRange(rng, 0.12, 0.2), 10, 26)

	maxX := a.Width - width - 40
	maxX -= (scale - 1) * a.Width * 0.1
	x := randomRange(rng, a.Width*0.45, math.Max(a.Width*0.5, maxX))

	topMin := math.Max(40, a.Height*0.1)
	topLimit := math.Min(a.GroundY-depth-40, a.Height*0.65)
	y := randomRange(rng, topMin, math.Max(topMin+20, topLimit))

	return physics.Target{X: x, Y: y, Width: width, Depth: depth, Wall: wall}
}

// BallRadius sizes the ball to the arena width.
func BallRadius(width float64) float64 {
	return physics.Clamp(width*0.018, 14, 22)
}

// LaunchOrigin is where a fresh ball rests: left side, sitting half sunk into the ground.
func LaunchOrigin(a physics.Arena, radius float64) physics.Vec2 {
	return physics.V(a.Width*0.18, a.GroundY-radius*0.5)
}
