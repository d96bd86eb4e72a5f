package physics

// Assist holds the forgiveness settings. The zero value disables every assist.
type Assist struct {
	// Forgiveness widens the scoring band on every side, in arena units.
	Forgiveness float64 `json:"forgiveness" toml:"forgiveness"`
	// LowerBucket also scores any descending pass through the lower half of the bucket.
	LowerBucket bool `json:"lowerBucket" toml:"lower_bucket"`
	// TargetScale multiplies generated bucket size; values <= 0 mean 1.
	TargetScale float64 `json:"targetScale" toml:"target_scale"`
}

// Band is the interior region of a target that counts as a basket.
type Band struct {
	Left, Right float64
	Top, Bottom float64
}

// ScoringBand insets t so that the ball must clear the walls and drop below the rim,
// then widens the result by margin.
func ScoringBand(t Target, radius, margin float64) Band {
	return Band{
		Left:   t.X + t.Wall*0.6 + radius*0.4 - margin,
		Right:  t.X + t.Width - t.Wall*0.6 - radius*0.4 + margin,
		Top:    t.Y + t.Wall + radius*0.3 - margin,
		Bottom: t.Y + t.Depth - t.Wall - radius*0.8 + margin,
	}
}

func (b Band) containsX(x float64) bool {
	return x > b.Left && x < b.Right
}

func (b Band) containsY(y float64) bool {
	return y > b.Top && y < b.Bottom
}

// InBand reports a descending ball whose center lies inside the scoring band.
func InBand(body Body, t Target, margin float64) bool {
	band := ScoringBand(t, body.Radius, margin)
	return body.Vel.Y > 0 && band.containsX(body.Pos.X) && band.containsY(body.Pos.Y)
}

// InLowerBucket reports a descending ball inside the horizontal band and within the
// lower half of the target.
func InLowerBucket(body Body, t Target, margin float64) bool {
	band := ScoringBand(t, body.Radius, margin)
	mid := t.Y + t.Depth*0.5
	return body.Vel.Y > 0 && band.containsX(body.Pos.X) &&
		body.Pos.Y > mid && body.Pos.Y < t.Y+t.Depth
}

// Scored applies the band rule and, when enabled, the lower-bucket rule.
func (a Assist) Scored(body Body, t Target) bool {
	if InBand(body, t, a.Forgiveness) {
		return true
	}
	return a.LowerBucket && InLowerBucket(body, t, a.Forgiveness)
}
