package physics

// previewStep is the fixed step size of the trajectory preview, one frame.
const previewStep = 1.0

// Predict flies a copy of b through w for w.Params.PreviewSteps frames and returns every
// PreviewStride-th position plus the point where the flight stopped. The goal check is
// skipped and impacts go nowhere, so Predict has no effect outside its return value.
func Predict(b Body, w World) []Vec2 {
	p := w.Params
	stride := p.PreviewStride
	if stride < 1 {
		stride = 1
	}

	points := make([]Vec2, 0, p.PreviewSteps/stride+1)
	age := 0.0
	for i := 0; i < p.PreviewSteps; i++ {
		res := step(&b, &w, previewStep, NullSink{}, stepOptions{age: age})
		age += previewStep
		if res != stepRunning {
			points = append(points, b.Pos)
			break
		}
		if i%stride == 0 {
			points = append(points, b.Pos)
		}
	}
	return points
}
