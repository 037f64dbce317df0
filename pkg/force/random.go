package force

// lcg returns a uniform source in [0, 1) with a fixed seed, so the
// same input graph lays out identically on every run.
func lcg() func() float64 {
	var s uint32 = 1
	return func() float64 {
		s = s*1664525 + 1013904223
		return float64(s) / (1 << 32)
	}
}

// jiggle breaks exact coordinate ties with a tiny offset. Without it,
// coincident nodes or zero-length springs have no defined force
// direction.
func jiggle(random func() float64) float64 {
	return (random() - 0.5) * 1e-6
}
