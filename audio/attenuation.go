package audio

import "math"

// Attenuation maps the distance between a source and the listener to a gain
// factor. radius is the source's near radius, inside which there is no
// attenuation; it is always positive.
type Attenuation interface {
	Gain(distance, radius float32) float32
}

// InverseDistance halves the amplitude every time the distance doubles.
type InverseDistance struct{}

func (InverseDistance) Gain(d, radius float32) float32 {
	return radius / max(d, radius)
}

// LinearRolloff fades linearly from full gain at the near radius to silence
// at MaxDistance.
type LinearRolloff struct {
	MaxDistance float32
}

func (l LinearRolloff) Gain(d, radius float32) float32 {
	if d <= radius {
		return 1
	}
	if l.MaxDistance <= radius || d >= l.MaxDistance {
		return 0
	}
	return 1 - (d-radius)/(l.MaxDistance-radius)
}

// ExponentialRolloff attenuates by (distance/radius)^-Rolloff. A rolloff of 1
// equals InverseDistance.
type ExponentialRolloff struct {
	Rolloff float32
}

func (e ExponentialRolloff) Gain(d, radius float32) float32 {
	return float32(math.Pow(float64(max(d, radius)/radius), -float64(e.Rolloff)))
}

// Interpolation selects how delayed samples are read between frames.
type Interpolation int

const (
	// Linear interpolates between the two neighboring frames.
	Linear Interpolation = iota
	// Cubic fits a Catmull-Rom spline through four neighboring frames. It
	// costs more but has less high frequency loss under heavy doppler.
	Cubic
)

func (i Interpolation) String() string {
	switch i {
	case Linear:
		return "linear"
	case Cubic:
		return "cubic"
	}
	return "unknown"
}

// cubicInterpolate evaluates a Catmull-Rom spline through y0..y3 at x
// between y1 and y2.
func cubicInterpolate(y0, y1, y2, y3, x float32) float32 {
	a0 := -0.5*y0 + 1.5*y1 - 1.5*y2 + 0.5*y3
	a1 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	a2 := -0.5*y0 + 0.5*y2
	a3 := y1

	return a0*x*x*x + a1*x*x + a2*x + a3
}
