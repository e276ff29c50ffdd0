package audio

import (
	"fmt"
	"math"
)

// Lowpass is a resonant second order lowpass filter with an adjustable
// cutoff frequency.
type Lowpass[F Frame[F]] struct {
	inner  Signal[F]
	cutoff *Cell[float64]

	// coefficients for the current cutoff and rate
	c0, c1, c2, c3, c4 float32
	freq, rate         float64

	// state
	y1, y2 F // y[n-1] y[n-2]
}

// NewLowpass wraps sig with a filter at cutoff Hz.
func NewLowpass[F Frame[F]](sig Signal[F], cutoff float64) *Lowpass[F] {
	return &Lowpass[F]{inner: sig, cutoff: NewCell(cutoff)}
}

// Based on https://www.w3.org/2011/audio/audio-eq-cookbook.html
func (f *Lowpass[F]) Sample(rate float64, out []F) int {
	n := f.inner.Sample(rate, out)
	f.cutoff.Update()
	if freq := *f.cutoff.Get(); freq != f.freq || rate != f.rate {
		f.calculateCoefficients(freq, rate)
	}
	for i := range out[:n] {
		in := out[i]
		y := in.Scale(f.c0).Add(f.y1)
		out[i] = y
		f.y1 = in.Scale(f.c1).Add(y.Scale(-f.c3)).Add(f.y2)
		f.y2 = in.Scale(f.c2).Add(y.Scale(-f.c4))
	}
	return n
}

func (f *Lowpass[F]) calculateCoefficients(freq, rate float64) {
	f.freq, f.rate = freq, rate
	// keep the cutoff below nyquist
	freq = min(freq, rate*0.49)
	omega := 2 * math.Pi * freq / rate
	cos := math.Cos(omega)
	sin := math.Sin(omega)

	const q = 1
	alpha := sin / (2. * q)

	b0 := (1 - cos) / 2
	b1 := 1 - cos
	b2 := b0
	a0 := 1 + alpha
	a1 := -2 * cos
	a2 := 1 - alpha

	f.c0 = float32(b0 / a0)
	f.c1 = float32(b1 / a0)
	f.c2 = float32(b2 / a0)
	f.c3 = float32(a1 / a0)
	f.c4 = float32(a2 / a0)
}

func (f *Lowpass[F]) Remaining() float64 { return f.inner.Remaining() }
func (f *Lowpass[F]) Inner() any         { return f.inner }

func (f *Lowpass[F]) Control(h Handle) any {
	return &LowpassControl{h: h, cutoff: f.cutoff}
}

// LowpassControl adjusts a playing Lowpass.
type LowpassControl struct {
	h      Handle
	cutoff *Cell[float64]
}

// SetCutoff moves the cutoff frequency.
func (c *LowpassControl) SetCutoff(freq float64) error {
	if freq < 10 || freq > 20_000 {
		return fmt.Errorf("cutoff is not in valid range 10 - 20000: %v", freq)
	}
	return c.h.do(func() { c.cutoff.Set(freq) })
}
