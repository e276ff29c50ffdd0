package audio

import "fmt"

// Gain scales another signal by an amplitude that can be changed while it
// plays. Changes ramp linearly across the next block to avoid clicks.
type Gain[F Frame[F]] struct {
	inner Signal[F]
	amp   *Cell[float32]
	cur   float32
}

// NewGain wraps sig with an initial amplitude factor.
func NewGain[F Frame[F]](sig Signal[F], amp float32) *Gain[F] {
	return &Gain[F]{inner: sig, amp: NewCell(amp), cur: amp}
}

func (g *Gain[F]) Sample(rate float64, out []F) int {
	n := g.inner.Sample(rate, out)
	g.amp.Update()
	target := *g.amp.Get()
	if target == g.cur || n == 0 {
		for i := range out[:n] {
			out[i] = out[i].Scale(target)
		}
		g.cur = target
		return n
	}
	step := (target - g.cur) / float32(n)
	for i := range out[:n] {
		g.cur += step
		out[i] = out[i].Scale(g.cur)
	}
	g.cur = target
	return n
}

func (g *Gain[F]) Remaining() float64 { return g.inner.Remaining() }
func (g *Gain[F]) Inner() any         { return g.inner }

func (g *Gain[F]) Control(h Handle) any {
	return &GainControl{h: h, amp: g.amp}
}

// GainControl adjusts a playing Gain.
type GainControl struct {
	h   Handle
	amp *Cell[float32]
}

// SetAmplitude sets a linear amplitude factor.
func (c *GainControl) SetAmplitude(amp float32) error {
	if amp < 0 {
		return fmt.Errorf("amplitude is negative: %v", amp)
	}
	return c.h.do(func() { c.amp.Set(amp) })
}

// SetGain sets the gain in decibels.
func (c *GainControl) SetGain(db float32) error {
	if db < -120 || db > 24 {
		return fmt.Errorf("gain is not in valid range -120 - 24: %v", db)
	}
	return c.SetAmplitude(DB(db))
}

// Amplitude returns the most recently set amplitude factor.
func (c *GainControl) Amplitude() (float32, error) {
	var amp float32
	err := c.h.do(func() { amp = *c.amp.Pending() })
	return amp, err
}

// Speed plays another signal faster or slower by changing the rate it is
// pulled at, shifting its pitch along with its tempo.
type Speed[F Frame[F]] struct {
	inner Signal[F]
	speed *Cell[float64]
}

// NewSpeed wraps sig with an initial speed factor. 1 is the original speed.
func NewSpeed[F Frame[F]](sig Signal[F], speed float64) *Speed[F] {
	if speed <= 0 {
		speed = 1
	}
	return &Speed[F]{inner: sig, speed: NewCell(speed)}
}

func (s *Speed[F]) Sample(rate float64, out []F) int {
	s.speed.Update()
	return s.inner.Sample(rate / *s.speed.Get(), out)
}

func (s *Speed[F]) Remaining() float64 {
	return s.inner.Remaining() / *s.speed.Get()
}

func (s *Speed[F]) Inner() any { return s.inner }

func (s *Speed[F]) Control(h Handle) any {
	return &SpeedControl{h: h, speed: s.speed}
}

// SpeedControl adjusts a playing Speed.
type SpeedControl struct {
	h     Handle
	speed *Cell[float64]
}

// SetSpeed changes the playback speed factor, which must be positive.
func (c *SpeedControl) SetSpeed(speed float64) error {
	if speed <= 0 || speed > 16 {
		return fmt.Errorf("speed is not in valid range 0 - 16: %v", speed)
	}
	return c.h.do(func() { c.speed.Set(speed) })
}
