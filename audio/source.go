package audio

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// frames of the inner signal pulled ahead of the emission time, so that
	// interpolation at zero distance never reads past what was written
	lookahead = 4
	// fixed point iterations solving for the retarded emission time
	emissionIterations = 3
)

type motion struct {
	pos, vel mgl32.Vec3
	radius   float32
	gain     float32
	jump     uint32
}

// source renders a mono signal as heard by the listener. The inner signal is
// pulled at emission time into a delay line; each ear reads it back at the
// time the sound it hears now was emitted, which yields propagation delay and
// doppler shift from the same curve.
type source struct {
	inner  Signal[Mono]
	cfg    *SpatialConfig
	pose   *Pose
	motion *Cell[motion]

	ring      []Mono
	mask      int64
	written   int64
	exhausted bool

	rate    float64
	clock   int64   // frames rendered
	pubTime float64 // clock when the current motion was adopted
	jump    uint32
	started bool
	tau     [2]float64 // emission time heard by each ear at clock
	gains   [2]float32
}

func newSource(sig Signal[Mono], opts SpatialOptions, cfg *SpatialConfig, pose *Pose) *source {
	if opts.Radius == 0 {
		opts.Radius = 1
	}
	frames := int(math.Ceil(float64(cfg.MaxDistance/cfg.SpeedOfSound)*float64(cfg.SampleRate))) +
		cfg.BlockSize + 2*lookahead
	size := 1
	for size < frames {
		size <<= 1
	}
	return &source{
		inner: sig,
		cfg:   cfg,
		pose:  pose,
		motion: NewCell(motion{
			pos:    opts.Position,
			vel:    opts.Velocity,
			radius: opts.Radius,
			gain:   DB(opts.Gain),
		}),
		ring: make([]Mono, size),
		mask: int64(size - 1),
	}
}

func (s *source) Sample(rate float64, out []Stereo) int {
	if rate <= 0 {
		fill(out, Stereo{})
		return len(out)
	}
	s.rate = rate
	done := 0
	for done < len(out) {
		n := min(len(out)-done, s.cfg.BlockSize)
		got := s.render(rate, out[done:done+n])
		done += got
		if got < n {
			break
		}
	}
	return done
}

func (s *source) render(rate float64, out []Stereo) int {
	n := float64(len(out))
	t0 := float64(s.clock)
	t1 := t0 + n
	if s.motion.Update() {
		s.pubTime = t0
		if m := s.motion.Get(); m.jump != s.jump {
			s.jump = m.jump
			s.started = false
		}
	}
	maxDelay := s.maxDelay(rate)
	ears := s.ears()
	if !s.started {
		for k, ear := range ears {
			s.tau[k] = s.emission(t0, ear, rate, maxDelay)
		}
		s.gains = s.gain(s.tau, rate)
		s.started = true
	}
	s.fill(rate, s.clock+int64(len(out))+lookahead)

	var tau1, slope [2]float64
	for k, ear := range ears {
		t := s.emission(t1, ear, rate, maxDelay)
		rs := (t - s.tau[k]) / n
		rs = min(max(rs, s.cfg.MinRate), s.cfg.MaxRate)
		t = s.tau[k] + rs*n
		// the delay line only reaches back maxDelay frames and nothing
		// can be heard before it is emitted
		t = min(max(t, t1-maxDelay), t1)
		tau1[k] = t
		slope[k] = (t - s.tau[k]) / n
	}
	g0, g1 := s.gains, s.gain(tau1, rate)

	end := float64(s.written)
	for i := range out {
		x := float64(i)
		el := s.tau[0] + slope[0]*x
		er := s.tau[1] + slope[1]*x
		if s.exhausted && el >= end && er >= end {
			s.advance(i, slope)
			return i
		}
		f := float32(x / n)
		out[i] = Stereo{
			s.read(el) * (g0[0] + f*(g1[0]-g0[0])),
			s.read(er) * (g0[1] + f*(g1[1]-g0[1])),
		}
	}
	s.tau = tau1
	s.gains = g1
	s.clock += int64(len(out))
	return len(out)
}

func (s *source) advance(frames int, slope [2]float64) {
	for k := range s.tau {
		s.tau[k] += slope[k] * float64(frames)
	}
	s.clock += int64(frames)
}

// fill pulls the inner signal into the delay line up to frame upto.
func (s *source) fill(rate float64, upto int64) {
	for !s.exhausted && s.written < upto {
		start := s.written & s.mask
		n := min(upto-s.written, int64(len(s.ring))-start)
		got := s.inner.Sample(rate, s.ring[start:start+n])
		s.written += int64(got)
		if int64(got) < n {
			s.exhausted = true
		}
	}
}

func (s *source) at(i int64) float32 {
	if i < 0 || i >= s.written || i < s.written-int64(len(s.ring)) {
		return 0
	}
	return float32(s.ring[i&s.mask])
}

func (s *source) read(e float64) float32 {
	x0 := math.Floor(e)
	i := int64(x0)
	x := float32(e - x0)
	if s.cfg.Interpolation == Cubic {
		return cubicInterpolate(s.at(i-1), s.at(i), s.at(i+1), s.at(i+2), x)
	}
	a := s.at(i)
	return a + x*(s.at(i+1)-a)
}

func (s *source) maxDelay(rate float64) float64 {
	d := float64(s.cfg.MaxDistance/s.cfg.SpeedOfSound) * rate
	return min(d, float64(len(s.ring)-s.cfg.BlockSize-2*lookahead))
}

// position extrapolates the source position at time t in frames.
func (s *source) position(t, rate float64) mgl32.Vec3 {
	m := s.motion.Get()
	return m.pos.Add(m.vel.Mul(float32((t - s.pubTime) / rate)))
}

func (s *source) ears() [2]mgl32.Vec3 {
	p := s.pose
	if s.cfg.EarSeparation == 0 {
		return [2]mgl32.Vec3{p.Position, p.Position}
	}
	right := p.Rotation.Rotate(mgl32.Vec3{s.cfg.EarSeparation / 2, 0, 0})
	return [2]mgl32.Vec3{p.Position.Sub(right), p.Position.Add(right)}
}

// emission solves e = t - |p(e) - ear| / c for the time e, in frames, at
// which the sound reaching ear at time t left the source.
func (s *source) emission(t float64, ear mgl32.Vec3, rate, maxDelay float64) float64 {
	perMeter := rate / float64(s.cfg.SpeedOfSound)
	e := t
	for range emissionIterations {
		d := float64(s.position(e, rate).Sub(ear).Len())
		e = t - min(d*perMeter, maxDelay)
	}
	return e
}

// gain returns the per-ear gains for sound emitted at times tau.
func (s *source) gain(tau [2]float64, rate float64) [2]float32 {
	m := s.motion.Get()
	rel := s.position((tau[0]+tau[1])/2, rate).Sub(s.pose.Position)
	amp := s.cfg.Attenuation.Gain(rel.Len(), m.radius) * m.gain

	var pan float64
	local := s.pose.Rotation.Conjugate().Rotate(rel)
	if l := local.Len(); l > 1e-6 {
		pan = float64(min(max(local.X()/l, -1), 1))
	}
	// equal power
	a := (pan + 1) * math.Pi / 4
	return [2]float32{amp * float32(math.Cos(a)), amp * float32(math.Sin(a))}
}

func (s *source) Remaining() float64 {
	if s.rate == 0 {
		return s.inner.Remaining()
	}
	heard := min(s.tau[0], s.tau[1])
	if s.exhausted {
		return max(float64(s.written)-heard, 0) / s.rate
	}
	return s.inner.Remaining() + (float64(s.clock)-heard)/s.rate
}

func (s *source) Inner() any { return s.inner }

func (s *source) Control(h Handle) any {
	return &MotionControl{h: h, motion: s.motion}
}

// MotionControl moves a spatial source.
type MotionControl struct {
	h      Handle
	motion *Cell[motion]
}

// SetMotion updates position and velocity. The source is assumed to have
// traveled there continuously, so the change is heard as doppler shift.
func (c *MotionControl) SetMotion(pos, vel mgl32.Vec3) error {
	return c.update(func(m *motion) {
		m.pos = pos
		m.vel = vel
	})
}

// Jump moves the source without doppler, as if it was removed and placed
// again.
func (c *MotionControl) Jump(pos, vel mgl32.Vec3) error {
	return c.update(func(m *motion) {
		m.pos = pos
		m.vel = vel
		m.jump++
	})
}

// SetGain sets the source gain in decibels.
func (c *MotionControl) SetGain(db float32) error {
	if db < -120 || db > 24 {
		return fmt.Errorf("gain is not in valid range -120 - 24: %v", db)
	}
	return c.update(func(m *motion) { m.gain = DB(db) })
}

// SetRadius sets the distance within which the source is not attenuated.
func (c *MotionControl) SetRadius(r float32) error {
	if r <= 0 {
		return fmt.Errorf("radius is not positive: %v", r)
	}
	return c.update(func(m *motion) { m.radius = r })
}

// Position returns the most recently set position and velocity.
func (c *MotionControl) Position() (pos, vel mgl32.Vec3, err error) {
	err = c.h.do(func() {
		m := c.motion.Pending()
		pos, vel = m.pos, m.vel
	})
	return pos, vel, err
}

func (c *MotionControl) update(f func(m *motion)) error {
	return c.h.do(func() {
		f(c.motion.Pending())
		c.motion.Publish()
	})
}
