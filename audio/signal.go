package audio

import "math"

// Signal is a stateful stream of frames. Signals are pulled exclusively from
// the render goroutine once they are played; Sample must not block or
// allocate.
type Signal[F any] interface {
	// Sample fills out with consecutive frames at the given sample rate and
	// returns how many it produced. Returning fewer than len(out) means the
	// signal is exhausted; frames past the returned count are unspecified.
	Sample(rate float64, out []F) int
	// Remaining reports the time left in seconds. Infinite signals report
	// +Inf and exhausted ones a value <= 0.
	Remaining() float64
}

// Filter is implemented by signals that wrap another signal. Inner returns
// the wrapped signal, which may have a different frame type.
type Filter interface {
	Inner() any
}

// Controlled is implemented by signals that expose a control surface. The
// returned value must route every mutation through h so that it stops having
// an effect once h is no longer live.
type Controlled interface {
	Control(h Handle) any
}

var inf = math.Inf(1)

const twoPi = 2 * math.Pi

// Sine is an infinite sine oscillator.
type Sine struct {
	freq  float64
	amp   float32
	phase float64
}

// NewSine returns an oscillator at freq Hz with peak amplitude amp.
func NewSine(freq float64, amp float32) *Sine {
	return &Sine{freq: freq, amp: amp}
}

func (s *Sine) Sample(rate float64, out []Mono) int {
	delta := twoPi * s.freq / rate
	for n := range out {
		out[n] = Mono(s.amp * float32(math.Sin(s.phase)))
		s.phase += delta
		if s.phase >= twoPi {
			s.phase -= twoPi
		}
	}
	return len(out)
}

func (s *Sine) Remaining() float64 { return inf }
