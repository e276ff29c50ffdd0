package audio

import "sync/atomic"

const (
	statePlay uint32 = iota
	statePause
	stateStop
)

// Stop wraps a signal so that it can be paused or permanently stopped from
// the control side. Scenes wrap every played signal in one.
type Stop[F Frame[F]] struct {
	state atomic.Uint32
	inner Signal[F]
}

// NewStop wraps sig.
func NewStop[F Frame[F]](sig Signal[F]) *Stop[F] {
	return &Stop[F]{inner: sig}
}

func (s *Stop[F]) Sample(rate float64, out []F) int {
	switch s.state.Load() {
	case statePause:
		var zero F
		fill(out, zero)
		return len(out)
	case stateStop:
		return 0
	}
	return s.inner.Sample(rate, out)
}

func (s *Stop[F]) Remaining() float64 {
	switch s.state.Load() {
	case statePause:
		return inf
	case stateStop:
		return 0
	}
	return s.inner.Remaining()
}

func (s *Stop[F]) Inner() any { return s.inner }

func (s *Stop[F]) setState(v uint32) {
	// stopped is final
	for {
		old := s.state.Load()
		if old == stateStop || s.state.CompareAndSwap(old, v) {
			return
		}
	}
}

func (s *Stop[F]) Paused() bool  { return s.state.Load() == statePause }
func (s *Stop[F]) Stopped() bool { return s.state.Load() == stateStop }
