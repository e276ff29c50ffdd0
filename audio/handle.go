package audio

import (
	"fmt"
	"reflect"
)

type controller interface {
	with(index int, gen uint32, f func(root any)) error
}

type stateful interface {
	setState(v uint32)
	Paused() bool
	Stopped() bool
}

// Handle refers to a played signal. It stays valid until the signal finishes
// and its slot is reclaimed; after that every operation returns
// ErrStaleHandle, even once the slot has been reused. The zero Handle is never
// live.
type Handle struct {
	c     controller
	index int
	gen   uint32
}

func (h Handle) String() string {
	return fmt.Sprintf("%d.%d", h.index, h.gen)
}

// ID returns the slot index the handle refers to. IDs are reused once the
// signal is reclaimed.
func (h Handle) ID() int { return h.index }

// Live reports whether the signal has not yet been reclaimed.
func (h Handle) Live() bool {
	return h.do(func() {}) == nil
}

// Stop ends the signal at the next render pass. Stopping is final.
func (h Handle) Stop() error { return h.setState(stateStop) }

// Pause silences the signal without advancing it.
func (h Handle) Pause() error { return h.setState(statePause) }

// Resume continues a paused signal.
func (h Handle) Resume() error { return h.setState(statePlay) }

// Paused reports whether the signal is paused.
func (h Handle) Paused() (bool, error) {
	var paused bool
	err := h.root(func(root any) { paused = root.(stateful).Paused() })
	return paused, err
}

func (h Handle) setState(v uint32) error {
	return h.root(func(root any) { root.(stateful).setState(v) })
}

// do runs f while h is live, serialized with every other control operation
// on the same scene.
func (h Handle) do(f func()) error {
	return h.root(func(any) { f() })
}

func (h Handle) root(f func(root any)) error {
	if h.c == nil {
		return ErrStaleHandle
	}
	return h.c.with(h.index, h.gen, f)
}

// Control finds the first signal in h's wrapper chain, starting from the
// signal passed to Play, that exposes a control of type C.
func Control[C any](h Handle) (C, error) {
	var (
		ctl   C
		found bool
	)
	err := h.root(func(root any) {
		// skip the Stop wrapper every played signal is placed in
		sig := root.(Filter).Inner()
		for sig != nil && !found {
			if c, ok := sig.(Controlled); ok {
				ctl, found = c.Control(h).(C)
			}
			f, ok := sig.(Filter)
			if !ok {
				break
			}
			sig = f.Inner()
		}
	})
	if err != nil {
		return ctl, err
	}
	if !found {
		return ctl, fmt.Errorf("%w: %v", ErrTypeMismatch, reflect.TypeFor[C]())
	}
	return ctl, nil
}
