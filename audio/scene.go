package audio

import (
	"sync"
)

const (
	DefaultCapacity  = 64
	DefaultBlockSize = 512
)

// SceneConfig sizes a scene. All memory the render side needs is allocated
// up front from it.
type SceneConfig struct {
	// Capacity is the maximum number of signals that can be playing or
	// waiting to be reclaimed at once.
	Capacity int
	// BlockSize is the largest number of frames mixed in one pass. Longer
	// render calls are split into blocks.
	BlockSize int
}

func (c SceneConfig) withDefaults() SceneConfig {
	if c.Capacity <= 0 {
		c.Capacity = DefaultCapacity
	}
	if c.BlockSize <= 0 {
		c.BlockSize = DefaultBlockSize
	}
	return c
}

type slotState uint8

const (
	slotEmpty slotState = iota
	slotPending
	slotActive
	slotFinished
)

type insert[F Frame[F]] struct {
	index int
	gen   uint32
	sig   *Stop[F]
}

type reclaim struct {
	index int
	gen   uint32
}

// Scene is the control half of a mix graph. It hands signals to the render
// side and recycles their slots once they finish. A Scene is safe for use by
// multiple goroutines; the render side never touches its lock.
type Scene[F Frame[F]] struct {
	mu       sync.Mutex
	inserts  *queue[insert[F]]
	reclaims *queue[reclaim]
	free     []int
	entries  []entry[F]

	played    uint64
	reclaimed uint64
}

type entry[F Frame[F]] struct {
	gen   uint32
	state slotState // slotEmpty or slotPending; the render side tracks the rest
	sig   *Stop[F]
}

// Mixer is the render half of a mix graph. It must only be used from one
// goroutine at a time, normally the audio callback.
type Mixer[F Frame[F]] struct {
	inserts  *queue[insert[F]]
	reclaims *queue[reclaim]
	slots    []mixSlot[F]
	active   []int
	scratch  []F
}

type mixSlot[F Frame[F]] struct {
	sig   *Stop[F]
	gen   uint32
	state slotState
}

// NewScene returns the two halves of a new mix graph.
func NewScene[F Frame[F]](cfg SceneConfig) (*Scene[F], *Mixer[F]) {
	cfg = cfg.withDefaults()
	inserts := newQueue[insert[F]](cfg.Capacity)
	// every slot has at most one reclaim in flight, so this never fills up
	reclaims := newQueue[reclaim](cfg.Capacity)

	s := &Scene[F]{
		inserts:  inserts,
		reclaims: reclaims,
		free:     make([]int, 0, cfg.Capacity),
		entries:  make([]entry[F], cfg.Capacity),
	}
	for i := cfg.Capacity - 1; i >= 0; i-- {
		s.free = append(s.free, i)
	}
	m := &Mixer[F]{
		inserts:  inserts,
		reclaims: reclaims,
		slots:    make([]mixSlot[F], cfg.Capacity),
		active:   make([]int, 0, cfg.Capacity),
		scratch:  make([]F, cfg.BlockSize),
	}
	return s, m
}

// Play queues sig for playback and returns a handle to control it. The
// signal is owned by the render side from now on and must not be used
// directly by the caller.
func (s *Scene[F]) Play(sig Signal[F]) (Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.collect()
	if len(s.free) == 0 {
		return Handle{}, ErrCapacityExceeded
	}
	i := s.free[len(s.free)-1]
	e := &s.entries[i]
	stop := NewStop(sig)
	if !s.inserts.push(insert[F]{index: i, gen: e.gen, sig: stop}) {
		return Handle{}, ErrCapacityExceeded
	}
	s.free = s.free[:len(s.free)-1]
	e.state = slotPending
	e.sig = stop
	s.played++
	return Handle{c: s, index: i, gen: e.gen}, nil
}

// Collect returns the slots of finished signals to the free list and reports
// how many were reclaimed. Play does this implicitly.
func (s *Scene[F]) Collect() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collect()
}

func (s *Scene[F]) collect() int {
	n := 0
	s.reclaims.drain(func(r reclaim) {
		e := &s.entries[r.index]
		if e.gen != r.gen || e.state == slotEmpty {
			return
		}
		e.gen++
		e.state = slotEmpty
		e.sig = nil
		s.free = append(s.free, r.index)
		s.reclaimed++
		n++
	})
	return n
}

// Stats describes the occupancy of a scene from the control side.
type Stats struct {
	// Live counts signals that have been played and not yet reclaimed.
	Live int
	// Played and Reclaimed count signals over the lifetime of the scene.
	Played    uint64
	Reclaimed uint64
}

// Stats returns occupancy counters as of the last reclaim.
func (s *Scene[F]) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Live:      len(s.entries) - len(s.free),
		Played:    s.played,
		Reclaimed: s.reclaimed,
	}
}

// Handles returns a handle for every live signal, in slot order.
func (s *Scene[F]) Handles() []Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	var hs []Handle
	for i, e := range s.entries {
		if e.state != slotEmpty {
			hs = append(hs, Handle{c: s, index: i, gen: e.gen})
		}
	}
	return hs
}

func (s *Scene[F]) with(index int, gen uint32, f func(root any)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.entries) {
		return ErrStaleHandle
	}
	e := &s.entries[index]
	if e.gen != gen || e.state == slotEmpty {
		return ErrStaleHandle
	}
	f(e.sig)
	return nil
}

// Render mixes every active signal into out at rate Hz. It is the entry
// point for the audio callback: it never blocks or allocates.
func (m *Mixer[F]) Render(out []F, rate int) {
	m.Sample(float64(rate), out)
}

// Sample implements Signal so that a mixer can be played into another scene
// as a submix.
func (m *Mixer[F]) Sample(rate float64, out []F) int {
	m.activate()
	var zero F
	fill(out, zero)
	if rate <= 0 {
		return len(out)
	}
	for start := 0; start < len(out); start += len(m.scratch) {
		end := min(start+len(m.scratch), len(out))
		m.mix(rate, out[start:end])
	}
	return len(out)
}

// Remaining reports +Inf; a mixer never runs out.
func (m *Mixer[F]) Remaining() float64 { return inf }

func (m *Mixer[F]) activate() {
	for {
		ins, ok := m.inserts.pop()
		if !ok {
			return
		}
		m.slots[ins.index] = mixSlot[F]{sig: ins.sig, gen: ins.gen, state: slotActive}
		m.active = append(m.active, ins.index)
	}
}

func (m *Mixer[F]) mix(rate float64, out []F) {
	buf := m.scratch[:len(out)]
	for k := 0; k < len(m.active); {
		i := m.active[k]
		slot := &m.slots[i]
		n := slot.sig.Sample(rate, buf)
		mix(out, buf[:n])
		if n < len(out) {
			m.finish(i)
			last := len(m.active) - 1
			m.active[k] = m.active[last]
			m.active = m.active[:last]
			continue
		}
		k++
	}
}

func (m *Mixer[F]) finish(i int) {
	slot := &m.slots[i]
	slot.state = slotFinished
	slot.sig = nil
	m.reclaims.push(reclaim{index: i, gen: slot.gen})
}

// Active returns the number of signals the mixer is currently pulling.
func (m *Mixer[F]) Active() int { return len(m.active) }
