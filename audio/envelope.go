package audio

import (
	"fmt"
	"math"
	"sync/atomic"
)

type envelopeStage int

const (
	stageAttack envelopeStage = iota
	stageDecay
	stageSustain
	stageRelease
	stageDone
)

// ADSR describes an amplitude envelope. Times are in seconds and Sustain is
// a level between 0 and 1.
type ADSR struct {
	Attack  float64
	Decay   float64
	Sustain float64
	Release float64
}

func (a ADSR) validate() error {
	for _, t := range []float64{a.Attack, a.Decay, a.Release} {
		if t < 0 || t > 15 {
			return fmt.Errorf("envelope time is not in valid range 0 - 15: %v", t)
		}
	}
	if a.Sustain < 0 || a.Sustain > 1 {
		return fmt.Errorf("sustain level is not in valid range 0 - 1: %v", a.Sustain)
	}
	return nil
}

// Envelope shapes another signal with an ADSR envelope. The release stage
// starts after hold seconds, or earlier when released through its control,
// and the signal is exhausted once the release completes.
type Envelope[F Frame[F]] struct {
	inner Signal[F]
	adsr  ADSR
	hold  float64
	gate  atomic.Bool

	stage       envelopeStage
	val         float64
	elapsed     float64
	releaseRate float64
	rate        float64
}

// NewEnvelope wraps sig. A negative hold sustains until released.
func NewEnvelope[F Frame[F]](sig Signal[F], adsr ADSR, hold float64) (*Envelope[F], error) {
	if err := adsr.validate(); err != nil {
		return nil, err
	}
	if hold < 0 {
		hold = inf
	}
	return &Envelope[F]{inner: sig, adsr: adsr, hold: hold}, nil
}

func (e *Envelope[F]) Sample(rate float64, out []F) int {
	if e.stage == stageDone {
		return 0
	}
	released := e.gate.Load()
	e.rate = rate
	n := e.inner.Sample(rate, out)
	dt := 1 / rate
	for i := range out[:n] {
		if e.stage < stageRelease && (released || e.elapsed >= e.hold) {
			e.startRelease(rate)
		}
		v := e.value(rate)
		out[i] = out[i].Scale(float32(v))
		e.elapsed += dt
		if e.stage == stageDone {
			return i + 1
		}
	}
	return n
}

func (e *Envelope[F]) value(rate float64) float64 {
	switch e.stage {
	case stageAttack:
		if e.adsr.Attack == 0 {
			e.val = 1
		} else {
			e.val += 1 / (e.adsr.Attack * rate)
		}
		if e.val >= 1 {
			e.val = 1
			e.stage = stageDecay
		}
	case stageDecay:
		if e.adsr.Decay == 0 {
			e.val = e.adsr.Sustain
		} else {
			e.val -= (1 - e.adsr.Sustain) / (e.adsr.Decay * rate)
		}
		if e.val <= e.adsr.Sustain {
			e.val = e.adsr.Sustain
			e.stage = stageSustain
			// nothing left to hold or release
			if e.adsr.Sustain == 0 {
				e.stage = stageDone
			}
		}
	case stageSustain:
		e.val = e.adsr.Sustain
	case stageRelease:
		e.val -= e.releaseRate
		if e.val <= 0 {
			e.val = 0
			e.stage = stageDone
		}
	}
	return e.val
}

func (e *Envelope[F]) startRelease(rate float64) {
	e.stage = stageRelease
	if e.adsr.Release == 0 {
		e.releaseRate = math.Inf(1)
		return
	}
	e.releaseRate = e.val / (e.adsr.Release * rate)
}

func (e *Envelope[F]) Remaining() float64 {
	switch e.stage {
	case stageDone:
		return 0
	case stageRelease:
		if e.adsr.Release == 0 || e.releaseRate == 0 || e.rate == 0 {
			return 0
		}
		return min(e.val/e.releaseRate/e.rate, e.inner.Remaining())
	}
	left := e.hold - e.elapsed + e.adsr.Release
	if e.adsr.Sustain == 0 {
		left = min(left, e.adsr.Attack+e.adsr.Decay-e.elapsed)
	}
	return min(left, e.inner.Remaining())
}

func (e *Envelope[F]) Inner() any { return e.inner }

func (e *Envelope[F]) Control(h Handle) any {
	return &EnvelopeControl{h: h, gate: &e.gate}
}

// EnvelopeControl releases a playing Envelope.
type EnvelopeControl struct {
	h    Handle
	gate *atomic.Bool
}

// Release starts the release stage at the next render pass.
func (c *EnvelopeControl) Release() error {
	return c.h.do(func() { c.gate.Store(true) })
}
