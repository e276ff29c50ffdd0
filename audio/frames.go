package audio

import "math"

// Frames is an immutable block of frames at a native sample rate, typically
// decoded from a file. It can be shared by any number of signals.
type Frames[F Frame[F]] struct {
	rate   float64
	frames []F
}

// NewFrames takes ownership of frames recorded at rate Hz.
func NewFrames[F Frame[F]](rate int, frames []F) *Frames[F] {
	return &Frames[F]{rate: float64(rate), frames: frames}
}

// Rate returns the number of frames per second.
func (f *Frames[F]) Rate() int { return int(f.rate) }

// Len returns the number of frames.
func (f *Frames[F]) Len() int { return len(f.frames) }

// Duration returns the length in seconds.
func (f *Frames[F]) Duration() float64 { return float64(len(f.frames)) / f.rate }

// At returns frame i, or silence when i is out of range.
func (f *Frames[F]) At(i int) F {
	if i < 0 || i >= len(f.frames) {
		var zero F
		return zero
	}
	return f.frames[i]
}

// Interpolate returns the frame at fractional position s, measured in
// frames. Whole numbers are exact frames and out-of-range positions yield
// silence.
func (f *Frames[F]) Interpolate(s float64) F {
	x0 := math.Floor(s)
	i := int(x0)
	return f.At(i).Lerp(f.At(i+1), float32(s-x0))
}

// FramesSignal plays a Frames block once, resampled to the caller's rate.
type FramesSignal[F Frame[F]] struct {
	data *Frames[F]
	pos  float64 // playback position in source frames
}

// NewFramesSignal returns a signal playing data from start seconds, which may
// be negative to delay the start.
func NewFramesSignal[F Frame[F]](data *Frames[F], start float64) *FramesSignal[F] {
	return &FramesSignal[F]{data: data, pos: start * data.rate}
}

func (s *FramesSignal[F]) Sample(rate float64, out []F) int {
	end := float64(len(s.data.frames))
	ds := s.data.rate / rate
	n := 0
	for ; n < len(out); n++ {
		p := s.pos + ds*float64(n)
		if p >= end {
			break
		}
		out[n] = s.data.Interpolate(p)
	}
	if n < len(out) {
		s.pos = end
	} else {
		s.pos += ds * float64(n)
	}
	return n
}

func (s *FramesSignal[F]) Remaining() float64 {
	return (float64(len(s.data.frames)) - s.pos) / s.data.rate
}

// Cycle loops a Frames block end to end forever.
type Cycle[F Frame[F]] struct {
	data   *Frames[F]
	cursor float64
}

// NewCycle returns a signal repeating data.
func NewCycle[F Frame[F]](data *Frames[F]) *Cycle[F] {
	return &Cycle[F]{data: data}
}

func (c *Cycle[F]) Sample(rate float64, out []F) int {
	n := len(c.data.frames)
	if n == 0 {
		var zero F
		fill(out, zero)
		return len(out)
	}
	length := float64(n)
	ds := c.data.rate / rate
	for i := range out {
		x0 := math.Floor(c.cursor)
		a := int(x0)
		b := (a + 1) % n
		out[i] = c.data.frames[a].Lerp(c.data.frames[b], float32(c.cursor-x0))
		c.cursor = math.Mod(c.cursor+ds, length)
	}
	return len(out)
}

func (c *Cycle[F]) Remaining() float64 { return inf }
