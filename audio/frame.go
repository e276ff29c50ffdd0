package audio

import "math"

// Frame is implemented by the fixed-arity frame types. The zero value of a
// frame is silence.
type Frame[F any] interface {
	Add(F) F
	Scale(float32) F
	// Lerp interpolates between the receiver and b. t = 0 yields the receiver.
	Lerp(b F, t float32) F
	Channels() int
	Channel(i int) float32
}

// Mono is a single-channel frame.
type Mono float32

func (a Mono) Add(b Mono) Mono             { return a + b }
func (a Mono) Scale(g float32) Mono        { return Mono(float32(a) * g) }
func (a Mono) Lerp(b Mono, t float32) Mono { return a + Mono(t)*(b-a) }
func (Mono) Channels() int                 { return 1 }
func (a Mono) Channel(int) float32         { return float32(a) }
func (a Mono) Stereo() Stereo              { return Stereo{float32(a), float32(a)} }

// Stereo is a two-channel frame, left then right.
type Stereo [2]float32

func (a Stereo) Add(b Stereo) Stereo    { return Stereo{a[0] + b[0], a[1] + b[1]} }
func (a Stereo) Scale(g float32) Stereo { return Stereo{a[0] * g, a[1] * g} }
func (Stereo) Channels() int            { return 2 }
func (a Stereo) Channel(i int) float32  { return a[i] }
func (a Stereo) Mono() Mono             { return Mono((a[0] + a[1]) * 0.5) }

func (a Stereo) Lerp(b Stereo, t float32) Stereo {
	return Stereo{a[0] + t*(b[0]-a[0]), a[1] + t*(b[1]-a[1])}
}

// mix adds src into dst.
func mix[F Frame[F]](dst, src []F) {
	for i := range src {
		dst[i] = dst[i].Add(src[i])
	}
}

func fill[F any](buf []F, v F) {
	for i := range buf {
		buf[i] = v
	}
}

// Interleave writes frames into an interleaved host buffer and returns the
// number of frames written.
func Interleave[F Frame[F]](dst []float32, src []F) int {
	if len(src) == 0 {
		return 0
	}
	ch := src[0].Channels()
	n := len(dst) / ch
	if n > len(src) {
		n = len(src)
	}
	for i, f := range src[:n] {
		for c := 0; c < ch; c++ {
			dst[i*ch+c] = f.Channel(c)
		}
	}
	return n
}

// Planar writes stereo frames into per-channel host buffers, as handed out by
// non-interleaved device callbacks. Channels beyond the second are silenced
// and a single channel receives the downmix.
func Planar(dst [][]float32, src []Stereo) {
	switch len(dst) {
	case 0:
		return
	case 1:
		for i := range dst[0] {
			if i < len(src) {
				dst[0][i] = float32(src[i].Mono())
			} else {
				dst[0][i] = 0
			}
		}
		return
	}
	for c := range dst {
		for i := range dst[c] {
			if c < 2 && i < len(src) {
				dst[c][i] = src[i][c]
			} else {
				dst[c][i] = 0
			}
		}
	}
}

// MonoFrames converts interleaved samples with the given channel count into
// mono frames by averaging channels.
func MonoFrames(channels int, samples []float32) []Mono {
	if channels < 1 {
		channels = 1
	}
	out := make([]Mono, len(samples)/channels)
	inv := 1 / float32(channels)
	for i := range out {
		var sum float32
		for c := 0; c < channels; c++ {
			sum += samples[i*channels+c]
		}
		out[i] = Mono(sum * inv)
	}
	return out
}

// StereoFrames converts interleaved samples into stereo frames. Mono input is
// duplicated to both sides; channels beyond the second are dropped.
func StereoFrames(channels int, samples []float32) []Stereo {
	if channels < 1 {
		channels = 1
	}
	out := make([]Stereo, len(samples)/channels)
	for i := range out {
		l := samples[i*channels]
		r := l
		if channels > 1 {
			r = samples[i*channels+1]
		}
		out[i] = Stereo{l, r}
	}
	return out
}

// ClampInt16 converts a sample in [-1, 1] to 16-bit PCM, saturating out of
// range values.
func ClampInt16(x float32) int16 {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}
	return int16(x * math.MaxInt16)
}

// DB converts decibels to an amplitude factor.
func DB(db float32) float32 {
	return float32(math.Pow(10, float64(db)/20))
}
