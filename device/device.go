// Package device connects the render side of a scene to audio hardware or a
// file.
package device

import (
	"github.com/mrdg/doppler/audio"
)

const (
	DefaultSampleRate = 48_000
	DefaultBufferSize = 512
)

// Renderer is implemented by the render halves of stereo scenes.
type Renderer interface {
	Render(out []audio.Stereo, rate int)
}

// chunker renders into host buffers of any size using a fixed, preallocated
// buffer of frames.
type chunker struct {
	r     Renderer
	rate  int
	frame []audio.Stereo
}

func newChunker(r Renderer, rate, frames int) chunker {
	if frames <= 0 {
		frames = DefaultBufferSize
	}
	return chunker{r: r, rate: rate, frame: make([]audio.Stereo, frames)}
}

// render calls f for consecutive rendered chunks covering n frames. off is
// the position of the chunk within the n frames.
func (c *chunker) render(n int, f func(off int, frames []audio.Stereo)) {
	for off := 0; off < n; off += len(c.frame) {
		buf := c.frame[:min(len(c.frame), n-off)]
		c.r.Render(buf, c.rate)
		f(off, buf)
	}
}
