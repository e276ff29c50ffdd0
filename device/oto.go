package device

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/mrdg/doppler/audio"
)

// Oto plays a scene through oto, which needs no cgo on most platforms.
type Oto struct {
	ctx     *oto.Context
	player  *oto.Player
	chunks  chunker
	samples []float32
	p       []byte

	mu      sync.Mutex // only for setup and control
	started bool
}

// NewOto creates an oto context at rate Hz pulling frames at a time from r.
// Only one oto context can exist per process.
func NewOto(r Renderer, rate, frames int) (*Oto, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   rate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   time.Duration(frames) * time.Second / time.Duration(rate),
	})
	if err != nil {
		return nil, fmt.Errorf("create oto context: %w", err)
	}
	<-ready

	o := &Oto{ctx: ctx, chunks: newChunker(r, rate, frames)}
	o.samples = make([]float32, 2*len(o.chunks.frame))
	o.player = ctx.NewPlayer(o)
	return o, nil
}

// Read implements io.Reader for the oto player. It renders as many whole
// frames as fit in p.
func (o *Oto) Read(p []byte) (int, error) {
	const frameSize = 2 * 4
	n := len(p) / frameSize
	o.p = p
	o.chunks.render(n, o.write)
	return n * frameSize, nil
}

func (o *Oto) write(off int, frames []audio.Stereo) {
	samples := o.samples[:2*len(frames)]
	audio.Interleave(samples, frames)
	b := o.p[off*8:]
	for i, v := range samples {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
}

func (o *Oto) Start() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.started {
		o.player.Play()
		o.started = true
	}
	return nil
}

func (o *Oto) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.started = false
	return o.player.Close()
}
