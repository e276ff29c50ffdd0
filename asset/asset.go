// Package asset decodes stored sounds into blocks of samples that can be
// played by the audio package.
package asset

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/mrdg/doppler/audio"
)

// Block is a fully decoded sound: interleaved samples in [-1, 1] at a fixed
// rate.
type Block struct {
	Rate     int
	Channels int
	Samples  []float32
}

// Frames returns the number of frames in the block.
func (b *Block) Frames() int {
	if b.Channels == 0 {
		return 0
	}
	return len(b.Samples) / b.Channels
}

// Duration returns the length of the block in seconds.
func (b *Block) Duration() float64 {
	if b.Rate == 0 {
		return 0
	}
	return float64(b.Frames()) / float64(b.Rate)
}

// Mono downmixes the block for spatial playback.
func (b *Block) Mono() *audio.Frames[audio.Mono] {
	return audio.NewFrames(b.Rate, audio.MonoFrames(b.Channels, b.Samples))
}

// Stereo converts the block for direct playback.
func (b *Block) Stereo() *audio.Frames[audio.Stereo] {
	return audio.NewFrames(b.Rate, audio.StereoFrames(b.Channels, b.Samples))
}

func (b *Block) validate() error {
	if b.Rate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrInvalidFormat, b.Rate)
	}
	if b.Channels <= 0 {
		return fmt.Errorf("%w: %d channels", ErrInvalidFormat, b.Channels)
	}
	return nil
}

// Decoder turns an encoded stream into a block.
type Decoder interface {
	Decode(r io.Reader) (*Block, error)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(r io.Reader) (*Block, error)

func (f DecoderFunc) Decode(r io.Reader) (*Block, error) { return f(r) }

// Registry maps format names, which double as file extensions, to decoders.
type Registry struct {
	mu     sync.Mutex
	codecs map[string]Decoder
}

func NewRegistry() *Registry {
	return &Registry{codecs: make(map[string]Decoder)}
}

// Default returns a registry with every built in decoder.
func Default() *Registry {
	r := NewRegistry()
	r.Register("wav", WAV{})
	r.Register("aiff", AIFF{})
	r.Register("aif", AIFF{})
	r.Register("mp3", MP3{})
	r.Register("ogg", Vorbis{})
	return r
}

func (r *Registry) Register(format string, d Decoder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codecs[strings.ToLower(format)] = d
}

func (r *Registry) Get(format string) (Decoder, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.codecs[strings.ToLower(format)]
	return d, ok
}

// Formats lists the registered format names.
func (r *Registry) Formats() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var formats []string
	for f := range r.codecs {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	return formats
}

// Decode reads a stream of the given format.
func (r *Registry) Decode(format string, rd io.Reader) (*Block, error) {
	d, ok := r.Get(format)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	b, err := d.Decode(rd)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", format, err)
	}
	if err := b.validate(); err != nil {
		return nil, fmt.Errorf("decode %s: %w", format, err)
	}
	return b, nil
}

// Load decodes a file, picking the decoder from its extension.
func (r *Registry) Load(path string) (*Block, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	format := strings.TrimPrefix(filepath.Ext(path), ".")
	b, err := r.Decode(format, f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return b, nil
}
