package device

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
	"github.com/mrdg/doppler/audio"
)

// PortAudio plays a scene on the default output device.
type PortAudio struct {
	stream *portaudio.Stream
	chunks chunker
	view   [][]float32
	out    [][]float32
}

// NewPortAudio opens a stereo stream at rate Hz that pulls buffers of frames
// from r. The stream does not play until Start is called.
func NewPortAudio(r Renderer, rate, frames int) (*PortAudio, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize portaudio: %w", err)
	}
	s := &PortAudio{
		chunks: newChunker(r, rate, frames),
		view:   make([][]float32, 2),
	}
	stream, err := portaudio.OpenDefaultStream(0, 2, float64(rate), frames, s.process)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("open stream: %w", err)
	}
	s.stream = stream
	return s, nil
}

func (s *PortAudio) Start() error {
	return s.stream.Start()
}

// Close stops the stream and releases portaudio.
func (s *PortAudio) Close() error {
	s.stream.Stop()
	err := s.stream.Close()
	portaudio.Terminate()
	return err
}

func (s *PortAudio) process(samples [][]float32) {
	if len(samples) == 0 {
		return
	}
	s.out = samples
	s.chunks.render(len(samples[0]), s.write)
}

func (s *PortAudio) write(off int, frames []audio.Stereo) {
	view := s.view[:0]
	for _, ch := range s.out {
		view = append(view, ch[off:off+len(frames)])
	}
	audio.Planar(view, frames)
}
