package device

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/mrdg/doppler/audio"
)

// Bounce renders frames of r at rate Hz into w as a 16-bit stereo wave file,
// pulling block frames per render call.
func Bounce(w io.WriteSeeker, r Renderer, rate, frames, block int) error {
	if rate <= 0 {
		return fmt.Errorf("invalid sample rate: %d", rate)
	}
	enc := wav.NewEncoder(w, rate, 16, 2, 1)
	chunks := newChunker(r, rate, block)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 2, SampleRate: rate},
		SourceBitDepth: 16,
		Data:           make([]int, 2*len(chunks.frame)),
	}

	var err error
	chunks.render(frames, func(_ int, out []audio.Stereo) {
		if err != nil {
			return
		}
		buf.Data = buf.Data[:2*len(out)]
		for i, f := range out {
			buf.Data[2*i] = int(audio.ClampInt16(f[0]))
			buf.Data[2*i+1] = int(audio.ClampInt16(f[1]))
		}
		err = enc.Write(buf)
	})
	if err != nil {
		return fmt.Errorf("write samples: %w", err)
	}
	return enc.Close()
}
