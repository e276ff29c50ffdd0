package asset

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/youpy/go-wav"
)

// WAV decodes RIFF wave files with one or two channels.
type WAV struct{}

func (WAV) Decode(r io.Reader) (*Block, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	rd := wav.NewReader(bytes.NewReader(data))
	format, err := rd.Format()
	if err != nil {
		return nil, err
	}
	channels := int(format.NumChannels)
	if channels < 1 || channels > 2 {
		return nil, fmt.Errorf("%w: %d channels", ErrInvalidFormat, channels)
	}

	b := &Block{Rate: int(format.SampleRate), Channels: channels}
	for {
		samples, err := rd.ReadSamples()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		for _, sample := range samples {
			for c := 0; c < channels; c++ {
				b.Samples = append(b.Samples, float32(rd.FloatValue(sample, uint(c))))
			}
		}
	}
	return b, nil
}

// AIFF decodes AIFF files.
type AIFF struct{}

func (AIFF) Decode(r io.Reader) (*Block, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		// go-audio needs to seek between chunks
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading aiff data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := aiff.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotAiffFile
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, err
	}
	if buf.Format == nil {
		return nil, fmt.Errorf("%w: missing format", ErrInvalidFormat)
	}
	scale, err := intScale(int(dec.BitDepth))
	if err != nil {
		return nil, err
	}
	return &Block{
		Rate:     buf.Format.SampleRate,
		Channels: buf.Format.NumChannels,
		Samples:  intSamples(buf, scale),
	}, nil
}

func intScale(bitDepth int) (float32, error) {
	switch bitDepth {
	case 8:
		return 128.0, nil
	case 16:
		return 32768.0, nil
	case 24:
		return 8388608.0, nil
	case 32:
		return 2147483648.0, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
}

func intSamples(buf *goaudio.IntBuffer, scale float32) []float32 {
	out := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		out[i] = float32(v) / scale
	}
	return out
}

// MP3 decodes MPEG-1 layer 3 files. go-mp3 always produces 16-bit stereo.
type MP3 struct{}

func (MP3) Decode(r io.Reader) (*Block, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(dec)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, err
	}
	samples := make([]float32, len(data)/2)
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(data[2*i:]))
		samples[i] = float32(v) / 32768.0
	}
	// drop a trailing partial frame
	samples = samples[:len(samples)/2*2]
	return &Block{Rate: dec.SampleRate(), Channels: 2, Samples: samples}, nil
}

// Vorbis decodes Ogg Vorbis files.
type Vorbis struct{}

func (Vorbis) Decode(r io.Reader) (*Block, error) {
	samples, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return &Block{Rate: format.SampleRate, Channels: format.Channels, Samples: samples}, nil
}
