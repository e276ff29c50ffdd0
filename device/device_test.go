package device

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/go-audio/wav"
	"github.com/mrdg/doppler/audio"
)

type constRenderer struct {
	frame audio.Stereo
	sizes []int
}

func (r *constRenderer) Render(out []audio.Stereo, rate int) {
	r.sizes = append(r.sizes, len(out))
	for i := range out {
		out[i] = r.frame
	}
}

func TestChunker(t *testing.T) {
	r := &constRenderer{}
	c := newChunker(r, DefaultSampleRate, 256)
	var offsets []int
	c.render(1000, func(off int, _ []audio.Stereo) {
		offsets = append(offsets, off)
	})
	if want, got := []int{256, 256, 256, 232}, r.sizes; !reflect.DeepEqual(want, got) {
		t.Errorf("wrong chunk sizes: want %v, got %v", want, got)
	}
	if want, got := []int{0, 256, 512, 768}, offsets; !reflect.DeepEqual(want, got) {
		t.Errorf("wrong offsets: want %v, got %v", want, got)
	}
}

func TestPlanarCallback(t *testing.T) {
	r := &constRenderer{frame: audio.Stereo{0.25, -0.25}}
	s := &PortAudio{chunks: newChunker(r, DefaultSampleRate, 4), view: make([][]float32, 2)}
	out := [][]float32{make([]float32, 6), make([]float32, 6)}
	s.process(out)
	if want, got := []float32{0.25, 0.25, 0.25, 0.25, 0.25, 0.25}, out[0]; !reflect.DeepEqual(want, got) {
		t.Errorf("wrong left channel: %v", got)
	}
	if want, got := []float32{-0.25, -0.25, -0.25, -0.25, -0.25, -0.25}, out[1]; !reflect.DeepEqual(want, got) {
		t.Errorf("wrong right channel: %v", got)
	}
}

func TestOtoRead(t *testing.T) {
	r := &constRenderer{frame: audio.Stereo{0.5, -1}}
	o := &Oto{chunks: newChunker(r, DefaultSampleRate, 2)}
	o.samples = make([]float32, 4)

	p := make([]byte, 3*8+3)
	n, err := o.Read(p)
	if err != nil {
		t.Fatal(err)
	}
	if want, got := 24, n; want != got {
		t.Fatalf("expected whole frames only: want %v bytes, got %v", want, got)
	}
	for i := 0; i < n/4; i++ {
		want := float32(0.5)
		if i%2 == 1 {
			want = -1
		}
		if got := math.Float32frombits(binary.LittleEndian.Uint32(p[i*4:])); got != want {
			t.Errorf("sample %v: want %v, got %v", i, want, got)
		}
	}
}

func TestBounce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bounce.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	r := &constRenderer{frame: audio.Stereo{0.5, 2}}
	if err := Bounce(f, r, 8000, 1000, 256); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	f, err = os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		t.Fatalf("bounce did not produce a valid wave file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatal(err)
	}
	if want, got := 8000, buf.Format.SampleRate; want != got {
		t.Errorf("wrong sample rate: want %v, got %v", want, got)
	}
	if want, got := 2, buf.Format.NumChannels; want != got {
		t.Errorf("wrong channel count: want %v, got %v", want, got)
	}
	if want, got := 2000, len(buf.Data); want != got {
		t.Fatalf("wrong sample count: want %v, got %v", want, got)
	}
	if want, got := []int{16383, math.MaxInt16}, buf.Data[:2]; !reflect.DeepEqual(want, got) {
		t.Errorf("wrong samples: want %v, got %v", want, got)
	}
}
