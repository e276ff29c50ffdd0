package audio

import (
	"reflect"
	"testing"
)

func monoFrames(rate int, values ...float32) *Frames[Mono] {
	frames := make([]Mono, len(values))
	for i, v := range values {
		frames[i] = Mono(v)
	}
	return NewFrames(rate, frames)
}

func TestCycle(t *testing.T) {
	tests := []struct {
		name string
		rate float64
		want []Mono
	}{
		{name: "native rate", rate: 1, want: []Mono{1, 2, 3, 1, 2}},
		{name: "double rate", rate: 2, want: []Mono{1, 1.5, 2, 2.5, 3, 2, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCycle(monoFrames(1, 1, 2, 3))
			out := make([]Mono, len(tt.want))
			if want, got := len(out), c.Sample(tt.rate, out); want != got {
				t.Fatalf("expected %v frames, got %v", want, got)
			}
			if want, got := tt.want, out; !reflect.DeepEqual(want, got) {
				t.Errorf("wrong frames:\nwant: %v\ngot:  %v", want, got)
			}
		})
	}
}

func TestCycleEmpty(t *testing.T) {
	c := NewCycle(monoFrames(1))
	out := []Mono{1, 1}
	if want, got := 2, c.Sample(1, out); want != got {
		t.Fatalf("expected %v frames, got %v", want, got)
	}
	if want, got := []Mono{0, 0}, out; !reflect.DeepEqual(want, got) {
		t.Errorf("expected silence, got %v", got)
	}
}

func TestFramesSignalSplit(t *testing.T) {
	data := monoFrames(10, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9)

	whole := make([]Mono, 10)
	sig := NewFramesSignal(data, 0)
	if want, got := 10, sig.Sample(10, whole); want != got {
		t.Fatalf("expected %v frames, got %v", want, got)
	}
	if want, got := 0, sig.Sample(10, make([]Mono, 4)); want != got {
		t.Errorf("expected exhausted signal, got %v frames", got)
	}

	var split []Mono
	sig = NewFramesSignal(data, 0)
	var counts []int
	for range 5 {
		buf := make([]Mono, 3)
		n := sig.Sample(10, buf)
		counts = append(counts, n)
		split = append(split, buf[:n]...)
	}
	if want, got := []int{3, 3, 3, 1, 0}, counts; !reflect.DeepEqual(want, got) {
		t.Errorf("wrong frame counts: want %v, got %v", want, got)
	}
	if want, got := whole, split; !reflect.DeepEqual(want, got) {
		t.Errorf("split render differs:\nwant: %v\ngot:  %v", want, got)
	}
	if got := sig.Remaining(); got > 0 {
		t.Errorf("expected nothing remaining, got %v", got)
	}
}

func TestFramesSignalResample(t *testing.T) {
	sig := NewFramesSignal(monoFrames(2, 0, 1, 2), 0)
	out := make([]Mono, 8)
	if want, got := 6, sig.Sample(4, out); want != got {
		t.Fatalf("expected %v frames, got %v", want, got)
	}
	if want, got := []Mono{0, 0.5, 1, 1.5, 2, 1}, out[:6]; !reflect.DeepEqual(want, got) {
		t.Errorf("wrong frames:\nwant: %v\ngot:  %v", want, got)
	}
}

func TestFramesSignalDelayedStart(t *testing.T) {
	sig := NewFramesSignal(monoFrames(1, 1, 2), -2)
	if want, got := 4.0, sig.Remaining(); want != got {
		t.Errorf("expected %v seconds remaining, got %v", want, got)
	}
	out := make([]Mono, 4)
	if want, got := 4, sig.Sample(1, out); want != got {
		t.Fatalf("expected %v frames, got %v", want, got)
	}
	if want, got := []Mono{0, 0, 1, 2}, out; !reflect.DeepEqual(want, got) {
		t.Errorf("wrong frames:\nwant: %v\ngot:  %v", want, got)
	}
}

func TestFramesAt(t *testing.T) {
	f := monoFrames(1, 4, 8)
	for _, tt := range []struct {
		pos  float64
		want Mono
	}{
		{-1, 0},
		{0, 4},
		{0.25, 5},
		{1, 8},
		{1.5, 4},
		{2, 0},
	} {
		if got := f.Interpolate(tt.pos); got != tt.want {
			t.Errorf("Interpolate(%v): want %v, got %v", tt.pos, tt.want, got)
		}
	}
}
