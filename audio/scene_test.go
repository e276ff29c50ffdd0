package audio

import (
	"errors"
	"math/rand"
	"reflect"
	"runtime"
	"sync"
	"testing"
)

const testRate = 48_000

func TestScenePlay(t *testing.T) {
	scene, _ := NewScene[Mono](SceneConfig{Capacity: 2})
	for range 2 {
		if _, err := scene.Play(NewSine(440, 1)); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := scene.Play(NewSine(440, 1)); !errors.Is(err, ErrCapacityExceeded) {
		t.Errorf("expected capacity error, got %v", err)
	}
	if want, got := (Stats{Live: 2, Played: 2}), scene.Stats(); want != got {
		t.Errorf("wrong stats: want %+v, got %+v", want, got)
	}
}

func TestSceneReclaim(t *testing.T) {
	scene, mixer := NewScene[Mono](SceneConfig{Capacity: 1, BlockSize: 8})
	h, err := scene.Play(ones(10))
	if err != nil {
		t.Fatal(err)
	}

	out := make([]Mono, 16)
	mixer.Render(out, 1024)
	if want, got := 0, mixer.Active(); want != got {
		t.Errorf("expected finished signal to be removed, %v active", got)
	}
	for i, v := range out {
		want := Mono(0)
		if i < 10 {
			want = 1
		}
		if v != want {
			t.Errorf("frame %v: want %v, got %v", i, want, v)
		}
	}

	if !h.Live() {
		t.Errorf("expected handle to stay live until reclaimed")
	}
	if want, got := 1, scene.Collect(); want != got {
		t.Fatalf("expected %v reclaimed, got %v", want, got)
	}
	if h.Live() {
		t.Errorf("expected handle to be stale after reclaim")
	}
	if err := h.Pause(); !errors.Is(err, ErrStaleHandle) {
		t.Errorf("expected stale handle error, got %v", err)
	}

	h2, err := scene.Play(NewSine(440, 1))
	if err != nil {
		t.Fatal(err)
	}
	if want, got := h.ID(), h2.ID(); want != got {
		t.Errorf("expected slot to be reused: want %v, got %v", want, got)
	}
	if err := h.Stop(); !errors.Is(err, ErrStaleHandle) {
		t.Errorf("expected stale handle to stay stale after reuse, got %v", err)
	}
	if !h2.Live() {
		t.Errorf("expected new handle to be live")
	}
	if want, got := (Stats{Live: 1, Played: 2, Reclaimed: 1}), scene.Stats(); want != got {
		t.Errorf("wrong stats: want %+v, got %+v", want, got)
	}
}

func TestZeroHandle(t *testing.T) {
	var h Handle
	if h.Live() {
		t.Errorf("expected zero handle not to be live")
	}
	if err := h.Stop(); !errors.Is(err, ErrStaleHandle) {
		t.Errorf("expected stale handle error, got %v", err)
	}
	if _, err := Control[*GainControl](h); !errors.Is(err, ErrStaleHandle) {
		t.Errorf("expected stale handle error, got %v", err)
	}
}

func TestSceneCommutative(t *testing.T) {
	render := func(signals ...Signal[Mono]) []Mono {
		scene, mixer := NewScene[Mono](SceneConfig{})
		for _, sig := range signals {
			if _, err := scene.Play(sig); err != nil {
				t.Fatal(err)
			}
		}
		out := make([]Mono, 256)
		mixer.Render(out, testRate)
		return out
	}
	ab := render(NewSine(440, 0.5), NewGain[Mono](NewSine(660, 1), 0.25))
	ba := render(NewGain[Mono](NewSine(660, 1), 0.25), NewSine(440, 0.5))
	if !reflect.DeepEqual(ab, ba) {
		t.Errorf("mix depends on play order")
	}
}

func TestSceneSplitRender(t *testing.T) {
	data := make([]Stereo, 100)
	for i := range data {
		data[i] = Stereo{float32(i), -float32(i)}
	}
	frames := NewFrames(testRate, data)

	render := func(sizes ...int) []Stereo {
		scene, mixer := NewScene[Stereo](SceneConfig{BlockSize: 16})
		if _, err := scene.Play(NewFramesSignal(frames, 0)); err != nil {
			t.Fatal(err)
		}
		var out []Stereo
		for _, n := range sizes {
			buf := make([]Stereo, n)
			mixer.Render(buf, testRate)
			out = append(out, buf...)
		}
		if want, got := 0, mixer.Active(); want != got {
			t.Errorf("expected signal to finish, %v active", got)
		}
		if want, got := 1, scene.Collect(); want != got {
			t.Errorf("expected exactly one reclaim, got %v", got)
		}
		return out
	}
	if want, got := render(128), render(30, 30, 30, 38); !reflect.DeepEqual(want, got) {
		t.Errorf("split render differs:\nwant: %v\ngot:  %v", want, got)
	}
}

func TestScenePauseStop(t *testing.T) {
	scene, mixer := NewScene[Mono](SceneConfig{})
	h, err := scene.Play(NewCycle(monoFrames(testRate, 1)))
	if err != nil {
		t.Fatal(err)
	}
	out := make([]Mono, 4)

	if err := h.Pause(); err != nil {
		t.Fatal(err)
	}
	mixer.Render(out, testRate)
	if want, got := []Mono{0, 0, 0, 0}, out; !reflect.DeepEqual(want, got) {
		t.Errorf("expected silence while paused, got %v", got)
	}
	if paused, err := h.Paused(); err != nil || !paused {
		t.Errorf("expected paused, got %v (err=%v)", paused, err)
	}

	if err := h.Resume(); err != nil {
		t.Fatal(err)
	}
	mixer.Render(out, testRate)
	if want, got := []Mono{1, 1, 1, 1}, out; !reflect.DeepEqual(want, got) {
		t.Errorf("expected signal after resume, got %v", got)
	}

	if err := h.Stop(); err != nil {
		t.Fatal(err)
	}
	mixer.Render(out, testRate)
	if want, got := 0, mixer.Active(); want != got {
		t.Errorf("expected stopped signal to be removed, %v active", got)
	}
	scene.Collect()
	if h.Live() {
		t.Errorf("expected stopped handle to be reclaimed")
	}
}

func TestControl(t *testing.T) {
	scene, mixer := NewScene[Mono](SceneConfig{})
	sig := NewGain[Mono](NewLowpass[Mono](NewCycle(monoFrames(testRate, 1)), 5000), 1)
	h, err := scene.Play(sig)
	if err != nil {
		t.Fatal(err)
	}

	gain, err := Control[*GainControl](h)
	if err != nil {
		t.Fatal(err)
	}
	if err := gain.SetGain(-6); err != nil {
		t.Fatal(err)
	}
	if err := gain.SetGain(100); err == nil {
		t.Errorf("expected error for gain out of range")
	}
	if amp, err := gain.Amplitude(); err != nil || amp != DB(-6) {
		t.Errorf("wrong amplitude: %v (err=%v)", amp, err)
	}

	lowpass, err := Control[*LowpassControl](h)
	if err != nil {
		t.Fatalf("expected control of a wrapped signal: %v", err)
	}
	if err := lowpass.SetCutoff(2000); err != nil {
		t.Fatal(err)
	}

	if _, err := Control[*SpeedControl](h); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("expected type mismatch, got %v", err)
	}

	if err := h.Stop(); err != nil {
		t.Fatal(err)
	}
	mixer.Render(make([]Mono, 4), testRate)
	scene.Collect()
	if err := gain.SetAmplitude(1); !errors.Is(err, ErrStaleHandle) {
		t.Errorf("expected stale control after reclaim, got %v", err)
	}
}

func TestSubmix(t *testing.T) {
	inner, submix := NewScene[Mono](SceneConfig{})
	if _, err := inner.Play(NewCycle(monoFrames(testRate, 0.25))); err != nil {
		t.Fatal(err)
	}
	outer, mixer := NewScene[Mono](SceneConfig{})
	h, err := outer.Play(NewGain[Mono](submix, 2))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := outer.Play(NewCycle(monoFrames(testRate, 0.25))); err != nil {
		t.Fatal(err)
	}

	out := make([]Mono, 4)
	mixer.Render(out, testRate)
	if want, got := []Mono{0.75, 0.75, 0.75, 0.75}, out; !reflect.DeepEqual(want, got) {
		t.Errorf("wrong submix: want %v, got %v", want, got)
	}
	if !h.Live() {
		t.Errorf("expected submix to keep playing")
	}
}

func TestRenderAllocs(t *testing.T) {
	scene, mixer := NewScene[Stereo](SceneConfig{Capacity: 8, BlockSize: 64})
	out := make([]Stereo, 256)
	allocs := testing.AllocsPerRun(100, func() {
		mixer.Render(out, testRate)
	})
	if allocs != 0 {
		t.Errorf("empty render allocated %v times", allocs)
	}

	for range 4 {
		sig := NewGain[Stereo](NewCycle(NewFrames(testRate, []Stereo{{1, 0}, {0, 1}})), 0.5)
		if _, err := scene.Play(sig); err != nil {
			t.Fatal(err)
		}
	}
	spatial, smixer := NewSpatialScene(SpatialConfig{Capacity: 8, BlockSize: 64})
	if _, err := spatial.Play(NewSine(440, 1), SpatialOptions{}); err != nil {
		t.Fatal(err)
	}
	mixer.Render(out, testRate)
	smixer.Render(out, testRate)

	allocs = testing.AllocsPerRun(100, func() {
		mixer.Render(out, testRate)
		smixer.Render(out, testRate)
	})
	if allocs != 0 {
		t.Errorf("render allocated %v times", allocs)
	}
}

func TestSceneConcurrent(t *testing.T) {
	scene, mixer := NewScene[Mono](SceneConfig{Capacity: 16, BlockSize: 64})
	clip := monoFrames(testRate, make([]float32, 300)...)

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		out := make([]Mono, 128)
		for {
			mixer.Render(out, testRate)
			select {
			case <-done:
				if mixer.Active() == 0 && mixer.inserts.len() == 0 {
					return
				}
			default:
			}
			runtime.Gosched()
		}
	}()

	rnd := rand.New(rand.NewSource(1))
	var handles []Handle
	played := 0
	for n := 0; n < 1000; n++ {
		switch rnd.Intn(3) {
		case 0:
			h, err := scene.Play(NewGain[Mono](NewFramesSignal(clip, 0), 1))
			if errors.Is(err, ErrCapacityExceeded) {
				continue
			} else if err != nil {
				t.Fatal(err)
			}
			played++
			handles = append(handles, h)
		case 1:
			if len(handles) == 0 {
				continue
			}
			h := handles[rnd.Intn(len(handles))]
			if gain, err := Control[*GainControl](h); err == nil {
				// the handle may go stale at any moment
				if err := gain.SetAmplitude(rnd.Float32()); err != nil && !errors.Is(err, ErrStaleHandle) {
					t.Fatal(err)
				}
			} else if !errors.Is(err, ErrStaleHandle) {
				t.Fatal(err)
			}
		case 2:
			if len(handles) == 0 {
				continue
			}
			i := rnd.Intn(len(handles))
			if err := handles[i].Stop(); err != nil && !errors.Is(err, ErrStaleHandle) {
				t.Fatal(err)
			}
			handles = append(handles[:i], handles[i+1:]...)
		}
	}
	close(done)
	wg.Wait()

	scene.Collect()
	stats := scene.Stats()
	if want, got := uint64(played), stats.Reclaimed; want != got {
		t.Errorf("expected every played signal to be reclaimed: want %v, got %v", want, got)
	}
	if want, got := 0, stats.Live; want != got {
		t.Errorf("expected no live signals, got %v", got)
	}
	for _, h := range handles {
		if h.Live() {
			t.Errorf("handle %v still live", h)
		}
	}
}
