package audio

import (
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Coordinates are right handed: +X points right, +Y up and -Z forward from an
// unrotated listener. Distances are in meters and velocities in meters per
// second.

const (
	DefaultSpeedOfSound = 343
	DefaultMaxDistance  = 200
	DefaultSampleRate   = 48_000
	DefaultMinRate      = 1.0 / 16
	DefaultMaxRate      = 4
)

// SpatialConfig configures a spatial scene. Zero fields take defaults.
type SpatialConfig struct {
	Capacity  int
	BlockSize int
	// SampleRate is the highest rate the scene will be rendered at. It sizes
	// each source's delay line; rendering faster shortens the longest
	// distance that is delayed correctly.
	SampleRate int
	// SpeedOfSound in meters per second.
	SpeedOfSound float32
	// MaxDistance is the longest propagation delay modeled. Sources further
	// away are heard with the delay of MaxDistance.
	MaxDistance float32
	// MinRate and MaxRate bound the doppler playback rate.
	MinRate float64
	MaxRate float64
	// EarSeparation enables interaural time differences when positive.
	EarSeparation float32
	Interpolation Interpolation
	Attenuation   Attenuation
}

func (c SpatialConfig) withDefaults() SpatialConfig {
	if c.Capacity <= 0 {
		c.Capacity = DefaultCapacity
	}
	if c.BlockSize <= 0 {
		c.BlockSize = DefaultBlockSize
	}
	if c.SampleRate <= 0 {
		c.SampleRate = DefaultSampleRate
	}
	if c.SpeedOfSound <= 0 {
		c.SpeedOfSound = DefaultSpeedOfSound
	}
	if c.MaxDistance <= 0 {
		c.MaxDistance = DefaultMaxDistance
	}
	if c.MinRate <= 0 {
		c.MinRate = DefaultMinRate
	}
	if c.MaxRate < c.MinRate {
		c.MaxRate = max(DefaultMaxRate, c.MinRate)
	}
	if c.EarSeparation < 0 {
		c.EarSeparation = 0
	}
	if c.Attenuation == nil {
		c.Attenuation = InverseDistance{}
	}
	return c
}

// Pose is the position and orientation of the listener.
type Pose struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
}

// Yaw returns a rotation of radians about the vertical axis. Positive angles
// turn the listener to the left.
func Yaw(radians float32) mgl32.Quat {
	return mgl32.QuatRotate(radians, mgl32.Vec3{0, 1, 0})
}

func (p Pose) normalize() Pose {
	if p.Rotation.Len() == 0 {
		p.Rotation = mgl32.QuatIdent()
	} else {
		p.Rotation = p.Rotation.Normalize()
	}
	return p
}

// SpatialOptions places a newly played source.
type SpatialOptions struct {
	Position mgl32.Vec3
	Velocity mgl32.Vec3
	// Radius is the distance within which the source is not attenuated.
	// Defaults to 1.
	Radius float32
	// Gain in decibels.
	Gain float32
}

// SpatialScene is the control half of a scene that places mono sources
// around a listener and renders them to stereo.
type SpatialScene struct {
	scene *Scene[Stereo]
	cfg   *SpatialConfig
	// pose is owned by the render side; sources keep a pointer to it
	pose *Pose

	mu       sync.Mutex
	listener *Cell[Pose]
}

// SpatialMixer is the render half of a spatial scene.
type SpatialMixer struct {
	mixer    *Mixer[Stereo]
	listener *Cell[Pose]
	pose     *Pose
}

// NewSpatialScene returns both halves of a spatial scene with the listener at
// the origin facing -Z.
func NewSpatialScene(cfg SpatialConfig) (*SpatialScene, *SpatialMixer) {
	cfg = cfg.withDefaults()
	scene, mixer := NewScene[Stereo](SceneConfig{Capacity: cfg.Capacity, BlockSize: cfg.BlockSize})
	pose := &Pose{Rotation: mgl32.QuatIdent()}
	listener := NewCell(*pose)
	s := &SpatialScene{
		scene:    scene,
		cfg:      &cfg,
		pose:     pose,
		listener: listener,
	}
	m := &SpatialMixer{
		mixer:    mixer,
		listener: listener,
		pose:     pose,
	}
	return s, m
}

// Config returns the scene's configuration with defaults applied.
func (s *SpatialScene) Config() SpatialConfig { return *s.cfg }

// Play places sig in the scene. The returned handle exposes a
// *MotionControl.
func (s *SpatialScene) Play(sig Signal[Mono], opts SpatialOptions) (Handle, error) {
	if opts.Radius < 0 {
		return Handle{}, fmt.Errorf("radius is negative: %v", opts.Radius)
	}
	return s.scene.Play(newSource(sig, opts, s.cfg, s.pose))
}

// PlayStereo plays sig without spatialization.
func (s *SpatialScene) PlayStereo(sig Signal[Stereo]) (Handle, error) {
	return s.scene.Play(sig)
}

// SetListener moves the listener. The new pose is picked up by the next
// render pass. A zero rotation is treated as facing -Z.
func (s *SpatialScene) SetListener(p Pose) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listener.Set(p.normalize())
}

// Listener returns the most recently set listener pose.
func (s *SpatialScene) Listener() Pose {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.listener.Pending()
}

func (s *SpatialScene) Collect() int       { return s.scene.Collect() }
func (s *SpatialScene) Stats() Stats       { return s.scene.Stats() }
func (s *SpatialScene) Handles() []Handle  { return s.scene.Handles() }
func (m *SpatialMixer) Active() int        { return m.mixer.Active() }
func (m *SpatialMixer) Remaining() float64 { return inf }

// Render mixes every source into out at rate Hz.
func (m *SpatialMixer) Render(out []Stereo, rate int) {
	m.Sample(float64(rate), out)
}

func (m *SpatialMixer) Sample(rate float64, out []Stereo) int {
	if m.listener.Update() {
		*m.pose = *m.listener.Get()
	}
	return m.mixer.Sample(rate, out)
}
