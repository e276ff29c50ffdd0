package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mrdg/doppler/audio"
	"github.com/mrdg/doppler/device"
)

// config holds the command line configuration. Every flag falls back to a
// DOPPLER_* environment variable.
type config struct {
	rate     int
	block    int
	capacity int
	backend  string // portaudio, oto or none

	speedOfSound  float64
	maxDistance   float64
	earSeparation float64
	interpolation string
	attenuation   string

	run      string
	bounce   string
	duration float64
}

func loadConfig(args []string, stderr io.Writer) (config, error) {
	var c config
	fs := flag.NewFlagSet("doppler", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.IntVar(&c.rate, "rate", envInt("DOPPLER_RATE", device.DefaultSampleRate), "output sample rate in Hz")
	fs.IntVar(&c.block, "block", envInt("DOPPLER_BLOCK", device.DefaultBufferSize), "frames per render call")
	fs.IntVar(&c.capacity, "capacity", envInt("DOPPLER_CAPACITY", audio.DefaultCapacity), "maximum number of playing sounds")
	fs.StringVar(&c.backend, "backend", envStr("DOPPLER_BACKEND", "portaudio"), "audio output: portaudio, oto or none")
	fs.Float64Var(&c.speedOfSound, "speed-of-sound", envFloat("DOPPLER_SPEED_OF_SOUND", audio.DefaultSpeedOfSound), "in units per second")
	fs.Float64Var(&c.maxDistance, "max-distance", envFloat("DOPPLER_MAX_DISTANCE", audio.DefaultMaxDistance), "largest source distance that is delayed correctly")
	fs.Float64Var(&c.earSeparation, "ear-separation", envFloat("DOPPLER_EAR_SEPARATION", 0), "distance between the ears, 0 disables interaural delay")
	fs.StringVar(&c.interpolation, "interpolation", envStr("DOPPLER_INTERPOLATION", "linear"), "delay line interpolation: linear or cubic")
	fs.StringVar(&c.attenuation, "attenuation", envStr("DOPPLER_ATTENUATION", "inverse"), "distance attenuation: inverse, linear or exponential")
	fs.StringVar(&c.run, "run", envStr("DOPPLER_RUN", ""), "script to run before starting the shell")
	fs.StringVar(&c.bounce, "bounce", envStr("DOPPLER_BOUNCE", ""), "render to this wave file instead of a device")
	fs.Float64Var(&c.duration, "duration", envFloat("DOPPLER_DURATION", 10), "length of the bounce in seconds")
	if err := fs.Parse(args); err != nil {
		return c, err
	}
	return c, c.validate()
}

func (c config) validate() error {
	if c.rate <= 0 {
		return fmt.Errorf("invalid sample rate: %d", c.rate)
	}
	if c.block <= 0 {
		return fmt.Errorf("invalid block size: %d", c.block)
	}
	if c.capacity <= 0 {
		return fmt.Errorf("invalid capacity: %d", c.capacity)
	}
	switch c.backend {
	case "portaudio", "oto", "none":
	default:
		return fmt.Errorf("unknown backend: %s", c.backend)
	}
	if c.bounce != "" && c.duration <= 0 {
		return fmt.Errorf("invalid bounce duration: %v", c.duration)
	}
	if _, err := parseAttenuation(c.attenuation, c.maxDistance); err != nil {
		return err
	}
	_, err := parseInterpolation(c.interpolation)
	return err
}

func (c config) spatial() audio.SpatialConfig {
	interp, _ := parseInterpolation(c.interpolation)
	atten, _ := parseAttenuation(c.attenuation, c.maxDistance)
	return audio.SpatialConfig{
		Capacity:      c.capacity,
		BlockSize:     c.block,
		SampleRate:    c.rate,
		SpeedOfSound:  float32(c.speedOfSound),
		MaxDistance:   float32(c.maxDistance),
		EarSeparation: float32(c.earSeparation),
		Interpolation: interp,
		Attenuation:   atten,
	}
}

func parseInterpolation(s string) (audio.Interpolation, error) {
	switch strings.ToLower(s) {
	case "linear":
		return audio.Linear, nil
	case "cubic":
		return audio.Cubic, nil
	}
	return audio.Linear, fmt.Errorf("unknown interpolation: %s", s)
}

func parseAttenuation(s string, maxDistance float64) (audio.Attenuation, error) {
	switch strings.ToLower(s) {
	case "inverse":
		return audio.InverseDistance{}, nil
	case "linear":
		if maxDistance <= 0 {
			maxDistance = audio.DefaultMaxDistance
		}
		return audio.LinearRolloff{MaxDistance: float32(maxDistance)}, nil
	case "exponential":
		return audio.ExponentialRolloff{Rolloff: 1}, nil
	}
	return nil, fmt.Errorf("unknown attenuation: %s", s)
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
