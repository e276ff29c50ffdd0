package main

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mrdg/doppler/audio"
	"github.com/mrdg/doppler/dub"
)

type command struct {
	name  string
	run   func(*env, []dub.Node) (dub.Node, error)
	arity int // -n means len(args) must be >= n
	help  string
}

var commands []command

func init() {
	commands = []command{
		{"load", loadCommand, 2, `load NAME "path": decode a sound file`},
		{"sounds", soundsCommand, 0, "sounds: list loaded sounds"},
		{"play", playCommand, 1, "play NAME: play a sound without placing it"},
		{"emit", emitCommand, -4, "emit NAME X Y Z [VX VY VZ]: play a sound at a position"},
		{"tone", toneCommand, 5, "tone HZ SECONDS X Y Z: play a sine tone at a position"},
		{"move", moveCommand, -4, "move ID X Y Z [VX VY VZ]: move a source continuously"},
		{"jump", jumpCommand, 4, "jump ID X Y Z: move a source without doppler"},
		{"gain", gainCommand, 2, "gain ID DB: set the gain of a sound"},
		{"speed", speedCommand, 2, "speed ID RATE: set the playback speed of a sound"},
		{"cutoff", cutoffCommand, 2, "cutoff ID HZ: set the lowpass cutoff of a source"},
		{"release", releaseCommand, 1, "release ID: end a tone"},
		{"stop", stopCommand, 1, "stop ID: stop a sound"},
		{"pause", pauseCommand, 1, "pause ID: pause a sound"},
		{"resume", resumeCommand, 1, "resume ID: resume a paused sound"},
		{"listener", listenerCommand, -3, "listener X Y Z [YAW]: move the listener, yaw in degrees"},
		{"list", listCommand, 0, "list: show playing sounds"},
		{"collect", collectCommand, 0, "collect: reclaim finished sounds"},
		{"help", helpCommand, 0, "help: show this list"},
	}
}

const (
	toneAmplitude = 0.5
	// open filter by default
	defaultCutoff = 20_000
)

var toneEnvelope = audio.ADSR{Attack: 0.01, Decay: 0.05, Sustain: 0.8, Release: 0.2}

func loadCommand(env *env, args []dub.Node) (dub.Node, error) {
	var name, path string
	if err := readArgs(args, &name, &path); err != nil {
		return nil, err
	}
	block, err := env.assets.Load(path)
	if err != nil {
		return nil, err
	}
	env.sounds[name] = &sound{name: name, block: block}
	return dub.String(describe(env.sounds[name])), nil
}

func soundsCommand(env *env, args []dub.Node) (dub.Node, error) {
	names := make([]string, 0, len(env.sounds))
	for name := range env.sounds {
		names = append(names, name)
	}
	sort.Strings(names)
	lines := make([]string, len(names))
	for i, name := range names {
		lines[i] = describe(env.sounds[name])
	}
	return dub.String(strings.Join(lines, "\n")), nil
}

func describe(s *sound) string {
	return fmt.Sprintf("%s: %d ch, %d Hz, %.2fs", s.name, s.block.Channels, s.block.Rate, s.block.Duration())
}

func playCommand(env *env, args []dub.Node) (dub.Node, error) {
	var name string
	if err := readArgs(args, &name); err != nil {
		return nil, err
	}
	s, err := env.sound(name)
	if err != nil {
		return nil, err
	}
	sig := audio.NewGain[audio.Stereo](
		audio.NewSpeed[audio.Stereo](audio.NewFramesSignal(s.stereoFrames(), 0), 1), 1)
	h, err := env.scene.PlayStereo(sig)
	return env.track(h, err)
}

func emitCommand(env *env, args []dub.Node) (dub.Node, error) {
	var name string
	if err := readArgs(args[:1], &name); err != nil {
		return nil, err
	}
	pos, vel, err := readMotion(args[1:])
	if err != nil {
		return nil, err
	}
	s, err := env.sound(name)
	if err != nil {
		return nil, err
	}
	sig := audio.NewSpeed[audio.Mono](audio.NewFramesSignal(s.monoFrames(), 0), 1)
	return env.emit(sig, pos, vel)
}

func toneCommand(env *env, args []dub.Node) (dub.Node, error) {
	var freq, seconds float64
	if err := readArgs(args[:2], &freq, &seconds); err != nil {
		return nil, err
	}
	if freq <= 0 {
		return nil, fmt.Errorf("frequency is not positive: %v", freq)
	}
	pos, _, err := readMotion(args[2:])
	if err != nil {
		return nil, err
	}
	sig, err := audio.NewEnvelope[audio.Mono](audio.NewSine(freq, toneAmplitude), toneEnvelope, seconds)
	if err != nil {
		return nil, err
	}
	return env.emit(sig, pos, mgl32.Vec3{})
}

func (e *env) emit(sig audio.Signal[audio.Mono], pos, vel mgl32.Vec3) (dub.Node, error) {
	h, err := e.scene.Play(audio.NewLowpass(sig, defaultCutoff), audio.SpatialOptions{
		Position: pos,
		Velocity: vel,
	})
	return e.track(h, err)
}

func moveCommand(env *env, args []dub.Node) (dub.Node, error) {
	ctl, err := control[*audio.MotionControl](env, args[0])
	if err != nil {
		return nil, err
	}
	pos, vel, err := readMotion(args[1:])
	if err != nil {
		return nil, err
	}
	return nil, ctl.SetMotion(pos, vel)
}

func jumpCommand(env *env, args []dub.Node) (dub.Node, error) {
	ctl, err := control[*audio.MotionControl](env, args[0])
	if err != nil {
		return nil, err
	}
	pos, _, err := readMotion(args[1:])
	if err != nil {
		return nil, err
	}
	return nil, ctl.Jump(pos, mgl32.Vec3{})
}

func gainCommand(env *env, args []dub.Node) (dub.Node, error) {
	var db float64
	if err := readArgs(args[1:], &db); err != nil {
		return nil, err
	}
	h, err := env.handle(args[0])
	if err != nil {
		return nil, err
	}
	// sources are attenuated by their motion control, direct sounds by a gain
	if ctl, err := audio.Control[*audio.MotionControl](h); err == nil {
		return nil, ctl.SetGain(float32(db))
	}
	ctl, err := audio.Control[*audio.GainControl](h)
	if err != nil {
		return nil, err
	}
	return nil, ctl.SetGain(float32(db))
}

func speedCommand(env *env, args []dub.Node) (dub.Node, error) {
	var speed float64
	if err := readArgs(args[1:], &speed); err != nil {
		return nil, err
	}
	ctl, err := control[*audio.SpeedControl](env, args[0])
	if err != nil {
		return nil, err
	}
	return nil, ctl.SetSpeed(speed)
}

func cutoffCommand(env *env, args []dub.Node) (dub.Node, error) {
	var freq float64
	if err := readArgs(args[1:], &freq); err != nil {
		return nil, err
	}
	ctl, err := control[*audio.LowpassControl](env, args[0])
	if err != nil {
		return nil, err
	}
	return nil, ctl.SetCutoff(freq)
}

func releaseCommand(env *env, args []dub.Node) (dub.Node, error) {
	ctl, err := control[*audio.EnvelopeControl](env, args[0])
	if err != nil {
		return nil, err
	}
	return nil, ctl.Release()
}

func stopCommand(env *env, args []dub.Node) (dub.Node, error) {
	h, err := env.handle(args[0])
	if err != nil {
		return nil, err
	}
	return nil, h.Stop()
}

func pauseCommand(env *env, args []dub.Node) (dub.Node, error) {
	h, err := env.handle(args[0])
	if err != nil {
		return nil, err
	}
	return nil, h.Pause()
}

func resumeCommand(env *env, args []dub.Node) (dub.Node, error) {
	h, err := env.handle(args[0])
	if err != nil {
		return nil, err
	}
	return nil, h.Resume()
}

func listenerCommand(env *env, args []dub.Node) (dub.Node, error) {
	if len(args) > 4 {
		return nil, fmt.Errorf("wrong number of arguments: want 3 or 4, got %v", len(args))
	}
	var x, y, z, yaw float64
	if err := readArgs(args[:3], &x, &y, &z); err != nil {
		return nil, err
	}
	if len(args) == 4 {
		if err := readArgs(args[3:], &yaw); err != nil {
			return nil, err
		}
	}
	env.scene.SetListener(audio.Pose{
		Position: mgl32.Vec3{float32(x), float32(y), float32(z)},
		Rotation: audio.Yaw(mgl32.DegToRad(float32(yaw))),
	})
	return nil, nil
}

func listCommand(env *env, args []dub.Node) (dub.Node, error) {
	var lines []string
	for _, h := range env.scene.Handles() {
		env.handles[h.ID()] = h
		line := h.String()
		if paused, err := h.Paused(); err == nil && paused {
			line += " paused"
		}
		if ctl, err := audio.Control[*audio.MotionControl](h); err == nil {
			if pos, vel, err := ctl.Position(); err == nil {
				line += fmt.Sprintf(" at %s", formatVec(pos))
				if vel.Len() > 0 {
					line += fmt.Sprintf(" moving %s", formatVec(vel))
				}
			}
		}
		lines = append(lines, line)
	}
	stats := env.scene.Stats()
	lines = append(lines, fmt.Sprintf("live: %d, played: %d, reclaimed: %d", stats.Live, stats.Played, stats.Reclaimed))
	return dub.String(strings.Join(lines, "\n")), nil
}

func formatVec(v mgl32.Vec3) string {
	return fmt.Sprintf("(%.2f %.2f %.2f)", v[0], v[1], v[2])
}

func collectCommand(env *env, args []dub.Node) (dub.Node, error) {
	return dub.Int(env.scene.Collect()), nil
}

func helpCommand(env *env, args []dub.Node) (dub.Node, error) {
	lines := make([]string, len(commands))
	for i, cmd := range commands {
		lines[i] = cmd.help
	}
	return dub.String(strings.Join(lines, "\n")), nil
}

func (e *env) sound(name string) (*sound, error) {
	s, ok := e.sounds[name]
	if !ok {
		return nil, fmt.Errorf("unknown sound: %s", name)
	}
	return s, nil
}

// track remembers h so later commands can refer to it by index.
func (e *env) track(h audio.Handle, err error) (dub.Node, error) {
	if err != nil {
		return nil, err
	}
	e.handles[h.ID()] = h
	return dub.Int(h.ID()), nil
}

func (e *env) handle(arg dub.Node) (audio.Handle, error) {
	var id int
	if err := readArgs([]dub.Node{arg}, &id); err != nil {
		return audio.Handle{}, err
	}
	h, ok := e.handles[id]
	if !ok {
		return h, fmt.Errorf("no sound with id %d", id)
	}
	return h, nil
}

func control[C any](env *env, arg dub.Node) (C, error) {
	h, err := env.handle(arg)
	if err != nil {
		var zero C
		return zero, err
	}
	return audio.Control[C](h)
}

// readMotion reads a position optionally followed by a velocity.
func readMotion(args []dub.Node) (pos, vel mgl32.Vec3, err error) {
	if len(args) != 3 && len(args) != 6 {
		return pos, vel, fmt.Errorf("expected a position and an optional velocity, got %d numbers", len(args))
	}
	for i, arg := range args {
		var v float64
		if err := readArgs([]dub.Node{arg}, &v); err != nil {
			return pos, vel, err
		}
		if i < 3 {
			pos[i] = float32(v)
		} else {
			vel[i-3] = float32(v)
		}
	}
	return pos, vel, nil
}

func readArgs(args []dub.Node, slots ...interface{}) error {
	if len(args) != len(slots) {
		return errors.New("not enough arguments")
	}
	for n, arg := range args {
		dest := slots[n]
		switch p := dest.(type) {
		case *string:
			switch s := arg.(type) {
			case dub.String:
				*p = string(s)
			case dub.Identifier:
				*p = string(s)
			default:
				return fmt.Errorf("argument error: expected a string or identifier")
			}
		case *float64:
			v, ok := dub.Number(arg)
			if !ok {
				return fmt.Errorf("argument error: expected a number")
			}
			*p = v
		case *int:
			v, ok := dub.Number(arg)
			if !ok || v != math.Trunc(v) {
				return fmt.Errorf("argument error: expected an integer")
			}
			*p = int(v)
		default:
			panic("readArgs: unhandled destination type: " + fmt.Sprint(p))
		}
	}
	return nil
}
