package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/mrdg/doppler/asset"
	"github.com/mrdg/doppler/audio"
	"github.com/mrdg/doppler/dub"
)

type env struct {
	scene   *audio.SpatialScene
	assets  *asset.Registry
	sounds  map[string]*sound
	handles map[int]audio.Handle
}

// sound is a loaded file, converted on first use.
type sound struct {
	name   string
	block  *asset.Block
	mono   *audio.Frames[audio.Mono]
	stereo *audio.Frames[audio.Stereo]
}

func (s *sound) monoFrames() *audio.Frames[audio.Mono] {
	if s.mono == nil {
		s.mono = s.block.Mono()
	}
	return s.mono
}

func (s *sound) stereoFrames() *audio.Frames[audio.Stereo] {
	if s.stereo == nil {
		s.stereo = s.block.Stereo()
	}
	return s.stereo
}

func newEnv(scene *audio.SpatialScene, assets *asset.Registry) *env {
	return &env{
		scene:   scene,
		assets:  assets,
		sounds:  make(map[string]*sound),
		handles: make(map[int]audio.Handle),
	}
}

// eval runs every command on a line and returns their results.
func (e *env) eval(input string) ([]dub.Node, error) {
	cmds, err := dub.ParseLine(input)
	if err != nil {
		return nil, err
	}
	var results []dub.Node
	for _, cmd := range cmds {
		result, err := e.exec(cmd)
		if err != nil {
			return results, err
		}
		if result != nil {
			results = append(results, result)
		}
	}
	return results, nil
}

func (e *env) exec(command dub.Command) (dub.Node, error) {
	name := string(command.Name)
	for _, cmd := range commands {
		if name != cmd.name {
			continue
		}
		if cmd.arity < 0 {
			arity := -cmd.arity
			if len(command.Args) < arity {
				return nil, fmt.Errorf("%s: wrong number of arguments: need at least %v, got %v",
					cmd.name, arity, len(command.Args))
			}
		} else if len(command.Args) != cmd.arity {
			return nil, fmt.Errorf("%s: wrong number of arguments: want %v, got %v",
				cmd.name, cmd.arity, len(command.Args))
		}
		result, err := cmd.run(e, command.Args)
		if err != nil {
			return result, fmt.Errorf("%s error: %w", cmd.name, err)
		}
		return result, nil
	}
	return nil, fmt.Errorf("unknown command: %s", name)
}

// runScript evaluates a file of commands, stopping at the first error.
func (e *env) runScript(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return e.runLines(f)
}

func (e *env) runLines(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if _, err := e.eval(line); err != nil {
			return fmt.Errorf("line %d: %w", n, err)
		}
	}
	return scanner.Err()
}

func repl(env *env) error {
	rl, err := readline.New("> ")
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
			return nil
		}
		if err != nil {
			fmt.Println(err)
			continue
		}
		if len(strings.TrimSpace(line)) == 0 {
			continue
		}
		results, err := env.eval(line)
		for _, result := range results {
			fmt.Println(dub.Format(result))
		}
		if err != nil {
			fmt.Println(err)
		}
	}
}
