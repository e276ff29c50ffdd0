package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/mrdg/doppler/asset"
	"github.com/mrdg/doppler/audio"
	"github.com/mrdg/doppler/device"
)

type output interface {
	Start() error
	Close() error
}

func main() {
	cfg, err := loadConfig(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatal(err)
	}

	scene, mixer := audio.NewSpatialScene(cfg.spatial())
	env := newEnv(scene, asset.Default())

	if cfg.run != "" {
		if err := env.runScript(cfg.run); err != nil {
			log.Fatalf("%s: %v", cfg.run, err)
		}
	}

	if cfg.bounce != "" {
		if err := bounce(cfg, mixer); err != nil {
			log.Fatal(err)
		}
		return
	}

	out, err := openOutput(cfg, mixer)
	if err != nil {
		log.Fatal(err)
	}
	if out != nil {
		defer out.Close()
		if err := out.Start(); err != nil {
			log.Fatal(err)
		}
	}

	if err := repl(env); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func openOutput(cfg config, r device.Renderer) (output, error) {
	switch cfg.backend {
	case "portaudio":
		return device.NewPortAudio(r, cfg.rate, cfg.block)
	case "oto":
		return device.NewOto(r, cfg.rate, cfg.block)
	}
	log.Printf("no audio output, scene will not advance")
	return nil, nil
}

func bounce(cfg config, r device.Renderer) error {
	f, err := os.Create(cfg.bounce)
	if err != nil {
		return err
	}
	frames := int(cfg.duration * float64(cfg.rate))
	if err := device.Bounce(f, r, cfg.rate, frames, cfg.block); err != nil {
		f.Close()
		return err
	}
	log.Printf("wrote %.2fs to %s", cfg.duration, cfg.bounce)
	return f.Close()
}
