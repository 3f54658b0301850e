package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/pflag"

	"github.com/cbegin/gooey-go"
	"github.com/cbegin/gooey-go/internal/script"
)

type options struct {
	sampleRate int
	bpm        float64
	volume     float64
	seconds    float64
	out        string
	backend    string
	scriptPath string
	kick       string
	snare      string
	hihat      string
	tom        string
	empty      bool
	keys       bool
	dump       bool
	verbose    bool
}

var logger *log.Logger

func main() {
	logger = log.New(os.Stderr, "", log.Ldate|log.Ltime)

	var o options
	pflag.IntVar(&o.sampleRate, "sample-rate", 48000, "output sample rate")
	pflag.Float64Var(&o.bpm, "bpm", 120, "sequencer tempo (20-300)")
	pflag.Float64Var(&o.volume, "volume", 1, "master volume (0-1)")
	pflag.Float64VarP(&o.seconds, "seconds", "d", 0, "play or render for N seconds (0 = until interrupted; 4 when rendering)")
	pflag.StringVarP(&o.out, "out", "o", "", "render offline to this WAV file instead of playing")
	pflag.StringVar(&o.backend, "backend", "ebiten", "audio backend: ebiten|oto")
	pflag.StringVarP(&o.scriptPath, "script", "s", "", "Lua script to run before playback")
	pflag.StringVar(&o.kick, "kick", "", "kick preset")
	pflag.StringVar(&o.snare, "snare", "", "snare preset")
	pflag.StringVar(&o.hihat, "hihat", "", "hi-hat preset")
	pflag.StringVar(&o.tom, "tom", "", "tom preset")
	pflag.BoolVar(&o.empty, "empty", false, "start with an empty pattern")
	pflag.BoolVarP(&o.keys, "keys", "k", false, "play the drums from the keyboard (k s h t, space toggles, q quits)")
	pflag.BoolVar(&o.dump, "dump", false, "print the voice configuration before starting")
	pflag.BoolVarP(&o.verbose, "verbose", "v", false, "log engine events to stderr")
	pflag.Parse()

	if err := run(o); err != nil {
		logger.Fatal(err)
	}
}

func run(o options) error {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	engineLog := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	stage, err := gooey.New(o.sampleRate,
		gooey.WithLogger(engineLog),
		gooey.WithBPM(o.bpm),
		gooey.WithMasterVolume(o.volume),
	)
	if err != nil {
		return err
	}
	if err := loadPresets(stage, o); err != nil {
		return err
	}
	if !o.empty {
		stage.SetDefaultPatterns()
	}
	stage.Play()

	if o.scriptPath != "" {
		e := script.New(stage, engineLog)
		err := e.RunFile(o.scriptPath)
		e.Close()
		if err != nil {
			return err
		}
	}

	if o.dump {
		spew.Dump(stage.KickConfig(), stage.SnareConfig(), stage.HiHatConfig(), stage.TomConfig())
		fmt.Printf("bpm=%.1f playing=%v instruments=%d\n", stage.BPM(), stage.IsPlaying(), stage.NumInstruments())
	}

	if o.out != "" {
		return render(stage, o)
	}
	return play(stage, o)
}

func loadPresets(stage *gooey.Stage, o options) error {
	for _, p := range []struct {
		name string
		load func(string) error
	}{
		{o.kick, stage.LoadKickPreset},
		{o.snare, stage.LoadSnarePreset},
		{o.hihat, stage.LoadHiHatPreset},
		{o.tom, stage.LoadTomPreset},
	} {
		if p.name == "" {
			continue
		}
		if err := p.load(p.name); err != nil {
			return err
		}
	}
	return nil
}

func render(stage *gooey.Stage, o options) error {
	seconds := o.seconds
	if seconds <= 0 {
		seconds = 4
	}
	samples := gooey.RenderSamples(stage, seconds)
	f, err := os.Create(o.out)
	if err != nil {
		return err
	}
	if err := gooey.WriteWAV(f, samples, o.sampleRate, 2); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	logger.Printf("wrote %s (%.2fs at %d Hz)", o.out, seconds, o.sampleRate)
	return nil
}

func play(stage *gooey.Stage, o options) error {
	out, err := gooey.NewOutput(stage, gooey.WithBackend(gooey.Backend(o.backend)))
	if err != nil {
		return err
	}
	if err := out.Play(); err != nil {
		return err
	}
	defer out.Stop()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	if o.seconds > 0 {
		var timeout context.CancelFunc
		ctx, timeout = context.WithTimeout(ctx, time.Duration(o.seconds*float64(time.Second)))
		defer timeout()
	}

	if o.keys {
		return runKeys(ctx, stage)
	}
	<-ctx.Done()
	return nil
}
