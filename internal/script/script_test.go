package script

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	gooey "github.com/cbegin/gooey-go"
	"github.com/cbegin/gooey-go/internal/lfo"
	"github.com/cbegin/gooey-go/internal/osc"
	"github.com/cbegin/gooey-go/internal/sequencer"
	"github.com/cbegin/gooey-go/internal/voice"
)

func newStage(t *testing.T) *gooey.Stage {
	t.Helper()
	s, err := gooey.New(48000)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestRunConfiguresStage(t *testing.T) {
	s := newStage(t)
	src := `
		preset("kick", "deep")
		set("snare", "decay", 0.5)
		set("hihat", "open", true)
		clear()
		step("kick", 0, true)
		step(1, 4)
		bpm(140)
		lfo("enabled", true)
		lfo("rate", "1/8")
		lfo("waveform", "triangle")
		master("volume", 0.5)
		eq(1, 1.5)
		fx("reverb", true)
	`
	if err := Run(s, src); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := s.KickConfig(); got != voice.KickPresets["deep"] {
		t.Fatalf("kick config = %+v, want deep preset", got)
	}
	if s.Snare().Decay() != 0.5 {
		t.Fatalf("snare decay = %v", s.Snare().Decay())
	}
	if !s.HiHat().Open() {
		t.Fatalf("hihat not open")
	}
	if on, _ := s.Step(sequencer.LaneKick, 0); !on {
		t.Fatalf("kick step 0 not set")
	}
	if on, _ := s.Step(sequencer.LaneSnare, 4); !on {
		t.Fatalf("snare step 4 not set")
	}
	if on, _ := s.Step(sequencer.LaneHiHat, 0); on {
		t.Fatalf("clear() left hihat pattern")
	}
	if s.BPM() != 140 {
		t.Fatalf("bpm = %v", s.BPM())
	}
	l := s.LFO()
	if !l.Enabled() || l.Rate() != lfo.Eighth || l.Waveform() != osc.Triangle {
		t.Fatalf("lfo = enabled %v rate %v waveform %v", l.Enabled(), l.Rate(), l.Waveform())
	}
	if s.MasterVolume() != 0.5 || s.EQBand(0) != 1.5 || !s.Effects().Reverb.Enabled() {
		t.Fatalf("master settings not applied")
	}
}

func TestRunOscillatorSlots(t *testing.T) {
	s := newStage(t)
	src := `
		local a = osc(220)
		local b = osc(330, "saw")
		set(b, "attack", 0.05)
		set(b, "sustain", 0.4)
		set(b, "waveform", "square")
		set(a, "volume", 0.25)
		trigger(b)
		release(b)
	`
	if err := Run(s, src); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if s.NumInstruments() != 2 {
		t.Fatalf("NumInstruments = %d, want 2", s.NumInstruments())
	}
	adsr, _ := s.InstrumentADSR(1)
	if adsr.Attack != 0.05 || adsr.Sustain != 0.4 {
		t.Fatalf("adsr = %+v", adsr)
	}
	if w, _ := s.InstrumentWaveform(1); w != osc.Square {
		t.Fatalf("waveform = %v", w)
	}
	if v, _ := s.InstrumentVolume(0); v != 0.25 {
		t.Fatalf("volume = %v", v)
	}
}

func TestRunOscillatorPartials(t *testing.T) {
	s := newStage(t)
	src := `
		local a = osc(220)
		local p = partial(a, 330, "saw")
		set(a, "frequency", 495, p)
		set(a, "level", 0.3, p)
		set(a, "waveform", "ringmod", p)
		set(a, "mod_frequency", 60, p)
		set(a, "level", 0.8)
	`
	if err := Run(s, src); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if f, _ := s.InstrumentOscillatorFrequency(0, 1); f != 495 {
		t.Fatalf("partial frequency = %v", f)
	}
	if l, _ := s.InstrumentOscillatorLevel(0, 1); l != 0.3 {
		t.Fatalf("partial level = %v", l)
	}
	if w, _ := s.InstrumentOscillatorWaveform(0, 1); w != osc.RingMod {
		t.Fatalf("partial waveform = %v", w)
	}
	if m, _ := s.InstrumentOscillatorModulatorFrequency(0, 1); m != 60 {
		t.Fatalf("partial modulator = %v", m)
	}
	if l, _ := s.InstrumentOscillatorLevel(0, 0); l != 0.8 {
		t.Fatalf("first oscillator level = %v", l)
	}
	if f, _ := s.InstrumentFrequency(0); f != 220 {
		t.Fatalf("first oscillator frequency = %v", f)
	}
	if err := Run(s, `set(0, "level", 1, 4)`); !errors.Is(err, voice.ErrInvalidOscillator) {
		t.Fatalf("err = %v, want ErrInvalidOscillator", err)
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"unknown preset", `preset("kick", "nope")`, voice.ErrUnknownPreset},
		{"bad slot", `trigger(5)`, gooey.ErrInvalidSlot},
		{"bad lane name", `step("cowbell", 0, true)`, sequencer.ErrInvalidLane},
		{"bad step", `step("kick", 16, true)`, sequencer.ErrInvalidStep},
		{"unknown field", `set("kick", "wobble", 1)`, ErrUnknownField},
		{"bad waveform", `osc(440, "organ")`, voice.ErrInvalidOscillator},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Run(newStage(t), tt.src)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRunSyntaxError(t *testing.T) {
	if err := Run(newStage(t), "step(("); err == nil {
		t.Fatalf("expected a syntax error")
	}
}

func TestLogRoutesToLogger(t *testing.T) {
	var buf bytes.Buffer
	e := New(newStage(t), slog.New(slog.NewTextHandler(&buf, nil)))
	defer e.Close()
	if err := e.Run(`log("hello", 42)`); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(buf.String(), "hello 42") {
		t.Fatalf("log output = %q", buf.String())
	}
}

func TestTransport(t *testing.T) {
	s := newStage(t)
	if err := Run(s, `play()`); err != nil {
		t.Fatal(err)
	}
	if !s.IsPlaying() {
		t.Fatalf("play() did not start the sequencer")
	}
	if err := Run(s, `stop() reset()`); err != nil {
		t.Fatal(err)
	}
	if s.IsPlaying() || s.CurrentStep() != 0 {
		t.Fatalf("playing=%v step=%d", s.IsPlaying(), s.CurrentStep())
	}
}
