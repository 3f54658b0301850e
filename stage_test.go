package gooey

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/cbegin/gooey-go/internal/voice"
)

const testRate = 48000

// constVoice always outputs the same level.
type constVoice struct{ level float64 }

func (c *constVoice) Trigger()       {}
func (c *constVoice) Release()       {}
func (c *constVoice) Tick() float64  { return c.level }
func (c *constVoice) IsActive() bool { return true }

func newTestStage(t *testing.T, opts ...Option) *Stage {
	t.Helper()
	s, err := New(testRate, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

// dryStage bypasses the master bus so the tests see the raw mix.
func dryStage(t *testing.T, opts ...Option) *Stage {
	s := newTestStage(t, opts...)
	s.Effects().EQ.SetEnabled(false)
	s.Effects().Limiter.SetEnabled(false)
	return s
}

func TestNewRejectsBadSampleRate(t *testing.T) {
	for _, sr := range []int{0, -44100} {
		if _, err := New(sr); !errors.Is(err, ErrInvalidSampleRate) {
			t.Fatalf("New(%d) err = %v, want ErrInvalidSampleRate", sr, err)
		}
	}
}

func TestStageSilentWhenIdle(t *testing.T) {
	s := newTestStage(t)
	for i := 0; i < 4800; i++ {
		if v := s.Tick(); v != 0 {
			t.Fatalf("sample %d = %v, want 0", i, v)
		}
	}
	if got, want := s.Now(), 0.1; math.Abs(got-want) > 1e-12 {
		t.Fatalf("Now = %v, want %v", got, want)
	}
}

func TestStageMixSaturation(t *testing.T) {
	tests := []struct {
		name   string
		volume float64
		sat    float64
	}{
		{"unity", 1, 0},
		{"half volume", 0.5, 0},
		{"saturated", 0.8, 0.25},
		{"full drive", 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := dryStage(t, WithMasterVolume(tt.volume), WithSaturation(tt.sat))
			s.AddInstrument(&constVoice{level: 0.3})
			s.AddInstrument(&constVoice{level: 0.2})
			got := s.Tick()
			want := math.Tanh(0.5 * tt.volume * (1 + 4*tt.sat))
			if math.Abs(got-want) > 1e-12 {
				t.Fatalf("Tick = %v, want %v", got, want)
			}
			if got != Saturate(0.5, tt.volume, tt.sat) {
				t.Fatalf("Tick disagrees with Saturate")
			}
		})
	}
}

func TestMasterClamps(t *testing.T) {
	s := newTestStage(t)
	s.SetMasterVolume(3)
	s.SetSaturation(-1)
	if s.MasterVolume() != 1 || s.Saturation() != 0 {
		t.Fatalf("volume=%v saturation=%v, want 1 and 0", s.MasterVolume(), s.Saturation())
	}
}

func TestDisabledInstrumentExcluded(t *testing.T) {
	s := dryStage(t)
	a := s.AddInstrument(&constVoice{level: 0.3})
	s.AddInstrument(&constVoice{level: 0.2})
	if err := s.SetInstrumentEnabled(a, false); err != nil {
		t.Fatalf("SetInstrumentEnabled: %v", err)
	}
	if got, want := s.Tick(), math.Tanh(0.2); math.Abs(got-want) > 1e-12 {
		t.Fatalf("Tick = %v, want %v", got, want)
	}
	on, err := s.IsInstrumentEnabled(a)
	if err != nil || on {
		t.Fatalf("IsInstrumentEnabled = %v, %v", on, err)
	}
}

func TestSlotIndicesStable(t *testing.T) {
	s := newTestStage(t)
	for want := 0; want < 3; want++ {
		if got := s.AddOscillator(220*float64(want+1), Sine); got != want {
			t.Fatalf("AddOscillator = %d, want %d", got, want)
		}
	}
	if err := s.RemoveInstrument(1); err != nil {
		t.Fatalf("RemoveInstrument: %v", err)
	}
	if got := s.AddOscillator(880, Saw); got != 3 {
		t.Fatalf("AddOscillator after remove = %d, want 3", got)
	}
	if err := s.TriggerInstrument(1); !errors.Is(err, ErrRemovedSlot) {
		t.Fatalf("TriggerInstrument(1) err = %v, want ErrRemovedSlot", err)
	}
	if err := s.TriggerInstrument(9); !errors.Is(err, ErrInvalidSlot) {
		t.Fatalf("TriggerInstrument(9) err = %v, want ErrInvalidSlot", err)
	}
	if err := s.SetInstrumentVolume(-1, 0.5); !errors.Is(err, ErrInvalidSlot) {
		t.Fatalf("SetInstrumentVolume(-1) err = %v, want ErrInvalidSlot", err)
	}
	f, err := s.InstrumentFrequency(2)
	if err != nil || f != 660 {
		t.Fatalf("InstrumentFrequency(2) = %v, %v; want 660", f, err)
	}
	if s.NumInstruments() != 4 {
		t.Fatalf("NumInstruments = %d, want 4", s.NumInstruments())
	}
}

func TestInstrumentNotComposable(t *testing.T) {
	s := newTestStage(t)
	i := s.AddInstrument(&constVoice{})
	if err := s.SetInstrumentFrequency(i, 440); !errors.Is(err, ErrNotComposable) {
		t.Fatalf("err = %v, want ErrNotComposable", err)
	}
}

func TestInstrumentSetters(t *testing.T) {
	s := newTestStage(t)
	i := s.AddOscillator(440, Sine)
	if err := s.SetInstrumentWaveform(i, Square); err != nil {
		t.Fatal(err)
	}
	if err := s.SetInstrumentModulatorFrequency(i, 330); err != nil {
		t.Fatal(err)
	}
	adsr := ADSRConfig{Attack: 0.002, Decay: 0.05, Sustain: 0.5, Release: 0.1}
	if err := s.SetInstrumentADSR(i, adsr); err != nil {
		t.Fatal(err)
	}
	if w, _ := s.InstrumentWaveform(i); w != Square {
		t.Fatalf("waveform = %v, want Square", w)
	}
	if m, _ := s.InstrumentModulatorFrequency(i); m != 330 {
		t.Fatalf("modulator = %v, want 330", m)
	}
	if got, _ := s.InstrumentADSR(i); got != adsr {
		t.Fatalf("ADSR = %+v, want %+v", got, adsr)
	}
	n, err := s.AddInstrumentOscillator(i, 660, Triangle)
	if err != nil || n != 1 {
		t.Fatalf("AddInstrumentOscillator = %d, %v; want 1", n, err)
	}
}

func TestInstrumentOscillatorAccessors(t *testing.T) {
	s := newTestStage(t)
	i := s.AddOscillator(220, Sine)
	n, err := s.AddInstrumentOscillator(i, 330, Saw)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetInstrumentOscillatorFrequency(i, n, 550); err != nil {
		t.Fatal(err)
	}
	if err := s.SetInstrumentOscillatorModulatorFrequency(i, n, 110); err != nil {
		t.Fatal(err)
	}
	if err := s.SetInstrumentOscillatorWaveform(i, n, RingMod); err != nil {
		t.Fatal(err)
	}
	if err := s.SetInstrumentOscillatorLevel(i, n, 0.4); err != nil {
		t.Fatal(err)
	}
	if f, _ := s.InstrumentOscillatorFrequency(i, n); f != 550 {
		t.Fatalf("frequency = %v, want 550", f)
	}
	if m, _ := s.InstrumentOscillatorModulatorFrequency(i, n); m != 110 {
		t.Fatalf("modulator = %v, want 110", m)
	}
	if w, _ := s.InstrumentOscillatorWaveform(i, n); w != RingMod {
		t.Fatalf("waveform = %v, want ringmod", w)
	}
	if l, _ := s.InstrumentOscillatorLevel(i, n); l != 0.4 {
		t.Fatalf("level = %v, want 0.4", l)
	}
	if f, _ := s.InstrumentFrequency(i); f != 220 {
		t.Fatalf("first oscillator changed: %v", f)
	}
	if count, _ := s.InstrumentOscillators(i); count != 2 {
		t.Fatalf("oscillators = %d, want 2", count)
	}
	if err := s.SetInstrumentOscillatorLevel(i, 5, 1); !errors.Is(err, ErrInvalidOscillator) {
		t.Fatalf("err = %v, want ErrInvalidOscillator", err)
	}
	if err := s.SetInstrumentOscillatorLevel(9, 0, 1); !errors.Is(err, ErrInvalidSlot) {
		t.Fatalf("err = %v, want ErrInvalidSlot", err)
	}
}

func TestConcurrentAddOscillatorSeeds(t *testing.T) {
	s := newTestStage(t)
	const n = 16
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AddOscillator(110, Noise)
		}()
	}
	wg.Wait()
	seen := make(map[uint32]int)
	for i := 0; i < n; i++ {
		v, err := s.Instrument(i)
		if err != nil {
			t.Fatal(err)
		}
		seed := v.(*voice.Composable).Seed()
		if prev, ok := seen[seed]; ok {
			t.Fatalf("slots %d and %d share seed %d", prev, i, seed)
		}
		seen[seed] = i
		if seed != s.instrumentSeed(i) {
			t.Fatalf("slot %d seed = %d, want %d", i, seed, s.instrumentSeed(i))
		}
	}
}

func TestTriggerAllReleaseAll(t *testing.T) {
	s := newTestStage(t)
	a := s.AddOscillator(220, Sine)
	b := s.AddOscillator(330, Sine)
	s.TriggerAll()
	for i := 0; i < 480; i++ {
		s.Tick()
	}
	for _, idx := range []int{a, b} {
		if on, _ := s.IsInstrumentActive(idx); !on {
			t.Fatalf("slot %d not active after TriggerAll", idx)
		}
	}
	s.ReleaseAll()
	// default release is 0.3 s
	for i := 0; i < testRate; i++ {
		s.Tick()
	}
	for _, idx := range []int{a, b} {
		if on, _ := s.IsInstrumentActive(idx); on {
			t.Fatalf("slot %d still active after ReleaseAll", idx)
		}
	}
}

func TestUnknownPresetKeepsConfig(t *testing.T) {
	s := newTestStage(t)
	if err := s.LoadKickPreset("deep"); err != nil {
		t.Fatalf("LoadKickPreset(deep): %v", err)
	}
	before := s.KickConfig()
	if err := s.LoadKickPreset("nope"); !errors.Is(err, ErrUnknownPreset) {
		t.Fatalf("err = %v, want ErrUnknownPreset", err)
	}
	if s.KickConfig() != before {
		t.Fatalf("config changed after unknown preset")
	}
	for _, load := range []func(string) error{s.LoadSnarePreset, s.LoadHiHatPreset, s.LoadTomPreset} {
		if err := load("nope"); !errors.Is(err, ErrUnknownPreset) {
			t.Fatalf("err = %v, want ErrUnknownPreset", err)
		}
	}
}

func TestTriggerKickProducesSound(t *testing.T) {
	s := newTestStage(t)
	s.TriggerKick()
	var peak float64
	for i := 0; i < testRate/10; i++ {
		peak = math.Max(peak, math.Abs(s.Tick()))
	}
	if peak < 0.1 {
		t.Fatalf("kick peak = %v, want audible", peak)
	}
}

func TestDisabledLaneSilent(t *testing.T) {
	s := newTestStage(t)
	if err := s.SetLaneEnabled(LaneKick, false); err != nil {
		t.Fatal(err)
	}
	s.TriggerKick()
	for i := 0; i < 4800; i++ {
		if v := s.Tick(); v != 0 {
			t.Fatalf("sample %d = %v from a disabled kick", i, v)
		}
	}
	if !s.Kick().IsActive() {
		t.Fatalf("disabled kick should keep running")
	}
	if err := s.TriggerLane(7); !errors.Is(err, ErrInvalidLane) {
		t.Fatalf("TriggerLane(7) err = %v", err)
	}
}

func TestSequencerFiresKickAtStepBoundaries(t *testing.T) {
	s := newTestStage(t, WithBPM(120))
	s.ClearAll()
	if err := s.SetStep(LaneKick, 0, true); err != nil {
		t.Fatal(err)
	}
	s.Play()
	s.Tick()
	if !s.Kick().IsActive() {
		t.Fatalf("kick not triggered on the first sample")
	}
	if s.CurrentStep() != 1 {
		t.Fatalf("CurrentStep = %d, want 1", s.CurrentStep())
	}
	// 120 BPM sixteenths are 0.125 s = 6000 samples.
	for i := 1; i < 6000; i++ {
		s.Tick()
	}
	if s.CurrentStep() != 1 {
		t.Fatalf("CurrentStep = %d before the boundary, want 1", s.CurrentStep())
	}
	s.Tick()
	if s.CurrentStep() != 2 {
		t.Fatalf("CurrentStep = %d at 0.125 s, want 2", s.CurrentStep())
	}
}

func TestSequencerInvalidCell(t *testing.T) {
	s := newTestStage(t)
	if err := s.SetStep(4, 0, true); !errors.Is(err, ErrInvalidLane) {
		t.Fatalf("err = %v, want ErrInvalidLane", err)
	}
	if err := s.SetStep(0, 16, true); !errors.Is(err, ErrInvalidStep) {
		t.Fatalf("err = %v, want ErrInvalidStep", err)
	}
}

func TestLFOModulatesHiHatCutoff(t *testing.T) {
	s := newTestStage(t)
	l := s.LFO()
	l.SetWaveform(Square)
	l.SetDepth(1)
	l.SetEnabled(true)
	s.Tick()
	if got := s.HiHat().CutoffModulation(); got != 2 {
		t.Fatalf("cutoff modulation = %v, want 2 octaves", got)
	}
	l.SetEnabled(false)
	s.Tick()
	if got := s.HiHat().CutoffModulation(); got != 0 {
		t.Fatalf("cutoff modulation after disable = %v, want 0", got)
	}
}

func TestProcessWritesStereo(t *testing.T) {
	s := newTestStage(t)
	s.TriggerSnare()
	buf := make([]float32, 512)
	s.Process(buf)
	var nonzero bool
	for i := 0; i < len(buf); i += 2 {
		if buf[i] != buf[i+1] {
			t.Fatalf("frame %d: left %v != right %v", i/2, buf[i], buf[i+1])
		}
		nonzero = nonzero || buf[i] != 0
	}
	if !nonzero {
		t.Fatalf("snare produced silence")
	}
}

func TestConcurrentControlWhileRendering(t *testing.T) {
	s := newTestStage(t)
	s.SetDefaultPatterns()
	s.Play()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			s.Kick().SetFrequency(40 + float64(i%50))
			s.HiHat().SetOpen(i%2 == 0)
			_ = s.SetStep(LaneTom, i%Steps, i%3 == 0)
			s.SetBPM(90 + float64(i%60))
			if i%50 == 0 {
				s.AddOscillator(110, Triangle)
			}
			s.TriggerAll()
		}
	}()
	buf := make([]float32, 2*testRate/10)
	s.Process(buf)
	wg.Wait()
	for i, v := range buf {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			t.Fatalf("sample %d = %v", i, v)
		}
	}
}

func BenchmarkStageTick(b *testing.B) {
	s, err := New(testRate)
	if err != nil {
		b.Fatal(err)
	}
	s.SetDefaultPatterns()
	s.AddOscillator(220, Saw)
	s.Play()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Tick()
	}
}
