package effects

import (
	"math"
	"testing"
)

const sr = 44100

func TestDisabledEffectsPassThrough(t *testing.T) {
	cases := []struct {
		name string
		fx   Effector
	}{
		{"distortion", NewDistortion(sr, DistortionPresets["aggressive"])},
		{"chorus", NewChorus(sr, 15, 0.5, 3, 1, 1)},
		{"delay", NewDelay(sr, 100, 0.5, 1)},
		{"reverb", NewReverb(sr, 0.5, 0.7, 1)},
		{"compressor", NewCompressor(sr, -30, 10, 1, 50, 6)},
		{"limiter", NewLimiter(0.1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for i := 0; i < 100; i++ {
				x := math.Sin(float64(i) * 0.3)
				if y := tc.fx.Process(x); y != x {
					t.Fatalf("sample %d: got %f, want %f", i, y, x)
				}
			}
		})
	}
}

func TestDelayProducesOutput(t *testing.T) {
	d := NewDelay(sr, 100, 0.5, 0.5)
	d.SetEnabled(true)
	// Feed a pulse and check delayed output appears
	d.Process(1.0)
	for i := 0; i < 4409; i++ { // ~100ms at 44100Hz
		d.Process(0)
	}
	if y := d.Process(0); math.Abs(y) < 0.01 {
		t.Errorf("expected delayed output, got %f", y)
	}
}

func TestDelayTimeChangeTakesEffect(t *testing.T) {
	d := NewDelay(sr, 100, 0, 1)
	d.SetEnabled(true)
	d.SetTime(10)
	d.Process(1)
	n := int(0.01 * sr)
	for i := 1; i < n; i++ {
		if y := d.Process(0); y != 0 {
			t.Fatalf("echo arrived early at %d", i)
		}
	}
	if y := d.Process(0); y != 1 {
		t.Fatalf("echo = %f, want 1", y)
	}
}

func TestReverbProducesOutput(t *testing.T) {
	r := NewReverb(sr, 0.5, 0.7, 0.5)
	r.SetEnabled(true)
	r.Process(1.0)
	var maxOut float64
	for i := 0; i < 10000; i++ {
		maxOut = math.Max(maxOut, r.Process(0))
	}
	if maxOut < 0.001 {
		t.Error("expected reverb tail")
	}
}

func TestChorusProducesWetSignal(t *testing.T) {
	c := NewChorus(sr, 10, 0, 2, 1, 1)
	c.SetEnabled(true)
	var energy float64
	for i := 0; i < sr/10; i++ {
		y := c.Process(math.Sin(float64(i) * 0.05))
		energy += y * y
	}
	if energy == 0 {
		t.Fatal("chorus wet path silent")
	}
}

func TestDistortionClips(t *testing.T) {
	d := NewDistortion(sr, DistortionConfig{Drive: 1, OutputGain: 1, PreHighPass: 20, PostLowPass: 20000})
	d.SetEnabled(true)
	var peak float64
	for i := 0; i < 1000; i++ {
		y := d.Process(5 * math.Sin(float64(i)*0.1))
		peak = math.Max(peak, math.Abs(y))
	}
	if peak > 1.0 {
		t.Errorf("distortion output should be bounded, peak %f", peak)
	}
	if peak < 0.01 {
		t.Error("expected non-zero distortion output")
	}
}

func TestDistortionFiltersFollowConfig(t *testing.T) {
	d := NewDistortion(sr, DistortionConfig{Drive: 0, OutputGain: 1, PreHighPass: 200, PostLowPass: 20000})
	d.SetEnabled(true)
	var y float64
	for i := 0; i < sr/4; i++ {
		y = d.Process(0.5)
	}
	if math.Abs(y) > 1e-3 {
		t.Fatalf("pre high-pass left DC %f", y)
	}

	d.Configure(DistortionConfig{Drive: 0, OutputGain: 1, PreHighPass: 20, PostLowPass: 100})
	d.Reset()
	var hi float64
	for i := 0; i < sr/4; i++ {
		y = d.Process(math.Sin(2 * math.Pi * 8000 * float64(i) / sr))
		if i > sr/8 {
			hi = math.Max(hi, math.Abs(y))
		}
	}
	if hi > 0.05 {
		t.Fatalf("post low-pass at 100Hz passed 8kHz at %f", hi)
	}
}

func TestDistortionPresets(t *testing.T) {
	d := NewDistortion(sr, DistortionPresets["default"])
	if err := d.LoadPreset("warm"); err != nil {
		t.Fatal(err)
	}
	if got := d.Config(); got != DistortionPresets["warm"] {
		t.Fatalf("config = %+v", got)
	}
	if err := d.LoadPreset("fuzz"); err == nil {
		t.Fatal("expected error for unknown preset")
	}
	if got := d.Config(); got != DistortionPresets["warm"] {
		t.Fatal("failed preset load changed config")
	}
}

func TestCompressorReducesLoud(t *testing.T) {
	c := NewCompressor(sr, -10, 4, 1, 50, 0)
	c.SetEnabled(true)
	var out float64
	for i := 0; i < 1000; i++ {
		out = c.Process(1.0)
	}
	if out >= 1.0 {
		t.Errorf("compressor should reduce loud signals, got %f", out)
	}
	quiet := NewCompressor(sr, -10, 4, 1, 50, 0)
	quiet.SetEnabled(true)
	for i := 0; i < 1000; i++ {
		out = quiet.Process(0.1)
	}
	if math.Abs(out-0.1) > 1e-9 {
		t.Errorf("signal below threshold changed: %f", out)
	}
}

func TestLimiter(t *testing.T) {
	l := NewLimiter(0.5)
	l.SetEnabled(true)
	if y := l.Process(2); y != 0.5 {
		t.Fatalf("limit = %f", y)
	}
	if y := l.Process(-2); y != -0.5 {
		t.Fatalf("limit = %f", y)
	}
	if y := l.Process(0.2); y != 0.2 {
		t.Fatalf("pass = %f", y)
	}
}

func TestEQ5BandUnityGain(t *testing.T) {
	eq := NewEQ5Band(sr)
	eq.SetEnabled(true)
	for i := 0; i < 1000; i++ {
		eq.Process(0.5)
	}
	if y := eq.Process(0.5); math.Abs(y-0.5) > 1e-9 {
		t.Errorf("expected 0.5 with unity gains, got %f", y)
	}
	eq.SetGain(0, 0)
	eq.SetGain(9, 3)
	if eq.Gain(0) != 0 || eq.Gain(9) != 1 {
		t.Fatalf("gains: %f %f", eq.Gain(0), eq.Gain(9))
	}
	for i := 0; i < 5000; i++ {
		eq.Process(0.5)
	}
	if y := eq.Process(0.5); math.Abs(y) > 0.05 {
		t.Errorf("DC should be removed with the low band muted, got %f", y)
	}
}

func TestBusDefaults(t *testing.T) {
	b := NewBus(sr)
	if b.Distortion.Enabled() || b.Chorus.Enabled() || b.Delay.Enabled() || b.Reverb.Enabled() || b.Compressor.Enabled() {
		t.Fatal("coloring effects should start disabled")
	}
	if b.Compressor.Threshold() != -12 || b.Compressor.Ratio() != 4 || b.Compressor.Attack() != 3 || b.Compressor.Release() != 100 {
		t.Fatal("unexpected compressor defaults")
	}
	if y := b.Process(0.25); math.Abs(y-0.25) > 0.01 {
		t.Fatalf("default bus changed signal: %f", y)
	}
	if y := b.Process(3); y > 1 {
		t.Fatalf("limiter let %f through", y)
	}
}

func TestChainAppliesEffectsInOrder(t *testing.T) {
	l := NewLimiter(0.5)
	l.SetEnabled(true)
	eq := NewEQ5Band(sr)
	eq.SetEnabled(true)
	for i := range Bands {
		eq.SetGain(i, 4)
	}
	c := NewChain(l, eq)
	if y := c.Process(1); math.Abs(y-2) > 1e-9 {
		t.Fatalf("limit then boost = %f, want 2", y)
	}
}
