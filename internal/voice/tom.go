package voice

import (
	"github.com/cbegin/gooey-go/internal/envelope"
	"github.com/cbegin/gooey-go/internal/filter"
	"github.com/cbegin/gooey-go/internal/osc"
	"github.com/cbegin/gooey-go/internal/param"
)

type TomConfig struct {
	Frequency float64 // Hz, 60..400
	Tonal     float64 // 0..1
	Punch     float64 // 0..1
	Decay     float64 // seconds, 0.05..3
	PitchDrop float64 // 0..1
	Volume    float64 // 0..1
}

var (
	tomFrequency = param.Range{Min: 60, Max: 400, Default: 120}
	tomTonal     = param.Range{Min: 0, Max: 1, Default: 0.8}
	tomPunch     = param.Range{Min: 0, Max: 1, Default: 0.4}
	tomDecay     = param.Range{Min: 0.05, Max: 3, Default: 0.4}
	tomPitchDrop = param.Range{Min: 0, Max: 1, Default: 0.3}
	tomVolume    = param.Range{Min: 0, Max: 1, Default: 0.6}
)

var TomPresets = map[string]TomConfig{
	"default":   {Frequency: 120, Tonal: 0.8, Punch: 0.4, Decay: 0.4, PitchDrop: 0.3, Volume: 0.6},
	"high_tom":  {Frequency: 180, Tonal: 0.9, Punch: 0.5, Decay: 0.3, PitchDrop: 0.4, Volume: 0.85},
	"mid_tom":   {Frequency: 120, Tonal: 0.8, Punch: 0.4, Decay: 0.4, PitchDrop: 0.3, Volume: 0.6},
	"low_tom":   {Frequency: 90, Tonal: 0.7, Punch: 0.3, Decay: 0.6, PitchDrop: 0.2, Volume: 0.85},
	"floor_tom": {Frequency: 70, Tonal: 0.6, Punch: 0.2, Decay: 0.8, PitchDrop: 0.15, Volume: 0.9},
}

func DefaultTomConfig() TomConfig { return TomPresets["default"] }

// punchLength is the duration of the tom's attack transient in seconds.
const punchLength = 0.03

// Tom is a swept sine body with a quieter triangle overtone and a short
// low-passed noise thump.
type Tom struct {
	base

	frequency param.Ranged
	tonal     param.Ranged
	punch     param.Ranged
	decay     param.Ranged
	pitchDrop param.Ranged
	volume    param.Ranged

	body     osc.Oscillator
	overtone osc.Oscillator
	noise    osc.NoiseSource
	thumpLP  *filter.SVF
	amp      *envelope.Envelope
	punchAmp *envelope.Envelope
	sweep    envelope.Sweep
}

func NewTom(sampleRate float64, seed uint32) *Tom {
	t := &Tom{
		body:     osc.Oscillator{Waveform: osc.Sine},
		overtone: osc.Oscillator{Waveform: osc.Triangle},
		noise:    *osc.NewNoise(osc.White, seed),
		thumpLP:  filter.NewSVF(sampleRate, filter.LowPass, 2*tomFrequency.Default, 0.3),
		amp:      envelope.NewOneShot(0.001, tomDecay.Default),
		punchAmp: envelope.NewOneShot(0, punchLength),
	}
	t.init(sampleRate)
	t.frequency.Range = tomFrequency
	t.tonal.Range = tomTonal
	t.punch.Range = tomPunch
	t.decay.Range = tomDecay
	t.pitchDrop.Range = tomPitchDrop
	t.volume.Range = tomVolume
	t.Configure(DefaultTomConfig())
	return t
}

func (t *Tom) Configure(cfg TomConfig) {
	t.frequency.Set(cfg.Frequency)
	t.tonal.Set(cfg.Tonal)
	t.punch.Set(cfg.Punch)
	t.decay.Set(cfg.Decay)
	t.pitchDrop.Set(cfg.PitchDrop)
	t.volume.Set(cfg.Volume)
}

func (t *Tom) Config() TomConfig {
	return TomConfig{
		Frequency: t.frequency.Load(),
		Tonal:     t.tonal.Load(),
		Punch:     t.punch.Load(),
		Decay:     t.decay.Load(),
		PitchDrop: t.pitchDrop.Load(),
		Volume:    t.volume.Load(),
	}
}

func (t *Tom) LoadPreset(name string) error {
	cfg, ok := TomPresets[name]
	if !ok {
		return unknownPreset("tom", name)
	}
	t.Configure(cfg)
	return nil
}

func (t *Tom) SetFrequency(v float64) { t.frequency.Set(v) }
func (t *Tom) SetTonal(v float64)     { t.tonal.Set(v) }
func (t *Tom) SetPunch(v float64)     { t.punch.Set(v) }
func (t *Tom) SetDecay(v float64)     { t.decay.Set(v) }
func (t *Tom) SetPitchDrop(v float64) { t.pitchDrop.Set(v) }
func (t *Tom) SetVolume(v float64)    { t.volume.Set(v) }
func (t *Tom) Frequency() float64     { return t.frequency.Load() }
func (t *Tom) Tonal() float64         { return t.tonal.Load() }
func (t *Tom) Punch() float64         { return t.punch.Load() }
func (t *Tom) Decay() float64         { return t.decay.Load() }
func (t *Tom) PitchDrop() float64     { return t.pitchDrop.Load() }
func (t *Tom) Volume() float64        { return t.volume.Load() }

// Release has no effect on a tom.
func (t *Tom) Release() {}

func (t *Tom) Tick() float64 {
	if t.take()&gateTrigger != 0 {
		t.body.ResetPhase()
		t.overtone.ResetPhase()
		t.sweep.Start = 1 + t.pitchDrop.Load()
		t.sweep.Duration = t.decay.Load() * 0.5
		t.sweep.Trigger()
		t.amp.Trigger()
		t.punchAmp.Trigger()
	}
	if !t.amp.Active() && !t.punchAmp.Active() {
		t.settle(false)
		return 0
	}
	dt := t.dt
	t.amp.DecayTime = t.decay.Load()

	f := t.frequency.Load() * t.sweep.Advance(dt)
	env := t.amp.Advance(dt)
	tone := (t.body.Next(f*dt) + 0.3*t.overtone.Next(1.5*f*dt)) * env * t.tonal.Load()
	t.thumpLP.Set(4*f, 0.3)
	thump := t.thumpLP.Process(t.noise.Next()) * 1.5 * t.punchAmp.Advance(dt) * t.punch.Load()

	out := (tone + thump) * t.volume.Load()
	t.settle(t.amp.Active() || t.punchAmp.Active())
	return out
}
