package voice

import (
	"math"
	"sync/atomic"

	"github.com/cbegin/gooey-go/internal/envelope"
	"github.com/cbegin/gooey-go/internal/filter"
	"github.com/cbegin/gooey-go/internal/osc"
	"github.com/cbegin/gooey-go/internal/param"
)

type KickConfig struct {
	Frequency  float64 // Hz, 20..200
	Punch      float64 // 0..1
	Sub        float64 // 0..1
	Click      float64 // 0..1
	Decay      float64 // seconds, 0.01..5
	PitchDrop  float64 // 0..1
	Volume     float64 // 0..1
	Overdrive  float64 // 1..10, 1 = clean
	PhaseReset bool
}

var (
	kickFrequency = param.Range{Min: 20, Max: 200, Default: 60}
	kickPunch     = param.Range{Min: 0, Max: 1, Default: 0.8}
	kickSub       = param.Range{Min: 0, Max: 1, Default: 0.8}
	kickClick     = param.Range{Min: 0, Max: 1, Default: 0.2}
	kickDecay     = param.Range{Min: 0.01, Max: 5, Default: 0.28}
	kickPitchDrop = param.Range{Min: 0, Max: 1, Default: 0.2}
	kickVolume    = param.Range{Min: 0, Max: 1, Default: 0.8}
	kickOverdrive = param.Range{Min: 1, Max: 10, Default: 1}
)

// KickPresets are the named kick configurations.
var KickPresets = map[string]KickConfig{
	"default": {Frequency: 60, Punch: 0.8, Sub: 0.8, Click: 0.2, Decay: 0.28, PitchDrop: 0.2, Volume: 0.8, Overdrive: 1, PhaseReset: true},
	"punchy":  {Frequency: 60, Punch: 0.9, Sub: 0.6, Click: 0.4, Decay: 0.6, PitchDrop: 0.7, Volume: 0.85, Overdrive: 1.5, PhaseReset: true},
	"deep":    {Frequency: 45, Punch: 0.5, Sub: 1.0, Click: 0.2, Decay: 1.2, PitchDrop: 0.5, Volume: 0.9, Overdrive: 1, PhaseReset: true},
	"tight":   {Frequency: 70, Punch: 0.8, Sub: 0.7, Click: 0.5, Decay: 0.4, PitchDrop: 0.8, Volume: 0.8, Overdrive: 2, PhaseReset: true},
}

func DefaultKickConfig() KickConfig { return KickPresets["default"] }

// Kick is a swept sine sub, a triangle punch an octave and a fifth up, a
// high-passed noise click and an FM beater snap.
type Kick struct {
	base

	frequency  param.Ranged
	punch      param.Ranged
	sub        param.Ranged
	click      param.Ranged
	decay      param.Ranged
	pitchDrop  param.Ranged
	volume     param.Ranged
	overdrive  param.Ranged
	phaseReset atomic.Bool

	subOsc     osc.Oscillator
	punchOsc   osc.Oscillator
	noise      osc.NoiseSource
	clickHP    *filter.SVF
	snap       *osc.FM
	amp        *envelope.Envelope
	punchAmp   *envelope.Envelope
	clickAmp   *envelope.Envelope
	sweep      envelope.Sweep
	punchSweep envelope.Sweep
}

// NewKick returns a kick with the default configuration. seed selects the
// click noise sequence.
func NewKick(sampleRate float64, seed uint32) *Kick {
	k := &Kick{
		subOsc:   osc.Oscillator{Waveform: osc.Sine},
		punchOsc: osc.Oscillator{Waveform: osc.Triangle},
		noise:    *osc.NewNoise(osc.White, seed),
		clickHP:  filter.NewSVF(sampleRate, filter.HighPass, 8000, 0.6),
		snap:     osc.NewFM(3.5, 3, 0.1),
		amp:      envelope.NewOneShot(0, kickDecay.Default),
		punchAmp: envelope.NewOneShot(0, kickDecay.Default/2),
		clickAmp: envelope.NewOneShot(0, kickDecay.Default/5),
	}
	k.init(sampleRate)
	k.frequency.Range = kickFrequency
	k.punch.Range = kickPunch
	k.sub.Range = kickSub
	k.click.Range = kickClick
	k.decay.Range = kickDecay
	k.pitchDrop.Range = kickPitchDrop
	k.volume.Range = kickVolume
	k.overdrive.Range = kickOverdrive
	k.Configure(DefaultKickConfig())
	return k
}

// Configure clamps and stores every field of cfg.
func (k *Kick) Configure(cfg KickConfig) {
	k.frequency.Set(cfg.Frequency)
	k.punch.Set(cfg.Punch)
	k.sub.Set(cfg.Sub)
	k.click.Set(cfg.Click)
	k.decay.Set(cfg.Decay)
	k.pitchDrop.Set(cfg.PitchDrop)
	k.volume.Set(cfg.Volume)
	k.overdrive.Set(cfg.Overdrive)
	k.phaseReset.Store(cfg.PhaseReset)
}

func (k *Kick) Config() KickConfig {
	return KickConfig{
		Frequency:  k.frequency.Load(),
		Punch:      k.punch.Load(),
		Sub:        k.sub.Load(),
		Click:      k.click.Load(),
		Decay:      k.decay.Load(),
		PitchDrop:  k.pitchDrop.Load(),
		Volume:     k.volume.Load(),
		Overdrive:  k.overdrive.Load(),
		PhaseReset: k.phaseReset.Load(),
	}
}

// LoadPreset applies a named preset from KickPresets.
func (k *Kick) LoadPreset(name string) error {
	cfg, ok := KickPresets[name]
	if !ok {
		return unknownPreset("kick", name)
	}
	k.Configure(cfg)
	return nil
}

func (k *Kick) SetFrequency(v float64) { k.frequency.Set(v) }
func (k *Kick) SetPunch(v float64)     { k.punch.Set(v) }
func (k *Kick) SetSub(v float64)       { k.sub.Set(v) }
func (k *Kick) SetClick(v float64)     { k.click.Set(v) }
func (k *Kick) SetDecay(v float64)     { k.decay.Set(v) }
func (k *Kick) SetPitchDrop(v float64) { k.pitchDrop.Set(v) }
func (k *Kick) SetVolume(v float64)    { k.volume.Set(v) }
func (k *Kick) SetOverdrive(v float64) { k.overdrive.Set(v) }
func (k *Kick) SetPhaseReset(v bool)   { k.phaseReset.Store(v) }
func (k *Kick) Frequency() float64     { return k.frequency.Load() }
func (k *Kick) Punch() float64         { return k.punch.Load() }
func (k *Kick) Sub() float64           { return k.sub.Load() }
func (k *Kick) Click() float64         { return k.click.Load() }
func (k *Kick) Decay() float64         { return k.decay.Load() }
func (k *Kick) PitchDrop() float64     { return k.pitchDrop.Load() }
func (k *Kick) Volume() float64        { return k.volume.Load() }
func (k *Kick) Overdrive() float64     { return k.overdrive.Load() }
func (k *Kick) PhaseReset() bool       { return k.phaseReset.Load() }

func (k *Kick) start() {
	if k.phaseReset.Load() {
		k.subOsc.ResetPhase()
		k.punchOsc.ResetPhase()
	}
	drop := k.pitchDrop.Load()
	decay := k.decay.Load()
	k.sweep.Start = 1 + 2*drop
	k.sweep.Duration = decay
	k.punchSweep.Start = 1 + 2*drop
	k.punchSweep.Duration = decay * 0.3
	k.sweep.Trigger()
	k.punchSweep.Trigger()
	k.amp.Trigger()
	k.punchAmp.Trigger()
	k.clickAmp.Trigger()
	k.snap.Trigger()
}

func (k *Kick) Tick() float64 {
	if k.take()&gateTrigger != 0 {
		k.start()
	}
	if !k.amp.Active() && !k.clickAmp.Active() && !k.snap.Active() {
		k.settle(false)
		return 0
	}
	dt := k.dt
	f := k.frequency.Load()
	decay := k.decay.Load()
	vol := k.volume.Load()
	k.amp.DecayTime = decay
	k.punchAmp.DecayTime = decay * 0.5
	k.clickAmp.DecayTime = decay * 0.2

	env := k.amp.Advance(dt)
	sub := k.subOsc.Next(f*k.sweep.Advance(dt)*dt) * env * k.sub.Load()
	punch := k.punchOsc.Next(2.5*f*k.punchSweep.Advance(dt)*dt) * k.punchAmp.Advance(dt) * k.punch.Load() * 0.7
	clickAmt := k.click.Load()
	click := k.clickHP.Process(k.noise.Next()) * k.clickAmp.Advance(dt) * clickAmt * 0.3
	snap := k.snap.Next(4*f, dt) * clickAmt * 0.25

	out := (sub + punch + click + snap) * vol
	if drive := k.overdrive.Load(); drive > 1 {
		out = math.Tanh(out * drive)
	}
	k.settle(k.amp.Active() || k.clickAmp.Active() || k.snap.Active())
	return out
}

// Release has no effect on a kick; its envelopes are one-shot.
func (k *Kick) Release() {}
