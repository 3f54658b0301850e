package voice

import (
	"github.com/cbegin/gooey-go/internal/envelope"
	"github.com/cbegin/gooey-go/internal/filter"
	"github.com/cbegin/gooey-go/internal/osc"
	"github.com/cbegin/gooey-go/internal/param"
)

type SnareConfig struct {
	Frequency float64 // Hz, 100..600
	Tonal     float64 // 0..1
	Noise     float64 // 0..1
	Crack     float64 // 0..1
	Decay     float64 // seconds, 0.01..2
	PitchDrop float64 // 0..1
	Volume    float64 // 0..1
}

var (
	snareFrequency = param.Range{Min: 100, Max: 600, Default: 200}
	snareTonal     = param.Range{Min: 0, Max: 1, Default: 0.4}
	snareNoise     = param.Range{Min: 0, Max: 1, Default: 0.7}
	snareCrack     = param.Range{Min: 0, Max: 1, Default: 0.5}
	snareDecay     = param.Range{Min: 0.01, Max: 2, Default: 0.15}
	snarePitchDrop = param.Range{Min: 0, Max: 1, Default: 0.3}
	snareVolume    = param.Range{Min: 0, Max: 1, Default: 0.6}
)

var SnarePresets = map[string]SnareConfig{
	"default": {Frequency: 200, Tonal: 0.4, Noise: 0.7, Crack: 0.5, Decay: 0.15, PitchDrop: 0.3, Volume: 0.6},
	"crispy":  {Frequency: 250, Tonal: 0.3, Noise: 0.8, Crack: 0.7, Decay: 0.12, PitchDrop: 0.4, Volume: 0.85},
	"deep":    {Frequency: 180, Tonal: 0.6, Noise: 0.6, Crack: 0.3, Decay: 0.2, PitchDrop: 0.2, Volume: 0.9},
	"tight":   {Frequency: 220, Tonal: 0.3, Noise: 0.8, Crack: 0.8, Decay: 0.08, PitchDrop: 0.5, Volume: 0.6},
	"fat":     {Frequency: 160, Tonal: 0.7, Noise: 0.5, Crack: 0.4, Decay: 0.25, PitchDrop: 0.1, Volume: 0.9},
}

func DefaultSnareConfig() SnareConfig { return SnarePresets["default"] }

// crackLength is the duration of the stick transient in seconds.
const crackLength = 0.02

// Snare mixes a pitched shell (triangle plus an inharmonic sine mode), high
// passed wire noise and a short band-passed crack.
type Snare struct {
	base

	frequency param.Ranged
	tonal     param.Ranged
	noise     param.Ranged
	crack     param.Ranged
	decay     param.Ranged
	pitchDrop param.Ranged
	volume    param.Ranged

	body     osc.Oscillator
	mode     osc.Oscillator
	wires    osc.NoiseSource
	stick    osc.NoiseSource
	wireHP   *filter.SVF
	crackBP  *filter.SVF
	toneAmp  *envelope.Envelope
	noiseAmp *envelope.Envelope
	crackAmp *envelope.Envelope
	sweep    envelope.Sweep
}

func NewSnare(sampleRate float64, seed uint32) *Snare {
	s := &Snare{
		body:     osc.Oscillator{Waveform: osc.Triangle},
		mode:     osc.Oscillator{Waveform: osc.Sine},
		wires:    *osc.NewNoise(osc.Percussion, seed),
		stick:    *osc.NewNoise(osc.White, seed^0x5bd1e995),
		wireHP:   filter.NewSVF(sampleRate, filter.HighPass, 1800, 0.2),
		crackBP:  filter.NewSVF(sampleRate, filter.BandPass, 4500, 0.5),
		toneAmp:  envelope.NewOneShot(0, snareDecay.Default*0.6),
		noiseAmp: envelope.NewOneShot(0.0005, snareDecay.Default),
		crackAmp: envelope.NewOneShot(0, crackLength),
	}
	s.init(sampleRate)
	s.frequency.Range = snareFrequency
	s.tonal.Range = snareTonal
	s.noise.Range = snareNoise
	s.crack.Range = snareCrack
	s.decay.Range = snareDecay
	s.pitchDrop.Range = snarePitchDrop
	s.volume.Range = snareVolume
	s.Configure(DefaultSnareConfig())
	return s
}

func (s *Snare) Configure(cfg SnareConfig) {
	s.frequency.Set(cfg.Frequency)
	s.tonal.Set(cfg.Tonal)
	s.noise.Set(cfg.Noise)
	s.crack.Set(cfg.Crack)
	s.decay.Set(cfg.Decay)
	s.pitchDrop.Set(cfg.PitchDrop)
	s.volume.Set(cfg.Volume)
}

func (s *Snare) Config() SnareConfig {
	return SnareConfig{
		Frequency: s.frequency.Load(),
		Tonal:     s.tonal.Load(),
		Noise:     s.noise.Load(),
		Crack:     s.crack.Load(),
		Decay:     s.decay.Load(),
		PitchDrop: s.pitchDrop.Load(),
		Volume:    s.volume.Load(),
	}
}

func (s *Snare) LoadPreset(name string) error {
	cfg, ok := SnarePresets[name]
	if !ok {
		return unknownPreset("snare", name)
	}
	s.Configure(cfg)
	return nil
}

func (s *Snare) SetFrequency(v float64) { s.frequency.Set(v) }
func (s *Snare) SetTonal(v float64)     { s.tonal.Set(v) }
func (s *Snare) SetNoise(v float64)     { s.noise.Set(v) }
func (s *Snare) SetCrack(v float64)     { s.crack.Set(v) }
func (s *Snare) SetDecay(v float64)     { s.decay.Set(v) }
func (s *Snare) SetPitchDrop(v float64) { s.pitchDrop.Set(v) }
func (s *Snare) SetVolume(v float64)    { s.volume.Set(v) }
func (s *Snare) Frequency() float64     { return s.frequency.Load() }
func (s *Snare) Tonal() float64         { return s.tonal.Load() }
func (s *Snare) Noise() float64         { return s.noise.Load() }
func (s *Snare) Crack() float64         { return s.crack.Load() }
func (s *Snare) Decay() float64         { return s.decay.Load() }
func (s *Snare) PitchDrop() float64     { return s.pitchDrop.Load() }
func (s *Snare) Volume() float64        { return s.volume.Load() }

// Release has no effect on a snare.
func (s *Snare) Release() {}

func (s *Snare) start() {
	s.body.ResetPhase()
	s.mode.ResetPhase()
	s.sweep.Start = 1 + s.pitchDrop.Load()
	s.sweep.Duration = s.decay.Load() * 0.5
	s.sweep.Trigger()
	s.toneAmp.Trigger()
	s.noiseAmp.Trigger()
	s.crackAmp.Trigger()
}

func (s *Snare) Tick() float64 {
	if s.take()&gateTrigger != 0 {
		s.start()
	}
	if !s.toneAmp.Active() && !s.noiseAmp.Active() && !s.crackAmp.Active() {
		s.settle(false)
		return 0
	}
	dt := s.dt
	decay := s.decay.Load()
	s.toneAmp.DecayTime = decay * 0.6
	s.noiseAmp.DecayTime = decay

	f := s.frequency.Load() * s.sweep.Advance(dt)
	shell := 0.65*s.body.Next(f*dt) + 0.35*s.mode.Next(1.6*f*dt)
	tone := shell * s.toneAmp.Advance(dt) * s.tonal.Load()
	wires := s.wireHP.Process(s.wires.Next()) * s.noiseAmp.Advance(dt) * s.noise.Load()
	crack := s.crackBP.Process(s.stick.Next()) * 2 * s.crackAmp.Advance(dt) * s.crack.Load()

	out := (tone + wires + crack) * s.volume.Load()
	s.settle(s.toneAmp.Active() || s.noiseAmp.Active() || s.crackAmp.Active())
	return out
}
