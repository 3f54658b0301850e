package voice

import (
	"math"
	"sync/atomic"

	"github.com/cbegin/gooey-go/internal/envelope"
	"github.com/cbegin/gooey-go/internal/filter"
	"github.com/cbegin/gooey-go/internal/osc"
	"github.com/cbegin/gooey-go/internal/param"
)

type HiHatConfig struct {
	BaseFrequency float64 // Hz, 4000..16000
	Resonance     float64 // 0..1
	Brightness    float64 // 0..1
	Decay         float64 // seconds, 0.01..3
	Attack        float64 // seconds, 0.001..0.1
	Volume        float64 // 0..1
	Open          bool
}

var (
	hihatBaseFrequency = param.Range{Min: 4000, Max: 16000, Default: 8000}
	hihatResonance     = param.Range{Min: 0, Max: 1, Default: 0.7}
	hihatBrightness    = param.Range{Min: 0, Max: 1, Default: 0.6}
	hihatDecay         = param.Range{Min: 0.01, Max: 3, Default: 0.1}
	hihatAttack        = param.Range{Min: 0.001, Max: 0.1, Default: 0.001}
	hihatVolume        = param.Range{Min: 0, Max: 1, Default: 0.6}
	hihatModulation    = param.Range{Min: -4, Max: 4, Default: 0}
)

// ClosedDecayLimit caps the decay of a closed hat regardless of the
// configured decay.
const ClosedDecayLimit = 0.25

var HiHatPresets = map[string]HiHatConfig{
	"closed_default": {BaseFrequency: 8000, Resonance: 0.7, Brightness: 0.6, Decay: 0.1, Attack: 0.001, Volume: 0.6},
	"open_default":   {BaseFrequency: 8000, Resonance: 0.5, Brightness: 0.8, Decay: 0.8, Attack: 0.001, Volume: 0.7, Open: true},
	"closed_tight":   {BaseFrequency: 10000, Resonance: 0.8, Brightness: 0.5, Decay: 0.05, Attack: 0.001, Volume: 0.9},
	"open_bright":    {BaseFrequency: 12000, Resonance: 0.4, Brightness: 1.0, Decay: 1.2, Attack: 0.001, Volume: 0.6, Open: true},
	"closed_dark":    {BaseFrequency: 6000, Resonance: 0.6, Brightness: 0.3, Decay: 0.15, Attack: 0.002, Volume: 0.7},
	"open_long":      {BaseFrequency: 7000, Resonance: 0.3, Brightness: 0.7, Decay: 2.0, Attack: 0.001, Volume: 0.6, Open: true},
}

func DefaultHiHatConfig() HiHatConfig { return HiHatPresets["closed_default"] }

// metalRatios are the inharmonic partials of the square-wave cluster mixed
// under the noise.
var metalRatios = [6]float64{1, 1.342, 1.2312, 1.6532, 1.9523, 2.1523}

// HiHat is noise plus a square cluster run through a resonant high-pass and
// band-pass pair. The cutoff follows BaseFrequency and Brightness and can be
// offset in octaves by an external modulator.
type HiHat struct {
	base

	baseFrequency param.Ranged
	resonance     param.Ranged
	brightness    param.Ranged
	decay         param.Ranged
	attack        param.Ranged
	volume        param.Ranged
	modulation    param.Ranged
	open          atomic.Bool

	noise osc.NoiseSource
	metal [6]osc.Oscillator
	hp    *filter.SVF
	bp    *filter.SVF
	amp   *envelope.Envelope
}

func NewHiHat(sampleRate float64, seed uint32) *HiHat {
	h := &HiHat{
		noise: *osc.NewNoise(osc.Percussion, seed),
		hp:    filter.NewSVF(sampleRate, filter.HighPass, hihatBaseFrequency.Default, 0),
		bp:    filter.NewSVF(sampleRate, filter.BandPass, hihatBaseFrequency.Default, 0),
		amp:   envelope.NewOneShot(hihatAttack.Default, hihatDecay.Default),
	}
	for i := range h.metal {
		h.metal[i].Waveform = osc.Square
	}
	h.init(sampleRate)
	h.baseFrequency.Range = hihatBaseFrequency
	h.resonance.Range = hihatResonance
	h.brightness.Range = hihatBrightness
	h.decay.Range = hihatDecay
	h.attack.Range = hihatAttack
	h.volume.Range = hihatVolume
	h.modulation.Range = hihatModulation
	h.Configure(DefaultHiHatConfig())
	return h
}

func (h *HiHat) Configure(cfg HiHatConfig) {
	h.baseFrequency.Set(cfg.BaseFrequency)
	h.resonance.Set(cfg.Resonance)
	h.brightness.Set(cfg.Brightness)
	h.decay.Set(cfg.Decay)
	h.attack.Set(cfg.Attack)
	h.volume.Set(cfg.Volume)
	h.open.Store(cfg.Open)
}

func (h *HiHat) Config() HiHatConfig {
	return HiHatConfig{
		BaseFrequency: h.baseFrequency.Load(),
		Resonance:     h.resonance.Load(),
		Brightness:    h.brightness.Load(),
		Decay:         h.decay.Load(),
		Attack:        h.attack.Load(),
		Volume:        h.volume.Load(),
		Open:          h.open.Load(),
	}
}

func (h *HiHat) LoadPreset(name string) error {
	cfg, ok := HiHatPresets[name]
	if !ok {
		return unknownPreset("hihat", name)
	}
	h.Configure(cfg)
	return nil
}

func (h *HiHat) SetBaseFrequency(v float64) { h.baseFrequency.Set(v) }
func (h *HiHat) SetResonance(v float64)     { h.resonance.Set(v) }
func (h *HiHat) SetBrightness(v float64)    { h.brightness.Set(v) }
func (h *HiHat) SetDecay(v float64)         { h.decay.Set(v) }
func (h *HiHat) SetAttack(v float64)        { h.attack.Set(v) }
func (h *HiHat) SetVolume(v float64)        { h.volume.Set(v) }
func (h *HiHat) SetOpen(v bool)             { h.open.Store(v) }
func (h *HiHat) BaseFrequency() float64     { return h.baseFrequency.Load() }
func (h *HiHat) Resonance() float64         { return h.resonance.Load() }
func (h *HiHat) Brightness() float64        { return h.brightness.Load() }
func (h *HiHat) Decay() float64             { return h.decay.Load() }
func (h *HiHat) Attack() float64            { return h.attack.Load() }
func (h *HiHat) Volume() float64            { return h.volume.Load() }
func (h *HiHat) Open() bool                 { return h.open.Load() }

// SetCutoffModulation offsets the filter cutoff by v octaves (clamped to
// ±4). Zero leaves the configured cutoff untouched.
func (h *HiHat) SetCutoffModulation(v float64) { h.modulation.Set(v) }
func (h *HiHat) CutoffModulation() float64     { return h.modulation.Load() }

// Cutoff returns the filter cutoff the next tick will use, before clamping
// to the sample rate.
func (h *HiHat) Cutoff() float64 {
	c := h.baseFrequency.Load() * (0.5 + h.brightness.Load())
	if m := h.modulation.Load(); m != 0 {
		c *= math.Exp2(m)
	}
	return c
}

// EffectiveDecay is the decay actually used: the configured decay, capped at
// ClosedDecayLimit when the hat is closed.
func (h *HiHat) EffectiveDecay() float64 {
	d := h.decay.Load()
	if !h.open.Load() && d > ClosedDecayLimit {
		d = ClosedDecayLimit
	}
	return d
}

// Release has no effect on a hi-hat.
func (h *HiHat) Release() {}

func (h *HiHat) Tick() float64 {
	if h.take()&gateTrigger != 0 {
		for i := range h.metal {
			h.metal[i].ResetPhase()
		}
		h.amp.Trigger()
	}
	if !h.amp.Active() {
		h.settle(false)
		return 0
	}
	dt := h.dt
	h.amp.AttackTime = h.attack.Load()
	h.amp.DecayTime = h.EffectiveDecay()

	f0 := h.baseFrequency.Load()
	var metal float64
	for i := range h.metal {
		metal += h.metal[i].Next(f0 * metalRatios[i] / 16 * dt)
	}
	src := 0.75*h.noise.Next() + 0.25*metal/6

	res := h.resonance.Load()
	cutoff := h.Cutoff()
	h.hp.Set(cutoff*0.7, res*0.5)
	h.bp.Set(cutoff, res)
	shaped := h.hp.Process(src)*(1-0.5*res) + h.bp.Process(src)*res

	out := shaped * h.amp.Advance(dt) * h.volume.Load()
	h.settle(h.amp.Active())
	return out
}
