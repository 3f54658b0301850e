// Package osc provides the phase-accumulating signal sources shared by all
// voices.
package osc

import "math"

const twoPi = 2 * math.Pi

type Waveform int

const (
	Sine Waveform = iota
	Square
	Saw
	Triangle
	RingMod
	Noise
)

// NumWaveforms is the number of selectable waveforms.
const NumWaveforms = 6

var waveformNames = [NumWaveforms]string{"sine", "square", "saw", "triangle", "ringmod", "noise"}

func (w Waveform) String() string {
	if w < 0 || int(w) >= NumWaveforms {
		return "unknown"
	}
	return waveformNames[w]
}

// ParseWaveform maps a name to its waveform. Unknown names report false.
func ParseWaveform(name string) (Waveform, bool) {
	for i, n := range waveformNames {
		if n == name {
			return Waveform(i), true
		}
	}
	return Sine, false
}

// ClampWaveform maps an arbitrary integer code onto a valid waveform.
func ClampWaveform(code int) Waveform {
	if code < 0 {
		return Sine
	}
	if code >= NumWaveforms {
		return Noise
	}
	return Waveform(code)
}

// Shape evaluates a periodic waveform at phase p in [0, 1).
func Shape(w Waveform, p float64) float64 {
	switch w {
	case Square:
		if p < 0.5 {
			return 1
		}
		return -1
	case Saw:
		return 2*p - 1
	case Triangle:
		return 1 - 4*math.Abs(p-0.5)
	default:
		return math.Sin(twoPi * p)
	}
}

// Oscillator keeps its own phase, modulator phase and noise state.
type Oscillator struct {
	Waveform Waveform
	// ModInc is the per-sample phase increment of the ring modulator.
	ModInc float64

	phase    float64
	modPhase float64
	noise    NoiseSource
}

// New returns an oscillator whose noise waveform is seeded with seed.
func New(w Waveform, seed uint32) *Oscillator {
	return &Oscillator{Waveform: w, noise: *NewNoise(White, seed)}
}

// Next advances the phase by inc (cycles per sample) and returns the
// waveform value at the new phase.
func (o *Oscillator) Next(inc float64) float64 {
	o.phase = wrap(o.phase + inc)
	switch o.Waveform {
	case RingMod:
		o.modPhase = wrap(o.modPhase + o.ModInc)
		return math.Sin(twoPi*o.phase) * math.Sin(twoPi*o.modPhase)
	case Noise:
		return o.noise.Next()
	default:
		return Shape(o.Waveform, o.phase)
	}
}

// ResetPhase zeroes the carrier and modulator phase.
func (o *Oscillator) ResetPhase() {
	o.phase = 0
	o.modPhase = 0
}

func (o *Oscillator) Phase() float64 { return o.phase }

func wrap(p float64) float64 {
	if p >= 1 || p < 0 {
		p -= math.Floor(p)
	}
	return p
}
