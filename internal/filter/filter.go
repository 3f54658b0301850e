// Package filter contains the small filters the voices run per sample.
package filter

import "math"

// OnePole is a one-pole low-pass with a complementary high-pass output.
type OnePole struct {
	alpha float64
	lp    float64
}

// NewOnePole returns a filter with the given cutoff.
func NewOnePole(sampleRate, cutoff float64) *OnePole {
	f := &OnePole{}
	f.SetCutoff(sampleRate, cutoff)
	return f
}

// SetCutoff recomputes the smoothing coefficient. A cutoff at or above
// Nyquist passes the signal through unchanged.
func (f *OnePole) SetCutoff(sampleRate, cutoff float64) {
	if cutoff <= 0 || sampleRate <= 0 || cutoff >= sampleRate/2 {
		f.alpha = 1
		return
	}
	rc := 1.0 / (2.0 * math.Pi * cutoff)
	dt := 1.0 / sampleRate
	f.alpha = dt / (rc + dt)
}

// LowPass filters x and returns the low band.
func (f *OnePole) LowPass(x float64) float64 {
	f.lp += f.alpha * (x - f.lp)
	return f.lp
}

// HighPass filters x and returns what the low-pass removed.
func (f *OnePole) HighPass(x float64) float64 {
	return x - f.LowPass(x)
}

func (f *OnePole) Reset() { f.lp = 0 }

type Mode int

const (
	LowPass Mode = iota
	HighPass
	BandPass
)

// SVF is a resonant state-variable filter (trapezoidal integration), stable
// under per-sample cutoff modulation.
type SVF struct {
	Mode Mode

	sampleRate float64
	ic1, ic2   float64
	cutoff     float64
	resonance  float64
	g, k       float64
	a1, a2, a3 float64
}

// NewSVF returns a filter with cutoff in Hz and resonance in 0..1.
func NewSVF(sampleRate float64, mode Mode, cutoff, resonance float64) *SVF {
	f := &SVF{Mode: mode, sampleRate: sampleRate}
	f.Set(cutoff, resonance)
	return f
}

// Set updates cutoff and resonance. Coefficients are only recomputed when
// either value changed.
func (f *SVF) Set(cutoff, resonance float64) {
	nyq := f.sampleRate * 0.49
	if cutoff < 10 {
		cutoff = 10
	}
	if cutoff > nyq {
		cutoff = nyq
	}
	if resonance < 0 {
		resonance = 0
	}
	if resonance > 1 {
		resonance = 1
	}
	if cutoff == f.cutoff && resonance == f.resonance && f.a1 != 0 {
		return
	}
	f.cutoff = cutoff
	f.resonance = resonance
	f.g = math.Tan(math.Pi * cutoff / f.sampleRate)
	f.k = 2 - 1.96*resonance
	f.a1 = 1 / (1 + f.g*(f.g+f.k))
	f.a2 = f.g * f.a1
	f.a3 = f.g * f.a2
}

func (f *SVF) Cutoff() float64 { return f.cutoff }

// Process filters one sample.
func (f *SVF) Process(x float64) float64 {
	v3 := x - f.ic2
	v1 := f.a1*f.ic1 + f.a2*v3
	v2 := f.ic2 + f.a2*f.ic1 + f.a3*v3
	f.ic1 = 2*v1 - f.ic1
	f.ic2 = 2*v2 - f.ic2
	switch f.Mode {
	case HighPass:
		return x - f.k*v1 - v2
	case BandPass:
		return v1
	default:
		return v2
	}
}

func (f *SVF) Reset() {
	f.ic1 = 0
	f.ic2 = 0
}
