// Package lfo implements the tempo-synchronised low-frequency modulator.
package lfo

import (
	"math"
	"sync/atomic"

	"github.com/cbegin/gooey-go/internal/osc"
	"github.com/cbegin/gooey-go/internal/param"
)

// Rate is a musical division of the sequencer tempo. One cycle of the LFO
// lasts that note value.
type Rate int

const (
	Sixteenth Rate = iota
	Eighth
	Quarter
	Half
	Whole
)

var rateNames = [...]string{"1/16", "1/8", "1/4", "1/2", "1/1"}

func (r Rate) String() string {
	if r < Sixteenth || r > Whole {
		return "unknown"
	}
	return rateNames[r]
}

// Steps returns the cycle length in sequencer steps (sixteenth notes).
func (r Rate) Steps() float64 {
	switch r {
	case Sixteenth:
		return 1
	case Eighth:
		return 2
	case Half:
		return 8
	case Whole:
		return 16
	default:
		return 4
	}
}

// ParseRate maps a division such as "1/8" to its Rate.
func ParseRate(s string) (Rate, bool) {
	for i, n := range rateNames {
		if n == s {
			return Rate(i), true
		}
	}
	return Quarter, false
}

const (
	minFreq      = 0.01
	maxFreq      = 100
	fallbackFreq = 2
)

var depthRange = param.Range{Min: 0, Max: 1, Default: 0.5}

// LFO is configured from any goroutine and ticked by the audio path.
type LFO struct {
	enabled  atomic.Bool
	depth    param.Ranged
	waveform atomic.Int32
	rate     atomic.Int32
	reset    atomic.Bool

	phase   float64
	heldVal float64
	noise   *osc.NoiseSource
}

// New returns a disabled LFO with a quarter-note sine at depth 0.5.
func New() *LFO {
	l := &LFO{noise: osc.NewNoise(osc.White, 0x1F0)}
	l.depth.Range = depthRange
	l.ResetDefaults()
	return l
}

// ResetDefaults restores the initial settings and rewinds the phase on the
// next tick.
func (l *LFO) ResetDefaults() {
	l.enabled.Store(false)
	l.depth.Set(depthRange.Default)
	l.waveform.Store(int32(osc.Sine))
	l.rate.Store(int32(Quarter))
	l.reset.Store(true)
}

func (l *LFO) SetEnabled(v bool)      { l.enabled.Store(v) }
func (l *LFO) Enabled() bool          { return l.enabled.Load() }
func (l *LFO) SetDepth(v float64)     { l.depth.Set(v) }
func (l *LFO) Depth() float64         { return l.depth.Load() }
func (l *LFO) Waveform() osc.Waveform { return osc.Waveform(l.waveform.Load()) }
func (l *LFO) Rate() Rate             { return Rate(l.rate.Load()) }

func (l *LFO) SetWaveform(w osc.Waveform) {
	l.waveform.Store(int32(osc.ClampWaveform(int(w))))
}

func (l *LFO) SetRate(r Rate) {
	if r < Sixteenth {
		r = Sixteenth
	}
	if r > Whole {
		r = Whole
	}
	l.rate.Store(int32(r))
}

// Frequency returns the LFO rate in Hz at the given tempo.
func (l *LFO) Frequency(bpm float64) float64 {
	if bpm <= 0 || math.IsNaN(bpm) {
		return fallbackFreq
	}
	step := 60 / (bpm * 4)
	return param.Clamp(1/(step*l.Rate().Steps()), minFreq, maxFreq)
}

// Tick returns the current value in [-depth, depth] and advances the phase
// by one sample. A disabled LFO returns 0 and holds its phase.
func (l *LFO) Tick(bpm, sampleRate float64) float64 {
	if l.reset.Swap(false) {
		l.phase = 0
		l.heldVal = l.noise.Next()
	}
	if !l.enabled.Load() || sampleRate <= 0 {
		return 0
	}
	w := l.Waveform()
	var v float64
	switch w {
	case osc.Noise:
		v = l.heldVal
	case osc.RingMod:
		v = math.Sin(2*math.Pi*l.phase) * math.Sin(4*math.Pi*l.phase)
	default:
		v = osc.Shape(w, l.phase)
	}

	old := l.phase
	l.phase += l.Frequency(bpm) / sampleRate
	for l.phase >= 1 {
		l.phase -= 1
	}
	if w == osc.Noise && l.phase < old {
		l.heldVal = l.noise.Next()
	}
	return v * l.depth.Load()
}

// Reset rewinds the phase on the next tick.
func (l *LFO) Reset() { l.reset.Store(true) }
