package effects

import (
	"github.com/cbegin/gooey-go/internal/filter"
	"github.com/cbegin/gooey-go/internal/param"
)

// Bands is the number of EQ bands.
const Bands = 5

// EQ5Band implements a 5-band equalizer with runtime-adjustable gains.
// Bands are split at 200Hz, 800Hz, 2.5kHz, and 8kHz.
type EQ5Band struct {
	toggle
	gains      [Bands]param.Float // 1.0 = unity
	crossovers [Bands - 1]filter.OnePole
}

var defaultCrossovers = [Bands - 1]float64{200, 800, 2500, 8000}

// maxBandGain is +12 dB.
const maxBandGain = 4

// NewEQ5Band creates a 5-band EQ with all gains at unity.
func NewEQ5Band(sampleRate int) *EQ5Band {
	eq := &EQ5Band{}
	for i, freq := range defaultCrossovers {
		eq.crossovers[i].SetCutoff(float64(sampleRate), freq)
	}
	for i := range eq.gains {
		eq.gains[i].Store(1.0)
	}
	return eq
}

// SetGain sets the gain for band (0-4). 1.0 = unity, 0.0 = silence, 2.0 = +6dB.
// Gains are clamped to 0..4 and out-of-range bands are ignored.
func (eq *EQ5Band) SetGain(band int, gain float64) {
	if band >= 0 && band < Bands {
		eq.gains[band].Store(param.Clamp(gain, 0, maxBandGain))
	}
}

// Gain returns the current gain for band (0-4).
func (eq *EQ5Band) Gain(band int) float64 {
	if band >= 0 && band < Bands {
		return eq.gains[band].Load()
	}
	return 1.0
}

func (eq *EQ5Band) Process(x float64) float64 {
	if !eq.Enabled() {
		return x
	}
	// Each crossover low-passes what the previous ones left; the remainder
	// above the last crossover is the top band.
	var out float64
	rem := x
	for i := range eq.crossovers {
		lp := eq.crossovers[i].LowPass(rem)
		out += lp * eq.gains[i].Load()
		rem -= lp
	}
	out += rem * eq.gains[Bands-1].Load()
	return out
}

func (eq *EQ5Band) Reset() {
	for i := range eq.crossovers {
		eq.crossovers[i].Reset()
	}
}
