package osc

import (
	"math"

	"github.com/cbegin/gooey-go/internal/envelope"
)

// FM is a two-operator transient: a sine carrier whose phase is modulated by
// a second sine. The modulation index has a fast 1 ms attack and 10 ms decay
// so only the onset is bright.
type FM struct {
	// Ratio is the modulator frequency as a multiple of the carrier.
	Ratio float64
	// Index is the peak modulation index in radians.
	Index float64

	carrier   float64
	modulator float64
	amp       *envelope.Envelope
	index     *envelope.Envelope
}

// NewFM returns an FM transient that is audible for length seconds.
func NewFM(ratio, index, length float64) *FM {
	return &FM{
		Ratio: ratio,
		Index: index,
		amp:   envelope.NewOneShot(0, length),
		index: envelope.NewOneShot(0.001, 0.01),
	}
}

func (f *FM) Trigger() {
	f.carrier = 0
	f.modulator = 0
	f.amp.Trigger()
	f.index.Trigger()
}

// Next returns the next sample for carrier frequency freq.
func (f *FM) Next(freq, dt float64) float64 {
	if !f.amp.Active() {
		return 0
	}
	a := f.amp.Advance(dt)
	idx := f.index.Advance(dt) * f.Index
	f.carrier = wrap(f.carrier + freq*dt)
	f.modulator = wrap(f.modulator + freq*f.Ratio*dt)
	return math.Sin(twoPi*f.carrier+idx*math.Sin(twoPi*f.modulator)) * a
}

func (f *FM) Active() bool { return f.amp.Active() }
