// Package param holds lock-free parameter cells shared between the control
// path and the audio path.
package param

import (
	"math"
	"sync/atomic"
)

// Range is the documented domain of a numeric parameter.
type Range struct {
	Min     float64
	Max     float64
	Default float64
}

// Clamp pins v into the range. NaN maps to the default.
func (r Range) Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return r.Default
	}
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// Float is a float64 stored as its bit pattern so a single field can be
// written by one goroutine and read by another without tearing.
type Float struct {
	bits atomic.Uint64
}

// NewFloat returns a cell holding v.
func NewFloat(v float64) *Float {
	f := &Float{}
	f.Store(v)
	return f
}

func (f *Float) Load() float64 {
	return math.Float64frombits(f.bits.Load())
}

func (f *Float) Store(v float64) {
	f.bits.Store(math.Float64bits(v))
}

// Ranged is a Float that clamps every write into its Range.
type Ranged struct {
	Float
	Range Range
}

// NewRanged returns a cell initialised to the range default.
func NewRanged(r Range) *Ranged {
	p := &Ranged{Range: r}
	p.Store(r.Default)
	return p
}

// Set clamps v and stores it.
func (p *Ranged) Set(v float64) {
	p.Store(p.Range.Clamp(v))
}

// Clamp pins v into [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
