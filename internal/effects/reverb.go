package effects

import "github.com/cbegin/gooey-go/internal/param"

var reverbFeedback = param.Range{Min: 0, Max: 0.95, Default: 0.7}

// Reverb is a Schroeder reverb: four parallel comb filters into two series
// allpass filters.
type Reverb struct {
	toggle
	combs    [4]combFilter
	allpass  [2]allpassFilter
	feedback param.Ranged
	wet      param.Ranged
}

type combFilter struct {
	buf []float64
	pos int
}

type allpassFilter struct {
	buf []float64
	pos int
	fb  float64
}

// NewReverb creates a disabled reverb.
// roomSize: 0..1 controls delay lengths, fixed for the reverb's lifetime
// feedback: 0..0.95 controls decay time
// wet: wet/dry mix 0..1
func NewReverb(sampleRate int, roomSize, feedback, wet float64) *Reverb {
	base := int(float64(sampleRate) * param.Clamp(roomSize, 0, 1) * 0.05)
	if base < 10 {
		base = 10
	}
	r := &Reverb{}
	r.feedback.Range = reverbFeedback
	r.wet.Range = wetRange
	r.feedback.Set(feedback)
	r.wet.Set(wet)
	combLens := [4]int{base, base * 1117 / 1000, base * 1271 / 1000, base * 1437 / 1000}
	for i := range r.combs {
		r.combs[i].buf = make([]float64, combLens[i])
	}
	apLens := [2]int{base * 347 / 1000, base * 213 / 1000}
	for i := range r.allpass {
		r.allpass[i] = allpassFilter{buf: make([]float64, max(apLens[i], 1)), fb: 0.5}
	}
	return r
}

func (r *Reverb) SetFeedback(v float64) { r.feedback.Set(v) }
func (r *Reverb) SetWet(v float64)      { r.wet.Set(v) }
func (r *Reverb) Feedback() float64     { return r.feedback.Load() }
func (r *Reverb) Wet() float64          { return r.wet.Load() }

func (r *Reverb) Process(x float64) float64 {
	if !r.Enabled() {
		return x
	}
	fb := r.feedback.Load()
	var out float64
	for i := range r.combs {
		out += r.combs[i].process(x, fb)
	}
	out *= 0.25
	for i := range r.allpass {
		out = r.allpass[i].process(out)
	}
	wet := r.wet.Load()
	return x*(1-wet) + out*wet
}

func (r *Reverb) Reset() {
	for i := range r.combs {
		clear(r.combs[i].buf)
		r.combs[i].pos = 0
	}
	for i := range r.allpass {
		clear(r.allpass[i].buf)
		r.allpass[i].pos = 0
	}
}

func (c *combFilter) process(in, fb float64) float64 {
	out := c.buf[c.pos]
	c.buf[c.pos] = in + out*fb
	c.pos++
	if c.pos >= len(c.buf) {
		c.pos = 0
	}
	return out
}

func (a *allpassFilter) process(in float64) float64 {
	bufOut := a.buf[a.pos]
	out := -in + bufOut
	a.buf[a.pos] = in + bufOut*a.fb
	a.pos++
	if a.pos >= len(a.buf) {
		a.pos = 0
	}
	return out
}
