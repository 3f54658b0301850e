package effects

import (
	"math"

	"github.com/cbegin/gooey-go/internal/param"
)

var (
	chorusRate     = param.Range{Min: 0.05, Max: 10, Default: 0.8}
	chorusDepth    = param.Range{Min: 0, Max: 10, Default: 3}
	chorusFeedback = param.Range{Min: 0, Max: 0.9, Default: 0.2}
	wetRange       = param.Range{Min: 0, Max: 1, Default: 0.3}
)

// maxChorusDepthMs bounds the buffer so depth can change without
// reallocating on the audio path.
const maxChorusDepthMs = 10

// Chorus is a modulated delay line.
type Chorus struct {
	toggle
	sampleRate float64
	buf        []float64
	pos        int
	base       float64 // base delay in samples
	rate       param.Ranged
	depth      param.Ranged
	feedback   param.Ranged
	wet        param.Ranged
	phase      float64
}

// NewChorus creates a disabled chorus.
// delayMs: base delay time in ms (typically 5-30ms)
// feedback: feedback amount 0..0.9
// depthMs: modulation depth in ms
// rateHz: modulation rate in Hz
// wet: wet/dry mix 0..1
func NewChorus(sampleRate int, delayMs, feedback, depthMs, rateHz, wet float64) *Chorus {
	sr := float64(sampleRate)
	base := delayMs * sr / 1000.0
	size := int(base+maxChorusDepthMs*sr/1000.0) + 2
	if size < 4 {
		size = 4
	}
	c := &Chorus{sampleRate: sr, buf: make([]float64, size), base: base}
	c.rate.Range = chorusRate
	c.depth.Range = chorusDepth
	c.feedback.Range = chorusFeedback
	c.wet.Range = wetRange
	c.rate.Set(rateHz)
	c.depth.Set(depthMs)
	c.feedback.Set(feedback)
	c.wet.Set(wet)
	return c
}

func (c *Chorus) SetRate(hz float64)    { c.rate.Set(hz) }
func (c *Chorus) SetDepth(ms float64)   { c.depth.Set(ms) }
func (c *Chorus) SetFeedback(v float64) { c.feedback.Set(v) }
func (c *Chorus) SetWet(v float64)      { c.wet.Set(v) }
func (c *Chorus) Rate() float64         { return c.rate.Load() }
func (c *Chorus) Depth() float64        { return c.depth.Load() }
func (c *Chorus) Feedback() float64     { return c.feedback.Load() }
func (c *Chorus) Wet() float64          { return c.wet.Load() }

func (c *Chorus) Process(x float64) float64 {
	if !c.Enabled() {
		return x
	}
	size := len(c.buf)
	mod := (math.Sin(c.phase) + 1) * 0.5 * c.depth.Load() * c.sampleRate / 1000.0
	c.phase += 2 * math.Pi * c.rate.Load() / c.sampleRate
	if c.phase > 2*math.Pi {
		c.phase -= 2 * math.Pi
	}
	c.buf[c.pos] = x

	readPos := float64(c.pos) - (c.base + mod)
	for readPos < 0 {
		readPos += float64(size)
	}
	idx := int(readPos) % size
	frac := readPos - math.Floor(readPos)
	idx2 := idx + 1
	if idx2 >= size {
		idx2 = 0
	}
	del := c.buf[idx]*(1-frac) + c.buf[idx2]*frac
	c.buf[c.pos] += del * c.feedback.Load()

	c.pos++
	if c.pos >= size {
		c.pos = 0
	}
	wet := c.wet.Load()
	return x*(1-wet) + del*wet
}

func (c *Chorus) Reset() {
	for i := range c.buf {
		c.buf[i] = 0
	}
	c.pos = 0
	c.phase = 0
}
