package effects

import "github.com/cbegin/gooey-go/internal/param"

// MaxDelayMs is the longest delay time the line can hold.
const MaxDelayMs = 2000

var (
	delayTime     = param.Range{Min: 1, Max: MaxDelayMs, Default: 250}
	delayFeedback = param.Range{Min: 0, Max: 0.95, Default: 0.35}
)

// Delay is a feedback echo.
type Delay struct {
	toggle
	sampleRate float64
	buf        []float64
	pos        int
	timeMs     param.Ranged
	feedback   param.Ranged
	wet        param.Ranged
}

// NewDelay creates a disabled delay.
// delayMs: delay time in milliseconds
// feedback: feedback amount 0..0.95
// wet: wet/dry mix 0..1
func NewDelay(sampleRate int, delayMs, feedback, wet float64) *Delay {
	d := &Delay{
		sampleRate: float64(sampleRate),
		buf:        make([]float64, sampleRate*MaxDelayMs/1000+1),
	}
	d.timeMs.Range = delayTime
	d.feedback.Range = delayFeedback
	d.wet.Range = wetRange
	d.timeMs.Set(delayMs)
	d.feedback.Set(feedback)
	d.wet.Set(wet)
	return d
}

func (d *Delay) SetTime(ms float64)    { d.timeMs.Set(ms) }
func (d *Delay) SetFeedback(v float64) { d.feedback.Set(v) }
func (d *Delay) SetWet(v float64)      { d.wet.Set(v) }
func (d *Delay) Time() float64         { return d.timeMs.Load() }
func (d *Delay) Feedback() float64     { return d.feedback.Load() }
func (d *Delay) Wet() float64          { return d.wet.Load() }

func (d *Delay) Process(x float64) float64 {
	if !d.Enabled() {
		return x
	}
	size := len(d.buf)
	n := int(d.timeMs.Load() * d.sampleRate / 1000.0)
	if n < 1 {
		n = 1
	}
	if n >= size {
		n = size - 1
	}
	read := d.pos - n
	if read < 0 {
		read += size
	}
	del := d.buf[read]
	d.buf[d.pos] = x + del*d.feedback.Load()
	d.pos++
	if d.pos >= size {
		d.pos = 0
	}
	wet := d.wet.Load()
	return x*(1-wet) + del*wet
}

func (d *Delay) Reset() {
	for i := range d.buf {
		d.buf[i] = 0
	}
	d.pos = 0
}
