package effects

import "github.com/cbegin/gooey-go/internal/param"

var limiterRange = param.Range{Min: 0.01, Max: 1, Default: 1}

// Limiter hard-clips the bus at ±threshold.
type Limiter struct {
	toggle
	threshold param.Ranged
}

func NewLimiter(threshold float64) *Limiter {
	l := &Limiter{}
	l.threshold.Range = limiterRange
	l.threshold.Set(threshold)
	return l
}

func (l *Limiter) SetThreshold(v float64) { l.threshold.Set(v) }
func (l *Limiter) Threshold() float64     { return l.threshold.Load() }

func (l *Limiter) Process(x float64) float64 {
	if !l.Enabled() {
		return x
	}
	t := l.threshold.Load()
	return param.Clamp(x, -t, t)
}

func (l *Limiter) Reset() {}
