// Package effects implements the master bus processors. Every processor is
// mono, keeps its settings in atomics so the control path can change them
// while the audio path runs, and passes audio through untouched while
// disabled.
package effects

import "sync/atomic"

// Effector processes one sample.
type Effector interface {
	Process(x float64) float64
	Reset()
}

// Chain applies a sequence of effects in order.
type Chain struct {
	effects []Effector
}

func NewChain(effects ...Effector) *Chain {
	return &Chain{effects: effects}
}

func (c *Chain) Process(x float64) float64 {
	for _, e := range c.effects {
		x = e.Process(x)
	}
	return x
}

func (c *Chain) Reset() {
	for _, e := range c.effects {
		e.Reset()
	}
}

// toggle is the enabled flag embedded in every processor.
type toggle struct {
	enabled atomic.Bool
}

func (t *toggle) SetEnabled(v bool) { t.enabled.Store(v) }
func (t *toggle) Enabled() bool     { return t.enabled.Load() }

// Bus is the fixed master chain: distortion, chorus, delay, reverb, EQ,
// compressor, limiter. Only the EQ (at unity) and the limiter start enabled.
type Bus struct {
	Distortion *Distortion
	Chorus     *Chorus
	Delay      *Delay
	Reverb     *Reverb
	EQ         *EQ5Band
	Compressor *Compressor
	Limiter    *Limiter

	chain *Chain
}

func NewBus(sampleRate int) *Bus {
	b := &Bus{
		Distortion: NewDistortion(sampleRate, DistortionPresets["default"]),
		Chorus:     NewChorus(sampleRate, 15, 0.2, 3, 0.8, 0.4),
		Delay:      NewDelay(sampleRate, 250, 0.35, 0.3),
		Reverb:     NewReverb(sampleRate, 0.5, 0.7, 0.25),
		EQ:         NewEQ5Band(sampleRate),
		Compressor: NewCompressor(sampleRate, -12, 4, 3, 100, 0),
		Limiter:    NewLimiter(1),
	}
	b.EQ.SetEnabled(true)
	b.Limiter.SetEnabled(true)
	b.chain = NewChain(b.Distortion, b.Chorus, b.Delay, b.Reverb, b.EQ, b.Compressor, b.Limiter)
	return b
}

func (b *Bus) Process(x float64) float64 { return b.chain.Process(x) }
func (b *Bus) Reset()                    { b.chain.Reset() }
