// Package voice implements the percussion models and the composable
// oscillator instrument. Every voice is driven from the audio path through
// Tick and configured from any other goroutine through its setters.
package voice

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// Voice is the control surface shared by every sound-producing unit.
type Voice interface {
	// Trigger starts (or restarts) the voice on its next Tick.
	Trigger()
	// Release lets a sustaining voice enter its release segment on its next
	// Tick. Drum voices ignore it.
	Release()
	// Tick produces one sample. Only the audio path calls it.
	Tick() float64
	// IsActive reports whether a trigger is pending or any envelope is
	// outside Idle.
	IsActive() bool
}

// ErrUnknownPreset is returned by LoadPreset when the name is not in the
// voice's preset table. The current configuration is left unchanged.
var ErrUnknownPreset = errors.New("voice: unknown preset")

const (
	gateTrigger uint32 = 1 << iota
	gateRelease
)

// gate carries trigger and release requests from the control path to the
// audio path without locks.
type gate struct {
	pending atomic.Uint32
	active  atomic.Bool
}

func (g *gate) trigger() { g.pending.Or(gateTrigger) }
func (g *gate) release() { g.pending.Or(gateRelease) }

// take is called at the start of Tick and returns the requests posted since
// the previous tick. active is raised before pending is cleared so IsActive
// never observes a gap.
func (g *gate) take() uint32 {
	if g.pending.Load() == 0 {
		return 0
	}
	g.active.Store(true)
	return g.pending.Swap(0)
}

// settle is called at the end of Tick with whether any envelope is still
// running.
func (g *gate) settle(busy bool) {
	if !busy && g.pending.Load() == 0 {
		g.active.Store(false)
	}
}

func (g *gate) isActive() bool {
	return g.active.Load() || g.pending.Load() != 0
}

// base holds what every voice shares: the trigger gate, the enabled flag and
// the sample period.
type base struct {
	gate
	enabled    atomic.Bool
	sampleRate float64
	dt         float64
}

func (b *base) init(sampleRate float64) {
	b.sampleRate = sampleRate
	b.dt = 1 / sampleRate
	b.enabled.Store(true)
}

func (b *base) Trigger()       { b.gate.trigger() }
func (b *base) Release()       { b.gate.release() }
func (b *base) IsActive() bool { return b.gate.isActive() }

// SetEnabled mutes or unmutes the voice in the mix. The voice keeps running
// while disabled.
func (b *base) SetEnabled(v bool) { b.enabled.Store(v) }
func (b *base) Enabled() bool     { return b.enabled.Load() }

func unknownPreset(kind, name string) error {
	return fmt.Errorf("%w: %s %q", ErrUnknownPreset, kind, name)
}
