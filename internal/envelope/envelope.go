// Package envelope implements the amplitude and pitch shaping curves used by
// the drum voices and the composable instruments.
package envelope

import "math"

type Phase int

const (
	Idle Phase = iota
	Attack
	Decay
	Sustain
	Release
)

func (p Phase) String() string {
	switch p {
	case Attack:
		return "attack"
	case Decay:
		return "decay"
	case Sustain:
		return "sustain"
	case Release:
		return "release"
	default:
		return "idle"
	}
}

type Mode int

const (
	// ModeADSR holds at the sustain level until Release is called.
	ModeADSR Mode = iota
	// ModeOneShot runs Attack then Decay and ends. Release is ignored.
	ModeOneShot
)

// Floor is the level at which an exponential segment is considered silent
// (-60 dB).
const Floor = 0.001

// expK makes exp(-expK * t/T) reach Floor when t == T.
var expK = math.Log(1 / Floor)

// Envelope is owned by the audio path. Segment times are in seconds and may
// be changed between calls to Advance; the running segment picks them up on
// the next sample.
type Envelope struct {
	Mode         Mode
	AttackTime   float64
	DecayTime    float64
	SustainLevel float64
	ReleaseTime  float64

	phase        Phase
	level        float64
	elapsed      float64
	releaseStart float64
}

// NewADSR returns a sustaining four-stage envelope.
func NewADSR(attack, decay, sustain, release float64) *Envelope {
	return &Envelope{Mode: ModeADSR, AttackTime: attack, DecayTime: decay, SustainLevel: sustain, ReleaseTime: release}
}

// NewOneShot returns a drum envelope: linear attack then exponential decay
// to silence.
func NewOneShot(attack, decay float64) *Envelope {
	return &Envelope{Mode: ModeOneShot, AttackTime: attack, DecayTime: decay}
}

// Trigger restarts the envelope from the beginning of Attack, whatever phase
// it was in.
func (e *Envelope) Trigger() {
	e.phase = Attack
	e.level = 0
	e.elapsed = 0
}

// Release moves a sustaining envelope into its release segment. It has no
// effect on one-shot envelopes or when already idle or releasing.
func (e *Envelope) Release() {
	if e.Mode == ModeOneShot {
		return
	}
	switch e.phase {
	case Attack, Decay, Sustain:
		e.releaseStart = e.level
		e.elapsed = 0
		e.phase = Release
	}
}

// Advance moves the envelope forward by dt seconds and returns the new level.
func (e *Envelope) Advance(dt float64) float64 {
	if e.phase == Idle {
		e.level = 0
		return 0
	}
	e.elapsed += dt
	if e.phase == Attack {
		if e.AttackTime <= 0 || e.elapsed >= e.AttackTime {
			if e.AttackTime > 0 {
				e.elapsed -= e.AttackTime
			}
			e.phase = Decay
		} else {
			e.level = e.elapsed / e.AttackTime
			return e.level
		}
	}
	switch e.phase {
	case Decay:
		target := 0.0
		if e.Mode == ModeADSR {
			target = clamp01(e.SustainLevel)
		}
		if e.DecayTime <= 0 || e.elapsed >= e.DecayTime {
			e.finishDecay(target)
			return e.level
		}
		e.level = target + (1-target)*math.Exp(-expK*e.elapsed/e.DecayTime)
		if e.Mode == ModeOneShot && e.level <= Floor {
			e.finishDecay(target)
		}
	case Sustain:
		e.level = clamp01(e.SustainLevel)
	case Release:
		if e.ReleaseTime <= 0 || e.elapsed >= e.ReleaseTime {
			e.stop()
			return 0
		}
		e.level = e.releaseStart * math.Exp(-expK*e.elapsed/e.ReleaseTime)
		if e.level <= Floor {
			e.stop()
		}
	}
	return e.level
}

func (e *Envelope) finishDecay(target float64) {
	if e.Mode == ModeOneShot || target <= Floor {
		e.stop()
		return
	}
	e.level = target
	e.elapsed = 0
	e.phase = Sustain
}

func (e *Envelope) stop() {
	e.level = 0
	e.elapsed = 0
	e.phase = Idle
}

// Reset forces the envelope to Idle.
func (e *Envelope) Reset() { e.stop() }

func (e *Envelope) Phase() Phase   { return e.phase }
func (e *Envelope) Level() float64 { return e.level }
func (e *Envelope) Active() bool   { return e.phase != Idle }

// Sweep is a one-shot pitch multiplier that starts at Start and glides
// exponentially down to 1 over Duration seconds.
type Sweep struct {
	Start    float64
	Duration float64

	elapsed float64
	running bool
}

func (s *Sweep) Trigger() {
	s.elapsed = 0
	s.running = true
}

// Advance returns the multiplier for the next sample. Once the glide has
// finished it returns 1.
func (s *Sweep) Advance(dt float64) float64 {
	if !s.running {
		return 1
	}
	s.elapsed += dt
	if s.Duration <= 0 || s.elapsed >= s.Duration {
		s.running = false
		return 1
	}
	return 1 + (s.Start-1)*math.Exp(-expK*s.elapsed/s.Duration)
}

func (s *Sweep) Running() bool { return s.running }

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
