// Package sequencer implements the 16-step pattern sequencer. Timing is
// pulled: the audio path calls Advance with the engine clock once per tick and
// the sequencer fires every step whose deadline has passed.
package sequencer

import (
	"errors"
	"math"
	"sync"
	"sync/atomic"

	"github.com/cbegin/gooey-go/internal/param"
)

const (
	// Lanes is the number of pattern rows.
	Lanes = 4
	// Steps is the number of cells per lane.
	Steps = 16
)

// Lane assignments used by the stage.
const (
	LaneKick = iota
	LaneSnare
	LaneHiHat
	LaneTom
)

var (
	ErrInvalidLane = errors.New("sequencer: lane out of range")
	ErrInvalidStep = errors.New("sequencer: step out of range")
)

var bpmRange = param.Range{Min: 20, Max: 300, Default: 120}

// Interval returns the length of one sixteenth-note step in seconds.
func Interval(bpm float64) float64 {
	return 60 / bpm / 4
}

// Sequencer holds the pattern and the step clock. Pattern edits, tempo
// changes and transport calls may come from any goroutine; Advance and
// Deadline belong to the audio path.
type Sequencer struct {
	pattern [Lanes]atomic.Uint32
	bpm     param.Ranged
	step    atomic.Int32
	playing atomic.Bool

	mu     sync.Mutex
	anchor param.Float
	start  atomic.Bool

	deadline float64
}

func New() *Sequencer {
	s := &Sequencer{}
	s.bpm.Range = bpmRange
	s.bpm.Set(bpmRange.Default)
	return s
}

// Play starts playback with the first step due at the next Advance.
func (s *Sequencer) Play() { s.PlayAt(math.NaN()) }

// PlayAt starts playback with the first step due at engine time t. A NaN t
// means "now". Calling it while already playing has no effect.
func (s *Sequencer) PlayAt(t float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.playing.Load() {
		return
	}
	s.anchor.Store(t)
	s.start.Store(true)
	s.playing.Store(true)
}

// Stop halts playback. The step index and the pattern are kept.
func (s *Sequencer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing.Store(false)
}

// Reset moves the step index back to 0 in either state.
func (s *Sequencer) Reset() { s.step.Store(0) }

func (s *Sequencer) IsPlaying() bool { return s.playing.Load() }

// CurrentStep is the index of the next step to be evaluated.
func (s *Sequencer) CurrentStep() int { return int(s.step.Load()) }

// SetBPM clamps bpm to 20..300. The pending deadline is kept; only the
// spacing of later steps changes.
func (s *Sequencer) SetBPM(bpm float64) { s.bpm.Set(bpm) }
func (s *Sequencer) BPM() float64       { return s.bpm.Load() }

func checkCell(lane, step int) error {
	if lane < 0 || lane >= Lanes {
		return ErrInvalidLane
	}
	if step < 0 || step >= Steps {
		return ErrInvalidStep
	}
	return nil
}

func (s *Sequencer) SetStep(lane, step int, enabled bool) error {
	if err := checkCell(lane, step); err != nil {
		return err
	}
	bit := uint32(1) << step
	if enabled {
		s.pattern[lane].Or(bit)
	} else {
		s.pattern[lane].And(^bit)
	}
	return nil
}

func (s *Sequencer) Step(lane, step int) (bool, error) {
	if err := checkCell(lane, step); err != nil {
		return false, err
	}
	return s.pattern[lane].Load()&(1<<step) != 0, nil
}

// Lane returns a snapshot of one lane.
func (s *Sequencer) Lane(lane int) ([Steps]bool, error) {
	var out [Steps]bool
	if lane < 0 || lane >= Lanes {
		return out, ErrInvalidLane
	}
	bits := s.pattern[lane].Load()
	for i := range out {
		out[i] = bits&(1<<i) != 0
	}
	return out, nil
}

// ClearAll disables every cell of every lane.
func (s *Sequencer) ClearAll() {
	for i := range s.pattern {
		s.pattern[i].Store(0)
	}
}

// SetDefaultPatterns loads four-on-the-floor kick, backbeat snare and eighth
// note hi-hats. The tom lane is cleared.
func (s *Sequencer) SetDefaultPatterns() {
	s.pattern[LaneKick].Store(cells(0, 4, 8, 12))
	s.pattern[LaneSnare].Store(cells(4, 12))
	s.pattern[LaneHiHat].Store(cells(0, 2, 4, 6, 8, 10, 12, 14))
	s.pattern[LaneTom].Store(0)
}

func cells(steps ...int) uint32 {
	var bits uint32
	for _, st := range steps {
		bits |= 1 << st
	}
	return bits
}

// Advance fires every step whose deadline is at or before now, calling fire
// once per enabled lane. Deadlines accumulate from the previous deadline so
// rounding never drifts. When more than a full bar is overdue the clock is
// re-anchored instead of replaying the backlog.
func (s *Sequencer) Advance(now float64, fire func(lane int)) {
	// PlayAt publishes start before playing, so a start is always seen by
	// the first Advance that sees playing.
	if !s.playing.Load() {
		return
	}
	if s.start.Swap(false) {
		a := s.anchor.Load()
		if math.IsNaN(a) {
			a = now
		}
		s.deadline = a
	}
	for n := 0; now >= s.deadline; n++ {
		if n == Steps {
			s.deadline = now + Interval(s.bpm.Load())
			return
		}
		cur := s.step.Load()
		for lane := range s.pattern {
			if s.pattern[lane].Load()&(1<<cur) != 0 {
				fire(lane)
			}
		}
		s.step.CompareAndSwap(cur, (cur+1)%Steps)
		s.deadline += Interval(s.bpm.Load())
	}
}

// Deadline is the engine time of the next step. Audio path only.
func (s *Sequencer) Deadline() float64 { return s.deadline }
