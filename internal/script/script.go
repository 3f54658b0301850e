// Package script drives a stage from Lua. Scripts configure voices, edit the
// pattern and control the transport; they run on the control path.
package script

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/cbegin/gooey-go/internal/effects"
	"github.com/cbegin/gooey-go/internal/lfo"
	"github.com/cbegin/gooey-go/internal/osc"
	"github.com/cbegin/gooey-go/internal/sequencer"
	"github.com/cbegin/gooey-go/internal/voice"
)

var ErrUnknownField = errors.New("script: unknown field")

// Target is the control surface a script can reach.
type Target interface {
	TriggerLane(lane int) error
	TriggerInstrument(index int) error
	ReleaseInstrument(index int) error

	LoadKickPreset(name string) error
	LoadSnarePreset(name string) error
	LoadHiHatPreset(name string) error
	LoadTomPreset(name string) error
	Kick() *voice.Kick
	Snare() *voice.Snare
	HiHat() *voice.HiHat
	Tom() *voice.Tom

	SetStep(lane, step int, enabled bool) error
	ClearAll()
	SetDefaultPatterns()
	SetBPM(bpm float64)
	Play()
	Stop()
	ResetSequencer()

	AddOscillator(freq float64, w osc.Waveform) int
	SetInstrumentEnabled(index int, enabled bool) error
	SetInstrumentVolume(index int, v float64) error
	AddInstrumentOscillator(index int, freq float64, w osc.Waveform) (int, error)
	SetInstrumentOscillatorFrequency(index, n int, hz float64) error
	SetInstrumentOscillatorModulatorFrequency(index, n int, hz float64) error
	SetInstrumentOscillatorWaveform(index, n int, w osc.Waveform) error
	SetInstrumentOscillatorLevel(index, n int, level float64) error
	InstrumentADSR(index int) (voice.ADSRConfig, error)
	SetInstrumentADSR(index int, cfg voice.ADSRConfig) error

	LFO() *lfo.LFO
	SetMasterVolume(v float64)
	SetSaturation(v float64)
	SetEQBand(band int, gain float64)
	Effects() *effects.Bus
}

var lanes = map[string]int{
	"kick":  sequencer.LaneKick,
	"snare": sequencer.LaneSnare,
	"hihat": sequencer.LaneHiHat,
	"tom":   sequencer.LaneTom,
}

// Engine is one Lua state bound to a target.
type Engine struct {
	L      *lua.LState
	target Target
	logger *slog.Logger
	err    error
}

func New(target Target, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	e := &Engine{L: lua.NewState(), target: target, logger: logger}
	e.register()
	return e
}

func (e *Engine) Close() { e.L.Close() }

// Run executes source. A failing stage call aborts the script and its error
// is returned wrapped, so callers can match it with errors.Is.
func (e *Engine) Run(source string) error {
	e.err = nil
	return e.result(e.L.DoString(source))
}

func (e *Engine) RunFile(path string) error {
	e.err = nil
	return e.result(e.L.DoFile(path))
}

func (e *Engine) result(err error) error {
	if err == nil {
		return nil
	}
	if e.err != nil {
		return fmt.Errorf("script: %w", e.err)
	}
	return fmt.Errorf("script: %v", err)
}

// Run executes source once against target.
func Run(target Target, source string) error {
	e := New(target, nil)
	defer e.Close()
	return e.Run(source)
}

func (e *Engine) register() {
	fns := map[string]lua.LGFunction{
		"trigger":  e.trigger,
		"release":  e.release,
		"preset":   e.preset,
		"set":      e.set,
		"step":     e.step,
		"clear":    e.noArgs(e.target.ClearAll),
		"defaults": e.noArgs(e.target.SetDefaultPatterns),
		"play":     e.noArgs(e.target.Play),
		"stop":     e.noArgs(e.target.Stop),
		"reset":    e.noArgs(e.target.ResetSequencer),
		"bpm":      e.bpm,
		"osc":      e.addOscillator,
		"partial":  e.addPartial,
		"lfo":      e.setLFO,
		"master":   e.setMaster,
		"eq":       e.eq,
		"fx":       e.fx,
		"log":      e.log,
	}
	for name, fn := range fns {
		e.L.SetGlobal(name, e.L.NewFunction(fn))
	}
}

// fail records err and raises it in Lua.
func (e *Engine) fail(L *lua.LState, err error) int {
	if e.err == nil {
		e.err = err
	}
	L.RaiseError("%s", err.Error())
	return 0
}

func (e *Engine) noArgs(fn func()) lua.LGFunction {
	return func(L *lua.LState) int {
		fn()
		return 0
	}
}

// slotOrLane resolves a drum name to a lane or a number to a slot index.
func slotOrLane(v lua.LValue) (lane int, slot int, isLane bool, err error) {
	switch v := v.(type) {
	case lua.LString:
		l, ok := lanes[strings.ToLower(string(v))]
		if !ok {
			return 0, 0, false, fmt.Errorf("%w: unknown drum %q", sequencer.ErrInvalidLane, string(v))
		}
		return l, 0, true, nil
	case lua.LNumber:
		return 0, int(v), false, nil
	}
	return 0, 0, false, fmt.Errorf("expected drum name or slot, got %s", v.Type())
}

func (e *Engine) trigger(L *lua.LState) int {
	lane, slot, isLane, err := slotOrLane(L.CheckAny(1))
	if err == nil {
		if isLane {
			err = e.target.TriggerLane(lane)
		} else {
			err = e.target.TriggerInstrument(slot)
		}
	}
	if err != nil {
		return e.fail(L, err)
	}
	return 0
}

func (e *Engine) release(L *lua.LState) int {
	_, slot, isLane, err := slotOrLane(L.CheckAny(1))
	if err == nil && !isLane {
		err = e.target.ReleaseInstrument(slot)
	}
	if err != nil {
		return e.fail(L, err)
	}
	return 0
}

func (e *Engine) preset(L *lua.LState) int {
	kind := strings.ToLower(L.CheckString(1))
	name := L.CheckString(2)
	var err error
	switch kind {
	case "kick":
		err = e.target.LoadKickPreset(name)
	case "snare":
		err = e.target.LoadSnarePreset(name)
	case "hihat":
		err = e.target.LoadHiHatPreset(name)
	case "tom":
		err = e.target.LoadTomPreset(name)
	default:
		err = fmt.Errorf("%w: no presets for %q", voice.ErrUnknownPreset, kind)
	}
	if err != nil {
		return e.fail(L, err)
	}
	return 0
}

func (e *Engine) step(L *lua.LState) int {
	var lane int
	switch v := L.CheckAny(1).(type) {
	case lua.LString:
		l, ok := lanes[strings.ToLower(string(v))]
		if !ok {
			return e.fail(L, fmt.Errorf("%w: %q", sequencer.ErrInvalidLane, string(v)))
		}
		lane = l
	default:
		lane = L.CheckInt(1)
	}
	on := true
	if L.GetTop() >= 3 {
		on = L.ToBool(3)
	}
	if err := e.target.SetStep(lane, L.CheckInt(2), on); err != nil {
		return e.fail(L, err)
	}
	return 0
}

func (e *Engine) bpm(L *lua.LState) int {
	e.target.SetBPM(float64(L.CheckNumber(1)))
	return 0
}

func (e *Engine) addOscillator(L *lua.LState) int {
	freq := float64(L.CheckNumber(1))
	w := osc.Sine
	if L.GetTop() >= 2 {
		var ok bool
		if w, ok = osc.ParseWaveform(L.CheckString(2)); !ok {
			return e.fail(L, fmt.Errorf("%w: %q", voice.ErrInvalidOscillator, L.CheckString(2)))
		}
	}
	L.Push(lua.LNumber(e.target.AddOscillator(freq, w)))
	return 1
}

// partial(slot, freq[, waveform]) adds an oscillator to a composable slot
// and returns its index within the slot.
func (e *Engine) addPartial(L *lua.LState) int {
	slot := L.CheckInt(1)
	freq := float64(L.CheckNumber(2))
	w := osc.Sine
	if L.GetTop() >= 3 {
		var ok bool
		if w, ok = osc.ParseWaveform(L.CheckString(3)); !ok {
			return e.fail(L, fmt.Errorf("%w: %q", voice.ErrInvalidOscillator, L.CheckString(3)))
		}
	}
	n, err := e.target.AddInstrumentOscillator(slot, freq, w)
	if err != nil {
		return e.fail(L, err)
	}
	L.Push(lua.LNumber(n))
	return 1
}

func (e *Engine) log(L *lua.LState) int {
	parts := make([]string, 0, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		parts = append(parts, L.Get(i).String())
	}
	e.logger.Info(strings.Join(parts, " "), "source", "script")
	return 0
}

func number(v lua.LValue) (float64, error) {
	switch v := v.(type) {
	case lua.LNumber:
		return float64(v), nil
	case lua.LBool:
		if v {
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("expected number, got %s", v.Type())
}
