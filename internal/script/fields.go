package script

import (
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/cbegin/gooey-go/internal/lfo"
	"github.com/cbegin/gooey-go/internal/osc"
	"github.com/cbegin/gooey-go/internal/voice"
)

type setter func(float64)

func boolSetter(fn func(bool)) setter {
	return func(v float64) { fn(v != 0) }
}

func (e *Engine) drumFields(kind string) (map[string]setter, bool) {
	t := e.target
	switch kind {
	case "kick":
		k := t.Kick()
		return map[string]setter{
			"frequency":   k.SetFrequency,
			"punch":       k.SetPunch,
			"sub":         k.SetSub,
			"click":       k.SetClick,
			"decay":       k.SetDecay,
			"pitch_drop":  k.SetPitchDrop,
			"volume":      k.SetVolume,
			"overdrive":   k.SetOverdrive,
			"phase_reset": boolSetter(k.SetPhaseReset),
			"enabled":     boolSetter(k.SetEnabled),
		}, true
	case "snare":
		s := t.Snare()
		return map[string]setter{
			"frequency":  s.SetFrequency,
			"tonal":      s.SetTonal,
			"noise":      s.SetNoise,
			"crack":      s.SetCrack,
			"decay":      s.SetDecay,
			"pitch_drop": s.SetPitchDrop,
			"volume":     s.SetVolume,
			"enabled":    boolSetter(s.SetEnabled),
		}, true
	case "hihat":
		h := t.HiHat()
		return map[string]setter{
			"frequency":  h.SetBaseFrequency,
			"resonance":  h.SetResonance,
			"brightness": h.SetBrightness,
			"decay":      h.SetDecay,
			"attack":     h.SetAttack,
			"volume":     h.SetVolume,
			"open":       boolSetter(h.SetOpen),
			"enabled":    boolSetter(h.SetEnabled),
		}, true
	case "tom":
		m := t.Tom()
		return map[string]setter{
			"frequency":  m.SetFrequency,
			"tonal":      m.SetTonal,
			"punch":      m.SetPunch,
			"decay":      m.SetDecay,
			"pitch_drop": m.SetPitchDrop,
			"volume":     m.SetVolume,
			"enabled":    boolSetter(m.SetEnabled),
		}, true
	}
	return nil, false
}

// set(kind, field, value[, osc]) writes one parameter. kind is a drum name
// or a composable slot index; osc picks an oscillator of that slot for the
// oscillator fields and defaults to the first one.
func (e *Engine) set(L *lua.LState) int {
	field := strings.ToLower(L.CheckString(2))
	value := L.CheckAny(3)
	if slot, ok := L.CheckAny(1).(lua.LNumber); ok {
		n := L.OptInt(4, 0)
		if err := e.setInstrument(int(slot), n, field, value); err != nil {
			return e.fail(L, err)
		}
		return 0
	}
	kind := strings.ToLower(L.CheckString(1))
	fields, ok := e.drumFields(kind)
	if !ok {
		return e.fail(L, fmt.Errorf("%w: unknown voice %q", ErrUnknownField, kind))
	}
	fn, ok := fields[field]
	if !ok {
		return e.fail(L, fmt.Errorf("%w: %s.%s", ErrUnknownField, kind, field))
	}
	v, err := number(value)
	if err != nil {
		return e.fail(L, err)
	}
	fn(v)
	return 0
}

func (e *Engine) setInstrument(slot, n int, field string, value lua.LValue) error {
	t := e.target
	if field == "waveform" {
		w, ok := osc.ParseWaveform(value.String())
		if !ok {
			return fmt.Errorf("%w: %q", voice.ErrInvalidOscillator, value.String())
		}
		return t.SetInstrumentOscillatorWaveform(slot, n, w)
	}
	v, err := number(value)
	if err != nil {
		return err
	}
	switch field {
	case "volume":
		return t.SetInstrumentVolume(slot, v)
	case "frequency":
		return t.SetInstrumentOscillatorFrequency(slot, n, v)
	case "mod_frequency":
		return t.SetInstrumentOscillatorModulatorFrequency(slot, n, v)
	case "level":
		return t.SetInstrumentOscillatorLevel(slot, n, v)
	case "enabled":
		return t.SetInstrumentEnabled(slot, v != 0)
	case "attack", "decay", "sustain", "release":
		adsr, err := t.InstrumentADSR(slot)
		if err != nil {
			return err
		}
		switch field {
		case "attack":
			adsr.Attack = v
		case "decay":
			adsr.Decay = v
		case "sustain":
			adsr.Sustain = v
		case "release":
			adsr.Release = v
		}
		return t.SetInstrumentADSR(slot, adsr)
	}
	return fmt.Errorf("%w: slot %d.%s", ErrUnknownField, slot, field)
}

func (e *Engine) setLFO(L *lua.LState) int {
	l := e.target.LFO()
	field := strings.ToLower(L.CheckString(1))
	value := L.CheckAny(2)
	switch field {
	case "waveform":
		w, ok := osc.ParseWaveform(value.String())
		if !ok {
			return e.fail(L, fmt.Errorf("%w: lfo waveform %q", ErrUnknownField, value.String()))
		}
		l.SetWaveform(w)
		return 0
	case "rate":
		r, ok := lfo.ParseRate(value.String())
		if !ok {
			return e.fail(L, fmt.Errorf("%w: lfo rate %q", ErrUnknownField, value.String()))
		}
		l.SetRate(r)
		return 0
	}
	v, err := number(value)
	if err != nil {
		return e.fail(L, err)
	}
	switch field {
	case "enabled":
		l.SetEnabled(v != 0)
	case "depth":
		l.SetDepth(v)
	default:
		return e.fail(L, fmt.Errorf("%w: lfo.%s", ErrUnknownField, field))
	}
	return 0
}

func (e *Engine) setMaster(L *lua.LState) int {
	field := strings.ToLower(L.CheckString(1))
	v, err := number(L.CheckAny(2))
	if err != nil {
		return e.fail(L, err)
	}
	switch field {
	case "volume":
		e.target.SetMasterVolume(v)
	case "saturation":
		e.target.SetSaturation(v)
	case "limiter":
		e.target.Effects().Limiter.SetThreshold(v)
	default:
		return e.fail(L, fmt.Errorf("%w: master.%s", ErrUnknownField, field))
	}
	return 0
}

// eq(band, gain) with bands counted from 1 as Lua does.
func (e *Engine) eq(L *lua.LState) int {
	e.target.SetEQBand(L.CheckInt(1)-1, float64(L.CheckNumber(2)))
	return 0
}

// fx(name, on[, preset]) toggles a master bus processor.
func (e *Engine) fx(L *lua.LState) int {
	bus := e.target.Effects()
	name := strings.ToLower(L.CheckString(1))
	on := L.ToBool(2)
	switch name {
	case "distortion":
		if L.GetTop() >= 3 {
			if err := bus.Distortion.LoadPreset(L.CheckString(3)); err != nil {
				return e.fail(L, err)
			}
		}
		bus.Distortion.SetEnabled(on)
	case "chorus":
		bus.Chorus.SetEnabled(on)
	case "delay":
		bus.Delay.SetEnabled(on)
	case "reverb":
		bus.Reverb.SetEnabled(on)
	case "eq":
		bus.EQ.SetEnabled(on)
	case "compressor":
		bus.Compressor.SetEnabled(on)
	case "limiter":
		bus.Limiter.SetEnabled(on)
	default:
		return e.fail(L, fmt.Errorf("%w: fx %q", ErrUnknownField, name))
	}
	return 0
}
