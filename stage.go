// Package gooey is a real-time drum synthesis engine with a 16-step
// sequencer. A Stage owns the built-in drum voices, any number of composable
// oscillator instruments, the sequencer, an LFO and the master bus; the host
// pulls audio from it one sample (Tick) or one buffer (Process) at a time.
package gooey

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"

	"github.com/cbegin/gooey-go/internal/effects"
	"github.com/cbegin/gooey-go/internal/lfo"
	"github.com/cbegin/gooey-go/internal/osc"
	"github.com/cbegin/gooey-go/internal/param"
	"github.com/cbegin/gooey-go/internal/sequencer"
	"github.com/cbegin/gooey-go/internal/voice"
)

var (
	ErrInvalidSampleRate = errors.New("gooey: sample rate must be positive")
	ErrInvalidSlot       = errors.New("gooey: instrument slot out of range")
	ErrRemovedSlot       = errors.New("gooey: instrument slot was removed")
	ErrNotComposable     = errors.New("gooey: instrument is not a composable oscillator voice")
	ErrInvalidLane       = sequencer.ErrInvalidLane
	ErrInvalidStep       = sequencer.ErrInvalidStep
	ErrUnknownPreset     = voice.ErrUnknownPreset
	ErrInvalidOscillator = voice.ErrInvalidOscillator
)

type (
	Voice            = voice.Voice
	KickConfig       = voice.KickConfig
	SnareConfig      = voice.SnareConfig
	HiHatConfig      = voice.HiHatConfig
	TomConfig        = voice.TomConfig
	ADSRConfig       = voice.ADSRConfig
	Waveform         = osc.Waveform
	Rate             = lfo.Rate
	DistortionConfig = effects.DistortionConfig
)

const (
	Sine     = osc.Sine
	Square   = osc.Square
	Saw      = osc.Saw
	Triangle = osc.Triangle
	RingMod  = osc.RingMod
	Noise    = osc.Noise
)

const (
	Sixteenth = lfo.Sixteenth
	Eighth    = lfo.Eighth
	Quarter   = lfo.Quarter
	Half      = lfo.Half
	Whole     = lfo.Whole
)

// Sequencer lanes.
const (
	LaneKick  = sequencer.LaneKick
	LaneSnare = sequencer.LaneSnare
	LaneHiHat = sequencer.LaneHiHat
	LaneTom   = sequencer.LaneTom
	Lanes     = sequencer.Lanes
	Steps     = sequencer.Steps
)

// lfoOctaves is the hi-hat cutoff swing at full LFO depth.
const lfoOctaves = 2

var (
	masterVolumeRange = param.Range{Min: 0, Max: 1, Default: 1}
	saturationRange   = param.Range{Min: 0, Max: 1, Default: 0}
)

type Option func(*stageConfig)

type stageConfig struct {
	logger       *slog.Logger
	masterVolume float64
	saturation   float64
	bpm          float64
	seed         uint32
}

func defaultStageConfig() stageConfig {
	return stageConfig{
		logger:       slog.New(slog.DiscardHandler),
		masterVolume: masterVolumeRange.Default,
		saturation:   saturationRange.Default,
		bpm:          120,
		seed:         1,
	}
}

// WithLogger routes control-path diagnostics to logger. The audio path never
// logs.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *stageConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

func WithMasterVolume(v float64) Option {
	return func(cfg *stageConfig) { cfg.masterVolume = v }
}

func WithSaturation(v float64) Option {
	return func(cfg *stageConfig) { cfg.saturation = v }
}

func WithBPM(bpm float64) Option {
	return func(cfg *stageConfig) { cfg.bpm = bpm }
}

// WithNoiseSeed sets the base seed of every noise generator so renders are
// reproducible run to run.
func WithNoiseSeed(seed uint32) Option {
	return func(cfg *stageConfig) { cfg.seed = seed }
}

// drum is a built-in voice with its own enabled flag.
type drum interface {
	voice.Voice
	Enabled() bool
	SetEnabled(bool)
}

type slot struct {
	voice   voice.Voice
	enabled atomic.Bool
	removed atomic.Bool
}

// Stage mixes every voice into one output. All exported methods except Tick
// and Process are control-path calls, safe to use from any goroutine while
// the audio path runs.
type Stage struct {
	sampleRate int
	logger     *slog.Logger
	seed       uint32

	kick  *voice.Kick
	snare *voice.Snare
	hihat *voice.HiHat
	tom   *voice.Tom
	drums [Lanes]drum

	mu    sync.Mutex
	slots atomic.Pointer[[]*slot]

	seq *sequencer.Sequencer
	lfo *lfo.LFO
	bus *effects.Bus

	masterVolume param.Ranged
	saturation   param.Ranged

	// audio path
	frame   uint64
	lastMod float64
	fire    func(lane int)
	clock   param.Float
}

// New builds a stage with the four drums at their default presets, no
// composable instruments, a stopped sequencer and a disabled LFO.
func New(sampleRate int, opts ...Option) (*Stage, error) {
	if sampleRate <= 0 {
		return nil, ErrInvalidSampleRate
	}
	cfg := defaultStageConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	sr := float64(sampleRate)
	s := &Stage{
		sampleRate: sampleRate,
		logger:     cfg.logger,
		seed:       cfg.seed,
		kick:       voice.NewKick(sr, cfg.seed+1),
		snare:      voice.NewSnare(sr, cfg.seed+2),
		hihat:      voice.NewHiHat(sr, cfg.seed+3),
		tom:        voice.NewTom(sr, cfg.seed+4),
		seq:        sequencer.New(),
		lfo:        lfo.New(),
		bus:        effects.NewBus(sampleRate),
	}
	s.drums = [Lanes]drum{LaneKick: s.kick, LaneSnare: s.snare, LaneHiHat: s.hihat, LaneTom: s.tom}
	s.fire = func(lane int) { s.drums[lane].Trigger() }
	s.masterVolume.Range = masterVolumeRange
	s.saturation.Range = saturationRange
	s.masterVolume.Set(cfg.masterVolume)
	s.saturation.Set(cfg.saturation)
	s.seq.SetBPM(cfg.bpm)
	empty := []*slot{}
	s.slots.Store(&empty)
	s.logger.Debug("stage created", "sample_rate", sampleRate, "bpm", s.seq.BPM())
	return s, nil
}

func (s *Stage) SampleRate() int { return s.sampleRate }

// Now is the engine clock in seconds: samples produced so far divided by the
// sample rate.
func (s *Stage) Now() float64 { return s.clock.Load() }

// Saturate is the master soft clip: tanh of the sum scaled by volume, with
// saturation adding up to 4x extra drive.
func Saturate(sum, volume, saturation float64) float64 {
	return math.Tanh(sum * volume * (1 + 4*saturation))
}

// Tick produces one output sample. Sequencer steps that fall due are fired
// first so their voices sound on this very sample; the LFO then updates the
// hi-hat cutoff before the voices run.
func (s *Stage) Tick() float64 {
	now := float64(s.frame) / float64(s.sampleRate)
	s.seq.Advance(now, s.fire)

	mod := lfoOctaves * s.lfo.Tick(s.seq.BPM(), float64(s.sampleRate))
	if mod != s.lastMod {
		s.hihat.SetCutoffModulation(mod)
		s.lastMod = mod
	}

	var sum float64
	for _, d := range s.drums {
		v := d.Tick()
		if d.Enabled() {
			sum += v
		}
	}
	for _, sl := range *s.slots.Load() {
		if sl.removed.Load() {
			continue
		}
		v := sl.voice.Tick()
		if sl.enabled.Load() {
			sum += v
		}
	}
	out := Saturate(sum, s.masterVolume.Load(), s.saturation.Load())
	out = s.bus.Process(out)

	s.frame++
	s.clock.Store(float64(s.frame) / float64(s.sampleRate))
	return out
}

// Process fills dst with interleaved stereo frames, the same sample on both
// channels.
func (s *Stage) Process(dst []float32) {
	for i := 0; i+1 < len(dst); i += 2 {
		v := float32(s.Tick())
		dst[i] = v
		dst[i+1] = v
	}
}

// Master bus.

func (s *Stage) SetMasterVolume(v float64) { s.masterVolume.Set(v) }
func (s *Stage) MasterVolume() float64     { return s.masterVolume.Load() }
func (s *Stage) SetSaturation(v float64)   { s.saturation.Set(v) }
func (s *Stage) Saturation() float64       { return s.saturation.Load() }

// Effects exposes the master bus processors.
func (s *Stage) Effects() *effects.Bus { return s.bus }

// SetEQBand sets the gain for a master EQ band (0-4). 1.0 = unity.
// Band frequencies: 0=<200Hz, 1=200-800Hz, 2=800-2.5kHz, 3=2.5-8kHz, 4=>8kHz.
func (s *Stage) SetEQBand(band int, gain float64) { s.bus.EQ.SetGain(band, gain) }
func (s *Stage) EQBand(band int) float64          { return s.bus.EQ.Gain(band) }

// LFO returns the modulator routed to the hi-hat filter cutoff.
func (s *Stage) LFO() *lfo.LFO { return s.lfo }

// Sequencer returns the step sequencer driven by this stage's clock.
func (s *Stage) Sequencer() *sequencer.Sequencer { return s.seq }

// Composable and custom instruments.

// AddOscillator appends a composable instrument with one oscillator and
// returns its slot index.
func (s *Stage) AddOscillator(freq float64, w Waveform) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(*s.slots.Load())
	c := voice.NewComposable(float64(s.sampleRate), s.instrumentSeed(n), freq, w)
	return s.appendSlot(c)
}

// instrumentSeed gives every slot its own noise sequence.
func (s *Stage) instrumentSeed(slot int) uint32 {
	return s.seed + 100 + uint32(slot)*16
}

// AddInstrument appends v and returns its slot index. Indices increase
// monotonically and are never reused.
func (s *Stage) AddInstrument(v Voice) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendSlot(v)
}

// appendSlot publishes a new slot list. Callers hold s.mu.
func (s *Stage) appendSlot(v Voice) int {
	cur := *s.slots.Load()
	next := make([]*slot, len(cur), len(cur)+1)
	copy(next, cur)
	sl := &slot{voice: v}
	sl.enabled.Store(true)
	next = append(next, sl)
	s.slots.Store(&next)
	s.logger.Debug("instrument added", "slot", len(next)-1)
	return len(next) - 1
}

// RemoveInstrument tombstones a slot. The index stays allocated and later
// calls addressing it return ErrRemovedSlot.
func (s *Stage) RemoveInstrument(index int) error {
	sl, err := s.slot(index)
	if err != nil {
		return err
	}
	sl.removed.Store(true)
	s.logger.Debug("instrument removed", "slot", index)
	return nil
}

// NumInstruments returns the number of slots ever allocated, removed ones
// included.
func (s *Stage) NumInstruments() int { return len(*s.slots.Load()) }

func (s *Stage) slot(index int) (*slot, error) {
	list := *s.slots.Load()
	if index < 0 || index >= len(list) {
		s.logger.Warn("invalid instrument slot", "slot", index, "slots", len(list))
		return nil, fmt.Errorf("%w: %d", ErrInvalidSlot, index)
	}
	sl := list[index]
	if sl.removed.Load() {
		return nil, fmt.Errorf("%w: %d", ErrRemovedSlot, index)
	}
	return sl, nil
}

func (s *Stage) composable(index int) (*voice.Composable, error) {
	sl, err := s.slot(index)
	if err != nil {
		return nil, err
	}
	c, ok := sl.voice.(*voice.Composable)
	if !ok {
		return nil, fmt.Errorf("%w: slot %d", ErrNotComposable, index)
	}
	return c, nil
}

// Instrument returns the voice in a slot.
func (s *Stage) Instrument(index int) (Voice, error) {
	sl, err := s.slot(index)
	if err != nil {
		return nil, err
	}
	return sl.voice, nil
}

func (s *Stage) TriggerInstrument(index int) error {
	sl, err := s.slot(index)
	if err != nil {
		return err
	}
	sl.voice.Trigger()
	return nil
}

func (s *Stage) ReleaseInstrument(index int) error {
	sl, err := s.slot(index)
	if err != nil {
		return err
	}
	sl.voice.Release()
	return nil
}

// TriggerAll triggers every live composable or custom instrument.
func (s *Stage) TriggerAll() {
	for _, sl := range *s.slots.Load() {
		if !sl.removed.Load() {
			sl.voice.Trigger()
		}
	}
}

// ReleaseAll releases every live composable or custom instrument.
func (s *Stage) ReleaseAll() {
	for _, sl := range *s.slots.Load() {
		if !sl.removed.Load() {
			sl.voice.Release()
		}
	}
}

// SetInstrumentEnabled mutes or unmutes a slot. A muted voice keeps running
// and is heard again on re-enable if it is still active.
func (s *Stage) SetInstrumentEnabled(index int, enabled bool) error {
	sl, err := s.slot(index)
	if err != nil {
		return err
	}
	sl.enabled.Store(enabled)
	return nil
}

func (s *Stage) IsInstrumentEnabled(index int) (bool, error) {
	sl, err := s.slot(index)
	if err != nil {
		return false, err
	}
	return sl.enabled.Load(), nil
}

func (s *Stage) IsInstrumentActive(index int) (bool, error) {
	sl, err := s.slot(index)
	if err != nil {
		return false, err
	}
	return sl.voice.IsActive(), nil
}

func (s *Stage) SetInstrumentVolume(index int, v float64) error {
	c, err := s.composable(index)
	if err != nil {
		return err
	}
	c.SetVolume(v)
	return nil
}

func (s *Stage) InstrumentVolume(index int) (float64, error) {
	c, err := s.composable(index)
	if err != nil {
		return 0, err
	}
	return c.Volume(), nil
}

func (s *Stage) SetInstrumentFrequency(index int, hz float64) error {
	c, err := s.composable(index)
	if err != nil {
		return err
	}
	c.SetFrequency(hz)
	return nil
}

func (s *Stage) InstrumentFrequency(index int) (float64, error) {
	c, err := s.composable(index)
	if err != nil {
		return 0, err
	}
	return c.Frequency(), nil
}

func (s *Stage) SetInstrumentWaveform(index int, w Waveform) error {
	c, err := s.composable(index)
	if err != nil {
		return err
	}
	c.SetWaveform(w)
	return nil
}

func (s *Stage) InstrumentWaveform(index int) (Waveform, error) {
	c, err := s.composable(index)
	if err != nil {
		return Sine, err
	}
	return c.Waveform(), nil
}

func (s *Stage) SetInstrumentModulatorFrequency(index int, hz float64) error {
	c, err := s.composable(index)
	if err != nil {
		return err
	}
	c.SetModulatorFrequency(hz)
	return nil
}

func (s *Stage) InstrumentModulatorFrequency(index int) (float64, error) {
	c, err := s.composable(index)
	if err != nil {
		return 0, err
	}
	return c.ModulatorFrequency(), nil
}

func (s *Stage) SetInstrumentADSR(index int, cfg ADSRConfig) error {
	c, err := s.composable(index)
	if err != nil {
		return err
	}
	c.SetADSR(cfg)
	return nil
}

func (s *Stage) InstrumentADSR(index int) (ADSRConfig, error) {
	c, err := s.composable(index)
	if err != nil {
		return ADSRConfig{}, err
	}
	return c.ADSR(), nil
}

// AddInstrumentOscillator adds another oscillator to a composable
// instrument and returns its index within that instrument.
func (s *Stage) AddInstrumentOscillator(index int, freq float64, w Waveform) (int, error) {
	c, err := s.composable(index)
	if err != nil {
		return 0, err
	}
	return c.AddOscillator(freq, w), nil
}

// InstrumentOscillators returns how many oscillators a composable instrument
// holds.
func (s *Stage) InstrumentOscillators(index int) (int, error) {
	c, err := s.composable(index)
	if err != nil {
		return 0, err
	}
	return c.NumOscillators(), nil
}

// The InstrumentOscillator accessors address oscillator n of a composable
// instrument; n comes from AddInstrumentOscillator (0 is the first one).

func (s *Stage) SetInstrumentOscillatorFrequency(index, n int, hz float64) error {
	c, err := s.composable(index)
	if err != nil {
		return err
	}
	return c.SetOscillatorFrequency(n, hz)
}

func (s *Stage) InstrumentOscillatorFrequency(index, n int) (float64, error) {
	c, err := s.composable(index)
	if err != nil {
		return 0, err
	}
	return c.OscillatorFrequency(n)
}

func (s *Stage) SetInstrumentOscillatorModulatorFrequency(index, n int, hz float64) error {
	c, err := s.composable(index)
	if err != nil {
		return err
	}
	return c.SetOscillatorModulatorFrequency(n, hz)
}

func (s *Stage) InstrumentOscillatorModulatorFrequency(index, n int) (float64, error) {
	c, err := s.composable(index)
	if err != nil {
		return 0, err
	}
	return c.OscillatorModulatorFrequency(n)
}

func (s *Stage) SetInstrumentOscillatorWaveform(index, n int, w Waveform) error {
	c, err := s.composable(index)
	if err != nil {
		return err
	}
	return c.SetOscillatorWaveform(n, w)
}

func (s *Stage) InstrumentOscillatorWaveform(index, n int) (Waveform, error) {
	c, err := s.composable(index)
	if err != nil {
		return Sine, err
	}
	return c.OscillatorWaveform(n)
}

func (s *Stage) SetInstrumentOscillatorLevel(index, n int, level float64) error {
	c, err := s.composable(index)
	if err != nil {
		return err
	}
	return c.SetOscillatorLevel(n, level)
}

func (s *Stage) InstrumentOscillatorLevel(index, n int) (float64, error) {
	c, err := s.composable(index)
	if err != nil {
		return 0, err
	}
	return c.OscillatorLevel(n)
}

// Sequencer transport and pattern.

func (s *Stage) Play()               { s.seq.Play() }
func (s *Stage) PlayAt(t float64)    { s.seq.PlayAt(t) }
func (s *Stage) Stop()               { s.seq.Stop() }
func (s *Stage) ResetSequencer()     { s.seq.Reset() }
func (s *Stage) ClearAll()           { s.seq.ClearAll() }
func (s *Stage) SetDefaultPatterns() { s.seq.SetDefaultPatterns() }
func (s *Stage) SetBPM(bpm float64)  { s.seq.SetBPM(bpm) }
func (s *Stage) BPM() float64        { return s.seq.BPM() }
func (s *Stage) CurrentStep() int    { return s.seq.CurrentStep() }
func (s *Stage) IsPlaying() bool     { return s.seq.IsPlaying() }

func (s *Stage) SetStep(lane, step int, enabled bool) error {
	if err := s.seq.SetStep(lane, step, enabled); err != nil {
		s.logger.Warn("invalid sequencer cell", "lane", lane, "step", step)
		return err
	}
	return nil
}

func (s *Stage) Step(lane, step int) (bool, error) { return s.seq.Step(lane, step) }
