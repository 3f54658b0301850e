package voice

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/cbegin/gooey-go/internal/envelope"
	"github.com/cbegin/gooey-go/internal/osc"
	"github.com/cbegin/gooey-go/internal/param"
)

// ErrInvalidOscillator is returned when an oscillator index is outside the
// instrument's oscillator list.
var ErrInvalidOscillator = errors.New("voice: invalid oscillator index")

type ADSRConfig struct {
	Attack  float64 // seconds, 0.001..2
	Decay   float64 // seconds, 0.001..2
	Sustain float64 // 0..1
	Release float64 // seconds, 0.001..5
}

var (
	adsrAttack       = param.Range{Min: 0.001, Max: 2, Default: 0.01}
	adsrDecay        = param.Range{Min: 0.001, Max: 2, Default: 0.1}
	adsrSustain      = param.Range{Min: 0, Max: 1, Default: 0.7}
	adsrRelease      = param.Range{Min: 0.001, Max: 5, Default: 0.3}
	oscFrequency     = param.Range{Min: 20, Max: 20000, Default: 440}
	oscModFrequency  = param.Range{Min: 0.1, Max: 20000, Default: 220}
	oscLevel         = param.Range{Min: 0, Max: 1, Default: 1}
	composableVolume = param.Range{Min: 0, Max: 1, Default: 1}
)

func DefaultADSRConfig() ADSRConfig {
	return ADSRConfig{
		Attack:  adsrAttack.Default,
		Decay:   adsrDecay.Default,
		Sustain: adsrSustain.Default,
		Release: adsrRelease.Default,
	}
}

// partial is one oscillator of a composable instrument. The parameters are
// written by the control path; osc belongs to the audio path.
type partial struct {
	frequency    param.Ranged
	modFrequency param.Ranged
	level        param.Ranged
	waveform     atomic.Int32
	osc          osc.Oscillator
}

func newPartial(freq float64, w osc.Waveform, seed uint32) *partial {
	w = osc.ClampWaveform(int(w))
	p := &partial{osc: *osc.New(w, seed)}
	p.frequency.Range = oscFrequency
	p.modFrequency.Range = oscModFrequency
	p.level.Range = oscLevel
	p.frequency.Set(freq)
	p.modFrequency.Set(oscModFrequency.Default)
	p.level.Set(oscLevel.Default)
	p.waveform.Store(int32(w))
	return p
}

// Composable is a sustaining instrument built from summed oscillators under
// one ADSR envelope. The oscillator list is copy-on-write so the audio path
// never waits on AddOscillator.
type Composable struct {
	base

	mu       sync.Mutex
	partials atomic.Pointer[[]*partial]
	seed     uint32

	attack  param.Ranged
	decay   param.Ranged
	sustain param.Ranged
	release param.Ranged
	volume  param.Ranged

	env *envelope.Envelope
}

// NewComposable returns an instrument with a single oscillator.
func NewComposable(sampleRate float64, seed uint32, freq float64, w osc.Waveform) *Composable {
	c := &Composable{seed: seed}
	c.init(sampleRate)
	c.attack.Range = adsrAttack
	c.decay.Range = adsrDecay
	c.sustain.Range = adsrSustain
	c.release.Range = adsrRelease
	c.volume.Range = composableVolume
	c.SetADSR(DefaultADSRConfig())
	c.volume.Set(composableVolume.Default)
	adsr := c.ADSR()
	c.env = envelope.NewADSR(adsr.Attack, adsr.Decay, adsr.Sustain, adsr.Release)
	list := []*partial{newPartial(freq, w, seed)}
	c.partials.Store(&list)
	return c
}

// AddOscillator appends an oscillator and returns its index within the
// instrument.
func (c *Composable) AddOscillator(freq float64, w osc.Waveform) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	cur := *c.partials.Load()
	next := make([]*partial, len(cur), len(cur)+1)
	copy(next, cur)
	next = append(next, newPartial(freq, w, c.seed+uint32(len(cur))))
	c.partials.Store(&next)
	return len(next) - 1
}

// Seed is the noise seed of the first oscillator; later oscillators count
// up from it.
func (c *Composable) Seed() uint32 { return c.seed }

func (c *Composable) NumOscillators() int { return len(*c.partials.Load()) }

func (c *Composable) partial(i int) (*partial, error) {
	list := *c.partials.Load()
	if i < 0 || i >= len(list) {
		return nil, ErrInvalidOscillator
	}
	return list[i], nil
}

func (c *Composable) SetOscillatorFrequency(i int, hz float64) error {
	p, err := c.partial(i)
	if err != nil {
		return err
	}
	p.frequency.Set(hz)
	return nil
}

func (c *Composable) SetOscillatorModulatorFrequency(i int, hz float64) error {
	p, err := c.partial(i)
	if err != nil {
		return err
	}
	p.modFrequency.Set(hz)
	return nil
}

func (c *Composable) SetOscillatorWaveform(i int, w osc.Waveform) error {
	p, err := c.partial(i)
	if err != nil {
		return err
	}
	p.waveform.Store(int32(osc.ClampWaveform(int(w))))
	return nil
}

func (c *Composable) SetOscillatorLevel(i int, level float64) error {
	p, err := c.partial(i)
	if err != nil {
		return err
	}
	p.level.Set(level)
	return nil
}

func (c *Composable) OscillatorFrequency(i int) (float64, error) {
	p, err := c.partial(i)
	if err != nil {
		return 0, err
	}
	return p.frequency.Load(), nil
}

func (c *Composable) OscillatorWaveform(i int) (osc.Waveform, error) {
	p, err := c.partial(i)
	if err != nil {
		return osc.Sine, err
	}
	return osc.Waveform(p.waveform.Load()), nil
}

func (c *Composable) OscillatorModulatorFrequency(i int) (float64, error) {
	p, err := c.partial(i)
	if err != nil {
		return 0, err
	}
	return p.modFrequency.Load(), nil
}

func (c *Composable) OscillatorLevel(i int) (float64, error) {
	p, err := c.partial(i)
	if err != nil {
		return 0, err
	}
	return p.level.Load(), nil
}

// The instrument-level accessors address the first oscillator.

func (c *Composable) SetFrequency(hz float64)          { _ = c.SetOscillatorFrequency(0, hz) }
func (c *Composable) SetModulatorFrequency(hz float64) { _ = c.SetOscillatorModulatorFrequency(0, hz) }
func (c *Composable) SetWaveform(w osc.Waveform)       { _ = c.SetOscillatorWaveform(0, w) }
func (c *Composable) Frequency() float64               { f, _ := c.OscillatorFrequency(0); return f }
func (c *Composable) Waveform() osc.Waveform           { w, _ := c.OscillatorWaveform(0); return w }
func (c *Composable) ModulatorFrequency() float64      { m, _ := c.OscillatorModulatorFrequency(0); return m }
func (c *Composable) SetVolume(v float64)              { c.volume.Set(v) }
func (c *Composable) Volume() float64                  { return c.volume.Load() }
func (c *Composable) SetAttack(v float64)              { c.attack.Set(v) }
func (c *Composable) SetDecay(v float64)               { c.decay.Set(v) }
func (c *Composable) SetSustain(v float64)             { c.sustain.Set(v) }
func (c *Composable) SetRelease(v float64)             { c.release.Set(v) }

func (c *Composable) SetADSR(cfg ADSRConfig) {
	c.attack.Set(cfg.Attack)
	c.decay.Set(cfg.Decay)
	c.sustain.Set(cfg.Sustain)
	c.release.Set(cfg.Release)
}

func (c *Composable) ADSR() ADSRConfig {
	return ADSRConfig{
		Attack:  c.attack.Load(),
		Decay:   c.decay.Load(),
		Sustain: c.sustain.Load(),
		Release: c.release.Load(),
	}
}

func (c *Composable) Tick() float64 {
	flags := c.take()
	if flags&gateTrigger != 0 {
		c.env.Trigger()
	}
	if flags&gateRelease != 0 {
		c.env.Release()
	}
	if !c.env.Active() {
		c.settle(false)
		return 0
	}
	dt := c.dt
	c.env.AttackTime = c.attack.Load()
	c.env.DecayTime = c.decay.Load()
	c.env.SustainLevel = c.sustain.Load()
	c.env.ReleaseTime = c.release.Load()

	var sum float64
	for _, p := range *c.partials.Load() {
		p.osc.Waveform = osc.Waveform(p.waveform.Load())
		p.osc.ModInc = p.modFrequency.Load() * dt
		sum += p.osc.Next(p.frequency.Load()*dt) * p.level.Load()
	}
	out := sum * c.env.Advance(dt) * c.volume.Load()
	c.settle(c.env.Active())
	return out
}
