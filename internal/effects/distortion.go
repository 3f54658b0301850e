package effects

import (
	"fmt"
	"math"

	"github.com/cbegin/gooey-go/internal/filter"
	"github.com/cbegin/gooey-go/internal/param"
)

type DistortionConfig struct {
	Drive       float64 // 0..1, maps to 1x..10x input gain
	OutputGain  float64 // 0..1
	PreHighPass float64 // Hz, 20..20000
	PostLowPass float64 // Hz, 20..20000
}

var DistortionPresets = map[string]DistortionConfig{
	"default":    {Drive: 0.5, OutputGain: 0.8, PreHighPass: 80, PostLowPass: 8000},
	"subtle":     {Drive: 0.3, OutputGain: 0.9, PreHighPass: 100, PostLowPass: 10000},
	"aggressive": {Drive: 0.8, OutputGain: 0.7, PreHighPass: 60, PostLowPass: 6000},
	"warm":       {Drive: 0.4, OutputGain: 0.85, PreHighPass: 120, PostLowPass: 5000},
}

var (
	driveRange   = param.Range{Min: 0, Max: 1, Default: 0.5}
	outGainRange = param.Range{Min: 0, Max: 1, Default: 0.8}
	filterRange  = param.Range{Min: 20, Max: 20000, Default: 1000}
)

// Distortion is a tanh soft clipper between a high-pass that keeps the sub
// out of the clipper and a low-pass that tames the added harmonics.
type Distortion struct {
	toggle
	sampleRate float64
	drive      param.Ranged
	outputGain param.Ranged
	preHP      param.Ranged
	postLP     param.Ranged

	hpCut, lpCut float64
	hp, lp       filter.OnePole
}

func NewDistortion(sampleRate int, cfg DistortionConfig) *Distortion {
	d := &Distortion{sampleRate: float64(sampleRate)}
	d.drive.Range = driveRange
	d.outputGain.Range = outGainRange
	d.preHP.Range = filterRange
	d.postLP.Range = filterRange
	d.Configure(cfg)
	return d
}

func (d *Distortion) Configure(cfg DistortionConfig) {
	d.drive.Set(cfg.Drive)
	d.outputGain.Set(cfg.OutputGain)
	d.preHP.Set(cfg.PreHighPass)
	d.postLP.Set(cfg.PostLowPass)
}

func (d *Distortion) Config() DistortionConfig {
	return DistortionConfig{
		Drive:       d.drive.Load(),
		OutputGain:  d.outputGain.Load(),
		PreHighPass: d.preHP.Load(),
		PostLowPass: d.postLP.Load(),
	}
}

// LoadPreset applies one of DistortionPresets.
func (d *Distortion) LoadPreset(name string) error {
	cfg, ok := DistortionPresets[name]
	if !ok {
		return fmt.Errorf("effects: unknown distortion preset %q", name)
	}
	d.Configure(cfg)
	return nil
}

func (d *Distortion) SetDrive(v float64)      { d.drive.Set(v) }
func (d *Distortion) SetOutputGain(v float64) { d.outputGain.Set(v) }
func (d *Distortion) Drive() float64          { return d.drive.Load() }
func (d *Distortion) OutputGain() float64     { return d.outputGain.Load() }

func (d *Distortion) Process(x float64) float64 {
	if !d.Enabled() {
		return x
	}
	if c := d.preHP.Load(); c != d.hpCut {
		d.hpCut = c
		d.hp.SetCutoff(d.sampleRate, c)
	}
	if c := d.postLP.Load(); c != d.lpCut {
		d.lpCut = c
		d.lp.SetCutoff(d.sampleRate, c)
	}
	y := d.hp.HighPass(x)
	if drive := d.drive.Load(); drive > 0 {
		y = math.Tanh(y*(1+drive*9)) / (1 + drive*0.5)
	}
	return d.lp.LowPass(y) * d.outputGain.Load()
}

func (d *Distortion) Reset() {
	d.hp.Reset()
	d.lp.Reset()
}
