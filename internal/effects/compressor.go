package effects

import (
	"math"

	"github.com/cbegin/gooey-go/internal/param"
)

var (
	thresholdRange = param.Range{Min: -60, Max: 0, Default: -12}
	ratioRange     = param.Range{Min: 1, Max: 20, Default: 4}
	attackRange    = param.Range{Min: 0.1, Max: 100, Default: 3}
	releaseRange   = param.Range{Min: 1, Max: 1000, Default: 100}
	makeupRange    = param.Range{Min: 0, Max: 24, Default: 0}
)

// Compressor is a feed-forward compressor with its envelope follower running
// in the dB domain.
type Compressor struct {
	toggle
	sampleRate float64
	threshold  param.Ranged // dB
	ratio      param.Ranged
	attackMs   param.Ranged
	releaseMs  param.Ranged
	makeupDB   param.Ranged

	attackFor  float64
	releaseFor float64
	attack     float64 // coefficient
	release    float64 // coefficient
	envDB      float64
}

// NewCompressor creates a disabled compressor.
// thresholdDB: threshold in dB (e.g., -12)
// ratio: compression ratio (e.g., 4 for 4:1)
// attackMs: attack time in ms
// releaseMs: release time in ms
// makeupDB: makeup gain in dB
func NewCompressor(sampleRate int, thresholdDB, ratio, attackMs, releaseMs, makeupDB float64) *Compressor {
	c := &Compressor{sampleRate: float64(sampleRate), envDB: -120}
	c.threshold.Range = thresholdRange
	c.ratio.Range = ratioRange
	c.attackMs.Range = attackRange
	c.releaseMs.Range = releaseRange
	c.makeupDB.Range = makeupRange
	c.threshold.Set(thresholdDB)
	c.ratio.Set(ratio)
	c.attackMs.Set(attackMs)
	c.releaseMs.Set(releaseMs)
	c.makeupDB.Set(makeupDB)
	return c
}

func (c *Compressor) SetThreshold(db float64)  { c.threshold.Set(db) }
func (c *Compressor) SetRatio(r float64)       { c.ratio.Set(r) }
func (c *Compressor) SetAttack(ms float64)     { c.attackMs.Set(ms) }
func (c *Compressor) SetRelease(ms float64)    { c.releaseMs.Set(ms) }
func (c *Compressor) SetMakeupGain(db float64) { c.makeupDB.Set(db) }
func (c *Compressor) Threshold() float64       { return c.threshold.Load() }
func (c *Compressor) Ratio() float64           { return c.ratio.Load() }
func (c *Compressor) Attack() float64          { return c.attackMs.Load() }
func (c *Compressor) Release() float64         { return c.releaseMs.Load() }
func (c *Compressor) MakeupGain() float64      { return c.makeupDB.Load() }

func (c *Compressor) coeff(ms float64) float64 {
	return math.Exp(-1.0 / (ms * c.sampleRate / 1000.0))
}

func (c *Compressor) Process(x float64) float64 {
	if !c.Enabled() {
		return x
	}
	if a := c.attackMs.Load(); a != c.attackFor {
		c.attackFor = a
		c.attack = c.coeff(a)
	}
	if r := c.releaseMs.Load(); r != c.releaseFor {
		c.releaseFor = r
		c.release = c.coeff(r)
	}
	inDB := -120.0
	if a := math.Abs(x); a > 1e-6 {
		inDB = 20 * math.Log10(a)
	}
	k := c.release
	if inDB > c.envDB {
		k = c.attack
	}
	c.envDB = inDB + (c.envDB-inDB)*k

	reduction := 0.0
	if over := c.envDB - c.threshold.Load(); over > 0 {
		reduction = over * (1 - 1/c.ratio.Load())
	}
	return x * math.Pow(10, (c.makeupDB.Load()-reduction)/20)
}

func (c *Compressor) Reset() { c.envDB = -120 }
