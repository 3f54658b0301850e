package osc

type NoiseKind int

const (
	White NoiseKind = iota
	Pink
	Brown
	// Percussion is band-limited noise voiced for snare wires and brushes.
	Percussion
)

const defaultSeed = 0x9E3779B9

// NoiseSource is a pseudo-random generator with its own filter history.
type NoiseSource struct {
	Kind NoiseKind

	state  uint32
	b0     float64
	b1     float64
	b2     float64
	prevIn float64
}

// NewNoise returns a generator of the given kind. A zero seed is replaced by a
// fixed non-zero constant since xorshift never leaves zero.
func NewNoise(kind NoiseKind, seed uint32) *NoiseSource {
	n := &NoiseSource{Kind: kind}
	n.Seed(seed)
	return n
}

func (n *NoiseSource) Seed(seed uint32) {
	if seed == 0 {
		seed = defaultSeed
	}
	n.state = seed
	n.b0, n.b1, n.b2, n.prevIn = 0, 0, 0, 0
}

func (n *NoiseSource) white() float64 {
	x := n.state
	if x == 0 {
		x = defaultSeed
	}
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	n.state = x
	return float64(x)/float64(1<<31) - 1
}

// Next returns one sample in roughly [-1, 1].
func (n *NoiseSource) Next() float64 {
	w := n.white()
	switch n.Kind {
	case Pink:
		n.b0 = 0.99765*n.b0 + w*0.0990460
		n.b1 = 0.96300*n.b1 + w*0.2965164
		n.b2 = 0.57000*n.b2 + w*1.0526913
		return clamp((n.b0+n.b1+n.b2+w*0.1848)*0.25, -1, 1)
	case Brown:
		n.b0 = (n.b0 + 0.02*w) / 1.02
		return clamp(n.b0*3.5, -1, 1)
	case Percussion:
		hp := w - 0.9*n.prevIn
		n.prevIn = w
		n.b0 += 0.6 * (hp - n.b0)
		return clamp(n.b0*0.8, -1, 1)
	default:
		return w
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
