package audio

import (
	"encoding/binary"
	"io"
	"math"
	"sync"
	"sync/atomic"
)

// SampleSource fills dst with interleaved stereo float32 frames.
type SampleSource interface {
	Process(dst []float32)
}

// FinishingSource is a SampleSource that can signal when playback has ended.
// When Finished returns true, the stream will return io.EOF on the next Read.
type FinishingSource interface {
	SampleSource
	Finished() bool
}

// StreamReader adapts a SampleSource to the little-endian float32 byte
// stream audio backends pull from.
type StreamReader struct {
	mu     sync.Mutex
	source SampleSource
	buf    []float32
	tap    func([]float32)
	frames atomic.Uint64
}

func NewStreamReader(source SampleSource) *StreamReader {
	return &StreamReader{source: source}
}

// SetTap installs a callback that sees every generated buffer. It runs on
// the audio thread.
func (r *StreamReader) SetTap(tap func([]float32)) {
	r.mu.Lock()
	r.tap = tap
	r.mu.Unlock()
}

func (r *StreamReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	frames := len(p) / 8
	if frames == 0 {
		return 0, nil
	}
	need := frames * 2
	if cap(r.buf) < need {
		r.buf = make([]float32, need)
	}
	r.buf = r.buf[:need]
	r.source.Process(r.buf)
	for i := 0; i < need; i++ {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(r.buf[i]))
	}
	if r.tap != nil {
		r.tap(r.buf)
	}
	r.frames.Add(uint64(frames))
	n := frames * 8
	if fs, ok := r.source.(FinishingSource); ok && fs.Finished() {
		return n, io.EOF
	}
	return n, nil
}

// Frames is the number of stereo frames handed to the backend so far.
func (r *StreamReader) Frames() uint64 { return r.frames.Load() }

func (r *StreamReader) Close() error { return nil }
