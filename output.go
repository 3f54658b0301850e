package gooey

import (
	"sync"
	"time"

	intaudio "github.com/cbegin/gooey-go/internal/audio"
)

// Backend names a live audio device implementation.
type Backend = intaudio.Backend

const (
	BackendEbiten = intaudio.BackendEbiten
	BackendOto    = intaudio.BackendOto
)

var ErrUnknownBackend = intaudio.ErrUnknownBackend

type OutputOption func(*outputConfig)

type outputConfig struct {
	backend   Backend
	sampleTap func([]float32)
}

func defaultOutputConfig() outputConfig {
	return outputConfig{backend: BackendEbiten}
}

func WithBackend(b Backend) OutputOption {
	return func(cfg *outputConfig) {
		cfg.backend = b
	}
}

// WithSampleTap installs a callback invoked with each generated stereo buffer.
// The callback runs on the audio thread; keep work brief and non-blocking.
func WithSampleTap(tap func([]float32)) OutputOption {
	return func(cfg *outputConfig) {
		cfg.sampleTap = tap
	}
}

// Output streams a Stage to a live audio device. The device's pull callback
// is the stage's audio path.
type Output struct {
	mu     sync.Mutex
	stage  *Stage
	cfg    outputConfig
	reader *intaudio.StreamReader
	sink   intaudio.Sink
	done   chan struct{}
}

func NewOutput(stage *Stage, opts ...OutputOption) (*Output, error) {
	cfg := defaultOutputConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if _, err := intaudio.ParseBackend(string(cfg.backend)); err != nil {
		return nil, err
	}
	return &Output{stage: stage, cfg: cfg}, nil
}

// Play opens the device and starts pulling audio. Calling Play on a running
// output restarts it.
func (o *Output) Play() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.sink != nil {
		_ = o.sink.Stop()
		o.sink = nil
	}
	if o.done == nil {
		o.done = make(chan struct{})
	}
	reader := intaudio.NewStreamReader(o.stage)
	if o.cfg.sampleTap != nil {
		reader.SetTap(o.cfg.sampleTap)
	}
	sink, err := intaudio.NewSink(o.cfg.backend, o.stage.SampleRate(), reader)
	if err != nil {
		return err
	}
	o.stage.logger.Info("audio output started", "backend", string(o.cfg.backend), "sample_rate", o.stage.SampleRate())
	o.reader = reader
	o.sink = sink
	o.sink.Play()
	return nil
}

func (o *Output) Pause() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.sink != nil {
		o.sink.Pause()
	}
}

func (o *Output) Resume() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.sink != nil {
		o.sink.Play()
	}
}

func (o *Output) IsPlaying() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sink != nil && o.sink.IsPlaying()
}

func (o *Output) Stop() error {
	o.mu.Lock()
	if o.sink == nil {
		o.mu.Unlock()
		return nil
	}
	err := o.sink.Stop()
	o.sink = nil
	done := o.done
	o.done = nil
	o.mu.Unlock()
	if done != nil {
		close(done)
	}
	o.stage.logger.Info("audio output stopped")
	return err
}

// Wait blocks until Stop is called. It returns immediately if nothing is
// playing.
func (o *Output) Wait() {
	o.mu.Lock()
	done := o.done
	o.mu.Unlock()
	if done != nil {
		<-done
	}
}

// PlaybackPosition returns what the listener has heard so far.
func (o *Output) PlaybackPosition() time.Duration {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.sink == nil {
		return 0
	}
	return o.sink.Position()
}
