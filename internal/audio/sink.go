package audio

import (
	"errors"
	"fmt"
	"time"
)

type Backend string

const (
	BackendEbiten Backend = "ebiten"
	BackendOto    Backend = "oto"
)

var ErrUnknownBackend = errors.New("audio: unknown backend")

// ParseBackend maps a flag value to a Backend.
func ParseBackend(s string) (Backend, error) {
	switch Backend(s) {
	case BackendEbiten, BackendOto:
		return Backend(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownBackend, s)
}

// Sink is a live output device pulling from a StreamReader.
type Sink interface {
	Play()
	Pause()
	IsPlaying() bool
	// Position is what the listener actually hears.
	Position() time.Duration
	Stop() error
}

// NewSink opens the named backend at sampleRate and starts pulling from
// reader on Play. Only one backend may be opened per process.
func NewSink(backend Backend, sampleRate int, reader *StreamReader) (Sink, error) {
	switch backend {
	case BackendEbiten, "":
		return newEbitenSink(sampleRate, reader)
	case BackendOto:
		return newOtoSink(sampleRate, reader)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, string(backend))
}
