package audio

import (
	"fmt"
	"sync"
	"time"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

type ebitenSink struct {
	player *ebitaudio.Player
	reader *StreamReader
}

var (
	audioContextOnce sync.Once
	audioContext     *ebitaudio.Context
	audioSampleRate  int
)

func sharedAudioContext(sampleRate int) (*ebitaudio.Context, error) {
	audioContextOnce.Do(func() {
		audioSampleRate = sampleRate
		audioContext = ebitaudio.NewContext(sampleRate)
	})
	if audioSampleRate != sampleRate {
		return nil, fmt.Errorf("audio context already initialized at %d Hz (requested %d Hz)", audioSampleRate, sampleRate)
	}
	return audioContext, nil
}

func newEbitenSink(sampleRate int, reader *StreamReader) (*ebitenSink, error) {
	ctx, err := sharedAudioContext(sampleRate)
	if err != nil {
		return nil, err
	}
	pl, err := ctx.NewPlayerF32(reader)
	if err != nil {
		return nil, err
	}
	// Short buffer keeps trigger latency low.
	pl.SetBufferSize(20 * time.Millisecond)
	return &ebitenSink{player: pl, reader: reader}, nil
}

func (p *ebitenSink) Play()                   { p.player.Play() }
func (p *ebitenSink) Pause()                  { p.player.Pause() }
func (p *ebitenSink) IsPlaying() bool         { return p.player.IsPlaying() }
func (p *ebitenSink) Position() time.Duration { return p.player.Position() }

func (p *ebitenSink) Stop() error {
	p.player.Pause()
	if err := p.player.Close(); err != nil {
		return err
	}
	return p.reader.Close()
}
