package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

const bytesPerFrame = 8

type otoSink struct {
	mu         sync.Mutex
	ctx        *oto.Context
	player     *oto.Player
	reader     *StreamReader
	sampleRate int
}

var (
	otoContextOnce sync.Once
	otoContext     *oto.Context
	otoContextErr  error
	otoSampleRate  int

	newOtoContext = oto.NewContext
)

// sharedOtoContext opens the process-wide oto context on first use. oto
// allows a single context, so every sink plays through it.
func sharedOtoContext(sampleRate int) (*oto.Context, error) {
	otoContextOnce.Do(func() {
		otoSampleRate = sampleRate
		ctx, ready, err := newOtoContext(&oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: 2,
			Format:       oto.FormatFloat32LE,
			BufferSize:   20 * time.Millisecond,
		})
		if err != nil {
			otoContextErr = err
			return
		}
		<-ready
		otoContext = ctx
	})
	if otoContextErr != nil {
		return nil, otoContextErr
	}
	if otoSampleRate != sampleRate {
		return nil, fmt.Errorf("oto context already initialized at %d Hz (requested %d Hz)", otoSampleRate, sampleRate)
	}
	return otoContext, nil
}

func newOtoSink(sampleRate int, reader *StreamReader) (*otoSink, error) {
	ctx, err := sharedOtoContext(sampleRate)
	if err != nil {
		return nil, err
	}
	return &otoSink{
		ctx:        ctx,
		player:     ctx.NewPlayer(reader),
		reader:     reader,
		sampleRate: sampleRate,
	}, nil
}

func (p *otoSink) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.player.Play()
}

func (p *otoSink) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.player.Pause()
}

func (p *otoSink) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.player.IsPlaying()
}

// Position subtracts what is still queued in the player from what the
// reader has produced.
func (p *otoSink) Position() time.Duration {
	p.mu.Lock()
	queued := uint64(p.player.BufferedSize() / bytesPerFrame)
	p.mu.Unlock()
	frames := p.reader.Frames()
	if queued > frames {
		return 0
	}
	return time.Duration(frames-queued) * time.Second / time.Duration(p.sampleRate)
}

func (p *otoSink) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.player.Pause()
	if err := p.player.Close(); err != nil {
		return err
	}
	return p.reader.Close()
}
