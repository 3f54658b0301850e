package gooey

import (
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// RenderSamples runs the stage for the given duration and returns
// interleaved stereo frames. The stage keeps its state, so consecutive calls
// continue where the previous one stopped.
func RenderSamples(stage *Stage, seconds float64) []float32 {
	frames := int(float64(stage.SampleRate()) * seconds)
	if frames < 0 {
		frames = 0
	}
	out := make([]float32, frames*2)
	stage.Process(out)
	return out
}

// WriteWAV encodes interleaved float samples as 16-bit PCM.
func WriteWAV(w io.WriteSeeker, samples []float32, sampleRate, channels int) error {
	enc := wav.NewEncoder(w, sampleRate, 16, channels, 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: channels,
			SampleRate:  sampleRate,
		},
		Data:           make([]int, len(samples)),
		SourceBitDepth: 16,
	}
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		buf.Data[i] = int(s * 32767)
	}
	if err := enc.Write(buf); err != nil {
		return err
	}
	return enc.Close()
}
