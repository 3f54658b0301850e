package audio

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"
)

type rampSource struct {
	next   float32
	done   bool
	remain int
}

func (r *rampSource) Process(dst []float32) {
	for i := range dst {
		dst[i] = r.next
		r.next += 0.25
	}
	r.remain -= len(dst) / 2
}

func (r *rampSource) Finished() bool { return r.done || r.remain <= 0 }

func TestStreamReaderEncodesFloat32LE(t *testing.T) {
	src := &rampSource{remain: 100}
	r := NewStreamReader(src)
	p := make([]byte, 4*8+3)
	n, err := r.Read(p)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != 32 {
		t.Fatalf("Read returned %d bytes, want 32 (whole frames only)", n)
	}
	for i := 0; i < 8; i++ {
		got := math.Float32frombits(binary.LittleEndian.Uint32(p[i*4:]))
		if want := float32(i) * 0.25; got != want {
			t.Errorf("sample %d = %v, want %v", i, got, want)
		}
	}
	if r.Frames() != 4 {
		t.Fatalf("Frames = %d, want 4", r.Frames())
	}
}

func TestStreamReaderShortBuffer(t *testing.T) {
	r := NewStreamReader(&rampSource{remain: 100})
	n, err := r.Read(make([]byte, 7))
	if n != 0 || err != nil {
		t.Fatalf("Read(7 bytes) = %d, %v; want 0, nil", n, err)
	}
}

func TestStreamReaderEOFWhenFinished(t *testing.T) {
	r := NewStreamReader(&rampSource{remain: 2})
	n, err := r.Read(make([]byte, 16))
	if !errors.Is(err, io.EOF) {
		t.Fatalf("err = %v, want io.EOF", err)
	}
	if n != 16 {
		t.Fatalf("n = %d, want 16", n)
	}
}

func TestStreamReaderTap(t *testing.T) {
	r := NewStreamReader(&rampSource{remain: 100})
	var seen int
	r.SetTap(func(buf []float32) { seen += len(buf) })
	if _, err := r.Read(make([]byte, 64)); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if seen != 16 {
		t.Fatalf("tap saw %d samples, want 16", seen)
	}
}

func TestParseBackend(t *testing.T) {
	tests := []struct {
		in      string
		want    Backend
		wantErr bool
	}{
		{"ebiten", BackendEbiten, false},
		{"oto", BackendOto, false},
		{"alsa", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBackend(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownBackend) {
					t.Fatalf("err = %v, want ErrUnknownBackend", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("ParseBackend(%q) = %q, %v", tt.in, got, err)
			}
		})
	}
}
