// Package audio handles decoding of input files into PCM buffers.
package audio

import (
	"math"
	"time"
)

// Buffer holds decoded PCM audio as planar float64 samples normalised to
// [-1, 1], one slice per channel. All channel slices have equal length.
// A Buffer is owned by a single pipeline invocation; stages consume a buffer
// and return a buffer, they never share one concurrently.
type Buffer struct {
	SampleRate int
	Data       [][]float64
}

// NewBuffer allocates a zeroed buffer with the given shape.
func NewBuffer(sampleRate, channels, frames int) *Buffer {
	data := make([][]float64, channels)
	for ch := range data {
		data[ch] = make([]float64, frames)
	}
	return &Buffer{SampleRate: sampleRate, Data: data}
}

// Channels returns the channel count.
func (b *Buffer) Channels() int { return len(b.Data) }

// Frames returns the number of samples per channel.
func (b *Buffer) Frames() int {
	if len(b.Data) == 0 {
		return 0
	}
	return len(b.Data[0])
}

// Duration returns the buffer length as wall-clock time.
func (b *Buffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(b.Frames()) / float64(b.SampleRate) * float64(time.Second))
}

// Clone returns a deep copy. Stages that need scratch space copy rather than
// alias so the exclusive-ownership model holds.
func (b *Buffer) Clone() *Buffer {
	out := &Buffer{SampleRate: b.SampleRate, Data: make([][]float64, len(b.Data))}
	for ch, src := range b.Data {
		out.Data[ch] = make([]float64, len(src))
		copy(out.Data[ch], src)
	}
	return out
}

// SamplePeak returns the largest absolute sample value across all channels.
// This is the naive peak; inter-sample (true) peak detection lives in the
// dsp package where the oversampler is.
func (b *Buffer) SamplePeak() float64 {
	peak := 0.0
	for _, ch := range b.Data {
		for _, s := range ch {
			if a := math.Abs(s); a > peak {
				peak = a
			}
		}
	}
	return peak
}

// RMS returns the root-mean-square level across all channels, linear.
// Returns 0 for an empty buffer.
func (b *Buffer) RMS() float64 {
	var sum float64
	var n int
	for _, ch := range b.Data {
		for _, s := range ch {
			sum += s * s
		}
		n += len(ch)
	}
	if n == 0 {
		return 0
	}
	return math.Sqrt(sum / float64(n))
}
