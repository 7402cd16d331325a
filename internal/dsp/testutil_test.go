package dsp

import (
	"math"

	"github.com/clearcast-audio/clearcast/internal/audio"
)

// signalOptions configures the synthetic buffers used across the package
// tests.
type signalOptions struct {
	DurationSecs float64
	SampleRate   int
	Channels     int
	ToneFreq     float64 // Hz, 0 = no tone
	ToneLevel    float64 // dBFS
	NoiseLevel   float64 // dBFS, 0 = no noise
	ToneStart    float64 // seconds; tone is silent before this point
}

// generateSignal builds a deterministic test buffer: an optional sine plus
// optional LCG white noise, identical across channels except for the noise
// sequence.
func generateSignal(opts signalOptions) *audio.Buffer {
	if opts.SampleRate == 0 {
		opts.SampleRate = 44100
	}
	if opts.Channels == 0 {
		opts.Channels = 1
	}
	frames := int(opts.DurationSecs * float64(opts.SampleRate))
	buf := audio.NewBuffer(opts.SampleRate, opts.Channels, frames)

	toneAmp := 0.0
	if opts.ToneFreq > 0 {
		toneAmp = math.Pow(10, opts.ToneLevel/20)
	}
	noiseAmp := 0.0
	if opts.NoiseLevel < 0 {
		noiseAmp = math.Pow(10, opts.NoiseLevel/20)
	}
	toneStart := int(opts.ToneStart * float64(opts.SampleRate))

	// LCG noise keeps the tests deterministic without math/rand seeding.
	rngState := uint32(12345)
	nextRandom := func() float64 {
		rngState = rngState*1664525 + 1013904223
		return (float64(rngState)/float64(0xFFFFFFFF))*2 - 1
	}

	for ch := 0; ch < opts.Channels; ch++ {
		for i := 0; i < frames; i++ {
			var s float64
			if toneAmp > 0 && i >= toneStart {
				s += toneAmp * math.Sin(2*math.Pi*opts.ToneFreq*float64(i)/float64(opts.SampleRate))
			}
			if noiseAmp > 0 {
				s += noiseAmp * nextRandom()
			}
			buf.Data[ch][i] = s
		}
	}
	return buf
}

// segmentRMS returns the RMS of one channel over [from, to) in samples.
func segmentRMS(ch []float64, from, to int) float64 {
	var sum float64
	for _, s := range ch[from:to] {
		sum += s * s
	}
	return math.Sqrt(sum / float64(to-from))
}
