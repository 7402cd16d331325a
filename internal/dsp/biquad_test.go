package dsp

import (
	"math"
	"testing"
)

func TestDesignBiquadRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		typ  string
		freq float64
	}{
		{"zero frequency", "peaking", 0},
		{"negative frequency", "peaking", -100},
		{"at nyquist", "peaking", 22050},
		{"above nyquist", "low_pass", 30000},
		{"unknown type", "allpass", 1000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := designBiquad(44100, tt.typ, tt.freq, 0, 1.0); err == nil {
				t.Errorf("designBiquad(%q, %.0f Hz) succeeded, want error", tt.typ, tt.freq)
			}
		})
	}
}

func TestDesignBiquadStable(t *testing.T) {
	types := []string{"peaking", "low_shelf", "high_shelf", "band_pass", "notch", "high_pass", "low_pass"}
	for _, typ := range types {
		t.Run(typ, func(t *testing.T) {
			f, err := designBiquad(44100, typ, 1000, 6, 1.0)
			if err != nil {
				t.Fatalf("designBiquad(%q): %v", typ, err)
			}
			if !f.stable() {
				t.Errorf("designBiquad(%q) produced unstable coefficients", typ)
			}
		})
	}
}

func TestNotchAttenuatesCenterFrequency(t *testing.T) {
	const sampleRate = 44100
	const freq = 100.0

	f, err := designBiquad(sampleRate, "notch", freq, 0, humNotchQ)
	if err != nil {
		t.Fatalf("designBiquad: %v", err)
	}

	// Two seconds of sine, measured over the second half so the filter has
	// settled.
	frames := 2 * sampleRate
	in := make([]float64, frames)
	out := make([]float64, frames)
	for i := range in {
		in[i] = math.Sin(2 * math.Pi * freq * float64(i) / sampleRate)
		out[i] = f.process(in[i])
	}

	inRMS := segmentRMS(in, frames/2, frames)
	outRMS := segmentRMS(out, frames/2, frames)
	attenuation := 20 * math.Log10(outRMS/inRMS)
	if attenuation > -20 {
		t.Errorf("notch attenuation at %g Hz = %.1f dB, want < -20 dB", freq, attenuation)
	}
}

func TestPeakingUnityAwayFromCenter(t *testing.T) {
	const sampleRate = 44100

	// A +6 dB peaking filter at 5 kHz should leave a 100 Hz sine nearly
	// untouched.
	f, err := designBiquad(sampleRate, "peaking", 5000, 6, 2.0)
	if err != nil {
		t.Fatalf("designBiquad: %v", err)
	}

	frames := sampleRate
	in := make([]float64, frames)
	out := make([]float64, frames)
	for i := range in {
		in[i] = 0.5 * math.Sin(2*math.Pi*100*float64(i)/sampleRate)
		out[i] = f.process(in[i])
	}

	inRMS := segmentRMS(in, frames/2, frames)
	outRMS := segmentRMS(out, frames/2, frames)
	gainDB := 20 * math.Log10(outRMS/inRMS)
	if math.Abs(gainDB) > 0.5 {
		t.Errorf("passband gain = %.2f dB, want within +/-0.5 dB of unity", gainDB)
	}
}
