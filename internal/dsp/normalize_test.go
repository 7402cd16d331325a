package dsp

import (
	"errors"
	"math"
	"testing"

	"github.com/clearcast-audio/clearcast/internal/config"
)

func TestNewNormalizerValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.EffectiveNormalization
		wantErr bool
	}{
		{"valid", config.EffectiveNormalization{Enabled: true, TargetLevel: -16, TruePeak: -1.5}, false},
		{"target too low", config.EffectiveNormalization{Enabled: true, TargetLevel: -50, TruePeak: -1.5}, true},
		{"target above zero", config.EffectiveNormalization{Enabled: true, TargetLevel: 3, TruePeak: -1.5}, true},
		{"positive ceiling", config.EffectiveNormalization{Enabled: true, TargetLevel: -16, TruePeak: 1}, true},
		{"zero ceiling allowed", config.EffectiveNormalization{Enabled: true, TargetLevel: -16, TruePeak: 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewNormalizer(tt.cfg)
			if tt.wantErr {
				var ce *config.ConfigError
				if !errors.As(err, &ce) {
					t.Errorf("NewNormalizer = %v, want ConfigError", err)
				}
			} else if err != nil {
				t.Errorf("NewNormalizer = %v, want nil", err)
			}
		})
	}
}

func TestNormalizerHitsTarget(t *testing.T) {
	// Plenty of headroom: -6 dBFS tone normalised to -16 LUFS never goes
	// near the ceiling, so the target must be hit within tolerance.
	norm, err := NewNormalizer(config.EffectiveNormalization{
		Enabled: true, TargetLevel: -16, TruePeak: -1.5,
	})
	if err != nil {
		t.Fatalf("NewNormalizer: %v", err)
	}

	buf := generateSignal(signalOptions{DurationSecs: 3, ToneFreq: 440, ToneLevel: -6})
	out, err := norm.Process(buf)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	lufs, err := IntegratedLoudness(out)
	if err != nil {
		t.Fatalf("IntegratedLoudness: %v", err)
	}
	if math.Abs(lufs-(-16)) > 0.5 {
		t.Errorf("output loudness = %.2f LUFS, want -16 +/- 0.5", lufs)
	}
	if tp := TruePeak(out); tp > -1.5+0.05 {
		t.Errorf("output true peak = %.2f dBTP, exceeds -1.5 ceiling", tp)
	}
}

func TestNormalizerCeilingIsHard(t *testing.T) {
	tests := []struct {
		name    string
		opts    signalOptions
		target  float64
		ceiling float64
	}{
		{
			name:    "loud target forces limiting",
			opts:    signalOptions{DurationSecs: 3, ToneFreq: 440, ToneLevel: -20},
			target:  -5,
			ceiling: -3,
		},
		{
			name:    "noise bed with transient spike",
			opts:    signalOptions{DurationSecs: 3, ToneFreq: 440, ToneLevel: -30, NoiseLevel: -45},
			target:  -10,
			ceiling: -1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := generateSignal(tt.opts)
			// Pathological single-sample transient.
			buf.Data[0][buf.Frames()/2] = 0.95

			norm, err := NewNormalizer(config.EffectiveNormalization{
				Enabled: true, TargetLevel: tt.target, TruePeak: tt.ceiling,
			})
			if err != nil {
				t.Fatalf("NewNormalizer: %v", err)
			}
			out, err := norm.Process(buf)
			if err != nil {
				t.Fatalf("Process: %v", err)
			}
			if tp := TruePeak(out); tp > tt.ceiling+0.05 {
				t.Errorf("output true peak = %.2f dBTP, exceeds %.1f ceiling", tp, tt.ceiling)
			}
		})
	}
}

func TestSlidingWindowMin(t *testing.T) {
	bruteForce := func(values []float64, window int) []float64 {
		out := make([]float64, len(values))
		for i := range values {
			min := values[i]
			end := i + window
			if end > len(values) {
				end = len(values)
			}
			for _, v := range values[i:end] {
				if v < min {
					min = v
				}
			}
			out[i] = min
		}
		return out
	}

	// Deterministic pseudo-random gain curves at several window sizes,
	// checked against the quadratic reference.
	rngState := uint32(12345)
	values := make([]float64, 1000)
	for i := range values {
		rngState = rngState*1664525 + 1013904223
		values[i] = float64(rngState) / float64(0xFFFFFFFF)
	}

	for _, window := range []int{1, 2, 7, 220, 1000, 1500} {
		got := slidingWindowMin(values, window)
		want := bruteForce(values, window)
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("window %d: min[%d] = %v, want %v", window, i, got[i], want[i])
			}
		}
	}
}

func TestNormalizerShortBufferAnalysisError(t *testing.T) {
	norm, err := NewNormalizer(config.EffectiveNormalization{
		Enabled: true, TargetLevel: -16, TruePeak: -1.5,
	})
	if err != nil {
		t.Fatalf("NewNormalizer: %v", err)
	}

	buf := generateSignal(signalOptions{DurationSecs: 0.1, ToneFreq: 440, ToneLevel: -6})
	_, err = norm.Process(buf)
	var ae *AnalysisError
	if !errors.As(err, &ae) {
		t.Errorf("Process = %v, want AnalysisError", err)
	}
}
