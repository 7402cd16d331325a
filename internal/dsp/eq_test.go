package dsp

import (
	"errors"
	"math"
	"testing"

	"github.com/clearcast-audio/clearcast/internal/config"
)

func TestNewEqualizerPresets(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.EffectiveEQ
		wantErr bool
	}{
		{"speech", config.EffectiveEQ{Enabled: true, Preset: config.EQSpeech}, false},
		{"music", config.EffectiveEQ{Enabled: true, Preset: config.EQMusic}, false},
		{
			"custom with filters",
			config.EffectiveEQ{Enabled: true, Preset: config.EQCustom, Filters: []config.FilterSpec{
				{Type: "peaking", Frequency: 1000, Gain: 3, Q: 1.0},
			}},
			false,
		},
		{"custom without filters", config.EffectiveEQ{Enabled: true, Preset: config.EQCustom}, true},
		{"unknown preset", config.EffectiveEQ{Enabled: true, Preset: "vinyl"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEqualizer(tt.cfg)
			if tt.wantErr {
				var ce *config.ConfigError
				if !errors.As(err, &ce) {
					t.Errorf("NewEqualizer = %v, want ConfigError", err)
				}
			} else if err != nil {
				t.Errorf("NewEqualizer = %v, want nil", err)
			}
		})
	}
}

func TestEqualizerSpeechBoostsPresence(t *testing.T) {
	eq, err := NewEqualizer(config.EffectiveEQ{Enabled: true, Preset: config.EQSpeech})
	if err != nil {
		t.Fatalf("NewEqualizer: %v", err)
	}

	gainAt := func(freq float64) float64 {
		buf := generateSignal(signalOptions{DurationSecs: 1, ToneFreq: freq, ToneLevel: -20})
		frames := buf.Frames()
		in := segmentRMS(buf.Data[0], frames/2, frames)
		out, err := eq.Process(buf)
		if err != nil {
			t.Fatalf("Process at %g Hz: %v", freq, err)
		}
		return 20 * math.Log10(segmentRMS(out.Data[0], frames/2, frames)/in)
	}

	// The presence band comes up, the low shelf goes down.
	if g := gainAt(1500); g < 1.5 {
		t.Errorf("gain at 1.5 kHz = %.2f dB, want >= 1.5 (presence boost)", g)
	}
	if g := gainAt(60); g > -1.5 {
		t.Errorf("gain at 60 Hz = %.2f dB, want <= -1.5 (rumble shelf)", g)
	}
}

func TestEqualizerCustomBadFrequency(t *testing.T) {
	eq, err := NewEqualizer(config.EffectiveEQ{
		Enabled: true, Preset: config.EQCustom,
		Filters: []config.FilterSpec{{Type: "peaking", Frequency: 30000, Gain: 3, Q: 1.0}},
	})
	if err != nil {
		t.Fatalf("NewEqualizer: %v", err)
	}

	// 30 kHz is beyond Nyquist at 44.1 kHz; realisation fails per file.
	buf := generateSignal(signalOptions{DurationSecs: 0.5, ToneFreq: 440, ToneLevel: -6})
	_, err = eq.Process(buf)
	var se *StageError
	if !errors.As(err, &se) {
		t.Errorf("Process = %v, want StageError", err)
	}
}

func TestEqualizerOutputFinite(t *testing.T) {
	for _, preset := range []config.EQPreset{config.EQSpeech, config.EQMusic} {
		t.Run(string(preset), func(t *testing.T) {
			eq, err := NewEqualizer(config.EffectiveEQ{Enabled: true, Preset: preset})
			if err != nil {
				t.Fatalf("NewEqualizer: %v", err)
			}
			buf := generateSignal(signalOptions{
				DurationSecs: 1, Channels: 2, ToneFreq: 440, ToneLevel: -6, NoiseLevel: -30,
			})
			out, err := eq.Process(buf)
			if err != nil {
				t.Fatalf("Process: %v", err)
			}
			for _, ch := range out.Data {
				for i, s := range ch {
					if math.IsNaN(s) || math.IsInf(s, 0) {
						t.Fatalf("non-finite sample at %d", i)
					}
				}
			}
		})
	}
}
