package config

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

const sampleYAML = `
output:
  format: wav
  directory: processed
  suffix: _clean
compression:
  enabled: false
preprocessing:
  noise_reduction:
    enabled: true
    strength: high
    hum_removal: false
  normalization:
    enabled: true
    target_level: -18
    true_peak: -2
  compression:
    enabled: true
    threshold: -22
    ratio: 3
    attack: 10
    release: 80
  eq:
    enabled: true
    preset: music
presets:
  interview:
    compression:
      ratio: 8
`

func TestLoadFromReader(t *testing.T) {
	cfg, err := LoadFromReader(strings.NewReader(sampleYAML))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if cfg.Output.Suffix != "_clean" {
		t.Errorf("suffix = %q, want _clean", cfg.Output.Suffix)
	}
	if got := *cfg.Preprocessing.NoiseReduction.Strength; got != StrengthHigh {
		t.Errorf("strength = %s, want high", got)
	}
	if got := *cfg.Preprocessing.Normalization.TargetLevel; got != -18 {
		t.Errorf("target_level = %g, want -18", got)
	}
	preset, ok := cfg.Presets["interview"]
	if !ok {
		t.Fatal("interview preset missing")
	}
	if preset.Compression.Ratio == nil || *preset.Compression.Ratio != 8 {
		t.Errorf("preset ratio = %v, want 8", preset.Compression.Ratio)
	}
	if preset.Compression.Enabled != nil {
		t.Error("preset enabled should stay unset for overlay inheritance")
	}
}

func TestLoadFromReaderRejectsUnknownKeys(t *testing.T) {
	yaml := `
output:
  format: wav
  directory: processed
  loudness: -16
`
	if _, err := LoadFromReader(strings.NewReader(yaml)); err == nil {
		t.Error("unknown key accepted, want decode error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{
			"bad strength",
			func(c *Config) { c.Preprocessing.NoiseReduction.Strength = ptr(Strength("extreme")) },
			"preprocessing.noise_reduction.strength",
		},
		{
			"target level too low",
			func(c *Config) { c.Preprocessing.Normalization.TargetLevel = ptr(-55.0) },
			"preprocessing.normalization.target_level",
		},
		{
			"positive true peak",
			func(c *Config) { c.Preprocessing.Normalization.TruePeak = ptr(0.5) },
			"preprocessing.normalization.true_peak",
		},
		{
			"expanding ratio",
			func(c *Config) { c.Preprocessing.Compression.Ratio = ptr(0.25) },
			"preprocessing.compression.ratio",
		},
		{
			"zero attack",
			func(c *Config) { c.Preprocessing.Compression.Attack = ptr(0.0) },
			"preprocessing.compression.attack",
		},
		{
			"bad eq preset",
			func(c *Config) { c.Preprocessing.EQ.Preset = ptr(EQPreset("vinyl")) },
			"preprocessing.eq.preset",
		},
		{
			"empty output format",
			func(c *Config) { c.Output.Format = "" },
			"output.format",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			var ce *ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("Validate = %v, want ConfigError", err)
			}
			if ce.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", ce.Field, tt.wantField)
			}
		})
	}

	if err := Validate(Default()); err != nil {
		t.Errorf("Validate(Default()) = %v, want nil", err)
	}
}

func TestWriteDefaultRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clearcast.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := Resolve(cfg, "noisy_environment"); err != nil {
		t.Errorf("Resolve on reloaded defaults: %v", err)
	}
}
