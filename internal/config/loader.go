package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

func ptr[T any](v T) *T { return &v }

// Default returns the built-in configuration used when no config file exists.
// Every preprocessing field is populated, so resolution against any partial
// preset always completes.
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			Format:    "wav",
			Directory: "processed_audio",
			Suffix:    "_processed",
		},
		Compression: EncodingConfig{
			Enabled: false,
			Format:  "wav",
			Codec:   "pcm_s16le",
			Bitrate: "",
		},
		Preprocessing: Preprocessing{
			NoiseReduction: NoiseReductionConfig{
				Enabled:    ptr(true),
				Strength:   ptr(StrengthMedium),
				HumRemoval: ptr(true),
			},
			Normalization: NormalizationConfig{
				Enabled:     ptr(true),
				TargetLevel: ptr(-16.0), // podcast delivery standard
				TruePeak:    ptr(-1.5),
			},
			Compression: CompressionConfig{
				Enabled:   ptr(false),
				Threshold: ptr(-20.0),
				Ratio:     ptr(4.0),
				Attack:    ptr(5.0),
				Release:   ptr(50.0),
			},
			EQ: EQConfig{
				Enabled: ptr(false),
				Preset:  ptr(EQSpeech),
			},
		},
		Presets: map[string]Preprocessing{
			"clean_speech": {
				NoiseReduction: NoiseReductionConfig{Strength: ptr(StrengthLow)},
				EQ:             EQConfig{Enabled: ptr(true), Preset: ptr(EQSpeech)},
			},
			"noisy_environment": {
				NoiseReduction: NoiseReductionConfig{Strength: ptr(StrengthHigh)},
				Compression: CompressionConfig{
					Enabled:   ptr(true),
					Threshold: ptr(-24.0),
					Ratio:     ptr(6.0),
				},
			},
			"music": {
				NoiseReduction: NoiseReductionConfig{Strength: ptr(StrengthLow)},
				Normalization:  NormalizationConfig{TargetLevel: ptr(-14.0), TruePeak: ptr(-1.0)},
				EQ:             EQConfig{Enabled: ptr(true), Preset: ptr(EQMusic)},
			},
		},
	}
}

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader] and
// [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// WriteDefault writes the built-in default configuration to path as YAML.
func WriteDefault(path string) error {
	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("config: marshal defaults: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %q: %w", path, err)
	}
	return nil
}

// Validate checks that cfg contains a coherent base configuration.
// Base errors are fatal for the whole run, so they are reported before any
// file is processed. Preset overlays are validated per file at stage
// construction time, since a bad preset only fails the files that use it.
func Validate(cfg *Config) error {
	if cfg.Output.Format == "" {
		return configErrorf("output.format", "must not be empty")
	}
	if cfg.Output.Directory == "" {
		return configErrorf("output.directory", "must not be empty")
	}
	if cfg.Compression.Enabled && cfg.Compression.Format == "" {
		return configErrorf("compression.format", "must not be empty when compression is enabled")
	}

	p := cfg.Preprocessing
	if s := p.NoiseReduction.Strength; s != nil && !s.IsValid() {
		return configErrorf("preprocessing.noise_reduction.strength",
			"invalid value %q; valid values: low, medium, high", *s)
	}
	if v := p.Normalization.TargetLevel; v != nil && (*v < -40 || *v > 0) {
		return configErrorf("preprocessing.normalization.target_level",
			"%g LUFS is outside [-40, 0]", *v)
	}
	if v := p.Normalization.TruePeak; v != nil && *v > 0 {
		return configErrorf("preprocessing.normalization.true_peak",
			"%g dB is above full scale", *v)
	}
	if v := p.Compression.Ratio; v != nil && *v < 1 {
		return configErrorf("preprocessing.compression.ratio",
			"%g would expand rather than compress; must be >= 1", *v)
	}
	if v := p.Compression.Attack; v != nil && *v <= 0 {
		return configErrorf("preprocessing.compression.attack", "%g ms must be positive", *v)
	}
	if v := p.Compression.Release; v != nil && *v <= 0 {
		return configErrorf("preprocessing.compression.release", "%g ms must be positive", *v)
	}
	if e := p.EQ.Preset; e != nil && !e.IsValid() {
		return configErrorf("preprocessing.eq.preset",
			"invalid value %q; valid values: speech, music, custom", *e)
	}

	return nil
}
