// Package config defines the YAML configuration schema for the preprocessing
// pipeline and resolves base-plus-preset overlays into effective settings.
package config

import "fmt"

// Strength is the noise reduction intensity setting.
type Strength string

const (
	StrengthLow    Strength = "low"
	StrengthMedium Strength = "medium"
	StrengthHigh   Strength = "high"
)

// IsValid reports whether s is a recognised strength value.
func (s Strength) IsValid() bool {
	switch s {
	case StrengthLow, StrengthMedium, StrengthHigh:
		return true
	}
	return false
}

// EQPreset selects the equalizer curve.
type EQPreset string

const (
	EQSpeech EQPreset = "speech"
	EQMusic  EQPreset = "music"
	EQCustom EQPreset = "custom"
)

// IsValid reports whether p is a recognised EQ preset value.
func (p EQPreset) IsValid() bool {
	switch p {
	case EQSpeech, EQMusic, EQCustom:
		return true
	}
	return false
}

// FilterSpec describes one biquad section for the custom EQ preset.
type FilterSpec struct {
	Type      string  `yaml:"type"` // peaking, low_shelf, high_shelf, band_pass, high_pass, low_pass, notch
	Frequency float64 `yaml:"frequency"`
	Gain      float64 `yaml:"gain,omitempty"`
	Q         float64 `yaml:"q,omitempty"`
}

// OutputConfig holds output placement settings consumed by the batch runner.
type OutputConfig struct {
	Format    string `yaml:"format"`
	Directory string `yaml:"directory"`
	Suffix    string `yaml:"suffix"`
}

// EncodingConfig holds encoder settings. This is the top-level `compression`
// block of the config file, distinct from the preprocessing compression stage.
type EncodingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Format  string `yaml:"format"`
	Codec   string `yaml:"codec"`
	Bitrate string `yaml:"bitrate"`
}

// Stage configs use pointer fields so that presets can overlay any subset of
// parameters. A nil field means "inherit"; resolution fails if a field is nil
// in both base and preset.

// NoiseReductionConfig configures the spectral noise reduction stage.
type NoiseReductionConfig struct {
	Enabled    *bool     `yaml:"enabled,omitempty"`
	Strength   *Strength `yaml:"strength,omitempty"`
	HumRemoval *bool     `yaml:"hum_removal,omitempty"`
}

// NormalizationConfig configures the loudness normalization stage.
type NormalizationConfig struct {
	Enabled     *bool    `yaml:"enabled,omitempty"`
	TargetLevel *float64 `yaml:"target_level,omitempty"` // LUFS
	TruePeak    *float64 `yaml:"true_peak,omitempty"`    // dBTP ceiling
}

// CompressionConfig configures the dynamic range compression stage.
type CompressionConfig struct {
	Enabled   *bool    `yaml:"enabled,omitempty"`
	Threshold *float64 `yaml:"threshold,omitempty"` // dB
	Ratio     *float64 `yaml:"ratio,omitempty"`
	Attack    *float64 `yaml:"attack,omitempty"`  // ms
	Release   *float64 `yaml:"release,omitempty"` // ms
}

// EQConfig configures the equalization stage.
// Filters is only consulted when Preset is "custom"; a preset overlaying
// Filters replaces the whole list rather than merging element-wise.
type EQConfig struct {
	Enabled *bool        `yaml:"enabled,omitempty"`
	Preset  *EQPreset    `yaml:"preset,omitempty"`
	Filters []FilterSpec `yaml:"filters,omitempty"`
}

// Preprocessing groups the four DSP stage configs. The same shape serves as
// the base configuration and as a preset overlay (with most fields nil).
type Preprocessing struct {
	NoiseReduction NoiseReductionConfig `yaml:"noise_reduction"`
	Normalization  NormalizationConfig  `yaml:"normalization"`
	Compression    CompressionConfig    `yaml:"compression"`
	EQ             EQConfig             `yaml:"eq"`
}

// Config is the full configuration file. Immutable once loaded.
type Config struct {
	Output        OutputConfig             `yaml:"output"`
	Compression   EncodingConfig           `yaml:"compression"`
	Preprocessing Preprocessing            `yaml:"preprocessing"`
	Presets       map[string]Preprocessing `yaml:"presets,omitempty"`
}

// ConfigError reports a missing or out-of-range configuration field.
// Base-config errors abort the whole run; preset errors fail only the files
// using that preset.
type ConfigError struct {
	Field string
	Msg   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Msg)
}

func configErrorf(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Msg: fmt.Sprintf(format, args...)}
}
