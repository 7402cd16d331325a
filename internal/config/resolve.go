package config

// Effective holds a fully resolved stage parameter set: every field has a
// concrete value, no inherit markers remain. Computed once per pipeline
// invocation and immutable thereafter.
type Effective struct {
	NoiseReduction EffectiveNoiseReduction
	Normalization  EffectiveNormalization
	Compression    EffectiveCompression
	EQ             EffectiveEQ
}

// EffectiveNoiseReduction is the resolved noise reduction stage config.
type EffectiveNoiseReduction struct {
	Enabled    bool
	Strength   Strength
	HumRemoval bool
}

// EffectiveNormalization is the resolved loudness normalization stage config.
type EffectiveNormalization struct {
	Enabled     bool
	TargetLevel float64 // LUFS
	TruePeak    float64 // dBTP ceiling
}

// EffectiveCompression is the resolved dynamics compression stage config.
type EffectiveCompression struct {
	Enabled   bool
	Threshold float64 // dB
	Ratio     float64
	Attack    float64 // ms
	Release   float64 // ms
}

// EffectiveEQ is the resolved equalization stage config.
type EffectiveEQ struct {
	Enabled bool
	Preset  EQPreset
	Filters []FilterSpec // custom preset only
}

// Resolve merges the named preset onto the base preprocessing settings and
// returns the effective per-stage parameters. An empty presetName applies no
// overlay. Resolution is pure: the same (cfg, presetName) pair always yields
// the same result, and cfg is never mutated.
func Resolve(cfg *Config, presetName string) (*Effective, error) {
	merged := cfg.Preprocessing
	if presetName != "" {
		preset, ok := cfg.Presets[presetName]
		if !ok {
			return nil, configErrorf("presets", "unknown preset %q", presetName)
		}
		merged = Overlay(merged, preset)
	}
	return materialize(merged)
}

// Overlay merges a partial preset onto base, field by field: each field of
// the result takes the preset's value when present, otherwise the base's.
// Overlaying an empty preset is the identity, which gives the resolver its
// idempotence: Overlay(Overlay(b, p), Preprocessing{}) == Overlay(b, p).
func Overlay(base, preset Preprocessing) Preprocessing {
	out := base

	if v := preset.NoiseReduction.Enabled; v != nil {
		out.NoiseReduction.Enabled = v
	}
	if v := preset.NoiseReduction.Strength; v != nil {
		out.NoiseReduction.Strength = v
	}
	if v := preset.NoiseReduction.HumRemoval; v != nil {
		out.NoiseReduction.HumRemoval = v
	}

	if v := preset.Normalization.Enabled; v != nil {
		out.Normalization.Enabled = v
	}
	if v := preset.Normalization.TargetLevel; v != nil {
		out.Normalization.TargetLevel = v
	}
	if v := preset.Normalization.TruePeak; v != nil {
		out.Normalization.TruePeak = v
	}

	if v := preset.Compression.Enabled; v != nil {
		out.Compression.Enabled = v
	}
	if v := preset.Compression.Threshold; v != nil {
		out.Compression.Threshold = v
	}
	if v := preset.Compression.Ratio; v != nil {
		out.Compression.Ratio = v
	}
	if v := preset.Compression.Attack; v != nil {
		out.Compression.Attack = v
	}
	if v := preset.Compression.Release; v != nil {
		out.Compression.Release = v
	}

	if v := preset.EQ.Enabled; v != nil {
		out.EQ.Enabled = v
	}
	if v := preset.EQ.Preset; v != nil {
		out.EQ.Preset = v
	}
	if preset.EQ.Filters != nil {
		out.EQ.Filters = preset.EQ.Filters
	}

	return out
}

// materialize converts a merged Preprocessing into concrete effective values,
// failing if any field is still unset.
func materialize(p Preprocessing) (*Effective, error) {
	eff := &Effective{}

	if p.NoiseReduction.Enabled == nil {
		return nil, configErrorf("preprocessing.noise_reduction.enabled", "unresolved field")
	}
	if p.NoiseReduction.Strength == nil {
		return nil, configErrorf("preprocessing.noise_reduction.strength", "unresolved field")
	}
	if p.NoiseReduction.HumRemoval == nil {
		return nil, configErrorf("preprocessing.noise_reduction.hum_removal", "unresolved field")
	}
	eff.NoiseReduction = EffectiveNoiseReduction{
		Enabled:    *p.NoiseReduction.Enabled,
		Strength:   *p.NoiseReduction.Strength,
		HumRemoval: *p.NoiseReduction.HumRemoval,
	}

	if p.Normalization.Enabled == nil {
		return nil, configErrorf("preprocessing.normalization.enabled", "unresolved field")
	}
	if p.Normalization.TargetLevel == nil {
		return nil, configErrorf("preprocessing.normalization.target_level", "unresolved field")
	}
	if p.Normalization.TruePeak == nil {
		return nil, configErrorf("preprocessing.normalization.true_peak", "unresolved field")
	}
	eff.Normalization = EffectiveNormalization{
		Enabled:     *p.Normalization.Enabled,
		TargetLevel: *p.Normalization.TargetLevel,
		TruePeak:    *p.Normalization.TruePeak,
	}

	if p.Compression.Enabled == nil {
		return nil, configErrorf("preprocessing.compression.enabled", "unresolved field")
	}
	if p.Compression.Threshold == nil {
		return nil, configErrorf("preprocessing.compression.threshold", "unresolved field")
	}
	if p.Compression.Ratio == nil {
		return nil, configErrorf("preprocessing.compression.ratio", "unresolved field")
	}
	if p.Compression.Attack == nil {
		return nil, configErrorf("preprocessing.compression.attack", "unresolved field")
	}
	if p.Compression.Release == nil {
		return nil, configErrorf("preprocessing.compression.release", "unresolved field")
	}
	eff.Compression = EffectiveCompression{
		Enabled:   *p.Compression.Enabled,
		Threshold: *p.Compression.Threshold,
		Ratio:     *p.Compression.Ratio,
		Attack:    *p.Compression.Attack,
		Release:   *p.Compression.Release,
	}

	if p.EQ.Enabled == nil {
		return nil, configErrorf("preprocessing.eq.enabled", "unresolved field")
	}
	if p.EQ.Preset == nil {
		return nil, configErrorf("preprocessing.eq.preset", "unresolved field")
	}
	eff.EQ = EffectiveEQ{
		Enabled: *p.EQ.Enabled,
		Preset:  *p.EQ.Preset,
		Filters: p.EQ.Filters,
	}

	return eff, nil
}
