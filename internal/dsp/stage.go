package dsp

import (
	"github.com/clearcast-audio/clearcast/internal/audio"
	"github.com/clearcast-audio/clearcast/internal/config"
)

// Stage is one step of the processing chain. Process consumes its input
// buffer exclusively and returns the processed buffer, which may be the
// same buffer modified in place. Stage state (envelopes, filter memory,
// noise profiles) belongs to a single file's run and is never reused.
type Stage interface {
	// Name identifies the stage in logs and error messages.
	Name() string

	Process(buf *audio.Buffer) (*audio.Buffer, error)
}

// Build translates a resolved configuration into the ordered stage chain.
// Application order is fixed: noise reduction, compression, normalisation,
// equalisation. Noise must go before any level-dependent decision, the
// compressor shapes dynamics before the final level is set, and EQ runs
// last because its gentle shaping cannot disturb the normaliser's peak
// ceiling by much.
//
// Disabled stages are omitted entirely. Construction touches no audio, only
// parameter translation and validation; out-of-range values fail fast with
// a ConfigError so a bad preset is caught before any samples move.
func Build(eff *config.Effective) ([]Stage, error) {
	var stages []Stage

	if eff.NoiseReduction.Enabled {
		nr, err := NewNoiseReducer(eff.NoiseReduction)
		if err != nil {
			return nil, err
		}
		stages = append(stages, nr)
	}

	if eff.Compression.Enabled {
		comp, err := NewCompressor(eff.Compression)
		if err != nil {
			return nil, err
		}
		stages = append(stages, comp)
	}

	if eff.Normalization.Enabled {
		norm, err := NewNormalizer(eff.Normalization)
		if err != nil {
			return nil, err
		}
		stages = append(stages, norm)
	}

	if eff.EQ.Enabled {
		eq, err := NewEqualizer(eff.EQ)
		if err != nil {
			return nil, err
		}
		stages = append(stages, eq)
	}

	return stages, nil
}
