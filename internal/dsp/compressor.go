package dsp

import (
	"math"

	"github.com/clearcast-audio/clearcast/internal/audio"
	"github.com/clearcast-audio/clearcast/internal/config"
)

// Compressor applies downward dynamics compression above a threshold.
//
// Gain computation follows the classic feed-forward topology: for input
// level L above the threshold T, the target output level is
// T + (L-T)/ratio, so the target gain reduction is the difference. A single
// envelope per channel tracks the computed gain reduction in dB, rising at
// the attack rate and falling at the release rate, which keeps gain changes
// smooth enough to stay inaudible.
type Compressor struct {
	threshold float64 // dB
	ratio     float64
	attackMS  float64
	releaseMS float64
}

// NewCompressor validates the resolved parameters. Ratio below 1 would turn
// the stage into an expander and is rejected, as are non-positive time
// constants.
func NewCompressor(cfg config.EffectiveCompression) (*Compressor, error) {
	if cfg.Ratio < 1 {
		return nil, &config.ConfigError{
			Field: "preprocessing.compression.ratio",
			Msg:   "must be >= 1",
		}
	}
	if cfg.Attack <= 0 {
		return nil, &config.ConfigError{
			Field: "preprocessing.compression.attack",
			Msg:   "must be positive",
		}
	}
	if cfg.Release <= 0 {
		return nil, &config.ConfigError{
			Field: "preprocessing.compression.release",
			Msg:   "must be positive",
		}
	}
	return &Compressor{
		threshold: cfg.Threshold,
		ratio:     cfg.Ratio,
		attackMS:  cfg.Attack,
		releaseMS: cfg.Release,
	}, nil
}

func (c *Compressor) Name() string { return "compression" }

// smoothingCoeff converts a millisecond time constant into a one-pole
// smoothing coefficient at the given sample rate.
func smoothingCoeff(ms float64, sampleRate int) float64 {
	return math.Exp(-1 / (float64(sampleRate) * ms / 1000))
}

// Process compresses each channel independently with its own envelope.
func (c *Compressor) Process(buf *audio.Buffer) (*audio.Buffer, error) {
	attack := smoothingCoeff(c.attackMS, buf.SampleRate)
	release := smoothingCoeff(c.releaseMS, buf.SampleRate)

	for _, ch := range buf.Data {
		envelope := 0.0 // current gain reduction, dB
		for n, x := range ch {
			level := linearToDB(math.Abs(x))

			// Target reduction from the static curve: zero below
			// threshold, ratio-scaled above.
			target := 0.0
			if level > c.threshold {
				target = level - (c.threshold + (level-c.threshold)/c.ratio)
			}

			coeff := release
			if target > envelope {
				coeff = attack
			}
			envelope = coeff*envelope + (1-coeff)*target

			ch[n] = x * dbToLinear(-envelope)
		}
	}
	return buf, nil
}

// dbToLinear converts decibels to linear amplitude.
func dbToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// linearToDB converts linear amplitude to decibels, with a practical floor
// for silence.
func linearToDB(linear float64) float64 {
	if linear <= 0 {
		return -120
	}
	return 20 * math.Log10(linear)
}
