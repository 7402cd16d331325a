package dsp

import (
	"math"

	"github.com/clearcast-audio/clearcast/internal/audio"
	"github.com/clearcast-audio/clearcast/internal/config"
)

const (
	// Limiter timing. The look-ahead gives the gain envelope time to dip
	// before a transient arrives instead of clipping it.
	limiterLookaheadMS = 5.0
	limiterReleaseMS   = 50.0

	minTargetLUFS = -40.0
	maxTargetLUFS = 0.0
)

// Normalizer brings the buffer to the target integrated loudness and
// enforces the true peak ceiling.
//
// The ceiling is a hard constraint and the target is best effort: when the
// uniform gain needed to reach the target would push peaks over the
// ceiling, the limiter pulls them back and the measured loudness may
// undershoot.
type Normalizer struct {
	targetLUFS float64
	ceilingDB  float64

	// Set by Process for the run report.
	gainDB  float64
	limited bool
}

// NewNormalizer validates the resolved parameters. A positive true peak
// ceiling would permit clipping on decode and is rejected.
func NewNormalizer(cfg config.EffectiveNormalization) (*Normalizer, error) {
	if cfg.TargetLevel < minTargetLUFS || cfg.TargetLevel > maxTargetLUFS {
		return nil, &config.ConfigError{
			Field: "preprocessing.normalization.target_level",
			Msg:   "must be within [-40, 0] LUFS",
		}
	}
	if cfg.TruePeak > 0 {
		return nil, &config.ConfigError{
			Field: "preprocessing.normalization.true_peak",
			Msg:   "must be <= 0 dBTP",
		}
	}
	return &Normalizer{targetLUFS: cfg.TargetLevel, ceilingDB: cfg.TruePeak}, nil
}

func (n *Normalizer) Name() string { return "normalization" }

// Process measures, applies uniform gain toward the target, then limits.
// Three passes guarantee the ceiling:
//
//  1. uniform gain of (target - measured) dB
//  2. look-ahead limiting when the projected true peak exceeds the ceiling
//  3. a final uniform trim from the measured output true peak, which closes
//     the gap the limiter's inter-sample blindness can leave
//
// An AnalysisError from measurement propagates so the pipeline can skip the
// stage with a warning rather than fail the file.
func (n *Normalizer) Process(buf *audio.Buffer) (*audio.Buffer, error) {
	measured, err := IntegratedLoudness(buf)
	if err != nil {
		return nil, err
	}

	n.gainDB = n.targetLUFS - measured
	n.limited = false
	gain := dbToLinear(n.gainDB)
	for _, ch := range buf.Data {
		for i := range ch {
			ch[i] *= gain
		}
	}

	ceiling := dbToLinear(n.ceilingDB)
	if TruePeak(buf) > n.ceilingDB {
		n.limited = true
		limit(buf, ceiling)
		// The limiter works on sample peaks; reconstruction can still
		// overshoot between samples. Trim uniformly from the measured
		// output true peak so the ceiling holds exactly.
		if tp := TruePeak(buf); tp > n.ceilingDB {
			trim := ceiling / dbToLinear(tp)
			for _, ch := range buf.Data {
				for i := range ch {
					ch[i] *= trim
				}
			}
		}
	}

	return buf, nil
}

func (n *Normalizer) reportInto(r *Report) {
	r.GainDB = n.gainDB
	r.Limited = n.limited
}

// limit applies a channel-linked look-ahead limiter in place. The gain
// envelope is the smoothed sliding-window minimum of the per-frame required
// gain, so reductions begin before the peak arrives and recover at the
// release rate afterwards.
func limit(buf *audio.Buffer, ceiling float64) {
	frames := buf.Frames()
	if frames == 0 {
		return
	}
	lookahead := int(limiterLookaheadMS / 1000 * float64(buf.SampleRate))
	if lookahead < 1 {
		lookahead = 1
	}
	release := smoothingCoeff(limiterReleaseMS, buf.SampleRate)

	// Required gain per frame, linked across channels so the stereo image
	// does not wander.
	required := make([]float64, frames)
	for i := range required {
		var peak float64
		for _, ch := range buf.Data {
			if a := math.Abs(ch[i]); a > peak {
				peak = a
			}
		}
		if peak > ceiling {
			required[i] = ceiling / peak
		} else {
			required[i] = 1
		}
	}

	// Sliding-window minimum over the look-ahead horizon.
	windowed := slidingWindowMin(required, lookahead)

	// Smooth: drop instantly to a lower gain, recover at the release rate.
	applyEnvelope(buf, windowed, release)
}

// slidingWindowMin returns, for every index i, the minimum of
// values[i : i+window]. A monotonic index queue keeps the scan linear in
// the input length regardless of the window size.
func slidingWindowMin(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	deque := make([]int, 0, len(values))
	next := 0
	for i := range values {
		for ; next < i+window && next < len(values); next++ {
			for len(deque) > 0 && values[deque[len(deque)-1]] >= values[next] {
				deque = deque[:len(deque)-1]
			}
			deque = append(deque, next)
		}
		for deque[0] < i {
			deque = deque[1:]
		}
		out[i] = values[deque[0]]
	}
	return out
}

func applyEnvelope(buf *audio.Buffer, windowed []float64, release float64) {
	envelope := 1.0
	for i, g := range windowed {
		if g < envelope {
			envelope = g
		} else {
			envelope = release*envelope + (1-release)*g
		}
		for _, ch := range buf.Data {
			ch[i] *= envelope
		}
	}
}
