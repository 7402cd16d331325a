package dsp

import (
	"math"

	"github.com/clearcast-audio/clearcast/internal/audio"
)

// Integrated loudness measurement per ITU-R BS.1770-4: K-weighting
// prefilter, 400 ms gated blocks with 75 % overlap, an absolute gate at
// -70 LUFS, then a relative gate 10 LU below the ungated mean.

// K-weighting prototype parameters. BS.1770 publishes coefficients for
// 48 kHz only; these analogue-domain prototypes reproduce those exact
// coefficients at 48 kHz and generalise the filter to any sample rate.
const (
	kShelfFreq = 1681.974450955533
	kShelfGain = 3.999843853973347
	kShelfQ    = 0.7071752369554196

	kHighpassFreq = 38.13547087602444
	kHighpassQ    = 0.5003270373238773
)

const (
	blockSeconds = 0.400 // gating block length
	blockOverlap = 0.75

	absoluteGateLUFS = -70.0
	relativeGateLU   = 10.0

	// loudnessOffset maps mean-square energy to LUFS so that full-scale
	// 997 Hz sine reads -3.01 LUFS per the standard.
	loudnessOffset = -0.691
)

// kWeighting returns the two-stage K-weighting cascade for a sample rate.
// Both stages come from the analogue prototypes via the bilinear transform,
// not from the cookbook Q designs; the cookbook shelf has a different
// transition shape and misreads the calibration tone by a quarter decibel.
func kWeighting(sampleRate float64) [2]biquad {
	return [2]biquad{
		kHighShelf(sampleRate),
		kHighpass(sampleRate),
	}
}

// kHighShelf is the +4 dB head-weighting shelf. At 48 kHz it reproduces the
// published pre-filter coefficients to full precision.
func kHighShelf(sampleRate float64) biquad {
	k := math.Tan(math.Pi * kShelfFreq / sampleRate)
	vh := math.Pow(10, kShelfGain/20)
	vb := math.Pow(vh, 0.4996667741545416)
	a0 := 1 + k/kShelfQ + k*k
	return biquad{
		b0: (vh + vb*k/kShelfQ + k*k) / a0,
		b1: 2 * (k*k - vh) / a0,
		b2: (vh - vb*k/kShelfQ + k*k) / a0,
		a1: 2 * (k*k - 1) / a0,
		a2: (1 - k/kShelfQ + k*k) / a0,
	}
}

// kHighpass is the revised low-cut stage. The standard leaves its feed
// forward side unnormalised at exactly {1, -2, 1}.
func kHighpass(sampleRate float64) biquad {
	k := math.Tan(math.Pi * kHighpassFreq / sampleRate)
	a0 := 1 + k/kHighpassQ + k*k
	return biquad{
		b0: 1,
		b1: -2,
		b2: 1,
		a1: 2 * (k*k - 1) / a0,
		a2: (1 - k/kHighpassQ + k*k) / a0,
	}
}

// IntegratedLoudness measures the gated integrated loudness of the buffer
// in LUFS. All channels carry unit weight; surround configurations with
// weighted rear channels are out of scope for podcast material.
//
// Returns an AnalysisError when the buffer is shorter than one gating
// block, since no valid measurement exists for it.
func IntegratedLoudness(buf *audio.Buffer) (float64, error) {
	blockLen := int(blockSeconds * float64(buf.SampleRate))
	hop := int(blockSeconds * (1 - blockOverlap) * float64(buf.SampleRate))
	if buf.Frames() < blockLen || blockLen == 0 || hop == 0 {
		return 0, analysisErrorf("integrated loudness",
			"buffer of %d frames shorter than one %d-frame gating block", buf.Frames(), blockLen)
	}

	// K-weight each channel with fresh filter state.
	weighted := make([][]float64, buf.Channels())
	for chIdx, ch := range buf.Data {
		filters := kWeighting(float64(buf.SampleRate))
		w := make([]float64, len(ch))
		for n, x := range ch {
			x = filters[0].process(x)
			w[n] = filters[1].process(x)
		}
		weighted[chIdx] = w
	}

	// Mean-square energy per gating block, summed over channels.
	var blocks []float64
	for start := 0; start+blockLen <= buf.Frames(); start += hop {
		var energy float64
		for _, w := range weighted {
			var sum float64
			for _, s := range w[start : start+blockLen] {
				sum += s * s
			}
			energy += sum / float64(blockLen)
		}
		blocks = append(blocks, energy)
	}

	// Absolute gate.
	absThreshold := energyFromLoudness(absoluteGateLUFS)
	var sum float64
	var n int
	for _, z := range blocks {
		if z > absThreshold {
			sum += z
			n++
		}
	}
	if n == 0 {
		return 0, analysisErrorf("integrated loudness", "no blocks above the -70 LUFS absolute gate")
	}

	// Relative gate, 10 LU below the loudness of the absolutely gated set.
	relThreshold := energyFromLoudness(loudnessFromEnergy(sum/float64(n)) - relativeGateLU)
	sum, n = 0, 0
	for _, z := range blocks {
		if z > absThreshold && z > relThreshold {
			sum += z
			n++
		}
	}
	if n == 0 {
		return 0, analysisErrorf("integrated loudness", "no blocks above the relative gate")
	}

	return loudnessFromEnergy(sum / float64(n)), nil
}

func loudnessFromEnergy(z float64) float64 {
	return loudnessOffset + 10*math.Log10(z)
}

func energyFromLoudness(lufs float64) float64 {
	return math.Pow(10, (lufs-loudnessOffset)/10)
}

// True peak detection: 4x oversampling with a polyphase windowed-sinc
// interpolator, so inter-sample peaks that a plain sample max misses are
// counted. 48 taps gives comfortably better than the 0.1 dB accuracy the
// measurement standard calls for.

const (
	oversampleFactor = 4
	interpTapsPerArm = 12
)

// interpolator holds one FIR arm per fractional phase.
type interpolator struct {
	arms [oversampleFactor - 1][interpTapsPerArm]float64
}

func newInterpolator() *interpolator {
	ip := &interpolator{}
	total := oversampleFactor * interpTapsPerArm
	center := float64(total-1) / 2
	for phase := 1; phase < oversampleFactor; phase++ {
		for tap := 0; tap < interpTapsPerArm; tap++ {
			// Position of this tap in the prototype lowpass.
			n := float64(tap*oversampleFactor + phase)
			t := (n - center) / oversampleFactor
			// Hann-windowed sinc.
			window := 0.5 * (1 - math.Cos(2*math.Pi*n/float64(total-1)))
			ip.arms[phase-1][tap] = sinc(t) * window
		}
	}
	return ip
}

func sinc(t float64) float64 {
	if t == 0 {
		return 1
	}
	return math.Sin(math.Pi*t) / (math.Pi * t)
}

// peak returns the largest absolute interpolated value for one channel.
func (ip *interpolator) peak(ch []float64) float64 {
	var peak float64
	for _, s := range ch {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	sample := func(i int) float64 {
		if i < 0 || i >= len(ch) {
			return 0
		}
		return ch[i]
	}
	for n := range ch {
		for _, arm := range ip.arms {
			var acc float64
			for tap, coeff := range arm {
				acc += coeff * sample(n-tap+interpTapsPerArm/2)
			}
			if a := math.Abs(acc); a > peak {
				peak = a
			}
		}
	}
	return peak
}

// TruePeak returns the oversampled peak across all channels in dBTP.
func TruePeak(buf *audio.Buffer) float64 {
	ip := newInterpolator()
	var peak float64
	for _, ch := range buf.Data {
		if p := ip.peak(ch); p > peak {
			peak = p
		}
	}
	return linearToDB(peak)
}
