package dsp

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/clearcast-audio/clearcast/internal/audio"
	"github.com/clearcast-audio/clearcast/internal/config"
	"github.com/clearcast-audio/clearcast/internal/mains"
)

// Spectral gating noise reduction. The buffer is analysed in overlapping
// Hann-windowed frames; a noise magnitude profile is estimated from the
// quietest frames, and bins whose magnitude falls within the profile are
// attenuated. Overlap-add resynthesis preserves the buffer length exactly.

const (
	fftSize = 2048
	fftHop  = fftSize / 4 // 75 % overlap

	// Fraction of frames treated as noise-only for profile estimation.
	noiseFrameFraction = 0.10

	humNotchQ      = 30.0
	humMaxHarmonic = 400.0 // Hz, covers mains fundamentals up to ~8th harmonic
)

// nrParams is the numeric parameter bundle a strength enum resolves to.
type nrParams struct {
	gateThreshold float64 // multiple of the noise profile that opens a bin
	depth         float64 // subtraction depth applied to gated bins
	floorGain     float64 // linear gain floor, keeps residue natural
	smoothingBins int     // half-width of the gain smoothing window
}

var strengthParams = map[config.Strength]nrParams{
	config.StrengthLow:    {gateThreshold: 1.5, depth: 1.0, floorGain: dbToLinearConst(-12), smoothingBins: 2},
	config.StrengthMedium: {gateThreshold: 2.0, depth: 1.5, floorGain: dbToLinearConst(-20), smoothingBins: 3},
	config.StrengthHigh:   {gateThreshold: 2.5, depth: 2.0, floorGain: dbToLinearConst(-30), smoothingBins: 4},
}

// dbToLinearConst mirrors dbToLinear for use in composite literals.
func dbToLinearConst(db float64) float64 { return math.Pow(10, db/20) }

// NoiseReducer attenuates stationary broadband noise, and optionally mains
// hum and its harmonics, per channel.
type NoiseReducer struct {
	params nrParams
	humHz  float64 // 0 when hum removal is off

	// Set by Process for the run report.
	floorDB       float64
	floorMeasured bool
}

// NewNoiseReducer resolves the strength enum into numeric parameters. When
// hum removal is requested the mains frequency is detected once here, from
// the host timezone, so every buffer in the run gets the same notch set.
func NewNoiseReducer(cfg config.EffectiveNoiseReduction) (*NoiseReducer, error) {
	params, ok := strengthParams[cfg.Strength]
	if !ok {
		return nil, &config.ConfigError{
			Field: "preprocessing.noise_reduction.strength",
			Msg:   "unknown strength " + string(cfg.Strength),
		}
	}
	nr := &NoiseReducer{params: params}
	if cfg.HumRemoval {
		nr.humHz = mains.Detect()
	}
	return nr, nil
}

func (nr *NoiseReducer) Name() string { return "noise_reduction" }

// Process runs hum notching then spectral gating on every channel. Buffers
// shorter than one analysis frame pass through untouched; there is nothing
// meaningful to estimate a noise profile from.
func (nr *NoiseReducer) Process(buf *audio.Buffer) (*audio.Buffer, error) {
	if buf.Frames() < fftSize {
		return buf, nil
	}

	if nr.humHz > 0 {
		if err := nr.notchHum(buf); err != nil {
			return nil, err
		}
	}

	fft := fourier.NewFFT(fftSize)
	window := hannWindow(fftSize)
	var floorSum float64
	for chIdx, ch := range buf.Data {
		out, floorDB := spectralGate(fft, window, ch, nr.params)
		buf.Data[chIdx] = out
		floorSum += floorDB
	}
	nr.floorDB = floorSum / float64(buf.Channels())
	nr.floorMeasured = true
	return buf, nil
}

func (nr *NoiseReducer) reportInto(r *Report) {
	if nr.floorMeasured {
		r.NoiseFloorDB = nr.floorDB
		r.NoiseFloorMeasured = true
	}
}

// notchHum cascades narrow notches at the mains fundamental and its
// harmonics through every channel.
func (nr *NoiseReducer) notchHum(buf *audio.Buffer) error {
	maxHz := humMaxHarmonic
	if nyquist := float64(buf.SampleRate) / 2; maxHz >= nyquist {
		maxHz = nyquist - 1
	}
	harmonics := mains.Harmonics(nr.humHz, maxHz)
	notches := make([]biquad, len(harmonics))
	for i, freq := range harmonics {
		f, err := designBiquad(float64(buf.SampleRate), "notch", freq, 0, humNotchQ)
		if err != nil {
			return stageErrorf(nr.Name(), "hum notch: %v", err)
		}
		notches[i] = f
	}

	for _, ch := range buf.Data {
		for i := range notches {
			notches[i].reset()
		}
		for n, x := range ch {
			for i := range notches {
				x = notches[i].process(x)
			}
			ch[n] = x
		}
	}
	return nil
}

// colaWindowEnergy is the accumulated squared periodic Hann window at 75 %
// overlap wherever four frames fully cover a sample: 4 * 3/8.
const colaWindowEnergy = 1.5

// hannWindow returns the periodic Hann window, which overlap-adds to a
// constant at 75 % overlap.
func hannWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n)))
	}
	return w
}

// spectralGate denoises a single channel, returning a slice of the same
// length and the channel's estimated noise floor in dB.
func spectralGate(fft *fourier.FFT, window []float64, ch []float64, p nrParams) ([]float64, float64) {
	bins := fftSize/2 + 1

	// Frame count covering the whole signal, tail zero-padded.
	numFrames := (len(ch)-fftSize)/fftHop + 1
	if (numFrames-1)*fftHop+fftSize < len(ch) {
		numFrames++
	}

	// Analysis: windowed FFT of every frame, plus frame energies for the
	// noise profile.
	spectra := make([][]complex128, numFrames)
	energies := make([]float64, numFrames)
	frame := make([]float64, fftSize)
	for f := 0; f < numFrames; f++ {
		start := f * fftHop
		for i := range frame {
			if start+i < len(ch) {
				frame[i] = ch[start+i] * window[i]
			} else {
				frame[i] = 0
			}
		}
		spectra[f] = fft.Coefficients(nil, frame)
		var e float64
		for _, s := range frame {
			e += s * s
		}
		energies[f] = e
	}

	// Noise profile: mean magnitude per bin over the quietest frames.
	profile := noiseProfile(spectra, energies, bins)

	// Gate each frame against the profile and smooth the gain curve across
	// bins so isolated bins do not produce musical-noise artifacts.
	gains := make([]float64, bins)
	smoothed := make([]float64, bins)
	for _, spectrum := range spectra {
		for b := 0; b < bins; b++ {
			mag := cmplxAbs(spectrum[b])
			noise := profile[b]
			if noise == 0 {
				gains[b] = 1
				continue
			}
			if mag < p.gateThreshold*noise {
				gains[b] = p.floorGain
				continue
			}
			// Spectral subtraction above the gate, clamped to the floor.
			g := 1 - p.depth*noise/mag
			if g < p.floorGain {
				g = p.floorGain
			}
			gains[b] = g
		}
		smoothGains(gains, smoothed, p.smoothingBins)
		for b := 0; b < bins; b++ {
			spectrum[b] = scaleComplex(spectrum[b], smoothed[b])
		}
	}

	// Overlap-add resynthesis with a matching synthesis window, dividing
	// the accumulated window energy back out per sample.
	out := make([]float64, len(ch))
	norm := make([]float64, len(ch))
	for f, spectrum := range spectra {
		fft.Sequence(frame, spectrum)
		start := f * fftHop
		for i := 0; i < fftSize && start+i < len(ch); i++ {
			sample := frame[i] / float64(fftSize) // gonum's transform is unnormalised
			out[start+i] += sample * window[i]
			norm[start+i] += window[i] * window[i]
		}
	}
	// At the buffer edges the window overlap is incomplete and the energy
	// divisor shrinks toward zero; dividing there amplifies whatever
	// spectral leakage the gating left in the frame tails. Those samples
	// pass through unmodified instead.
	for i := range out {
		if norm[i] >= colaWindowEnergy-1e-6 {
			out[i] /= norm[i]
		} else {
			out[i] = ch[i]
		}
	}
	return out, noiseFloorDB(energies)
}

// noiseFloorDB estimates a channel's noise floor from the quietest analysis
// frame energies, compensating for the window's mean-square of 3/8.
func noiseFloorDB(energies []float64) float64 {
	sorted := append([]float64(nil), energies...)
	sort.Float64s(sorted)
	count := int(float64(len(sorted)) * noiseFrameFraction)
	if count < 1 {
		count = 1
	}
	var sum float64
	for _, e := range sorted[:count] {
		sum += e
	}
	rms := math.Sqrt(sum / float64(count) / (float64(fftSize) * 3.0 / 8.0))
	return linearToDB(rms)
}

// noiseProfile averages the magnitude spectra of the lowest-energy frames.
func noiseProfile(spectra [][]complex128, energies []float64, bins int) []float64 {
	order := make([]int, len(energies))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return energies[order[i]] < energies[order[j]] })

	count := int(float64(len(order)) * noiseFrameFraction)
	if count < 1 {
		count = 1
	}

	profile := make([]float64, bins)
	for _, f := range order[:count] {
		for b := 0; b < bins; b++ {
			profile[b] += cmplxAbs(spectra[f][b])
		}
	}
	for b := range profile {
		profile[b] /= float64(count)
	}
	return profile
}

// smoothGains moving-averages the per-bin gains into dst.
func smoothGains(gains, dst []float64, halfWidth int) {
	for b := range gains {
		lo := b - halfWidth
		if lo < 0 {
			lo = 0
		}
		hi := b + halfWidth + 1
		if hi > len(gains) {
			hi = len(gains)
		}
		var sum float64
		for _, g := range gains[lo:hi] {
			sum += g
		}
		dst[b] = sum / float64(hi-lo)
	}
}

func cmplxAbs(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}

func scaleComplex(c complex128, g float64) complex128 {
	return complex(real(c)*g, imag(c)*g)
}
