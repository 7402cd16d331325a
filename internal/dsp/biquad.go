package dsp

import (
	"fmt"
	"math"
)

// biquad is a second-order IIR section in transposed direct form II.
// Coefficients are normalised so a0 == 1. One biquad instance carries the
// state for a single channel; callers clone per channel.
type biquad struct {
	b0, b1, b2 float64
	a1, a2     float64
	z1, z2     float64
}

// process runs one sample through the section.
func (f *biquad) process(x float64) float64 {
	y := f.b0*x + f.z1
	f.z1 = f.b1*x - f.a1*y + f.z2
	f.z2 = f.b2*x - f.a2*y
	return y
}

// reset clears the filter memory.
func (f *biquad) reset() {
	f.z1, f.z2 = 0, 0
}

// stable reports whether both poles lie inside the unit circle. For a
// normalised quadratic z^2 + a1 z + a2 this is the standard triangle test.
func (f *biquad) stable() bool {
	return math.Abs(f.a2) < 1 && math.Abs(f.a1) < 1+f.a2
}

// The designs below follow Robert Bristow-Johnson's Audio EQ Cookbook.
// Frequencies are in Hz, gains in dB, and all coefficients come out
// normalised by a0.

func peakingEQ(sampleRate, freq, gainDB, q float64) biquad {
	a := math.Pow(10, gainDB/40)
	w0 := 2 * math.Pi * freq / sampleRate
	alpha := math.Sin(w0) / (2 * q)
	cosw0 := math.Cos(w0)

	b0 := 1 + alpha*a
	b1 := -2 * cosw0
	b2 := 1 - alpha*a
	a0 := 1 + alpha/a
	a1 := -2 * cosw0
	a2 := 1 - alpha/a
	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

func lowShelf(sampleRate, freq, gainDB, q float64) biquad {
	a := math.Pow(10, gainDB/40)
	w0 := 2 * math.Pi * freq / sampleRate
	alpha := math.Sin(w0) / (2 * q)
	cosw0 := math.Cos(w0)
	sqrtA2alpha := 2 * math.Sqrt(a) * alpha

	b0 := a * ((a + 1) - (a-1)*cosw0 + sqrtA2alpha)
	b1 := 2 * a * ((a - 1) - (a+1)*cosw0)
	b2 := a * ((a + 1) - (a-1)*cosw0 - sqrtA2alpha)
	a0 := (a + 1) + (a-1)*cosw0 + sqrtA2alpha
	a1 := -2 * ((a - 1) + (a+1)*cosw0)
	a2 := (a + 1) + (a-1)*cosw0 - sqrtA2alpha
	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

func highShelf(sampleRate, freq, gainDB, q float64) biquad {
	a := math.Pow(10, gainDB/40)
	w0 := 2 * math.Pi * freq / sampleRate
	alpha := math.Sin(w0) / (2 * q)
	cosw0 := math.Cos(w0)
	sqrtA2alpha := 2 * math.Sqrt(a) * alpha

	b0 := a * ((a + 1) + (a-1)*cosw0 + sqrtA2alpha)
	b1 := -2 * a * ((a - 1) + (a+1)*cosw0)
	b2 := a * ((a + 1) + (a-1)*cosw0 - sqrtA2alpha)
	a0 := (a + 1) - (a-1)*cosw0 + sqrtA2alpha
	a1 := 2 * ((a - 1) - (a+1)*cosw0)
	a2 := (a + 1) - (a-1)*cosw0 - sqrtA2alpha
	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

func bandPass(sampleRate, freq, q float64) biquad {
	w0 := 2 * math.Pi * freq / sampleRate
	alpha := math.Sin(w0) / (2 * q)
	cosw0 := math.Cos(w0)

	// Constant 0 dB peak gain variant.
	b0 := alpha
	b1 := 0.0
	b2 := -alpha
	a0 := 1 + alpha
	a1 := -2 * cosw0
	a2 := 1 - alpha
	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

func notch(sampleRate, freq, q float64) biquad {
	w0 := 2 * math.Pi * freq / sampleRate
	alpha := math.Sin(w0) / (2 * q)
	cosw0 := math.Cos(w0)

	b0 := 1.0
	b1 := -2 * cosw0
	b2 := 1.0
	a0 := 1 + alpha
	a1 := -2 * cosw0
	a2 := 1 - alpha
	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

func highPass(sampleRate, freq, q float64) biquad {
	w0 := 2 * math.Pi * freq / sampleRate
	alpha := math.Sin(w0) / (2 * q)
	cosw0 := math.Cos(w0)

	b0 := (1 + cosw0) / 2
	b1 := -(1 + cosw0)
	b2 := (1 + cosw0) / 2
	a0 := 1 + alpha
	a1 := -2 * cosw0
	a2 := 1 - alpha
	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

func lowPass(sampleRate, freq, q float64) biquad {
	w0 := 2 * math.Pi * freq / sampleRate
	alpha := math.Sin(w0) / (2 * q)
	cosw0 := math.Cos(w0)

	b0 := (1 - cosw0) / 2
	b1 := 1 - cosw0
	b2 := (1 - cosw0) / 2
	a0 := 1 + alpha
	a1 := -2 * cosw0
	a2 := 1 - alpha
	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

func normalizeBiquad(b0, b1, b2, a0, a1, a2 float64) biquad {
	return biquad{
		b0: b0 / a0,
		b1: b1 / a0,
		b2: b2 / a0,
		a1: a1 / a0,
		a2: a2 / a0,
	}
}

// designBiquad dispatches on the config-level filter type name. Frequencies
// at or above Nyquist cannot be realised and produce an error rather than a
// silently broken filter.
func designBiquad(sampleRate float64, typ string, freq, gainDB, q float64) (biquad, error) {
	if freq <= 0 || freq >= sampleRate/2 {
		return biquad{}, fmt.Errorf("frequency %.1f Hz outside (0, %.1f)", freq, sampleRate/2)
	}
	if q <= 0 {
		q = defaultQ
	}

	var f biquad
	switch typ {
	case "peaking":
		f = peakingEQ(sampleRate, freq, gainDB, q)
	case "low_shelf":
		f = lowShelf(sampleRate, freq, gainDB, q)
	case "high_shelf":
		f = highShelf(sampleRate, freq, gainDB, q)
	case "band_pass":
		f = bandPass(sampleRate, freq, q)
	case "notch":
		f = notch(sampleRate, freq, q)
	case "high_pass":
		f = highPass(sampleRate, freq, q)
	case "low_pass":
		f = lowPass(sampleRate, freq, q)
	default:
		return biquad{}, fmt.Errorf("unknown filter type %q", typ)
	}

	if !f.stable() {
		return biquad{}, fmt.Errorf("%s at %.1f Hz (Q=%.2f) is unstable", typ, freq, q)
	}
	return f, nil
}

// defaultQ is the Butterworth Q, used when a filter spec omits one.
const defaultQ = 0.7071067811865476
