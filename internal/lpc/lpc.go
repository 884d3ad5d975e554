// Package lpc implements linear predictive coding: autocorrelation,
// Levinson-Durbin recursion, coefficient quantization, and the
// residual/restore kernels used by SUBFRAME_LPC.
//
// There is no reference implementation of this component in the retrieved
// example pack (neither libFLAC's lpc.c nor a working Go encoder-side LPC
// path was available); the algorithms here follow the textbook
// Levinson-Durbin recursion and FLAC's own documented quantization rule.
package lpc

import "math"

// MaxOrder is the highest LPC order FLAC's frame format can represent
// (5-bit order-1 field).
const MaxOrder = 32

// Autocorrelate computes autoc[l] = sum_i samples[i]*samples[i-l] for lag l
// in 0..maxOrder, over the full block. Autocorrelation is evaluated in
// double precision regardless of the sample bit depth.
func Autocorrelate(samples []int32, maxOrder int) []float64 {
	autoc := make([]float64, maxOrder+1)
	n := len(samples)
	for lag := 0; lag <= maxOrder; lag++ {
		var sum float64
		for i := lag; i < n; i++ {
			sum += float64(samples[i]) * float64(samples[i-lag])
		}
		autoc[lag] = sum
	}
	return autoc
}

// LevinsonDurbin runs the reflection-coefficient recursion over autoc and
// returns, for every candidate order 1..maxOrder, that order's coefficient
// vector (coeffs[order-1] has length order) and the order's residual
// prediction error. The coefficients are predictor coefficients in the
// form Residual and Restore take: x[i] is predicted as
// sum_j coeffs[j]*x[i-1-j]. autoc[0] == 0 means every sample of the block
// is zero; the caller must skip LPC in that case (the recursion below
// divides by the running error, which would be zero).
func LevinsonDurbin(autoc []float64, maxOrder int) (coeffs [][]float64, errs []float64) {
	coeffs = make([][]float64, maxOrder)
	errs = make([]float64, maxOrder+1)
	errs[0] = autoc[0]

	lpc := make([]float64, maxOrder)
	for i := 0; i < maxOrder; i++ {
		if errs[i] == 0 {
			// Degenerate: freeze remaining orders at the previous order's
			// coefficients so callers indexing coeffs[i] still get a
			// usable (if suboptimal) vector.
			for j := i; j < maxOrder; j++ {
				v := make([]float64, j+1)
				for k := 0; k < j; k++ {
					v[k] = -lpc[k]
				}
				coeffs[j] = v
				errs[j+1] = errs[i]
			}
			break
		}

		r := -autoc[i+1]
		for j := 0; j < i; j++ {
			r -= lpc[j] * autoc[i-j]
		}
		r /= errs[i]

		lpc[i] = r
		for j := 0; j < i/2; j++ {
			tmp := lpc[j]
			lpc[j] += r * lpc[i-1-j]
			lpc[i-1-j] += r * tmp
		}
		if i%2 == 1 {
			lpc[i/2] += lpc[i/2] * r
		}

		errs[i+1] = errs[i] * (1 - r*r)

		// lpc holds the prediction-error filter; the predictor is its
		// negation.
		v := make([]float64, i+1)
		for j := range v {
			v[j] = -lpc[j]
		}
		coeffs[i] = v
	}
	return coeffs, errs
}

// EstimateBestOrder picks the order minimizing the approximate total bit
// cost N*0.5*log2(err[order]) + order*(bps+log2(N)), per spec's "best order
// estimate" rule. Orders whose error is non-positive are skipped (treated
// as not estimable, favoring a lower order).
func EstimateBestOrder(errs []float64, n int, bps int) int {
	bestOrder := 1
	bestBits := math.Inf(1)
	logN := math.Log2(float64(n))
	for order := 1; order < len(errs); order++ {
		e := errs[order]
		if e <= 0 {
			continue
		}
		bits := float64(n)*0.5*math.Log2(e) + float64(order)*(float64(bps)+logN)
		if bits < bestBits {
			bestBits = bits
			bestOrder = order
		}
	}
	return bestOrder
}

// QuantizedCoeffs holds an integer-quantized coefficient vector and the
// shift it was quantized at.
type QuantizedCoeffs struct {
	Coeffs    []int32
	Shift     int32 // may be negative
	Precision int
}

// Quantize scales coeffs by 2^shift, rounds to the nearest integer and
// clamps to precision bits (signed), choosing shift so the largest
// coefficient just fits. It returns false if no usable shift exists (every
// coefficient is exactly zero, or the largest coefficient is so big that
// the shift would fall below -15).
func Quantize(coeffs []float64, precision int) (QuantizedCoeffs, bool) {
	cmax := 0.0
	for _, c := range coeffs {
		if a := math.Abs(c); a > cmax {
			cmax = a
		}
	}
	if cmax <= 0 {
		return QuantizedCoeffs{}, false
	}

	log2cmax := int(math.Floor(math.Log2(cmax))) + 1
	shift := precision - 1 - log2cmax
	if shift > 15 {
		shift = 15
	}
	if shift < -15 {
		return QuantizedCoeffs{}, false
	}

	qmax := int32(1<<(uint(precision)-1)) - 1
	qmin := -qmax - 1

	q := make([]int32, len(coeffs))
	var carry float64
	for i, c := range coeffs {
		scaled := c*math.Pow(2, float64(shift)) + carry
		rounded := math.Round(scaled)
		v := int32(rounded)
		if v > qmax {
			v = qmax
		}
		if v < qmin {
			v = qmin
		}
		carry = scaled - float64(v)
		q[i] = v
	}
	return QuantizedCoeffs{Coeffs: q, Shift: int32(shift), Precision: precision}, true
}

// Residual computes r[i] = x[i] - (sum_j coeffs[j]*x[i-1-j]) >> shift for
// i in order..len(samples)-1, where order = len(coeffs). samples[0:order]
// are the warm-up samples.
func Residual(samples []int32, coeffs []int32, shift int32) []int32 {
	order := len(coeffs)
	res := make([]int32, len(samples)-order)
	for i := order; i < len(samples); i++ {
		var sum int64
		for j, c := range coeffs {
			sum += int64(c) * int64(samples[i-1-j])
		}
		res[i-order] = samples[i] - int32(shiftRight(sum, shift))
	}
	return res
}

// shiftRight applies an arithmetic right shift by shift bits; a negative
// shift (the quantizer picks one when the largest coefficient needs more
// integer bits than the requested precision leaves) shifts left instead.
func shiftRight(v int64, shift int32) int64 {
	if shift >= 0 {
		return v >> uint(shift)
	}
	return v << uint(-shift)
}

// Restore is the exact inverse of Residual.
func Restore(residual []int32, warmup []int32, coeffs []int32, shift int32) []int32 {
	order := len(coeffs)
	data := make([]int32, order+len(residual))
	copy(data, warmup)
	for i := order; i < len(data); i++ {
		var sum int64
		for j, c := range coeffs {
			sum += int64(c) * int64(data[i-1-j])
		}
		data[i] = residual[i-order] + int32(shiftRight(sum, shift))
	}
	return data
}
