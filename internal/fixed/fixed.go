// Package fixed implements FLAC's fixed predictors (orders 0 through 4):
// small polynomial difference predictors with implicit integer
// coefficients, selected by comparing the sum of absolute residuals across
// all five orders in a single pass.
package fixed

import "math"

// MaxOrder is the highest fixed predictor order FLAC defines.
const MaxOrder = 4

// BestOrder scans samples once and returns the fixed predictor order
// (0..4) whose residual has the smallest sum of absolute values, along
// with the expected residual bits-per-sample for every order.
//
// samples must hold at least 4 elements; orders whose warm-up would run
// past the start of samples are compared using the same running-error
// recurrence libFLAC uses, so every order is evaluated over the exact same
// trailing window samples[4:].
func BestOrder(samples []int32) (order int, bitsPerSample [MaxOrder + 1]float64) {
	var sums [MaxOrder + 1]uint64
	sums = sumAbsErrors(samples)

	order = 0
	best := sums[0]
	for k := 1; k <= MaxOrder; k++ {
		if sums[k] < best {
			best = sums[k]
			order = k
		}
	}

	n := float64(len(samples) - 4)
	for k := 0; k <= MaxOrder; k++ {
		if n > 0 && sums[k] > 0 {
			bitsPerSample[k] = math.Log(math.Ln2*float64(sums[k])/n) / math.Ln2
		}
	}
	return order, bitsPerSample
}

// sumAbsErrors reproduces libFLAC's FLAC__fixed_compute_best_predictor: a
// single pass computing, for every order 0..4, the order's residual at
// sample i via the previous order's saved residual, so no order is
// recomputed from scratch.
func sumAbsErrors(samples []int32) (sums [MaxOrder + 1]uint64) {
	if len(samples) < 4 {
		return sums
	}
	// libFLAC's recurrence reads data[-1..-4] relative to data[0]; here we
	// start the window at samples[4:] so every order's warm-up lies
	// entirely inside samples[0:4], with no needed history before it.
	lastErr0 := samples[3]
	lastErr1 := samples[3] - samples[2]
	lastErr2 := lastErr1 - (samples[2] - samples[1])
	lastErr3 := lastErr2 - (samples[2] - 2*samples[1] + samples[0])

	for i := 4; i < len(samples); i++ {
		e := samples[i]
		sums[0] += absI32(e)
		save := e

		e -= lastErr0
		sums[1] += absI32(e)
		lastErr0 = save
		save = e

		e -= lastErr1
		sums[2] += absI32(e)
		lastErr1 = save
		save = e

		e -= lastErr2
		sums[3] += absI32(e)
		lastErr2 = save
		save = e

		e -= lastErr3
		sums[4] += absI32(e)
		lastErr3 = save
	}
	return sums
}

func absI32(x int32) uint64 {
	if x < 0 {
		return uint64(-int64(x))
	}
	return uint64(x)
}

// Residual computes the order-th difference of samples, writing
// len(samples)-order values. samples[0:order] are the warm-up samples and
// are not included in the result.
func Residual(samples []int32, order int) []int32 {
	res := make([]int32, len(samples)-order)
	switch order {
	case 0:
		copy(res, samples)
	case 1:
		for i := 1; i < len(samples); i++ {
			res[i-1] = samples[i] - samples[i-1]
		}
	case 2:
		for i := 2; i < len(samples); i++ {
			res[i-2] = samples[i] - 2*samples[i-1] + samples[i-2]
		}
	case 3:
		for i := 3; i < len(samples); i++ {
			res[i-3] = samples[i] - 3*samples[i-1] + 3*samples[i-2] - samples[i-3]
		}
	case 4:
		for i := 4; i < len(samples); i++ {
			res[i-4] = samples[i] - 4*samples[i-1] + 6*samples[i-2] - 4*samples[i-3] + samples[i-4]
		}
	default:
		panic("fixed: order must be 0..4")
	}
	return res
}

// Restore is the exact inverse of Residual: given the order warm-up
// samples and the residual, it reconstructs the full sample sequence
// (warmup followed by the restored samples).
func Restore(residual []int32, warmup []int32, order int) []int32 {
	if len(warmup) != order {
		panic("fixed: len(warmup) must equal order")
	}
	data := make([]int32, order+len(residual))
	copy(data, warmup)
	switch order {
	case 0:
		copy(data, residual)
	case 1:
		for i := 1; i < len(data); i++ {
			data[i] = residual[i-1] + data[i-1]
		}
	case 2:
		for i := 2; i < len(data); i++ {
			data[i] = residual[i-2] + 2*data[i-1] - data[i-2]
		}
	case 3:
		for i := 3; i < len(data); i++ {
			data[i] = residual[i-3] + 3*data[i-1] - 3*data[i-2] + data[i-3]
		}
	case 4:
		for i := 4; i < len(data); i++ {
			data[i] = residual[i-4] + 4*data[i-1] - 6*data[i-2] + 4*data[i-3] - data[i-4]
		}
	default:
		panic("fixed: order must be 0..4")
	}
	return data
}
