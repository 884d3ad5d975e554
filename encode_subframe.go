package flac

import (
	"github.com/gofreelib/flac/frame"
	"github.com/gofreelib/flac/internal/fixed"
	"github.com/gofreelib/flac/internal/lpc"
	"github.com/gofreelib/flac/internal/rice"
)

// maxLPCOrder bounds the encoder's LPC model search. FLAC allows orders up
// to 32, but doubling the search past a modest order buys little
// compression for a large increase in encode time.
const maxLPCOrder = 8

// lpcPrecision is the number of bits used to quantize LPC coefficients.
const lpcPrecision = 12

// riceSearchCap is the highest partition order the Rice partitioner is
// allowed to try per subframe (orders 0 through riceSearchCap).
const riceSearchCap = 6

// planSubframe picks the cheapest encoding of samples (at the given
// effective bits-per-sample) among CONSTANT, FIXED and LPC, falling back
// to VERBATIM when none of the model fits beat it, and returns the plan
// together with its estimated size in bits.
func planSubframe(samples []int32, bps uint8) (frame.SubframePlan, uint64) {
	wasted := detectWastedBits(samples)
	working := samples
	effBPS := bps
	if wasted > 0 {
		working = make([]int32, len(samples))
		for i, s := range samples {
			working[i] = s >> wasted
		}
		effBPS -= wasted
	}
	blockSize := len(working)

	if isConstant(working) {
		plan := frame.SubframePlan{
			Header:  frame.SubHeader{Pred: frame.PredConstant, WastedBits: wasted},
			BPS:     effBPS,
			Samples: working[:1],
		}
		return plan, uint64(wasted) + uint64(effBPS) + 8
	}

	verbatimBits := uint64(wasted) + uint64(blockSize)*uint64(effBPS) + 8
	best := frame.SubframePlan{
		Header:  frame.SubHeader{Pred: frame.PredVerbatim, WastedBits: wasted},
		BPS:     effBPS,
		Samples: working,
	}
	bestBits := verbatimBits

	if fixedPlan, fixedBits, ok := planFixed(working, effBPS, wasted); ok && fixedBits < bestBits {
		best, bestBits = fixedPlan, fixedBits
	}
	if lpcPlan, lpcBits, ok := planLPC(working, effBPS, wasted); ok && lpcBits < bestBits {
		best, bestBits = lpcPlan, lpcBits
	}
	return best, bestBits
}

func planFixed(samples []int32, bps, wasted uint8) (frame.SubframePlan, uint64, bool) {
	if len(samples) <= fixed.MaxOrder {
		return frame.SubframePlan{}, 0, false
	}
	order, _ := fixed.BestOrder(samples)
	warmup := append([]int32(nil), samples[:order]...)
	residual := fixed.Residual(samples, order)
	maxOrder := rice.MaxUsableOrder(len(samples), order, riceSearchCap)
	plan, riceBits := rice.Plan(residual, len(samples), order, 0, maxOrder, true)

	bits := uint64(wasted) + riceBits + uint64(order)*uint64(bps) + 8
	sf := frame.SubframePlan{
		Header:    frame.SubHeader{Pred: frame.PredFixed, Order: order, WastedBits: wasted},
		BPS:       bps,
		Warmup:    warmup,
		Residual:  residual,
		BlockSize: len(samples),
		Rice:      plan,
	}
	return sf, bits, true
}

func planLPC(samples []int32, bps, wasted uint8) (frame.SubframePlan, uint64, bool) {
	maxOrder := maxLPCOrder
	if len(samples) <= maxOrder {
		return frame.SubframePlan{}, 0, false
	}
	autoc := lpc.Autocorrelate(samples, maxOrder)
	if autoc[0] == 0 {
		// Constant signal; CONSTANT/FIXED already cover this losslessly.
		return frame.SubframePlan{}, 0, false
	}
	coeffsByOrder, errs := lpc.LevinsonDurbin(autoc, maxOrder)
	order := lpc.EstimateBestOrder(errs, len(samples), int(bps))
	if order < 1 || order > len(coeffsByOrder) {
		return frame.SubframePlan{}, 0, false
	}

	quant, ok := lpc.Quantize(coeffsByOrder[order-1], lpcPrecision)
	if !ok {
		return frame.SubframePlan{}, 0, false
	}
	warmup := append([]int32(nil), samples[:order]...)
	residual := lpc.Residual(samples, quant.Coeffs, quant.Shift)
	maxPartOrder := rice.MaxUsableOrder(len(samples), order, riceSearchCap)
	plan, riceBits := rice.Plan(residual, len(samples), order, 0, maxPartOrder, true)

	headerBits := uint64(order)*uint64(bps) + uint64(order)*uint64(quant.Precision) + 4 + 5
	bits := uint64(wasted) + riceBits + headerBits + 8
	sf := frame.SubframePlan{
		Header:    frame.SubHeader{Pred: frame.PredLPC, Order: order, WastedBits: wasted},
		BPS:       bps,
		Warmup:    warmup,
		Residual:  residual,
		BlockSize: len(samples),
		Rice:      plan,
		Precision: quant.Precision,
		Shift:     quant.Shift,
		Coeffs:    quant.Coeffs,
	}
	return sf, bits, true
}

// detectWastedBits returns the number of low-order zero bits shared by
// every sample, 0 if the samples carry a mix of zero and one in bit 0 (or
// are all zero, which CONSTANT already encodes losslessly).
func detectWastedBits(samples []int32) uint8 {
	var orAll int32
	for _, s := range samples {
		orAll |= s
	}
	if orAll == 0 {
		return 0
	}
	var w uint8
	for orAll&1 == 0 && w < 31 {
		orAll >>= 1
		w++
	}
	return w
}

func isConstant(samples []int32) bool {
	for _, s := range samples[1:] {
		if s != samples[0] {
			return false
		}
	}
	return true
}
