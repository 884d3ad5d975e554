package lpc_test

import (
	"math"
	"reflect"
	"testing"

	"github.com/gofreelib/flac/internal/lpc"
)

func TestResidualRestoreRoundTrip(t *testing.T) {
	samples := []int32{10, 12, 15, 11, 9, 20, 30, 25, 18, 5, 2, -3}
	order := 3
	coeffs := []int32{2, -1, 1}
	const shift = int32(4)

	res := lpc.Residual(samples, coeffs, shift)
	got := lpc.Restore(res, samples[:order], coeffs, shift)
	if !reflect.DeepEqual(got, samples) {
		t.Fatalf("round trip mismatch; got %v, want %v", got, samples)
	}
}

func TestResidualRestoreNegativeShift(t *testing.T) {
	samples := []int32{1, 2, 3, 4, 5, 6, 7, 8}
	order := 2
	coeffs := []int32{1, 1}
	const shift = int32(-1)

	res := lpc.Residual(samples, coeffs, shift)
	got := lpc.Restore(res, samples[:order], coeffs, shift)
	if !reflect.DeepEqual(got, samples) {
		t.Fatalf("round trip mismatch; got %v, want %v", got, samples)
	}
}

func TestLevinsonDurbinConstantSignalHasNonNegativeError(t *testing.T) {
	samples := make([]int32, 32)
	for i := range samples {
		samples[i] = 7
	}
	autoc := lpc.Autocorrelate(samples, 4)
	_, errs := lpc.LevinsonDurbin(autoc, 4)
	for _, e := range errs {
		if e < 0 {
			t.Fatalf("expected non-negative prediction error, got %v", e)
		}
	}
}

func TestQuantizeRoundTrips(t *testing.T) {
	coeffs := []float64{1.9, -0.95, 0.1}
	q, ok := lpc.Quantize(coeffs, 12)
	if !ok {
		t.Fatal("expected quantization to succeed")
	}
	if len(q.Coeffs) != len(coeffs) {
		t.Fatalf("expected %d coefficients, got %d", len(coeffs), len(q.Coeffs))
	}
	// Dequantizing should land reasonably close to the original values.
	for i, c := range coeffs {
		dq := float64(q.Coeffs[i]) / math.Pow(2, float64(q.Shift))
		if math.Abs(dq-c) > 0.1 {
			t.Errorf("coefficient %d dequantized to %v, want near %v", i, dq, c)
		}
	}
}

func TestEstimateBestOrderPrefersLowerErrorOrder(t *testing.T) {
	errs := []float64{100, 100, 10, 9, 8.9}
	order := lpc.EstimateBestOrder(errs, 4096, 16)
	if order < 2 || order > 4 {
		t.Errorf("expected an order in [2,4] given the error curve, got %d", order)
	}
}
