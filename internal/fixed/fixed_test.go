package fixed_test

import (
	"reflect"
	"testing"

	"github.com/gofreelib/flac/internal/fixed"
)

func TestResidualRestoreRoundTrip(t *testing.T) {
	samples := []int32{10, 12, 15, 11, 9, 20, 30, 25, 18, 5}
	for order := 0; order <= fixed.MaxOrder; order++ {
		res := fixed.Residual(samples, order)
		got := fixed.Restore(res, samples[:order], order)
		if !reflect.DeepEqual(got, samples) {
			t.Errorf("order %d: round trip mismatch; got %v, want %v", order, got, samples)
		}
	}
}

func TestResidualOrder1IsDifference(t *testing.T) {
	samples := []int32{1000, 1000, 1000, 1000, 1001, 1002}
	res := fixed.Residual(samples, 1)
	want := []int32{0, 0, 0, 1, 1}
	if !reflect.DeepEqual(res, want) {
		t.Errorf("got %v, want %v", res, want)
	}
}

func TestBestOrderLinearRamp(t *testing.T) {
	// x[i] = i; the order-1 residual is a constant 1, while the order-2,
	// order-3 and order-4 residuals are all zero. Ties go to the lowest
	// order, so order 2 must win.
	samples := make([]int32, 64)
	for i := range samples {
		samples[i] = int32(i)
	}
	order, _ := fixed.BestOrder(samples)
	if order != 2 {
		t.Errorf("expected order 2 for a linear ramp, got %d", order)
	}
}

func TestBestOrderConstant(t *testing.T) {
	// The order-0 residual is the signal itself (42 everywhere); the
	// order-1 residual and above are all zero, so order 1 wins.
	samples := make([]int32, 32)
	for i := range samples {
		samples[i] = 42
	}
	order, _ := fixed.BestOrder(samples)
	if order != 1 {
		t.Errorf("expected order 1 for a constant signal, got %d", order)
	}
}
