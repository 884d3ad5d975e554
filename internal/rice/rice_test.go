package rice_test

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/icza/bitio"
	ibits "github.com/gofreelib/flac/internal/bits"
	"github.com/gofreelib/flac/internal/rice"
)

func TestPlanEncodeDecodeRoundTrip(t *testing.T) {
	const blockSize = 64
	const predictorOrder = 2
	residual := make([]int32, blockSize-predictorOrder)
	for i := range residual {
		// A small geometric-ish spread, typical of real residuals.
		v := int32(i%7) - 3
		residual[i] = v
	}

	maxOrder := rice.MaxUsableOrder(blockSize, predictorOrder, 6)
	plan, _ := rice.Plan(residual, blockSize, predictorOrder, 0, maxOrder, true)

	buf := new(bytes.Buffer)
	bw := bitio.NewWriter(buf)
	if err := rice.Encode(bw, residual, blockSize, predictorOrder, plan); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := bw.Close(); err != nil {
		t.Fatal(err)
	}

	br := ibits.NewReader(buf)
	got, gotPlan, err := rice.Decode(br, blockSize, predictorOrder)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(got, residual) {
		t.Errorf("residual mismatch; got %v, want %v", got, residual)
	}
	if gotPlan.Order != plan.Order {
		t.Errorf("partition order mismatch; got %d, want %d", gotPlan.Order, plan.Order)
	}
}

func TestPlanEscapesOutliers(t *testing.T) {
	const blockSize = 32
	const predictorOrder = 0
	residual := make([]int32, blockSize)
	residual[0] = 1 << 20 // one huge outlier forces a wide Rice parameter or escape

	maxOrder := rice.MaxUsableOrder(blockSize, predictorOrder, 5)
	plan, _ := rice.Plan(residual, blockSize, predictorOrder, 0, maxOrder, true)

	buf := new(bytes.Buffer)
	bw := bitio.NewWriter(buf)
	if err := rice.Encode(bw, residual, blockSize, predictorOrder, plan); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := bw.Close(); err != nil {
		t.Fatal(err)
	}

	br := ibits.NewReader(buf)
	got, _, err := rice.Decode(br, blockSize, predictorOrder)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(got, residual) {
		t.Errorf("residual mismatch with an outlier present; got %v, want %v", got, residual)
	}
}

func TestMaxUsableOrderRespectsPredictorOrder(t *testing.T) {
	// blockSize=16, predictorOrder=8: order 1 gives partitions of 8
	// samples, the first one shrunk to 0 by the predictor order, so only
	// order 0 is usable.
	got := rice.MaxUsableOrder(16, 8, 4)
	if got != 0 {
		t.Errorf("expected max usable order 0, got %d", got)
	}
}
