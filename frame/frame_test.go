package frame_test

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/gofreelib/flac/frame"
	"github.com/gofreelib/flac/internal/fixed"
	"github.com/gofreelib/flac/internal/rice"
)

func TestHeaderRoundTrip(t *testing.T) {
	hdr := &frame.Header{
		BlockSize:     4096,
		SampleRate:    44100,
		Channels:      frame.ChannelsMidSide,
		BitsPerSample: 16,
		Num:           7,
	}
	buf := new(bytes.Buffer)
	if err := hdr.Encode(buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := frame.DecodeHeader(buf)
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	if !reflect.DeepEqual(hdr, got) {
		t.Fatalf("round trip mismatch; got %+v, want %+v", got, hdr)
	}
}

func TestHeaderRoundTripVariableBlockSize(t *testing.T) {
	hdr := &frame.Header{
		HasVariableBlockSize: true,
		BlockSize:            192,
		SampleRate:           192000,
		Channels:             frame.ChannelsMono,
		BitsPerSample:        24,
		Num:                  123456789,
	}
	buf := new(bytes.Buffer)
	if err := hdr.Encode(buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := frame.DecodeHeader(buf)
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	if !reflect.DeepEqual(hdr, got) {
		t.Fatalf("round trip mismatch; got %+v, want %+v", got, hdr)
	}
}

func TestFrameRoundTripFixedMono(t *testing.T) {
	const blockSize = 64
	const bps = 16
	samples := make([]int32, blockSize)
	for i := range samples {
		samples[i] = int32(i%100) - 50
	}

	order, _ := fixed.BestOrder(samples)
	warmup := append([]int32(nil), samples[:order]...)
	residual := fixed.Residual(samples, order)
	maxOrder := rice.MaxUsableOrder(blockSize, order, 6)
	plan, _ := rice.Plan(residual, blockSize, order, 0, maxOrder, true)

	hdr := &frame.Header{
		BlockSize:     blockSize,
		SampleRate:    44100,
		Channels:      frame.ChannelsMono,
		BitsPerSample: bps,
		Num:           0,
	}
	sf := frame.SubframePlan{
		Header:    frame.SubHeader{Pred: frame.PredFixed, Order: order},
		BPS:       bps,
		Warmup:    warmup,
		Residual:  residual,
		BlockSize: blockSize,
		Rice:      plan,
	}

	buf := new(bytes.Buffer)
	if err := frame.Encode(buf, hdr, []frame.SubframePlan{sf}); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := frame.Decode(buf, 0, 0)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got.Channels) != 1 {
		t.Fatalf("expected 1 channel, got %d", len(got.Channels))
	}
	if !reflect.DeepEqual(got.Channels[0], samples) {
		t.Fatalf("round trip mismatch; got %v, want %v", got.Channels[0], samples)
	}
}

func TestFrameRoundTripConstant(t *testing.T) {
	const blockSize = 32
	const bps = 12
	hdr := &frame.Header{
		BlockSize:     blockSize,
		SampleRate:    48000,
		Channels:      frame.ChannelsMono,
		BitsPerSample: bps,
	}
	sf := frame.SubframePlan{
		Header:  frame.SubHeader{Pred: frame.PredConstant},
		BPS:     bps,
		Samples: []int32{42},
	}

	buf := new(bytes.Buffer)
	if err := frame.Encode(buf, hdr, []frame.SubframePlan{sf}); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := frame.Decode(buf, 0, 0)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := make([]int32, blockSize)
	for i := range want {
		want[i] = 42
	}
	if !reflect.DeepEqual(got.Channels[0], want) {
		t.Fatalf("round trip mismatch; got %v, want %v", got.Channels[0], want)
	}
}

func TestChannelDecorrelationRoundTrip(t *testing.T) {
	left := []int32{10, 20, -5, 7}
	right := []int32{12, 15, -8, 3}

	side := frame.Side(left, right)
	gotRight := frame.RestoreLeftSide(left, side)
	if !reflect.DeepEqual(gotRight, right) {
		t.Errorf("left/side mismatch; got %v, want %v", gotRight, right)
	}

	gotLeft := frame.RestoreRightSide(side, right)
	if !reflect.DeepEqual(gotLeft, left) {
		t.Errorf("right/side mismatch; got %v, want %v", gotLeft, left)
	}

	mid := frame.Mid(left, right)
	gotLeft2, gotRight2 := frame.RestoreMidSide(mid, side)
	if !reflect.DeepEqual(gotLeft2, left) || !reflect.DeepEqual(gotRight2, right) {
		t.Errorf("mid/side mismatch; got left=%v right=%v, want left=%v right=%v", gotLeft2, gotRight2, left, right)
	}
}
