package frame

import (
	"errors"
	"fmt"

	"github.com/gofreelib/flac/internal/bits"
	"github.com/gofreelib/flac/internal/fixed"
	"github.com/gofreelib/flac/internal/lpc"
	"github.com/gofreelib/flac/internal/rice"
	"github.com/icza/bitio"
)

// PredMethod is a subframe's prediction method.
type PredMethod uint8

// Subframe prediction methods.
const (
	PredConstant PredMethod = iota
	PredVerbatim
	PredFixed
	PredLPC
)

func (p PredMethod) String() string {
	switch p {
	case PredConstant:
		return "constant"
	case PredVerbatim:
		return "verbatim"
	case PredFixed:
		return "fixed"
	case PredLPC:
		return "lpc"
	default:
		return "unknown"
	}
}

// SubHeader is a subframe header: its prediction method, predictor/LPC
// order, and wasted-bits-per-sample count.
type SubHeader struct {
	Pred       PredMethod
	Order      int
	WastedBits uint8
}

// DecodeSubHeader reads a subframe header.
func DecodeSubHeader(br *bits.Reader) (SubHeader, error) {
	padding, err := br.ReadBits(1)
	if err != nil {
		return SubHeader{}, err
	}
	if padding != 0 {
		return SubHeader{}, errors.New("frame.DecodeSubHeader: padding bit must be zero")
	}
	typeCode, err := br.ReadBits(6)
	if err != nil {
		return SubHeader{}, err
	}

	var sh SubHeader
	switch {
	case typeCode == 0:
		sh.Pred = PredConstant
	case typeCode == 1:
		sh.Pred = PredVerbatim
	case typeCode < 8:
		return SubHeader{}, fmt.Errorf("frame.DecodeSubHeader: reserved subframe type code %#06b", typeCode)
	case typeCode < 16:
		order := int(typeCode) - 8
		if order > fixed.MaxOrder {
			return SubHeader{}, fmt.Errorf("frame.DecodeSubHeader: reserved fixed predictor order %d", order)
		}
		sh.Pred = PredFixed
		sh.Order = order
	case typeCode < 32:
		return SubHeader{}, fmt.Errorf("frame.DecodeSubHeader: reserved subframe type code %#06b", typeCode)
	default:
		sh.Pred = PredLPC
		sh.Order = int(typeCode) - 32 + 1
	}

	hasWasted, err := br.ReadBits(1)
	if err != nil {
		return SubHeader{}, err
	}
	if hasWasted != 0 {
		k, err := br.ReadUnary()
		if err != nil {
			return SubHeader{}, err
		}
		sh.WastedBits = uint8(k) + 1
	}
	return sh, nil
}

// EncodeSubHeader writes a subframe header.
func EncodeSubHeader(bw *bitio.Writer, sh SubHeader) error {
	if err := bw.WriteBits(0, 1); err != nil {
		return err
	}
	var typeCode uint64
	switch sh.Pred {
	case PredConstant:
		typeCode = 0
	case PredVerbatim:
		typeCode = 1
	case PredFixed:
		typeCode = 8 | uint64(sh.Order)
	case PredLPC:
		typeCode = 0x20 | uint64(sh.Order-1)
	default:
		return fmt.Errorf("frame.EncodeSubHeader: unknown prediction method %v", sh.Pred)
	}
	if err := bw.WriteBits(typeCode, 6); err != nil {
		return err
	}
	if sh.WastedBits == 0 {
		return bw.WriteBits(0, 1)
	}
	if err := bw.WriteBits(1, 1); err != nil {
		return err
	}
	return bits.WriteUnary(bw, uint64(sh.WastedBits-1))
}

// DecodeConstant reads a CONSTANT subframe: one sample repeated blockSize
// times.
func DecodeConstant(br *bits.Reader, bps uint8, blockSize int) ([]int32, error) {
	v, err := br.ReadSigned(bps)
	if err != nil {
		return nil, err
	}
	samples := make([]int32, blockSize)
	for i := range samples {
		samples[i] = int32(v)
	}
	return samples, nil
}

// EncodeConstant writes a CONSTANT subframe.
func EncodeConstant(bw *bitio.Writer, sample int32, bps uint8) error {
	return bw.WriteBits(uint64(uint32(sample))&mask(bps), bps)
}

// DecodeVerbatim reads a VERBATIM subframe: blockSize raw samples.
func DecodeVerbatim(br *bits.Reader, bps uint8, blockSize int) ([]int32, error) {
	samples := make([]int32, blockSize)
	for i := range samples {
		v, err := br.ReadSigned(bps)
		if err != nil {
			return nil, err
		}
		samples[i] = int32(v)
	}
	return samples, nil
}

// EncodeVerbatim writes a VERBATIM subframe.
func EncodeVerbatim(bw *bitio.Writer, samples []int32, bps uint8) error {
	for _, s := range samples {
		if err := bw.WriteBits(uint64(uint32(s))&mask(bps), bps); err != nil {
			return err
		}
	}
	return nil
}

// DecodeFixed reads a FIXED subframe of the given predictor order.
func DecodeFixed(br *bits.Reader, order int, bps uint8, blockSize int) ([]int32, error) {
	warmup := make([]int32, order)
	for i := range warmup {
		v, err := br.ReadSigned(bps)
		if err != nil {
			return nil, err
		}
		warmup[i] = int32(v)
	}
	residual, _, err := rice.Decode(br, blockSize, order)
	if err != nil {
		return nil, err
	}
	return fixed.Restore(residual, warmup, order), nil
}

// EncodeFixed writes a FIXED subframe: order warm-up samples followed by
// the partitioned-Rice-coded residual.
func EncodeFixed(bw *bitio.Writer, order int, warmup []int32, bps uint8, residual []int32, blockSize int, plan rice.Partitioning) error {
	for _, s := range warmup {
		if err := bw.WriteBits(uint64(uint32(s))&mask(bps), bps); err != nil {
			return err
		}
	}
	return rice.Encode(bw, residual, blockSize, order, plan)
}

// DecodeLPC reads an LPC subframe of the given predictor order.
func DecodeLPC(br *bits.Reader, order int, bps uint8, blockSize int) ([]int32, error) {
	warmup := make([]int32, order)
	for i := range warmup {
		v, err := br.ReadSigned(bps)
		if err != nil {
			return nil, err
		}
		warmup[i] = int32(v)
	}
	precBits, err := br.ReadBits(4)
	if err != nil {
		return nil, err
	}
	if precBits == 0xF {
		return nil, errors.New("frame.DecodeLPC: reserved coefficient precision 1111")
	}
	precision := int(precBits) + 1

	shiftBits, err := br.ReadSigned(5)
	if err != nil {
		return nil, err
	}
	shift := int32(shiftBits)

	coeffs := make([]int32, order)
	for i := range coeffs {
		v, err := br.ReadSigned(uint8(precision))
		if err != nil {
			return nil, err
		}
		coeffs[i] = int32(v)
	}

	residual, _, err := rice.Decode(br, blockSize, order)
	if err != nil {
		return nil, err
	}
	return lpc.Restore(residual, warmup, coeffs, shift), nil
}

// EncodeLPC writes an LPC subframe: order warm-up samples, coefficient
// precision-1 (4 bits), signed shift (5 bits), the order quantized
// coefficients, and the partitioned-Rice-coded residual.
func EncodeLPC(bw *bitio.Writer, order int, warmup []int32, bps uint8, precision int, shift int32, coeffs []int32, residual []int32, blockSize int, plan rice.Partitioning) error {
	for _, s := range warmup {
		if err := bw.WriteBits(uint64(uint32(s))&mask(bps), bps); err != nil {
			return err
		}
	}
	if precision < 1 || precision > 15 {
		return fmt.Errorf("frame.EncodeLPC: coefficient precision %d out of range [1,15]", precision)
	}
	if err := bw.WriteBits(uint64(precision-1), 4); err != nil {
		return err
	}
	if err := bw.WriteBits(uint64(uint32(shift))&0x1F, 5); err != nil {
		return err
	}
	for _, c := range coeffs {
		if err := bw.WriteBits(uint64(uint32(c))&mask(uint8(precision)), uint8(precision)); err != nil {
			return err
		}
	}
	return rice.Encode(bw, residual, blockSize, order, plan)
}

func mask(n uint8) uint64 {
	if n >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << n) - 1
}
