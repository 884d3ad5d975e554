package frame

import (
	"bytes"
	"fmt"
	"io"

	"github.com/gofreelib/flac/internal/bits"
	"github.com/gofreelib/flac/internal/hashutil/crc16"
	"github.com/gofreelib/flac/internal/rice"
	"github.com/icza/bitio"
)

// Frame is a frame header together with the decoded samples of every
// channel it carries (already restored to full bits-per-sample, wasted
// bits re-inserted, channel decorrelation undone).
type Frame struct {
	Header   *Header
	Channels [][]int32
}

// Decode reads one frame from r: header, subframes, zero-padding and the
// CRC-16 footer. streamBPS and streamSampleRate supply the STREAMINFO
// fallback values used when the frame header's hints are zero.
func Decode(r io.Reader, streamBPS uint8, streamSampleRate uint32) (*Frame, error) {
	buf := new(bytes.Buffer)
	tr := io.TeeReader(r, buf)

	hdr, err := DecodeHeader(tr)
	if err != nil {
		return nil, err
	}
	bps := hdr.BitsPerSample
	if bps == 0 {
		bps = streamBPS
	}
	if hdr.SampleRate == 0 {
		hdr.SampleRate = streamSampleRate
	}

	br := bits.NewReader(tr)
	nch := hdr.Channels.Count()
	raw := make([][]int32, nch)
	for ch := 0; ch < nch; ch++ {
		sf, err := decodeSubframe(br, sideChannelBPS(hdr.Channels, ch, bps), int(hdr.BlockSize))
		if err != nil {
			return nil, fmt.Errorf("frame.Decode: channel %d: %w", ch, err)
		}
		raw[ch] = sf
	}
	br.Align()

	frameBytes := buf.Bytes()
	footer := bits.NewReader(r)
	want, err := footer.ReadBits(16)
	if err != nil {
		return nil, err
	}
	got := crc16.ChecksumIBM(frameBytes)
	if uint16(want) != got {
		return nil, fmt.Errorf("frame.Decode: frame CRC-16 mismatch; expected %#04x, got %#04x", want, got)
	}

	channels := undoDecorrelation(hdr.Channels, raw)
	return &Frame{Header: hdr, Channels: channels}, nil
}

// sideChannelBPS returns the effective bits-per-sample for channel index ch
// of a frame using assignment ca: side channels (and only side channels)
// carry one extra bit of precision.
func sideChannelBPS(ca ChannelAssignment, ch int, bps uint8) uint8 {
	switch {
	case ca == ChannelsLeftSide && ch == 1:
		return bps + 1
	case ca == ChannelsRightSide && ch == 0:
		return bps + 1
	case ca == ChannelsMidSide && ch == 1:
		return bps + 1
	default:
		return bps
	}
}

func decodeSubframe(br *bits.Reader, bps uint8, blockSize int) ([]int32, error) {
	sh, err := DecodeSubHeader(br)
	if err != nil {
		return nil, err
	}
	effBPS := bps - sh.WastedBits

	var samples []int32
	switch sh.Pred {
	case PredConstant:
		samples, err = DecodeConstant(br, effBPS, blockSize)
	case PredVerbatim:
		samples, err = DecodeVerbatim(br, effBPS, blockSize)
	case PredFixed:
		samples, err = DecodeFixed(br, sh.Order, effBPS, blockSize)
	case PredLPC:
		samples, err = DecodeLPC(br, sh.Order, effBPS, blockSize)
	default:
		return nil, fmt.Errorf("frame.decodeSubframe: unhandled prediction method %v", sh.Pred)
	}
	if err != nil {
		return nil, err
	}
	if sh.WastedBits > 0 {
		for i, s := range samples {
			samples[i] = s << sh.WastedBits
		}
	}
	return samples, nil
}

func undoDecorrelation(ca ChannelAssignment, raw [][]int32) [][]int32 {
	switch ca {
	case ChannelsLeftSide:
		left := raw[0]
		right := RestoreLeftSide(left, raw[1])
		return [][]int32{left, right}
	case ChannelsRightSide:
		right := raw[1]
		left := RestoreRightSide(raw[0], right)
		return [][]int32{left, right}
	case ChannelsMidSide:
		left, right := RestoreMidSide(raw[0], raw[1])
		return [][]int32{left, right}
	default:
		return raw
	}
}

// Encode writes a complete frame: header, one subframe per channel (already
// decorrelated and wasted-bits-stripped per SubframePlan), zero-padding and
// a CRC-16 footer.
func Encode(w io.Writer, hdr *Header, subframes []SubframePlan) error {
	buf := new(bytes.Buffer)
	if err := hdr.Encode(buf); err != nil {
		return err
	}

	bw := bitio.NewWriter(buf)
	for i, sf := range subframes {
		if err := EncodeSubHeader(bw, sf.Header); err != nil {
			return fmt.Errorf("frame.Encode: channel %d: %w", i, err)
		}
		if err := sf.encode(bw); err != nil {
			return fmt.Errorf("frame.Encode: channel %d: %w", i, err)
		}
	}
	if err := bw.Close(); err != nil {
		return err
	}

	crc := crc16.ChecksumIBM(buf.Bytes())
	buf.Write([]byte{byte(crc >> 8), byte(crc)})
	_, err := w.Write(buf.Bytes())
	return err
}

// SubframePlan carries everything Encode needs to emit one subframe: the
// header (prediction method, order, wasted bits) and the method-specific
// payload, as decided by the encoder core's per-channel model search.
type SubframePlan struct {
	Header  SubHeader
	BPS     uint8
	Samples []int32 // used directly by CONSTANT (Samples[0]) and VERBATIM

	// FIXED/LPC fields.
	Warmup    []int32
	Residual  []int32
	BlockSize int
	Rice      rice.Partitioning

	// LPC-only fields.
	Precision int
	Shift     int32
	Coeffs    []int32
}

func (sf SubframePlan) encode(bw *bitio.Writer) error {
	switch sf.Header.Pred {
	case PredConstant:
		return EncodeConstant(bw, sf.Samples[0], sf.BPS)
	case PredVerbatim:
		return EncodeVerbatim(bw, sf.Samples, sf.BPS)
	case PredFixed:
		return EncodeFixed(bw, sf.Header.Order, sf.Warmup, sf.BPS, sf.Residual, sf.BlockSize, sf.Rice)
	case PredLPC:
		return EncodeLPC(bw, sf.Header.Order, sf.Warmup, sf.BPS, sf.Precision, sf.Shift, sf.Coeffs, sf.Residual, sf.BlockSize, sf.Rice)
	default:
		return fmt.Errorf("frame.SubframePlan.encode: unhandled prediction method %v", sf.Header.Pred)
	}
}
