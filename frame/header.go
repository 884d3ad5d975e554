// Package frame implements the FLAC frame and subframe wire format: frame
// headers with CRC-8 protection, subframe headers, and the constant,
// verbatim, fixed and LPC subframe encodings with their partitioned-Rice
// residual coding, followed by a whole-frame CRC-16 footer.
package frame

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/gofreelib/flac/internal/bits"
	"github.com/gofreelib/flac/internal/hashutil/crc8"
	"github.com/gofreelib/flac/internal/ioutilx"
	"github.com/gofreelib/flac/internal/utf8"
	"github.com/icza/bitio"
)

// SyncCode is the 14-bit frame sync pattern.
const SyncCode = 0x3FFE

// ChannelAssignment specifies the number of channels in a frame and, for
// two-channel streams, which stereo decorrelation (if any) was applied.
type ChannelAssignment uint8

// Channel assignment codes. 0-7 denote (code+1) independent channels; 8-10
// are the two-channel decorrelation modes.
const (
	ChannelsMono ChannelAssignment = iota
	ChannelsLR
	ChannelsLRC
	ChannelsLRLsRs
	ChannelsLRCLsRs
	ChannelsLRCLfeLsRs
	Channels7
	Channels8
	ChannelsLeftSide
	ChannelsRightSide
	ChannelsMidSide
)

// Count returns the number of subframes (and output channels) carried by a
// frame using this channel assignment.
func (c ChannelAssignment) Count() int {
	if c <= Channels8 {
		return int(c) + 1
	}
	return 2
}

// IsStereoDecorrelated reports whether c is one of the three two-channel
// decorrelation modes.
func (c ChannelAssignment) IsStereoDecorrelated() bool {
	return c == ChannelsLeftSide || c == ChannelsRightSide || c == ChannelsMidSide
}

func (c ChannelAssignment) String() string {
	switch c {
	case ChannelsLeftSide:
		return "left/side"
	case ChannelsRightSide:
		return "right/side"
	case ChannelsMidSide:
		return "mid/side"
	default:
		return fmt.Sprintf("independent(%d)", c.Count())
	}
}

// Header is a frame header: everything needed to locate and interpret the
// subframes that follow. The header's CRC-8 is checked while decoding and
// written while encoding; it is not stored in the struct.
type Header struct {
	// HasVariableBlockSize is true for variable-blocksize streams, in which
	// case Num holds a sample number; otherwise Num holds a frame number.
	HasVariableBlockSize bool
	// BlockSize is the number of samples in each subframe of this frame.
	BlockSize uint16
	// SampleRate in Hz; 0 means "use the stream's STREAMINFO sample rate".
	SampleRate uint32
	// Channels selects the channel count and any stereo decorrelation.
	Channels ChannelAssignment
	// BitsPerSample; 0 means "use the stream's STREAMINFO bits-per-sample".
	BitsPerSample uint8
	// Num is the frame number (fixed blocksize) or starting sample number
	// (variable blocksize).
	Num uint64
}

// DecodeHeader reads and validates a frame header, including its CRC-8,
// from r.
func DecodeHeader(r io.Reader) (*Header, error) {
	h := crc8.NewATM()
	hr := io.TeeReader(r, h)
	br := bits.NewReader(hr)

	sync, err := br.ReadBits(14)
	if err != nil {
		return nil, err
	}
	if sync != SyncCode {
		return nil, fmt.Errorf("frame.Decode: invalid sync code; expected %#04x, got %#04x", SyncCode, sync)
	}
	reserved, err := br.ReadBits(1)
	if err != nil {
		return nil, err
	}
	if reserved != 0 {
		return nil, errors.New("frame.Decode: reserved bit must be zero")
	}
	variable, err := br.ReadBits(1)
	if err != nil {
		return nil, err
	}
	blockSizeSpec, err := br.ReadBits(4)
	if err != nil {
		return nil, err
	}
	sampleRateSpec, err := br.ReadBits(4)
	if err != nil {
		return nil, err
	}
	channelSpec, err := br.ReadBits(4)
	if err != nil {
		return nil, err
	}
	bpsSpec, err := br.ReadBits(3)
	if err != nil {
		return nil, err
	}
	reserved2, err := br.ReadBits(1)
	if err != nil {
		return nil, err
	}
	if reserved2 != 0 {
		return nil, errors.New("frame.Decode: reserved bit must be zero")
	}

	hdr := &Header{HasVariableBlockSize: variable != 0}

	if channelSpec > 10 {
		return nil, fmt.Errorf("frame.Decode: reserved channel assignment code %#04b", channelSpec)
	}
	hdr.Channels = ChannelAssignment(channelSpec)

	switch bpsSpec {
	case 0:
		hdr.BitsPerSample = 0
	case 1:
		hdr.BitsPerSample = 8
	case 2:
		hdr.BitsPerSample = 12
	case 3, 7:
		return nil, fmt.Errorf("frame.Decode: reserved bits-per-sample code %#03b", bpsSpec)
	case 4:
		hdr.BitsPerSample = 16
	case 5:
		hdr.BitsPerSample = 20
	case 6:
		hdr.BitsPerSample = 24
	}

	num, err := utf8.Decode(hr)
	if err != nil {
		return nil, fmt.Errorf("frame.Decode: frame/sample number: %w", err)
	}
	hdr.Num = num

	switch {
	case blockSizeSpec == 0:
		return nil, errors.New("frame.Decode: reserved block size code 0000")
	case blockSizeSpec == 1:
		hdr.BlockSize = 192
	case blockSizeSpec >= 2 && blockSizeSpec <= 5:
		hdr.BlockSize = 576 << (blockSizeSpec - 2)
	case blockSizeSpec == 6:
		x, err := br.ReadBits(8)
		if err != nil {
			return nil, err
		}
		hdr.BlockSize = uint16(x) + 1
	case blockSizeSpec == 7:
		x, err := br.ReadBits(16)
		if err != nil {
			return nil, err
		}
		hdr.BlockSize = uint16(x) + 1
	default:
		hdr.BlockSize = 256 << (blockSizeSpec - 8)
	}

	switch sampleRateSpec {
	case 0:
		hdr.SampleRate = 0
	case 1:
		hdr.SampleRate = 88200
	case 2:
		hdr.SampleRate = 176400
	case 3:
		hdr.SampleRate = 192000
	case 4:
		hdr.SampleRate = 8000
	case 5:
		hdr.SampleRate = 16000
	case 6:
		hdr.SampleRate = 22050
	case 7:
		hdr.SampleRate = 24000
	case 8:
		hdr.SampleRate = 32000
	case 9:
		hdr.SampleRate = 44100
	case 10:
		hdr.SampleRate = 48000
	case 11:
		hdr.SampleRate = 96000
	case 12:
		x, err := br.ReadBits(8)
		if err != nil {
			return nil, err
		}
		hdr.SampleRate = uint32(x) * 1000
	case 13:
		x, err := br.ReadBits(16)
		if err != nil {
			return nil, err
		}
		hdr.SampleRate = uint32(x)
	case 14:
		x, err := br.ReadBits(16)
		if err != nil {
			return nil, err
		}
		hdr.SampleRate = uint32(x) * 10
	case 15:
		return nil, errors.New("frame.Decode: invalid sample rate code 1111")
	}

	// The header up to (but excluding) the CRC-8 byte has now been read
	// through hr/h and is byte-aligned; read the CRC-8 byte directly from r
	// so it is not folded into the running hash used to verify it.
	want, err := ioutilx.ReadByte(r)
	if err != nil {
		return nil, err
	}
	got := h.Sum8()
	if got != want {
		return nil, fmt.Errorf("frame.Decode: header CRC-8 mismatch; expected %#02x, got %#02x", want, got)
	}

	return hdr, nil
}

// Encode writes a frame header, including its trailing CRC-8, to w.
func (hdr *Header) Encode(w io.Writer) error {
	buf := new(bytes.Buffer)
	h := crc8.NewATM()
	mw := io.MultiWriter(buf, h)
	bw := bitio.NewWriter(mw)

	if err := bw.WriteBits(SyncCode, 14); err != nil {
		return err
	}
	if err := bw.WriteBits(0, 1); err != nil {
		return err
	}
	var variable uint64
	if hdr.HasVariableBlockSize {
		variable = 1
	}
	if err := bw.WriteBits(variable, 1); err != nil {
		return err
	}

	blockSizeSpec, blockSizeExtra, blockSizeExtraBits := encodeBlockSize(hdr.BlockSize)
	if err := bw.WriteBits(uint64(blockSizeSpec), 4); err != nil {
		return err
	}
	sampleRateSpec, sampleRateExtra, sampleRateExtraBits := encodeSampleRate(hdr.SampleRate)
	if err := bw.WriteBits(uint64(sampleRateSpec), 4); err != nil {
		return err
	}
	if err := bw.WriteBits(uint64(hdr.Channels), 4); err != nil {
		return err
	}
	bpsSpec, err := encodeBitsPerSample(hdr.BitsPerSample)
	if err != nil {
		return err
	}
	if err := bw.WriteBits(uint64(bpsSpec), 3); err != nil {
		return err
	}
	if err := bw.WriteBits(0, 1); err != nil {
		return err
	}
	if err := bw.Close(); err != nil {
		return err
	}

	if err := utf8.Encode(mw, hdr.Num); err != nil {
		return err
	}
	if blockSizeExtraBits == 8 {
		if err := ioutilx.WriteByte(mw, byte(blockSizeExtra)); err != nil {
			return err
		}
	} else if blockSizeExtraBits == 16 {
		if err := binary.Write(mw, binary.BigEndian, blockSizeExtra); err != nil {
			return err
		}
	}
	if sampleRateExtraBits == 8 {
		if err := ioutilx.WriteByte(mw, byte(sampleRateExtra)); err != nil {
			return err
		}
	} else if sampleRateExtraBits == 16 {
		if err := binary.Write(mw, binary.BigEndian, sampleRateExtra); err != nil {
			return err
		}
	}

	crc := h.Sum8()
	if _, err := w.Write(buf.Bytes()); err != nil {
		return err
	}
	return ioutilx.WriteByte(w, crc)
}

// blockSizeTable enumerates the fixed block-size codes, ordered by code.
var blockSizeTable = [...]uint16{1: 192, 2: 576, 3: 1152, 4: 2304, 5: 4608, 8: 256, 9: 512, 10: 1024, 11: 2048, 12: 4096, 13: 8192, 14: 16384, 15: 32768}

func encodeBlockSize(n uint16) (spec uint8, extra uint16, extraBits uint8) {
	for code, v := range blockSizeTable {
		if code == 0 || code == 6 || code == 7 {
			continue
		}
		if v == n {
			return uint8(code), 0, 0
		}
	}
	if n <= 256 {
		return 6, n - 1, 8
	}
	return 7, n - 1, 16
}

func encodeSampleRate(hz uint32) (spec uint8, extra uint16, extraBits uint8) {
	switch hz {
	case 0:
		return 0, 0, 0
	case 88200:
		return 1, 0, 0
	case 176400:
		return 2, 0, 0
	case 192000:
		return 3, 0, 0
	case 8000:
		return 4, 0, 0
	case 16000:
		return 5, 0, 0
	case 22050:
		return 6, 0, 0
	case 24000:
		return 7, 0, 0
	case 32000:
		return 8, 0, 0
	case 44100:
		return 9, 0, 0
	case 48000:
		return 10, 0, 0
	case 96000:
		return 11, 0, 0
	}
	if hz%1000 == 0 && hz/1000 <= 0xFF {
		return 12, uint16(hz / 1000), 8
	}
	if hz <= 0xFFFF {
		return 13, uint16(hz), 16
	}
	if hz%10 == 0 && hz/10 <= 0xFFFF {
		return 14, uint16(hz / 10), 16
	}
	// Falls back to an explicit Hz value truncated to 16 bits; callers are
	// expected to validate sample_rate ∈ [1, 655350] ahead of encoding.
	return 13, uint16(hz), 16
}

func encodeBitsPerSample(bps uint8) (uint8, error) {
	switch bps {
	case 0:
		return 0, nil
	case 8:
		return 1, nil
	case 12:
		return 2, nil
	case 16:
		return 4, nil
	case 20:
		return 5, nil
	case 24:
		return 6, nil
	default:
		return 0, fmt.Errorf("frame.Header.Encode: %d bits-per-sample has no frame-header hint code; use STREAMINFO (code 0)", bps)
	}
}
