package meta

import (
	"encoding/binary"
	"fmt"
	"io"
)

const streamInfoLen = 34

// StreamInfo carries information about the entire audio stream: the first
// metadata block and the only one required to be present.
type StreamInfo struct {
	// Minimum and maximum block size in samples across the stream. Equal
	// values imply a fixed-blocksize stream.
	BlockSizeMin, BlockSizeMax uint16
	// Minimum and maximum frame size in bytes; 0 means unknown.
	FrameSizeMin, FrameSizeMax uint32
	// Sample rate in Hz; must be nonzero and fits in 20 bits (<= 655350).
	SampleRate uint32
	// Number of channels, 1-8.
	NChannels uint8
	// Bits per sample, 4-32.
	BitsPerSample uint8
	// Total number of inter-channel samples in the stream; 0 means unknown.
	NSamples uint64
	// MD5 signature of the unencoded audio data.
	MD5sum [16]byte
}

// NewStreamInfo parses a STREAMINFO metadata block body.
func NewStreamInfo(r io.Reader) (*StreamInfo, error) {
	si := new(StreamInfo)
	if err := binary.Read(r, binary.BigEndian, &si.BlockSizeMin); err != nil {
		return nil, err
	}
	if si.BlockSizeMin < 16 {
		return nil, fmt.Errorf("meta.NewStreamInfo: invalid min block size; expected >= 16, got %d", si.BlockSizeMin)
	}

	// MaxBlockSize(16) + FrameSizeMin(24) + FrameSizeMax(24) = 64 bits.
	const (
		blockSizeMaxMask = 0xFFFF000000000000
		frameSizeMinMask = 0x0000FFFFFF000000
		frameSizeMaxMask = 0x0000000000FFFFFF
	)
	var bits uint64
	if err := binary.Read(r, binary.BigEndian, &bits); err != nil {
		return nil, err
	}
	si.BlockSizeMax = uint16(bits & blockSizeMaxMask >> 48)
	if si.BlockSizeMax < 16 {
		return nil, fmt.Errorf("meta.NewStreamInfo: invalid max block size; expected >= 16, got %d", si.BlockSizeMax)
	}
	si.FrameSizeMin = uint32(bits & frameSizeMinMask >> 24)
	si.FrameSizeMax = uint32(bits & frameSizeMaxMask)

	// SampleRate(20) + NChannels(3) + BitsPerSample(5) + NSamples(36) = 64 bits.
	const (
		sampleRateMask    = 0xFFFFF00000000000
		channelsMask      = 0x00000E0000000000
		bitsPerSampleMask = 0x000001F000000000
		samplesMask       = 0x0000000FFFFFFFFF
	)
	if err := binary.Read(r, binary.BigEndian, &bits); err != nil {
		return nil, err
	}
	si.SampleRate = uint32(bits & sampleRateMask >> 44)
	if si.SampleRate == 0 || si.SampleRate > 655350 {
		return nil, fmt.Errorf("meta.NewStreamInfo: invalid sample rate; expected > 0 and <= 655350, got %d", si.SampleRate)
	}
	si.NChannels = uint8(bits&channelsMask>>41) + 1
	si.BitsPerSample = uint8(bits&bitsPerSampleMask>>36) + 1
	if si.BitsPerSample < 4 || si.BitsPerSample > 32 {
		return nil, fmt.Errorf("meta.NewStreamInfo: invalid bits per sample; expected >= 4 and <= 32, got %d", si.BitsPerSample)
	}
	si.NSamples = bits & samplesMask

	if _, err := io.ReadFull(r, si.MD5sum[:]); err != nil {
		return nil, err
	}
	return si, nil
}

// Encode writes a STREAMINFO metadata block body.
func (si *StreamInfo) Encode(w io.Writer) error {
	if err := binary.Write(w, binary.BigEndian, si.BlockSizeMin); err != nil {
		return err
	}
	bits := uint64(si.BlockSizeMax) << 48
	bits |= uint64(si.FrameSizeMin&0xFFFFFF) << 24
	bits |= uint64(si.FrameSizeMax & 0xFFFFFF)
	if err := binary.Write(w, binary.BigEndian, bits); err != nil {
		return err
	}

	bits = uint64(si.SampleRate&0xFFFFF) << 44
	bits |= uint64((si.NChannels-1)&0x7) << 41
	bits |= uint64((si.BitsPerSample-1)&0x1F) << 36
	bits |= si.NSamples & 0xFFFFFFFFF
	if err := binary.Write(w, binary.BigEndian, bits); err != nil {
		return err
	}

	_, err := w.Write(si.MD5sum[:])
	return err
}
