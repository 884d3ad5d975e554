package flac

import (
	"crypto/md5"
	"hash"
	"io"

	"github.com/mewkiz/pkg/errutil"

	"github.com/gofreelib/flac/frame"
	"github.com/gofreelib/flac/meta"
)

// Encoder writes a FLAC stream: signature, metadata chain, then one frame
// per call to WriteFrame. If the destination also implements io.Seeker,
// Close backfills STREAMINFO with the sample count, frame size bounds and
// MD5 checksum accumulated while encoding.
type Encoder struct {
	w      io.Writer
	Info   *meta.StreamInfo
	Blocks []*meta.Block

	// LooseMidSideStereo trades a small amount of compression for encode
	// speed: once set, the four-way stereo decorrelation search only runs
	// every midSideReuse frames, reusing the previous frame's channel
	// assignment in between. midSideReuse is derived from the stream's
	// sample rate and maximum block size, following the common heuristic
	// of re-evaluating roughly every 0.4 seconds of audio.
	LooseMidSideStereo bool

	curNum       uint64
	midSideReuse uint64
	lastCA       frame.ChannelAssignment
	md5sum       hash.Hash
	minFrameSize uint32
	maxFrameSize uint32
}

// NewEncoder writes the "fLaC" signature and metadata chain (STREAMINFO
// first, as required) and returns an Encoder ready for WriteFrame calls.
func NewEncoder(w io.Writer, info *meta.StreamInfo, blocks ...*meta.Block) (*Encoder, error) {
	enc := &Encoder{w: w, Info: info, Blocks: blocks, md5sum: md5.New()}
	if info.SampleRate > 0 && info.BlockSizeMax > 0 {
		enc.midSideReuse = uint64(float64(info.SampleRate) * 0.4 / float64(info.BlockSizeMax))
	}
	if _, err := io.WriteString(w, Signature); err != nil {
		return nil, errutil.Err(err)
	}
	siBlock := &meta.Block{
		Header: meta.Header{IsLast: len(blocks) == 0, Type: meta.TypeStreamInfo},
		Body:   info,
	}
	if err := siBlock.Encode(w); err != nil {
		return nil, errutil.Err(err)
	}
	for i, block := range blocks {
		block.Header.IsLast = i == len(blocks)-1
		if err := block.Encode(w); err != nil {
			return nil, errutil.Err(err)
		}
	}
	return enc, nil
}

// WriteFrame encodes one frame's worth of samples, one slice per channel,
// all of equal length.
func (enc *Encoder) WriteFrame(samples [][]int32) error {
	nch := len(samples)
	if nch == 0 {
		return errutil.Newf("flac.Encoder.WriteFrame: no channels")
	}
	blockSize := len(samples[0])
	for i, s := range samples {
		if len(s) != blockSize {
			return errutil.Newf("flac.Encoder.WriteFrame: channel %d has %d samples, want %d", i, len(s), blockSize)
		}
	}

	hdr := &frame.Header{
		BlockSize:     uint16(blockSize),
		SampleRate:    enc.Info.SampleRate,
		BitsPerSample: enc.Info.BitsPerSample,
		Num:           enc.curNum,
	}
	var forceCA *frame.ChannelAssignment
	if enc.LooseMidSideStereo && nch == 2 && enc.midSideReuse > 1 && enc.curNum%enc.midSideReuse != 0 {
		forceCA = &enc.lastCA
	}
	plans, err := buildFrame(hdr, samples, forceCA)
	if err != nil {
		return errutil.Err(err)
	}
	enc.lastCA = hdr.Channels
	enc.curNum++

	enc.accumulateMD5(samples)

	n := enc.w
	var counted countingWriter
	counted.w = n
	if err := frame.Encode(&counted, hdr, plans); err != nil {
		return errutil.Err(err)
	}
	if counted.n < uint64(enc.minFrameSize) || enc.minFrameSize == 0 {
		enc.minFrameSize = uint32(counted.n)
	}
	if counted.n > uint64(enc.maxFrameSize) {
		enc.maxFrameSize = uint32(counted.n)
	}
	enc.Info.NSamples += uint64(blockSize)
	return nil
}

// accumulateMD5 feeds the interleaved, little-endian PCM representation
// of samples (packed to the stream's bits-per-sample, rounded up to a
// whole byte) into the running STREAMINFO MD5 hash.
func (enc *Encoder) accumulateMD5(samples [][]int32) {
	bytesPerSample := (int(enc.Info.BitsPerSample) + 7) / 8
	blockSize := len(samples[0])
	buf := make([]byte, bytesPerSample)
	for i := 0; i < blockSize; i++ {
		for _, ch := range samples {
			v := uint32(ch[i])
			for b := 0; b < bytesPerSample; b++ {
				buf[b] = byte(v >> (8 * b))
			}
			enc.md5sum.Write(buf)
		}
	}
}

// Close backfills STREAMINFO with the accumulated sample count, frame
// size bounds and MD5 checksum when the destination writer supports
// seeking; otherwise it is a no-op.
func (enc *Encoder) Close() error {
	ws, ok := enc.w.(io.WriteSeeker)
	if !ok {
		return nil
	}
	sum := enc.md5sum.Sum(nil)
	copy(enc.Info.MD5sum[:], sum)
	enc.Info.FrameSizeMin = enc.minFrameSize
	enc.Info.FrameSizeMax = enc.maxFrameSize

	if _, err := ws.Seek(int64(len(Signature)), io.SeekStart); err != nil {
		return errutil.Err(err)
	}
	siBlock := &meta.Block{
		Header: meta.Header{IsLast: len(enc.Blocks) == 0, Type: meta.TypeStreamInfo},
		Body:   enc.Info,
	}
	if err := siBlock.Encode(ws); err != nil {
		return errutil.Err(err)
	}
	return nil
}

// countingWriter tracks the number of bytes written, used to fill in
// STREAMINFO's minimum/maximum frame size without a second encoding pass.
type countingWriter struct {
	w io.Writer
	n uint64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += uint64(n)
	return n, err
}
