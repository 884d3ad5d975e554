// Package flac implements decoding and encoding of the FLAC (Free Lossless
// Audio Codec) container: the "fLaC" signature, metadata block chain and
// the sequence of audio frames that follows it.
package flac

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gofreelib/flac/frame"
	"github.com/gofreelib/flac/internal/bufseekio"
	"github.com/gofreelib/flac/meta"
)

// Signature is the four-byte magic that opens every FLAC stream.
const Signature = "fLaC"

var id3Signature = "ID3"

// Stream holds the metadata chain of a FLAC file and the reader position
// to continue decoding audio frames from.
type Stream struct {
	// Info is the mandatory STREAMINFO block, also present in Blocks.
	Info *meta.StreamInfo
	// Blocks holds every metadata block in stream order, STREAMINFO first.
	Blocks []*meta.Block

	r      io.Reader
	closer io.Closer

	// seekTable is the *meta.SeekTable among Blocks, nil if absent.
	seekTable *meta.SeekTable
	// dataOffset is the absolute offset of the first frame, valid only
	// when r also implements io.Seeker; SeekPoint.Offset is relative to
	// it.
	dataOffset int64
}

// Option configures New and Open.
type Option func(*streamOptions)

type streamOptions struct {
	onMetadata func(*meta.Block)
}

// WithMetadataHandler calls fn with every metadata block as it is parsed,
// STREAMINFO included, in addition to collecting them in Stream.Blocks.
func WithMetadataHandler(fn func(*meta.Block)) Option {
	return func(o *streamOptions) { o.onMetadata = fn }
}

// New reads the "fLaC" signature and metadata chain from r and returns a
// Stream positioned at the first audio frame. A prepended ID3v2 tag, if
// present, is skipped before the signature is checked.
func New(r io.Reader, opts ...Option) (*Stream, error) {
	var o streamOptions
	for _, opt := range opts {
		opt(&o)
	}

	var sig [4]byte
	if _, err := io.ReadFull(r, sig[:]); err != nil {
		return nil, err
	}
	if string(sig[:3]) == id3Signature {
		if err := skipID3v2(r); err != nil {
			return nil, fmt.Errorf("flac.New: %w", err)
		}
		if _, err := io.ReadFull(r, sig[:]); err != nil {
			return nil, err
		}
	}
	if string(sig[:]) != Signature {
		return nil, fmt.Errorf("flac.New: invalid signature; expected %q, got %q", Signature, sig)
	}

	s := &Stream{r: r}
	for {
		block, err := meta.NewBlock(r)
		if err != nil {
			return nil, fmt.Errorf("flac.New: %w", err)
		}
		switch body := block.Body.(type) {
		case *meta.StreamInfo:
			s.Info = body
		case *meta.SeekTable:
			s.seekTable = body
		}
		s.Blocks = append(s.Blocks, block)
		if o.onMetadata != nil {
			o.onMetadata(block)
		}
		if block.Header.IsLast {
			break
		}
	}
	if s.Info == nil {
		return nil, errors.New("flac.New: missing STREAMINFO block")
	}
	if s.Blocks[0].Header.Type != meta.TypeStreamInfo {
		return nil, errors.New("flac.New: STREAMINFO must be the first metadata block")
	}

	if rs, ok := r.(io.Seeker); ok {
		pos, err := rs.Seek(0, io.SeekCurrent)
		if err != nil {
			return nil, err
		}
		s.dataOffset = pos
	}
	return s, nil
}

// skipID3v2 discards the remainder of a prepended ID3v2 tag, leaving r
// positioned at the start of the FLAC signature. ID3v2 tags are not part
// of the FLAC format but are occasionally prepended by other tools. The
// caller has already consumed the "ID3" marker and the version-major byte.
func skipID3v2(r io.Reader) error {
	var rest [6]byte
	if _, err := io.ReadFull(r, rest[:]); err != nil {
		return err
	}
	// Size is a 28-bit synchsafe integer: the high bit of each of its 4
	// bytes is always zero.
	size := int64(rest[2])<<21 | int64(rest[3])<<14 | int64(rest[4])<<7 | int64(rest[5])
	_, err := io.CopyN(io.Discard, r, size)
	return err
}

// Open opens the named file and parses its FLAC signature and metadata
// chain. The file is wrapped in a buffered, seekable reader so that
// Seek remains efficient alongside ordinary linear decoding.
func Open(path string, opts ...Option) (*Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	br := bufseekio.NewReadSeeker(f)
	s, err := New(br, opts...)
	if err != nil {
		f.Close()
		return nil, err
	}
	s.closer = f
	return s, nil
}

// Close releases the underlying file, if the Stream was created with
// Open.
func (s *Stream) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

// Next decodes and returns the next audio frame. It returns io.EOF once
// the stream is exhausted.
func (s *Stream) Next() (*frame.Frame, error) {
	return frame.Decode(s.r, s.Info.BitsPerSample, s.Info.SampleRate)
}

// Decode fully decodes the stream into one sample slice per channel.
func (s *Stream) Decode() ([][]int32, error) {
	channels := make([][]int32, s.Info.NChannels)
	for {
		f, err := s.Next()
		if err == io.EOF {
			return channels, nil
		}
		if err != nil {
			return nil, err
		}
		for ch, samples := range f.Channels {
			channels[ch] = append(channels[ch], samples...)
		}
	}
}
