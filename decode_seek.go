package flac

import (
	"errors"
	"fmt"
	"io"

	"github.com/gofreelib/flac/frame"
	"github.com/gofreelib/flac/meta"
)

// ErrNoSeeker is returned by Seek when the Stream was not opened on top of
// an io.Seeker (for example, a Stream created by New with a plain
// io.Reader rather than by Open).
var ErrNoSeeker = errors.New("flac: underlying reader does not support seeking")

// Seek repositions the stream so that the next call to Next decodes the
// frame containing sampleNum, and returns that frame's first sample
// number. It requires the Stream to have been opened on an io.Seeker
// (Open always satisfies this); a seek table among the metadata blocks is
// used when present, otherwise Seek falls back to a linear scan from the
// start of the frame data.
func (s *Stream) Seek(sampleNum uint64) (uint64, error) {
	rs, ok := s.r.(io.Seeker)
	if !ok {
		return 0, ErrNoSeeker
	}
	if s.Info.NSamples != 0 && sampleNum >= s.Info.NSamples {
		return 0, fmt.Errorf("flac: sample number %d out of range (stream has %d samples)", sampleNum, s.Info.NSamples)
	}

	var startOffset uint64
	if s.seekTable != nil {
		startOffset = s.searchSeekTable(sampleNum).Offset
	}
	if _, err := rs.Seek(s.dataOffset+int64(startOffset), io.SeekStart); err != nil {
		return 0, err
	}

	for {
		pos, err := rs.Seek(0, io.SeekCurrent)
		if err != nil {
			return 0, err
		}
		f, err := s.Next()
		if err != nil {
			return 0, err
		}
		num := sampleNumber(f.Header, s.Info.BlockSizeMax)
		if num+uint64(f.Header.BlockSize) > sampleNum {
			if _, err := rs.Seek(pos, io.SeekStart); err != nil {
				return 0, err
			}
			return num, nil
		}
	}
}

// searchSeekTable returns the latest seek point at or before sampleNum,
// skipping placeholder points, falling back to the first real point when
// sampleNum precedes every point in the table.
func (s *Stream) searchSeekTable(sampleNum uint64) meta.SeekPoint {
	var prev meta.SeekPoint
	havePrev := false
	for _, p := range s.seekTable.Points {
		if p.SampleNum == meta.PlaceholderPoint {
			continue
		}
		if p.SampleNum > sampleNum {
			if havePrev {
				return prev
			}
			return p
		}
		prev, havePrev = p, true
	}
	return prev
}

// sampleNumber returns a frame's first inter-channel sample number. Fixed
// blocksize streams encode a frame number that must be multiplied by the
// stream's blocksize; variable blocksize streams encode the sample number
// directly.
func sampleNumber(hdr *frame.Header, streamBlockSize uint16) uint64 {
	if hdr.HasVariableBlockSize {
		return hdr.Num
	}
	return hdr.Num * uint64(streamBlockSize)
}
