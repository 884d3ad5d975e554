package meta

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

var errCueSheetReserved = errors.New("meta.NewCueSheet: all reserved bits must be 0")

// CueSheet is the body of a CUESHEET metadata block, used to store cue
// sheet information for digital audio extracted from Compact Discs, or
// for audio in other formats that still want to provide track and index
// point information.
type CueSheet struct {
	// Media catalog number, in ASCII 0x20-0x7e.
	MCN string
	// Number of lead-in samples; nonzero only for CD-DA cue sheets.
	NLeadInSamples uint64
	// True if the cue sheet corresponds to a Compact Disc.
	IsCompactDisc bool
	// One or more tracks, the last always being the required lead-out
	// track.
	Tracks []CueSheetTrack
}

// CueSheetTrack is a single track of a CueSheet.
type CueSheetTrack struct {
	// Track offset in samples, relative to the start of the FLAC stream.
	Offset uint64
	// Track number; 1-99 for CD-DA tracks, 170 or 255 for the lead-out.
	Num uint8
	// 12-digit alphanumeric ISRC, or empty.
	ISRC string
	// True for an audio track, false for non-audio (e.g. data tracks).
	IsAudio bool
	// CD-DA Q-channel control bit 5.
	HasPreEmphasis bool
	// Track index points; empty only for the lead-out track.
	Indicies []CueSheetTrackIndex
}

// CueSheetTrackIndex is a single index point within a CueSheetTrack.
type CueSheetTrackIndex struct {
	// Offset in samples, relative to the track's own offset.
	Offset uint64
	// Index point number; the first index of a track is 0 or 1, then
	// increases by 1.
	Num uint8
}

// NewCueSheet parses a CUESHEET metadata block body.
func NewCueSheet(r io.Reader) (*CueSheet, error) {
	buf := make([]byte, 128)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	cs := new(CueSheet)
	cs.MCN = getStringFromSZ(buf)

	if err := binary.Read(r, binary.BigEndian, &cs.NLeadInSamples); err != nil {
		return nil, err
	}

	const (
		isCompactDiscMask = 0x80
		reservedMask      = 0x7F
	)
	b, err := readByte(r)
	if err != nil {
		return nil, err
	}
	cs.IsCompactDisc = b&isCompactDiscMask != 0
	if b&reservedMask != 0 {
		return nil, errCueSheetReserved
	}
	buf = make([]byte, 258)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	if !isAllZero(buf) {
		return nil, errCueSheetReserved
	}

	var trackCount uint8
	if err := binary.Read(r, binary.BigEndian, &trackCount); err != nil {
		return nil, err
	}
	if trackCount < 1 {
		return nil, errors.New("meta.NewCueSheet: at least one track (the lead-out) is required")
	}
	if cs.IsCompactDisc && trackCount > 100 {
		return nil, fmt.Errorf("meta.NewCueSheet: number of CD-DA tracks (%d) exceeds 100", trackCount)
	}

	cs.Tracks = make([]CueSheetTrack, trackCount)
	uniq := make(map[uint8]struct{})
	for i := range cs.Tracks {
		track := &cs.Tracks[i]
		if err := binary.Read(r, binary.BigEndian, &track.Offset); err != nil {
			return nil, err
		}
		if cs.IsCompactDisc && track.Offset%588 != 0 {
			return nil, fmt.Errorf("meta.NewCueSheet: CD-DA track offset (%d) must be evenly divisible by 588", track.Offset)
		}
		if err := binary.Read(r, binary.BigEndian, &track.Num); err != nil {
			return nil, err
		}
		if _, ok := uniq[track.Num]; ok {
			return nil, fmt.Errorf("meta.NewCueSheet: duplicated track number %d", track.Num)
		}
		uniq[track.Num] = struct{}{}
		if track.Num == 0 {
			return nil, errors.New("meta.NewCueSheet: track number 0 not allowed")
		}
		isLeadOut := i == len(cs.Tracks)-1
		if cs.IsCompactDisc {
			if !isLeadOut && track.Num >= 100 {
				return nil, fmt.Errorf("meta.NewCueSheet: CD-DA track number (%d) exceeds 99", track.Num)
			}
			if isLeadOut && track.Num != 170 {
				return nil, fmt.Errorf("meta.NewCueSheet: invalid lead-out CD-DA track number; expected 170, got %d", track.Num)
			}
		} else if isLeadOut && track.Num != 255 {
			return nil, fmt.Errorf("meta.NewCueSheet: invalid lead-out track number; expected 255, got %d", track.Num)
		}

		buf = make([]byte, 12)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		track.ISRC = getStringFromSZ(buf)

		const (
			trackTypeMask      = 0x80
			hasPreEmphasisMask = 0x40
			trackReservedMask  = 0x3F
		)
		b, err := readByte(r)
		if err != nil {
			return nil, err
		}
		track.IsAudio = b&trackTypeMask == 0
		track.HasPreEmphasis = b&hasPreEmphasisMask != 0
		if b&trackReservedMask != 0 {
			return nil, errCueSheetReserved
		}
		buf = make([]byte, 13)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		if !isAllZero(buf) {
			return nil, errCueSheetReserved
		}

		var idxCount uint8
		if err := binary.Read(r, binary.BigEndian, &idxCount); err != nil {
			return nil, err
		}
		if idxCount > 0 {
			track.Indicies = make([]CueSheetTrackIndex, idxCount)
		}
		for j := range track.Indicies {
			idx := &track.Indicies[j]
			if err := binary.Read(r, binary.BigEndian, &idx.Offset); err != nil {
				return nil, err
			}
			if err := binary.Read(r, binary.BigEndian, &idx.Num); err != nil {
				return nil, err
			}
			buf = make([]byte, 3)
			if _, err := io.ReadFull(r, buf); err != nil {
				return nil, err
			}
			if !isAllZero(buf) {
				return nil, errCueSheetReserved
			}
		}
	}
	return cs, nil
}

func readByte(r io.Reader) (byte, error) {
	var buf [1]byte
	_, err := io.ReadFull(r, buf[:])
	return buf[0], err
}

// cueSheetLen returns the encoded length in bytes of a CUESHEET block body.
func cueSheetLen(cs *CueSheet) int {
	n := 128 + 8 + 1 + 258 + 1
	for _, t := range cs.Tracks {
		n += 8 + 1 + 12 + 1 + 13 + 1
		n += len(t.Indicies) * (8 + 1 + 3)
	}
	return n
}

// Encode writes a CUESHEET metadata block body.
func (cs *CueSheet) Encode(w io.Writer) error {
	mcn := make([]byte, 128)
	copy(mcn, cs.MCN)
	if _, err := w.Write(mcn); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, cs.NLeadInSamples); err != nil {
		return err
	}
	var flags byte
	if cs.IsCompactDisc {
		flags = 0x80
	}
	if err := binary.Write(w, binary.BigEndian, flags); err != nil {
		return err
	}
	if _, err := w.Write(make([]byte, 258)); err != nil {
		return err
	}
	if len(cs.Tracks) > 255 {
		return fmt.Errorf("meta.CueSheet.Encode: too many tracks: %d", len(cs.Tracks))
	}
	if err := binary.Write(w, binary.BigEndian, uint8(len(cs.Tracks))); err != nil {
		return err
	}
	for _, t := range cs.Tracks {
		if err := binary.Write(w, binary.BigEndian, t.Offset); err != nil {
			return err
		}
		if err := binary.Write(w, binary.BigEndian, t.Num); err != nil {
			return err
		}
		isrc := make([]byte, 12)
		copy(isrc, t.ISRC)
		if _, err := w.Write(isrc); err != nil {
			return err
		}
		var tflags byte
		if !t.IsAudio {
			tflags |= 0x80
		}
		if t.HasPreEmphasis {
			tflags |= 0x40
		}
		if err := binary.Write(w, binary.BigEndian, tflags); err != nil {
			return err
		}
		if _, err := w.Write(make([]byte, 13)); err != nil {
			return err
		}
		if err := binary.Write(w, binary.BigEndian, uint8(len(t.Indicies))); err != nil {
			return err
		}
		for _, idx := range t.Indicies {
			if err := binary.Write(w, binary.BigEndian, idx.Offset); err != nil {
				return err
			}
			if err := binary.Write(w, binary.BigEndian, idx.Num); err != nil {
				return err
			}
			if _, err := w.Write(make([]byte, 3)); err != nil {
				return err
			}
		}
	}
	return nil
}
