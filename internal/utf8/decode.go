package utf8

import (
	"errors"
	"fmt"
	"io"

	"github.com/gofreelib/flac/internal/ioutilx"
)

// Decode decodes a "UTF-8" coded number from r and returns it.
//
// Algorithm (ref: the FLAC mailing list thread describing the frame/sample
// number encoding):
//   - read one byte B0 from the stream
//   - if B0 = 0xxxxxxx then the read value is B0
//   - if B0 = 10xxxxxx, the encoding is invalid
//   - if B0 = 11xxxxxx, set L to the number of leading binary 1s minus 1
//   - assign the bits following the leading 1s of B0 to R
//   - for i in 1..L: left shift R 6 bits, read a continuation byte 10xxxxxx,
//     OR its low 6 bits into R
//   - the read value is R
//
// Decode rejects overlong encodings: a value that fits in fewer continuation
// bytes than were actually used is a malformed stream.
func Decode(r io.Reader) (x uint64, err error) {
	c0, err := ioutilx.ReadByte(r)
	if err != nil {
		return 0, err
	}

	if c0 < tx {
		return uint64(c0), nil
	}
	if c0 < t2 {
		return 0, errors.New("utf8.Decode: unexpected continuation byte")
	}

	var l int
	switch {
	case c0 < t3:
		l = 1
		x = uint64(c0 & mask2)
	case c0 < t4:
		l = 2
		x = uint64(c0 & mask3)
	case c0 < t5:
		l = 3
		x = uint64(c0 & mask4)
	case c0 < t6:
		l = 4
		x = uint64(c0 & mask5)
	case c0 < t7:
		l = 5
		x = uint64(c0 & mask6)
	case c0 < t8:
		l = 6
		x = 0
	default:
		return 0, errors.New("utf8.Decode: invalid leading byte 0xFF")
	}

	for i := 0; i < l; i++ {
		x <<= 6
		c, err := ioutilx.ReadByte(r)
		if err != nil {
			if err == io.EOF {
				return 0, io.ErrUnexpectedEOF
			}
			return 0, err
		}
		if c < tx || c >= t2 {
			return 0, errors.New("utf8.Decode: expected continuation byte")
		}
		x |= uint64(c & maskx)
	}

	minForLen := [...]uint64{0, rune1Max, rune2Max, rune3Max, rune4Max, rune5Max, rune6Max}
	if l >= 1 && l <= 6 && x <= minForLen[l] {
		return 0, fmt.Errorf("utf8.Decode: overlong encoding; value %d stored in %d bytes could fit in fewer", x, l+1)
	}
	return x, nil
}
