package utf8

import (
	"io"

	"github.com/gofreelib/flac/internal/ioutilx"
	"github.com/mewkiz/pkg/errutil"
)

// Encode encodes x as a "UTF-8" coded number and writes it to w. x must be
// representable in 36 bits (rune7Max); larger values are a caller bug.
func Encode(w io.Writer, x uint64) error {
	// 1-byte, 7-bit sequence.
	if x <= rune1Max {
		if err := ioutilx.WriteByte(w, byte(x)); err != nil {
			return errutil.Err(err)
		}
		return nil
	}

	var (
		l    int    // number of continuation bytes
		bits uint64 // bits of the leading byte
	)
	switch {
	case x <= rune2Max:
		l = 1
		bits = uint64(t2) | (x>>6)&mask2
	case x <= rune3Max:
		l = 2
		bits = uint64(t3) | (x>>(6*2))&mask3
	case x <= rune4Max:
		l = 3
		bits = uint64(t4) | (x>>(6*3))&mask4
	case x <= rune5Max:
		l = 4
		bits = uint64(t5) | (x>>(6*4))&mask5
	case x <= rune6Max:
		l = 5
		bits = uint64(t6) | (x>>(6*5))&mask6
	default:
		l = 6
		bits = uint64(t7)
	}

	if err := ioutilx.WriteByte(w, byte(bits)); err != nil {
		return errutil.Err(err)
	}
	for i := l - 1; i >= 0; i-- {
		cont := uint64(tx) | (x>>uint(6*i))&maskx
		if err := ioutilx.WriteByte(w, byte(cont)); err != nil {
			return errutil.Err(err)
		}
	}
	return nil
}
