// Package bitbuf implements Golomb coding (the non-power-of-two
// generalization of Rice coding). Per spec, this is implemented for
// completeness and testing but is never emitted into a FLAC stream by the
// frame encoder — the standard FLAC bitstream only uses Rice (power-of-two
// divisor) coding.
package bitbuf

import (
	"github.com/icza/bitio"
	ibits "github.com/gofreelib/flac/internal/bits"
)

// GolombBits returns the number of bits WriteGolomb would emit for folded
// (an unsigned, ZigZag-folded residual value) with divisor m using
// quotient/remainder encoding with boundary d = (1<<(k+1)) - m, where k =
// ilog2(m).
func GolombBits(folded uint64, m uint64) int {
	if m == 0 {
		panic("bitbuf: golomb divisor must be > 0")
	}
	k, d := golombParams(m)
	q := folded / m
	r := folded % m
	bits := int(q) + 1
	if r < d {
		bits += int(k)
	} else {
		bits += int(k) + 1
	}
	return bits
}

// WriteGolomb writes folded to bw using Golomb coding with divisor m.
func WriteGolomb(bw *bitio.Writer, folded uint64, m uint64) error {
	if m == 0 {
		panic("bitbuf: golomb divisor must be > 0")
	}
	k, d := golombParams(m)
	q := folded / m
	r := folded % m

	if err := ibits.WriteUnary(bw, q); err != nil {
		return err
	}
	if r < d {
		if k == 0 {
			return nil
		}
		return bw.WriteBits(r, uint8(k))
	}
	return bw.WriteBits(r+d, uint8(k+1))
}

// ReadGolomb reads a Golomb-coded value with divisor m from r.
func ReadGolomb(r *ibits.Reader, m uint64) (uint64, error) {
	k, d := golombParams(m)
	q, err := r.ReadUnary()
	if err != nil {
		return 0, err
	}
	if k == 0 {
		return q * m, nil
	}
	v, err := r.ReadBits(k)
	if err != nil {
		return 0, err
	}
	if v < d {
		return q*m + v, nil
	}
	extra, err := r.ReadBits(1)
	if err != nil {
		return 0, err
	}
	v = (v<<1 | extra) - d
	return q*m + v, nil
}

// golombParams returns k = ilog2(m) and the boundary d = (1<<(k+1)) - m.
func golombParams(m uint64) (k uint64, d uint64) {
	for (uint64(1) << (k + 1)) <= m {
		k++
	}
	d = (uint64(1) << (k + 1)) - m
	return k, d
}
