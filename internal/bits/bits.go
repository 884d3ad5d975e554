// Package bits provides bit-level helpers layered on top of bitio: unary
// coding, ZigZag folding and two's-complement sign extension, used by the
// frame, rice and bitbuf packages.
package bits

import (
	"io"

	"github.com/icza/bitio"
)

// Reader wraps a bitio.Reader with the unary and sign-extended read helpers
// the frame and rice decoders need.
type Reader struct {
	*bitio.Reader
}

// NewReader returns a Reader that reads from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{Reader: bitio.NewReader(r)}
}

// ReadSigned reads an n-bit two's-complement signed integer.
func (r *Reader) ReadSigned(n uint8) (int64, error) {
	x, err := r.ReadBits(n)
	if err != nil {
		return 0, err
	}
	return IntN(x, uint(n)), nil
}
