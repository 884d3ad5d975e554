package meta

import (
	"errors"
	"io"

	"github.com/gofreelib/flac/internal/ioutilx"
)

// VerifyPadding reads a PADDING metadata block body and verifies that it
// consists entirely of zero bytes.
func VerifyPadding(r io.Reader) error {
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 && !isAllZero(buf[:n]) {
			return errors.New("meta.VerifyPadding: non-zero byte in padding block")
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// EncodePadding writes n zero bytes as a PADDING metadata block body.
func EncodePadding(w io.Writer, n int) error {
	_, err := io.CopyN(w, ioutilx.Zero, int64(n))
	return err
}
