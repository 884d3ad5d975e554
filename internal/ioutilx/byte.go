// Package ioutilx implements small input/output helpers not covered by the
// standard library that the metadata and frame codecs share.
package ioutilx

import "io"

// ReadByte reads and returns the next byte from r.
func ReadByte(r io.Reader) (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// WriteByte writes the given byte to w.
func WriteByte(w io.Writer, b byte) error {
	buf := [1]byte{b}
	_, err := w.Write(buf[:])
	return err
}
