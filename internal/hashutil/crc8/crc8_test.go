package crc8_test

import (
	"testing"

	"github.com/gofreelib/flac/internal/hashutil/crc8"
)

func TestChecksumATM(t *testing.T) {
	h := crc8.NewATM()
	if _, err := h.Write([]byte("123456789")); err != nil {
		t.Fatal(err)
	}
	// ATM/"CRC-8" check value for the ASCII string "123456789".
	const want = 0xF4
	if got := h.Sum8(); got != want {
		t.Errorf("checksum mismatch; got 0x%02X, want 0x%02X", got, want)
	}
}

func TestResetAndIncremental(t *testing.T) {
	data := []byte{0xFF, 0xF8, 0x69, 0x18, 0x00}
	h := crc8.NewATM()
	if _, err := h.Write(data); err != nil {
		t.Fatal(err)
	}
	whole := h.Sum8()

	h.Reset()
	if _, err := h.Write(data[:2]); err != nil {
		t.Fatal(err)
	}
	if _, err := h.Write(data[2:]); err != nil {
		t.Fatal(err)
	}
	if got := h.Sum8(); got != whole {
		t.Errorf("incremental checksum mismatch; got 0x%02X, want 0x%02X", got, whole)
	}
}
