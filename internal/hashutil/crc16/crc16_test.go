package crc16_test

import (
	"testing"

	"github.com/gofreelib/flac/internal/hashutil/crc16"
)

func TestChecksumIBM(t *testing.T) {
	h := crc16.NewIBM()
	if _, err := h.Write([]byte("123456789")); err != nil {
		t.Fatal(err)
	}
	// Non-reflected CRC-16 (poly 0x8005, init 0) check value for "123456789".
	const want = 0xFEE8
	if got := h.Sum16(); got != want {
		t.Errorf("checksum mismatch; got 0x%04X, want 0x%04X", got, want)
	}
}

func TestZeroFrameIsZero(t *testing.T) {
	h := crc16.NewIBM()
	if _, err := h.Write(make([]byte, 16)); err != nil {
		t.Fatal(err)
	}
	if got := h.Sum16(); got != 0 {
		t.Errorf("checksum of all-zero input should be 0, got 0x%04X", got)
	}
}
