package utf8_test

import (
	"bytes"
	"testing"

	"github.com/gofreelib/flac/internal/utf8"
)

func TestRoundTrip(t *testing.T) {
	values := []uint64{
		0, 0x7F, 0x80, 0x7FF, 0x800, 0xFFFF, 0x10000,
		0x1FFFFF, 0x200000, 0x3FFFFFF, 0x4000000,
		0x7FFFFFFF, 0xFFFFFFFFF,
	}
	for _, want := range values {
		buf := new(bytes.Buffer)
		if err := utf8.Encode(buf, want); err != nil {
			t.Fatalf("Encode(%d): %v", want, err)
		}
		got, err := utf8.Decode(buf)
		if err != nil {
			t.Fatalf("Decode after Encode(%d): %v", want, err)
		}
		if got != want {
			t.Errorf("round-trip mismatch: encoded %d, decoded %d", want, got)
		}
	}
}

func TestDecodeRejectsOverlong(t *testing.T) {
	// 0xC0 0x80 encodes 0 using a 2-byte sequence; 0 fits in 1 byte.
	buf := bytes.NewReader([]byte{0xC0, 0x80})
	if _, err := utf8.Decode(buf); err == nil {
		t.Fatal("expected an error decoding an overlong encoding, got nil")
	}
}

func TestDecodeRejectsBadContinuation(t *testing.T) {
	buf := bytes.NewReader([]byte{0xC2, 0x00})
	if _, err := utf8.Decode(buf); err == nil {
		t.Fatal("expected an error decoding a malformed continuation byte, got nil")
	}
}
