package meta

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Picture is the body of a PICTURE metadata block, used to store album
// art and similar images. A stream may carry more than one.
type Picture struct {
	// Picture type, per the ID3v2 APIC frame convention (0 = other, 3 =
	// cover front, ...). Values above 20 are reserved.
	Type uint32
	// MIME type, printable ASCII 0x20-0x7e. May be "-->" to signal that
	// Data is a URL rather than the image itself.
	MIME string
	// UTF-8 description.
	Desc string
	Width, Height, ColorDepth uint32
	// Number of colors used for indexed-color images, or 0.
	ColorCount uint32
	Data       []byte
}

// NewPicture parses a PICTURE metadata block body.
func NewPicture(r io.Reader) (*Picture, error) {
	pic := new(Picture)
	if err := binary.Read(r, binary.BigEndian, &pic.Type); err != nil {
		return nil, err
	}
	if pic.Type > 20 {
		return nil, fmt.Errorf("meta.NewPicture: reserved picture type: %d", pic.Type)
	}

	mime, err := readLenPrefixed(r)
	if err != nil {
		return nil, err
	}
	pic.MIME = getStringFromSZ(mime)

	desc, err := readLenPrefixed(r)
	if err != nil {
		return nil, err
	}
	pic.Desc = getStringFromSZ(desc)

	for _, p := range []*uint32{&pic.Width, &pic.Height, &pic.ColorDepth, &pic.ColorCount} {
		if err := binary.Read(r, binary.BigEndian, p); err != nil {
			return nil, err
		}
	}

	var dataLen uint32
	if err := binary.Read(r, binary.BigEndian, &dataLen); err != nil {
		return nil, err
	}
	pic.Data = make([]byte, dataLen)
	if _, err := io.ReadFull(r, pic.Data); err != nil {
		return nil, err
	}
	return pic, nil
}

func readLenPrefixed(r io.Reader) ([]byte, error) {
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	_, err := io.ReadFull(r, buf)
	return buf, err
}

// pictureLen returns the encoded length in bytes of a PICTURE block body.
func pictureLen(pic *Picture) int {
	return 4 + 4 + len(pic.MIME) + 4 + len(pic.Desc) + 4 + 4 + 4 + 4 + 4 + len(pic.Data)
}

// Encode writes a PICTURE metadata block body.
func (pic *Picture) Encode(w io.Writer) error {
	if err := binary.Write(w, binary.BigEndian, pic.Type); err != nil {
		return err
	}
	if err := writeLenPrefixed(w, []byte(pic.MIME)); err != nil {
		return err
	}
	if err := writeLenPrefixed(w, []byte(pic.Desc)); err != nil {
		return err
	}
	for _, v := range []uint32{pic.Width, pic.Height, pic.ColorDepth, pic.ColorCount} {
		if err := binary.Write(w, binary.BigEndian, v); err != nil {
			return err
		}
	}
	if err := binary.Write(w, binary.BigEndian, uint32(len(pic.Data))); err != nil {
		return err
	}
	_, err := w.Write(pic.Data)
	return err
}

func writeLenPrefixed(w io.Writer, b []byte) error {
	if err := binary.Write(w, binary.BigEndian, uint32(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}
