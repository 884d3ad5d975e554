// Package meta implements the FLAC metadata block header and the
// STREAMINFO, PADDING, APPLICATION, SEEKTABLE, VORBIS_COMMENT, CUESHEET and
// PICTURE block bodies, both decode and encode.
package meta

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// BlockType identifies the type of a metadata block body.
type BlockType uint8

// Metadata block types.
const (
	TypeStreamInfo BlockType = iota
	TypePadding
	TypeApplication
	TypeSeekTable
	TypeVorbisComment
	TypeCueSheet
	TypePicture
)

func (t BlockType) String() string {
	switch t {
	case TypeStreamInfo:
		return "stream info"
	case TypePadding:
		return "padding"
	case TypeApplication:
		return "application"
	case TypeSeekTable:
		return "seek table"
	case TypeVorbisComment:
		return "vorbis comment"
	case TypeCueSheet:
		return "cue sheet"
	case TypePicture:
		return "picture"
	default:
		return "reserved"
	}
}

// Header precedes every metadata block body: one bit marking the last
// block before the audio frames, a 7-bit block type and a 24-bit body
// length in bytes.
type Header struct {
	IsLast bool
	Type   BlockType
	Length int
}

// NewHeader parses a metadata block header.
func NewHeader(r io.Reader) (h Header, err error) {
	const (
		isLastMask = 0x80000000
		typeMask   = 0x7F000000
		lengthMask = 0x00FFFFFF
	)
	var bits uint32
	if err := binary.Read(r, binary.BigEndian, &bits); err != nil {
		return Header{}, err
	}
	h.IsLast = bits&isLastMask != 0
	h.Type = BlockType(bits & typeMask >> 24)
	if h.Type >= 7 && h.Type <= 126 {
		return Header{}, errors.New("meta.NewHeader: reserved block type")
	}
	if h.Type == 127 {
		return Header{}, errors.New("meta.NewHeader: invalid block type")
	}
	h.Length = int(bits & lengthMask)
	return h, nil
}

// Encode writes a metadata block header.
func (h Header) Encode(w io.Writer) error {
	bits := uint32(h.Length) & 0x00FFFFFF
	bits |= uint32(h.Type) << 24
	if h.IsLast {
		bits |= 0x80000000
	}
	return binary.Write(w, binary.BigEndian, bits)
}

// Block is a metadata block header together with its decoded body.
// Body holds a *StreamInfo, *Application, *SeekTable, *VorbisComment,
// *CueSheet, *Picture, or nil for a PADDING block.
type Block struct {
	Header
	Body interface{}
}

// NewBlock parses a metadata block: header followed by a type-specific
// body of Header.Length bytes.
func NewBlock(r io.Reader) (*Block, error) {
	hdr, err := NewHeader(r)
	if err != nil {
		return nil, err
	}
	block := &Block{Header: hdr}
	lr := io.LimitReader(r, int64(hdr.Length))
	switch hdr.Type {
	case TypeStreamInfo:
		block.Body, err = NewStreamInfo(lr)
	case TypePadding:
		err = VerifyPadding(lr)
	case TypeApplication:
		block.Body, err = NewApplication(lr, hdr.Length)
	case TypeSeekTable:
		block.Body, err = NewSeekTable(lr, hdr.Length)
	case TypeVorbisComment:
		block.Body, err = NewVorbisComment(lr, hdr.Length)
	case TypeCueSheet:
		block.Body, err = NewCueSheet(lr)
	case TypePicture:
		block.Body, err = NewPicture(lr)
	default:
		return nil, fmt.Errorf("meta.NewBlock: block type %q not supported", hdr.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("meta.NewBlock: %w", err)
	}
	return block, nil
}

// Encode writes the block header followed by its type-specific body.
func (block *Block) Encode(w io.Writer) error {
	var bodyLen int
	switch body := block.Body.(type) {
	case *StreamInfo:
		bodyLen = streamInfoLen
	case *Application:
		bodyLen = 4 + len(body.Data)
	case *SeekTable:
		bodyLen = len(body.Points) * seekPointLen
	case *VorbisComment:
		bodyLen = vorbisCommentLen(body)
	case *CueSheet:
		bodyLen = cueSheetLen(body)
	case *Picture:
		bodyLen = pictureLen(body)
	case nil:
		bodyLen = block.Header.Length
	default:
		return fmt.Errorf("meta.Block.Encode: unsupported body type %T", body)
	}
	block.Header.Length = bodyLen
	if err := block.Header.Encode(w); err != nil {
		return err
	}
	switch body := block.Body.(type) {
	case *StreamInfo:
		return body.Encode(w)
	case *Application:
		return body.Encode(w)
	case *SeekTable:
		return body.Encode(w)
	case *VorbisComment:
		return body.Encode(w)
	case *CueSheet:
		return body.Encode(w)
	case *Picture:
		return body.Encode(w)
	case nil:
		return EncodePadding(w, block.Header.Length)
	}
	return nil
}

// getStringFromSZ trims buf at the first NUL byte and returns the result
// as a string.
func getStringFromSZ(buf []byte) string {
	for i, b := range buf {
		if b == 0 {
			return string(buf[:i])
		}
	}
	return string(buf)
}

// isAllZero reports whether every byte of buf is zero.
func isAllZero(buf []byte) bool {
	for _, b := range buf {
		if b != 0 {
			return false
		}
	}
	return true
}
