package meta

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrDeclaredBlockTooBig is returned when a VORBIS_COMMENT block declares a
// vendor string length or a tag count that cannot possibly fit within the
// block's own declared
// length, a sign of a corrupt or malicious stream.
var ErrDeclaredBlockTooBig = errors.New("meta.NewVorbisComment: declared tag count exceeds block length")

// VorbisComment is the body of a VORBIS_COMMENT metadata block: a vendor
// string followed by a list of "NAME=VALUE" tags, in the format used by
// Vorbis comment headers.
type VorbisComment struct {
	Vendor string
	Tags   [][2]string
}

// NewVorbisComment parses a VORBIS_COMMENT metadata block body of the
// given length. Every length-prefixed field is little-endian, unlike the
// rest of the metadata format.
func NewVorbisComment(r io.Reader, length int) (*VorbisComment, error) {
	vc := new(VorbisComment)

	var vendorLen uint32
	if err := binary.Read(r, binary.LittleEndian, &vendorLen); err != nil {
		return nil, err
	}
	if int64(vendorLen) > int64(length)-8 {
		return nil, ErrDeclaredBlockTooBig
	}
	buf := make([]byte, vendorLen)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	vc.Vendor = string(buf)

	var tagCount uint32
	if err := binary.Read(r, binary.LittleEndian, &tagCount); err != nil {
		return nil, err
	}
	remaining := int64(length) - 8 - int64(vendorLen)
	// Every tag needs at least a 4-byte length prefix.
	if int64(tagCount)*4 > remaining {
		return nil, ErrDeclaredBlockTooBig
	}

	vc.Tags = make([][2]string, 0, tagCount)
	for i := uint32(0); i < tagCount; i++ {
		var entryLen uint32
		if err := binary.Read(r, binary.LittleEndian, &entryLen); err != nil {
			return nil, err
		}
		entry := make([]byte, entryLen)
		if _, err := io.ReadFull(r, entry); err != nil {
			return nil, err
		}
		idx := strings.IndexByte(string(entry), '=')
		if idx < 0 {
			return nil, fmt.Errorf("meta.NewVorbisComment: unable to locate '=' in vector %q", entry)
		}
		vc.Tags = append(vc.Tags, [2]string{string(entry[:idx]), string(entry[idx+1:])})
	}
	return vc, nil
}

// vorbisCommentLen returns the encoded length in bytes of a VORBIS_COMMENT
// block body.
func vorbisCommentLen(vc *VorbisComment) int {
	n := 4 + len(vc.Vendor) + 4
	for _, tag := range vc.Tags {
		n += 4 + len(tag[0]) + 1 + len(tag[1])
	}
	return n
}

// Encode writes a VORBIS_COMMENT metadata block body.
func (vc *VorbisComment) Encode(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(vc.Vendor))); err != nil {
		return err
	}
	if _, err := io.WriteString(w, vc.Vendor); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(vc.Tags))); err != nil {
		return err
	}
	for _, tag := range vc.Tags {
		entry := tag[0] + "=" + tag[1]
		if err := binary.Write(w, binary.LittleEndian, uint32(len(entry))); err != nil {
			return err
		}
		if _, err := io.WriteString(w, entry); err != nil {
			return err
		}
	}
	return nil
}
