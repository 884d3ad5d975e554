package meta_test

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/gofreelib/flac/meta"
)

func TestHeaderRoundTrip(t *testing.T) {
	hdr := meta.Header{IsLast: true, Type: meta.TypeVorbisComment, Length: 42}
	buf := new(bytes.Buffer)
	if err := hdr.Encode(buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := meta.NewHeader(buf)
	if err != nil {
		t.Fatalf("NewHeader: %v", err)
	}
	if got != hdr {
		t.Fatalf("round trip mismatch; got %+v, want %+v", got, hdr)
	}
}

func TestStreamInfoRoundTrip(t *testing.T) {
	si := &meta.StreamInfo{
		BlockSizeMin:  4096,
		BlockSizeMax:  4096,
		FrameSizeMin:  1000,
		FrameSizeMax:  5000,
		SampleRate:    44100,
		NChannels:     2,
		BitsPerSample: 16,
		NSamples:      123456,
		MD5sum:        [16]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16},
	}
	buf := new(bytes.Buffer)
	if err := si.Encode(buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := meta.NewStreamInfo(buf)
	if err != nil {
		t.Fatalf("NewStreamInfo: %v", err)
	}
	if !reflect.DeepEqual(got, si) {
		t.Fatalf("round trip mismatch; got %+v, want %+v", got, si)
	}
}

func TestApplicationRoundTrip(t *testing.T) {
	app := &meta.Application{ID: 0x66616b65, Data: []byte("hello")}
	buf := new(bytes.Buffer)
	if err := app.Encode(buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := meta.NewApplication(buf, 4+len(app.Data))
	if err != nil {
		t.Fatalf("NewApplication: %v", err)
	}
	if !reflect.DeepEqual(got, app) {
		t.Fatalf("round trip mismatch; got %+v, want %+v", got, app)
	}
}

func TestSeekTableRoundTrip(t *testing.T) {
	st := &meta.SeekTable{Points: []meta.SeekPoint{
		{SampleNum: 0, Offset: 0, NSamples: 4096},
		{SampleNum: 4096, Offset: 1024, NSamples: 4096},
		{SampleNum: meta.PlaceholderPoint, Offset: 0, NSamples: 0},
	}}
	buf := new(bytes.Buffer)
	if err := st.Encode(buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := meta.NewSeekTable(buf, len(st.Points)*18)
	if err != nil {
		t.Fatalf("NewSeekTable: %v", err)
	}
	if !reflect.DeepEqual(got, st) {
		t.Fatalf("round trip mismatch; got %+v, want %+v", got, st)
	}
}

func TestVorbisCommentRoundTrip(t *testing.T) {
	vc := &meta.VorbisComment{
		Vendor: "reference libFLAC 1.2.1",
		Tags:   [][2]string{{"ARTIST", "test"}, {"TITLE", "song"}},
	}
	buf := new(bytes.Buffer)
	if err := vc.Encode(buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := meta.NewVorbisComment(buf, buf.Len())
	if err != nil {
		t.Fatalf("NewVorbisComment: %v", err)
	}
	if !reflect.DeepEqual(got, vc) {
		t.Fatalf("round trip mismatch; got %+v, want %+v", got, vc)
	}
}

func TestVorbisCommentTooManyTags(t *testing.T) {
	buf := new(bytes.Buffer)
	buf.Write([]byte{0x01, 0x00, 0x00, 0x00}) // vendor length = 1
	buf.WriteByte('x')
	buf.Write([]byte{0x00, 0x00, 0x00, 0xff}) // huge tag count, little-endian
	_, err := meta.NewVorbisComment(buf, 9)
	if err != meta.ErrDeclaredBlockTooBig {
		t.Fatalf("expected ErrDeclaredBlockTooBig, got %v", err)
	}
}

func TestCueSheetRoundTrip(t *testing.T) {
	cs := &meta.CueSheet{
		MCN:            "1234567890123",
		NLeadInSamples: 88200,
		IsCompactDisc:  true,
		Tracks: []meta.CueSheetTrack{
			{Offset: 0, Num: 1, IsAudio: true, Indicies: []meta.CueSheetTrackIndex{{Offset: 0, Num: 1}}},
			{Offset: 2940, Num: 170, IsAudio: true},
		},
	}
	buf := new(bytes.Buffer)
	if err := cs.Encode(buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := meta.NewCueSheet(buf)
	if err != nil {
		t.Fatalf("NewCueSheet: %v", err)
	}
	if !reflect.DeepEqual(got, cs) {
		t.Fatalf("round trip mismatch; got %+v, want %+v", got, cs)
	}
}

func TestPictureRoundTrip(t *testing.T) {
	pic := &meta.Picture{
		Type:       3,
		MIME:       "image/jpeg",
		Desc:       "cover",
		Width:      100,
		Height:     100,
		ColorDepth: 24,
		Data:       []byte{0xFF, 0xD8, 0xFF},
	}
	buf := new(bytes.Buffer)
	if err := pic.Encode(buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := meta.NewPicture(buf)
	if err != nil {
		t.Fatalf("NewPicture: %v", err)
	}
	if !reflect.DeepEqual(got, pic) {
		t.Fatalf("round trip mismatch; got %+v, want %+v", got, pic)
	}
}

func TestBlockRoundTripPadding(t *testing.T) {
	block := &meta.Block{Header: meta.Header{Type: meta.TypePadding}, Body: nil}
	block.Header.Length = 10
	buf := new(bytes.Buffer)
	if err := block.Encode(buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := meta.NewBlock(buf)
	if err != nil {
		t.Fatalf("NewBlock: %v", err)
	}
	if got.Header.Type != meta.TypePadding || got.Header.Length != 10 {
		t.Fatalf("round trip mismatch; got %+v", got.Header)
	}
}
