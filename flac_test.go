package flac_test

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/gofreelib/flac"
	"github.com/gofreelib/flac/meta"
)

func sineWave(n int, amp int32) []int32 {
	out := make([]int32, n)
	for i := range out {
		out[i] = int32((i%17)-8) * (amp / 8)
	}
	return out
}

func TestEncodeDecodeRoundTripMono(t *testing.T) {
	info := &meta.StreamInfo{
		BlockSizeMin:  64,
		BlockSizeMax:  64,
		SampleRate:    44100,
		NChannels:     1,
		BitsPerSample: 16,
	}
	samples := [][]int32{sineWave(64, 1000)}

	buf := new(bytes.Buffer)
	enc, err := flac.NewEncoder(buf, info)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	if err := enc.WriteFrame(samples); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s, err := flac.New(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	f, err := s.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if !reflect.DeepEqual(f.Channels[0], samples[0]) {
		t.Fatalf("round trip mismatch; got %v, want %v", f.Channels[0], samples[0])
	}
}

func TestEncodeDecodeRoundTripStereo(t *testing.T) {
	info := &meta.StreamInfo{
		BlockSizeMin:  64,
		BlockSizeMax:  64,
		SampleRate:    44100,
		NChannels:     2,
		BitsPerSample: 16,
	}
	left := sineWave(64, 2000)
	right := sineWave(64, 1990)
	samples := [][]int32{left, right}

	buf := new(bytes.Buffer)
	enc, err := flac.NewEncoder(buf, info)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	if err := enc.WriteFrame(samples); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s, err := flac.New(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	f, err := s.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if !reflect.DeepEqual(f.Channels[0], left) || !reflect.DeepEqual(f.Channels[1], right) {
		t.Fatalf("round trip mismatch; got left=%v right=%v", f.Channels[0], f.Channels[1])
	}
}

func TestEncodeDecodeWithExtraBlocks(t *testing.T) {
	info := &meta.StreamInfo{
		BlockSizeMin:  32,
		BlockSizeMax:  32,
		SampleRate:    48000,
		NChannels:     1,
		BitsPerSample: 16,
	}
	blocks := []*meta.Block{
		{Header: meta.Header{Type: meta.TypeVorbisComment}, Body: &meta.VorbisComment{Vendor: "test", Tags: [][2]string{{"TITLE", "x"}}}},
	}
	samples := [][]int32{make([]int32, 32)}

	buf := new(bytes.Buffer)
	enc, err := flac.NewEncoder(buf, info, blocks...)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	if err := enc.WriteFrame(samples); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s, err := flac.New(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if len(s.Blocks) != 2 {
		t.Fatalf("expected 2 metadata blocks, got %d", len(s.Blocks))
	}
	vc, ok := s.Blocks[1].Body.(*meta.VorbisComment)
	if !ok || vc.Tags[0][1] != "x" {
		t.Fatalf("vorbis comment round trip mismatch: %+v", s.Blocks[1].Body)
	}
}

func TestWithMetadataHandler(t *testing.T) {
	info := &meta.StreamInfo{
		BlockSizeMin:  16,
		BlockSizeMax:  16,
		SampleRate:    44100,
		NChannels:     1,
		BitsPerSample: 16,
	}
	blocks := []*meta.Block{
		{Header: meta.Header{Type: meta.TypePadding}, Body: nil},
	}
	buf := new(bytes.Buffer)
	enc, err := flac.NewEncoder(buf, info, blocks...)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	if err := enc.WriteFrame([][]int32{make([]int32, 16)}); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	var seen []meta.BlockType
	_, err = flac.New(bytes.NewReader(buf.Bytes()), flac.WithMetadataHandler(func(b *meta.Block) {
		seen = append(seen, b.Header.Type)
	}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if len(seen) != 2 || seen[0] != meta.TypeStreamInfo || seen[1] != meta.TypePadding {
		t.Fatalf("unexpected metadata handler callback sequence: %v", seen)
	}
}

func TestStreamSeek(t *testing.T) {
	info := &meta.StreamInfo{
		BlockSizeMin:  32,
		BlockSizeMax:  32,
		SampleRate:    44100,
		NChannels:     1,
		BitsPerSample: 16,
	}
	buf := new(bytes.Buffer)
	enc, err := flac.NewEncoder(buf, info)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	const nframes = 4
	for i := 0; i < nframes; i++ {
		if err := enc.WriteFrame([][]int32{sineWave(32, 500)}); err != nil {
			t.Fatalf("WriteFrame: %v", err)
		}
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s, err := flac.New(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := s.Seek(96) // start of the fourth frame (frames of 32 samples each)
	if err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if got != 96 {
		t.Fatalf("Seek returned first sample %d, want 96", got)
	}
	f, err := s.Next()
	if err != nil {
		t.Fatalf("Next after Seek: %v", err)
	}
	if !reflect.DeepEqual(f.Channels[0], sineWave(32, 500)) {
		t.Fatalf("frame after seek mismatch: %v", f.Channels[0])
	}
}

func TestLooseMidSideStereoReusesAssignment(t *testing.T) {
	info := &meta.StreamInfo{
		BlockSizeMin:  32,
		BlockSizeMax:  32,
		SampleRate:    8000, // midSideReuse = floor(8000*0.4/32) = 100 at this block size
		NChannels:     2,
		BitsPerSample: 16,
	}
	left := sineWave(32, 2000)
	right := sineWave(32, 1990)

	buf := new(bytes.Buffer)
	enc, err := flac.NewEncoder(buf, info)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	enc.LooseMidSideStereo = true
	for i := 0; i < 3; i++ {
		if err := enc.WriteFrame([][]int32{left, right}); err != nil {
			t.Fatalf("WriteFrame %d: %v", i, err)
		}
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s, err := flac.New(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < 3; i++ {
		f, err := s.Next()
		if err != nil {
			t.Fatalf("Next %d: %v", i, err)
		}
		if !reflect.DeepEqual(f.Channels[0], left) || !reflect.DeepEqual(f.Channels[1], right) {
			t.Fatalf("frame %d round trip mismatch with LooseMidSideStereo enabled", i)
		}
	}
}

func TestNewSkipsID3v2(t *testing.T) {
	info := &meta.StreamInfo{
		BlockSizeMin:  16,
		BlockSizeMax:  16,
		SampleRate:    44100,
		NChannels:     1,
		BitsPerSample: 16,
	}
	flacBuf := new(bytes.Buffer)
	enc, err := flac.NewEncoder(flacBuf, info)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	if err := enc.WriteFrame([][]int32{make([]int32, 16)}); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	tagBody := []byte("some prepended tag data")
	id3 := []byte{'I', 'D', '3', 3, 0, 0, 0, 0, 0, byte(len(tagBody))}
	full := append(append([]byte{}, id3...), tagBody...)
	full = append(full, flacBuf.Bytes()...)

	s, err := flac.New(bytes.NewReader(full))
	if err != nil {
		t.Fatalf("New with prepended ID3v2 tag: %v", err)
	}
	if s.Info.NChannels != 1 {
		t.Fatalf("unexpected STREAMINFO after ID3v2 skip: %+v", s.Info)
	}
}
