// flac2wav is a tool which converts FLAC files to WAV files.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/gofreelib/flac"
	"github.com/mewkiz/pkg/osutil"
	"github.com/mewkiz/pkg/pathutil"
)

var flagForce bool

func init() {
	flag.BoolVar(&flagForce, "f", false, "Force overwrite.")
}

func main() {
	flag.Parse()
	for _, path := range flag.Args() {
		if err := flac2wav(path); err != nil {
			log.Fatal(err)
		}
	}
}

// flac2wav converts the provided FLAC file to a WAV file.
func flac2wav(path string) error {
	stream, err := flac.Open(path)
	if err != nil {
		return err
	}
	defer stream.Close()

	wavPath := pathutil.TrimExt(path) + ".wav"
	if !flagForce && osutil.Exists(wavPath) {
		return fmt.Errorf("the file %q exists already", wavPath)
	}
	fw, err := os.Create(wavPath)
	if err != nil {
		return err
	}
	defer fw.Close()

	nchannels := int(stream.Info.NChannels)
	bps := int(stream.Info.BitsPerSample)
	enc := wav.NewEncoder(fw, int(stream.Info.SampleRate), bps, nchannels, 1)
	defer enc.Close()

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: nchannels,
			SampleRate:  int(stream.Info.SampleRate),
		},
		SourceBitDepth: bps,
	}
	for {
		f, err := stream.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return err
		}
		blockSize := int(f.Header.BlockSize)
		buf.Data = buf.Data[:0]
		for i := 0; i < blockSize; i++ {
			for ch := 0; ch < nchannels; ch++ {
				buf.Data = append(buf.Data, int(f.Channels[ch][i]))
			}
		}
		if err := enc.Write(buf); err != nil {
			return err
		}
	}
	return nil
}
