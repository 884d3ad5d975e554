// flac-frame prints the header of every frame in a FLAC file.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"

	"github.com/gofreelib/flac"
)

func main() {
	flag.Parse()
	for _, filePath := range flag.Args() {
		if err := flacFrame(filePath); err != nil {
			log.Println(err)
		}
	}
}

func flacFrame(filePath string) error {
	s, err := flac.Open(filePath)
	if err != nil {
		return err
	}
	defer s.Close()

	for num := 0; ; num++ {
		f, err := s.Next()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		bps := f.Header.BitsPerSample
		if bps == 0 {
			bps = s.Info.BitsPerSample
		}
		fmt.Printf("frame %d: blocksize=%d channels=%v bps=%d samplerate=%d\n",
			num, f.Header.BlockSize, f.Header.Channels, bps, f.Header.SampleRate)
	}
}
