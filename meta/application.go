package meta

import (
	"encoding/binary"
	"io"
)

// RegisteredApplications maps registered application IDs (as seen on the
// wire, big-endian four-byte codes) to the name of the application that
// registered them with Xiph.org.
var RegisteredApplications = map[uint32]string{
	0x41544348: "FlacFile",
	0x42534F4C: "beSolo",
	0x42554753: "Bugs Player",
	0x43756573: "GoldWave cue points",
	0x46696361: "CUE Splitter",
	0x46746F6C: "flac-tools",
	0x4D4F5442: "MOTB MetaCzar",
	0x4D505345: "MP3Stream Editor",
	0x4D754D4C: "MusicML",
	0x52494646: "Sound Devices RIFF",
	0x5346464C: "Sound Font FLAC",
	0x534F4E59: "Sony Creative Software",
	0x53514545: "flacsqueeze",
	0x54745756: "TwistedWave",
	0x55495453: "UITS embedding",
	0x61696666: "FLAC AIFF",
	0x696D6167: "flac-image",
	0x70656D20: "Parseable Embedded Extensible Metadata",
	0x71667374: "QFLAC Studio",
	0x72696666: "FLAC RIFF",
	0x74756E65: "TagTune",
	0x78626174: "XBAT",
	0x786D6364: "xmcd",
}

// Application is the body of an APPLICATION metadata block, used by third
// party applications to store their own data in a FLAC stream.
type Application struct {
	// Registered application ID.
	ID uint32
	// Application-specific data.
	Data []byte
}

// NewApplication parses an APPLICATION metadata block body of the given
// length.
func NewApplication(r io.Reader, length int) (*Application, error) {
	app := new(Application)
	if err := binary.Read(r, binary.BigEndian, &app.ID); err != nil {
		return nil, err
	}
	dataLen := length - 4
	if dataLen > 0 {
		app.Data = make([]byte, dataLen)
		if _, err := io.ReadFull(r, app.Data); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// Encode writes an APPLICATION metadata block body.
func (app *Application) Encode(w io.Writer) error {
	if err := binary.Write(w, binary.BigEndian, app.ID); err != nil {
		return err
	}
	_, err := w.Write(app.Data)
	return err
}
