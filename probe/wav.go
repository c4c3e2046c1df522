package probe

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"os"

	"github.com/poiesic/mediakg/core"
)

// ErrNotWAV is returned for audio that is not a RIFF/WAVE file.
var ErrNotWAV = errors.New("not a RIFF/WAVE file")

// WAVInfo holds the parameters read from a WAV header.
type WAVInfo struct {
	SampleRate uint32
	Channels   uint16
	ByteRate   uint32
	DataBytes  uint32
}

// Duration returns the playing time in seconds, rounded to milliseconds.
func (w WAVInfo) Duration() float64 {
	if w.ByteRate == 0 {
		return 0
	}
	return math.Round(float64(w.DataBytes)/float64(w.ByteRate)*1000) / 1000
}

// ReadWAV parses the fmt and data chunk headers of a RIFF/WAVE stream.
func ReadWAV(r io.Reader) (WAVInfo, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return WAVInfo{}, ErrNotWAV
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return WAVInfo{}, ErrNotWAV
	}

	var info WAVInfo
	haveFmt := false
	for {
		var header [8]byte
		if _, err := io.ReadFull(r, header[:]); err != nil {
			return WAVInfo{}, ErrNotWAV
		}
		id := string(header[0:4])
		size := binary.LittleEndian.Uint32(header[4:8])

		switch id {
		case "fmt ":
			if size < 16 {
				return WAVInfo{}, ErrNotWAV
			}
			var fmtChunk [16]byte
			if _, err := io.ReadFull(r, fmtChunk[:]); err != nil {
				return WAVInfo{}, ErrNotWAV
			}
			info.Channels = binary.LittleEndian.Uint16(fmtChunk[2:4])
			info.SampleRate = binary.LittleEndian.Uint32(fmtChunk[4:8])
			info.ByteRate = binary.LittleEndian.Uint32(fmtChunk[8:12])
			haveFmt = true
			if err := skip(r, int64(size-16)+int64(size&1)); err != nil {
				return WAVInfo{}, ErrNotWAV
			}
		case "data":
			if !haveFmt {
				return WAVInfo{}, ErrNotWAV
			}
			info.DataBytes = size
			return info, nil
		default:
			// Chunks are word aligned.
			if err := skip(r, int64(size)+int64(size&1)); err != nil {
				return WAVInfo{}, ErrNotWAV
			}
		}
	}
}

func skip(r io.Reader, n int64) error {
	if n == 0 {
		return nil
	}
	_, err := io.CopyN(io.Discard, r, n)
	return err
}

func probeWAV(path string, md core.Metadata) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := ReadWAV(f)
	if err != nil {
		return err
	}
	md[core.KeySampleRate] = info.SampleRate
	md[core.KeyChannels] = info.Channels
	md[core.KeyDuration] = info.Duration()
	md[core.KeyFormat] = "WAV"
	return nil
}
