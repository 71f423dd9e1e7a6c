package services

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/vorbis"
	"github.com/go-audio/wav"
)

// ErrUnsupportedFormat is returned when no decoder can measure a file
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// ProbeDuration measures the playback length of an audio file by decoding its
// headers. M4A has no pure-Go decoder and always reports ErrUnsupportedFormat.
func ProbeDuration(filePath string) (time.Duration, error) {
	switch filepath.Ext(filePath) {
	case ".wav":
		return probeWAV(filePath)
	case ".mp3":
		return probeStream(filePath, mp3.Decode)
	case ".ogg":
		return probeStream(filePath, vorbis.Decode)
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filePath))
	}
}

func probeWAV(filePath string) (time.Duration, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		return 0, fmt.Errorf("%w: invalid wav file", ErrUnsupportedFormat)
	}

	duration, err := decoder.Duration()
	if err != nil {
		return 0, fmt.Errorf("read wav duration: %w", err)
	}
	return duration, nil
}

func probeStream(filePath string, decode func(rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error)) (time.Duration, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return 0, err
	}

	streamer, format, err := decode(file)
	if err != nil {
		file.Close()
		return 0, fmt.Errorf("decode %s: %w", filepath.Base(filePath), err)
	}
	defer streamer.Close()

	return format.SampleRate.D(streamer.Len()), nil
}
