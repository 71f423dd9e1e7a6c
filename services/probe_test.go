package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbeDurationWAV(t *testing.T) {
	root := t.TempDir()
	path := createTestFile(t, root, "jazz/tone.wav", createMinimalWAVFile(8000, 2))

	duration, err := ProbeDuration(path)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, duration.Seconds(), 0.1)
}

func TestProbeDurationUnsupported(t *testing.T) {
	root := t.TempDir()
	path := createTestFile(t, root, "jazz/voice.m4a", []byte("ftyp"))

	_, err := ProbeDuration(path)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestProbeDurationInvalidFiles(t *testing.T) {
	root := t.TempDir()

	tests := []string{"broken.wav", "broken.mp3", "broken.ogg"}
	for _, name := range tests {
		t.Run(name, func(t *testing.T) {
			path := createTestFile(t, root, name, []byte("definitely not audio"))
			duration, err := ProbeDuration(path)
			assert.Error(t, err)
			assert.Equal(t, time.Duration(0), duration)
		})
	}

	_, err := ProbeDuration(root + "/missing.mp3")
	assert.Error(t, err)
}
