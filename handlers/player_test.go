package handlers

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"soundbox/types"
	"soundbox/websocket"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayerSession(t *testing.T) {
	h := NewTestHelper(t)
	h.AddFile(t, "chill-beats", "song-one.mp3", []byte("fake mp3"))

	conn, _, err := h.DialWS(t, "/ws/player?folder=chill-beats&file=song-one.mp3&index=1")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return h.Hub.ClientCount(websocket.TopicPlayer) == 1 }, 2*time.Second, 10*time.Millisecond)

	// mounting writes the initial volume and publishes the first view
	volume := readUntil(t, conn, isCommand("volume"))
	assert.Equal(t, 0.5, volume.Value)
	initial := readUntil(t, conn, isState(func(types.TransportView) bool { return true }))
	assert.False(t, initial.State.IsPlaying)
	assert.Equal(t, 50, initial.State.Volume)
	assert.Equal(t, "Song One", initial.State.DisplayName)
	assert.Equal(t, "from-blue-400 to-purple-500", initial.State.ColorClass)
	assert.Equal(t, "0:00", initial.State.Elapsed)

	require.NoError(t, conn.WriteJSON(types.Message{Type: types.MessageTypeEvent, Name: "loadedmetadata", Duration: 200}))
	readUntil(t, conn, isState(func(v types.TransportView) bool { return v.Total == "3:20" }))

	require.NoError(t, conn.WriteJSON(types.Message{Type: types.MessageTypeInput, Name: "toggle"}))
	readUntil(t, conn, isCommand("play"))
	readUntil(t, conn, isState(func(v types.TransportView) bool { return v.IsPlaying }))

	require.NoError(t, conn.WriteJSON(types.Message{Type: types.MessageTypeInput, Name: "seek", Value: 50}))
	seek := readUntil(t, conn, isCommand("seek"))
	assert.Equal(t, 100.0, seek.CurrentTime)
	seeked := readUntil(t, conn, isState(func(v types.TransportView) bool { return v.CurrentTime == 100 }))
	assert.True(t, seeked.State.IsPlaying)
	assert.Equal(t, "1:40", seeked.State.Elapsed)
	assert.Equal(t, 50.0, seeked.State.SeekPercent)

	require.NoError(t, conn.WriteJSON(types.Message{Type: types.MessageTypeInput, Name: "volume", Value: 0}))
	muted := readUntil(t, conn, isCommand("volume"))
	assert.Equal(t, 0.0, muted.Value)

	require.NoError(t, conn.WriteJSON(types.Message{Type: types.MessageTypeEvent, Name: "error", Error: "decode failed"}))
	failed := readUntil(t, conn, isState(func(v types.TransportView) bool { return v.Error != "" }))
	assert.False(t, failed.State.IsPlaying)
	assert.Equal(t, "decode failed", failed.State.Error)

	require.NoError(t, conn.WriteJSON(types.Message{Type: types.MessageTypeInput, Name: "download"}))
	download := readUntil(t, conn, isCommand("download"))
	assert.Equal(t, "/audios/chill-beats/song-one.mp3", download.Href)
	assert.Equal(t, "song-one.mp3", download.Filename)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return h.Hub.ClientCount(websocket.TopicPlayer) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestPlayerSessionIgnoresUnknownMessages(t *testing.T) {
	h := NewTestHelper(t)
	h.AddFile(t, "rock", "song1.mp3", []byte("fake mp3"))

	conn, _, err := h.DialWS(t, "/ws/player?folder=rock&file=song1.mp3")
	require.NoError(t, err)
	readUntil(t, conn, isState(func(types.TransportView) bool { return true }))

	require.NoError(t, conn.WriteJSON(types.Message{Type: types.MessageTypeInput, Name: "rewind"}))
	require.NoError(t, conn.WriteJSON(types.Message{Type: "bogus"}))
	require.NoError(t, conn.WriteJSON(types.Message{Type: types.MessageTypeInput, Name: "toggle"}))

	// the session survives and keeps handling input
	readUntil(t, conn, isCommand("play"))
}

func TestPlayerSessionDottedNames(t *testing.T) {
	h := NewTestHelper(t)
	h.AddFile(t, "Best of...", "Wait...what.mp3", []byte("fake mp3"))

	query := url.Values{"folder": {"Best of..."}, "file": {"Wait...what.mp3"}}
	conn, _, err := h.DialWS(t, "/ws/player?"+query.Encode())
	require.NoError(t, err)

	initial := readUntil(t, conn, isState(func(types.TransportView) bool { return true }))
	assert.Equal(t, "Wait...What", initial.State.DisplayName)

	require.NoError(t, conn.WriteJSON(types.Message{Type: types.MessageTypeInput, Name: "download"}))
	download := readUntil(t, conn, isCommand("download"))
	assert.Equal(t, "/audios/Best%20of.../Wait...what.mp3", download.Href)
}

func TestPlayerSessionUnknownFile(t *testing.T) {
	h := NewTestHelper(t)
	h.AddFile(t, "rock", "song1.mp3", []byte("fake mp3"))

	for _, query := range []string{
		"?folder=rock&file=missing.mp3",
		"?folder=rock&file=..%2Fsecret.mp3",
		"?folder=rock",
	} {
		_, resp, err := h.DialWS(t, "/ws/player"+query)
		require.Error(t, err, query)
		require.NotNil(t, resp, query)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, query)
	}
	assert.Equal(t, 0, h.Hub.ClientCount(websocket.TopicPlayer))
}

func TestLibraryUpdates(t *testing.T) {
	h := NewTestHelper(t)

	conn, _, err := h.DialWS(t, "/ws/library")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return h.Hub.ClientCount(websocket.TopicLibrary) == 1 }, 2*time.Second, 10*time.Millisecond)

	h.Hub.Broadcast(websocket.TopicLibrary, types.Message{Type: types.MessageTypeLibrary})

	msg := readUntil(t, conn, func(types.Message) bool { return true })
	assert.Equal(t, types.MessageTypeLibrary, msg.Type)
}
