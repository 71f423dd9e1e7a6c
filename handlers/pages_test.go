package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHomeListsFolders(t *testing.T) {
	h := NewTestHelper(t)
	h.AddFile(t, "rock", "song1.mp3", []byte("fake mp3"))
	h.AddFile(t, "jazz", "track.wav", []byte("fake wav"))

	status, body := h.GetBody(t, "/")

	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `href="/folder/jazz"`)
	assert.Contains(t, body, `href="/folder/rock"`)
	assert.Less(t, strings.Index(body, `data-folder="jazz"`), strings.Index(body, `data-folder="rock"`))
	assert.NotContains(t, body, "No Music Yet!")
}

func TestHomeEmptyLibrary(t *testing.T) {
	h := NewTestHelper(t)

	status, body := h.GetBody(t, "/")

	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "No Music Yet!")
	assert.NotContains(t, body, "folder-card")
}

func TestFolderPageRendersWidgets(t *testing.T) {
	h := NewTestHelper(t)
	h.AddFile(t, "chill-beats", "song-one.mp3", []byte("fake mp3"))
	h.AddFile(t, "chill-beats", "notes.txt", []byte("not audio"))

	status, body := h.GetBody(t, "/folder/chill-beats")

	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "chill beats")
	assert.Contains(t, body, "1 song to enjoy!")
	assert.Equal(t, 1, strings.Count(body, `class="player `))
	assert.Contains(t, body, "Song One")
	assert.Contains(t, body, `src="/audios/chill-beats/song-one.mp3"`)
	assert.Contains(t, body, "from-red-400 to-pink-500")
	assert.NotContains(t, body, "notes")
}

func TestFolderPagePluralAndColors(t *testing.T) {
	h := NewTestHelper(t)
	h.AddFile(t, "mix", "a.mp3", []byte("a"))
	h.AddFile(t, "mix", "b.ogg", []byte("b"))

	_, body := h.GetBody(t, "/folder/mix")

	assert.Contains(t, body, "2 songs to enjoy!")
	assert.Contains(t, body, "from-red-400 to-pink-500")
	assert.Contains(t, body, "from-blue-400 to-purple-500")
}

func TestFolderPageEmptyStates(t *testing.T) {
	h := NewTestHelper(t)
	h.AddFile(t, "docs", "readme.txt", []byte("text"))

	for _, path := range []string{"/folder/docs", "/folder/missing"} {
		t.Run(path, func(t *testing.T) {
			status, body := h.GetBody(t, path)

			assert.Equal(t, http.StatusOK, status)
			assert.Contains(t, body, "No Music Files!")
			assert.Contains(t, body, "0 songs to enjoy!")
			assert.Contains(t, body, "Back Home")
		})
	}
}

func TestFolderPageEscapedName(t *testing.T) {
	h := NewTestHelper(t)
	h.AddFile(t, "road trip", "highway.mp3", []byte("fake mp3"))

	_, home := h.GetBody(t, "/")
	assert.Contains(t, home, `href="/folder/road%20trip"`)

	status, body := h.GetBody(t, "/folder/road%20trip")

	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "road trip")
	assert.Contains(t, body, "1 song to enjoy!")
	assert.Contains(t, body, `src="/audios/road%20trip/highway.mp3"`)

	resp := h.Get(t, "/audios/road%20trip/highway.mp3", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
