package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"soundbox/services"
	"soundbox/types"
	"soundbox/websocket"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

// TestHelper runs the handlers behind a real HTTP server over a temporary library
type TestHelper struct {
	Server    *httptest.Server
	AudiosDir string
	Library   services.Library
	Hub       websocket.Hub
	Router    *gin.Engine

	cancel  context.CancelFunc
	hubDone chan struct{}
}

// NewTestHelper creates an empty library and serves it. Add content with AddFile
// or AddFolder.
func NewTestHelper(t *testing.T) *TestHelper {
	t.Helper()
	gin.SetMode(gin.TestMode)

	audiosDir := filepath.Join(t.TempDir(), "audios")
	require.NoError(t, os.MkdirAll(audiosDir, 0755))

	library := services.NewLibrary(audiosDir, nil)
	hub := websocket.NewHub(nil)

	ctx, cancel := context.WithCancel(context.Background())
	hubDone := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(hubDone)
	}()

	router := setupTestRouter(t, library, hub)

	h := &TestHelper{
		Server:    httptest.NewServer(router),
		AudiosDir: audiosDir,
		Library:   library,
		Hub:       hub,
		Router:    router,
		cancel:    cancel,
		hubDone:   hubDone,
	}
	t.Cleanup(h.Cleanup)
	return h
}

// Cleanup stops the hub and the server
func (h *TestHelper) Cleanup() {
	h.cancel()
	<-h.hubDone
	h.Server.Close()
}

// setupTestRouter mirrors the production routes without request logging
func setupTestRouter(t *testing.T, library services.Library, hub websocket.Hub) *gin.Engine {
	t.Helper()

	tmpl, err := LoadTemplates()
	require.NoError(t, err)

	pages := NewPageHandler(library)
	files := NewFileHandler(library, services.NewIndexer(library, 2, nil), nil)
	players := NewPlayerHandler(library, hub, nil)
	health := NewHealthHandler(library, hub)

	router := gin.New()
	router.Use(gin.Recovery())
	router.SetHTMLTemplate(tmpl)

	router.GET("/health", health.HealthCheck)
	router.GET("/", pages.Home)
	router.GET("/folder/:name", pages.Folder)
	router.GET("/audios/*filepath", files.StreamFile)
	router.HEAD("/audios/*filepath", files.StreamFile)
	router.GET("/ws/player", players.Connect)
	router.GET("/ws/library", players.LibraryUpdates)

	api := router.Group("/api")
	{
		api.GET("/folders", files.ListFolders)
		api.GET("/folders/:name/files", files.ListFiles)
	}
	return router
}

// AddFolder creates an empty folder in the library
func (h *TestHelper) AddFolder(t *testing.T, name string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(h.AudiosDir, name), 0755))
}

// AddFile writes content to folder/name in the library
func (h *TestHelper) AddFile(t *testing.T, folder, name string, content []byte) {
	t.Helper()
	h.AddFolder(t, folder)
	require.NoError(t, os.WriteFile(filepath.Join(h.AudiosDir, folder, name), content, 0644))
}

// Get performs a GET request against the test server
func (h *TestHelper) Get(t *testing.T, path string, header http.Header) *http.Response {
	t.Helper()
	return h.Do(t, http.MethodGet, path, header)
}

// Do performs a request against the test server
func (h *TestHelper) Do(t *testing.T, method, path string, header http.Header) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, h.Server.URL+path, nil)
	require.NoError(t, err)
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// GetBody performs a GET request and returns status and body
func (h *TestHelper) GetBody(t *testing.T, path string) (int, string) {
	t.Helper()
	resp := h.Get(t, path, nil)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

// GetJSON performs a GET request and decodes the JSON body into v
func (h *TestHelper) GetJSON(t *testing.T, path string, v interface{}) int {
	t.Helper()
	resp := h.Get(t, path, nil)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	return resp.StatusCode
}

// DialWS opens a WebSocket connection to path
func (h *TestHelper) DialWS(t *testing.T, path string) (*gorillaws.Conn, *http.Response, error) {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(h.Server.URL, "http") + path
	conn, resp, err := gorillaws.DefaultDialer.Dial(wsURL, nil)
	if conn != nil {
		t.Cleanup(func() { conn.Close() })
	}
	return conn, resp, err
}

// readUntil reads messages until match accepts one or the deadline passes
func readUntil(t *testing.T, conn *gorillaws.Conn, match func(types.Message) bool) types.Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var msg types.Message
		require.NoError(t, conn.ReadJSON(&msg))
		if match(msg) {
			return msg
		}
	}
}

func isCommand(name string) func(types.Message) bool {
	return func(msg types.Message) bool {
		return msg.Type == types.MessageTypeCommand && msg.Name == name
	}
}

func isState(match func(types.TransportView) bool) func(types.Message) bool {
	return func(msg types.Message) bool {
		return msg.Type == types.MessageTypeState && msg.State != nil && match(*msg.State)
	}
}
