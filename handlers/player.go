package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"soundbox/player"
	"soundbox/services"
	"soundbox/types"
	"soundbox/websocket"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PlayerHandler runs one playback widget per WebSocket connection
type PlayerHandler struct {
	library services.Library
	hub     websocket.Hub
	log     *zap.Logger
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(library services.Library, hub websocket.Hub, log *zap.Logger) *PlayerHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &PlayerHandler{
		library: library,
		hub:     hub,
		log:     log.Named("player"),
	}
}

// Connect mounts a widget for ?folder=&file= and drives it from the socket
// until the browser goes away
func (h *PlayerHandler) Connect(c *gin.Context) {
	audio, ok := h.library.Lookup(c.Query("folder"), c.Query("file"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "file not found",
		})
		return
	}
	index, _ := strconv.Atoi(c.DefaultQuery("index", "0"))

	conn, err := websocket.Upgrade(c.Writer, c.Request)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	log := h.log.With(zap.String("session", uuid.NewString()), zap.String("file", audio.Path))
	client := websocket.NewClient(h.hub, conn, websocket.TopicPlayer, log)
	engine := player.NewRemoteEngine(client, log)
	widget := player.NewWidget(audio, index, engine, log)

	widget.OnChange(func(view types.TransportView) {
		err := client.Send(types.Message{
			Type:      types.MessageTypeState,
			State:     &view,
			Timestamp: time.Now(),
		})
		if err != nil && !errors.Is(err, websocket.ErrClientClosed) {
			log.Debug("state update dropped", zap.Error(err))
		}
	})

	client.OnMessage(func(msg types.Message) {
		switch msg.Type {
		case types.MessageTypeEvent:
			engine.Dispatch(msg)
		case types.MessageTypeInput:
			if err := widget.HandleInput(msg); err != nil {
				log.Debug("ignoring input", zap.Error(err))
			}
		default:
			log.Debug("ignoring message", zap.String("type", msg.Type))
		}
	})
	client.OnClose(widget.Unmount)

	h.hub.RegisterClient(client)
	widget.Mount()
	client.StartPumps()

	log.Info("player session started")
}

// LibraryUpdates subscribes the socket to library change notifications
func (h *PlayerHandler) LibraryUpdates(c *gin.Context) {
	conn, err := websocket.Upgrade(c.Writer, c.Request)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := websocket.NewClient(h.hub, conn, websocket.TopicLibrary, h.log)
	h.hub.RegisterClient(client)
	client.StartPumps()
}
