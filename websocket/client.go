package websocket

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"soundbox/types"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 4096
	sendBuffer     = 256
)

// ErrClientClosed is returned by Send once the client has been unregistered
var ErrClientClosed = errors.New("websocket client closed")

// ErrSendBufferFull is returned by Send when the write pump is not keeping up
var ErrSendBufferFull = errors.New("websocket send buffer full")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || sameHost(origin, r.Host)
	},
}

// Client is one WebSocket connection subscribed to a topic
type Client struct {
	hub   Hub
	conn  *websocket.Conn
	send  chan types.Message
	topic string
	log   *zap.Logger

	mu     sync.Mutex
	closed bool

	onMessage func(types.Message)
	onClose   func()
}

// NewClient creates a new WebSocket client for topic
func NewClient(hub Hub, conn *websocket.Conn, topic string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		hub:   hub,
		conn:  conn,
		send:  make(chan types.Message, sendBuffer),
		topic: topic,
		log:   log,
	}
}

// Topic returns the topic the client is registered under
func (c *Client) Topic() string {
	return c.topic
}

// OnMessage sets the handler for inbound messages. It runs on the read pump.
func (c *Client) OnMessage(fn func(types.Message)) {
	c.onMessage = fn
}

// OnClose sets the func run on the read pump once the connection ends
func (c *Client) OnClose(fn func()) {
	c.onClose = fn
}

// Send queues a message for the write pump without blocking
func (c *Client) Send(msg types.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClientClosed
	}
	select {
	case c.send <- msg:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// close stops further sends and ends the write pump
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// StartPumps starts the read and write pumps for the client
func (c *Client) StartPumps() {
	go c.writePump()
	go c.readPump()
}

// readPump handles reading from the WebSocket connection
func (c *Client) readPump() {
	defer func() {
		if c.onClose != nil {
			c.onClose()
		}
		c.hub.UnregisterClient(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg types.Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.log.Warn("websocket read error", zap.Error(err))
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))

		if c.onMessage != nil {
			c.onMessage(msg)
		}
	}
}

// writePump handles writing to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.log.Warn("websocket write error", zap.Error(err))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Upgrade upgrades an HTTP request to a WebSocket connection
func Upgrade(w http.ResponseWriter, r *http.Request) (*websocket.Conn, error) {
	return upgrader.Upgrade(w, r, nil)
}
