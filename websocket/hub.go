package websocket

import (
	"context"
	"net/url"
	"sync"
	"time"

	"soundbox/types"

	"go.uber.org/zap"
)

// Topics clients subscribe to
const (
	TopicLibrary = "library"
	TopicPlayer  = "player"
)

// Hub interface defines the methods for managing WebSocket connections
type Hub interface {
	Run(ctx context.Context)
	Broadcast(topic string, msg types.Message)
	RegisterClient(client *Client)
	UnregisterClient(client *Client)
	ClientCount(topic string) int
}

type broadcast struct {
	topic string
	msg   types.Message
}

// hub maintains the set of active clients and broadcasts messages to them
type hub struct {
	// Registered clients grouped by topic
	clients map[string]map[*Client]bool

	broadcast  chan broadcast
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu  sync.RWMutex
	log *zap.Logger
}

// NewHub creates a new WebSocket hub
func NewHub(log *zap.Logger) Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &hub{
		clients:    make(map[string]map[*Client]bool),
		broadcast:  make(chan broadcast, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log.Named("hub"),
	}
}

// Run starts the hub's main event loop. When ctx ends every client is closed.
func (h *hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for topic, clients := range h.clients {
				for client := range clients {
					client.close()
				}
				delete(h.clients, topic)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.topic] == nil {
				h.clients[client.topic] = make(map[*Client]bool)
			}
			h.clients[client.topic][client] = true
			h.mu.Unlock()
			h.log.Debug("websocket client connected", zap.String("topic", client.topic))

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()
			h.log.Debug("websocket client disconnected", zap.String("topic", client.topic))

		case b := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients[b.topic] {
				if err := client.Send(b.msg); err != nil {
					h.remove(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// remove drops a client; callers hold h.mu
func (h *hub) remove(client *Client) {
	if clients, ok := h.clients[client.topic]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			client.close()
			if len(clients) == 0 {
				delete(h.clients, client.topic)
			}
		}
	}
}

// Broadcast sends msg to every client of topic
func (h *hub) Broadcast(topic string, msg types.Message) {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	select {
	case h.broadcast <- broadcast{topic: topic, msg: msg}:
	case <-h.done:
	default:
		h.log.Warn("websocket broadcast channel full, dropping message", zap.String("topic", topic))
	}
}

// RegisterClient registers a new client with the hub
func (h *hub) RegisterClient(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.close()
	}
}

// UnregisterClient unregisters a client from the hub
func (h *hub) UnregisterClient(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
		client.close()
	}
}

// ClientCount returns the number of clients subscribed to topic
func (h *hub) ClientCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[topic])
}

func sameHost(origin, host string) bool {
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return u.Host == host
}
