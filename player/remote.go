package player

import (
	"fmt"
	"time"

	"soundbox/types"

	"go.uber.org/zap"
)

// Media engine commands sent to the browser
const (
	CommandPlay     = "play"
	CommandPause    = "pause"
	CommandSeek     = "seek"
	CommandVolume   = "volume"
	CommandDownload = "download"
)

// Sender delivers a message to the browser hosting the media element
type Sender interface {
	Send(msg types.Message) error
}

// RemoteEngine is a MediaEngine whose media element lives in a browser. Commands
// are sent as "command" messages; notifications come back through Dispatch.
type RemoteEngine struct {
	sender    Sender
	listeners map[EventType]map[int]Handler
	nextID    int
	log       *zap.Logger
}

// NewRemoteEngine creates an engine that talks through sender
func NewRemoteEngine(sender Sender, log *zap.Logger) *RemoteEngine {
	if log == nil {
		log = zap.NewNop()
	}
	return &RemoteEngine{
		sender:    sender,
		listeners: make(map[EventType]map[int]Handler),
		log:       log,
	}
}

func (e *RemoteEngine) command(msg types.Message) error {
	msg.Type = types.MessageTypeCommand
	msg.Timestamp = time.Now()
	return e.sender.Send(msg)
}

// Play issues the play command. The browser reports a rejected play() as an
// error event.
func (e *RemoteEngine) Play() error {
	if err := e.command(types.Message{Name: CommandPlay}); err != nil {
		return fmt.Errorf("send play: %w", err)
	}
	return nil
}

func (e *RemoteEngine) Pause() {
	e.bestEffort(types.Message{Name: CommandPause})
}

func (e *RemoteEngine) SetCurrentTime(seconds float64) {
	e.bestEffort(types.Message{Name: CommandSeek, CurrentTime: seconds})
}

func (e *RemoteEngine) SetVolume(volume float64) {
	e.bestEffort(types.Message{Name: CommandVolume, Value: volume})
}

func (e *RemoteEngine) Download(href, filename string) {
	e.bestEffort(types.Message{Name: CommandDownload, Href: href, Filename: filename})
}

// bestEffort sends a command whose loss only costs the browser one update
func (e *RemoteEngine) bestEffort(msg types.Message) {
	if err := e.command(msg); err != nil {
		e.log.Debug("command dropped", zap.String("command", msg.Name), zap.Error(err))
	}
}

// On registers h for event
func (e *RemoteEngine) On(event EventType, h Handler) func() {
	if e.listeners[event] == nil {
		e.listeners[event] = make(map[int]Handler)
	}
	id := e.nextID
	e.nextID++
	e.listeners[event][id] = h

	return func() {
		delete(e.listeners[event], id)
		if len(e.listeners[event]) == 0 {
			delete(e.listeners, event)
		}
	}
}

// ListenerCount returns the number of live subscriptions
func (e *RemoteEngine) ListenerCount() int {
	n := 0
	for _, hs := range e.listeners {
		n += len(hs)
	}
	return n
}

// Dispatch routes an inbound "event" message to its listeners. It reports
// whether any listener received it.
func (e *RemoteEngine) Dispatch(msg types.Message) bool {
	if msg.Type != types.MessageTypeEvent {
		return false
	}
	handlers := e.listeners[EventType(msg.Name)]
	if len(handlers) == 0 {
		return false
	}

	event := Event{
		Type:        EventType(msg.Name),
		CurrentTime: msg.CurrentTime,
		Duration:    msg.Duration,
		Err:         msg.Error,
	}
	for _, h := range handlers {
		h(event)
	}
	return true
}
