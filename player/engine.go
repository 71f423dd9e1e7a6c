// Package player implements the per-file playback widget and the media
// engines it drives.
package player

// EventType names a notification emitted by a media engine
type EventType string

// Media engine notifications, named after the HTML media element events
const (
	EventTimeUpdate     EventType = "timeupdate"
	EventLoadedMetadata EventType = "loadedmetadata"
	EventEnded          EventType = "ended"
	EventError          EventType = "error"
	EventStalled        EventType = "stalled"
	EventPlaying        EventType = "playing"
)

// Event is a notification payload. Only the fields relevant to Type are set.
type Event struct {
	Type        EventType
	CurrentTime float64
	Duration    float64
	Err         string
}

// Handler receives engine notifications
type Handler func(Event)

// MediaEngine is the decode/playback facility a widget drives. Play is
// asynchronous: a nil error means the command was issued, not that playback
// started. Failures after that arrive as EventError.
type MediaEngine interface {
	Play() error
	Pause()
	SetCurrentTime(seconds float64)
	SetVolume(volume float64) // 0..1
	Download(href, filename string)

	// On registers h for event and returns the func that removes it
	On(event EventType, h Handler) (cancel func())
}
