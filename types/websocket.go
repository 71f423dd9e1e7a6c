package types

import "time"

// Message types exchanged over WebSocket connections
const (
	MessageTypeEvent   = "event"   // browser -> server, media element notification
	MessageTypeInput   = "input"   // browser -> server, user interaction
	MessageTypeCommand = "command" // server -> browser, media element command
	MessageTypeState   = "state"   // server -> browser, rendered transport state
	MessageTypeLibrary = "library" // server -> browser, library contents changed
)

// Message is the single envelope used on every WebSocket endpoint
type Message struct {
	Type        string         `json:"type"`
	Name        string         `json:"name,omitempty"`  // event, input or command name
	Value       float64        `json:"value"`           // seek percentage, volume, or 0..1 engine volume
	CurrentTime float64        `json:"currentTime"`     // seconds, for timeupdate/seek
	Duration    float64        `json:"duration"`        // seconds, for loadedmetadata
	Href        string         `json:"href,omitempty"`  // download target
	Filename    string         `json:"filename,omitempty"`
	Error       string         `json:"error,omitempty"`
	State       *TransportView `json:"state,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
}

// TransportView is the rendered transport state of one playback widget
type TransportView struct {
	IsPlaying   bool    `json:"isPlaying"`
	CurrentTime float64 `json:"currentTime"`
	Duration    float64 `json:"duration"`
	Volume      int     `json:"volume"`
	Elapsed     string  `json:"elapsed"`
	Total       string  `json:"total"`
	SeekPercent float64 `json:"seekPercent"`
	DisplayName string  `json:"displayName"`
	ColorClass  string  `json:"colorClass"`
	Stalled     bool    `json:"stalled"`
	Error       string  `json:"error,omitempty"`
}
