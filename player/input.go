package player

import (
	"errors"
	"fmt"

	"soundbox/types"
)

// User interactions a browser may forward to a widget
const (
	InputToggle   = "toggle"
	InputSeek     = "seek"
	InputVolume   = "volume"
	InputDownload = "download"
)

// ErrUnknownInput is returned for input names the widget does not handle
var ErrUnknownInput = errors.New("unknown input")

// HandleInput applies one "input" message to the widget
func (w *Widget) HandleInput(msg types.Message) error {
	switch msg.Name {
	case InputToggle:
		w.TogglePlay()
	case InputSeek:
		w.Seek(msg.Value)
	case InputVolume:
		w.SetVolume(msg.Value)
	case InputDownload:
		w.Download()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownInput, msg.Name)
	}
	return nil
}
