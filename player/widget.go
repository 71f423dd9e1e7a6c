package player

import (
	"math"

	"soundbox/services"
	"soundbox/types"

	"go.uber.org/zap"
)

// DefaultVolume is the volume a widget mounts with
const DefaultVolume = 50

// State is the transport state owned by one widget
type State struct {
	IsPlaying   bool
	CurrentTime float64 // seconds
	Duration    float64 // seconds
	Volume      int     // 0..100
}

// Widget drives one audio file's transport against a single media engine.
// It is not safe for concurrent use; the owner serializes calls, which for a
// player session is the connection's read loop.
type Widget struct {
	file       types.AudioFile
	colorClass string
	engine     MediaEngine
	log        *zap.Logger

	state   State
	stalled bool
	lastErr string

	cancels  []func()
	mounted  bool
	onChange func(types.TransportView)
}

// NewWidget creates an unmounted widget for file. index selects the card color.
func NewWidget(file types.AudioFile, index int, engine MediaEngine, log *zap.Logger) *Widget {
	if log == nil {
		log = zap.NewNop()
	}
	return &Widget{
		file:       file,
		colorClass: services.ColorClass(index),
		engine:     engine,
		log:        log.With(zap.String("file", file.Path)),
		state:      State{Volume: DefaultVolume},
	}
}

// OnChange sets the observer called with a fresh view after every mutation
func (w *Widget) OnChange(fn func(types.TransportView)) {
	w.onChange = fn
}

// Mount subscribes to the engine's notifications and applies the initial volume
func (w *Widget) Mount() {
	if w.mounted {
		return
	}
	w.mounted = true
	w.state = State{Volume: DefaultVolume}
	w.stalled = false
	w.lastErr = ""

	w.cancels = append(w.cancels,
		w.engine.On(EventTimeUpdate, w.handleTimeUpdate),
		w.engine.On(EventLoadedMetadata, w.handleLoadedMetadata),
		w.engine.On(EventEnded, w.handleEnded),
		w.engine.On(EventError, w.handleError),
		w.engine.On(EventStalled, w.handleStalled),
		w.engine.On(EventPlaying, w.handlePlaying),
	)

	w.engine.SetVolume(float64(w.state.Volume) / 100)
	w.notify()
}

// Unmount removes every engine subscription. Calling it twice is harmless.
func (w *Widget) Unmount() {
	if !w.mounted {
		return
	}
	for _, cancel := range w.cancels {
		cancel()
	}
	w.cancels = nil
	w.mounted = false
}

// Mounted reports whether the widget currently holds engine subscriptions
func (w *Widget) Mounted() bool {
	return w.mounted
}

// State returns a copy of the transport state
func (w *Widget) State() State {
	return w.state
}

// TogglePlay pauses a playing widget or starts a paused one
func (w *Widget) TogglePlay() {
	if w.state.IsPlaying {
		w.engine.Pause()
		w.state.IsPlaying = false
		w.notify()
		return
	}

	if err := w.engine.Play(); err != nil {
		w.log.Warn("play command not delivered", zap.Error(err))
		w.lastErr = err.Error()
		w.notify()
		return
	}
	w.state.IsPlaying = true
	w.lastErr = ""
	w.notify()
}

// Seek moves to pct percent (0..100) of the known duration
func (w *Widget) Seek(pct float64) {
	position := clamp(pct, 0, 100) / 100 * w.state.Duration
	w.engine.SetCurrentTime(position)
	w.state.CurrentTime = position
	w.notify()
}

// SetVolume sets the volume (0..100) and writes volume/100 to the engine
func (w *Widget) SetVolume(volume float64) {
	w.state.Volume = int(math.Round(clamp(volume, 0, 100)))
	w.engine.SetVolume(float64(w.state.Volume) / 100)
	w.notify()
}

// Download asks the engine for a one-shot download of the file
func (w *Widget) Download() {
	w.engine.Download(w.file.Href, w.file.Filename)
}

// View renders the current state for display
func (w *Widget) View() types.TransportView {
	seek := 0.0
	if w.state.Duration > 0 {
		seek = w.state.CurrentTime / w.state.Duration * 100
	}
	return types.TransportView{
		IsPlaying:   w.state.IsPlaying,
		CurrentTime: w.state.CurrentTime,
		Duration:    w.state.Duration,
		Volume:      w.state.Volume,
		Elapsed:     services.FormatTime(w.state.CurrentTime),
		Total:       services.FormatTime(w.state.Duration),
		SeekPercent: seek,
		DisplayName: w.file.DisplayName,
		ColorClass:  w.colorClass,
		Stalled:     w.stalled,
		Error:       w.lastErr,
	}
}

func (w *Widget) handleTimeUpdate(e Event) {
	w.state.CurrentTime = finiteOrZero(e.CurrentTime)
	w.stalled = false
	w.notify()
}

func (w *Widget) handleLoadedMetadata(e Event) {
	w.state.Duration = finiteOrZero(e.Duration)
	w.notify()
}

func (w *Widget) handleEnded(Event) {
	w.state.IsPlaying = false
	w.notify()
}

// handleError returns the widget to paused so the play button reflects reality
func (w *Widget) handleError(e Event) {
	w.log.Warn("media error", zap.String("error", e.Err))
	w.state.IsPlaying = false
	w.stalled = false
	w.lastErr = e.Err
	if w.lastErr == "" {
		w.lastErr = "playback failed"
	}
	w.notify()
}

func (w *Widget) handleStalled(Event) {
	w.stalled = true
	w.notify()
}

func (w *Widget) handlePlaying(Event) {
	w.state.IsPlaying = true
	w.stalled = false
	w.lastErr = ""
	w.notify()
}

func (w *Widget) notify() {
	if w.onChange != nil {
		w.onChange(w.View())
	}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
