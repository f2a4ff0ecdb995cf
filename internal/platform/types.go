package platform

import "orbit/internal/render"

type WindowConfig struct {
	Title       string
	WidthPx     int
	HeightPx    int
	MinWidthPx  int
	MinHeightPx int
}

type EventType int

const (
	EventUnknown EventType = iota
	EventClose
	EventResize
	EventDPIChanged
	EventKeyDown
	EventKeyUp
	EventTextInput
	EventMouseMove
	EventMouseDown
	EventMouseUp
	EventMouseWheel
)

func (t EventType) String() string {
	switch t {
	case EventClose:
		return "close"
	case EventResize:
		return "resize"
	case EventDPIChanged:
		return "dpi-changed"
	case EventKeyDown:
		return "key-down"
	case EventKeyUp:
		return "key-up"
	case EventTextInput:
		return "text-input"
	case EventMouseMove:
		return "mouse-move"
	case EventMouseDown:
		return "mouse-down"
	case EventMouseUp:
		return "mouse-up"
	case EventMouseWheel:
		return "mouse-wheel"
	default:
		return "unknown"
	}
}

// Event is a host notification. Width and Height are logical pixels; Scale
// is the device pixel ratio after an EventDPIChanged.
type Event struct {
	Type   EventType
	Width  float64
	Height float64
	Scale  float64
	Rune   rune
	DeltaX int
	DeltaY int
	X      int
	Y      int
	Key    string
}

type Platform interface {
	Name() string
	CreateWindow(cfg WindowConfig) (Window, error)
}

// Window is a polled host surface. Size is in logical pixels and Scale is
// the device pixel ratio; Present shows the surface's backing store.
type Window interface {
	PollEvents() []Event
	Size() (float64, float64)
	Scale() float64
	Present(s *render.Surface) error
	SetTitle(title string)
	Close()
}
