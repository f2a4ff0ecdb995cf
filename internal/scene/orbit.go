package scene

import (
	"log/slog"
	"math"
	"sync"

	"orbit/internal/controls"
	"orbit/internal/frameloop"
	"orbit/pkg/shape"
)

const (
	FillControl = "fill"
	DefaultFill = "teal"
	Background  = "black"

	baseRadius   = 100.0
	wobble       = 10.0
	wobbleSpeed  = 10.0
	bodyFraction = 0.25
)

// Schema is the control schema the orbit scene reads from.
func Schema() controls.Schema {
	return controls.Schema{FillControl: DefaultFill}
}

// Position returns the orbiting circle's center and radius at time t for a
// w x h surface.
func Position(t, w, h float64) (x, y, radius float64) {
	r := baseRadius + math.Cos(t*wobbleSpeed)*wobble
	return w/2 + r*math.Cos(t), h/2 + r*math.Sin(t), r * bodyFraction
}

// Orbit paints a circle orbiting the center of a black square. The fill is
// read from the controls store each frame.
type Orbit struct {
	store  *controls.Store
	logger *slog.Logger

	mu        sync.Mutex
	lastValid string
	resizes   int
}

func NewOrbit(store *controls.Store, logger *slog.Logger) *Orbit {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Orbit{store: store, logger: logger, lastValid: DefaultFill}
}

// Fill resolves the live fill control, falling back to the last value that
// parsed when the current one does not.
func (o *Orbit) Fill() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	v := DefaultFill
	if o.store != nil {
		v = o.store.Get(FillControl)
	}
	if v == o.lastValid {
		return v
	}
	if _, err := shape.ParseColor(v); err != nil {
		return o.lastValid
	}
	o.lastValid = v
	return v
}

// Shapes builds the frame for ev as shape descriptors.
func (o *Orbit) Shapes(ev frameloop.Event) []shape.Shape {
	x, y, r := Position(ev.Time, ev.Width, ev.Height)
	return []shape.Shape{
		shape.Rect(0, 0, ev.Width, ev.Height, shape.Style{Fill: Background}),
		shape.Circle(x, y, r, shape.Style{Fill: o.Fill()}),
	}
}

func (o *Orbit) Paint(ev frameloop.Event) {
	if err := shape.Draw(ev.Surface, o.Shapes(ev)); err != nil {
		o.logger.Warn("orbit frame incomplete", "error", err)
	}
}

func (o *Orbit) OnResize(ev frameloop.Event) {
	o.mu.Lock()
	o.resizes++
	o.mu.Unlock()
	bw, bh := 0, 0
	if ev.Surface != nil {
		bw, bh = ev.Surface.BackingSize()
	}
	o.logger.Info("resize", "width", ev.Width, "height", ev.Height, "backing_w", bw, "backing_h", bh)
}

// Resizes counts OnResize calls.
func (o *Orbit) Resizes() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.resizes
}
