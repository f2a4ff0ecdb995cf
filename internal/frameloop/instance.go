// Package frameloop drives per-frame drawing on a render.Surface.
//
// An Instance is one activation cycle: it configures the surface, reports the
// size through OnResize, draws once, and, when looping, keeps asking the
// FramePacer for another frame until it is cancelled. A Controller owns at
// most one live Instance and replaces it whenever its inputs change.
package frameloop

import (
	"log/slog"
	"sync/atomic"
	"time"

	"orbit/internal/render"
)

type Dimensions struct {
	Width  float64
	Height float64
}

// Event is the snapshot handed to Draw and OnResize. Time is seconds since
// the owning Instance was created.
type Event struct {
	Surface *render.Surface
	Width   float64
	Height  float64
	Time    float64
}

type Painter interface {
	Paint(ev Event)
}

type PainterFunc func(ev Event)

func (f PainterFunc) Paint(ev Event) { f(ev) }

type Options struct {
	Draw       Painter
	OnResize   func(ev Event)
	Loop       bool
	DensityCap float64
}

// Env bundles the host collaborators an Instance needs.
type Env struct {
	Pacer   FramePacer
	Clock   Clock
	Density render.DensitySource
	Logger  *slog.Logger
}

func (e Env) withDefaults() Env {
	if e.Clock == nil {
		e.Clock = SystemClock{}
	}
	if e.Logger == nil {
		e.Logger = slog.New(slog.DiscardHandler)
	}
	return e
}

type InstanceConfig struct {
	Surface    *render.Surface
	Dimensions Dimensions
	Options    Options
	Env        Env
}

// Instance is one activation of the frame loop. Once cancelled it never
// invokes a callback again, including for a frame that was already queued.
type Instance struct {
	cfg       InstanceConfig
	start     time.Time
	last      float64
	cancelled atomic.Bool
	frames    atomic.Uint64
}

// Elapsed returns the seconds between start and now, never negative.
func Elapsed(now, start time.Time) float64 {
	d := now.Sub(start)
	if d < 0 {
		return 0
	}
	return d.Seconds()
}

// NewInstance captures the clock start, configures the surface, fires
// OnResize and the first Draw, then schedules the next frame when looping.
func NewInstance(cfg InstanceConfig) *Instance {
	cfg.Env = cfg.Env.withDefaults()
	inst := &Instance{cfg: cfg, start: cfg.Env.Clock.Now()}

	sizing := render.Configure(cfg.Surface, cfg.Dimensions.Width, cfg.Dimensions.Height, cfg.Options.DensityCap, cfg.Env.Density)
	cfg.Env.Logger.Debug("frame loop instance started",
		"width", cfg.Dimensions.Width,
		"height", cfg.Dimensions.Height,
		"backing_w", sizing.BackingW,
		"backing_h", sizing.BackingH,
		"density", sizing.Density,
		"loop", cfg.Options.Loop,
	)

	if cfg.Options.OnResize != nil {
		cfg.Options.OnResize(inst.event())
	}
	inst.frame()
	return inst
}

func (i *Instance) event() Event {
	t := Elapsed(i.cfg.Env.Clock.Now(), i.start)
	if t < i.last {
		t = i.last
	}
	i.last = t
	return Event{
		Surface: i.cfg.Surface,
		Width:   i.cfg.Dimensions.Width,
		Height:  i.cfg.Dimensions.Height,
		Time:    t,
	}
}

func (i *Instance) frame() {
	if i.cancelled.Load() {
		return
	}
	if i.cfg.Options.Draw != nil {
		i.cfg.Options.Draw.Paint(i.event())
	}
	i.frames.Add(1)
	if !i.cfg.Options.Loop || i.cfg.Env.Pacer == nil {
		return
	}
	i.cfg.Env.Pacer.RequestFrame(i.frame)
}

// Cancel makes the instance permanently inert.
func (i *Instance) Cancel() {
	if i.cancelled.CompareAndSwap(false, true) {
		i.cfg.Env.Logger.Debug("frame loop instance cancelled", "frames", i.frames.Load())
	}
}

func (i *Instance) Cancelled() bool { return i.cancelled.Load() }

// Frames reports how many frames were delivered, including the first.
func (i *Instance) Frames() uint64 { return i.frames.Load() }

func (i *Instance) Surface() *render.Surface { return i.cfg.Surface }
