package app

import (
	"log/slog"
	"math"

	"orbit/internal/controls"
	"orbit/internal/frameloop"
	"orbit/internal/render"
	"orbit/internal/scene"
)

const (
	minDensityCap = 1.0
	maxDensityCap = 8.0
)

type RuntimeOptions struct {
	Loop       bool
	DensityCap float64
	// Controls sets initial values by name. Names the scene does not
	// declare are ignored.
	Controls map[string]string
	Clock    frameloop.Clock
	Logger   *slog.Logger
}

// Runtime is the host-independent part of the program: the surface, the
// controls, the scene and the frame loop controller. Hosts call Sync with
// the current logical size and density, then Frame once per repaint.
type Runtime struct {
	Logger  *slog.Logger
	Store   *controls.Store
	Scene   *scene.Orbit
	Surface *render.Surface
	Pacer   *frameloop.QueuePacer

	mount      *frameloop.Mount
	controller *frameloop.Controller
	dims       frameloop.Dimensions
	density    float64
	densityCap float64
	loop       bool
}

func NewRuntime(opts RuntimeOptions) *Runtime {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	store := controls.NewStore(scene.Schema())
	for name, value := range opts.Controls {
		if _, ok := store.Lookup(name); !ok {
			logger.Warn("ignoring unknown control", "name", name)
			continue
		}
		_ = store.Set(name, value)
	}

	r := &Runtime{
		Logger:     logger,
		Store:      store,
		Scene:      scene.NewOrbit(store, logger),
		Surface:    render.NewSurface(),
		Pacer:      &frameloop.QueuePacer{},
		mount:      &frameloop.Mount{},
		density:    1,
		densityCap: opts.DensityCap,
		loop:       opts.Loop,
	}
	store.Subscribe(func(name, value string) {
		logger.Debug("control changed", "name", name, "value", value)
	})
	r.controller = frameloop.Attach(r.mount, r.dims, r.options(), frameloop.Env{
		Pacer:   r.Pacer,
		Clock:   opts.Clock,
		Density: render.DensityFunc(func() float64 { return r.density }),
		Logger:  logger,
	})
	return r
}

func (r *Runtime) options() frameloop.Options {
	return frameloop.Options{
		Draw:       r.Scene,
		OnResize:   r.Scene.OnResize,
		Loop:       r.loop,
		DensityCap: r.densityCap,
	}
}

// Sync mounts the surface on first use and forwards the host's current
// size and density to the controller.
func (r *Runtime) Sync(dims frameloop.Dimensions, density float64) {
	if r.mount.Surface() == nil {
		r.mount.Set(r.Surface)
	}
	densityChanged := density != r.density
	r.density = density
	r.dims = dims

	before := r.controller.Instances()
	r.controller.Update(dims, r.options())
	if densityChanged && r.controller.Instances() == before {
		r.controller.Restart()
	}
}

// Frame runs the frame callbacks queued since the previous repaint.
func (r *Runtime) Frame() int {
	return r.Pacer.Flush()
}

func (r *Runtime) Loop() bool { return r.loop }

func (r *Runtime) SetLoop(loop bool) {
	r.loop = loop
	r.reapply()
}

func (r *Runtime) DensityCap() float64 {
	if r.densityCap <= 0 {
		return render.DefaultDensityCap
	}
	return r.densityCap
}

// StepDensityCap moves the cap by delta within [1, 8].
func (r *Runtime) StepDensityCap(delta float64) {
	c := math.Max(minDensityCap, math.Min(maxDensityCap, r.DensityCap()+delta))
	r.densityCap = c
	r.reapply()
}

func (r *Runtime) reapply() {
	if r.mount.Surface() == nil {
		return
	}
	r.controller.Update(r.dims, r.options())
}

// Instance exposes the live frame loop instance, nil while idle.
func (r *Runtime) Instance() *frameloop.Instance { return r.controller.Instance() }

func (r *Runtime) Instances() uint64 { return r.controller.Instances() }

func (r *Runtime) Close() error {
	r.controller.Detach()
	return r.Surface.Close()
}
