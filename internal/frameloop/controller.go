package frameloop

import (
	"reflect"
	"sync"
	"unsafe"

	"orbit/internal/render"
)

// SurfaceRef yields the currently mounted surface, or nil.
type SurfaceRef interface {
	Surface() *render.Surface
}

// Mount is a SurfaceRef a host fills in once its surface exists.
type Mount struct {
	mu sync.Mutex
	s  *render.Surface
}

func (m *Mount) Set(s *render.Surface) {
	m.mu.Lock()
	m.s = s
	m.mu.Unlock()
}

func (m *Mount) Surface() *render.Surface {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.s
}

type deps struct {
	surface    *render.Surface
	dims       Dimensions
	densityCap float64
	loop       bool
	draw       Painter
}

func (d deps) equal(o deps) bool {
	return d.surface == o.surface &&
		d.dims == o.dims &&
		d.densityCap == o.densityCap &&
		d.loop == o.loop &&
		samePainter(d.draw, o.draw)
}

// samePainter compares painter identity. Func painters compare by closure
// pointer since Go funcs are not comparable: two closures built from the same
// literal with different captures are different painters.
func samePainter(a, b Painter) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Comparable() {
		return a == b
	}
	if ta.Kind() == reflect.Func {
		return closurePointer(a) == closurePointer(b)
	}
	return false
}

// closurePointer returns the data word of an interface holding a func value.
// Funcs are pointer-shaped, so the word is the closure itself.
func closurePointer(p Painter) unsafe.Pointer {
	return (*[2]unsafe.Pointer)(unsafe.Pointer(&p))[1]
}

func normalizeCap(c float64) float64 {
	if !(c > 0) {
		return render.DefaultDensityCap
	}
	return c
}

// Controller keeps at most one live Instance bound to a SurfaceRef.
type Controller struct {
	ref       SurfaceRef
	env       Env
	dims      Dimensions
	opts      Options
	current   *Instance
	deps      deps
	instances uint64
	detached  bool
}

// Attach binds a controller to ref and starts an instance if a surface is
// already mounted. Call Detach to stop it.
func Attach(ref SurfaceRef, dims Dimensions, opts Options, env Env) *Controller {
	c := &Controller{ref: ref, env: env.withDefaults()}
	c.Update(dims, opts)
	return c
}

// Update re-evaluates the inputs. When the surface, dimensions, density cap,
// loop flag or painter changed, the live instance is cancelled and a fresh
// one is created with a new clock. Without a surface it does nothing.
func (c *Controller) Update(dims Dimensions, opts Options) {
	if c.detached {
		return
	}
	c.dims = dims
	c.opts = opts

	var s *render.Surface
	if c.ref != nil {
		s = c.ref.Surface()
	}
	next := deps{surface: s, dims: dims, densityCap: normalizeCap(opts.DensityCap), loop: opts.Loop, draw: opts.Draw}
	if c.current != nil && c.deps.equal(next) {
		return
	}
	if c.current == nil && s == nil {
		return
	}
	c.restart(next)
}

// Restart replaces the live instance even if no input changed, e.g. after
// the host display density changed.
func (c *Controller) Restart() {
	if c.detached || c.current == nil {
		return
	}
	c.restart(c.deps)
}

func (c *Controller) restart(next deps) {
	c.stop()
	c.deps = next
	if next.surface == nil {
		c.env.Logger.Debug("frame loop idle: no surface mounted")
		return
	}
	c.instances++
	c.current = NewInstance(InstanceConfig{
		Surface:    next.surface,
		Dimensions: c.dims,
		Options:    c.opts,
		Env:        c.env,
	})
}

func (c *Controller) stop() {
	if c.current != nil {
		c.current.Cancel()
		c.current = nil
	}
}

// Detach cancels the live instance. Later Update calls are ignored.
func (c *Controller) Detach() {
	c.stop()
	c.detached = true
}

// Instance returns the live instance, or nil while idle.
func (c *Controller) Instance() *Instance { return c.current }

// Instances counts instances created over the controller's lifetime.
func (c *Controller) Instances() uint64 { return c.instances }

func (c *Controller) Dimensions() Dimensions { return c.dims }

func (c *Controller) Options() Options { return c.opts }
