package frameloop

import (
	"testing"
	"time"

	"orbit/internal/render"
)

type recorder struct {
	calls  []string
	draws  []Event
	resize []Event
}

func (r *recorder) Paint(ev Event) {
	r.calls = append(r.calls, "draw")
	r.draws = append(r.draws, ev)
}

func (r *recorder) onResize(ev Event) {
	r.calls = append(r.calls, "resize")
	r.resize = append(r.resize, ev)
}

func newEnv() (Env, *QueuePacer, *ManualClock) {
	pacer := &QueuePacer{}
	clock := NewManualClock(time.Unix(1000, 0))
	return Env{Pacer: pacer, Clock: clock, Density: render.FixedDensity(2)}, pacer, clock
}

func mounted() *Mount {
	m := &Mount{}
	m.Set(render.NewSurface())
	return m
}

func TestOnResizeFiresOnceBeforeFirstDraw(t *testing.T) {
	env, pacer, clock := newEnv()
	rec := &recorder{}
	c := Attach(mounted(), Dimensions{Width: 800, Height: 600}, Options{Draw: rec, OnResize: rec.onResize, Loop: true}, env)
	defer c.Detach()

	for i := 0; i < 3; i++ {
		clock.Advance(16 * time.Millisecond)
		pacer.Flush()
	}

	if len(rec.resize) != 1 {
		t.Fatalf("expected one resize, got %d", len(rec.resize))
	}
	if rec.calls[0] != "resize" {
		t.Fatalf("expected resize first, got %v", rec.calls)
	}
	if len(rec.draws) != 4 {
		t.Fatalf("expected 4 draws, got %d", len(rec.draws))
	}
	ev := rec.draws[0]
	if ev.Width != 800 || ev.Height != 600 || ev.Surface == nil {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if w, h := ev.Surface.BackingSize(); w != 1600 || h != 1200 {
		t.Fatalf("surface not configured: %dx%d", w, h)
	}
}

func TestSingleShotDrawsOnce(t *testing.T) {
	env, pacer, _ := newEnv()
	rec := &recorder{}
	c := Attach(mounted(), Dimensions{Width: 10, Height: 10}, Options{Draw: rec}, env)

	if pacer.Pending() != 0 {
		t.Fatalf("single-shot must not schedule, pending=%d", pacer.Pending())
	}
	pacer.Flush()
	if len(rec.draws) != 1 {
		t.Fatalf("expected exactly one draw, got %d", len(rec.draws))
	}
	if c.Instance().Frames() != 1 {
		t.Fatalf("expected 1 frame, got %d", c.Instance().Frames())
	}
}

func TestDetachSuppressesFrameInFlight(t *testing.T) {
	env, pacer, _ := newEnv()
	rec := &recorder{}
	c := Attach(mounted(), Dimensions{Width: 10, Height: 10}, Options{Draw: rec, OnResize: rec.onResize, Loop: true}, env)

	if pacer.Pending() != 1 {
		t.Fatalf("expected a frame in flight, pending=%d", pacer.Pending())
	}
	c.Detach()
	pacer.Flush()
	pacer.Flush()

	if len(rec.draws) != 1 {
		t.Fatalf("expected no draws after detach, got %d total", len(rec.draws))
	}
	if pacer.Pending() != 0 {
		t.Fatal("cancelled instance must not reschedule")
	}

	c.Update(Dimensions{Width: 20, Height: 20}, Options{Draw: rec, OnResize: rec.onResize, Loop: true})
	if len(rec.resize) != 1 {
		t.Fatalf("detached controller must stay inert, resizes=%d", len(rec.resize))
	}
}

func TestTimeIsMonotonicAndResetsOnNewInstance(t *testing.T) {
	env, pacer, clock := newEnv()
	rec := &recorder{}
	opts := Options{Draw: rec, Loop: true}
	c := Attach(mounted(), Dimensions{Width: 10, Height: 10}, opts, env)

	for i := 0; i < 5; i++ {
		clock.Advance(100 * time.Millisecond)
		pacer.Flush()
	}
	for i := 1; i < len(rec.draws); i++ {
		if rec.draws[i].Time < rec.draws[i-1].Time {
			t.Fatalf("time went backwards: %v then %v", rec.draws[i-1].Time, rec.draws[i].Time)
		}
	}
	if got := rec.draws[len(rec.draws)-1].Time; got < 0.49 || got > 0.51 {
		t.Fatalf("expected ~0.5s elapsed, got %v", got)
	}

	rec.draws = nil
	c.Update(Dimensions{Width: 20, Height: 10}, opts)
	if len(rec.draws) != 1 || rec.draws[0].Time != 0 {
		t.Fatalf("expected fresh clock at 0, got %+v", rec.draws)
	}
}

func TestUpdateWithSameInputsKeepsInstance(t *testing.T) {
	env, _, _ := newEnv()
	rec := &recorder{}
	opts := Options{Draw: rec, OnResize: rec.onResize, Loop: true}
	c := Attach(mounted(), Dimensions{Width: 10, Height: 10}, opts, env)
	first := c.Instance()

	c.Update(Dimensions{Width: 10, Height: 10}, opts)
	c.Update(Dimensions{Width: 10, Height: 10}, Options{Draw: rec, Loop: true, DensityCap: render.DefaultDensityCap})

	if c.Instance() != first || c.Instances() != 1 {
		t.Fatalf("expected the same instance, created %d", c.Instances())
	}
	if len(rec.resize) != 1 {
		t.Fatalf("expected one resize, got %d", len(rec.resize))
	}
}

func TestDependencyChangeReplacesInstance(t *testing.T) {
	env, pacer, _ := newEnv()
	rec := &recorder{}
	other := &recorder{}
	base := Options{Draw: rec, OnResize: rec.onResize, Loop: true}

	changes := []struct {
		name string
		dims Dimensions
		opts Options
	}{
		{"width", Dimensions{Width: 11, Height: 10}, base},
		{"height", Dimensions{Width: 11, Height: 12}, base},
		{"cap", Dimensions{Width: 11, Height: 12}, Options{Draw: rec, OnResize: rec.onResize, Loop: true, DensityCap: 1}},
		{"loop", Dimensions{Width: 11, Height: 12}, Options{Draw: rec, OnResize: rec.onResize, Loop: false, DensityCap: 1}},
		{"draw", Dimensions{Width: 11, Height: 12}, Options{Draw: other, OnResize: rec.onResize, Loop: false, DensityCap: 1}},
	}

	c := Attach(mounted(), Dimensions{Width: 10, Height: 10}, base, env)
	for i, ch := range changes {
		prev := c.Instance()
		c.Update(ch.dims, ch.opts)
		if !prev.Cancelled() {
			t.Fatalf("%s: previous instance still live", ch.name)
		}
		if c.Instance() == prev {
			t.Fatalf("%s: instance not replaced", ch.name)
		}
		if got := c.Instances(); got != uint64(i+2) {
			t.Fatalf("%s: expected %d instances, got %d", ch.name, i+2, got)
		}
	}
	if len(rec.resize) != len(changes)+1 {
		t.Fatalf("expected a resize per instance, got %d", len(rec.resize))
	}

	before := len(rec.draws)
	pacer.Flush()
	if len(rec.draws) != before {
		t.Fatal("frames queued by cancelled instances must not draw")
	}
}

func TestNoSurfaceIsSilentUntilMounted(t *testing.T) {
	env, pacer, _ := newEnv()
	rec := &recorder{}
	ref := &Mount{}
	opts := Options{Draw: rec, OnResize: rec.onResize, Loop: true}
	c := Attach(ref, Dimensions{Width: 10, Height: 10}, opts, env)

	pacer.Flush()
	if len(rec.calls) != 0 || c.Instance() != nil {
		t.Fatalf("expected idle controller, calls=%v", rec.calls)
	}

	ref.Set(render.NewSurface())
	c.Update(Dimensions{Width: 10, Height: 10}, opts)
	if len(rec.resize) != 1 || len(rec.draws) != 1 {
		t.Fatalf("expected start after mount, calls=%v", rec.calls)
	}

	ref.Set(nil)
	c.Update(Dimensions{Width: 10, Height: 10}, opts)
	if c.Instance() != nil {
		t.Fatal("expected idle after unmount")
	}
	pacer.Flush()
	if len(rec.draws) != 1 {
		t.Fatalf("unmounted surface must not draw, draws=%d", len(rec.draws))
	}
}

func TestRestartCreatesFreshInstance(t *testing.T) {
	env, _, _ := newEnv()
	rec := &recorder{}
	c := Attach(mounted(), Dimensions{Width: 10, Height: 10}, Options{Draw: rec, OnResize: rec.onResize}, env)
	first := c.Instance()

	c.Restart()
	if !first.Cancelled() || c.Instance() == first {
		t.Fatal("expected replacement on restart")
	}
	if len(rec.resize) != 2 {
		t.Fatalf("expected resize on restart, got %d", len(rec.resize))
	}
}

func TestFuncPainterIdentity(t *testing.T) {
	draw := PainterFunc(func(Event) {})
	if !samePainter(draw, draw) {
		t.Fatal("expected a func painter to equal itself")
	}
	if samePainter(draw, &recorder{}) {
		t.Fatal("different painter types must differ")
	}
	if !samePainter(nil, nil) || samePainter(draw, nil) {
		t.Fatal("nil handling broken")
	}
}

func TestElapsed(t *testing.T) {
	start := time.Unix(50, 0)
	if got := Elapsed(start.Add(1500*time.Millisecond), start); got != 1.5 {
		t.Fatalf("expected 1.5, got %v", got)
	}
	if got := Elapsed(start.Add(-time.Second), start); got != 0 {
		t.Fatalf("expected clamp to 0, got %v", got)
	}
}

func TestQueuePacerDefersNestedRequests(t *testing.T) {
	p := &QueuePacer{}
	runs := 0
	var again func()
	again = func() {
		runs++
		p.RequestFrame(again)
	}
	p.RequestFrame(again)

	if n := p.Flush(); n != 1 || runs != 1 {
		t.Fatalf("expected one callback, ran %d (flush=%d)", runs, n)
	}
	if p.Pending() != 1 {
		t.Fatalf("expected nested request queued, pending=%d", p.Pending())
	}
	p.RequestFrame(nil)
	if p.Pending() != 1 {
		t.Fatal("nil callbacks must be ignored")
	}
}

//go:noinline
func labelledPainter(label string, out *[]string) PainterFunc {
	return func(Event) { *out = append(*out, label) }
}

func TestClosurePainterChangeReplacesInstance(t *testing.T) {
	env, pacer, _ := newEnv()
	var draws []string
	oldDraw := labelledPainter("old", &draws)
	c := Attach(mounted(), Dimensions{Width: 10, Height: 10}, Options{Draw: oldDraw, Loop: true}, env)
	defer c.Detach()

	c.Update(Dimensions{Width: 10, Height: 10}, Options{Draw: oldDraw, Loop: true})
	if c.Instances() != 1 {
		t.Fatalf("same closure must keep the instance, got %d", c.Instances())
	}

	c.Update(Dimensions{Width: 10, Height: 10}, Options{Draw: labelledPainter("new", &draws), Loop: true})
	if c.Instances() != 2 {
		t.Fatalf("a different closure must replace the instance, got %d", c.Instances())
	}
	pacer.Flush()
	if want := []string{"old", "new", "new"}; len(draws) != 3 || draws[0] != want[0] || draws[1] != want[1] || draws[2] != want[2] {
		t.Fatalf("expected %v, got %v", want, draws)
	}
}
