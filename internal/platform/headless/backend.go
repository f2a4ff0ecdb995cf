// Package headless is an in-memory platform. Frames can be written out as
// PNG files, and resizes or density changes can be scripted per frame.
package headless

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"

	"orbit/internal/platform"
	"orbit/internal/render"
)

// Step injects an event once AtFrame frames have been presented.
type Step struct {
	AtFrame int
	Event   platform.Event
}

type Backend struct {
	Scale  float64
	OutDir string
	Script []Step
}

func New() *Backend { return &Backend{Scale: 1} }

func (b *Backend) Name() string { return "headless" }

func (b *Backend) CreateWindow(cfg platform.WindowConfig) (platform.Window, error) {
	if b.OutDir != "" {
		if err := os.MkdirAll(b.OutDir, 0o755); err != nil {
			return nil, fmt.Errorf("create frame dir: %w", err)
		}
	}
	scale := b.Scale
	if scale <= 0 {
		scale = 1
	}
	return &Window{
		title:  cfg.Title,
		w:      float64(cfg.WidthPx),
		h:      float64(cfg.HeightPx),
		scale:  scale,
		outDir: b.OutDir,
		script: append([]Step(nil), b.Script...),
	}, nil
}

type Window struct {
	mu       sync.Mutex
	title    string
	w        float64
	h        float64
	scale    float64
	closed   bool
	outDir   string
	script   []Step
	pending  []platform.Event
	presents int
	last     *image.RGBA
}

// Push queues events for the next PollEvents. Resize and DPI events take
// effect when they are polled.
func (w *Window) Push(evs ...platform.Event) {
	w.mu.Lock()
	w.pending = append(w.pending, evs...)
	w.mu.Unlock()
}

func (w *Window) PollEvents() []platform.Event {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return []platform.Event{{Type: platform.EventClose}}
	}
	rest := w.script[:0]
	for _, step := range w.script {
		if step.AtFrame <= w.presents {
			w.pending = append(w.pending, step.Event)
		} else {
			rest = append(rest, step)
		}
	}
	w.script = rest

	out := w.pending
	w.pending = nil
	for _, ev := range out {
		switch ev.Type {
		case platform.EventResize:
			w.w, w.h = ev.Width, ev.Height
		case platform.EventDPIChanged:
			if ev.Scale > 0 {
				w.scale = ev.Scale
			}
		case platform.EventClose:
			w.closed = true
		}
	}
	return out
}

func (w *Window) Size() (float64, float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.w, w.h
}

func (w *Window) Scale() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.scale
}

func (w *Window) SetTitle(title string) {
	w.mu.Lock()
	w.title = title
	w.mu.Unlock()
}

func (w *Window) Title() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.title
}

// Present snapshots the backing store and, when an output directory is set,
// writes it as frame-NNNNN.png.
func (w *Window) Present(s *render.Surface) error {
	w.mu.Lock()
	idx := w.presents
	w.presents++
	dir := w.outDir
	w.mu.Unlock()

	img := s.Image()
	w.mu.Lock()
	w.last = img
	w.mu.Unlock()

	if dir == "" || s.Context() == nil {
		return nil
	}
	path := filepath.Join(dir, fmt.Sprintf("frame-%05d.png", idx))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create frame file: %w", err)
	}
	if err := s.EncodePNG(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close frame file: %w", err)
	}
	return nil
}

func (w *Window) Presents() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.presents
}

// Last returns the most recently presented frame.
func (w *Window) Last() *image.RGBA {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last
}

func (w *Window) Close() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
}
