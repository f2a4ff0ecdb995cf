// Package fbdev presents frames on a Linux framebuffer device.
package fbdev

import (
	"fmt"
	"image/color"
	"image/draw"
	"log/slog"
	"sync"

	fb "github.com/gonutz/framebuffer"

	"orbit/internal/platform"
	"orbit/internal/render"
)

const DefaultDevice = "/dev/fb0"

type Backend struct {
	Device string
	// Scale is the device pixel ratio of the attached panel; the framebuffer
	// has no way to report it.
	Scale  float64
	Logger *slog.Logger
}

func New(device string, scale float64) *Backend {
	return &Backend{Device: device, Scale: scale}
}

func (b *Backend) Name() string { return "fbdev" }

func (b *Backend) CreateWindow(cfg platform.WindowConfig) (platform.Window, error) {
	path := b.Device
	if path == "" {
		path = DefaultDevice
	}
	dev, err := fb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open framebuffer %s: %w", path, err)
	}
	scale := b.Scale
	if scale <= 0 {
		scale = 1
	}
	logger := b.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	bounds := dev.Bounds()
	logger.Info("framebuffer open", "device", path, "width", bounds.Dx(), "height", bounds.Dy(), "scale", scale)
	return &window{dev: dev, dst: dev, scale: scale, title: cfg.Title}, nil
}

type window struct {
	mu     sync.Mutex
	dev    *fb.Device
	dst    draw.Image
	scale  float64
	title  string
	closed bool
}

func (w *window) PollEvents() []platform.Event {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return []platform.Event{{Type: platform.EventClose}}
	}
	return nil
}

// Size reports the device resolution in logical pixels.
func (w *window) Size() (float64, float64) {
	b := w.dst.Bounds()
	return float64(b.Dx()) / w.scale, float64(b.Dy()) / w.scale
}

func (w *window) Scale() float64 { return w.scale }

func (w *window) SetTitle(title string) { w.title = title }

func (w *window) Present(s *render.Surface) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	bw, bh := s.BackingSize()
	blit(w.dst, s.Pixels(), bw, bh)
	return nil
}

func (w *window) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	if w.dev != nil {
		w.dev.Close()
	}
}

// blit nearest-neighbour scales an RGBA backing store onto dst. Alpha is
// dropped since the panel is opaque.
func blit(dst draw.Image, src []uint8, sw, sh int) {
	if sw <= 0 || sh <= 0 || len(src) < sw*sh*4 {
		return
	}
	bounds := dst.Bounds()
	dw, dh := bounds.Dx(), bounds.Dy()
	for y := 0; y < dh; y++ {
		sy := (y * sh) / dh
		for x := 0; x < dw; x++ {
			sx := (x * sw) / dw
			i := (sy*sw + sx) * 4
			dst.Set(bounds.Min.X+x, bounds.Min.Y+y, color.RGBA{R: src[i], G: src[i+1], B: src[i+2], A: 0xFF})
		}
	}
}
