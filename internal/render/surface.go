package render

import (
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"strconv"

	"github.com/gogpu/gg"
)

// DefaultDensityCap bounds device pixels per logical pixel when the caller
// does not pick a cap.
const DefaultDensityCap = 4.0

var ErrNoBackingStore = errors.New("surface has no backing store")

// DensitySource reports the host display's device pixel ratio.
type DensitySource interface {
	Density() float64
}

// DensityFunc adapts a function to DensitySource.
type DensityFunc func() float64

func (f DensityFunc) Density() float64 {
	if f == nil {
		return 1
	}
	return f()
}

// FixedDensity is a DensitySource that always reports the same ratio.
type FixedDensity float64

func (d FixedDensity) Density() float64 { return float64(d) }

// Sizing is the outcome of one Configure call.
type Sizing struct {
	DisplayW float64
	DisplayH float64
	BackingW int
	BackingH int
	Density  float64
}

// Surface is a drawing target with a logical display size and a separate
// backing store of device pixels.
type Surface struct {
	sizing     Sizing
	ctx        *gg.Context
	configures uint64
}

func NewSurface() *Surface {
	return &Surface{sizing: Sizing{Density: 1}}
}

// EffectiveDensity is min(densityCap, reported density). A missing or
// non-positive report reads as 1 and a non-positive cap as DefaultDensityCap.
func EffectiveDensity(densityCap float64, density DensitySource) float64 {
	if !(densityCap > 0) || math.IsInf(densityCap, 0) {
		densityCap = DefaultDensityCap
	}
	reported := 1.0
	if density != nil {
		reported = density.Density()
	}
	if !(reported > 0) || math.IsInf(reported, 0) {
		reported = 1
	}
	return math.Min(densityCap, reported)
}

func backingExtent(logical, density float64) int {
	v := math.Floor(logical * density)
	if !(v > 0) || math.IsInf(v, 0) || v > math.MaxInt32 {
		return 0
	}
	return int(v)
}

// Configure sizes the surface for width x height logical pixels. The backing
// store is always cleared and the transform is reset to a uniform scale of
// the effective density, so repeated calls never compound. Degenerate sizes
// leave the surface without a backing store; drawing then does nothing.
func Configure(s *Surface, width, height, densityCap float64, density DensitySource) Sizing {
	if s == nil {
		return Sizing{}
	}
	dpr := EffectiveDensity(densityCap, density)
	bw := backingExtent(width, dpr)
	bh := backingExtent(height, dpr)
	s.sizing = Sizing{DisplayW: width, DisplayH: height, BackingW: bw, BackingH: bh, Density: dpr}
	s.configures++

	if bw == 0 || bh == 0 {
		s.release()
		return s.sizing
	}
	switch {
	case s.ctx == nil:
		s.ctx = gg.NewContext(bw, bh)
	case s.ctx.Width() == bw && s.ctx.Height() == bh:
		s.ctx.Clear()
		s.ctx.ClearPath()
	default:
		if err := s.ctx.Resize(bw, bh); err != nil {
			s.release()
			return s.sizing
		}
	}
	s.ctx.Identity()
	s.ctx.Scale(dpr, dpr)
	return s.sizing
}

func (s *Surface) release() {
	if s.ctx != nil {
		_ = s.ctx.Close()
		s.ctx = nil
	}
}

// Context returns the drawing context, or nil when the surface has no
// backing store.
func (s *Surface) Context() *gg.Context {
	if s == nil {
		return nil
	}
	return s.ctx
}

func (s *Surface) Sizing() Sizing { return s.sizing }

func (s *Surface) DisplaySize() (float64, float64) {
	return s.sizing.DisplayW, s.sizing.DisplayH
}

// DisplayCSS renders the display size the way a style sheet would, e.g. "800px".
func (s *Surface) DisplayCSS() (string, string) {
	return cssPixels(s.sizing.DisplayW), cssPixels(s.sizing.DisplayH)
}

func cssPixels(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

func (s *Surface) BackingSize() (int, int) {
	return s.sizing.BackingW, s.sizing.BackingH
}

func (s *Surface) Density() float64 { return s.sizing.Density }

// Configures counts Configure calls since creation.
func (s *Surface) Configures() uint64 { return s.configures }

// Transform returns the current drawing transform, identity when there is
// no backing store.
func (s *Surface) Transform() gg.Matrix {
	if s.ctx == nil {
		return gg.Identity()
	}
	return s.ctx.GetTransform()
}

// Pixels returns the backing store as tightly packed RGBA rows. The slice is
// owned by the surface and is invalidated by the next Configure.
func (s *Surface) Pixels() []uint8 {
	if s.ctx == nil {
		return nil
	}
	_ = s.ctx.FlushGPU()
	return s.ctx.ResizeTarget().Data()
}

// Image returns a copy of the backing store.
func (s *Surface) Image() *image.RGBA {
	if s.ctx == nil {
		return image.NewRGBA(image.Rectangle{})
	}
	_ = s.ctx.FlushGPU()
	return s.ctx.ResizeTarget().ToImage()
}

func (s *Surface) EncodePNG(w io.Writer) error {
	if s.ctx == nil {
		return ErrNoBackingStore
	}
	if err := s.ctx.EncodePNG(w); err != nil {
		return fmt.Errorf("encode surface png: %w", err)
	}
	return nil
}

func (s *Surface) Close() error {
	s.release()
	return nil
}
