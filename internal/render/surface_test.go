package render

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/gogpu/gg"
)

func TestConfigureScalesBackingStoreByDensity(t *testing.T) {
	s := NewSurface()
	got := Configure(s, 800, 600, 4, FixedDensity(2))

	if got.BackingW != 1600 || got.BackingH != 1200 {
		t.Fatalf("unexpected backing store: %dx%d", got.BackingW, got.BackingH)
	}
	w, h := s.DisplayCSS()
	if w != "800px" || h != "600px" {
		t.Fatalf("unexpected display size: %s x %s", w, h)
	}
	ctx := s.Context()
	if ctx == nil {
		t.Fatal("expected drawing context")
	}
	if ctx.Width() != 1600 || ctx.Height() != 1200 {
		t.Fatalf("context not resized: %dx%d", ctx.Width(), ctx.Height())
	}
	if s.Transform() != gg.Scale(2, 2) {
		t.Fatalf("unexpected transform: %+v", s.Transform())
	}
}

func TestConfigureCapsDensity(t *testing.T) {
	s := NewSurface()
	got := Configure(s, 800, 600, 4, FixedDensity(6))
	if got.BackingW != 3200 || got.BackingH != 2400 {
		t.Fatalf("expected capped 3200x2400, got %dx%d", got.BackingW, got.BackingH)
	}
	if got.Density != 4 {
		t.Fatalf("expected effective density 4, got %v", got.Density)
	}
}

func TestConfigureBackingStoreMatchesDensityUnderCap(t *testing.T) {
	for _, density := range []float64{0.5, 1, 1.25, 1.5, 2, 3, 4} {
		s := NewSurface()
		got := Configure(s, 320, 200, 4, FixedDensity(density))
		wantW := int(math.Floor(320 * density))
		wantH := int(math.Floor(200 * density))
		if got.BackingW != wantW || got.BackingH != wantH {
			t.Fatalf("density %v: expected %dx%d, got %dx%d", density, wantW, wantH, got.BackingW, got.BackingH)
		}
		if got.DisplayW != 320 || got.DisplayH != 200 {
			t.Fatalf("density %v: display size changed: %vx%v", density, got.DisplayW, got.DisplayH)
		}
	}
}

func TestConfigureIsIdempotent(t *testing.T) {
	s := NewSurface()
	first := Configure(s, 640, 480, 4, FixedDensity(2))
	second := Configure(s, 640, 480, 4, FixedDensity(2))

	if first != second {
		t.Fatalf("sizing drifted: %+v vs %+v", first, second)
	}
	if s.Transform() != gg.Scale(2, 2) {
		t.Fatalf("scale compounded: %+v", s.Transform())
	}
	if s.Configures() != 2 {
		t.Fatalf("expected 2 configures, got %d", s.Configures())
	}
}

func TestConfigureClearsBackingStore(t *testing.T) {
	s := NewSurface()
	Configure(s, 10, 10, 4, FixedDensity(1))
	ctx := s.Context()
	ctx.SetRGB(1, 0, 0)
	ctx.DrawRectangle(0, 0, 10, 10)
	if err := ctx.Fill(); err != nil {
		t.Fatal(err)
	}
	if s.Pixels()[3] == 0 {
		t.Fatal("expected painted pixel before reconfigure")
	}

	Configure(s, 10, 10, 4, FixedDensity(1))
	for i, v := range s.Pixels() {
		if v != 0 {
			t.Fatalf("byte %d not cleared: %d", i, v)
		}
	}
}

func TestConfigureFallsBackWhenDensityUnavailable(t *testing.T) {
	cases := map[string]DensitySource{
		"nil":      nil,
		"zero":     FixedDensity(0),
		"negative": FixedDensity(-2),
		"nan":      FixedDensity(math.NaN()),
		"nil func": DensityFunc(nil),
	}
	for name, src := range cases {
		s := NewSurface()
		got := Configure(s, 100, 50, 4, src)
		if got.Density != 1 || got.BackingW != 100 || got.BackingH != 50 {
			t.Fatalf("%s: expected density 1 at 100x50, got %+v", name, got)
		}
	}
}

func TestConfigureDefaultsCap(t *testing.T) {
	s := NewSurface()
	got := Configure(s, 100, 100, 0, FixedDensity(8))
	if got.Density != DefaultDensityCap {
		t.Fatalf("expected default cap %v, got %v", DefaultDensityCap, got.Density)
	}
}

func TestConfigureZeroSizeDegrades(t *testing.T) {
	s := NewSurface()
	Configure(s, 100, 100, 4, FixedDensity(1))
	got := Configure(s, 0, 100, 4, FixedDensity(2))

	if got.BackingW != 0 || got.BackingH != 200 {
		t.Fatalf("unexpected sizing: %+v", got)
	}
	if s.Context() != nil {
		t.Fatal("expected no drawing context for empty backing store")
	}
	if s.Pixels() != nil {
		t.Fatal("expected no pixels")
	}
	if err := s.EncodePNG(&bytes.Buffer{}); !errors.Is(err, ErrNoBackingStore) {
		t.Fatalf("expected ErrNoBackingStore, got %v", err)
	}

	Configure(s, -5, -5, 4, FixedDensity(1))
	if s.Context() != nil {
		t.Fatal("negative size must not allocate")
	}
}

func TestConfigureNilSurface(t *testing.T) {
	if got := Configure(nil, 10, 10, 4, FixedDensity(1)); got != (Sizing{}) {
		t.Fatalf("expected zero sizing, got %+v", got)
	}
}

func TestSurfaceEncodePNG(t *testing.T) {
	s := NewSurface()
	Configure(s, 4, 3, 4, FixedDensity(1))
	var buf bytes.Buffer
	if err := s.EncodePNG(&buf); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Fatal("expected png signature")
	}
	if img := s.Image(); img.Bounds().Dx() != 4 || img.Bounds().Dy() != 3 {
		t.Fatalf("unexpected image bounds: %v", img.Bounds())
	}
}
