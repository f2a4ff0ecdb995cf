package ui

import (
	"image/color"
	"testing"

	"orbit/internal/controls"
	"orbit/internal/render"
)

func TestComputePanelLayoutAnchorsTopRight(t *testing.T) {
	theme := DefaultTheme()
	l := ComputePanelLayout(1000, 700, []string{"fill"}, theme, 1)

	if l.Bounds.Max.X != 1000-theme.MarginDp || l.Bounds.Min.Y != theme.MarginDp {
		t.Fatalf("panel not anchored top-right: %v", l.Bounds)
	}
	if l.Bounds.Dx() != theme.PanelWidthDp {
		t.Fatalf("unexpected width: %d", l.Bounds.Dx())
	}
	if len(l.Rows) != 1 || l.Rows[0].Name != "fill" {
		t.Fatalf("unexpected rows: %+v", l.Rows)
	}
	row := l.Rows[0]
	if !row.Field.In(row.Bounds) || !row.Swatch.In(row.Bounds) {
		t.Fatalf("row parts escape row: %+v", row)
	}
	if l.Status.Min.Y != row.Bounds.Max.Y {
		t.Fatalf("status must follow last row: %v", l.Status)
	}
}

func TestComputePanelLayoutScales(t *testing.T) {
	theme := DefaultTheme()
	one := ComputePanelLayout(2000, 2000, []string{"fill"}, theme, 1)
	two := ComputePanelLayout(2000, 2000, []string{"fill"}, theme, 2)
	if two.Bounds.Dx() != one.Bounds.Dx()*2 || two.Bounds.Dy() != one.Bounds.Dy()*2 {
		t.Fatalf("expected doubled panel, got %v vs %v", two.Bounds, one.Bounds)
	}
}

func TestComputePanelLayoutNarrowScreen(t *testing.T) {
	l := ComputePanelLayout(100, 100, []string{"fill"}, DefaultTheme(), 1)
	if l.Bounds.Min.X < 0 || l.Bounds.Dx() > 100 {
		t.Fatalf("panel overflows narrow screen: %v", l.Bounds)
	}
}

func TestRowAt(t *testing.T) {
	l := ComputePanelLayout(1000, 700, []string{"fill", "stroke"}, DefaultTheme(), 1)
	second := l.Rows[1].Bounds
	row, ok := l.RowAt(second.Min.X+1, second.Min.Y+1)
	if !ok || row.Name != "stroke" {
		t.Fatalf("expected stroke row, got %+v ok=%v", row, ok)
	}
	if _, ok := l.RowAt(0, 0); ok {
		t.Fatal("expected no row at origin")
	}
}

func TestDrawPanelPaintsSwatchAndInvalidField(t *testing.T) {
	theme := DefaultTheme()
	store := controls.NewStore(controls.Schema{"fill": "red"})
	fb := render.NewFrameBuffer(600, 300)
	l := ComputePanelLayout(fb.W, fb.H, store.Names(), theme, 1)

	DrawPanel(fb, l, store, nil, theme, 1)
	sw := l.Rows[0].Swatch
	if got := fb.At(sw.Min.X+sw.Dx()/2, sw.Min.Y+sw.Dy()/2); got != (color.RGBA{R: 255, A: 255}) {
		t.Fatalf("expected red swatch, got %v", got)
	}

	field := controls.NewField("fill")
	field.Focus(store)
	field.Backspace()
	DrawPanel(fb, l, store, field, theme, 1)
	f := l.Rows[0].Field
	if got := fb.At(f.Min.X+f.Dx()/2, f.Min.Y+f.Dy()/2); got != theme.FieldInvalid {
		t.Fatalf("expected invalid field tint, got %v", got)
	}
}

func TestDrawPanelMarksModifiedRows(t *testing.T) {
	theme := DefaultTheme()
	store := controls.NewStore(controls.Schema{"fill": "teal"})
	fb := render.NewFrameBuffer(600, 300)
	l := ComputePanelLayout(fb.W, fb.H, store.Names(), theme, 1)
	row := l.Rows[0]
	markerAt := func() color.RGBA { return fb.At(row.Bounds.Min.X+1, row.Field.Min.Y+row.Field.Dy()/2) }

	DrawPanel(fb, l, store, nil, theme, 1)
	if markerAt() == theme.Accent {
		t.Fatal("default value must not be marked")
	}

	field := controls.NewField("fill")
	field.Focus(store)
	field.InsertTextAtCaret("x")
	fb.Clear(color.RGBA{})
	DrawPanel(fb, l, store, field, theme, 1)
	if markerAt() != theme.Accent {
		t.Fatalf("pending edit must be marked, got %v", markerAt())
	}

	field.Cancel()
	if err := store.Set("fill", "red"); err != nil {
		t.Fatal(err)
	}
	fb.Clear(color.RGBA{})
	DrawPanel(fb, l, store, nil, theme, 1)
	if markerAt() != theme.Accent {
		t.Fatalf("changed value must be marked, got %v", markerAt())
	}

	if err := store.Reset("fill"); err != nil {
		t.Fatal(err)
	}
	fb.Clear(color.RGBA{})
	DrawPanel(fb, l, store, nil, theme, 1)
	if markerAt() == theme.Accent {
		t.Fatal("reset value must not be marked")
	}
}
