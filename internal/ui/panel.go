package ui

import (
	"image"
	"image/color"

	"orbit/internal/controls"
	"orbit/internal/render"
	"orbit/pkg/shape"
)

// Row is the on-screen geometry of one control.
type Row struct {
	Name   string
	Bounds image.Rectangle
	Label  image.Rectangle
	Field  image.Rectangle
	Swatch image.Rectangle
}

type PanelLayout struct {
	Bounds image.Rectangle
	Title  image.Rectangle
	Rows   []Row
	Status image.Rectangle
}

// ComputePanelLayout anchors the panel to the top-right corner of a w x h
// screen in device pixels. scale converts theme dp to device pixels.
func ComputePanelLayout(w, h int, names []string, theme Theme, scale float64) PanelLayout {
	if scale <= 0 {
		scale = 1
	}
	dp := func(v int) int { return int(float64(v) * scale) }

	margin := dp(theme.MarginDp)
	panelW := dp(theme.PanelWidthDp)
	if maxW := w - margin*2; panelW > maxW {
		panelW = maxW
	}
	if panelW < 0 {
		panelW = 0
	}
	titleH := dp(theme.TitleHeightDp)
	rowH := dp(theme.RowHeightDp)
	statusH := dp(theme.StatusHeightDp)
	pad := dp(6)

	x := w - margin - panelW
	y := margin
	panelH := titleH + rowH*len(names) + statusH
	layout := PanelLayout{
		Bounds: image.Rect(x, y, x+panelW, y+panelH),
		Title:  image.Rect(x, y, x+panelW, y+titleH),
		Rows:   make([]Row, 0, len(names)),
	}

	rowY := y + titleH
	labelW := dp(theme.LabelWidthDp)
	swatch := dp(theme.SwatchDp)
	for _, name := range names {
		bounds := image.Rect(x, rowY, x+panelW, rowY+rowH)
		fieldX := x + pad + labelW
		fieldRight := x + panelW - pad - swatch - pad
		if fieldRight < fieldX {
			fieldRight = fieldX
		}
		sy := rowY + (rowH-swatch)/2
		layout.Rows = append(layout.Rows, Row{
			Name:   name,
			Bounds: bounds,
			Label:  image.Rect(x+pad, rowY+pad, fieldX, rowY+rowH-pad),
			Field:  image.Rect(fieldX, rowY+pad, fieldRight, rowY+rowH-pad),
			Swatch: image.Rect(x+panelW-pad-swatch, sy, x+panelW-pad, sy+swatch),
		})
		rowY += rowH
	}
	layout.Status = image.Rect(x, rowY, x+panelW, rowY+statusH)
	return layout
}

// RowAt returns the row under x, y.
func (l PanelLayout) RowAt(x, y int) (Row, bool) {
	p := image.Pt(x, y)
	for _, row := range l.Rows {
		if p.In(row.Bounds) {
			return row, true
		}
	}
	return Row{}, false
}

// DrawPanel paints the panel chrome into fb. Text is drawn by the host on
// top. field is the control being edited, if any. Rows whose value differs
// from the default, or whose pending edit differs from the stored value, get
// an accent bar on the left edge.
func DrawPanel(fb *render.FrameBuffer, layout PanelLayout, store *controls.Store, field *controls.Field, theme Theme, scale float64) {
	if layout.Bounds.Empty() {
		return
	}
	line := int(scale)
	if line < 1 {
		line = 1
	}
	b := layout.Bounds
	fb.Blend(b.Min.X, b.Min.Y, b.Dx(), b.Dy(), theme.PanelBackground)
	fb.FillRect(layout.Title.Min.X, layout.Title.Min.Y, layout.Title.Dx(), layout.Title.Dy(), theme.TitleBar)
	fb.FillRect(layout.Title.Min.X, layout.Title.Max.Y-line, layout.Title.Dx(), line, theme.Accent)

	for _, row := range layout.Rows {
		value := store.Get(row.Name)
		editing := field != nil && field.Focused && field.Name == row.Name
		if editing {
			value = field.Text()
		}
		swatch, err := shape.ParseColor(value)

		bg := theme.Field
		switch {
		case err != nil:
			bg = theme.FieldInvalid
		case editing:
			bg = theme.FieldFocused
		}
		f := row.Field
		fb.FillRect(f.Min.X, f.Min.Y, f.Dx(), f.Dy(), bg)
		if store.Get(row.Name) != store.Default(row.Name) || (editing && field.Dirty(store)) {
			fb.FillRect(row.Bounds.Min.X+line, f.Min.Y, 2*line, f.Dy(), theme.Accent)
		}
		if editing {
			fb.StrokeRect(f.Min.X, f.Min.Y, f.Dx(), f.Dy(), line, theme.Accent)
		}

		s := row.Swatch
		fb.FillRect(s.Min.X, s.Min.Y, s.Dx(), s.Dy(), theme.Border)
		if err == nil {
			fb.Blend(s.Min.X+line, s.Min.Y+line, s.Dx()-2*line, s.Dy()-2*line, straight(swatch))
		}
	}
	fb.StrokeRect(b.Min.X, b.Min.Y, b.Dx(), b.Dy(), line, theme.Border)
}

// straight undoes premultiplication for FrameBuffer.Blend.
func straight(c color.RGBA) color.RGBA {
	if c.A == 0 || c.A == 0xFF {
		return c
	}
	a := uint32(c.A)
	div := func(v uint8) uint8 {
		x := uint32(v) * 255 / a
		if x > 255 {
			x = 255
		}
		return uint8(x)
	}
	return color.RGBA{R: div(c.R), G: div(c.G), B: div(c.B), A: c.A}
}
