// Package shape issues ordered 2D drawing commands from plain descriptors.
//
// A Shape names its kind, its geometry in logical units and its paint. Draw
// walks a slice of shapes in order against a gg.Context, so callers build a
// frame as data:
//
//	shape.Draw(surface, []shape.Shape{
//		shape.Rect(0, 0, w, h, shape.Style{Fill: "black"}),
//		shape.Circle(x, y, r, shape.Style{Fill: "teal"}),
//	})
package shape

import (
	"errors"
	"fmt"

	"github.com/gogpu/gg"
)

type Kind uint8

const (
	KindRect Kind = iota + 1
	KindCircle
	KindEllipse
	KindLine
)

func (k Kind) String() string {
	switch k {
	case KindRect:
		return "rect"
	case KindCircle:
		return "circle"
	case KindEllipse:
		return "ellipse"
	case KindLine:
		return "line"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Geometry holds every coordinate a kind may need. Rect uses X, Y, W, H;
// Circle uses X, Y, R; Ellipse uses X, Y, W, H as center and radii; Line
// uses X, Y to X2, Y2.
type Geometry struct {
	X  float64
	Y  float64
	W  float64
	H  float64
	R  float64
	X2 float64
	Y2 float64
}

// Style is the paint of a shape. Empty Fill or Stroke means no fill or no
// stroke. LineWidth defaults to 1.
type Style struct {
	Fill      string
	Stroke    string
	LineWidth float64
}

type Shape struct {
	Kind     Kind
	Geometry Geometry
	Style    Style
}

func Rect(x, y, w, h float64, style Style) Shape {
	return Shape{Kind: KindRect, Geometry: Geometry{X: x, Y: y, W: w, H: h}, Style: style}
}

func Circle(x, y, r float64, style Style) Shape {
	return Shape{Kind: KindCircle, Geometry: Geometry{X: x, Y: y, R: r}, Style: style}
}

func Ellipse(x, y, rx, ry float64, style Style) Shape {
	return Shape{Kind: KindEllipse, Geometry: Geometry{X: x, Y: y, W: rx, H: ry}, Style: style}
}

func Line(x1, y1, x2, y2 float64, style Style) Shape {
	return Shape{Kind: KindLine, Geometry: Geometry{X: x1, Y: y1, X2: x2, Y2: y2}, Style: style}
}

// Target is anything exposing a drawing context. A nil context means there
// is nothing to draw into.
type Target interface {
	Context() *gg.Context
}

var ErrUnknownKind = errors.New("unknown shape kind")

// Draw issues the shapes in order. Shapes whose paint cannot be parsed skip
// that paint; all such failures are joined into the returned error after
// every shape was issued.
func Draw(t Target, shapes []Shape) error {
	if t == nil {
		return nil
	}
	dc := t.Context()
	if dc == nil {
		return nil
	}
	var errs []error
	for i, s := range shapes {
		if err := drawOne(dc, s); err != nil {
			errs = append(errs, fmt.Errorf("shape %d (%s): %w", i, s.Kind, err))
		}
	}
	return errors.Join(errs...)
}

func drawOne(dc *gg.Context, s Shape) error {
	if !tracePath(dc, s) {
		return ErrUnknownKind
	}
	var errs []error
	fill, stroke := s.Style.Fill, s.Style.Stroke
	if s.Kind == KindLine && stroke == "" {
		stroke = fill
		fill = ""
	}

	if fill != "" {
		if c, err := ParseColor(fill); err != nil {
			errs = append(errs, err)
		} else {
			dc.SetColor(c)
			if stroke != "" {
				err = dc.FillPreserve()
			} else {
				err = dc.Fill()
			}
			if err != nil {
				errs = append(errs, fmt.Errorf("fill: %w", err))
			}
		}
	}
	if stroke != "" {
		if c, err := ParseColor(stroke); err != nil {
			errs = append(errs, err)
		} else {
			dc.SetColor(c)
			lw := s.Style.LineWidth
			if lw <= 0 {
				lw = 1
			}
			dc.SetLineWidth(lw)
			if err := dc.Stroke(); err != nil {
				errs = append(errs, fmt.Errorf("stroke: %w", err))
			}
		}
	}
	dc.ClearPath()
	return errors.Join(errs...)
}

func tracePath(dc *gg.Context, s Shape) bool {
	g := s.Geometry
	switch s.Kind {
	case KindRect:
		dc.DrawRectangle(g.X, g.Y, g.W, g.H)
	case KindCircle:
		dc.DrawCircle(g.X, g.Y, g.R)
	case KindEllipse:
		dc.DrawEllipse(g.X, g.Y, g.W, g.H)
	case KindLine:
		dc.DrawLine(g.X, g.Y, g.X2, g.Y2)
	default:
		return false
	}
	return true
}
