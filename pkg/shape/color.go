package shape

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

var ErrInvalidColor = errors.New("invalid color")

// ParseColor accepts CSS color names, hex forms (#rgb, #rgba, #rrggbb,
// #rrggbbaa) and rgb()/rgba() functional notation. The result is
// premultiplied, as color.RGBA requires.
func ParseColor(s string) (color.RGBA, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return color.RGBA{}, fmt.Errorf("%w: empty", ErrInvalidColor)
	}
	if v == "transparent" {
		return color.RGBA{}, nil
	}
	if c, ok := colornames.Map[v]; ok {
		return c, nil
	}
	var (
		c   color.NRGBA
		err error
	)
	switch {
	case strings.HasPrefix(v, "#"):
		c, err = parseHex(v[1:])
	case strings.HasPrefix(v, "rgb"):
		c, err = parseFunc(v)
	default:
		err = ErrInvalidColor
	}
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return premultiply(c), nil
}

func premultiply(c color.NRGBA) color.RGBA {
	if c.A == 0xFF {
		return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xFF}
	}
	a := uint32(c.A)
	mul := func(v uint8) uint8 { return uint8((uint32(v)*a + 127) / 255) }
	return color.RGBA{R: mul(c.R), G: mul(c.G), B: mul(c.B), A: c.A}
}

func parseHex(hex string) (color.NRGBA, error) {
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, err
	}
	nib := func(shift uint) uint8 { return uint8((n>>shift)&0xF) * 17 }
	byt := func(shift uint) uint8 { return uint8(n >> shift) }
	switch len(hex) {
	case 3:
		return color.NRGBA{R: nib(8), G: nib(4), B: nib(0), A: 0xFF}, nil
	case 4:
		return color.NRGBA{R: nib(12), G: nib(8), B: nib(4), A: nib(0)}, nil
	case 6:
		return color.NRGBA{R: byt(16), G: byt(8), B: byt(0), A: 0xFF}, nil
	case 8:
		return color.NRGBA{R: byt(24), G: byt(16), B: byt(8), A: byt(0)}, nil
	}
	return color.NRGBA{}, ErrInvalidColor
}

func parseFunc(v string) (color.NRGBA, error) {
	open := strings.IndexByte(v, '(')
	if open < 0 || !strings.HasSuffix(v, ")") {
		return color.NRGBA{}, ErrInvalidColor
	}
	name := strings.TrimSpace(v[:open])
	args := strings.Split(v[open+1:len(v)-1], ",")
	want := 3
	switch name {
	case "rgb":
	case "rgba":
		want = 4
	default:
		return color.NRGBA{}, ErrInvalidColor
	}
	if len(args) != want {
		return color.NRGBA{}, ErrInvalidColor
	}

	var ch [4]uint8
	ch[3] = 0xFF
	for i := 0; i < 3; i++ {
		n, err := strconv.ParseFloat(strings.TrimSpace(args[i]), 64)
		if err != nil || n < 0 || n > 255 {
			return color.NRGBA{}, ErrInvalidColor
		}
		ch[i] = uint8(math.Round(n))
	}
	if want == 4 {
		n, err := strconv.ParseFloat(strings.TrimSpace(args[3]), 64)
		if err != nil || n < 0 || n > 1 {
			return color.NRGBA{}, ErrInvalidColor
		}
		ch[3] = uint8(math.Round(n * 255))
	}
	return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, nil
}
