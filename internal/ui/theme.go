package ui

import "image/color"

type Theme struct {
	PanelBackground color.RGBA
	TitleBar        color.RGBA
	Row             color.RGBA
	Field           color.RGBA
	FieldFocused    color.RGBA
	FieldInvalid    color.RGBA
	Border          color.RGBA
	Accent          color.RGBA
	Text            color.RGBA
	MutedText       color.RGBA
	PanelWidthDp    int
	TitleHeightDp   int
	RowHeightDp     int
	StatusHeightDp  int
	MarginDp        int
	LabelWidthDp    int
	SwatchDp        int
}

func DefaultTheme() Theme {
	return Theme{
		PanelBackground: color.RGBA{0x18, 0x1C, 0x20, 0xE6},
		TitleBar:        color.RGBA{0x29, 0x2D, 0x39, 0xFF},
		Row:             color.RGBA{0x18, 0x1C, 0x20, 0xE6},
		Field:           color.RGBA{0x37, 0x3C, 0x4B, 0xFF},
		FieldFocused:    color.RGBA{0x53, 0x5A, 0x6E, 0xFF},
		FieldInvalid:    color.RGBA{0x8C, 0x2F, 0x39, 0xFF},
		Border:          color.RGBA{0x3B, 0x41, 0x52, 0xFF},
		Accent:          color.RGBA{0x00, 0x7B, 0xFF, 0xFF},
		Text:            color.RGBA{0xDD, 0xE1, 0xEA, 0xFF},
		MutedText:       color.RGBA{0x8C, 0x92, 0xA4, 0xFF},
		PanelWidthDp:    280,
		TitleHeightDp:   24,
		RowHeightDp:     28,
		StatusHeightDp:  20,
		MarginDp:        10,
		LabelWidthDp:    72,
		SwatchDp:        16,
	}
}
