package render

import (
	"image/color"
	"math"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/freemono"
)

type face struct {
	font tinyfont.Fonter
	// ascent is the height of a digit above the baseline.
	ascent int
	height int
}

func newFace(f tinyfont.Fonter) face {
	info := f.GetGlyph('0').Info()
	return face{
		font:   f,
		ascent: -int(info.YOffset),
		height: int(f.GetYAdvance()),
	}
}

type sizedFont struct {
	pt   float64
	font *tinyfont.Font
}

var (
	regularFonts = []sizedFont{
		{9, &freemono.Regular9pt7b},
		{12, &freemono.Regular12pt7b},
		{18, &freemono.Regular18pt7b},
		{24, &freemono.Regular24pt7b},
	}
	boldFonts = []sizedFont{
		{9, &freemono.Bold9pt7b},
		{12, &freemono.Bold12pt7b},
		{18, &freemono.Bold18pt7b},
		{24, &freemono.Bold24pt7b},
	}
)

// nearestFace picks the font whose point size is closest to pt.
func nearestFace(fonts []sizedFont, pt float64) face {
	best := fonts[0]
	for _, f := range fonts[1:] {
		if math.Abs(f.pt-pt) < math.Abs(best.pt-pt) {
			best = f
		}
	}
	return newFace(best.font)
}

type faces struct {
	tick, label, title face
}

// facesFor returns the text faces for a drawing zoom times larger than the
// base layout (9pt ticks and axis labels, 12pt title).
func facesFor(zoom float64) faces {
	return faces{
		tick:  nearestFace(regularFonts, 9*zoom),
		label: nearestFace(boldFonts, 9*zoom),
		title: nearestFace(boldFonts, 12*zoom),
	}
}

func (f face) width(s string) int {
	if s == "" {
		return 0
	}
	_, w := tinyfont.LineWidth(f.font, s)
	return int(w)
}

// draw writes s with its baseline starting at (x, y).
func (f face) draw(d drivers.Displayer, x, y int, s string, c color.RGBA) {
	if s == "" {
		return
	}
	tinyfont.WriteLine(d, f.font, int16(x), int16(y), s, c)
}

// centered writes s so that its middle sits at (cx, cy).
func (f face) centered(d drivers.Displayer, cx, cy int, s string, c color.RGBA) {
	f.draw(d, cx-f.width(s)/2, cy+f.ascent/2, s, c)
}

// vertical writes s reading bottom to top, centred on cy, with glyph tops
// facing x = left.
func (f face) vertical(c *canvas, left, cy int, s string, col color.RGBA) {
	w := f.width(s)
	u := upright{c: c, ox: int16(left + f.ascent), oy: int16(cy + w/2)}
	f.draw(u, 0, 0, s, col)
}

// fit shortens s with ".." until it is at most maxW pixels wide.
func (f face) fit(s string, maxW int) string {
	if maxW <= 0 {
		return ""
	}
	if f.width(s) <= maxW {
		return s
	}
	r := []rune(s)
	for len(r) > 0 {
		r = r[:len(r)-1]
		if f.width(string(r)+"..") <= maxW {
			return string(r) + ".."
		}
	}
	return ""
}
