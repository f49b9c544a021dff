package render

import (
	"image"
	"image/color"
	"image/draw"

	"tinygo.org/x/drivers"
)

// canvas exposes an RGBA image as a tinyfont display.
type canvas struct {
	img *image.RGBA
}

var _ drivers.Displayer = (*canvas)(nil)

func newCanvas(w, h int, bg color.RGBA) *canvas {
	c := &canvas{img: image.NewRGBA(image.Rect(0, 0, w, h))}
	c.fillRect(c.img.Bounds(), bg)
	return c
}

func (c *canvas) Size() (x, y int16) {
	b := c.img.Bounds()
	return int16(b.Dx()), int16(b.Dy())
}

func (c *canvas) SetPixel(x, y int16, col color.RGBA) {
	// SetRGBA ignores points outside the bounds.
	c.img.SetRGBA(int(x), int(y), col)
}

func (c *canvas) Display() error {
	return nil
}

func (c *canvas) fillRect(r image.Rectangle, col color.RGBA) {
	draw.Draw(c.img, r, &image.Uniform{C: col}, image.Point{}, draw.Src)
}

// hline draws a horizontal line w pixels thick whose top row is y.
func (c *canvas) hline(x0, x1, y, w int, col color.RGBA) {
	c.fillRect(image.Rect(x0, y, x1+1, y+w), col)
}

// vline draws a vertical line w pixels thick whose left column is x.
func (c *canvas) vline(x, y0, y1, w int, col color.RGBA) {
	c.fillRect(image.Rect(x, y0, x+w, y1+1), col)
}

// upright turns drawing 90 degrees counter-clockwise so text reads bottom to
// top. Local (0, 0) lands on (ox, oy) of the underlying canvas.
type upright struct {
	c      *canvas
	ox, oy int16
}

var _ drivers.Displayer = upright{}

func (u upright) Size() (x, y int16) {
	w, h := u.c.Size()
	return h, w
}

func (u upright) SetPixel(x, y int16, col color.RGBA) {
	u.c.SetPixel(u.ox+y, u.oy-x, col)
}

func (u upright) Display() error {
	return nil
}
