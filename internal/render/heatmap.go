package render

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"

	"github.com/Brownie44l1/cmplot/internal/matrix"
	"github.com/nfnt/resize"
)

// Layout constants are in pixels at basePPI and scale with the output DPI.
const basePPI = 100

const (
	pad      = 16
	gap      = 8
	barWidth = 20
	barGap   = 24
	tickMark = 4

	maxBasePx = 8000
	maxPx     = 16000
)

var (
	colorWhite = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	colorText  = color.RGBA{R: 0x26, G: 0x26, B: 0x26, A: 0xff}
	colorGrid  = color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
)

type Options struct {
	WidthIn       float64
	HeightIn      float64
	DPI           int
	Colormap      string
	Title         string
	XLabel        string
	YLabel        string
	ColorbarLabel string
	Annotate      bool
}

func DefaultOptions() Options {
	return Options{
		WidthIn:       10,
		HeightIn:      8,
		DPI:           300,
		Colormap:      "Blues",
		Title:         "Confusion Matrix",
		XLabel:        "Predicted Class",
		YLabel:        "Actual Class",
		ColorbarLabel: "Count",
		Annotate:      true,
	}
}

// Renderer draws confusion matrices as annotated heatmaps. It holds no
// per-matrix state and can be shared.
type Renderer struct {
	opts Options
	cmap Colormap

	// zoom is drawing pixels per layout pixel. Below basePPI the figure is
	// drawn at basePPI and shrunk.
	zoom  float64
	faces faces
}

func New(opts Options) (*Renderer, error) {
	if opts.DPI <= 0 {
		return nil, fmt.Errorf("dpi must be positive, got %d", opts.DPI)
	}
	if opts.WidthIn <= 0 || opts.HeightIn <= 0 {
		return nil, fmt.Errorf("figure size must be positive, got %gx%g in", opts.WidthIn, opts.HeightIn)
	}
	if opts.WidthIn*basePPI > maxBasePx || opts.HeightIn*basePPI > maxBasePx {
		return nil, fmt.Errorf("figure size %gx%g in is too large", opts.WidthIn, opts.HeightIn)
	}
	cmap, err := LookupColormap(opts.Colormap)
	if err != nil {
		return nil, err
	}
	r := &Renderer{opts: opts, cmap: cmap, zoom: math.Max(float64(opts.DPI)/basePPI, 1)}
	if w, h := r.PixelSize(); w > maxPx || h > maxPx {
		return nil, fmt.Errorf("%gx%g in at %d dpi exceeds %d pixels", opts.WidthIn, opts.HeightIn, opts.DPI, maxPx)
	}
	r.faces = facesFor(r.zoom)
	return r, nil
}

// px scales a layout length to drawing pixels.
func (r *Renderer) px(n int) int {
	return max(1, int(math.Round(float64(n)*r.zoom)))
}

// canvasSize is the size the figure is drawn at before any shrinking.
func (r *Renderer) canvasSize() (w, h int) {
	if r.opts.DPI >= basePPI {
		return r.PixelSize()
	}
	return int(math.Round(r.opts.WidthIn * basePPI)), int(math.Round(r.opts.HeightIn * basePPI))
}

func (r *Renderer) Options() Options {
	return r.opts
}

// PixelSize is the size of every image the renderer produces.
func (r *Renderer) PixelSize() (w, h int) {
	return int(math.Round(r.opts.WidthIn * float64(r.opts.DPI))),
		int(math.Round(r.opts.HeightIn * float64(r.opts.DPI)))
}

// FormatValue is the cell annotation for v: rounded to zero decimals.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', 0, 64)
}

func annotations(m *matrix.ConfusionMatrix) [][]string {
	out := make([][]string, m.Rows())
	for i := range out {
		out[i] = make([]string, m.Cols())
		for j := range out[i] {
			if v := m.At(i, j); !math.IsNaN(v) {
				out[i][j] = FormatValue(v)
			}
		}
	}
	return out
}

// valueRange returns the smallest and largest finite values, ignoring NaN.
func valueRange(m *matrix.ConfusionMatrix) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for i := 0; i < m.Rows(); i++ {
		for j := 0; j < m.Cols(); j++ {
			v := m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	return lo, hi, lo <= hi
}

type scale struct {
	lo, hi float64
}

func (s scale) norm(v float64) float64 {
	if math.IsInf(v, 1) {
		return 1
	}
	if math.IsInf(v, -1) {
		return 0
	}
	if s.hi == s.lo {
		return 0
	}
	return (v - s.lo) / (s.hi - s.lo)
}

type layout struct {
	w, h int
	rows int
	cols int
	line int

	gridX0, gridX1 int
	gridY0, gridY1 int

	titleBaseline  int
	tickBaseline   int
	xLabelBaseline int
	yLabelLeft     int
	rowLabelW      int

	barX0       int
	barWidth    int
	tickMark    int
	barTickX    int
	barLabelX   int
	barTicks    []float64
	barTickText []string
}

func (l layout) colEdge(j int) int { return l.gridX0 + j*(l.gridX1-l.gridX0)/l.cols }
func (l layout) rowEdge(i int) int { return l.gridY0 + i*(l.gridY1-l.gridY0)/l.rows }

func (r *Renderer) plan(m *matrix.ConfusionMatrix, s scale) (layout, error) {
	l := layout{rows: m.Rows(), cols: m.Cols(), line: r.px(1)}
	l.w, l.h = r.canvasSize()
	f := r.faces
	padPx, gapPx := r.px(pad), r.px(gap)

	l.titleBaseline = padPx + f.title.ascent
	l.gridY0 = padPx + f.title.height + gapPx
	if r.opts.Title == "" {
		l.gridY0 = padPx + gapPx
	}

	l.xLabelBaseline = l.h - padPx - (f.label.height - f.label.ascent)
	l.tickBaseline = l.xLabelBaseline - f.label.ascent - gapPx - (f.tick.height - f.tick.ascent)
	l.gridY1 = l.tickBaseline - f.tick.ascent - gapPx

	l.yLabelLeft = padPx
	for _, label := range m.RowLabels {
		l.rowLabelW = max(l.rowLabelW, f.tick.width(label))
	}
	l.rowLabelW = min(l.rowLabelW, l.w/4)
	l.gridX0 = padPx + f.label.height + gapPx + l.rowLabelW + gapPx

	l.barTicks = niceTicks(s.lo, s.hi, 6)
	tickW := 0
	for _, t := range l.barTicks {
		text := formatTick(t, l.barTicks)
		l.barTickText = append(l.barTickText, text)
		tickW = max(tickW, f.tick.width(text))
	}
	l.barWidth = r.px(barWidth)
	l.tickMark = r.px(tickMark)
	l.barLabelX = l.w - padPx - f.label.height
	l.barTickX = l.barLabelX - gapPx - tickW
	l.barX0 = l.barTickX - l.tickMark - r.px(2) - l.barWidth
	l.gridX1 = l.barX0 - r.px(barGap)

	if l.gridX1-l.gridX0 < l.cols || l.gridY1-l.gridY0 < l.rows {
		return layout{}, fmt.Errorf("figure of %gx%g in is too small for a %dx%d matrix",
			r.opts.WidthIn, r.opts.HeightIn, l.rows, l.cols)
	}
	return l, nil
}

// Draw renders m at the configured size and DPI.
func (r *Renderer) Draw(m *matrix.ConfusionMatrix) (image.Image, error) {
	lo, hi, ok := valueRange(m)
	if !ok {
		lo, hi = 0, 1
	}
	s := scale{lo: lo, hi: hi}

	l, err := r.plan(m, s)
	if err != nil {
		return nil, err
	}

	c := newCanvas(l.w, l.h, colorWhite)
	r.drawCells(c, l, m, s)
	r.drawAxes(c, l, m)
	r.drawColorbar(c, l, s)

	pw, ph := r.PixelSize()
	if pw == l.w && ph == l.h {
		return c.img, nil
	}
	return resize.Resize(uint(pw), uint(ph), c.img, resize.Lanczos3), nil
}

func (r *Renderer) drawCells(c *canvas, l layout, m *matrix.ConfusionMatrix, s scale) {
	text := annotations(m)
	for i := 0; i < l.rows; i++ {
		y0, y1 := l.rowEdge(i), l.rowEdge(i+1)
		for j := 0; j < l.cols; j++ {
			x0, x1 := l.colEdge(j), l.colEdge(j+1)
			v := m.At(i, j)
			if math.IsNaN(v) {
				continue
			}
			fill := r.cmap.At(s.norm(v))
			c.fillRect(image.Rect(x0, y0, x1, y1), toRGBA(fill))
			if r.opts.Annotate {
				r.faces.tick.centered(c, (x0+x1)/2, (y0+y1)/2, text[i][j], textOn(fill))
			}
		}
	}

	for i := 0; i <= l.rows; i++ {
		c.hline(l.gridX0, l.gridX1, min(l.rowEdge(i), l.gridY1), l.line, colorGrid)
	}
	for j := 0; j <= l.cols; j++ {
		c.vline(min(l.colEdge(j), l.gridX1), l.gridY0, l.gridY1, l.line, colorGrid)
	}
}

func (r *Renderer) drawAxes(c *canvas, l layout, m *matrix.ConfusionMatrix) {
	f := r.faces
	gapPx := r.px(gap)
	gridMidX := (l.gridX0 + l.gridX1) / 2
	gridMidY := (l.gridY0 + l.gridY1) / 2

	if r.opts.Title != "" {
		f.title.draw(c, gridMidX-f.title.width(r.opts.Title)/2, l.titleBaseline, r.opts.Title, colorText)
	}

	for j, label := range m.ColLabels {
		x0, x1 := l.colEdge(j), l.colEdge(j+1)
		label = f.tick.fit(label, x1-x0-2*l.line)
		f.tick.draw(c, (x0+x1)/2-f.tick.width(label)/2, l.tickBaseline, label, colorText)
	}
	for i, label := range m.RowLabels {
		y0, y1 := l.rowEdge(i), l.rowEdge(i+1)
		label = f.tick.fit(label, l.rowLabelW)
		f.tick.draw(c, l.gridX0-gapPx-f.tick.width(label), (y0+y1)/2+f.tick.ascent/2, label, colorText)
	}

	if r.opts.XLabel != "" {
		f.label.draw(c, gridMidX-f.label.width(r.opts.XLabel)/2, l.xLabelBaseline, r.opts.XLabel, colorText)
	}
	if r.opts.YLabel != "" {
		f.label.vertical(c, l.yLabelLeft, gridMidY, r.opts.YLabel, colorText)
	}
}

func (r *Renderer) drawColorbar(c *canvas, l layout, s scale) {
	top, bottom := l.gridY0, l.gridY1
	span := bottom - top
	for y := top; y <= bottom; y++ {
		t := float64(bottom-y) / float64(span)
		c.hline(l.barX0, l.barX0+l.barWidth-1, y, 1, r.cmap.RGBA(t))
	}

	for k, v := range l.barTicks {
		y := bottom - int(math.Round(s.norm(v)*float64(span)))
		c.hline(l.barX0+l.barWidth, l.barX0+l.barWidth+l.tickMark-1, y-l.line/2, l.line, colorText)
		r.faces.tick.draw(c, l.barTickX, y+r.faces.tick.ascent/2, l.barTickText[k], colorText)
	}

	if r.opts.ColorbarLabel != "" {
		r.faces.label.vertical(c, l.barLabelX, (top+bottom)/2, r.opts.ColorbarLabel, colorText)
	}
}

// niceTicks picks at most n round values inside [lo, hi].
func niceTicks(lo, hi float64, n int) []float64 {
	if !(hi > lo) {
		return []float64{lo}
	}
	n = max(n, 2)
	step := niceStep((hi - lo) / float64(n-1))
	if math.IsInf(step, 0) || math.IsNaN(step) || step == 0 {
		return []float64{lo, hi}
	}

	first := math.Ceil(lo/step - 1e-9)
	count := math.Floor(hi/step+1e-9) - first + 1
	if !(count >= 1) {
		return []float64{lo}
	}
	count = math.Min(count, float64(n))

	tol := step * 1e-9
	ticks := make([]float64, 0, int(count))
	for i := 0; i < int(count); i++ {
		v := (first + float64(i)) * step
		if v == 0 {
			v = 0 // drop the sign of -0
		}
		if v < lo-tol || v > hi+tol {
			continue
		}
		// Steps below the float spacing of v collapse onto one value.
		if len(ticks) > 0 && v == ticks[len(ticks)-1] {
			continue
		}
		ticks = append(ticks, v)
	}
	if len(ticks) == 0 {
		return []float64{lo}
	}
	return ticks
}

func niceStep(raw float64) float64 {
	exp := math.Floor(math.Log10(raw))
	base := math.Pow(10, exp)
	switch f := raw / base; {
	case f <= 1:
		return base
	case f <= 2:
		return 2 * base
	case f <= 5:
		return 5 * base
	default:
		return 10 * base
	}
}

// compactAbove is the tick magnitude from which labels switch to exponent
// form.
const compactAbove = 1e9

func formatTick(v float64, ticks []float64) string {
	mag, step := 0.0, 0.0
	for _, t := range ticks {
		mag = math.Max(mag, math.Abs(t))
	}
	if len(ticks) > 1 {
		step = ticks[1] - ticks[0]
	}

	if mag >= compactAbove {
		digits := 1
		if step > 0 {
			digits = int(math.Ceil(math.Log10(mag/step))) + 1
		}
		return strconv.FormatFloat(v, 'g', min(max(digits, 1), 6), 64)
	}

	decimals := 0
	if step > 0 {
		decimals = max(0, int(-math.Floor(math.Log10(step)+1e-9)))
	} else if v != math.Trunc(v) {
		decimals = 2
	}
	return strconv.FormatFloat(v, 'f', min(decimals, 12), 64)
}
