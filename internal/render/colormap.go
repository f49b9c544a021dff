package render

import (
	"fmt"
	"image/color"
	"math"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Sequential ColorBrewer palettes, light to dark.
var palettes = map[string][]string{
	"blues":   {"#f7fbff", "#deebf7", "#c6dbef", "#9ecae1", "#6baed6", "#4292c6", "#2171b5", "#08519c", "#08306b"},
	"greens":  {"#f7fcf5", "#e5f5e0", "#c7e9c0", "#a1d99b", "#74c476", "#41ab5d", "#238b45", "#006d2c", "#00441b"},
	"greys":   {"#ffffff", "#f0f0f0", "#d9d9d9", "#bdbdbd", "#969696", "#737373", "#525252", "#252525", "#000000"},
	"oranges": {"#fff5eb", "#fee6ce", "#fdd0a2", "#fdae6b", "#fd8d3c", "#f16913", "#d94801", "#a63603", "#7f2704"},
	"purples": {"#fcfbfd", "#efedf5", "#dadaeb", "#bcbddc", "#9e9ac8", "#807dba", "#6a51a3", "#54278f", "#3f007d"},
	"reds":    {"#fff5f0", "#fee0d2", "#fcbba1", "#fc9272", "#fb6a4a", "#ef3b2c", "#cb181d", "#a50f15", "#67000d"},
}

// Colormap maps values in [0, 1] to colours by linear interpolation between
// evenly spaced stops.
type Colormap struct {
	Name  string
	stops []colorful.Color
}

// ColormapNames lists the palettes LookupColormap accepts. Each also has a
// reversed "_r" variant.
func ColormapNames() []string {
	names := make([]string, 0, len(palettes))
	for name := range palettes {
		names = append(names, strings.ToUpper(name[:1])+name[1:])
	}
	sort.Strings(names)
	return names
}

func LookupColormap(name string) (Colormap, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	reversed := strings.HasSuffix(key, "_r")
	key = strings.TrimSuffix(key, "_r")

	hexes, ok := palettes[key]
	if !ok {
		return Colormap{}, fmt.Errorf("unknown colormap %q (available: %s)", name, strings.Join(ColormapNames(), ", "))
	}

	stops := make([]colorful.Color, len(hexes))
	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			return Colormap{}, fmt.Errorf("colormap %s: %w", key, err)
		}
		if reversed {
			stops[len(hexes)-1-i] = c
		} else {
			stops[i] = c
		}
	}
	return Colormap{Name: name, stops: stops}, nil
}

func (cm Colormap) At(t float64) colorful.Color {
	if math.IsNaN(t) || t <= 0 {
		return cm.stops[0]
	}
	if t >= 1 {
		return cm.stops[len(cm.stops)-1]
	}
	pos := t * float64(len(cm.stops)-1)
	i := int(pos)
	return cm.stops[i].BlendRgb(cm.stops[i+1], pos-float64(i))
}

func (cm Colormap) RGBA(t float64) color.RGBA {
	return toRGBA(cm.At(t))
}

func toRGBA(c colorful.Color) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

// textOn picks the annotation colour for a cell fill: dark text on light
// cells, white text on dark ones.
func textOn(fill colorful.Color) color.RGBA {
	r, g, b := fill.LinearRgb()
	if 0.2126*r+0.7152*g+0.0722*b > 0.408 {
		return colorText
	}
	return colorWhite
}
